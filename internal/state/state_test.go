package state

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"go-mines/internal/board"
	"go-mines/internal/command"
	"go-mines/internal/timer"

	"github.com/google/uuid"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type testRig struct {
	State *State
	Clock *fakeClock
	Exits int
}

// newRig builds a 4x4 game whose every round uses the given mines.
func newRig(t *testing.T, limit int, mines ...board.Point) *testRig {
	t.Helper()
	rig := &testRig{Clock: &fakeClock{now: time.Unix(1_700_000_000, 0)}}
	opts := GameOptions{Size: 4, Mines: len(mines), TimeLimit: limit, Seed: 1}
	s, err := NewState(opts, Deps{
		Clock: rig.Clock,
		Exit:  func() { rig.Exits++ },
		Generator: func(*rand.Rand) (*board.Board, error) {
			return board.FromMines(4, mines)
		},
	})
	if err != nil {
		t.Fatalf("NewState failed: %v", err)
	}
	rig.State = s
	return rig
}

func (r *testRig) mustSubmit(t *testing.T, input string) {
	t.Helper()
	if err := r.State.Submit(input); err != nil {
		t.Fatalf("Submit(%q) failed: %v", input, err)
	}
}

func TestState_Initial(t *testing.T) {
	rig := newRig(t, 60, board.Point{X: 3, Y: 3})
	s := rig.State

	if s.Phase() != Init {
		t.Errorf("expected Init, got %s", s.Phase())
	}
	if s.Board != nil {
		t.Error("no board should exist before start")
	}
	if s.Timer.State() != timer.Reset {
		t.Errorf("expected timer Reset, got %v", s.Timer.State())
	}
	if s.Snapshot().HasBoard() {
		t.Error("snapshot should have no board in Init")
	}
}

func TestNewState_RejectsBadOptions(t *testing.T) {
	for _, opts := range []GameOptions{
		{Size: 0, Mines: 1},
		{Size: 9, Mines: 10},
		{Size: 4, Mines: 16},
		{Size: 4, Mines: -1},
	} {
		if _, err := NewState(opts, Deps{}); err == nil {
			t.Errorf("NewState(%+v) should fail", opts)
		}
	}
}

func TestState_StartDrawsBoard(t *testing.T) {
	rig := newRig(t, 60, board.Point{X: 3, Y: 3})
	s := rig.State

	rig.mustSubmit(t, "start")

	if s.Phase() != DrawBoard {
		t.Fatalf("expected DrawBoard, got %s", s.Phase())
	}
	if s.Board == nil {
		t.Fatal("board should be generated on start")
	}
	if s.Round == uuid.Nil {
		t.Error("round id should be assigned")
	}
	if s.Timer.State() != timer.Started {
		t.Errorf("expected timer Started, got %v", s.Timer.State())
	}
	if !s.Timer.StartedAt().Equal(rig.Clock.Now()) {
		t.Errorf("timer should be anchored at start, got %v", s.Timer.StartedAt())
	}
}

func TestState_GameCommandBeforeStart(t *testing.T) {
	rig := newRig(t, 60, board.Point{X: 3, Y: 3})

	err := rig.State.Submit("s22")
	if !errors.Is(err, command.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if rig.State.Phase() != Init {
		t.Errorf("phase should stay Init, got %s", rig.State.Phase())
	}
	if len(rig.State.Errors()) != 1 {
		t.Errorf("expected 1 recorded error, got %d", len(rig.State.Errors()))
	}
}

func TestState_TransitionLegality(t *testing.T) {
	rig := newRig(t, 60, board.Point{X: 3, Y: 3})
	s := rig.State

	for _, in := range []string{"restart", "pause", "resume", "cancel"} {
		if err := s.Submit(in); !errors.Is(err, command.ErrInvalidArgument) {
			t.Errorf("Init: %q should be rejected, got %v", in, err)
		}
	}

	rig.mustSubmit(t, "start")
	for _, in := range []string{"start", "resume"} {
		if err := s.Submit(in); !errors.Is(err, command.ErrInvalidArgument) {
			t.Errorf("DrawBoard: %q should be rejected, got %v", in, err)
		}
	}

	rig.mustSubmit(t, "s44")
	if s.Phase() != Lose {
		t.Fatalf("expected Lose, got %s", s.Phase())
	}
	for _, in := range []string{"start", "s11", "f11", "pause", "cancel"} {
		if err := s.Submit(in); !errors.Is(err, command.ErrInvalidArgument) {
			t.Errorf("Lose: %q should be rejected, got %v", in, err)
		}
	}

	if err := s.Submit("x11"); !errors.Is(err, command.ErrUnknownCommand) {
		t.Errorf("expected ErrUnknownCommand, got %v", err)
	}
	if got := len(s.Snapshot().Errors); got != 12 {
		t.Errorf("expected 12 accumulated errors, got %d", got)
	}
}

func TestState_StepOnMine(t *testing.T) {
	rig := newRig(t, 60, board.Point{X: 3, Y: 3}, board.Point{X: 0, Y: 3})
	s := rig.State
	rig.mustSubmit(t, "start")
	rig.Clock.Advance(12 * time.Second)

	rig.mustSubmit(t, "sd4")

	if s.Phase() != Lose {
		t.Fatalf("expected Lose, got %s", s.Phase())
	}
	if s.Board.Visibility(3, 3) != board.Detonated {
		t.Error("stepped mine should be Detonated")
	}
	if s.Board.Visibility(0, 3) != board.RevealedMine {
		t.Error("other mine should be RevealedMine")
	}
	if s.Timer.State() != timer.Reset {
		t.Errorf("timer should be Reset, got %v", s.Timer.State())
	}
	if s.Trigger == nil || *s.Trigger != (board.Point{X: 3, Y: 3}) {
		t.Errorf("trigger should be (3,3), got %v", s.Trigger)
	}
	if s.Left != 48 {
		t.Errorf("expected 48 seconds left, got %d", s.Left)
	}
	if s.Elapsed() != 12*time.Second {
		t.Errorf("expected 12s elapsed, got %v", s.Elapsed())
	}
}

func TestState_FloodWins(t *testing.T) {
	rig := newRig(t, 60, board.Point{X: 3, Y: 3})
	s := rig.State
	rig.mustSubmit(t, "start")

	rig.mustSubmit(t, "s11")

	if s.Phase() != Win {
		t.Fatalf("expected Win, got %s", s.Phase())
	}
	if len(s.Opened) != 15 {
		t.Errorf("expected 15 opened tiles, got %d", len(s.Opened))
	}
	if s.Timer.State() != timer.Reset {
		t.Errorf("timer should be Reset after a win, got %v", s.Timer.State())
	}
	sn := s.Snapshot()
	if sn.Remaining != 60 {
		t.Errorf("snapshot should show the stopped clock, got %d", sn.Remaining)
	}
}

func TestState_FlagsAndToggle(t *testing.T) {
	rig := newRig(t, 60, board.Point{X: 3, Y: 3})
	s := rig.State
	rig.mustSubmit(t, "start")

	rig.mustSubmit(t, "tb2")
	if s.Board.Visibility(1, 1) != board.Flagged {
		t.Fatal("toggle should flag a concealed tile")
	}
	rig.mustSubmit(t, "tb2")
	if s.Board.Visibility(1, 1) != board.Concealed {
		t.Fatal("second toggle should conceal it again")
	}

	rig.mustSubmit(t, "fd4")
	rig.mustSubmit(t, "fd4")
	if s.Snapshot().MinesLeft != 0 {
		t.Errorf("expected 0 mines left, got %d", s.Snapshot().MinesLeft)
	}
	rig.mustSubmit(t, "ud4")
	rig.mustSubmit(t, "ud4")
	if s.Board.Visibility(3, 3) != board.Concealed {
		t.Error("unflag should conceal the tile")
	}
	if s.Phase() != DrawBoard {
		t.Errorf("flag commands keep the round going, got %s", s.Phase())
	}
}

func TestState_StepNeighbors(t *testing.T) {
	rig := newRig(t, 60, board.Point{X: 3, Y: 3})
	s := rig.State
	rig.mustSubmit(t, "start")

	rig.mustSubmit(t, "n33")
	if s.Phase() != DrawBoard || s.Board.Visibility(1, 1) != board.Concealed {
		t.Fatal("neighbours of a concealed tile must not open")
	}

	rig.mustSubmit(t, "s33")
	rig.mustSubmit(t, "fd4")
	rig.mustSubmit(t, "n33")
	if s.Phase() != Win {
		t.Errorf("expected Win after opening every neighbour, got %s", s.Phase())
	}
}

func TestState_TimerExpiry(t *testing.T) {
	rig := newRig(t, 60, board.Point{X: 3, Y: 3}, board.Point{X: 0, Y: 3})
	s := rig.State

	if err := s.TimerExpired(); err != nil || s.Phase() != Init {
		t.Fatalf("expiry before start must be a no-op, got %v in %s", err, s.Phase())
	}

	rig.mustSubmit(t, "start")
	rig.Clock.Advance(59 * time.Second)
	if expired, _ := s.CheckTimer(); expired {
		t.Fatal("timer should not be expired yet")
	}

	rig.Clock.Advance(time.Second)
	expired, err := s.CheckTimer()
	if !expired || err != nil {
		t.Fatalf("expected expiry, got %v %v", expired, err)
	}
	if s.Phase() != Lose {
		t.Fatalf("expected Lose, got %s", s.Phase())
	}
	for _, p := range []board.Point{{X: 3, Y: 3}, {X: 0, Y: 3}} {
		if s.Board.Visibility(p.X, p.Y) != board.RevealedMine {
			t.Errorf("mine %v should be RevealedMine", p)
		}
	}
	if s.Trigger != nil {
		t.Error("expiry has no trigger tile")
	}
	if s.Timer.State() != timer.Reset {
		t.Errorf("timer should be Reset, got %v", s.Timer.State())
	}

	before := s.Board.VisibilityMatrix()
	if err := s.TimerExpired(); err != nil {
		t.Errorf("second expiry should be a no-op, got %v", err)
	}
	after := s.Board.VisibilityMatrix()
	for y := range before {
		for x := range before[y] {
			if before[y][x] != after[y][x] {
				t.Errorf("second expiry changed tile (%d, %d)", x, y)
			}
		}
	}
}

func TestState_PauseResume(t *testing.T) {
	rig := newRig(t, 60, board.Point{X: 3, Y: 3})
	s := rig.State
	rig.mustSubmit(t, "start")

	rig.Clock.Advance(10 * time.Second)
	rig.mustSubmit(t, "pause")
	if s.Phase() != Paused || s.Timer.State() != timer.Paused {
		t.Fatalf("expected Paused phase and timer, got %s / %v", s.Phase(), s.Timer.State())
	}
	if err := s.Submit("s11"); !errors.Is(err, command.ErrInvalidArgument) {
		t.Errorf("game commands are illegal while paused, got %v", err)
	}

	rig.Clock.Advance(5 * time.Minute)
	if expired, _ := s.CheckTimer(); expired {
		t.Error("paused timer must not expire")
	}

	rig.mustSubmit(t, "resume")
	if s.Phase() != DrawBoard || s.Timer.State() != timer.Started {
		t.Fatalf("expected DrawBoard and Started, got %s / %v", s.Phase(), s.Timer.State())
	}
	if got := s.Snapshot().Remaining; got != 50 {
		t.Errorf("expected 50 seconds remaining, got %d", got)
	}
}

func TestState_RestartAndCancel(t *testing.T) {
	rig := newRig(t, 60, board.Point{X: 3, Y: 3})
	s := rig.State
	rig.mustSubmit(t, "start")
	first := s.Round
	rig.mustSubmit(t, "s44")

	rig.mustSubmit(t, "restart")
	if s.Phase() != DrawBoard {
		t.Fatalf("expected DrawBoard after restart, got %s", s.Phase())
	}
	if s.Round == first {
		t.Error("restart should start a new round")
	}
	if s.Board.Visibility(3, 3) != board.Concealed {
		t.Error("restart should bring a fresh board")
	}
	if s.Timer.State() != timer.Started {
		t.Errorf("expected timer Started, got %v", s.Timer.State())
	}

	rig.mustSubmit(t, "reset")
	if s.Phase() != DrawBoard {
		t.Errorf("restart mid-round should redraw, got %s", s.Phase())
	}

	rig.mustSubmit(t, "cancel")
	if s.Phase() != Init || s.Board != nil {
		t.Errorf("cancel should return to Init without a board, got %s", s.Phase())
	}
	if s.Timer.State() != timer.Reset {
		t.Errorf("expected timer Reset, got %v", s.Timer.State())
	}
}

func TestState_Exit(t *testing.T) {
	rig := newRig(t, 60, board.Point{X: 3, Y: 3})

	rig.mustSubmit(t, "quit")
	rig.mustSubmit(t, "start")
	rig.mustSubmit(t, "exit")

	if rig.Exits != 2 {
		t.Errorf("expected 2 exit notifications, got %d", rig.Exits)
	}
	if rig.State.Phase() != DrawBoard {
		t.Errorf("exit must not change the phase, got %s", rig.State.Phase())
	}
}

func TestState_SubmitCode(t *testing.T) {
	rig := newRig(t, 60, board.Point{X: 3, Y: 3})
	s := rig.State

	if err := s.SubmitCode('s', 0, 0); !errors.Is(err, command.ErrInvalidArgument) {
		t.Errorf("click before start should be rejected, got %v", err)
	}

	rig.mustSubmit(t, "start")
	if err := s.SubmitCode('t', 2, 1); err != nil {
		t.Fatalf("SubmitCode failed: %v", err)
	}
	if s.Board.Visibility(2, 1) != board.Flagged {
		t.Error("click toggle should flag the tile")
	}
	if err := s.SubmitCode('s', 4, 0); !errors.Is(err, command.ErrInvalidArgument) {
		t.Errorf("out of range click should be rejected, got %v", err)
	}
}

func TestState_OutOfRangeForSmallBoard(t *testing.T) {
	rig := newRig(t, 60, board.Point{X: 3, Y: 3})
	rig.mustSubmit(t, "start")

	if err := rig.State.Submit("sh8"); !errors.Is(err, command.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for a tile outside 4x4, got %v", err)
	}
}

func TestState_GeneratorFailure(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	s, err := NewState(GameOptions{Size: 4, Mines: 1, TimeLimit: 60}, Deps{
		Clock: clock,
		Generator: func(*rand.Rand) (*board.Board, error) {
			return nil, errors.New("no layout")
		},
	})
	if err != nil {
		t.Fatalf("NewState failed: %v", err)
	}

	if err := s.Submit("start"); err == nil {
		t.Error("start should report the generator error")
	}
	if s.Phase() != Init {
		t.Errorf("failed generation should fall back to Init, got %s", s.Phase())
	}
}

func TestState_DefaultGenerator(t *testing.T) {
	opts := DefaultOptions()
	opts.Seed = 42
	s, err := NewState(opts, Deps{})
	if err != nil {
		t.Fatalf("NewState failed: %v", err)
	}
	if err := s.Submit("start"); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	mines := 0
	for y := 0; y < s.Board.Size; y++ {
		for x := 0; x < s.Board.Size; x++ {
			if s.Board.IsMine(x, y) {
				mines++
			}
		}
	}
	if s.Board.Size != 8 || mines != 16 {
		t.Errorf("expected 8x8 with 16 mines, got %dx%d with %d", s.Board.Size, s.Board.Size, mines)
	}
}
