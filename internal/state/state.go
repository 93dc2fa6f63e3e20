package state

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"time"

	"go-mines/internal/board"
	"go-mines/internal/command"
	"go-mines/internal/timer"

	"github.com/google/uuid"
	"github.com/looplab/fsm"
	"github.com/sirupsen/logrus"
)

// Phase is the top-level game state. Values are the fsm state names.
type Phase string

const (
	Init      Phase = "init"
	Reinit    Phase = "reinit"
	DrawBoard Phase = "drawBoard"
	Applying  Phase = "applying"
	Paused    Phase = "paused"
	Win       Phase = "win"
	Lose      Phase = "lose"
)

const maxErrors = 32

// Generator builds the board for a new round.
type Generator func(rng *rand.Rand) (*board.Board, error)

type GameOptions struct {
	Size      int
	Mines     int
	TimeLimit int   // seconds, 0 disables the countdown
	Seed      int64 // 0 seeds from the clock
}

func DefaultOptions() GameOptions {
	return GameOptions{
		Size:      board.DefaultSize,
		Mines:     board.DefaultMines,
		TimeLimit: 180,
	}
}

// Deps are the collaborators the core talks to. Zero values are replaced
// with working defaults.
type Deps struct {
	Clock     timer.Clock
	Exit      func()
	Log       logrus.FieldLogger
	Generator Generator
}

type State struct {
	Board   *board.Board
	Timer   *timer.Timer
	FSM     *fsm.FSM
	Round   uuid.UUID
	Options GameOptions

	// Trigger is the mine that ended the last lost round, nil when the
	// countdown ran out.
	Trigger *board.Point
	// Opened holds the tiles opened by the last applied command.
	Opened []board.Point
	// StartedAt and EndedAt bound the last round; Left is the countdown
	// value when it ended.
	StartedAt time.Time
	EndedAt   time.Time
	Left      int

	errors    []error
	clock     timer.Clock
	exit      func()
	log       logrus.FieldLogger
	rng       *rand.Rand
	generator Generator
	current   command.Game
	result    board.Result
}

func NewState(opts GameOptions, deps Deps) (*State, error) {
	if opts.Size <= 0 || opts.Size > command.MaxCoordinate {
		return nil, fmt.Errorf("board size %d outside 1..%d", opts.Size, command.MaxCoordinate)
	}
	if opts.Mines < 0 || opts.Mines >= opts.Size*opts.Size {
		return nil, board.InvalidBoardParamsError{Size: opts.Size, Mines: opts.Mines}
	}

	if deps.Clock == nil {
		deps.Clock = timer.SystemClock{}
	}
	if deps.Exit == nil {
		deps.Exit = func() {}
	}
	if deps.Log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		deps.Log = l
	}
	seed := opts.Seed
	if seed == 0 {
		seed = deps.Clock.Now().UnixNano()
	}

	s := &State{
		Timer:     timer.New(opts.TimeLimit),
		Options:   opts,
		clock:     deps.Clock,
		exit:      deps.Exit,
		log:       deps.Log,
		rng:       rand.New(rand.NewSource(seed)),
		generator: deps.Generator,
	}
	if s.generator == nil {
		s.generator = func(rng *rand.Rand) (*board.Board, error) {
			return board.Generate(opts.Size, opts.Mines, rng)
		}
	}

	s.FSM = fsm.NewFSM(
		string(Init),
		getStateTransitions(),
		getStateCallbacks(s),
	)
	return s, nil
}

func (s *State) Phase() Phase {
	return Phase(s.FSM.Current())
}

func (s *State) Now() time.Time {
	return s.clock.Now()
}

// Errors returns the accumulated parse and legality errors, oldest first.
func (s *State) Errors() []error {
	return append([]error(nil), s.errors...)
}

func (s *State) ClearErrors() {
	s.errors = nil
}

func (s *State) record(err error) error {
	s.errors = append(s.errors, err)
	if len(s.errors) > maxErrors {
		s.errors = s.errors[len(s.errors)-maxErrors:]
	}
	s.log.WithError(err).WithField("phase", s.Phase()).Info("command rejected")
	return err
}

// Submit parses raw input and applies it.
func (s *State) Submit(raw string) error {
	cmd, err := command.Parse(raw)
	if err != nil {
		return s.record(err)
	}
	return s.Apply(cmd)
}

// SubmitCode applies a structured (code, x, y) triple, as produced by a
// pointer click. It skips the text grammar but not the phase checks.
func (s *State) SubmitCode(code byte, x, y int) error {
	size := s.Options.Size
	if s.Board != nil {
		size = s.Board.Size
	}
	cmd, err := command.FromCode(code, x, y, size)
	if err != nil {
		return s.record(err)
	}
	return s.Apply(cmd)
}

// Apply checks that cmd is legal in the current phase and runs it.
func (s *State) Apply(cmd command.Command) error {
	var err error
	switch c := cmd.(type) {
	case command.System:
		err = s.applySystem(c)
	case command.Game:
		err = s.applyGame(c)
	default:
		err = fmt.Errorf("%w: unsupported command %T", command.ErrUnknownCommand, cmd)
	}
	if err != nil {
		return s.record(err)
	}
	return nil
}

func (s *State) applySystem(c command.System) error {
	var event string
	switch c.Op {
	case command.Exit:
		s.log.WithField("phase", s.Phase()).Info("exit requested")
		s.exit()
		return nil
	case command.Start:
		event = "start"
	case command.Restart:
		event = "restart"
	case command.Cancel:
		event = "cancel"
	case command.Pause:
		event = "pause"
	case command.Resume:
		event = "resume"
	default:
		return fmt.Errorf("%w: system command %v", command.ErrUnknownCommand, c.Op)
	}
	return s.fire(event, c)
}

func (s *State) applyGame(c command.Game) error {
	if s.Phase() != DrawBoard {
		return fmt.Errorf("%w: %v not allowed while %s", command.ErrInvalidArgument, c.Op, s.Phase())
	}
	if c.Op != command.None && !s.Board.Contains(c.X, c.Y) {
		return fmt.Errorf("%w: (%d, %d) outside %dx%d board", command.ErrInvalidArgument, c.X+1, c.Y+1, s.Board.Size, s.Board.Size)
	}
	return s.fire("input", c)
}

func (s *State) fire(event string, cmd command.Command) error {
	if !s.FSM.Can(event) {
		return fmt.Errorf("%w: %s not allowed while %s", command.ErrInvalidArgument, cmd, s.Phase())
	}
	err := s.FSM.Event(context.Background(), event, cmd)
	var noTransition fsm.NoTransitionError
	if err != nil && !errors.As(err, &noTransition) {
		return err
	}
	return nil
}

// TimerExpired ends a running round as if a mine had gone off. It is a
// no-op unless the countdown is running.
func (s *State) TimerExpired() error {
	if s.Timer.State() != timer.Started || s.Phase() != DrawBoard {
		return nil
	}
	return s.FSM.Event(context.Background(), "expire")
}

// CheckTimer fires TimerExpired once the countdown has reached zero.
func (s *State) CheckTimer() (bool, error) {
	if !s.Timer.Expired(s.clock.Now()) {
		return false, nil
	}
	return true, s.TimerExpired()
}

func (s *State) newRound() error {
	b, err := s.generator(s.rng)
	if err != nil {
		return err
	}
	s.Board = b
	s.Round = uuid.New()
	s.Trigger = nil
	s.Opened = nil
	s.StartedAt = s.clock.Now()
	s.EndedAt = time.Time{}
	s.Left = 0
	return nil
}

func (s *State) execute(c command.Game) board.Result {
	b := s.Board
	s.Opened = nil
	var result board.Result

	switch c.Op {
	case command.None:
	case command.Step:
		result, s.Opened = b.Reveal(c.X, c.Y)
	case command.StepNeighbors:
		result, s.Opened = b.RevealNeighbors(c.X, c.Y)
	case command.Flag:
		b.Flag(c.X, c.Y)
	case command.Unflag:
		b.Unflag(c.X, c.Y)
	case command.Toggle:
		b.Toggle(c.X, c.Y)
	}

	if result == board.MineBlown {
		s.Trigger = s.detonatedTile()
	}
	for _, p := range s.Opened {
		s.log.WithFields(logrus.Fields{"x": p.X, "y": p.Y, "count": b.Adjacency(p.X, p.Y)}).Debug("open")
	}
	return result
}

func (s *State) finish() {
	now := s.clock.Now()
	s.Left = s.Timer.Remaining(now)
	s.EndedAt = now
	s.Timer.Reset()
}

// Elapsed is the wall time of the current or last round.
func (s *State) Elapsed() time.Duration {
	if s.StartedAt.IsZero() {
		return 0
	}
	end := s.EndedAt
	if end.IsZero() {
		end = s.clock.Now()
	}
	return end.Sub(s.StartedAt)
}

func (s *State) detonatedTile() *board.Point {
	for y := 0; y < s.Board.Size; y++ {
		for x := 0; x < s.Board.Size; x++ {
			if s.Board.Visibility(x, y) == board.Detonated {
				return &board.Point{X: x, Y: y}
			}
		}
	}
	return nil
}

func getStateTransitions() []fsm.EventDesc {
	return fsm.Events{
		// Round lifecycle
		{Name: "start", Src: []string{string(Init)}, Dst: string(Reinit)},
		{Name: "restart", Src: []string{string(DrawBoard), string(Paused), string(Win), string(Lose)}, Dst: string(Reinit)},
		{Name: "generated", Src: []string{string(Reinit)}, Dst: string(DrawBoard)},
		{Name: "failed", Src: []string{string(Reinit)}, Dst: string(Init)},
		{Name: "cancel", Src: []string{string(DrawBoard), string(Paused)}, Dst: string(Init)},

		// Board commands
		{Name: "input", Src: []string{string(DrawBoard)}, Dst: string(Applying)},
		{Name: "wait", Src: []string{string(Applying)}, Dst: string(DrawBoard)},
		{Name: "detonate", Src: []string{string(Applying)}, Dst: string(Lose)},
		{Name: "clear", Src: []string{string(Applying)}, Dst: string(Win)},

		// Clock
		{Name: "expire", Src: []string{string(DrawBoard)}, Dst: string(Lose)},
		{Name: "pause", Src: []string{string(DrawBoard)}, Dst: string(Paused)},
		{Name: "resume", Src: []string{string(Paused)}, Dst: string(DrawBoard)},
	}
}

func getStateCallbacks(s *State) map[string]fsm.Callback {
	return fsm.Callbacks{
		"enter_state": func(_ context.Context, e *fsm.Event) {
			s.log.WithFields(logrus.Fields{
				"event": e.Event,
				"from":  e.Src,
				"to":    e.Dst,
				"round": s.Round,
			}).Debug("transition")
		},
		"enter_" + string(Init): func(_ context.Context, e *fsm.Event) {
			s.Board = nil
			s.Trigger = nil
			s.Opened = nil
			s.Timer.Reset()
		},
		"enter_" + string(Reinit): func(ctx context.Context, e *fsm.Event) {
			s.Timer.Reset()
			if err := s.newRound(); err != nil {
				// Options are validated up front, so only a custom
				// generator can get here.
				s.log.WithError(err).Error("board generation failed")
				e.Err = err
				e.FSM.Event(ctx, "failed")
				return
			}
			s.log.WithFields(logrus.Fields{"round": s.Round, "mines": s.Board.Mines}).Info("round started")
			e.FSM.Event(ctx, "generated")
		},
		"enter_" + string(DrawBoard): func(_ context.Context, e *fsm.Event) {
			switch Phase(e.Src) {
			case Reinit:
				s.Timer.Start(s.clock.Now())
			case Paused:
				s.Timer.Resume(s.clock.Now())
			}
		},
		"enter_" + string(Paused): func(_ context.Context, e *fsm.Event) {
			s.Timer.Pause(s.clock.Now())
		},
		"enter_" + string(Applying): func(ctx context.Context, e *fsm.Event) {
			if len(e.Args) > 0 {
				s.current, _ = e.Args[0].(command.Game)
			} else {
				s.current = command.Game{}
			}

			s.result = s.execute(s.current)
			switch {
			case s.result == board.MineBlown:
				e.FSM.Event(ctx, "detonate")
			case s.Board.IsWon():
				e.FSM.Event(ctx, "clear")
			default:
				e.FSM.Event(ctx, "wait")
			}
		},
		"enter_" + string(Lose): func(_ context.Context, e *fsm.Event) {
			if e.Event == "expire" {
				s.Trigger = nil
				s.Board.Detonate(nil)
			}
			s.finish()
			s.log.WithFields(logrus.Fields{"round": s.Round, "cause": e.Event}).Info("round lost")
		},
		"enter_" + string(Win): func(_ context.Context, e *fsm.Event) {
			s.finish()
			s.log.WithField("round", s.Round).Info("round won")
		},
	}
}
