package game

import (
	"io"
	"math/rand"
	"sync"

	"go-mines/internal/board"
	"go-mines/internal/scoring"
	"go-mines/internal/state"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Session owns one game and serializes every operation on it, so input
// handlers and the timer driver can call it from different goroutines.
// It also keeps the score of the rounds played in this process.
type Session struct {
	mu      sync.Mutex
	game    *Game
	score   *scoring.Scoring
	log     logrus.FieldLogger
	layouts []Layout
	next    int
	layout  string

	// Round being scored.
	round   uuid.UUID
	opened  int
	settled bool
}

// Status is a snapshot of the game plus the session tally.
type Status struct {
	state.Snapshot
	Layout    string
	Score     int
	Total     int
	Wins      int
	Losses    int
	Rounds    int
	HighScore bool
	Top       []scoring.ScoreHistoryEntry
}

// NewSession creates a session in the Init phase. When layouts are given,
// each new round uses the next one in turn instead of a random board.
func NewSession(opts state.GameOptions, layouts []Layout, deps state.Deps) (*Session, error) {
	if deps.Log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		deps.Log = l
	}

	s := &Session{
		score:   scoring.InitScoring(),
		log:     deps.Log,
		layouts: layouts,
	}
	if len(layouts) > 0 {
		deps.Generator = s.nextLayout
	}

	g, err := NewGame(opts, deps)
	if err != nil {
		return nil, err
	}
	s.game = g
	return s, nil
}

func (s *Session) nextLayout(_ *rand.Rand) (*board.Board, error) {
	l := s.layouts[s.next%len(s.layouts)]
	s.next++
	b, err := l.Build()
	if err != nil {
		return nil, err
	}
	s.layout = l.Title()
	s.log.WithFields(logrus.Fields{"layout": s.layout, "source": l.Source}).Debug("layout selected")
	return b, nil
}

// Submit applies one line of user input.
func (s *Session) Submit(raw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.game.Submit(raw)
	s.settle()
	return err
}

// SubmitCode applies a structured (code, x, y) command.
func (s *Session) SubmitCode(code byte, x, y int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.game.SubmitCode(code, x, y)
	s.settle()
	return err
}

// Tick checks the countdown of round. Stale ticks from an earlier round
// are dropped. It reports whether the round timed out.
func (s *Session) Tick(round uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	expired, err := s.game.HandleTick(round)
	if err != nil {
		s.log.WithError(err).Warn("timer expiry failed")
	}
	s.settle()
	return expired
}

// Round is the id of the current round, uuid.Nil before the first start.
func (s *Session) Round() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.State.Round
}

// Snapshot returns the current status.
func (s *Session) Snapshot() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		Snapshot:  s.game.Snapshot(),
		Layout:    s.layout,
		Score:     s.score.CurrentScore,
		Total:     s.score.TotalScore,
		Wins:      s.score.Wins,
		Losses:    s.score.Losses,
		Rounds:    s.score.Rounds(),
		HighScore: s.score.Rounds() > 0 && s.score.GotHighScore(),
		Top:       s.score.GetNScoreEntries(5),
	}
	if !st.HasBoard() {
		st.Layout = ""
	}
	return st
}

// settle brings the tally in line with the game after every operation.
// Rounds abandoned by cancel or restart are never filed.
func (s *Session) settle() {
	st := s.game.State
	if st.Board == nil {
		return
	}

	if st.Round != s.round {
		s.round = st.Round
		s.opened = 0
		s.settled = false
		s.score.BeginRound(st.Round.String(), st.StartedAt)
	}
	for n := st.Board.Stepped(); s.opened < n; s.opened++ {
		s.score.ScoreEvent("tileOpened")
	}
	if s.settled {
		return
	}

	var outcome string
	switch st.Phase() {
	case state.Win:
		outcome = "win"
		s.score.ScoreEvent("win")
		s.score.AddTimeBonus(st.Left)
	case state.Lose:
		outcome = "loss"
		s.score.ScoreEvent("loss")
	default:
		return
	}
	s.score.EndRound(outcome, st.Elapsed())
	s.settled = true

	s.log.WithFields(logrus.Fields{
		"round":   st.Round,
		"outcome": outcome,
		"score":   s.score.CurrentScore,
		"total":   s.score.TotalScore,
	}).Info("round scored")
}
