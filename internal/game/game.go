package game

import (
	"go-mines/internal/state"
	"go-mines/internal/timer"

	"github.com/google/uuid"
)

// Game encapsulates the core game logic, independent of the UI.
type Game struct {
	State *state.State
}

// NewGame initializes a new game instance in the Init phase.
func NewGame(opts state.GameOptions, deps state.Deps) (*Game, error) {
	st, err := state.NewState(opts, deps)
	if err != nil {
		return nil, err
	}
	return &Game{State: st}, nil
}

// Submit processes one line of user input.
func (g *Game) Submit(raw string) error {
	return g.State.Submit(raw)
}

// SubmitCode processes a structured command, such as a mouse click.
func (g *Game) SubmitCode(code byte, x, y int) error {
	return g.State.SubmitCode(code, x, y)
}

// HandleTick processes a timer tick addressed to round. Ticks for another
// round, or arriving while the countdown is not running, are ignored. It
// reports whether the tick ended the round.
func (g *Game) HandleTick(round uuid.UUID) (bool, error) {
	if round != g.State.Round || g.State.Timer.State() != timer.Started {
		return false, nil
	}
	return g.State.CheckTimer()
}

// Snapshot returns a copy of everything needed to draw the game.
func (g *Game) Snapshot() state.Snapshot {
	return g.State.Snapshot()
}
