package state

import (
	"go-mines/internal/board"
	"go-mines/internal/timer"

	"github.com/google/uuid"
)

// Snapshot is a read-only copy of everything the presentation layer draws.
type Snapshot struct {
	Round      uuid.UUID
	Phase      Phase
	Size       int
	Visibility [][]board.Visibility
	Adjacency  [][]int
	Trigger    *board.Point
	MinesLeft  int

	Timer     timer.State
	Limit     int
	Remaining int
	Level     timer.Level

	Errors []string
}

// HasBoard reports whether the snapshot carries a board to draw.
func (sn Snapshot) HasBoard() bool {
	return sn.Visibility != nil
}

func (s *State) Snapshot() Snapshot {
	now := s.clock.Now()
	sn := Snapshot{
		Round:     s.Round,
		Phase:     s.Phase(),
		Size:      s.Options.Size,
		Timer:     s.Timer.State(),
		Limit:     s.Timer.Limit,
		Remaining: s.Timer.Remaining(now),
		Level:     s.Timer.Level(now),
	}

	if s.Board != nil {
		sn.Size = s.Board.Size
		sn.Visibility = s.Board.VisibilityMatrix()
		sn.Adjacency = s.Board.AdjacencyMatrix()
		sn.MinesLeft = s.Board.MinesLeft()
		if s.Trigger != nil {
			t := *s.Trigger
			sn.Trigger = &t
		}
	}

	// Once a round is over the clock shows where it stopped.
	if sn.Phase == Win || sn.Phase == Lose {
		sn.Remaining = s.Left
	}

	for _, err := range s.errors {
		sn.Errors = append(sn.Errors, err.Error())
	}
	return sn
}
