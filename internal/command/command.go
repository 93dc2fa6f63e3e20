package command

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownCommand  = errors.New("unknown command")
	ErrInvalidArgument = errors.New("invalid argument")
)

// MaxCoordinate is the largest board side the text grammar can address:
// columns a..h or 1..8, rows 1..8.
const MaxCoordinate = 8

// Command is either a System or a Game command.
type Command interface {
	command()
	String() string
}

type SystemOp int

const (
	Start SystemOp = iota
	Restart
	Exit
	Cancel
	Pause
	Resume
)

var systemWords = map[SystemOp]string{
	Start:   "start",
	Restart: "restart",
	Exit:    "exit",
	Cancel:  "cancel",
	Pause:   "pause",
	Resume:  "resume",
}

func (op SystemOp) String() string {
	if w, ok := systemWords[op]; ok {
		return w
	}
	return fmt.Sprintf("SystemOp(%d)", int(op))
}

type GameOp int

const (
	None GameOp = iota
	Step
	StepNeighbors
	Flag
	Unflag
	Toggle
)

// codes maps the one-letter command codes onto game operations.
var codes = map[byte]GameOp{
	's': Step,
	'n': StepNeighbors,
	'f': Flag,
	'u': Unflag,
	't': Toggle,
}

func (op GameOp) Code() byte {
	for c, o := range codes {
		if o == op {
			return c
		}
	}
	return 0
}

func (op GameOp) String() string {
	switch op {
	case None:
		return "none"
	case Step:
		return "step"
	case StepNeighbors:
		return "neighbors"
	case Flag:
		return "flag"
	case Unflag:
		return "unflag"
	case Toggle:
		return "toggle"
	}
	return fmt.Sprintf("GameOp(%d)", int(op))
}

// System requests a phase transition or process exit.
type System struct {
	Op SystemOp
}

func (System) command() {}

func (c System) String() string { return c.Op.String() }

// Game mutates the board at (X, Y): X is the column, Y the row, both 0-indexed.
type Game struct {
	Op   GameOp
	X, Y int
}

func (Game) command() {}

// String renders the command in the canonical short grammar, e.g. "sb2".
func (c Game) String() string {
	if c.Op == None {
		return ""
	}
	return fmt.Sprintf("%c%c%d", c.Op.Code(), 'a'+c.X, c.Y+1)
}

// FromCode builds a game command from a structured (code, x, y) triple, as
// delivered by pointer input. Coordinates are 0-indexed and must lie inside
// a board of the given size.
func FromCode(code byte, x, y, size int) (Game, error) {
	op, ok := codes[lower(code)]
	if !ok {
		return Game{}, fmt.Errorf("%w: code %q", ErrUnknownCommand, code)
	}
	if x < 0 || y < 0 || x >= size || y >= size {
		return Game{}, fmt.Errorf("%w: (%d, %d) outside %dx%d board", ErrInvalidArgument, x, y, size, size)
	}
	return Game{Op: op, X: x, Y: y}, nil
}

func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + 'a' - 'A'
	}
	return b
}

// IsExitRequested reports whether a raw input asks to leave the program.
func IsExitRequested(input string) bool {
	cmd, err := Parse(input)
	if err != nil {
		return false
	}
	sys, ok := cmd.(System)
	return ok && sys.Op == Exit
}

func normalize(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}
