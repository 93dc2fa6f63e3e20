package command

import (
	"fmt"
	"strings"
)

var keywords = map[string]SystemOp{
	"start":   Start,
	"restart": Restart,
	"reset":   Restart,
	"quit":    Exit,
	"exit":    Exit,
	"cancel":  Cancel,
	"pause":   Pause,
	"resume":  Resume,
}

// aliases are the long command words accepted before a space separated
// coordinate pair ("step b2").
var aliases = map[string]GameOp{
	"step":       Step,
	"s":          Step,
	"go":         Step,
	"goto":       Step,
	"g":          Step,
	"flag":       Flag,
	"f":          Flag,
	"mark":       Flag,
	"m":          Flag,
	"unflag":     Unflag,
	"u":          Unflag,
	"unmark":     Unflag,
	"toggle":     Toggle,
	"t":          Toggle,
	"neighbors":  StepNeighbors,
	"neighbours": StepNeighbors,
	"n":          StepNeighbors,
	"chord":      StepNeighbors,
}

// Parse converts a raw input line into a Command. Input is trimmed and
// lower-cased first. Parse never looks at game state: whether a command is
// legal right now is decided by the phase machine.
//
// Game commands are "<code><column><row>", 1-indexed: column is a letter
// from 'a' or a digit from '1', row is a digit from '1'.
func Parse(input string) (Command, error) {
	in := normalize(input)
	if in == "" {
		return Game{Op: None}, nil
	}
	if op, ok := keywords[in]; ok {
		return System{Op: op}, nil
	}

	if word, args, ok := strings.Cut(in, " "); ok {
		op, known := aliases[word]
		if !known {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, word)
		}
		x, y, err := parseCoordinates(strings.TrimSpace(args))
		if err != nil {
			return nil, err
		}
		return Game{Op: op, X: x, Y: y}, nil
	}

	if len(in) != 3 {
		if _, known := codes[in[0]]; known {
			return nil, fmt.Errorf("%w: %q must be a code followed by column and row", ErrInvalidArgument, in)
		}
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, in)
	}

	x, y, err := parseCoordinates(in[1:])
	if err != nil {
		return nil, err
	}
	op, ok := codes[in[0]]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, in[:1])
	}
	return Game{Op: op, X: x, Y: y}, nil
}

func parseCoordinates(s string) (int, int, error) {
	if len(s) != 2 {
		return 0, 0, fmt.Errorf("%w: coordinates %q", ErrInvalidArgument, s)
	}
	x, ok := column(s[0])
	if !ok {
		return 0, 0, fmt.Errorf("%w: column %q", ErrInvalidArgument, s[0])
	}
	y, ok := digit(s[1])
	if !ok {
		return 0, 0, fmt.Errorf("%w: row %q", ErrInvalidArgument, s[1])
	}
	return x, y, nil
}

func column(c byte) (int, bool) {
	if c >= 'a' && c < 'a'+MaxCoordinate {
		return int(c - 'a'), true
	}
	return digit(c)
}

func digit(c byte) (int, bool) {
	if c >= '1' && c < '1'+MaxCoordinate {
		return int(c - '1'), true
	}
	return 0, false
}
