package timer

import (
	"fmt"
	"time"
)

// Clock supplies the wall-clock time; tests substitute a fake.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

type State int

const (
	Reset State = iota
	Started
	Paused
)

func (s State) String() string {
	switch s {
	case Reset:
		return "reset"
	case Started:
		return "started"
	case Paused:
		return "paused"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Level grades the remaining time for display.
type Level int

const (
	Disabled Level = iota
	Normal
	Warning
	Danger
)

func (l Level) String() string {
	switch l {
	case Disabled:
		return "disabled"
	case Normal:
		return "normal"
	case Warning:
		return "warning"
	case Danger:
		return "danger"
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// Timer is a countdown anchored to the second it was started or resumed.
// A limit of zero or less disables it: Start leaves it Reset.
type Timer struct {
	Limit int // seconds

	state     State
	startedAt int64 // unix seconds
	left      int   // seconds remaining at startedAt, or while paused
}

func New(limit int) *Timer {
	return &Timer{Limit: limit, left: limit}
}

func (t *Timer) Enabled() bool {
	return t.Limit > 0
}

func (t *Timer) State() State {
	return t.state
}

// StartedAt returns the anchor of a running timer.
func (t *Timer) StartedAt() time.Time {
	return time.Unix(t.startedAt, 0)
}

// Start begins a fresh countdown at now.
func (t *Timer) Start(now time.Time) {
	if !t.Enabled() {
		t.Reset()
		return
	}
	t.left = t.Limit
	t.startedAt = now.Unix()
	t.state = Started
}

// Pause freezes the remaining time.
func (t *Timer) Pause(now time.Time) {
	if t.state != Started {
		return
	}
	t.left = t.Remaining(now)
	t.state = Paused
}

// Resume re-anchors a paused countdown at now.
func (t *Timer) Resume(now time.Time) {
	if t.state != Paused {
		return
	}
	t.startedAt = now.Unix()
	t.state = Started
}

func (t *Timer) Reset() {
	t.state = Reset
	t.left = t.Limit
	t.startedAt = 0
}

// Remaining is limit minus elapsed whole seconds, never below zero.
func (t *Timer) Remaining(now time.Time) int {
	if t.state != Started {
		if t.left < 0 {
			return 0
		}
		return t.left
	}
	elapsed := now.Unix() - t.startedAt
	if elapsed < 0 {
		elapsed = 0
	}
	remaining := int64(t.left) - elapsed
	if remaining < 0 {
		return 0
	}
	return int(remaining)
}

// Expired reports whether a running countdown has reached zero.
func (t *Timer) Expired(now time.Time) bool {
	return t.state == Started && t.Remaining(now) == 0
}

func (t *Timer) Level(now time.Time) Level {
	if t.state == Reset || !t.Enabled() {
		return Disabled
	}
	remaining := t.Remaining(now)
	switch {
	case remaining*3 <= t.Limit:
		return Danger
	case remaining*3 <= t.Limit*2:
		return Warning
	default:
		return Normal
	}
}

// Format renders seconds as m:ss.
func Format(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
