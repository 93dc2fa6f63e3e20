package main

import (
	"fmt"
	"strings"

	"go-mines/internal/board"
	"go-mines/internal/game"
	"go-mines/internal/state"
	"go-mines/internal/timer"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	boldStyle  = lipgloss.NewStyle().Bold(true)
	scoreStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // Color for the score
	greenStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	faintStyle = lipgloss.NewStyle().Faint(true)
)

// Left steps, right toggles a flag, middle steps around a number.
var mouseCodes = map[tea.MouseButton]byte{
	tea.MouseButtonLeft:   's',
	tea.MouseButtonRight:  't',
	tea.MouseButtonMiddle: 'n',
}

var phaseNames = map[state.Phase]string{
	state.Init:      "ready",
	state.Reinit:    "dealing",
	state.DrawBoard: "playing",
	state.Applying:  "playing",
	state.Paused:    "paused",
	state.Win:       "won",
	state.Lose:      "lost",
}

const maxShownErrors = 3

// Board geometry on screen: the title takes the first line, labels add a
// header line and a two character row prefix, and every tile is two
// cells wide.
func (s *LocalState) boardOrigin() (left, top int) {
	if s.Theme.ShowLabels {
		return 2, 2
	}
	return 0, 1
}

// cellAt maps a terminal cell to a board tile.
func (s *LocalState) cellAt(mx, my, size int) (int, int, bool) {
	left, top := s.boardOrigin()
	if mx < left || my < top {
		return 0, 0, false
	}
	x, y := (mx-left)/2, my-top
	if x >= size || y >= size {
		return 0, 0, false
	}
	return x, y, true
}

func color(c string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c))
}

func (s *LocalState) renderTile(snap game.Status, x, y int) string {
	sym := s.Theme.Symbols
	col := s.Theme.Colors

	switch snap.Visibility[y][x] {
	case board.Flagged:
		return color(col.Flagged).Render(sym.Flagged)
	case board.Stepped:
		n := snap.Adjacency[y][x]
		if n == 0 {
			return faintStyle.Render(sym.Empty)
		}
		return color(col.Number).Render(fmt.Sprint(n))
	case board.Detonated:
		return color(col.Detonated).Bold(true).Render(sym.Detonated)
	case board.RevealedMine:
		return color(col.Mine).Render(sym.Mine)
	default:
		return color(col.Concealed).Render(sym.Concealed)
	}
}

func (s *LocalState) RenderBoard(snap game.Status) string {
	var b strings.Builder

	if s.Theme.ShowLabels {
		b.WriteString("  ")
		for x := 0; x < snap.Size; x++ {
			b.WriteString(faintStyle.Render(string(rune('a'+x))) + " ")
		}
		b.WriteString("\n")
	}

	for y := 0; y < snap.Size; y++ {
		if s.Theme.ShowLabels {
			b.WriteString(faintStyle.Render(fmt.Sprint(y+1)) + " ")
		}
		for x := 0; x < snap.Size; x++ {
			b.WriteString(s.renderTile(snap, x, y) + " ")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (s *LocalState) renderTimer(snap game.Status) string {
	if snap.Limit <= 0 {
		return "off"
	}
	text := timer.Format(snap.Remaining)

	col := s.Theme.Colors
	switch snap.Level {
	case timer.Danger:
		return color(col.Danger).Bold(true).Render(text)
	case timer.Warning:
		return color(col.Warning).Render(text)
	case timer.Normal:
		return color(col.Normal).Render(text)
	default:
		return text
	}
}

func (s *LocalState) View() string {
	snap := s.Session.Snapshot()
	var display strings.Builder

	// 1. Title
	title := "go-mines"
	if snap.HasBoard() {
		title += " | round " + snap.Round.String()[:8]
		if snap.Layout != "" {
			title += " | " + snap.Layout
		}
	}
	display.WriteString(boldStyle.Render(title) + "\n")

	// 2. Board
	if snap.HasBoard() {
		display.WriteString(s.RenderBoard(snap))
	} else {
		display.WriteString("\nPress ctrl+n or type start to deal a board.\n")
	}

	// 3. Status line
	statusLine := fmt.Sprintf("%s | TIME: %s", strings.ToUpper(phaseNames[snap.Phase]), s.renderTimer(snap))
	if snap.HasBoard() {
		statusLine += fmt.Sprintf(" | MINES: %d", snap.MinesLeft)
	}
	statusLine += scoreStyle.Render(fmt.Sprintf(" | SCORE: %d | TOTAL: %d (%dW/%dL)", snap.Score, snap.Total, snap.Wins, snap.Losses))
	display.WriteString("\n" + statusLine + "\n")

	// 4. Outcome
	switch snap.Phase {
	case state.Win:
		msg := fmt.Sprintf("Cleared! Score: %d", snap.Score)
		if snap.HighScore {
			msg += " - best round so far!"
		}
		display.WriteString(greenStyle.Render(msg) + "\n")
	case state.Lose:
		msg := "Boom!"
		if snap.Trigger == nil {
			msg = "Time's up!"
		}
		display.WriteString(color(s.Theme.Colors.Error).Render(msg) + " ctrl+n for another round\n")
	case state.Paused:
		display.WriteString(faintStyle.Render("Paused, ctrl+p to resume") + "\n")
	}

	// 5. Input and errors
	display.WriteString("\n" + s.Input.View() + "\n")
	errs := snap.Errors
	if len(errs) > maxShownErrors {
		errs = errs[len(errs)-maxShownErrors:]
	}
	for _, e := range errs {
		display.WriteString(color(s.Theme.Colors.Error).Render(e) + "\n")
	}

	display.WriteString(faintStyle.Render("ctrl+n new | ctrl+p pause | esc cancel | click step | right click flag | ctrl+c quit"))
	return display.String()
}

// Summary is printed after the program exits.
func (s *LocalState) Summary() string {
	snap := s.Session.Snapshot()
	if snap.Rounds == 0 {
		return "No rounds finished."
	}

	out := fmt.Sprintf("%d rounds, %d won, %d lost. Total score: %d", snap.Rounds, snap.Wins, snap.Losses, snap.Total)
	out += "\nTop rounds:"
	for _, entry := range snap.Top {
		out += fmt.Sprintf("\n  * %d (%s in %s) on %s", entry.Score, entry.Outcome, timer.Format(entry.Seconds), entry.Timestamp)
	}
	return out
}
