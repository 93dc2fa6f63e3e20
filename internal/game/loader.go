package game

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go-mines/internal/board"
	"go-mines/internal/command"

	"gopkg.in/yaml.v3"
)

var ErrBadLayout = errors.New("bad layout")

// Layout is a fixed mine arrangement. Board rows use '*' for a mine and
// '.' for a safe tile, top row first.
type Layout struct {
	Name   string   `yaml:"name"`
	Board  []string `yaml:"board"`
	Source string   `yaml:"-"`
}

// Title names the layout for display.
func (l Layout) Title() string {
	if l.Name != "" {
		return l.Name
	}
	return filepath.Base(l.Source)
}

// Mines parses the rows into a board size and mine positions.
func (l Layout) Mines() (int, []board.Point, error) {
	size := len(l.Board)
	if size < 2 || size > command.MaxCoordinate {
		return 0, nil, fmt.Errorf("%w %q: %d rows, want 2..%d", ErrBadLayout, l.Title(), size, command.MaxCoordinate)
	}

	var mines []board.Point
	for y, row := range l.Board {
		row = strings.ReplaceAll(row, " ", "")
		if len(row) != size {
			return 0, nil, fmt.Errorf("%w %q: row %d has %d tiles, want %d", ErrBadLayout, l.Title(), y+1, len(row), size)
		}
		for x, c := range row {
			switch c {
			case '*':
				mines = append(mines, board.Point{X: x, Y: y})
			case '.':
			default:
				return 0, nil, fmt.Errorf("%w %q: unexpected %q in row %d", ErrBadLayout, l.Title(), c, y+1)
			}
		}
	}
	return size, mines, nil
}

// Build creates a fresh board from the layout.
func (l Layout) Build() (*board.Board, error) {
	size, mines, err := l.Mines()
	if err != nil {
		return nil, err
	}
	return board.FromMines(size, mines)
}

// LoadLayouts loads layouts from a list of paths (files or directories).
// Directories contribute their .yaml and .yml files in name order.
func LoadLayouts(paths []string) ([]Layout, error) {
	var layouts []Layout

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to access path %s: %w", path, err)
		}

		if info.IsDir() {
			files, err := os.ReadDir(path)
			if err != nil {
				return nil, fmt.Errorf("failed to read dir %s: %w", path, err)
			}
			for _, entry := range files {
				if entry.IsDir() || !isYAML(entry.Name()) {
					continue
				}
				l, err := loadFile(filepath.Join(path, entry.Name()))
				if err != nil {
					return nil, err
				}
				layouts = append(layouts, l...)
			}
		} else {
			l, err := loadFile(path)
			if err != nil {
				return nil, err
			}
			layouts = append(layouts, l...)
		}
	}

	return layouts, nil
}

func isYAML(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

// loadFile reads every document of a multi-document YAML file. Empty
// documents are skipped; every other one must describe a valid board.
func loadFile(path string) ([]Layout, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer file.Close()

	var layouts []Layout
	dec := yaml.NewDecoder(file)
	for {
		var l Layout
		err := dec.Decode(&l)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if l.Name == "" && len(l.Board) == 0 {
			continue
		}

		l.Source = path
		if _, err := l.Build(); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		layouts = append(layouts, l)
	}

	return layouts, nil
}
