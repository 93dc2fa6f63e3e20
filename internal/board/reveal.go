package board

// Result describes what a reveal did to the board.
type Result int

const (
	NoChange Result = iota
	Opened
	MineBlown
)

func (r Result) String() string {
	switch r {
	case Opened:
		return "opened"
	case MineBlown:
		return "mine-blown"
	}
	return "no-change"
}

// Reveal steps on (x, y). Only concealed tiles react. Stepping on a mine
// detonates it and uncovers every other mine; stepping on a zero tile
// flood-opens its region. The opened tiles are returned in visitation order.
func (b *Board) Reveal(x, y int) (Result, []Point) {
	if b.detonated || b.visibility[y][x] != Concealed {
		return NoChange, nil
	}

	if b.IsMine(x, y) {
		b.Detonate(&Point{x, y})
		return MineBlown, nil
	}

	b.visibility[y][x] = Stepped
	opened := []Point{{x, y}}
	if b.adjacency[y][x] == 0 {
		opened = append(opened, b.open(x, y)...)
	}
	return Opened, opened
}

// open flood-fills from an already stepped zero tile. Every concealed safe
// neighbour is stepped; zero neighbours are queued in turn. Visibility
// gates re-entry, so every tile is queued at most once.
func (b *Board) open(x, y int) []Point {
	var opened []Point
	queue := []Point{{x, y}}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		for _, n := range b.Neighbors(p.X, p.Y) {
			if b.visibility[n.Y][n.X] != Concealed || b.IsMine(n.X, n.Y) {
				continue
			}
			b.visibility[n.Y][n.X] = Stepped
			opened = append(opened, n)
			if b.adjacency[n.Y][n.X] == 0 {
				queue = append(queue, n)
			}
		}
	}
	return opened
}

// RevealNeighbors steps on every concealed neighbour of an already stepped
// tile, stopping at the first mine.
func (b *Board) RevealNeighbors(x, y int) (Result, []Point) {
	if b.visibility[y][x] != Stepped {
		return NoChange, nil
	}

	result := NoChange
	var opened []Point
	for _, n := range b.Neighbors(x, y) {
		if b.visibility[n.Y][n.X] != Concealed {
			continue
		}
		r, pts := b.Reveal(n.X, n.Y)
		if r == MineBlown {
			return MineBlown, opened
		}
		if r == Opened {
			result = Opened
			opened = append(opened, pts...)
		}
	}
	return result, opened
}

// Detonate ends the round on this board. The trigger tile, if any, becomes
// Detonated and every other mine RevealedMine. A nil trigger (time ran out)
// reveals all mines.
func (b *Board) Detonate(trigger *Point) {
	b.detonated = true
	for y := 0; y < b.Size; y++ {
		for x := 0; x < b.Size; x++ {
			if !b.IsMine(x, y) {
				continue
			}
			if trigger != nil && trigger.X == x && trigger.Y == y {
				b.visibility[y][x] = Detonated
			} else {
				b.visibility[y][x] = RevealedMine
			}
		}
	}
}

// Flag marks a concealed tile. It reports whether anything changed.
func (b *Board) Flag(x, y int) bool {
	if b.visibility[y][x] != Concealed {
		return false
	}
	b.visibility[y][x] = Flagged
	return true
}

// Unflag clears a flagged tile. It reports whether anything changed.
func (b *Board) Unflag(x, y int) bool {
	if b.visibility[y][x] != Flagged {
		return false
	}
	b.visibility[y][x] = Concealed
	return true
}

func (b *Board) Toggle(x, y int) bool {
	switch b.visibility[y][x] {
	case Flagged:
		b.visibility[y][x] = Concealed
	case Concealed:
		b.visibility[y][x] = Flagged
	default:
		return false
	}
	return true
}

// IsWon is true once every tile still concealed or flagged is a mine and no
// mine has gone off.
func (b *Board) IsWon() bool {
	if b.detonated {
		return false
	}
	for y := 0; y < b.Size; y++ {
		for x := 0; x < b.Size; x++ {
			v := b.visibility[y][x]
			if (v == Concealed || v == Flagged) && !b.IsMine(x, y) {
				return false
			}
		}
	}
	return true
}
