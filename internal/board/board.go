package board

import (
	"fmt"
	"math/rand"
)

const (
	DefaultSize  = 8
	DefaultMines = 16

	// MineCount is the adjacency sentinel stored for mine tiles.
	MineCount = -1
)

// Visibility is what the player currently sees on a tile.
type Visibility int

const (
	Concealed Visibility = iota
	Flagged
	Stepped
	Detonated
	RevealedMine
)

func (v Visibility) String() string {
	switch v {
	case Concealed:
		return "concealed"
	case Flagged:
		return "flagged"
	case Stepped:
		return "stepped"
	case Detonated:
		return "detonated"
	case RevealedMine:
		return "revealed-mine"
	}
	return fmt.Sprintf("Visibility(%d)", int(v))
}

// Point is a tile position: X is the column, Y the row.
type Point struct {
	X, Y int
}

// Board holds the mine layout, fixed for the life of a round, and the
// mutable visibility matrix. Both are indexed [y][x].
type Board struct {
	Size  int
	Mines int

	adjacency  [][]int
	visibility [][]Visibility
	detonated  bool
}

type InvalidBoardParamsError struct {
	Size  int
	Mines int
}

func (e InvalidBoardParamsError) Error() string {
	switch {
	case e.Size <= 0:
		return fmt.Sprintf("cannot create a board with size %d", e.Size)
	case e.Mines < 0:
		return fmt.Sprintf("cannot create a board with a negative amount of mines: %d", e.Mines)
	default:
		return fmt.Sprintf("not enough space for %d mines on a %dx%d board", e.Mines, e.Size, e.Size)
	}
}

func validate(size, mines int) error {
	if size <= 0 || mines < 0 || mines >= size*size {
		return InvalidBoardParamsError{Size: size, Mines: mines}
	}
	return nil
}

// Generate places mines distinct cells uniformly at random on a size x size
// board and precomputes every adjacency count.
func Generate(size, mines int, rng *rand.Rand) (*Board, error) {
	if err := validate(size, mines); err != nil {
		return nil, err
	}
	b := newBoard(size, mines)

	placed := 0
	for placed < mines {
		idx := rng.Intn(size * size)
		x, y := idx%size, idx/size
		if b.adjacency[y][x] == MineCount {
			continue
		}
		b.adjacency[y][x] = MineCount
		placed++
	}

	b.countNeighbors()
	return b, nil
}

// FromMines builds a board with mines at exactly the given points.
func FromMines(size int, mines []Point) (*Board, error) {
	if err := validate(size, len(mines)); err != nil {
		return nil, err
	}
	b := newBoard(size, len(mines))
	for _, p := range mines {
		if !b.Contains(p.X, p.Y) {
			return nil, fmt.Errorf("mine (%d, %d) outside %dx%d board", p.X, p.Y, size, size)
		}
		if b.adjacency[p.Y][p.X] == MineCount {
			return nil, fmt.Errorf("duplicate mine at (%d, %d)", p.X, p.Y)
		}
		b.adjacency[p.Y][p.X] = MineCount
	}
	b.countNeighbors()
	return b, nil
}

func newBoard(size, mines int) *Board {
	adjacency := make([][]int, size)
	visibility := make([][]Visibility, size)
	for y := 0; y < size; y++ {
		adjacency[y] = make([]int, size)
		visibility[y] = make([]Visibility, size)
	}
	return &Board{
		Size:       size,
		Mines:      mines,
		adjacency:  adjacency,
		visibility: visibility,
	}
}

func (b *Board) countNeighbors() {
	for y := 0; y < b.Size; y++ {
		for x := 0; x < b.Size; x++ {
			if b.adjacency[y][x] == MineCount {
				continue
			}
			count := 0
			for _, n := range b.Neighbors(x, y) {
				if b.IsMine(n.X, n.Y) {
					count++
				}
			}
			b.adjacency[y][x] = count
		}
	}
}

// Neighbors returns the up to 8 in-bounds tiles around (x, y).
func (b *Board) Neighbors(x, y int) []Point {
	points := make([]Point, 0, 8)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx, ny := x+dx, y+dy
			if b.Contains(nx, ny) {
				points = append(points, Point{nx, ny})
			}
		}
	}
	return points
}

func (b *Board) Contains(x, y int) bool {
	return x >= 0 && x < b.Size && y >= 0 && y < b.Size
}

func (b *Board) IsMine(x, y int) bool {
	return b.adjacency[y][x] == MineCount
}

// Adjacency returns the precomputed count for (x, y), or MineCount.
func (b *Board) Adjacency(x, y int) int {
	return b.adjacency[y][x]
}

func (b *Board) Visibility(x, y int) Visibility {
	return b.visibility[y][x]
}

// Detonated reports whether a mine has gone off on this board.
func (b *Board) Detonated() bool {
	return b.detonated
}

// Flags counts the tiles currently flagged.
func (b *Board) Flags() int {
	n := 0
	for _, row := range b.visibility {
		for _, v := range row {
			if v == Flagged {
				n++
			}
		}
	}
	return n
}

// Stepped counts the tiles opened so far.
func (b *Board) Stepped() int {
	n := 0
	for _, row := range b.visibility {
		for _, v := range row {
			if v == Stepped {
				n++
			}
		}
	}
	return n
}

// MinesLeft is the mine count minus placed flags; it goes negative when the
// player over-flags.
func (b *Board) MinesLeft() int {
	return b.Mines - b.Flags()
}

// VisibilityMatrix returns a copy of the visibility matrix.
func (b *Board) VisibilityMatrix() [][]Visibility {
	out := make([][]Visibility, b.Size)
	for y := range b.visibility {
		out[y] = append([]Visibility(nil), b.visibility[y]...)
	}
	return out
}

// AdjacencyMatrix returns a copy of the adjacency matrix.
func (b *Board) AdjacencyMatrix() [][]int {
	out := make([][]int, b.Size)
	for y := range b.adjacency {
		out[y] = append([]int(nil), b.adjacency[y]...)
	}
	return out
}
