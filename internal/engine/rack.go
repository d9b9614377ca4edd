package engine

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const DefaultWinLength = 4

// Rack is an immutable board snapshot together with the lines its
// dimensions support. Cells are stored column-major with the origin at the
// bottom-left corner: column 0 is on the left and row 0 is on the bottom.
type Rack struct {
	layout *layout
	cells  []Player
}

// Ply is a rack reached by dropping a token in Column.
type Ply struct {
	Column int
	Rack   *Rack
}

// NewRack builds a rack for a four-in-a-row game from columns[x][y].
func NewRack(columns [][]Player) (*Rack, error) {
	return NewRackN(columns, DefaultWinLength)
}

// NewRackN builds a rack where winLength tokens in a line win.
func NewRackN(columns [][]Player, winLength int) (*Rack, error) {
	if len(columns) == 0 {
		return nil, errors.Wrap(ErrMalformedBoard, "board has no columns")
	}
	height := len(columns[0])
	if height == 0 {
		return nil, errors.Wrap(ErrMalformedBoard, "board has no rows")
	}
	if winLength < 2 {
		return nil, errors.Wrapf(ErrMalformedBoard, "win length %d", winLength)
	}
	width := len(columns)
	if LineCount(width, height, winLength) == 0 {
		return nil, errors.Wrapf(ErrMalformedBoard, "%dx%d board cannot hold a line of %d", width, height, winLength)
	}

	lay := newLayout(width, height, winLength)
	cells := make([]Player, lay.size())
	for x, col := range columns {
		if len(col) != height {
			return nil, errors.Wrapf(ErrMalformedBoard, "column %d has %d cells, want %d", x, len(col), height)
		}
		for y, v := range col {
			if v != Empty && !v.Valid() {
				return nil, errors.Wrapf(ErrMalformedBoard, "cell (%d,%d) holds %d", x, y, int(v))
			}
			if v != Empty && y > 0 && col[y-1] == Empty {
				return nil, errors.Wrapf(ErrMalformedBoard, "cell (%d,%d) floats above an empty cell", x, y)
			}
			cells[lay.index(x, y)] = v
		}
	}
	return &Rack{layout: lay, cells: cells}, nil
}

// FromColumns converts a column-major, bottom-up integer board.
func FromColumns(board [][]int) (*Rack, error) {
	columns := make([][]Player, len(board))
	for x, col := range board {
		columns[x] = make([]Player, len(col))
		for y, v := range col {
			cell, ok := cellFromInt(v)
			if !ok {
				return nil, errors.Wrapf(ErrMalformedBoard, "cell (%d,%d) holds %d", x, y, v)
			}
			columns[x][y] = cell
		}
	}
	return NewRack(columns)
}

// FromRows converts a row-major board whose first row is the top of the
// rack.
func FromRows(rows [][]int) (*Rack, error) {
	if len(rows) == 0 {
		return nil, errors.Wrap(ErrMalformedBoard, "board has no rows")
	}
	height, width := len(rows), len(rows[0])
	for r, row := range rows {
		if len(row) != width {
			return nil, errors.Wrapf(ErrMalformedBoard, "row %d has %d cells, want %d", r, len(row), width)
		}
	}
	columns := make([][]Player, width)
	for x := range columns {
		columns[x] = make([]Player, height)
		for y := range columns[x] {
			v := rows[height-1-y][x]
			cell, ok := cellFromInt(v)
			if !ok {
				return nil, errors.Wrapf(ErrMalformedBoard, "cell (%d,%d) holds %d", x, y, v)
			}
			columns[x][y] = cell
		}
	}
	return NewRack(columns)
}

func (r *Rack) Width() int     { return r.layout.width }
func (r *Rack) Height() int    { return r.layout.height }
func (r *Rack) WinLength() int { return r.layout.winLength }

// At returns the cell in column x, row y (row 0 is the bottom).
func (r *Rack) At(x, y int) Player {
	return r.cells[r.layout.index(x, y)]
}

// Lines returns every line of the rack. The slice is shared and must not be
// modified.
func (r *Rack) Lines() []Line {
	return r.layout.lines
}

// Columns returns a copy of the board as columns[x][y].
func (r *Rack) Columns() [][]Player {
	out := make([][]Player, r.Width())
	for x := range out {
		start := r.layout.index(x, 0)
		out[x] = append([]Player(nil), r.cells[start:start+r.Height()]...)
	}
	return out
}

// top returns the lowest empty row of column x, or the height when the
// column is full.
func (r *Rack) top(x int) int {
	for y := 0; y < r.Height(); y++ {
		if r.At(x, y) == Empty {
			return y
		}
	}
	return r.Height()
}

// Playable reports whether column x has room for another token.
func (r *Rack) Playable(x int) bool {
	return x >= 0 && x < r.Width() && r.top(x) < r.Height()
}

func (r *Rack) Full() bool {
	for x := 0; x < r.Width(); x++ {
		if r.Playable(x) {
			return false
		}
	}
	return true
}

func (r *Rack) place(x, y int, player Player) *Rack {
	cells := make([]Player, len(r.cells))
	copy(cells, r.cells)
	cells[r.layout.index(x, y)] = player
	return &Rack{layout: r.layout, cells: cells}
}

// Drop returns the rack after player drops a token in column x.
func (r *Rack) Drop(x int, player Player) (*Rack, error) {
	if !player.Valid() {
		return nil, errors.Wrapf(ErrInvalidPlayer, "drop %v", player)
	}
	if x < 0 || x >= r.Width() {
		return nil, errors.Wrapf(ErrInvalidColumn, "column %d of %d", x, r.Width())
	}
	y := r.top(x)
	if y == r.Height() {
		return nil, errors.Wrapf(ErrColumnFull, "column %d", x)
	}
	return r.place(x, y, player), nil
}

// Plies returns one child per playable column, in column order.
func (r *Rack) Plies(player Player) []Ply {
	plies := make([]Ply, 0, r.Width())
	for x := 0; x < r.Width(); x++ {
		y := r.top(x)
		if y == r.Height() {
			continue
		}
		plies = append(plies, Ply{Column: x, Rack: r.place(x, y, player)})
	}
	return plies
}

// Winner returns the player owning a complete line, or Empty.
func (r *Rack) Winner() Player {
	for _, line := range r.layout.lines {
		first := r.cells[line.Cells[0]]
		if first == Empty {
			continue
		}
		won := true
		for _, idx := range line.Cells[1:] {
			if r.cells[idx] != first {
				won = false
				break
			}
		}
		if won {
			return first
		}
	}
	return Empty
}

// Evaluate scores the rack for player with DefaultScoring.
func (r *Rack) Evaluate(player Player) float64 {
	return DefaultScoring.Evaluate(r, player)
}

// String prints the rack top row first.
func (r *Rack) String() string {
	var b strings.Builder
	for y := r.Height() - 1; y >= 0; y-- {
		for x := 0; x < r.Width(); x++ {
			if x > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(strconv.Itoa(int(r.At(x, y))))
		}
		if y > 0 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// DiffColumn returns the first column, scanning left to right, where a and
// b differ. ok is false when the racks are identical or have different
// dimensions.
func DiffColumn(a, b *Rack) (column int, ok bool) {
	if a.Width() != b.Width() || a.Height() != b.Height() {
		return 0, false
	}
	for x := 0; x < a.Width(); x++ {
		for y := 0; y < a.Height(); y++ {
			if a.At(x, y) != b.At(x, y) {
				return x, true
			}
		}
	}
	return 0, false
}
