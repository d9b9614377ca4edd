package game

import (
	"strings"

	"emittr/engine/internal/engine"

	"github.com/pkg/errors"
)

const (
	Columns = 7
	Rows    = 6
)

var (
	ErrGameFinished = errors.New("game already finished")
	ErrInvalidTurn  = errors.New("not your turn")
)

// Board is row-major with row 0 at the top, the layout clients render.
// The engine works on column-major racks; Rack converts between the two.
type Board [Rows][Columns]engine.Player

type MoveResult struct {
	Board   Board
	Row     int
	Column  int
	Winner  engine.Player
	IsDraw  bool
	Winning [][2]int
}

func (b *Board) ApplyMove(col int, player engine.Player) (MoveResult, error) {
	if !player.Valid() {
		return MoveResult{}, errors.Wrapf(engine.ErrInvalidPlayer, "move by %v", player)
	}
	if col < 0 || col >= Columns {
		return MoveResult{}, errors.Wrapf(engine.ErrInvalidColumn, "column %d", col)
	}
	for row := Rows - 1; row >= 0; row-- {
		if b[row][col] == engine.Empty {
			b[row][col] = player
			return evaluate(*b, row, col, player), nil
		}
	}
	return MoveResult{}, errors.Wrapf(engine.ErrColumnFull, "column %d", col)
}

func evaluate(board Board, row, col int, player engine.Player) MoveResult {
	res := MoveResult{Board: board, Row: row, Column: col}
	directions := [][2]int{{1, 0}, {0, 1}, {1, 1}, {1, -1}}
	for _, d := range directions {
		coords := winningCoords(board, row, col, player, d[0], d[1])
		if len(coords) >= engine.DefaultWinLength {
			res.Winner = player
			res.Winning = coords
			return res
		}
	}
	res.IsDraw = board.Full()
	return res
}

func winningCoords(board Board, row, col int, player engine.Player, dr, dc int) [][2]int {
	coords := [][2]int{{row, col}}
	walk := func(r, c, dr, dc int) {
		for r >= 0 && r < Rows && c >= 0 && c < Columns && board[r][c] == player {
			coords = append(coords, [2]int{r, c})
			r += dr
			c += dc
		}
	}
	walk(row+dr, col+dc, dr, dc)
	walk(row-dr, col-dc, -dr, -dc)
	if len(coords) >= engine.DefaultWinLength {
		return coords
	}
	return nil
}

func (b Board) Full() bool {
	for c := 0; c < Columns; c++ {
		if b[0][c] == engine.Empty {
			return false
		}
	}
	return true
}

// Ints returns the board as plain integers, row 0 at the top.
func (b Board) Ints() [][]int {
	rows := make([][]int, Rows)
	for r := range rows {
		rows[r] = make([]int, Columns)
		for c := range rows[r] {
			rows[r][c] = int(b[r][c])
		}
	}
	return rows
}

// Rack converts the board to the engine's bottom-up, column-major layout.
func (b Board) Rack() (*engine.Rack, error) {
	return engine.FromRows(b.Ints())
}

func (b Board) String() string {
	var sb strings.Builder
	for r := 0; r < Rows; r++ {
		for c := 0; c < Columns; c++ {
			switch b[r][c] {
			case engine.PlayerOne:
				sb.WriteByte('X')
			case engine.PlayerTwo:
				sb.WriteByte('O')
			default:
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
