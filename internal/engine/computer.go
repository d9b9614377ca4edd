package engine

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// MinDifficulty is the lowest accepted difficulty. Difficulty 0 looks at
// the immediate moves only.
const MinDifficulty = 0

// DepthForDifficulty converts a difficulty level to a search depth in
// plies. The depth is one more than the difficulty.
func DepthForDifficulty(difficulty int) int {
	return max(difficulty, MinDifficulty) + 1
}

// ComputerPlayer picks moves for one side of the game.
type ComputerPlayer struct {
	player     Player
	difficulty int
	opts       []Option
}

func NewComputerPlayer(player Player, difficulty int, opts ...Option) (*ComputerPlayer, error) {
	if !player.Valid() {
		return nil, errors.Wrapf(ErrInvalidPlayer, "player id %d", int(player))
	}
	if difficulty < MinDifficulty {
		log.Info().
			Int("requested", difficulty).
			Int("min", MinDifficulty).
			Msg("difficulty-clamped")
		difficulty = MinDifficulty
	}
	return &ComputerPlayer{player: player, difficulty: difficulty, opts: opts}, nil
}

// MustComputerPlayer is like NewComputerPlayer but panics on an invalid
// player.
func MustComputerPlayer(player Player, difficulty int, opts ...Option) *ComputerPlayer {
	c, err := NewComputerPlayer(player, difficulty, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *ComputerPlayer) Player() Player  { return c.player }
func (c *ComputerPlayer) Difficulty() int { return c.difficulty }

// PickMove returns the column to play on board, given column-major with
// column 0 on the left and row 0 on the bottom.
func (c *ComputerPlayer) PickMove(board [][]int) (int, error) {
	rack, err := FromColumns(board)
	if err != nil {
		return 0, err
	}
	res, err := c.Analyze(context.Background(), rack)
	if err != nil {
		return 0, err
	}
	return res.Column, nil
}

// Analyze searches rack and returns the full result.
func (c *ComputerPlayer) Analyze(ctx context.Context, rack *Rack) (Result, error) {
	return NewSearcher(c.opts...).Search(ctx, rack, c.player, DepthForDifficulty(c.difficulty))
}

// PickMove is a one-shot ComputerPlayer.PickMove.
func PickMove(player, difficulty int, board [][]int, opts ...Option) (int, error) {
	p, err := PlayerFromInt(player)
	if err != nil {
		return 0, err
	}
	c, err := NewComputerPlayer(p, difficulty, opts...)
	if err != nil {
		return 0, err
	}
	return c.PickMove(board)
}
