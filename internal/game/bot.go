package game

import (
	"context"

	"emittr/engine/internal/engine"
)

// Bot plays one side of a match with the negamax engine.
type Bot struct {
	computer *engine.ComputerPlayer
}

func NewBot(player engine.Player, difficulty int, opts ...engine.Option) (*Bot, error) {
	c, err := engine.NewComputerPlayer(player, difficulty, opts...)
	if err != nil {
		return nil, err
	}
	return &Bot{computer: c}, nil
}

func (b *Bot) Player() engine.Player { return b.computer.Player() }
func (b *Bot) Difficulty() int       { return b.computer.Difficulty() }

func (b *Bot) ChooseMove(ctx context.Context, board Board) (engine.Result, error) {
	rack, err := board.Rack()
	if err != nil {
		return engine.Result{}, err
	}
	return b.computer.Analyze(ctx, rack)
}
