package game

import (
	"context"
	"time"

	"emittr/engine/internal/engine"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	StatusActive   = "active"
	StatusFinished = "finished"
)

type MatchResult struct {
	ID           string
	Winner       engine.Player
	IsDraw       bool
	Plies        int
	Board        Board
	Difficulties [2]int
	StartedAt    time.Time
	EndedAt      time.Time
}

// Match alternates two bots on a fresh board until one wins or the board
// fills up. Player one moves first.
type Match struct {
	ID        string
	Board     Board
	Status    string
	Turn      engine.Player
	StartedAt time.Time

	bots     [2]*Bot
	plies    int
	result   *MatchResult
	onFinish func(MatchResult)
}

func NewMatch(first, second *Bot, onFinish func(MatchResult)) (*Match, error) {
	if first.Player() != engine.PlayerOne || second.Player() != engine.PlayerTwo {
		return nil, errors.Wrapf(ErrInvalidTurn, "bots play %v and %v", first.Player(), second.Player())
	}
	return &Match{
		ID:        uuid.NewString(),
		Status:    StatusActive,
		Turn:      engine.PlayerOne,
		StartedAt: time.Now(),
		bots:      [2]*Bot{first, second},
		onFinish:  onFinish,
	}, nil
}

// Step plays the move of the bot whose turn it is.
func (m *Match) Step(ctx context.Context) (MoveResult, error) {
	if m.Status == StatusFinished {
		return MoveResult{}, ErrGameFinished
	}
	bot := m.bots[m.Turn-1]
	choice, err := bot.ChooseMove(ctx, m.Board)
	if err != nil {
		return MoveResult{}, errors.WithMessagef(err, "match %s ply %d", m.ID, m.plies)
	}
	res, err := m.Board.ApplyMove(choice.Column, m.Turn)
	if err != nil {
		return MoveResult{}, errors.WithMessagef(err, "match %s ply %d", m.ID, m.plies)
	}
	m.plies++
	log.Debug().
		Str("match", m.ID).
		Int("ply", m.plies).
		Stringer("player", m.Turn).
		Int("column", choice.Column).
		Float64("value", choice.Value).
		Int64("nodes", choice.Nodes).
		Msg("match-move")

	if res.Winner != engine.Empty || res.IsDraw {
		m.finish(res)
		return res, nil
	}
	m.Turn = m.Turn.Opponent()
	return res, nil
}

// Play steps until the match is over.
func (m *Match) Play(ctx context.Context) (MatchResult, error) {
	for m.Status != StatusFinished {
		if _, err := m.Step(ctx); err != nil {
			return MatchResult{}, err
		}
	}
	return m.Result(), nil
}

// Result reports the match so far; Winner and EndedAt are set once it is
// finished.
func (m *Match) Result() MatchResult {
	if m.result != nil {
		return *m.result
	}
	return MatchResult{
		ID:           m.ID,
		Plies:        m.plies,
		Board:        m.Board,
		Difficulties: [2]int{m.bots[0].Difficulty(), m.bots[1].Difficulty()},
		StartedAt:    m.StartedAt,
	}
}

func (m *Match) finish(last MoveResult) {
	m.Status = StatusFinished
	res := m.Result()
	res.EndedAt = time.Now()
	res.Winner = last.Winner
	res.IsDraw = last.Winner == engine.Empty
	m.result = &res
	log.Info().
		Str("match", m.ID).
		Stringer("winner", res.Winner).
		Bool("draw", res.IsDraw).
		Int("plies", res.Plies).
		Msg("match-finished")
	if m.onFinish != nil {
		m.onFinish(res)
	}
}
