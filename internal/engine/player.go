package engine

import (
	"fmt"

	"github.com/pkg/errors"
)

type Player int8

const (
	Empty     Player = 0
	PlayerOne Player = 1
	PlayerTwo Player = 2
)

var opponents = [3]Player{Empty, PlayerTwo, PlayerOne}

// Opponent returns the other player. Empty has no opponent.
func (p Player) Opponent() Player {
	if p < 0 || int(p) >= len(opponents) {
		return Empty
	}
	return opponents[p]
}

// PlayerFromInt converts a player id received as a plain integer. The range
// is checked before narrowing so that out-of-range ids cannot wrap.
func PlayerFromInt(v int) (Player, error) {
	if v != int(PlayerOne) && v != int(PlayerTwo) {
		return Empty, errors.Wrapf(ErrInvalidPlayer, "player id %d", v)
	}
	return Player(v), nil
}

// cellFromInt converts a board cell, which may also be empty.
func cellFromInt(v int) (Player, bool) {
	if v != int(Empty) && v != int(PlayerOne) && v != int(PlayerTwo) {
		return Empty, false
	}
	return Player(v), true
}

func (p Player) Valid() bool {
	return p == PlayerOne || p == PlayerTwo
}

func (p Player) String() string {
	switch p {
	case Empty:
		return "empty"
	case PlayerOne:
		return "player1"
	case PlayerTwo:
		return "player2"
	}
	return fmt.Sprintf("player(%d)", int(p))
}
