package engine

import "math"

// LoneOpponent decides how a line holding only opponent tokens is scored.
type LoneOpponent int

const (
	// LoneOpponentOpen scores the line like an empty one.
	LoneOpponentOpen LoneOpponent = iota
	// LoneOpponentClosed scores the line 0, as if it were contested.
	LoneOpponentClosed
)

func (l LoneOpponent) String() string {
	if l == LoneOpponentClosed {
		return "closed"
	}
	return "open"
}

// Scoring is the static evaluation policy applied per line.
//
//	own tokens   0      1   2    3     winLength
//	score        Open   1   10   100   +Inf
//
// Lines holding tokens of both players score 0 for both.
type Scoring struct {
	Open         float64
	LoneOpponent LoneOpponent
}

var DefaultScoring = Scoring{Open: 0.1, LoneOpponent: LoneOpponentOpen}

// Win is what Evaluate reports for a completed line.
var Win = math.Inf(1)

// Line scores a single line given the token counts of the evaluated
// player (own) and of its opponent (other).
func (s Scoring) Line(own, other, winLength int) float64 {
	if own > 0 && other > 0 {
		return 0
	}
	if own == 0 && other > 0 && s.LoneOpponent == LoneOpponentClosed {
		return 0
	}
	switch {
	case own >= winLength:
		return Win
	case own == 0:
		return s.Open
	}
	return math.Pow10(own - 1)
}

// Evaluate returns the best line score on the rack for player.
func (s Scoring) Evaluate(r *Rack, player Player) float64 {
	opponent := player.Opponent()
	n := r.layout.winLength
	value := math.Inf(-1)
	for _, line := range r.layout.lines {
		own, other := 0, 0
		for _, idx := range line.Cells {
			switch r.cells[idx] {
			case player:
				own++
			case opponent:
				other++
			}
		}
		value = max(value, s.Line(own, other, n))
		if value == Win {
			break
		}
	}
	return value
}
