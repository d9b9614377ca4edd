package engine

import (
	"math"
	"testing"
)

func TestScoringLine(t *testing.T) {
	open := DefaultScoring
	closed := Scoring{Open: 0.1, LoneOpponent: LoneOpponentClosed}
	for _, tc := range []struct {
		own, other int
		open       float64
		closed     float64
	}{
		{0, 0, 0.1, 0.1},
		{1, 0, 1, 1},
		{2, 0, 10, 10},
		{3, 0, 100, 100},
		{4, 0, math.Inf(1), math.Inf(1)},
		{0, 1, 0.1, 0},
		{0, 3, 0.1, 0},
		{1, 1, 0, 0},
		{3, 1, 0, 0},
		{2, 2, 0, 0},
	} {
		if got := open.Line(tc.own, tc.other, 4); got != tc.open {
			t.Errorf("open Line(%d,%d) = %v, want %v", tc.own, tc.other, got, tc.open)
		}
		if got := closed.Line(tc.own, tc.other, 4); got != tc.closed {
			t.Errorf("closed Line(%d,%d) = %v, want %v", tc.own, tc.other, got, tc.closed)
		}
	}
	if got := open.Line(4, 0, 5); got != 1000 {
		t.Errorf("Line(4,0) for five in a row = %v", got)
	}
}

func TestEvaluateEmptyAndSingle(t *testing.T) {
	rack := emptyRack(t, 7, 6)
	for _, p := range []Player{PlayerOne, PlayerTwo} {
		if got := rack.Evaluate(p); got != 0.1 {
			t.Fatalf("empty board Evaluate(%v) = %v", p, got)
		}
	}
	rack, err := rack.Drop(3, PlayerOne)
	if err != nil {
		t.Fatal(err)
	}
	if got := rack.Evaluate(PlayerOne); got != 1 {
		t.Fatalf("one token Evaluate = %v", got)
	}
	if got := rack.Evaluate(PlayerTwo); got != 0.1 {
		t.Fatalf("opponent Evaluate = %v", got)
	}
}

func TestEvaluateCounts(t *testing.T) {
	rack := rackFromRows(t,
		".......",
		".......",
		".......",
		"2......",
		"2......",
		"111.2..",
	)
	if got := rack.Evaluate(PlayerOne); got != 100 {
		t.Fatalf("three in a row = %v", got)
	}
	if got := rack.Evaluate(PlayerTwo); got != 10 {
		t.Fatalf("two stacked = %v", got)
	}
}

// Every contested line scores 0 for both players, whatever the policy.
func TestEvaluateContestedLines(t *testing.T) {
	for _, scoring := range []Scoring{DefaultScoring, {Open: 0.1, LoneOpponent: LoneOpponentClosed}} {
		for seed := int64(0); seed < 20; seed++ {
			rack, _ := randomRack(t, 7, 6, 20, seed)
			for _, line := range rack.Lines() {
				counts := map[Player]int{}
				for _, idx := range line.Cells {
					counts[rack.cells[idx]]++
				}
				a := scoring.Line(counts[PlayerOne], counts[PlayerTwo], 4)
				b := scoring.Line(counts[PlayerTwo], counts[PlayerOne], 4)
				if counts[PlayerOne] > 0 && counts[PlayerTwo] > 0 && (a != 0 || b != 0) {
					t.Fatalf("contested line %+v scored %v/%v", line, a, b)
				}
			}
		}
	}
}

func TestEvaluateWin(t *testing.T) {
	rack := rackFromRows(t,
		".......",
		".......",
		"...1...",
		"..12...",
		".122...",
		"1222..1",
	)
	if got := rack.Evaluate(PlayerOne); !math.IsInf(got, 1) {
		t.Fatalf("diagonal four = %v", got)
	}
	if got := rack.Evaluate(PlayerTwo); math.IsInf(got, 1) {
		t.Fatal("loser scored a win")
	}
	if got := rack.Winner(); got != PlayerOne {
		t.Fatalf("Winner = %v", got)
	}
}

func TestEvaluateLoneOpponentPolicy(t *testing.T) {
	// A single row holds exactly one line.
	rack := rackFromRows(t, ".1..")
	closed := Scoring{Open: 0.1, LoneOpponent: LoneOpponentClosed}
	if got := DefaultScoring.Evaluate(rack, PlayerTwo); got != 0.1 {
		t.Fatalf("open policy = %v", got)
	}
	if got := closed.Evaluate(rack, PlayerTwo); got != 0 {
		t.Fatalf("closed policy = %v", got)
	}
	if got := closed.Evaluate(rack, PlayerOne); got != 1 {
		t.Fatalf("closed policy for the owner = %v", got)
	}
}
