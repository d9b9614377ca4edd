package engine

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/pkg/errors"
)

var winInOne = []string{
	".......",
	".......",
	".......",
	".......",
	"22.....",
	"111...2",
}

var blockInOne = []string{
	".......",
	".......",
	".......",
	".......",
	"11.....",
	"222...1",
}

func testBoards(t *testing.T) map[string]*Rack {
	t.Helper()
	boards := map[string]*Rack{
		"empty":    emptyRack(t, 7, 6),
		"win":      rackFromRows(t, winInOne...),
		"block":    rackFromRows(t, blockInOne...),
		"small":    emptyRack(t, 4, 4),
		"midgame1": rackFromRows(t, ".......", ".......", "...2...", "..21...", "..121..", ".21122."),
	}
	for seed := int64(1); seed <= 3; seed++ {
		rack, _ := randomRack(t, 7, 6, 12, seed)
		boards[fmt.Sprintf("random%d", seed)] = rack
	}
	return boards
}

func TestNegamaxTerminal(t *testing.T) {
	rack := rackFromRows(t,
		".......",
		".......",
		".......",
		".......",
		"222....",
		"1111...",
	)
	s := NewSearcher(WithSeed(1))
	for depth := 0; depth < 5; depth++ {
		s.stats.nodes.Store(0)
		got := s.Negamax(rack, PlayerTwo, depth, math.Inf(-1), math.Inf(1))
		if want := -(WinValue + float64(depth)); got != want {
			t.Fatalf("depth %d: got %v, want %v", depth, got, want)
		}
		if n := s.stats.nodes.Load(); n != 1 {
			t.Fatalf("depth %d: terminal node expanded into %d nodes", depth, n)
		}
		if got := s.Negamax(rack, PlayerOne, depth, math.Inf(-1), math.Inf(1)); got != WinValue+float64(depth) {
			t.Fatalf("depth %d: winner to move got %v", depth, got)
		}
	}
}

func TestNegamaxSignIdentity(t *testing.T) {
	for seed := int64(0); seed < 30; seed++ {
		rack, _ := randomRack(t, 7, 6, int(seed), seed)
		s := NewSearcher(WithSeed(seed))
		a := s.Negamax(rack, PlayerOne, 0, math.Inf(-1), math.Inf(1))
		b := s.Negamax(rack, PlayerTwo, 0, math.Inf(-1), math.Inf(1))
		if a != -b {
			t.Fatalf("seed %d: value %v for player one, %v for player two\n%s", seed, a, b, rack)
		}
	}
}

func TestPruningEquivalence(t *testing.T) {
	for name, rack := range testBoards(t) {
		for depth := 0; depth <= 4; depth++ {
			for _, p := range []Player{PlayerOne, PlayerTwo} {
				pruned := NewSearcher(WithSeed(7), WithPruning(true))
				full := NewSearcher(WithSeed(7), WithPruning(false))
				a := pruned.Negamax(rack, p, depth, math.Inf(-1), math.Inf(1))
				b := full.Negamax(rack, p, depth, math.Inf(-1), math.Inf(1))
				if a != b {
					t.Fatalf("%s depth %d %v: pruned %v, full %v", name, depth, p, a, b)
				}
				if pruned.stats.nodes.Load() > full.stats.nodes.Load() {
					t.Fatalf("%s depth %d: pruning visited more nodes", name, depth)
				}
			}
		}
	}
}

func TestSearchPruningEquivalence(t *testing.T) {
	ctx := context.Background()
	for name, rack := range testBoards(t) {
		for depth := 1; depth <= 4; depth++ {
			a, err := NewSearcher(WithSeed(3), WithPruning(true)).Search(ctx, rack, PlayerOne, depth)
			if err != nil {
				t.Fatal(err)
			}
			b, err := NewSearcher(WithSeed(3), WithPruning(false)).Search(ctx, rack, PlayerOne, depth)
			if err != nil {
				t.Fatal(err)
			}
			if a.Value != b.Value {
				t.Fatalf("%s depth %d: pruned %v, full %v", name, depth, a.Value, b.Value)
			}
		}
	}
}

func TestSearchParallelMatchesSequential(t *testing.T) {
	ctx := context.Background()
	for name, rack := range testBoards(t) {
		seq, err := NewSearcher(WithSeed(5)).Search(ctx, rack, PlayerTwo, 4)
		if err != nil {
			t.Fatal(err)
		}
		par, err := NewSearcher(WithSeed(5), WithParallel(true)).Search(ctx, rack, PlayerTwo, 4)
		if err != nil {
			t.Fatal(err)
		}
		if seq.Value != par.Value {
			t.Fatalf("%s: sequential %v, parallel %v", name, seq.Value, par.Value)
		}
		if par.Nodes <= 1 {
			t.Fatalf("%s: parallel search reported %d nodes", name, par.Nodes)
		}
	}
}

func TestSearchEmptyBoardUniform(t *testing.T) {
	rack := emptyRack(t, 7, 6)
	s := NewSearcher(WithSeed(1))
	var first float64
	for i, ply := range rack.Plies(PlayerOne) {
		v := -s.Negamax(ply.Rack, PlayerTwo, 0, math.Inf(-1), math.Inf(1))
		if i == 0 {
			first = v
		} else if v != first {
			t.Fatalf("column %d scored %v, column 0 scored %v", ply.Column, v, first)
		}
	}

	chosen := map[int]bool{}
	for seed := int64(0); seed < 60; seed++ {
		for _, p := range []Player{PlayerOne, PlayerTwo} {
			res, err := NewSearcher(WithSeed(seed)).Search(context.Background(), rack, p, 1)
			if err != nil {
				t.Fatal(err)
			}
			if res.Value != first {
				t.Fatalf("seed %d: value %v, want %v", seed, res.Value, first)
			}
			chosen[res.Column] = true
		}
	}
	if len(chosen) < 2 {
		t.Fatalf("random ordering always chose %v", chosen)
	}
}

func TestSearchTakesWin(t *testing.T) {
	rack := rackFromRows(t, winInOne...)
	for depth := 1; depth <= 4; depth++ {
		for seed := int64(0); seed < 15; seed++ {
			for _, pruning := range []bool{true, false} {
				res, err := NewSearcher(WithSeed(seed), WithPruning(pruning)).Search(context.Background(), rack, PlayerOne, depth)
				if err != nil {
					t.Fatal(err)
				}
				if res.Column != 3 {
					t.Fatalf("depth %d seed %d pruning %v: chose %d", depth, seed, pruning, res.Column)
				}
				if res.Value != WinValue+float64(depth-1) {
					t.Fatalf("depth %d: value %v", depth, res.Value)
				}
			}
		}
	}
}

func TestSearchBlocksWin(t *testing.T) {
	rack := rackFromRows(t, blockInOne...)
	for depth := 2; depth <= 4; depth++ {
		for seed := int64(0); seed < 15; seed++ {
			res, err := NewSearcher(WithSeed(seed)).Search(context.Background(), rack, PlayerOne, depth)
			if err != nil {
				t.Fatal(err)
			}
			if res.Column != 3 {
				t.Fatalf("depth %d seed %d: chose %d instead of blocking", depth, seed, res.Column)
			}
		}
	}
}

func TestSearchNoMoves(t *testing.T) {
	rack := rackFromRows(t, "2121", "2121", "1212", "1212")
	_, err := NewSearcher().Search(context.Background(), rack, PlayerOne, 3)
	if !errors.Is(err, ErrNoMoves) {
		t.Fatalf("got %v, want ErrNoMoves", err)
	}
	if v := NewSearcher().Negamax(rack, PlayerOne, 3, math.Inf(-1), math.Inf(1)); v != 0 {
		t.Fatalf("full board value %v", v)
	}
}

func TestSearchInvalidPlayer(t *testing.T) {
	_, err := NewSearcher().Search(context.Background(), emptyRack(t, 7, 6), Empty, 2)
	if !errors.Is(err, ErrInvalidPlayer) {
		t.Fatalf("got %v", err)
	}
}

func TestSearchCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, parallel := range []bool{false, true} {
		_, err := NewSearcher(WithParallel(parallel)).Search(ctx, emptyRack(t, 7, 6), PlayerOne, 3)
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("parallel=%v: got %v", parallel, err)
		}
	}
}

func TestSearchZeroValueSearcher(t *testing.T) {
	var s Searcher
	res, err := s.Search(context.Background(), rackFromRows(t, winInOne...), PlayerOne, 1)
	if err != nil {
		t.Fatal(err)
	}
	if res.Column != 3 {
		t.Fatalf("chose %d", res.Column)
	}
}
