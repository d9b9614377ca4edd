package engine

import (
	"context"
	"math"
	"math/rand"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"lukechampine.com/frand"
)

// WinValue is the search value of a won position. Decisive nodes return
// WinValue plus the remaining depth so that faster wins rank higher; it
// dominates every heuristic value a line can produce.
const WinValue = 1e9

// Order permutes the plies of a node before they are expanded.
type Order interface {
	Shuffle(n int, swap func(i, j int))
	Intn(n int) int
}

type randomOrder struct{}

func (randomOrder) Shuffle(n int, swap func(i, j int)) { frand.Shuffle(n, swap) }
func (randomOrder) Intn(n int) int                     { return frand.Intn(n) }

// RandomOrder is an unseeded order safe for concurrent use.
func RandomOrder() Order { return randomOrder{} }

// SeededOrder returns a reproducible order. It is not safe for concurrent
// use.
func SeededOrder(seed int64) Order {
	return rand.New(rand.NewSource(seed))
}

type Option func(*Searcher)

func WithPruning(enabled bool) Option {
	return func(s *Searcher) { s.Pruning = enabled }
}

func WithParallel(enabled bool) Option {
	return func(s *Searcher) { s.Parallel = enabled }
}

func WithScoring(scoring Scoring) Option {
	return func(s *Searcher) { s.Scoring = scoring }
}

// WithOrder installs order as is. Options holding a SeededOrder must not be
// shared between goroutines; use WithSeed for that.
func WithOrder(order Order) Option {
	return func(s *Searcher) { s.Order = order }
}

// WithSeed gives every Searcher built from the option its own order seeded
// with seed, so the option may be reused across concurrent searches.
func WithSeed(seed int64) Option {
	return func(s *Searcher) { s.Order = SeededOrder(seed) }
}

type counters struct {
	nodes   atomic.Int64
	cutoffs atomic.Int64
}

// Searcher runs depth-bounded negamax. A Searcher is not safe for
// concurrent Search calls; build one per call.
type Searcher struct {
	Scoring  Scoring
	Pruning  bool
	Parallel bool
	Order    Order

	stats *counters
}

func NewSearcher(opts ...Option) *Searcher {
	s := &Searcher{
		Scoring: DefaultScoring,
		Pruning: true,
		Order:   RandomOrder(),
		stats:   &counters{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type Result struct {
	Column  int
	Value   float64
	Depth   int
	Nodes   int64
	Cutoffs int64
}

// Search picks the column whose subtree has the best negamax value for
// player. A depth below 1 is searched at depth 1.
func (s *Searcher) Search(ctx context.Context, rack *Rack, player Player, depth int) (Result, error) {
	if !player.Valid() {
		return Result{}, errors.Wrapf(ErrInvalidPlayer, "search for %v", player)
	}
	s.init()
	depth = max(depth, 1)
	plies := rack.Plies(player)
	if len(plies) == 0 {
		return Result{}, ErrNoMoves
	}
	s.stats.nodes.Store(1)
	s.stats.cutoffs.Store(0)
	s.Order.Shuffle(len(plies), func(i, j int) { plies[i], plies[j] = plies[j], plies[i] })

	var (
		values []float64
		err    error
	)
	if s.Parallel {
		values, err = s.searchParallel(ctx, plies, player, depth)
	} else {
		values, err = s.searchSequential(ctx, plies, player, depth)
	}
	if err != nil {
		return Result{}, err
	}

	res := Result{Column: plies[0].Column, Value: math.Inf(-1), Depth: depth}
	for i, v := range values {
		if v > res.Value {
			res.Value = v
			res.Column = plies[i].Column
		}
	}
	res.Nodes = s.stats.nodes.Load()
	res.Cutoffs = s.stats.cutoffs.Load()

	log.Debug().
		Int("depth", depth).
		Int("column", res.Column).
		Float64("value", res.Value).
		Int64("nodes", res.Nodes).
		Int64("cutoffs", res.Cutoffs).
		Bool("parallel", s.Parallel).
		Msg("negamax-search")
	return res, nil
}

// searchSequential shares the root window between children, so a child
// that cannot beat the best so far may report a bound instead of its exact
// value. Such a child is never selected.
func (s *Searcher) searchSequential(ctx context.Context, plies []Ply, player Player, depth int) ([]float64, error) {
	values := make([]float64, len(plies))
	alpha, beta := math.Inf(-1), math.Inf(1)
	best := math.Inf(-1)
	for i, ply := range plies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		values[i] = -s.Negamax(ply.Rack, player.Opponent(), depth-1, -beta, -alpha)
		best = max(best, values[i])
		if s.Pruning {
			alpha = max(alpha, best)
		}
	}
	return values, nil
}

func (s *Searcher) searchParallel(ctx context.Context, plies []Ply, player Player, depth int) ([]float64, error) {
	values := make([]float64, len(plies))
	seeds := make([]int64, len(plies))
	for i := range seeds {
		seeds[i] = int64(s.Order.Intn(math.MaxInt32))
	}
	g, gctx := errgroup.WithContext(ctx)
	for i, ply := range plies {
		i, ply := i, ply
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sub := s.fork(seeds[i])
			values[i] = -sub.Negamax(ply.Rack, player.Opponent(), depth-1, math.Inf(-1), math.Inf(1))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return values, nil
}

func (s *Searcher) init() {
	if s.stats == nil {
		s.stats = &counters{}
	}
	if s.Order == nil {
		s.Order = RandomOrder()
	}
}

// fork returns a searcher with its own order that reports into the same
// counters.
func (s *Searcher) fork(seed int64) *Searcher {
	sub := *s
	sub.Order = SeededOrder(seed)
	sub.Parallel = false
	return &sub
}

// Negamax returns the value of rack for toMove, searching depth plies with
// the window [alpha, beta].
func (s *Searcher) Negamax(rack *Rack, toMove Player, depth int, alpha, beta float64) float64 {
	s.init()
	s.stats.nodes.Add(1)

	mover := toMove.Opponent()
	theirs := s.Scoring.Evaluate(rack, mover)
	if theirs == Win {
		return -(WinValue + float64(depth))
	}
	ours := s.Scoring.Evaluate(rack, toMove)
	if ours == Win {
		return WinValue + float64(depth)
	}
	if depth <= 0 {
		return ours - theirs
	}

	plies := rack.Plies(toMove)
	if len(plies) == 0 {
		return 0
	}
	s.Order.Shuffle(len(plies), func(i, j int) { plies[i], plies[j] = plies[j], plies[i] })

	best := math.Inf(-1)
	for _, ply := range plies {
		v := -s.Negamax(ply.Rack, mover, depth-1, -beta, -alpha)
		best = max(best, v)
		if s.Pruning {
			alpha = max(alpha, best)
			if alpha >= beta {
				s.stats.cutoffs.Add(1)
				break
			}
		}
	}
	return best
}
