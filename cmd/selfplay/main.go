package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"emittr/engine/internal/analytics"
	"emittr/engine/internal/engine"
	"emittr/engine/internal/game"
	"emittr/engine/internal/storage"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	games := flag.Int("games", 1, "number of matches to play")
	p1 := flag.Int("p1", 2, "difficulty of player one")
	p2 := flag.Int("p2", 2, "difficulty of player two")
	seed := flag.Int64("seed", 0, "move order seed; 0 picks a random order")
	pruning := flag.Bool("pruning", true, "enable alpha-beta pruning")
	parallel := flag.Bool("parallel", false, "search root moves in parallel")
	verbose := flag.Bool("v", false, "log every move")
	flag.Parse()

	lvl := zerolog.InfoLevel
	if *verbose {
		lvl = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store storage.Store = storage.NewMemoryStore()
	if dsn := os.Getenv("POSTGRES_URL"); dsn != "" {
		pg, err := storage.NewPostgresStore(ctx, dsn)
		if err != nil {
			log.Warn().Err(err).Msg("postgres-disabled")
		} else {
			if err := pg.EnsureTables(ctx); err != nil {
				log.Warn().Err(err).Msg("postgres-ensure-tables-failed")
			}
			defer pg.Close()
			store = pg
		}
	}
	var producer *analytics.Producer
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		producer = analytics.NewProducer(strings.Split(brokers, ","), getenv("KAFKA_TOPIC", "engine-events"))
		defer producer.Close()
	}

	record := func(res game.MatchResult) {
		_ = store.SaveMatch(ctx, storage.CompletedMatch{
			ID:             res.ID,
			Winner:         int(res.Winner),
			Draw:           res.IsDraw,
			Plies:          res.Plies,
			PlayerOneLevel: res.Difficulties[0],
			PlayerTwoLevel: res.Difficulties[1],
			StartedAt:      res.StartedAt,
			EndedAt:        res.EndedAt,
		})
		producer.Publish(ctx, analytics.EventMatchFinished, map[string]any{
			"matchId":  res.ID,
			"winner":   int(res.Winner),
			"draw":     res.IsDraw,
			"plies":    res.Plies,
			"duration": res.EndedAt.Sub(res.StartedAt).Seconds(),
		})
	}

	tally := map[engine.Player]int{}
	for i := 0; i < *games; i++ {
		opts := func(offset int64) []engine.Option {
			o := []engine.Option{engine.WithPruning(*pruning), engine.WithParallel(*parallel)}
			if *seed != 0 {
				o = append(o, engine.WithSeed(*seed+int64(i)*2+offset))
			}
			return o
		}
		first, err := game.NewBot(engine.PlayerOne, *p1, opts(0)...)
		if err != nil {
			log.Fatal().Err(err).Msg("player-one")
		}
		second, err := game.NewBot(engine.PlayerTwo, *p2, opts(1)...)
		if err != nil {
			log.Fatal().Err(err).Msg("player-two")
		}
		match, err := game.NewMatch(first, second, record)
		if err != nil {
			log.Fatal().Err(err).Msg("new-match")
		}
		res, err := match.Play(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("match-failed")
		}
		tally[res.Winner]++
		fmt.Printf("match %d (%s): ", i+1, res.ID)
		if res.IsDraw {
			fmt.Printf("draw after %d plies\n", res.Plies)
		} else {
			fmt.Printf("%v wins after %d plies\n", res.Winner, res.Plies)
		}
		fmt.Print(res.Board)
	}
	fmt.Printf("player1 %d, player2 %d, draws %d\n", tally[engine.PlayerOne], tally[engine.PlayerTwo], tally[engine.Empty])
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
