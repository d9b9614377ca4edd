package main

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"emittr/engine/internal/analytics"
	"emittr/engine/internal/server"
	"emittr/engine/internal/storage"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	setupLogging(getEnv("LOG_LEVEL", "info"))

	// Check for PORT first (used by Render, Fly.io, Heroku, etc.)
	port := os.Getenv("PORT")
	var addr string
	if port != "" {
		addr = ":" + port
	} else {
		addr = getEnv("ADDR", ":8080")
	}
	maxDifficulty := intEnv("MAX_DIFFICULTY", 6)
	parallel := boolEnv("SEARCH_PARALLEL", false)
	seed := int64(intEnv("SEARCH_SEED", 0))
	dbTimeout := durationEnv("DB_CONNECT_TIMEOUT", 10*time.Second)

	var store storage.Store
	if dsn := os.Getenv("POSTGRES_URL"); dsn != "" {
		ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
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
		cancel()
	}

	var producer *analytics.Producer
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		topic := getEnv("KAFKA_TOPIC", "engine-events")
		producer = analytics.NewProducer(strings.Split(brokers, ","), topic)
		defer producer.Close()
	}

	srv := server.New(server.Config{
		Store:         store,
		Analytics:     producer,
		MaxDifficulty: maxDifficulty,
		Parallel:      parallel,
		Seed:          seed,
	})

	log.Info().
		Str("addr", addr).
		Int("maxDifficulty", maxDifficulty).
		Bool("parallel", parallel).
		Msg("server-listening")
	if err := srv.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("server-stopped")
	}
}

func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
		log.Warn().Str("key", key).Str("value", v).Msg("invalid-int-env")
	}
	return fallback
}

func boolEnv(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return time.Duration(parsed) * time.Second
		}
	}
	return fallback
}
