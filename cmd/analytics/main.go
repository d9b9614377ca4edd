package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"emittr/engine/internal/analytics"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

type levelStats struct {
	decisions int
	nodes     float64
	elapsedMs float64
	columns   map[int]int
}

type metrics struct {
	mu         sync.Mutex
	byLevel    map[int]*levelStats
	matches    int
	draws      int
	winsBySide map[int]int
	plies      float64
	pliesSeen  int
}

func newMetrics() *metrics {
	return &metrics{
		byLevel:    make(map[int]*levelStats),
		winsBySide: make(map[int]int),
	}
}

func number(payload map[string]any, key string) (float64, bool) {
	v, ok := payload[key].(float64)
	return v, ok
}

func (m *metrics) recordMove(payload map[string]any) {
	level, ok := number(payload, "difficulty")
	if !ok {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byLevel[int(level)]
	if !ok {
		s = &levelStats{columns: make(map[int]int)}
		m.byLevel[int(level)] = s
	}
	s.decisions++
	if nodes, ok := number(payload, "nodes"); ok {
		s.nodes += nodes
	}
	if ms, ok := number(payload, "elapsedMs"); ok {
		s.elapsedMs += ms
	}
	if col, ok := number(payload, "column"); ok {
		s.columns[int(col)]++
	}
}

func (m *metrics) recordMatch(payload map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matches++
	if draw, ok := payload["draw"].(bool); ok && draw {
		m.draws++
	} else if winner, ok := number(payload, "winner"); ok {
		m.winsBySide[int(winner)]++
	}
	if plies, ok := number(payload, "plies"); ok {
		m.plies += plies
		m.pliesSeen++
	}
}

func (m *metrics) record(e analytics.Event) {
	switch e.Event {
	case analytics.EventMovePicked:
		m.recordMove(e.Payload)
	case analytics.EventMatchFinished:
		m.recordMatch(e.Payload)
	}
}

func (m *metrics) averagePlies() float64 {
	if m.pliesSeen == 0 {
		return 0
	}
	return m.plies / float64(m.pliesSeen)
}

func (m *metrics) printStats() {
	m.mu.Lock()
	defer m.mu.Unlock()

	levels := make([]int, 0, len(m.byLevel))
	for level := range m.byLevel {
		levels = append(levels, level)
	}
	sort.Ints(levels)
	for _, level := range levels {
		s := m.byLevel[level]
		n := float64(s.decisions)
		log.Info().
			Int("difficulty", level).
			Int("decisions", s.decisions).
			Float64("avgNodes", s.nodes/n).
			Float64("avgElapsedMs", s.elapsedMs/n).
			Interface("columns", s.columns).
			Msg("decision-summary")
	}
	log.Info().
		Int("matches", m.matches).
		Int("draws", m.draws).
		Interface("winsBySide", m.winsBySide).
		Float64("avgPlies", m.averagePlies()).
		Msg("match-summary")
}

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	brokers := strings.Split(getenv("KAFKA_BROKERS", "localhost:9092"), ",")
	topic := getenv("KAFKA_TOPIC", "engine-events")

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: "engine-analytics",
	})
	defer reader.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Strs("brokers", brokers).Str("topic", topic).Msg("analytics-consumer-listening")

	metrics := newMetrics()
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				metrics.printStats()
			}
		}
	}()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				metrics.printStats()
				return
			}
			log.Fatal().Err(err).Msg("kafka-read-failed")
		}
		var e analytics.Event
		if err := json.Unmarshal(msg.Value, &e); err != nil {
			log.Warn().Err(err).Msg("decode-event-failed")
			continue
		}
		metrics.record(e)
		log.Debug().Str("event", e.Event).Interface("payload", e.Payload).Msg("event")
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
