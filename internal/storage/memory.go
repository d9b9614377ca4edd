package storage

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps aggregates in process when no database is configured.
type MemoryStore struct {
	mu      sync.Mutex
	byLevel map[int]*DifficultyStats
	matches int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byLevel: make(map[int]*DifficultyStats)}
}

func (m *MemoryStore) SaveDecision(_ context.Context, d Decision) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byLevel[d.Difficulty]
	if !ok {
		s = &DifficultyStats{Difficulty: d.Difficulty}
		m.byLevel[d.Difficulty] = s
	}
	n := float64(s.Decisions)
	s.AvgNodes = (s.AvgNodes*n + float64(d.Nodes)) / (n + 1)
	s.AvgElapsedMs = (s.AvgElapsedMs*n + float64(d.Elapsed)/float64(time.Millisecond)) / (n + 1)
	s.Decisions++
	return nil
}

func (m *MemoryStore) SaveMatch(context.Context, CompletedMatch) error {
	m.mu.Lock()
	m.matches++
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Matches() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matches
}

func (m *MemoryStore) GetDifficultyStats(_ context.Context, limit int) ([]DifficultyStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := make([]DifficultyStats, 0, len(m.byLevel))
	for _, s := range m.byLevel {
		res = append(res, *s)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Difficulty < res[j].Difficulty })
	if limit > 0 && len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}
