package storage

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Decision is one column picked by the engine.
type Decision struct {
	ID         string
	Player     int
	Difficulty int
	Column     int
	Value      float64
	Nodes      int64
	Cutoffs    int64
	Elapsed    time.Duration
	CreatedAt  time.Time
}

type CompletedMatch struct {
	ID             string
	Winner         int
	Draw           bool
	Plies          int
	PlayerOneLevel int
	PlayerTwoLevel int
	StartedAt      time.Time
	EndedAt        time.Time
}

type DifficultyStats struct {
	Difficulty   int     `json:"difficulty"`
	Decisions    int     `json:"decisions"`
	AvgNodes     float64 `json:"avgNodes"`
	AvgElapsedMs float64 `json:"avgElapsedMs"`
}

type Store interface {
	SaveDecision(ctx context.Context, d Decision) error
	SaveMatch(ctx context.Context, m CompletedMatch) error
	GetDifficultyStats(ctx context.Context, limit int) ([]DifficultyStats, error)
}

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, url string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, errors.Wrap(err, "connect postgres")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "ping postgres")
	}
	return &PostgresStore{pool: pool}, nil
}

func (p *PostgresStore) Close() {
	if p != nil && p.pool != nil {
		p.pool.Close()
	}
}

func (p *PostgresStore) EnsureTables(ctx context.Context) error {
	if p == nil || p.pool == nil {
		return nil
	}
	_, err := p.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS decisions (
	id TEXT PRIMARY KEY,
	player SMALLINT,
	difficulty INT,
	col INT,
	value DOUBLE PRECISION,
	nodes BIGINT,
	cutoffs BIGINT,
	elapsed_ms DOUBLE PRECISION,
	created_at TIMESTAMP
);
CREATE TABLE IF NOT EXISTS matches (
	id TEXT PRIMARY KEY,
	winner SMALLINT,
	draw BOOLEAN,
	plies INT,
	p1_difficulty INT,
	p2_difficulty INT,
	started_at TIMESTAMP,
	ended_at TIMESTAMP
);
`)
	return errors.Wrap(err, "ensure tables")
}

func (p *PostgresStore) SaveDecision(ctx context.Context, d Decision) error {
	if p == nil || p.pool == nil {
		return nil
	}
	_, err := p.pool.Exec(ctx, `INSERT INTO decisions (id, player, difficulty, col, value, nodes, cutoffs, elapsed_ms, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9) ON CONFLICT (id) DO NOTHING`,
		d.ID, d.Player, d.Difficulty, d.Column, d.Value, d.Nodes, d.Cutoffs,
		float64(d.Elapsed)/float64(time.Millisecond), d.CreatedAt)
	if err != nil {
		log.Error().Err(err).Str("id", d.ID).Msg("save-decision-failed")
	}
	return err
}

func (p *PostgresStore) SaveMatch(ctx context.Context, m CompletedMatch) error {
	if p == nil || p.pool == nil {
		return nil
	}
	_, err := p.pool.Exec(ctx, `INSERT INTO matches (id, winner, draw, plies, p1_difficulty, p2_difficulty, started_at, ended_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8) ON CONFLICT (id) DO NOTHING`,
		m.ID, m.Winner, m.Draw, m.Plies, m.PlayerOneLevel, m.PlayerTwoLevel, m.StartedAt, m.EndedAt)
	if err != nil {
		log.Error().Err(err).Str("id", m.ID).Msg("save-match-failed")
	}
	return err
}

func (p *PostgresStore) GetDifficultyStats(ctx context.Context, limit int) ([]DifficultyStats, error) {
	if p == nil || p.pool == nil {
		return nil, nil
	}
	rows, err := p.pool.Query(ctx, `
SELECT difficulty, COUNT(*), AVG(nodes), AVG(elapsed_ms)
FROM decisions
GROUP BY difficulty
ORDER BY difficulty
LIMIT $1`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "query difficulty stats")
	}
	defer rows.Close()
	var res []DifficultyStats
	for rows.Next() {
		var row DifficultyStats
		if err := rows.Scan(&row.Difficulty, &row.Decisions, &row.AvgNodes, &row.AvgElapsedMs); err != nil {
			return nil, errors.Wrap(err, "scan difficulty stats")
		}
		res = append(res, row)
	}
	return res, rows.Err()
}
