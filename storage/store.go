package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS match_saves (
	match_id UUID PRIMARY KEY,
	saved_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	state    JSONB NOT NULL
);
CREATE TABLE IF NOT EXISTS match_results (
	id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	match_id      UUID NOT NULL,
	finished_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	outcome       TEXT NOT NULL,
	mode          TEXT NOT NULL,
	rooms_cleared INT NOT NULL,
	rounds        INT NOT NULL,
	treasure      INT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_match_results_match_id ON match_results(match_id);
CREATE INDEX IF NOT EXISTS idx_match_results_finished_at ON match_results(finished_at DESC);
`

// Store persists match saves and results in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to Postgres and ensures the tables exist. If databaseURL
// is empty, NewStore returns (nil, nil) and no persistence occurs.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	if databaseURL == "" {
		return nil, nil
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	if _, err := pool.Exec(ctx, createTableSQL); err != nil {
		pool.Close()
		return nil, err
	}
	slog.Info("connected to Postgres", "tag", "storage")
	return &Store{pool: pool}, nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

// SaveMatch upserts the serialized state for a match id. Saving the same
// match again overwrites the previous save.
func (s *Store) SaveMatch(ctx context.Context, matchID string, data []byte) error {
	if s == nil || s.pool == nil {
		return nil
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO match_saves (match_id, state, saved_at)
		VALUES ($1, $2, now())
		ON CONFLICT (match_id) DO UPDATE SET state = EXCLUDED.state, saved_at = now()`,
		matchID, data)
	return err
}

// LoadMatch returns the serialized state for a match id.
func (s *Store) LoadMatch(ctx context.Context, matchID string) ([]byte, error) {
	if s == nil || s.pool == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	var data []byte
	err := s.pool.QueryRow(ctx, `SELECT state FROM match_saves WHERE match_id = $1`, matchID).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("no save found for match %s", matchID)
		}
		return nil, err
	}
	return data, nil
}

// InsertMatchResult records a finished match.
func (s *Store) InsertMatchResult(ctx context.Context, matchID, outcome string, mode string, roomsCleared, rounds, treasure int) error {
	if s == nil || s.pool == nil {
		return nil
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO match_results (match_id, outcome, mode, rooms_cleared, rounds, treasure)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		matchID, outcome, mode, roomsCleared, rounds, treasure)
	return err
}

// ResultRecord is a single row returned for the results API.
type ResultRecord struct {
	MatchID      string `json:"match_id"`
	FinishedAt   string `json:"finished_at"` // ISO8601
	Outcome      string `json:"outcome"`
	Mode         string `json:"mode"`
	RoomsCleared int    `json:"rooms_cleared"`
	Rounds       int    `json:"rounds"`
	Treasure     int    `json:"treasure"`
}

// ListRecentResults returns finished matches ordered by finished_at DESC.
func (s *Store) ListRecentResults(ctx context.Context, limit int) ([]ResultRecord, error) {
	if s == nil || s.pool == nil {
		return []ResultRecord{}, nil
	}
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	rows, err := s.pool.Query(ctx, `
		SELECT match_id, finished_at, outcome, mode, rooms_cleared, rounds, treasure
		FROM match_results
		ORDER BY finished_at DESC
		LIMIT $1`,
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ResultRecord
	for rows.Next() {
		var r ResultRecord
		var finishedAt time.Time
		if err := rows.Scan(&r.MatchID, &finishedAt, &r.Outcome, &r.Mode, &r.RoomsCleared, &r.Rounds, &r.Treasure); err != nil {
			return nil, err
		}
		r.FinishedAt = finishedAt.UTC().Format(time.RFC3339)
		out = append(out, r)
	}
	return out, rows.Err()
}
