package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/starfall/internal/fill"
)

// ErrNotFound indicates the requested token has no stored generation.
var ErrNotFound = errors.New("generation not found")

// SeedRecord is one row of the seeds table.
type SeedRecord struct {
	Token         string
	Seed          int64
	Fingerprint   string
	GoalReachable bool
	Attempts      int
	Spheres       int
	Swaps         int
	CreatedAt     string
}

// GetSeed returns the seed record for a token.
func (s *Store) GetSeed(ctx context.Context, token string) (*SeedRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT token, seed, fingerprint, goal_reachable, attempts, spheres, swaps, created_at
		FROM seeds WHERE token = ?`, token)

	var rec SeedRecord
	err := row.Scan(&rec.Token, &rec.Seed, &rec.Fingerprint, &rec.GoalReachable,
		&rec.Attempts, &rec.Spheres, &rec.Swaps, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("seed %s: %w", token, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query seed %s: %w", token, err)
	}
	return &rec, nil
}

// GetTrace returns the stored sphere trace for a token, in collection
// order.
func (s *Store) GetTrace(ctx context.Context, token string) ([]fill.TraceEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sphere, location, item, locked
		FROM placements WHERE token = ?
		ORDER BY position`, token)
	if err != nil {
		return nil, fmt.Errorf("query trace %s: %w", token, err)
	}
	defer rows.Close()

	var trace []fill.TraceEntry
	for rows.Next() {
		var entry fill.TraceEntry
		if err := rows.Scan(&entry.Sphere, &entry.Location, &entry.Item, &entry.Locked); err != nil {
			return nil, fmt.Errorf("scan trace row: %w", err)
		}
		trace = append(trace, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trace %s: %w", token, err)
	}
	if len(trace) == 0 {
		return nil, fmt.Errorf("trace %s: %w", token, ErrNotFound)
	}
	return trace, nil
}

// GetPlacement returns the stored location -> item mapping for a token.
func (s *Store) GetPlacement(ctx context.Context, token string) (map[string]string, error) {
	trace, err := s.GetTrace(ctx, token)
	if err != nil {
		return nil, err
	}
	placement := make(map[string]string, len(trace))
	for _, entry := range trace {
		placement[entry.Location] = entry.Item
	}
	return placement, nil
}

// ListSeeds returns every stored seed record, newest first.
func (s *Store) ListSeeds(ctx context.Context) ([]SeedRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT token, seed, fingerprint, goal_reachable, attempts, spheres, swaps, created_at
		FROM seeds ORDER BY created_at DESC, token`)
	if err != nil {
		return nil, fmt.Errorf("list seeds: %w", err)
	}
	defer rows.Close()

	var out []SeedRecord
	for rows.Next() {
		var rec SeedRecord
		if err := rows.Scan(&rec.Token, &rec.Seed, &rec.Fingerprint, &rec.GoalReachable,
			&rec.Attempts, &rec.Spheres, &rec.Swaps, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan seed row: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
