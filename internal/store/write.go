package store

import (
	"context"
	"fmt"

	"github.com/roach88/starfall/internal/fill"
)

// SaveResult persists a certified generation: one seeds row plus one
// placements row per trace entry, in a single transaction.
//
// The trace covers every item-bearing location (the validator certifies
// that before a result exists), so the placements table doubles as the
// location -> item mapping for the patch collaborator.
func (s *Store) SaveResult(ctx context.Context, r *fill.Result) error {
	fingerprint, err := r.Fingerprint()
	if err != nil {
		return fmt.Errorf("fingerprint result: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO seeds (token, seed, fingerprint, goal_reachable, attempts, spheres, swaps)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.Token, r.Seed, fingerprint, r.GoalReachable,
		r.Summary.Attempts, r.Summary.Spheres, r.Summary.Swaps,
	)
	if err != nil {
		return fmt.Errorf("insert seed %s: %w", r.Token, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO placements (token, location, item, sphere, locked, position)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare placement insert: %w", err)
	}
	defer stmt.Close()

	for i, entry := range r.Trace {
		if _, err := stmt.ExecContext(ctx, r.Token, entry.Location, entry.Item, entry.Sphere, entry.Locked, i); err != nil {
			return fmt.Errorf("insert placement %s/%s: %w", r.Token, entry.Location, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit result %s: %w", r.Token, err)
	}
	return nil
}
