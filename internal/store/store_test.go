package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/starfall/internal/fill"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "seeds.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleResult(token string) *fill.Result {
	return &fill.Result{
		Token: token,
		Seed:  42,
		Placement: map[string]string{
			"Town Plaza":   "sword",
			"Sewers Chest": "key",
		},
		Trace: []fill.TraceEntry{
			{Sphere: 0, Location: "Town Plaza", Item: "sword"},
			{Sphere: 1, Location: "Sewers Chest", Item: "key", Locked: true},
		},
		GoalReachable: true,
		Summary:       fill.Summary{Attempts: 1, Spheres: 2, Locations: 2, Items: 2, Swaps: 3},
	}
}

func TestOpen_CreatesSchema(t *testing.T) {
	s := openTestStore(t)

	var version int
	require.NoError(t, s.DB().QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, 1, version)
}

func TestSaveResult_Roundtrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	result := sampleResult("tok-1")

	require.NoError(t, s.SaveResult(ctx, result))

	rec, err := s.GetSeed(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, int64(42), rec.Seed)
	assert.True(t, rec.GoalReachable)
	assert.Equal(t, 1, rec.Attempts)
	assert.Equal(t, 2, rec.Spheres)
	assert.Equal(t, 3, rec.Swaps)
	assert.NotEmpty(t, rec.CreatedAt)

	wantFP, err := result.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, wantFP, rec.Fingerprint)

	trace, err := s.GetTrace(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, result.Trace, trace, "trace comes back in collection order with locked flags")

	placement, err := s.GetPlacement(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, result.Placement, placement)
}

func TestSaveResult_DuplicateTokenRejected(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveResult(ctx, sampleResult("tok-dup")))
	assert.Error(t, s.SaveResult(ctx, sampleResult("tok-dup")))

	// The failed transaction must not leave partial placements behind.
	trace, err := s.GetTrace(ctx, "tok-dup")
	require.NoError(t, err)
	assert.Len(t, trace, 2)
}

func TestGetSeed_NotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetSeed(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetTrace(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetPlacement(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListSeeds(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveResult(ctx, sampleResult("tok-a")))
	require.NoError(t, s.SaveResult(ctx, sampleResult("tok-b")))

	records, err := s.ListSeeds(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)

	tokens := []string{records[0].Token, records[1].Token}
	assert.ElementsMatch(t, []string{"tok-a", "tok-b"}, tokens)
}

func TestOpen_Reopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seeds.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.SaveResult(ctx, sampleResult("tok-persist")))
	require.NoError(t, s.Close())

	// Schema application is idempotent and data survives reopen.
	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	rec, err := s2.GetSeed(ctx, "tok-persist")
	require.NoError(t, err)
	assert.Equal(t, int64(42), rec.Seed)
}
