package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSettings_Full(t *testing.T) {
	s, err := ParseSettings([]byte(`
seed: 12345
starting_partner: goombella
star_shuffle: false
goal_stars: 5
frequencies:
  coin: 3
  badge: 0
locked:
  Plot Pedestal: plot_mcguffin
`))
	require.NoError(t, err)

	assert.Equal(t, int64(12345), s.Seed)
	assert.Equal(t, "goombella", s.StartingPartner)
	assert.False(t, s.StarShuffle)
	assert.Equal(t, 5, s.GoalStars)
	assert.Equal(t, map[string]int{"coin": 3, "badge": 0}, s.Frequencies)
	assert.Equal(t, map[string]string{"Plot Pedestal": "plot_mcguffin"}, s.Locked)
}

func TestParseSettings_DefaultsSurvivePartialFiles(t *testing.T) {
	s, err := ParseSettings([]byte(`seed: 9`))
	require.NoError(t, err)

	assert.Equal(t, int64(9), s.Seed)
	assert.True(t, s.StarShuffle, "star shuffle defaults on")
	assert.Equal(t, 7, s.GoalStars)
}

func TestParseSettings_UnknownFieldRejected(t *testing.T) {
	_, err := ParseSettings([]byte(`star_shufle: false`))
	require.Error(t, err, "a typoed option must fail loudly, not run with defaults")
}

func TestParseSettings_BadYAML(t *testing.T) {
	_, err := ParseSettings([]byte(`seed: [`))
	assert.Error(t, err)
}

func TestLoadSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "player.yaml")
	require.NoError(t, os.WriteFile(path, []byte("seed: 77\n"), 0o644))

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, int64(77), s.Seed)
}

func TestLoadSettings_MissingFile(t *testing.T) {
	_, err := LoadSettings(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	assert.True(t, s.StarShuffle)
	assert.Equal(t, 7, s.GoalStars)
	assert.Zero(t, s.Seed)
}
