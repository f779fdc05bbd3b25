package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDataset = `
world: {
	goal: "Key Door"
	regions: {
		gated: {has: {item: "key"}}
	}
	items: [
		{name: "key", class: "progression"},
		{name: "coin", class: "filler", frequency: 5},
	]
	locations: [
		{name: "Open A"},
		{name: "Open B"},
		{name: "Key Door", tags: ["gated"]},
	]
}
`

func writeDataset(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "world.cue"), []byte(src), 0o644))
	return dir
}

func runCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestValidate_OK(t *testing.T) {
	dir := writeDataset(t, testDataset)

	out, _, err := runCommand(t, "validate", "--dataset", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "ok:")
	assert.Contains(t, out, "3 locations")
}

func TestValidate_JSONFormat(t *testing.T) {
	dir := writeDataset(t, testDataset)

	out, _, err := runCommand(t, "validate", "--dataset", dir, "--format", "json")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestValidate_PredicateCycle(t *testing.T) {
	dir := writeDataset(t, `
world: {
	predicates: {
		a: {named: "b"}
		b: {named: "a"}
	}
	items: [{name: "coin", class: "filler"}]
	locations: [{name: "Spot"}]
}
`)

	out, _, err := runCommand(t, "validate", "--dataset", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "PREDICATE_CYCLE")
}

func TestValidate_MissingDataset(t *testing.T) {
	_, _, err := runCommand(t, "validate", "--dataset", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestGenerate_TextOutput(t *testing.T) {
	dir := writeDataset(t, testDataset)

	out, _, err := runCommand(t, "generate", "--dataset", dir, "--seed", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "token:")
	assert.Contains(t, out, "goal reachable: true")
}

func TestGenerate_JSONOutputAndPersistence(t *testing.T) {
	dir := writeDataset(t, testDataset)
	dbPath := filepath.Join(t.TempDir(), "seeds.db")

	out, _, err := runCommand(t, "generate",
		"--dataset", dir, "--seed", "9", "--db", dbPath, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Token     string            `json:"token"`
			Seed      int64             `json:"seed"`
			Placement map[string]string `json:"placement"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, int64(9), resp.Data.Seed)
	assert.Len(t, resp.Data.Placement, 3)
	require.NotEmpty(t, resp.Data.Token)

	// The spoiler command reads the persisted trace back.
	spoilerOut, _, err := runCommand(t, "spoiler", "--db", dbPath, "--token", resp.Data.Token)
	require.NoError(t, err)
	assert.Contains(t, spoilerOut, "sphere 0:")
	assert.Contains(t, spoilerOut, "Key Door")
}

func TestGenerate_ConfigurationError(t *testing.T) {
	dir := writeDataset(t, `
world: {
	items: [{name: "key", class: "progression", frequency: 3}]
	locations: [{name: "Only Spot"}]
}
`)

	out, _, err := runCommand(t, "generate", "--dataset", dir, "--seed", "1")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "CONFIGURATION")
}

func TestSpoiler_UnknownToken(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "seeds.db")
	dir := writeDataset(t, testDataset)

	// Create the database first so the open succeeds.
	_, _, err := runCommand(t, "generate", "--dataset", dir, "--seed", "1", "--db", dbPath)
	require.NoError(t, err)

	out, _, err := runCommand(t, "spoiler", "--db", dbPath, "--token", "ghost")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "NOT_FOUND")
}

func TestRoot_InvalidFormat(t *testing.T) {
	dir := writeDataset(t, testDataset)

	_, _, err := runCommand(t, "validate", "--dataset", dir, "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(&ExitError{Code: ExitCommandError, Message: "x"}))
	assert.Equal(t, ExitFailure, GetExitCode(assert.AnError))
}
