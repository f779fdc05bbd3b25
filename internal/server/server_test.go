package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/starfall/internal/rules"
	"github.com/roach88/starfall/internal/store"
	"github.com/roach88/starfall/internal/world"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testWorld() *world.World {
	return &world.World{
		Locations: []*world.Location{
			{Name: "Open A"},
			{Name: "Open B"},
			{Name: "Key Door", Rule: rules.HasItem{Name: "key", Count: 1}},
		},
		Items: []world.Item{
			{Name: "key", Class: world.ClassProgression, Frequency: 1},
			{Name: "coin", Class: world.ClassFiller, Frequency: 5},
		},
		Goal: "Key Door",
	}
}

func newTestServer(t *testing.T, seeds *store.Store) *gin.Engine {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(testWorld(), seeds, logger).Router()
}

func TestHealthz(t *testing.T) {
	router := newTestServer(t, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGenerate_OK(t *testing.T) {
	router := newTestServer(t, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/generate",
		strings.NewReader(`{"seed": 11}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Success bool `json:"success"`
		Result  struct {
			Token         string            `json:"token"`
			Seed          int64             `json:"seed"`
			Placement     map[string]string `json:"placement"`
			GoalReachable bool              `json:"goal_reachable"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	assert.True(t, body.Success)
	assert.Equal(t, int64(11), body.Result.Seed)
	assert.NotEmpty(t, body.Result.Token)
	assert.Len(t, body.Result.Placement, 3)
	assert.True(t, body.Result.GoalReachable)
}

func TestGenerate_NoBody(t *testing.T) {
	router := newTestServer(t, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/generate", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "no settings provided")
}

func TestGenerate_ConfigurationErrorIs422(t *testing.T) {
	router := newTestServer(t, nil)

	// Excluding the filler leaves the pool short of the location count.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/generate",
		strings.NewReader(`{"seed": 1, "frequencies": {"coin": 0}}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "CONFIGURATION")
}

func TestGenerate_PersistsAndGetSeed(t *testing.T) {
	seeds, err := store.Open(filepath.Join(t.TempDir(), "seeds.db"))
	require.NoError(t, err)
	defer seeds.Close()

	router := newTestServer(t, seeds)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/generate",
		strings.NewReader(`{"seed": 21}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Result struct {
			Token string `json:"token"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.Result.Token)

	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/api/seeds/"+body.Result.Token, nil)
	router.ServeHTTP(w2, req2)
	require.Equal(t, http.StatusOK, w2.Code, w2.Body.String())

	var stored struct {
		Token         string `json:"token"`
		Seed          int64  `json:"seed"`
		GoalReachable bool   `json:"goal_reachable"`
		Trace         []any  `json:"trace"`
	}
	require.NoError(t, json.Unmarshal(w2.Body.Bytes(), &stored))
	assert.Equal(t, body.Result.Token, stored.Token)
	assert.Equal(t, int64(21), stored.Seed)
	assert.True(t, stored.GoalReachable)
	assert.Len(t, stored.Trace, 3)
}

func TestGetSeed_UnknownToken(t *testing.T) {
	seeds, err := store.Open(filepath.Join(t.TempDir(), "seeds.db"))
	require.NoError(t, err)
	defer seeds.Close()

	router := newTestServer(t, seeds)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/seeds/ghost", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetSeed_StoreDisabled(t *testing.T) {
	router := newTestServer(t, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/seeds/anything", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "disabled")
}
