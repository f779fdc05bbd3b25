// Package server exposes generation over HTTP.
//
// One endpoint does the work: POST /api/generate takes player settings
// as JSON, runs a full placement search, and returns the certified
// placement with its sphere trace. Each request runs an independent
// generation, so concurrent requests are safe.
package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roach88/starfall/internal/dataset"
	"github.com/roach88/starfall/internal/fill"
	"github.com/roach88/starfall/internal/store"
	"github.com/roach88/starfall/internal/world"
)

// Server handles generation requests against one loaded dataset.
type Server struct {
	base   *world.World
	seeds  *store.Store // nil disables persistence
	logger *slog.Logger
}

// New creates a server. seeds may be nil to skip persistence.
func New(base *world.World, seeds *store.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{base: base, seeds: seeds, logger: logger}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.POST("/api/generate", s.handleGenerate)
	r.GET("/api/seeds/:token", s.handleGetSeed)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return r
}

// GenerateRequest is the settings payload for POST /api/generate.
// Absent fields keep their defaults.
type GenerateRequest struct {
	Seed            int64             `json:"seed"`
	StartingPartner string            `json:"starting_partner"`
	StarShuffle     *bool             `json:"star_shuffle"`
	GoalStars       *int              `json:"goal_stars"`
	Frequencies     map[string]int    `json:"frequencies"`
	Locked          map[string]string `json:"locked"`
}

func (r *GenerateRequest) settings() world.Settings {
	s := dataset.DefaultSettings()
	s.Seed = r.Seed
	s.StartingPartner = r.StartingPartner
	if r.StarShuffle != nil {
		s.StarShuffle = *r.StarShuffle
	}
	if r.GoalStars != nil {
		s.GoalStars = *r.GoalStars
	}
	if r.Frequencies != nil {
		s.Frequencies = r.Frequencies
	}
	if r.Locked != nil {
		s.Locked = r.Locked
	}
	return s
}

func (s *Server) handleGenerate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no settings provided"})
		return
	}

	engine := fill.New(s.base, req.settings(), fill.WithLogger(s.logger))
	result, err := engine.Generate()
	if err != nil {
		status := http.StatusInternalServerError
		if fill.IsConfigurationError(err) {
			status = http.StatusUnprocessableEntity
		}
		s.logger.Warn("generation failed", "error", err)
		c.JSON(status, gin.H{"success": false, "error": err.Error()})
		return
	}

	if s.seeds != nil {
		if err := s.seeds.SaveResult(c.Request.Context(), result); err != nil {
			// The result is still valid; persistence is best effort.
			s.logger.Warn("failed to persist result", "token", result.Token, "error", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "result": result})
}

func (s *Server) handleGetSeed(c *gin.Context) {
	if s.seeds == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "seed store disabled"})
		return
	}
	token := c.Param("token")

	rec, err := s.seeds.GetSeed(c.Request.Context(), token)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown token"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	trace, err := s.seeds.GetTrace(c.Request.Context(), token)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":          rec.Token,
		"seed":           rec.Seed,
		"fingerprint":    rec.Fingerprint,
		"goal_reachable": rec.GoalReachable,
		"attempts":       rec.Attempts,
		"spheres":        rec.Spheres,
		"swaps":          rec.Swaps,
		"created_at":     rec.CreatedAt,
		"trace":          trace,
	})
}
