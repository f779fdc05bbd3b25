package fill

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/roach88/starfall/internal/logic"
	"github.com/roach88/starfall/internal/rules"
	"github.com/roach88/starfall/internal/state"
	"github.com/roach88/starfall/internal/world"
)

// DefaultMaxAttempts is the default cap on top-level placement
// attempts before generation fails for good.
const DefaultMaxAttempts = 10

// DefaultMaxSpheres is the default iteration ceiling per attempt.
// Exceeding it means the search is not converging; the attempt aborts
// rather than looping indefinitely.
const DefaultMaxSpheres = 1000

// DefaultMaxSwapsPerDeadlock is the default swap budget for a single
// dead end.
const DefaultMaxSwapsPerDeadlock = 64

// DefaultMaxSwapsPerAttempt is the default total swap budget across
// one attempt.
const DefaultMaxSwapsPerAttempt = 256

// Engine runs the sphere-by-sphere placement search.
//
// Each Generate call owns an independent working world, state, oracle
// and pool; engines hold no mutable state between calls, so one engine
// may serve concurrent generations.
type Engine struct {
	base     *world.World
	settings world.Settings
	source   Source
	logger   *slog.Logger

	maxAttempts         int
	maxSpheres          int
	maxSwapsPerDeadlock int
	maxSwapsPerAttempt  int
}

// Option configures engine parameters.
type Option func(*Engine)

// WithSource overrides the random source. Tests use scripted sources;
// by default Generate seeds a PRNG from the settings seed.
func WithSource(src Source) Option {
	return func(e *Engine) { e.source = src }
}

// WithLogger sets the logger. Tests pass a discard logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithMaxAttempts sets the top-level attempt cap.
func WithMaxAttempts(n int) Option {
	return func(e *Engine) { e.maxAttempts = n }
}

// WithMaxSpheres sets the per-attempt iteration ceiling.
func WithMaxSpheres(n int) Option {
	return func(e *Engine) { e.maxSpheres = n }
}

// WithSwapBudget sets the per-deadlock and per-attempt swap caps.
func WithSwapBudget(perDeadlock, perAttempt int) Option {
	return func(e *Engine) {
		e.maxSwapsPerDeadlock = perDeadlock
		e.maxSwapsPerAttempt = perAttempt
	}
}

// New creates an engine over a base world and player settings.
func New(base *world.World, settings world.Settings, opts ...Option) *Engine {
	e := &Engine{
		base:                base,
		settings:            settings,
		logger:              slog.Default(),
		maxAttempts:         DefaultMaxAttempts,
		maxSpheres:          DefaultMaxSpheres,
		maxSwapsPerDeadlock: DefaultMaxSwapsPerDeadlock,
		maxSwapsPerAttempt:  DefaultMaxSwapsPerAttempt,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Generate runs the full state machine: INIT through COMPLETE, with
// bounded deadlock recovery inside an attempt and bounded retries
// across attempts. The returned result carries the placement, the
// validator-derived sphere trace, and summary counts.
//
// Error taxonomy: configuration and rule-compilation failures return
// immediately with no retry; deadlocks and validation failures consume
// an attempt; running out of attempts returns an exhaustion error
// naming the last failure.
func (e *Engine) Generate() (*Result, error) {
	ww, err := e.base.Apply(e.settings)
	if err != nil {
		return nil, &GenError{Code: ErrCodeConfiguration, Message: err.Error()}
	}
	if err := ww.Validate(); err != nil {
		return nil, &GenError{Code: ErrCodeConfiguration, Message: err.Error()}
	}

	compiler, err := rules.NewCompiler(ww.Named)
	if err != nil {
		return nil, err
	}
	oracle, err := logic.NewOracle(ww, compiler, e.logger)
	if err != nil {
		return nil, err
	}

	seed := e.settings.Seed
	if seed == 0 {
		seed, err = NewRandomSeed()
		if err != nil {
			return nil, err
		}
	}
	source := e.source
	if source == nil {
		source = NewSource(seed)
	}

	token := uuid.Must(uuid.NewV7()).String()
	e.logger.Info("generation starting", "token", token, "seed", seed)

	var lastErr *GenError
	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		swaps, gerr := e.runAttempt(ww, oracle, source, attempt)
		if gerr != nil {
			if gerr.Code == ErrCodeConfiguration {
				return nil, gerr
			}
			e.logger.Warn("attempt failed", "attempt", attempt, "error", gerr.Message)
			lastErr = gerr
			continue
		}

		report := Validate(ww, oracle)
		if !report.Complete {
			// Never return a placement the validator rejects.
			lastErr = &GenError{
				Code:    ErrCodeValidation,
				Message: fmt.Sprintf("%d locations unreachable after fill", len(report.Unreachable)),
				Attempt: attempt,
				Details: map[string]string{"unreachable": fmt.Sprint(report.Unreachable)},
			}
			e.logger.Warn("placement failed validation, retrying",
				"attempt", attempt, "unreachable", report.Unreachable)
			continue
		}

		placement := make(map[string]string, len(ww.Locations))
		filled := 0
		for _, loc := range ww.Locations {
			if loc.PlacedItem != "" {
				placement[loc.Name] = loc.PlacedItem
				filled++
			}
		}
		e.logger.Info("generation complete",
			"token", token, "attempt", attempt, "spheres", report.Spheres, "swaps", swaps)
		return &Result{
			Token:         token,
			Seed:          seed,
			Placement:     placement,
			Trace:         report.Trace,
			GoalReachable: report.GoalReachable,
			Summary: Summary{
				Attempts:  attempt,
				Spheres:   report.Spheres,
				Locations: filled,
				Items:     filled,
				Swaps:     swaps,
			},
		}, nil
	}

	exhausted := &GenError{
		Code:    ErrCodeExhausted,
		Message: fmt.Sprintf("no valid placement after %d attempts", e.maxAttempts),
		Attempt: e.maxAttempts,
		Details: map[string]string{},
	}
	if lastErr != nil {
		exhausted.Details["last_failure"] = lastErr.Error()
	}
	return nil, exhausted
}

// runAttempt drives one pass of the state machine. A nil error means
// COMPLETE: every non-locked location holds an item and the pool is
// empty. Returns the number of swaps spent.
func (e *Engine) runAttempt(ww *world.World, oracle *logic.Oracle, rng Source, attempt int) (int, *GenError) {
	// INIT: placements reset wholesale except locked entries.
	for _, loc := range ww.Locations {
		if !loc.Locked {
			loc.PlacedItem = ""
		}
	}

	pool, gerr := BuildPool(ww, rng)
	if gerr != nil {
		gerr.Attempt = attempt
		return 0, gerr
	}

	st := state.New(ww.StarItems)
	collected := make(map[string]bool)
	swapsUsed := 0

	for sphere := 0; ; sphere++ {
		if sphere >= e.maxSpheres {
			return swapsUsed, &GenError{
				Code:    ErrCodeDeadlock,
				Message: fmt.Sprintf("sphere ceiling %d reached, unsolvable under current settings", e.maxSpheres),
				Attempt: attempt,
				Sphere:  sphere,
			}
		}

		e.sweep(ww, oracle, st, collected)

		frontier := e.frontier(ww, oracle, st)
		if len(frontier) == 0 {
			if pool.Empty() {
				return swapsUsed, nil // COMPLETE
			}
			newState, gerr := e.recoverDeadlock(ww, oracle, rng, pool, collected, &swapsUsed, attempt, sphere)
			if gerr != nil {
				return swapsUsed, gerr
			}
			st = newState
			continue
		}

		rng.Shuffle(len(frontier), func(i, j int) {
			frontier[i], frontier[j] = frontier[j], frontier[i]
		})
		for _, loc := range frontier {
			item := pool.Draw(rng)
			loc.PlacedItem = item
			collected[loc.Name] = true
			st.Collect(item)
		}
	}
}

// sweep collects pre-placed locked items whose locations have become
// reachable, to a fixpoint: a collected locked item may itself open
// another locked location. The collected set makes it idempotent.
func (e *Engine) sweep(ww *world.World, oracle *logic.Oracle, st *state.GameState, collected map[string]bool) {
	for {
		progress := false
		for _, loc := range ww.Locations {
			if !loc.Locked || collected[loc.Name] {
				continue
			}
			if oracle.IsAccessible(loc, st) {
				st.Collect(loc.PlacedItem)
				collected[loc.Name] = true
				progress = true
			}
		}
		if !progress {
			return
		}
	}
}

// frontier returns the reachable, unfilled, non-locked locations in
// declaration order. The caller shuffles.
func (e *Engine) frontier(ww *world.World, oracle *logic.Oracle, st *state.GameState) []*world.Location {
	var out []*world.Location
	for _, loc := range ww.Locations {
		if loc.Locked || loc.PlacedItem != "" {
			continue
		}
		if oracle.IsAccessible(loc, st) {
			out = append(out, loc)
		}
	}
	return out
}
