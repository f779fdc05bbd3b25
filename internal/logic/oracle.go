// Package logic decides location reachability under a simulated
// progress state.
//
// The Oracle combines per-region rules and per-location rules into a
// single accessibility answer, memoized by the state's canonical
// content key so repeated probes against an unchanged state are O(1)
// after the first.
//
// Evaluation is fail-closed: a predicate that cannot be decided (a
// panic inside a rule, a re-entrant CanReach probe, an unknown target)
// answers "inaccessible" and is logged, never propagated as a crash.
// This is the evaluation-time half of the error policy; compile-time
// failures are loud errors in internal/rules.
package logic

import (
	"fmt"
	"log/slog"

	"github.com/roach88/starfall/internal/rules"
	"github.com/roach88/starfall/internal/state"
	"github.com/roach88/starfall/internal/world"
)

// Oracle answers reachability queries for one generation call.
//
// Oracles are pure with respect to their inputs: they never mutate
// state or location records. They carry per-call caches, so do not
// share one oracle across concurrent generations.
type Oracle struct {
	world   *world.World
	regions map[string]rules.Predicate
	locs    map[string]rules.Predicate
	logger  *slog.Logger

	// cache memoizes top-level accessibility by content key, not
	// object identity: key is state.Key() + NUL + location name.
	cache map[string]bool

	// inflight guards CanReach recursion. Location A's rule may
	// reference location B whose rule references A; the second probe of
	// the same target inside one evaluation answers false.
	inflight map[string]bool

	// depth tracks evaluation nesting. Only depth-zero results are
	// cached; inner fail-closed answers depend on the in-flight set and
	// must not poison the memo.
	depth int
}

// NewOracle compiles every region and location rule in the world.
// Compilation failures are fatal and halt before any placement attempt.
func NewOracle(w *world.World, c *rules.Compiler, logger *slog.Logger) (*Oracle, error) {
	if logger == nil {
		logger = slog.Default()
	}
	o := &Oracle{
		world:    w,
		regions:  make(map[string]rules.Predicate, len(w.Regions)),
		locs:     make(map[string]rules.Predicate),
		logger:   logger,
		cache:    make(map[string]bool),
		inflight: make(map[string]bool),
	}

	for tag, expr := range w.Regions {
		p, err := c.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("region %q: %w", tag, err)
		}
		o.regions[tag] = p
	}
	for _, loc := range w.Locations {
		if loc.Rule == nil {
			continue
		}
		p, err := c.Compile(loc.Rule)
		if err != nil {
			return nil, fmt.Errorf("location %q: %w", loc.Name, err)
		}
		o.locs[loc.Name] = p
	}
	return o, nil
}

// IsAccessible reports whether the location is reachable under the
// given state: the AND of all its region rules and its own rule.
// Absent rules default to "always true" for that term only.
func (o *Oracle) IsAccessible(loc *world.Location, st *state.GameState) bool {
	cacheKey := ""
	if o.depth == 0 {
		cacheKey = st.Key() + "\x00" + loc.Name
		if hit, ok := o.cache[cacheKey]; ok {
			return hit
		}
	}

	result := o.evaluate(loc, st)

	if cacheKey != "" {
		o.cache[cacheKey] = result
	}
	return result
}

// AccessibleLocations returns every location reachable under the state,
// in declaration order. Batch form used once per sphere per attempt.
func (o *Oracle) AccessibleLocations(st *state.GameState) []*world.Location {
	var out []*world.Location
	for _, loc := range o.world.Locations {
		if o.IsAccessible(loc, st) {
			out = append(out, loc)
		}
	}
	return out
}

func (o *Oracle) evaluate(loc *world.Location, st *state.GameState) (result bool) {
	guard := guardKey(rules.TargetLocation, loc.Name)
	if o.inflight[guard] {
		o.logger.Warn("re-entrant accessibility probe, failing closed",
			"location", loc.Name)
		return false
	}
	o.inflight[guard] = true
	o.depth++
	defer func() {
		delete(o.inflight, guard)
		o.depth--
		if r := recover(); r != nil {
			o.logger.Warn("rule evaluation failed, treating location as inaccessible",
				"location", loc.Name, "panic", fmt.Sprint(r))
			result = false
		}
	}()

	v := view{st: st, oracle: o}
	for _, tag := range loc.Tags {
		if p, ok := o.regions[tag]; ok && !p(v) {
			return false
		}
	}
	if p, ok := o.locs[loc.Name]; ok && !p(v) {
		return false
	}
	return true
}

// canReach resolves a CanReach predicate against another target.
func (o *Oracle) canReach(target string, kind rules.TargetKind, st *state.GameState) (result bool) {
	switch kind {
	case rules.TargetLocation:
		loc := o.world.Location(target)
		if loc == nil {
			o.logger.Warn("reach target names unknown location, failing closed",
				"target", target)
			return false
		}
		return o.IsAccessible(loc, st)

	case rules.TargetRegion:
		p, ok := o.regions[target]
		if !ok {
			o.logger.Warn("reach target names unknown region, failing closed",
				"target", target)
			return false
		}
		guard := guardKey(kind, target)
		if o.inflight[guard] {
			o.logger.Warn("re-entrant region probe, failing closed",
				"region", target)
			return false
		}
		o.inflight[guard] = true
		o.depth++
		defer func() {
			delete(o.inflight, guard)
			o.depth--
			if r := recover(); r != nil {
				o.logger.Warn("region rule evaluation failed, failing closed",
					"region", target, "panic", fmt.Sprint(r))
				result = false
			}
		}()
		return p(view{st: st, oracle: o})

	default:
		o.logger.Warn("reach target has unknown kind, failing closed",
			"target", target, "kind", string(kind))
		return false
	}
}

func guardKey(kind rules.TargetKind, target string) string {
	return string(kind) + ":" + target
}

// view adapts a (state, oracle) pair to the rules.World interface.
type view struct {
	st     *state.GameState
	oracle *Oracle
}

func (v view) ItemCount(name string) int { return v.st.Count(name) }
func (v view) Stars() int                { return v.st.Stars() }

func (v view) CanReach(target string, kind rules.TargetKind) bool {
	return v.oracle.canReach(target, kind, v.st)
}
