package fill

import (
	"fmt"

	"github.com/roach88/starfall/internal/logic"
	"github.com/roach88/starfall/internal/state"
	"github.com/roach88/starfall/internal/world"
)

// recoverDeadlock breaks an empty-frontier dead end by evicting a
// placed item and installing a pool item in its place.
//
// A candidate swap (location, evicted, incoming) is accepted when the
// target location stays reachable under a counterfactual state rebuilt
// from everything collected so far minus the evicted item - the
// anti-circularity check: after the swap neither the evicted item (back
// in the pool) nor the incoming item (sitting at the location itself)
// may be required to reach the location.
//
// Candidates that reopen the frontier are preferred; once half the
// per-deadlock budget is spent, any candidate passing the
// anti-circularity check is accepted so progress stays possible when
// reachable locations are scarce.
//
// On success returns the new running state (counterfactual plus the
// incoming item). Exceeding the swap budget fails the current attempt
// only.
func (e *Engine) recoverDeadlock(
	ww *world.World,
	oracle *logic.Oracle,
	rng Source,
	pool *Pool,
	collected map[string]bool,
	swapsUsed *int,
	attempt, sphere int,
) (*state.GameState, *GenError) {
	var filled []*world.Location
	for _, loc := range ww.Locations {
		if !loc.Locked && loc.PlacedItem != "" {
			filled = append(filled, loc)
		}
	}
	if len(filled) == 0 {
		return nil, &GenError{
			Code:    ErrCodeDeadlock,
			Message: "frontier empty before any placement, nothing to swap",
			Attempt: attempt,
			Sphere:  sphere,
		}
	}

	for try := 0; try < e.maxSwapsPerDeadlock; try++ {
		if *swapsUsed >= e.maxSwapsPerAttempt {
			return nil, &GenError{
				Code:    ErrCodeDeadlock,
				Message: fmt.Sprintf("attempt swap budget %d exhausted", e.maxSwapsPerAttempt),
				Attempt: attempt,
				Sphere:  sphere,
			}
		}
		*swapsUsed++

		loc := filled[rng.Intn(len(filled))]
		idx := pool.Pick(rng)
		incoming := pool.At(idx)

		base := rebuildState(ww, collected, loc.Name)
		if !oracle.IsAccessible(loc, base) {
			continue
		}

		probe := base.Clone()
		probe.Collect(incoming)
		opened := countAccessibleUnfilled(ww, oracle, probe)

		// Permissive acceptance in the back half of the budget.
		if opened == 0 && try < e.maxSwapsPerDeadlock/2 {
			continue
		}

		evicted := loc.PlacedItem
		pool.Swap(idx, evicted, itemClass(ww, evicted))
		loc.PlacedItem = incoming
		e.logger.Info("deadlock swap",
			"location", loc.Name, "evicted", evicted, "installed", incoming,
			"frontier_opened", opened, "sphere", sphere)
		return probe, nil
	}

	return nil, &GenError{
		Code:    ErrCodeDeadlock,
		Message: fmt.Sprintf("no valid swap within budget %d", e.maxSwapsPerDeadlock),
		Attempt: attempt,
		Sphere:  sphere,
	}
}

// rebuildState derives a state from the collected locations, skipping
// the one named location. Used for counterfactual probes; the running
// state cannot be reused because the evicted item must not count.
func rebuildState(ww *world.World, collected map[string]bool, exceptLoc string) *state.GameState {
	st := state.New(ww.StarItems)
	for _, loc := range ww.Locations {
		if loc.Name == exceptLoc || !collected[loc.Name] || loc.PlacedItem == "" {
			continue
		}
		st.Collect(loc.PlacedItem)
	}
	return st
}

func countAccessibleUnfilled(ww *world.World, oracle *logic.Oracle, st *state.GameState) int {
	count := 0
	for _, loc := range ww.Locations {
		if loc.Locked || loc.PlacedItem != "" {
			continue
		}
		if oracle.IsAccessible(loc, st) {
			count++
		}
	}
	return count
}

// itemClass looks up an item's class, defaulting to filler for items
// outside the table (locked plot items never reach the pool).
func itemClass(ww *world.World, name string) world.Class {
	if item := ww.Item(name); item != nil {
		return item.Class
	}
	return world.ClassFiller
}
