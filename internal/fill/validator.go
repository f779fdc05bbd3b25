package fill

import (
	"github.com/roach88/starfall/internal/logic"
	"github.com/roach88/starfall/internal/state"
	"github.com/roach88/starfall/internal/world"
)

// Report is the validator's verdict on a finished placement.
type Report struct {
	// Complete is true when every item-bearing location was reached.
	Complete bool

	// Unreachable names the item-bearing locations the simulation
	// never reached, in declaration order.
	Unreachable []string

	// GoalReachable is the can-finish check against the world's goal
	// location. True when no goal is configured.
	GoalReachable bool

	// Trace is the sphere-by-sphere collection order.
	Trace []TraceEntry

	// Spheres is the number of waves the simulation ran.
	Spheres int
}

// Validate re-simulates reachability from an empty state against the
// finished, fixed placement: each wave collects every item-bearing
// location accessible under the state so far, until no wave makes
// progress. No randomness, no mutation of the placement.
//
// The same sweep logic certifies the goal location as a can-finish
// check. A report with Complete=false names the unreachable locations;
// callers must retry, never accept.
func Validate(ww *world.World, oracle *logic.Oracle) *Report {
	st := state.New(ww.StarItems)
	collected := make(map[string]bool)
	report := &Report{}

	for sphere := 0; ; sphere++ {
		// Frontier computed against the pre-wave state: a location may
		// not depend on items collected in its own wave.
		var wave []*world.Location
		for _, loc := range ww.Locations {
			if loc.PlacedItem == "" || collected[loc.Name] {
				continue
			}
			if oracle.IsAccessible(loc, st) {
				wave = append(wave, loc)
			}
		}
		if len(wave) == 0 {
			break
		}
		for _, loc := range wave {
			st.Collect(loc.PlacedItem)
			collected[loc.Name] = true
			report.Trace = append(report.Trace, TraceEntry{
				Sphere:   sphere,
				Location: loc.Name,
				Item:     loc.PlacedItem,
				Locked:   loc.Locked,
			})
		}
		report.Spheres = sphere + 1
	}

	for _, loc := range ww.Locations {
		if loc.PlacedItem != "" && !collected[loc.Name] {
			report.Unreachable = append(report.Unreachable, loc.Name)
		}
	}
	report.Complete = len(report.Unreachable) == 0

	switch {
	case ww.Goal == "":
		report.GoalReachable = true
	case collected[ww.Goal]:
		report.GoalReachable = true
	default:
		goal := ww.Location(ww.Goal)
		report.GoalReachable = goal != nil && oracle.IsAccessible(goal, st)
	}

	return report
}
