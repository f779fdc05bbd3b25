package fill

import "github.com/roach88/starfall/internal/canon"

// TraceEntry is one collection step in the sphere-by-sphere trace.
type TraceEntry struct {
	Sphere   int    `json:"sphere"`
	Location string `json:"location"`
	Item     string `json:"item"`
	Locked   bool   `json:"locked,omitempty"`
}

// Summary carries the counts the spoiler collaborator reports.
type Summary struct {
	Attempts  int `json:"attempts"`
	Spheres   int `json:"spheres"`
	Locations int `json:"locations"`
	Items     int `json:"items"`
	Swaps     int `json:"swaps"`
}

// Result is a certified generation: the placement handed to the
// patch-building collaborator plus the trace and summary handed to the
// spoiler collaborator.
type Result struct {
	// Token correlates the generation across logs and the seed store.
	Token string `json:"token"`

	// Seed reproduces this result bit for bit.
	Seed int64 `json:"seed"`

	// Placement maps every item-bearing location to its item, locked
	// entries included.
	Placement map[string]string `json:"placement"`

	// Trace is the validator-derived collection order.
	Trace []TraceEntry `json:"trace"`

	// GoalReachable is the can-finish verdict.
	GoalReachable bool `json:"goal_reachable"`

	Summary Summary `json:"summary"`
}

// Fingerprint returns a content-derived hash of the placement and
// trace. The token is excluded: two runs with the same seed and inputs
// fingerprint identically.
func (r *Result) Fingerprint() (string, error) {
	return canon.Hash(canon.DomainPlacement, r.snapshotMap())
}

// Snapshot renders the deterministic parts of the result as canonical
// JSON. Golden trace tests compare these bytes.
func (r *Result) Snapshot() ([]byte, error) {
	return canon.Marshal(r.snapshotMap())
}

func (r *Result) snapshotMap() map[string]any {
	placement := make(map[string]any, len(r.Placement))
	for loc, item := range r.Placement {
		placement[loc] = item
	}

	trace := make([]any, len(r.Trace))
	for i, entry := range r.Trace {
		trace[i] = map[string]any{
			"sphere":   entry.Sphere,
			"location": entry.Location,
			"item":     entry.Item,
			"locked":   entry.Locked,
		}
	}

	return map[string]any{
		"seed":      r.Seed,
		"placement": placement,
		"trace":     trace,
		"summary": map[string]any{
			"attempts":  r.Summary.Attempts,
			"spheres":   r.Summary.Spheres,
			"locations": r.Summary.Locations,
			"items":     r.Summary.Items,
			"swaps":     r.Summary.Swaps,
		},
	}
}
