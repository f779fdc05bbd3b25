// Package testutil provides deterministic random sources for tests.
package testutil

// ZeroSource is a fill.Source whose Intn always returns 0 and whose
// Shuffle leaves the slice untouched.
//
// This makes every draw take the first candidate and every frontier
// keep declaration order, so a test can compute the exact placement a
// scenario produces and assert it, including golden snapshots.
//
// Thread-safety: ZeroSource is stateless and safe for concurrent use.
type ZeroSource struct{}

// Intn returns 0 for any n.
func (ZeroSource) Intn(n int) int { return 0 }

// Shuffle is the identity permutation.
func (ZeroSource) Shuffle(n int, swap func(i, j int)) {}

// ScriptedSource returns a predetermined sequence of Intn values.
//
// Like the zero source its Shuffle is the identity permutation; the
// script drives only the draws. Exhausting the script panics, a
// fail-fast guard against test misconfiguration (the scenario consumed
// more randomness than the test planned for).
//
// Not safe for concurrent use; generation is single-threaded.
type ScriptedSource struct {
	values []int
	idx    int
}

// NewScriptedSource creates a source returning values in order.
//
// Example:
//
//	src := NewScriptedSource(1, 0, 2)
//	src.Intn(3) // 1
//	src.Intn(2) // 0
//	src.Intn(3) // 2
//	src.Intn(5) // panic: script exhausted
func NewScriptedSource(values ...int) *ScriptedSource {
	return &ScriptedSource{values: values}
}

// Intn returns the next scripted value, reduced modulo n so a script
// written for one bound stays valid for a smaller one.
func (s *ScriptedSource) Intn(n int) int {
	if s.idx >= len(s.values) {
		panic("ScriptedSource: script exhausted")
	}
	v := s.values[s.idx]
	s.idx++
	return v % n
}

// Shuffle is the identity permutation.
func (s *ScriptedSource) Shuffle(n int, swap func(i, j int)) {}
