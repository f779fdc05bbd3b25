// Package state implements the simulated-progress tracker for a single
// generation attempt.
//
// A GameState is a multiset of collected item names plus a derived star
// counter driven by collecting items from the dataset's star set. It
// supports cheap cloning for counterfactual probes and a canonical
// content key for oracle memoization.
package state

import (
	"github.com/roach88/starfall/internal/canon"
)

// GameState is the mutable record of collected items.
//
// Not safe for concurrent use; each generation call owns its own state.
type GameState struct {
	items map[string]int
	stars int

	// starItems names the items that advance the derived star counter.
	starItems map[string]bool

	// key caches the canonical content key; "" means dirty.
	key string
}

// New creates an empty state. starItems lists the item names whose
// collection advances the derived star counter.
func New(starItems []string) *GameState {
	set := make(map[string]bool, len(starItems))
	for _, name := range starItems {
		set[name] = true
	}
	return &GameState{
		items:     make(map[string]int),
		starItems: set,
	}
}

// Collect adds one copy of an item and advances the star counter when
// the item belongs to the star set.
func (s *GameState) Collect(name string) {
	s.items[name]++
	if s.starItems[name] {
		s.stars++
	}
	s.key = ""
}

// Remove takes away one copy of an item, decrementing the star counter
// symmetrically. Removing an item the state does not hold is a no-op.
func (s *GameState) Remove(name string) {
	count, ok := s.items[name]
	if !ok {
		return
	}
	if count <= 1 {
		delete(s.items, name)
	} else {
		s.items[name] = count - 1
	}
	if s.starItems[name] {
		s.stars--
	}
	s.key = ""
}

// Count returns the number of collected copies of the named item in
// the literal multiset. The derived counter is exposed by Stars.
func (s *GameState) Count(name string) int {
	return s.items[name]
}

// Stars returns the derived star-progress counter.
func (s *GameState) Stars() int {
	return s.stars
}

// Len returns the total number of collected item copies.
func (s *GameState) Len() int {
	total := 0
	for _, count := range s.items {
		total += count
	}
	return total
}

// Clone returns an independent copy sharing only the immutable star
// set. Used for what-if probes during deadlock recovery.
func (s *GameState) Clone() *GameState {
	items := make(map[string]int, len(s.items))
	for name, count := range s.items {
		items[name] = count
	}
	return &GameState{
		items:     items,
		stars:     s.stars,
		starItems: s.starItems,
		key:       s.key,
	}
}

// Key returns a canonical content-derived key: equal item counts and
// counters produce equal keys regardless of collection order or object
// identity. The key is cached until the next mutation.
func (s *GameState) Key() string {
	if s.key != "" {
		return s.key
	}

	items := make(map[string]any, len(s.items))
	for name, count := range s.items {
		items[name] = count
	}
	key, err := canon.Hash(canon.DomainState, map[string]any{
		"items": items,
		"stars": s.stars,
	})
	if err != nil {
		// Item names and counts are always canonicalizable; reaching
		// this means a programming error, not bad input.
		panic("state: canonical key: " + err.Error())
	}
	s.key = key
	return key
}
