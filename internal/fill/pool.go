package fill

import (
	"fmt"

	"github.com/roach88/starfall/internal/world"
)

type poolEntry struct {
	name  string
	class world.Class
}

// Pool is the free item pool for one placement attempt.
//
// The pool is drawn so its size exactly equals the number of non-locked
// locations: progression and useful items contribute every copy of
// their frequency, and filler items are drawn at random to pad the
// remainder. Items consumed by locked placements give up one copy.
type Pool struct {
	entries []poolEntry
}

// BuildPool constructs the attempt pool for a working world.
//
// Returns a configuration GenError when the pool cannot be made to
// match the fillable location count exactly: that is a data problem,
// not a search problem, and is never retried.
func BuildPool(w *world.World, rng Source) (*Pool, *GenError) {
	free := 0
	lockedCopies := make(map[string]int)
	for _, loc := range w.Locations {
		if loc.Locked {
			lockedCopies[loc.PlacedItem]++
		} else {
			free++
		}
	}

	p := &Pool{}
	var fillerBag []string
	for _, item := range w.Items {
		copies := item.Frequency
		if consumed := lockedCopies[item.Name]; consumed > 0 {
			copies -= consumed
			if copies < 0 {
				copies = 0
			}
		}
		switch item.Class {
		case world.ClassFiller:
			for i := 0; i < copies; i++ {
				fillerBag = append(fillerBag, item.Name)
			}
		default:
			for i := 0; i < copies; i++ {
				p.entries = append(p.entries, poolEntry{name: item.Name, class: item.Class})
			}
		}
	}

	remaining := free - len(p.entries)
	if remaining < 0 {
		return nil, &GenError{
			Code: ErrCodeConfiguration,
			Message: fmt.Sprintf("pool has %d progression/useful items for %d fillable locations",
				len(p.entries), free),
		}
	}
	if remaining > len(fillerBag) {
		return nil, &GenError{
			Code: ErrCodeConfiguration,
			Message: fmt.Sprintf("need %d filler items to pad the pool but only %d are available",
				remaining, len(fillerBag)),
		}
	}

	for i := 0; i < remaining; i++ {
		idx := rng.Intn(len(fillerBag))
		p.entries = append(p.entries, poolEntry{name: fillerBag[idx], class: world.ClassFiller})
		fillerBag = append(fillerBag[:idx], fillerBag[idx+1:]...)
	}

	return p, nil
}

// Len returns the number of items left in the pool.
func (p *Pool) Len() int { return len(p.entries) }

// Empty reports whether the pool has been drained.
func (p *Pool) Empty() bool { return len(p.entries) == 0 }

// Draw removes and returns one item: uniformly random among the
// remaining progression items first, then among the rest. The
// progression-first policy front-loads the items that can open new
// spheres, shrinking the deadlock surface.
func (p *Pool) Draw(rng Source) string {
	var candidates []int
	for i, e := range p.entries {
		if e.class == world.ClassProgression {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		candidates = make([]int, len(p.entries))
		for i := range p.entries {
			candidates[i] = i
		}
	}
	idx := candidates[rng.Intn(len(candidates))]
	return p.removeAt(idx)
}

// Pick returns a random pool index without removing it. Used by
// deadlock recovery to propose swap candidates.
func (p *Pool) Pick(rng Source) int {
	return rng.Intn(len(p.entries))
}

// At returns the item name at the given index.
func (p *Pool) At(idx int) string { return p.entries[idx].name }

// Swap removes the item at idx and adds the evicted item back in its
// place in the pool.
func (p *Pool) Swap(idx int, evicted string, class world.Class) string {
	installed := p.entries[idx].name
	p.entries[idx] = poolEntry{name: evicted, class: class}
	return installed
}

// Names returns the remaining item names, in pool order.
func (p *Pool) Names() []string {
	out := make([]string, len(p.entries))
	for i, e := range p.entries {
		out[i] = e.name
	}
	return out
}

func (p *Pool) removeAt(idx int) string {
	name := p.entries[idx].name
	p.entries = append(p.entries[:idx], p.entries[idx+1:]...)
	return name
}
