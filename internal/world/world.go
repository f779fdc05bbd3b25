// Package world defines the static world model a generation runs
// against: regions, locations, the item table, and player settings.
//
// The model is data, not behavior. Rule compilation lives in
// internal/rules, reachability in internal/logic, and the placement
// search in internal/fill.
package world

import (
	"fmt"

	"github.com/roach88/starfall/internal/rules"
)

// Class is an item's progression classification.
type Class string

const (
	// ClassProgression marks items that may be required to advance
	// reachability.
	ClassProgression Class = "progression"

	// ClassUseful marks items that help but never gate progress.
	ClassUseful Class = "useful"

	// ClassFiller marks items with no logical effect.
	ClassFiller Class = "filler"
)

// ValidClasses defines the allowed item classes.
var ValidClasses = map[Class]bool{
	ClassProgression: true,
	ClassUseful:      true,
	ClassFiller:      true,
}

// Item is one entry in the item table.
type Item struct {
	Name string

	Class Class

	// Frequency is the number of copies in the free pool. Zero
	// excludes the item entirely.
	Frequency int
}

// Location is a single item-bearing spot in the world.
type Location struct {
	Name string

	// Tags reference regions whose rules all gate this location.
	Tags []string

	// Rule is an optional location-specific condition, ANDed with the
	// region rules. Nil means no extra condition.
	Rule rules.Expr

	// Locked marks a location whose item is fixed ahead of
	// randomization and excluded from free placement.
	Locked bool

	// PlacedItem is the assigned item name. For locked locations it is
	// set before the search begins; for the rest the placement engine
	// fills it in.
	PlacedItem string

	// Vanilla is the item the unrandomized game places here. Used when
	// settings keep a location class vanilla (e.g. star shuffle off).
	Vanilla string
}

// World is one loaded dataset: the immutable inputs to a generation.
type World struct {
	// Regions maps region tags to their reachability rules.
	Regions map[string]rules.Expr

	// Named is the library of composite predicates referenced by
	// Named expressions.
	Named map[string]rules.Expr

	// Locations in declaration order. Order is preserved so that a
	// fixed seed replays the same shuffle.
	Locations []*Location

	// Items is the item table.
	Items []Item

	// StarItems names the items that advance the derived star counter.
	StarItems []string

	// Goal is the designated terminal location for the can-finish
	// check. Empty disables the check.
	Goal string

	// PartnerLocation is where the starting companion is locked when
	// settings pick one. Empty disables the lock.
	PartnerLocation string

	// StarTag is the region tag marking star locations; used when star
	// shuffle is off to lock those locations to their vanilla items.
	StarTag string
}

// Settings carries per-generation player choices.
type Settings struct {
	// Seed drives all randomness. Zero means "pick one".
	Seed int64 `yaml:"seed"`

	// StartingPartner is locked into the companion location before the
	// search begins.
	StartingPartner string `yaml:"starting_partner"`

	// StarShuffle controls whether star items enter the free pool.
	// When false, star locations keep their vanilla items, locked.
	StarShuffle bool `yaml:"star_shuffle"`

	// GoalStars is the number of stars the goal rule requires.
	GoalStars int `yaml:"goal_stars"`

	// Frequencies overrides per-item pool frequency. Zero excludes an
	// item; N yields N copies.
	Frequencies map[string]int `yaml:"frequencies"`

	// Locked pre-places items: location name to item name. Locked
	// entries survive attempt resets.
	Locked map[string]string `yaml:"locked"`
}

// Validate checks dataset coherence before any rules are compiled.
func (w *World) Validate() error {
	seen := make(map[string]bool, len(w.Locations))
	for _, loc := range w.Locations {
		if loc.Name == "" {
			return fmt.Errorf("location with empty name")
		}
		if seen[loc.Name] {
			return fmt.Errorf("duplicate location %q", loc.Name)
		}
		seen[loc.Name] = true
		for _, tag := range loc.Tags {
			if _, ok := w.Regions[tag]; !ok {
				return fmt.Errorf("location %q references unknown region %q", loc.Name, tag)
			}
		}
		if loc.Locked && loc.PlacedItem == "" {
			return fmt.Errorf("locked location %q has no placed item", loc.Name)
		}
	}

	items := make(map[string]bool, len(w.Items))
	for _, item := range w.Items {
		if item.Name == "" {
			return fmt.Errorf("item with empty name")
		}
		if items[item.Name] {
			return fmt.Errorf("duplicate item %q", item.Name)
		}
		items[item.Name] = true
		if !ValidClasses[item.Class] {
			return fmt.Errorf("item %q has invalid class %q", item.Name, item.Class)
		}
		if item.Frequency < 0 {
			return fmt.Errorf("item %q has negative frequency %d", item.Name, item.Frequency)
		}
	}

	if w.Goal != "" && !seen[w.Goal] {
		return fmt.Errorf("goal location %q does not exist", w.Goal)
	}
	return nil
}

// Location returns the named location, or nil.
func (w *World) Location(name string) *Location {
	for _, loc := range w.Locations {
		if loc.Name == name {
			return loc
		}
	}
	return nil
}

// LocationsByTag returns all locations carrying the given region tag,
// in declaration order.
func (w *World) LocationsByTag(tag string) []*Location {
	var out []*Location
	for _, loc := range w.Locations {
		for _, t := range loc.Tags {
			if t == tag {
				out = append(out, loc)
				break
			}
		}
	}
	return out
}

// Item returns the named item table entry, or nil.
func (w *World) Item(name string) *Item {
	for i := range w.Items {
		if w.Items[i].Name == name {
			return &w.Items[i]
		}
	}
	return nil
}
