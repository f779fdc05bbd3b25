package world

import (
	"fmt"

	"github.com/roach88/starfall/internal/rules"
)

// Apply produces a working copy of the world with the given settings
// folded in: frequency overrides on the item table, the starting
// companion locked in place, star locations locked vanilla when star
// shuffle is off, explicit locked placements installed, and the goal
// location's rule strengthened with the star requirement.
//
// The receiver is never mutated; each generation call gets its own
// working set.
func (w *World) Apply(s Settings) (*World, error) {
	out := &World{
		Regions:         w.Regions,
		Named:           w.Named,
		Items:           make([]Item, len(w.Items)),
		StarItems:       w.StarItems,
		Goal:            w.Goal,
		PartnerLocation: w.PartnerLocation,
		StarTag:         w.StarTag,
	}
	copy(out.Items, w.Items)

	out.Locations = make([]*Location, len(w.Locations))
	for i, loc := range w.Locations {
		cp := *loc
		cp.Tags = loc.Tags
		out.Locations[i] = &cp
	}

	for name, freq := range s.Frequencies {
		item := out.Item(name)
		if item == nil {
			return nil, fmt.Errorf("frequency override for unknown item %q", name)
		}
		if freq < 0 {
			return nil, fmt.Errorf("negative frequency override %d for item %q", freq, name)
		}
		item.Frequency = freq
	}

	if s.StartingPartner != "" {
		if out.PartnerLocation == "" {
			return nil, fmt.Errorf("starting partner %q set but dataset has no partner location", s.StartingPartner)
		}
		if err := out.lock(out.PartnerLocation, s.StartingPartner); err != nil {
			return nil, err
		}
	}

	if !s.StarShuffle && out.StarTag != "" {
		for _, loc := range out.LocationsByTag(out.StarTag) {
			if loc.Locked {
				continue
			}
			if loc.Vanilla == "" {
				return nil, fmt.Errorf("star location %q has no vanilla item to lock", loc.Name)
			}
			if err := out.lock(loc.Name, loc.Vanilla); err != nil {
				return nil, err
			}
		}
	}

	for locName, itemName := range s.Locked {
		if err := out.lock(locName, itemName); err != nil {
			return nil, err
		}
	}

	// Datasets without star items cannot satisfy a star count, so the
	// requirement only applies where the counter can advance.
	if s.GoalStars > 0 && out.Goal != "" && len(out.StarItems) > 0 {
		loc := out.Location(out.Goal)
		if loc == nil {
			return nil, fmt.Errorf("goal location %q not in dataset", out.Goal)
		}
		req := rules.HasStars{Count: s.GoalStars}
		if loc.Rule == nil {
			loc.Rule = req
		} else {
			loc.Rule = rules.All{loc.Rule, req}
		}
	}

	return out, nil
}

func (w *World) lock(locName, itemName string) error {
	loc := w.Location(locName)
	if loc == nil {
		return fmt.Errorf("locked placement references unknown location %q", locName)
	}
	if loc.Locked && loc.PlacedItem != itemName {
		return fmt.Errorf("location %q already locked to %q, cannot lock to %q",
			locName, loc.PlacedItem, itemName)
	}
	loc.Locked = true
	loc.PlacedItem = itemName
	return nil
}
