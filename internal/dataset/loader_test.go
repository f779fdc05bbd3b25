package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/starfall/internal/rules"
	"github.com/roach88/starfall/internal/world"
)

const sampleDataset = `
world: {
	goal:             "Castle Vault"
	partner_location: "Partner Bench"
	star_tag:         "shrine"
	star_items: ["diamond_star"]

	regions: {
		sewers: {has: {item: "boots"}}
		shrine: {all: []}
		castle: {stars: 1}
	}

	predicates: {
		can_smash: {any: [
			{has: {item: "hammer"}},
			{has: {item: "ultra_hammer"}},
		]}
	}

	items: [
		{name: "boots", class: "progression"},
		{name: "hammer", class: "progression"},
		{name: "diamond_star", class: "progression"},
		{name: "badge", class: "useful"},
		{name: "coin", class: "filler", frequency: 10},
	]

	locations: [
		{name: "Town Plaza"},
		{name: "Sewers Chest", tags: ["sewers"], rule: {named: "can_smash"}},
		{name: "Shrine Altar", tags: ["shrine"], vanilla: "diamond_star"},
		{name: "Castle Vault", tags: ["castle"]},
		{name: "Partner Bench"},
		{name: "Plot Pedestal", locked: true, item: "plot_mcguffin"},
	]
}
`

func TestLoadString_FullDataset(t *testing.T) {
	w, err := LoadString(sampleDataset)
	require.NoError(t, err)

	assert.Equal(t, "Castle Vault", w.Goal)
	assert.Equal(t, "Partner Bench", w.PartnerLocation)
	assert.Equal(t, "shrine", w.StarTag)
	assert.Equal(t, []string{"diamond_star"}, w.StarItems)

	require.Len(t, w.Regions, 3)
	assert.Equal(t, rules.HasItem{Name: "boots", Count: 1}, w.Regions["sewers"])
	assert.Equal(t, rules.HasStars{Count: 1}, w.Regions["castle"])

	require.Contains(t, w.Named, "can_smash")
	assert.Equal(t, rules.Any{
		rules.HasItem{Name: "hammer", Count: 1},
		rules.HasItem{Name: "ultra_hammer", Count: 1},
	}, w.Named["can_smash"])

	require.Len(t, w.Items, 5)
	assert.Equal(t, world.Item{Name: "coin", Class: world.ClassFiller, Frequency: 10}, w.Items[4])
	assert.Equal(t, 1, w.Items[0].Frequency, "frequency defaults to one")

	require.Len(t, w.Locations, 6)
	chest := w.Location("Sewers Chest")
	require.NotNil(t, chest)
	assert.Equal(t, []string{"sewers"}, chest.Tags)
	assert.Equal(t, rules.Named{Name: "can_smash"}, chest.Rule)

	pedestal := w.Location("Plot Pedestal")
	require.NotNil(t, pedestal)
	assert.True(t, pedestal.Locked)
	assert.Equal(t, "plot_mcguffin", pedestal.PlacedItem)

	assert.Equal(t, "diamond_star", w.Location("Shrine Altar").Vanilla)
}

func TestLoadString_ExpressionVariants(t *testing.T) {
	w, err := LoadString(`
world: {
	regions: {
		counted:  {has: {item: "letter", count: 3}}
		flight:   {named: "can_fly"}
		probe:    {reach: {target: "Docks", kind: "region"}}
		loca:     {reach: {target: "Far Door"}}
		negated:  {not: {stars: 5}}
		combined: {all: [{any: [{stars: 1}, {has: {item: "pass"}}]}]}
	}
	predicates: {can_fly: {has: {item: "wings"}}}
	items: [{name: "coin", class: "filler"}]
	locations: [{name: "Spot"}]
}
`)
	require.NoError(t, err)

	assert.Equal(t, rules.HasItem{Name: "letter", Count: 3}, w.Regions["counted"])
	assert.Equal(t, rules.Named{Name: "can_fly"}, w.Regions["flight"])
	assert.Equal(t, rules.CanReach{Target: "Docks", Kind: rules.TargetRegion}, w.Regions["probe"])
	assert.Equal(t, rules.CanReach{Target: "Far Door", Kind: rules.TargetLocation}, w.Regions["loca"],
		"reach kind defaults to location")
	assert.Equal(t, rules.Not{Expr: rules.HasStars{Count: 5}}, w.Regions["negated"])
	assert.Equal(t, rules.All{rules.Any{rules.HasStars{Count: 1}, rules.HasItem{Name: "pass", Count: 1}}},
		w.Regions["combined"])
}

func TestLoadString_QuotedFieldNames(t *testing.T) {
	w, err := LoadString(`
world: {
	regions: {"Hooktail Castle": {stars: 1}}
	items: [{name: "coin", class: "filler"}]
	locations: [{name: "Spot", tags: ["Hooktail Castle"]}]
}
`)
	require.NoError(t, err)
	assert.Contains(t, w.Regions, "Hooktail Castle")
}

func TestLoadString_ShapeErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		code string
	}{
		{
			"no world struct",
			`other: {}`,
			ErrCodeBadShape,
		},
		{
			"missing items",
			`world: {locations: [{name: "Spot"}]}`,
			ErrCodeBadShape,
		},
		{
			"missing locations",
			`world: {items: [{name: "coin", class: "filler"}]}`,
			ErrCodeBadShape,
		},
		{
			"bad expression",
			`world: {
				regions: {broken: {glorp: 1}}
				items: [{name: "coin", class: "filler"}]
				locations: [{name: "Spot"}]
			}`,
			ErrCodeBadExpr,
		},
		{
			"item class not a string",
			`world: {
				items: [{name: "coin", class: 3}]
				locations: [{name: "Spot"}]
			}`,
			ErrCodeBadShape,
		},
		{
			"invalid item class",
			`world: {
				items: [{name: "coin", class: "legendary"}]
				locations: [{name: "Spot"}]
			}`,
			ErrCodeBadShape,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadString(tc.src)
			require.Error(t, err)

			var le *LoadError
			require.ErrorAs(t, err, &le)
			assert.Equal(t, tc.code, le.Code)
		})
	}
}

func TestLoadString_CUESyntaxError(t *testing.T) {
	_, err := LoadString(`world: {{{`)
	require.Error(t, err)

	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodeBadCUE, le.Code)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "world.cue"), []byte(sampleDataset), 0o644))

	w, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, "Castle Vault", w.Goal)
	assert.Len(t, w.Locations, 6)
}

func TestLoadDir_Missing(t *testing.T) {
	_, err := LoadDir(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)

	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodeNotFound, le.Code)
}

func TestLoadDir_NoCUEFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("hi"), 0o644))

	_, err := LoadDir(dir)
	require.Error(t, err)

	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodeNoFiles, le.Code)
}
