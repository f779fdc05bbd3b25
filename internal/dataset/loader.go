// Package dataset loads world datasets and player settings.
//
// World datasets are CUE files: regions, the named predicate library,
// the location table, the item table, and a few scalars (goal, star
// set). Player settings are YAML files, matching the original player
// file format. Loading is plain parsing and shape checking; semantic
// validation belongs to world.Validate and the rule compiler.
package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/starfall/internal/rules"
	"github.com/roach88/starfall/internal/world"
)

// Error codes for dataset loading.
const (
	ErrCodeNotFound = "DATASET_NOT_FOUND"
	ErrCodeNoFiles  = "NO_CUE_FILES"
	ErrCodeBadCUE   = "INVALID_CUE"
	ErrCodeBadExpr  = "INVALID_EXPRESSION"
	ErrCodeBadShape = "INVALID_SHAPE"
)

// LoadError represents an error that occurred during dataset loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadDir loads a world dataset from every CUE file in a directory.
func LoadDir(dir string) (*world.World, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("dataset directory not found: %s", dir)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing dataset directory: %v", err)}
	}
	if !info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	cueFiles, err := findCUEFiles(dir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(cueFiles) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	ctx := cuecontext.New()
	cfg := &load.Config{Dir: dir}
	instances := load.Instances([]string{"."}, cfg)
	if len(instances) == 0 {
		return nil, &LoadError{Code: ErrCodeBadCUE, Message: "no CUE instances loaded"}
	}
	if instances[0].Err != nil {
		return nil, &LoadError{Code: ErrCodeBadCUE, Message: instances[0].Err.Error()}
	}

	v := ctx.BuildInstance(instances[0])
	if err := v.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeBadCUE, Message: err.Error()}
	}
	return Parse(v)
}

// LoadString parses a dataset from inline CUE source. Used by tests
// and by callers that embed their dataset.
func LoadString(src string) (*world.World, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(src)
	if err := v.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeBadCUE, Message: err.Error()}
	}
	return Parse(v)
}

// Parse converts a CUE value holding a top-level "world" struct into
// the world model.
func Parse(root cue.Value) (*world.World, error) {
	v := root.LookupPath(cue.ParsePath("world"))
	if !v.Exists() {
		return nil, &LoadError{Code: ErrCodeBadShape, Message: `dataset has no top-level "world" struct`, Pos: root.Pos()}
	}

	w := &world.World{
		Regions: make(map[string]rules.Expr),
		Named:   make(map[string]rules.Expr),
	}

	var err error
	if w.Goal, err = optionalString(v, "goal"); err != nil {
		return nil, err
	}
	if w.PartnerLocation, err = optionalString(v, "partner_location"); err != nil {
		return nil, err
	}
	if w.StarTag, err = optionalString(v, "star_tag"); err != nil {
		return nil, err
	}
	if w.StarItems, err = optionalStrings(v, "star_items"); err != nil {
		return nil, err
	}

	if regions := v.LookupPath(cue.ParsePath("regions")); regions.Exists() {
		iter, err := regions.Fields()
		if err != nil {
			return nil, &LoadError{Code: ErrCodeBadShape, Message: "regions must be a struct of expressions", Pos: regions.Pos()}
		}
		for iter.Next() {
			tag := fieldName(iter.Selector())
			expr, err := parseExpr(iter.Value())
			if err != nil {
				return nil, fmt.Errorf("region %q: %w", tag, err)
			}
			w.Regions[tag] = expr
		}
	}

	if preds := v.LookupPath(cue.ParsePath("predicates")); preds.Exists() {
		iter, err := preds.Fields()
		if err != nil {
			return nil, &LoadError{Code: ErrCodeBadShape, Message: "predicates must be a struct of expressions", Pos: preds.Pos()}
		}
		for iter.Next() {
			name := fieldName(iter.Selector())
			expr, err := parseExpr(iter.Value())
			if err != nil {
				return nil, fmt.Errorf("predicate %q: %w", name, err)
			}
			w.Named[name] = expr
		}
	}

	if err := parseItems(v, w); err != nil {
		return nil, err
	}
	if err := parseLocations(v, w); err != nil {
		return nil, err
	}

	if err := w.Validate(); err != nil {
		return nil, &LoadError{Code: ErrCodeBadShape, Message: err.Error(), Pos: v.Pos()}
	}
	return w, nil
}

func parseItems(v cue.Value, w *world.World) error {
	items := v.LookupPath(cue.ParsePath("items"))
	if !items.Exists() {
		return &LoadError{Code: ErrCodeBadShape, Message: "dataset has no items list", Pos: v.Pos()}
	}
	iter, err := items.List()
	if err != nil {
		return &LoadError{Code: ErrCodeBadShape, Message: "items must be a list", Pos: items.Pos()}
	}
	for iter.Next() {
		iv := iter.Value()
		name, err := iv.LookupPath(cue.ParsePath("name")).String()
		if err != nil {
			return &LoadError{Code: ErrCodeBadShape, Message: "item name must be a string", Pos: iv.Pos()}
		}
		classStr, err := iv.LookupPath(cue.ParsePath("class")).String()
		if err != nil {
			return &LoadError{Code: ErrCodeBadShape, Message: fmt.Sprintf("item %q: class must be a string", name), Pos: iv.Pos()}
		}
		freq := int64(1)
		if freqVal := iv.LookupPath(cue.ParsePath("frequency")); freqVal.Exists() {
			freq, err = freqVal.Int64()
			if err != nil {
				return &LoadError{Code: ErrCodeBadShape, Message: fmt.Sprintf("item %q: frequency must be an integer", name), Pos: freqVal.Pos()}
			}
		}
		w.Items = append(w.Items, world.Item{
			Name:      name,
			Class:     world.Class(classStr),
			Frequency: int(freq),
		})
	}
	return nil
}

func parseLocations(v cue.Value, w *world.World) error {
	locs := v.LookupPath(cue.ParsePath("locations"))
	if !locs.Exists() {
		return &LoadError{Code: ErrCodeBadShape, Message: "dataset has no locations list", Pos: v.Pos()}
	}
	iter, err := locs.List()
	if err != nil {
		return &LoadError{Code: ErrCodeBadShape, Message: "locations must be a list", Pos: locs.Pos()}
	}
	for iter.Next() {
		lv := iter.Value()
		name, err := lv.LookupPath(cue.ParsePath("name")).String()
		if err != nil {
			return &LoadError{Code: ErrCodeBadShape, Message: "location name must be a string", Pos: lv.Pos()}
		}
		loc := &world.Location{Name: name}

		if loc.Tags, err = optionalStrings(lv, "tags"); err != nil {
			return fmt.Errorf("location %q: %w", name, err)
		}
		if ruleVal := lv.LookupPath(cue.ParsePath("rule")); ruleVal.Exists() {
			loc.Rule, err = parseExpr(ruleVal)
			if err != nil {
				return fmt.Errorf("location %q: %w", name, err)
			}
		}
		if lockedVal := lv.LookupPath(cue.ParsePath("locked")); lockedVal.Exists() {
			loc.Locked, err = lockedVal.Bool()
			if err != nil {
				return &LoadError{Code: ErrCodeBadShape, Message: fmt.Sprintf("location %q: locked must be a bool", name), Pos: lockedVal.Pos()}
			}
		}
		if loc.PlacedItem, err = optionalString(lv, "item"); err != nil {
			return fmt.Errorf("location %q: %w", name, err)
		}
		if loc.Vanilla, err = optionalString(lv, "vanilla"); err != nil {
			return fmt.Errorf("location %q: %w", name, err)
		}
		w.Locations = append(w.Locations, loc)
	}
	return nil
}

// fieldName extracts a struct field's label whether it was written as
// an identifier or a quoted string.
func fieldName(sel cue.Selector) string {
	if sel.LabelType() == cue.StringLabel {
		return sel.Unquoted()
	}
	return sel.String()
}

func optionalString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", &LoadError{Code: ErrCodeBadShape, Message: fmt.Sprintf("%s must be a string", field), Pos: fv.Pos()}
	}
	return s, nil
}

func optionalStrings(v cue.Value, field string) ([]string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return nil, nil
	}
	iter, err := fv.List()
	if err != nil {
		return nil, &LoadError{Code: ErrCodeBadShape, Message: fmt.Sprintf("%s must be a list of strings", field), Pos: fv.Pos()}
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, &LoadError{Code: ErrCodeBadShape, Message: fmt.Sprintf("%s entries must be strings", field), Pos: iter.Value().Pos()}
		}
		out = append(out, s)
	}
	return out, nil
}

// findCUEFiles returns the CUE files directly in dir, sorted for
// deterministic load order.
func findCUEFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".cue") {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}
