package rules

import (
	"fmt"
	"strings"
)

// StarsName is the reserved item name routed to the derived star
// counter. HasItem on this name and HasStars are equivalent.
const StarsName = "stars"

// TargetKind identifies what a CanReach expression points at.
type TargetKind string

const (
	// TargetLocation resolves the target as a location name.
	TargetLocation TargetKind = "location"

	// TargetRegion resolves the target as a region tag.
	TargetRegion TargetKind = "region"
)

// ValidTargetKinds defines the allowed CanReach kinds.
var ValidTargetKinds = map[TargetKind]bool{
	TargetLocation: true,
	TargetRegion:   true,
}

// Expr is a node in a rule expression tree.
//
// Trees are immutable once handed to the compiler. The concrete
// variants are HasItem, HasStars, Named, CanReach, All, Any and Not.
type Expr interface {
	// String renders the expression for diagnostics and error paths.
	String() string

	// namedRefs appends the named-predicate references reachable from
	// this node without crossing a CanReach boundary. Used for
	// compile-time cycle analysis.
	namedRefs(dst []string) []string
}

// HasItem is true when the state holds at least Count copies of Name.
// The reserved name "stars" routes to the derived star counter.
type HasItem struct {
	Name  string
	Count int
}

// HasStars is true when the derived star counter is at least Count.
type HasStars struct {
	Count int
}

// Named references a composite predicate in the registry by name.
type Named struct {
	Name string
}

// CanReach asks the accessibility oracle whether another target is
// currently reachable.
type CanReach struct {
	Target string
	Kind   TargetKind
}

// All is true when every child is true. Short-circuits left to right.
// An empty All is true.
type All []Expr

// Any is true when at least one child is true. Short-circuits left to
// right. An empty Any is false.
type Any []Expr

// Not negates its child.
type Not struct {
	Expr Expr
}

func (e HasItem) String() string {
	return fmt.Sprintf("has(%s, %d)", e.Name, e.Count)
}

func (e HasStars) String() string {
	return fmt.Sprintf("stars(%d)", e.Count)
}

func (e Named) String() string {
	return fmt.Sprintf("named(%s)", e.Name)
}

func (e CanReach) String() string {
	return fmt.Sprintf("reach(%s, %s)", e.Target, e.Kind)
}

func (e All) String() string {
	return combinatorString("all", e)
}

func (e Any) String() string {
	return combinatorString("any", e)
}

func (e Not) String() string {
	if e.Expr == nil {
		return "not(<nil>)"
	}
	return fmt.Sprintf("not(%s)", e.Expr)
}

func combinatorString(name string, children []Expr) string {
	parts := make([]string, len(children))
	for i, c := range children {
		if c == nil {
			parts[i] = "<nil>"
			continue
		}
		parts[i] = c.String()
	}
	return fmt.Sprintf("%s(%s)", name, strings.Join(parts, ", "))
}

func (e HasItem) namedRefs(dst []string) []string  { return dst }
func (e HasStars) namedRefs(dst []string) []string { return dst }

func (e Named) namedRefs(dst []string) []string {
	return append(dst, e.Name)
}

// CanReach is a boundary: the referenced target's rules are evaluated
// through the oracle, which carries its own re-entrancy guard.
func (e CanReach) namedRefs(dst []string) []string { return dst }

func (e All) namedRefs(dst []string) []string {
	for _, c := range e {
		if c != nil {
			dst = c.namedRefs(dst)
		}
	}
	return dst
}

func (e Any) namedRefs(dst []string) []string {
	for _, c := range e {
		if c != nil {
			dst = c.namedRefs(dst)
		}
	}
	return dst
}

func (e Not) namedRefs(dst []string) []string {
	if e.Expr == nil {
		return dst
	}
	return e.Expr.namedRefs(dst)
}
