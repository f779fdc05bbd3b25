package rules

import "fmt"

// World is the read-only view a predicate evaluates against.
//
// internal/logic adapts a (GameState, Oracle) pair into this interface,
// keeping the rules package free of dependencies on the state tracker
// and the oracle.
type World interface {
	// ItemCount returns the number of collected copies of an item.
	ItemCount(name string) int

	// Stars returns the derived star-progress counter.
	Stars() int

	// CanReach reports whether the given target is reachable under the
	// current state. Implementations must guard against re-entrant
	// probes on the same target and answer false in that case.
	CanReach(target string, kind TargetKind) bool
}

// Predicate is a compiled, evaluable rule over world state.
type Predicate func(w World) bool

// Compiler turns expression trees into predicates.
//
// A compiler is bound to one named-predicate registry. Resolve the
// registry once (NewCompiler does this) and reuse the compiler for
// every region and location rule in the dataset.
type Compiler struct {
	named map[string]Predicate

	// pending holds the source registry while NewCompiler resolves it,
	// so forward references compile before their targets are stored.
	pending map[string]Expr
}

// NewCompiler builds a compiler over the given named predicate library.
//
// The registry is resolved eagerly: every entry is compiled, unknown
// references are reported, and reference cycles between named
// predicates are rejected with their path. Entries may reference each
// other freely as long as the reference graph stays acyclic.
func NewCompiler(registry map[string]Expr) (*Compiler, error) {
	c := &Compiler{
		named:   make(map[string]Predicate, len(registry)),
		pending: registry,
	}

	if err := checkRegistryCycles(registry); err != nil {
		return nil, err
	}

	// Cycle-free, so eval-time lookup closures always terminate.
	// Compile in two passes: reserve names first so mutual references
	// resolve regardless of map iteration order.
	for name, expr := range registry {
		if expr == nil {
			return nil, &CompileError{
				Code:    ErrCodeMalformed,
				Message: "named predicate has no expression",
				Name:    name,
			}
		}
	}
	for name, expr := range registry {
		p, err := c.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("named predicate %q: %w", name, err)
		}
		c.named[name] = p
	}

	return c, nil
}

// Compile turns an expression tree into a predicate.
//
// Malformed nodes fail with a descriptive CompileError. Compilation
// never silently defaults to "always true"; that policy applies only
// to absent rules, which callers handle before reaching the compiler.
func (c *Compiler) Compile(expr Expr) (Predicate, error) {
	switch e := expr.(type) {
	case nil:
		return nil, newMalformedError("nil expression node")

	case HasItem:
		if e.Name == "" {
			return nil, newMalformedError("has: empty item name")
		}
		if e.Count < 0 {
			return nil, newMalformedError("has: negative count %d for item %q", e.Count, e.Name)
		}
		if e.Name == StarsName {
			// Reserved name routes to the derived counter so that
			// has("stars", n) and stars(n) are the same predicate.
			return compileStars(e.Count), nil
		}
		name, count := e.Name, e.Count
		return func(w World) bool {
			return w.ItemCount(name) >= count
		}, nil

	case HasStars:
		if e.Count < 0 {
			return nil, newMalformedError("stars: negative count %d", e.Count)
		}
		return compileStars(e.Count), nil

	case Named:
		if e.Name == "" {
			return nil, newMalformedError("named: empty predicate name")
		}
		if _, ok := c.named[e.Name]; !ok {
			if !c.registered(e.Name) {
				return nil, &CompileError{
					Code:    ErrCodeUnresolved,
					Message: "no such named predicate",
					Name:    e.Name,
				}
			}
		}
		name := e.Name
		// Looked up at evaluation time so mutually referencing registry
		// entries can compile in any order.
		return func(w World) bool {
			return c.named[name](w)
		}, nil

	case CanReach:
		if e.Target == "" {
			return nil, newMalformedError("reach: empty target")
		}
		if !ValidTargetKinds[e.Kind] {
			return nil, newMalformedError("reach: invalid kind %q for target %q", e.Kind, e.Target)
		}
		target, kind := e.Target, e.Kind
		return func(w World) bool {
			return w.CanReach(target, kind)
		}, nil

	case All:
		children, err := c.compileChildren([]Expr(e))
		if err != nil {
			return nil, err
		}
		return func(w World) bool {
			for _, child := range children {
				if !child(w) {
					return false
				}
			}
			return true
		}, nil

	case Any:
		children, err := c.compileChildren([]Expr(e))
		if err != nil {
			return nil, err
		}
		return func(w World) bool {
			for _, child := range children {
				if child(w) {
					return true
				}
			}
			return false
		}, nil

	case Not:
		child, err := c.Compile(e.Expr)
		if err != nil {
			return nil, err
		}
		return func(w World) bool {
			return !child(w)
		}, nil

	default:
		return nil, newMalformedError("unknown expression variant %T", expr)
	}
}

func (c *Compiler) compileChildren(exprs []Expr) ([]Predicate, error) {
	children := make([]Predicate, len(exprs))
	for i, expr := range exprs {
		p, err := c.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("child %d: %w", i, err)
		}
		children[i] = p
	}
	return children, nil
}

// registered reports whether the name existed in the source registry,
// even if its predicate has not been stored yet during NewCompiler's
// second pass.
func (c *Compiler) registered(name string) bool {
	_, ok := c.pending[name]
	return ok
}

func compileStars(count int) Predicate {
	return func(w World) bool {
		return w.Stars() >= count
	}
}
