package rules

import "sort"

// checkRegistryCycles rejects named-predicate libraries whose reference
// graph contains a cycle.
//
// The walk is a three-color depth-first search over Named references,
// visiting roots in sorted order so the reported path is stable across
// runs. CanReach references are not edges here; those are guarded at
// evaluation time by the oracle.
func checkRegistryCycles(registry map[string]Expr) error {
	const (
		white = iota // unvisited
		gray         // on the current path
		black        // fully explored
	)

	color := make(map[string]int, len(registry))

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)

	var path []string

	var visit func(name string) *CompileError
	visit = func(name string) *CompileError {
		expr, ok := registry[name]
		if !ok {
			return &CompileError{
				Code:    ErrCodeUnresolved,
				Message: "no such named predicate",
				Name:    name,
			}
		}

		color[name] = gray
		path = append(path, name)

		if expr != nil {
			for _, ref := range expr.namedRefs(nil) {
				switch color[ref] {
				case black:
					continue
				case gray:
					// Close the loop in the reported path.
					return &CompileError{
						Code:    ErrCodeCycle,
						Message: "named predicates reference each other in a loop",
						Name:    ref,
						Cycle:   append(cyclePath(path, ref), ref),
					}
				default:
					if err := visit(ref); err != nil {
						return err
					}
				}
			}
		}

		path = path[:len(path)-1]
		color[name] = black
		return nil
	}

	for _, name := range names {
		if color[name] == white {
			if err := visit(name); err != nil {
				return err
			}
		}
	}
	return nil
}

// cyclePath trims the DFS path to the segment starting at the node that
// closed the cycle.
func cyclePath(path []string, start string) []string {
	for i, name := range path {
		if name == start {
			out := make([]string, len(path)-i)
			copy(out, path[i:])
			return out
		}
	}
	out := make([]string, len(path))
	copy(out, path)
	return out
}
