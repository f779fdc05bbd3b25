// Package rules implements the accessibility rule grammar and its compiler.
//
// Rules are declarative expression trees describing when a region or
// location is reachable: item-count thresholds, the aggregate star
// counter, references into a library of named composite predicates,
// reachability of other targets, and boolean combinators.
//
// COMPILATION MODEL:
//
// Expressions are compiled once per dataset into Predicate closures by
// variant dispatch. There is no code generation from rule text - the
// tree is walked at compile time and evaluated by closure composition.
//
// Error policy is split cleanly between the two phases:
//   - Compile time fails LOUD: a malformed node or an unresolvable
//     named-predicate reference is a descriptive error, never a silent
//     "always true" default.
//   - Evaluation time fails CLOSED: a predicate that cannot be decided
//     (for example a re-entrant CanReach probe) answers false, meaning
//     "not accessible", and the caller logs and continues.
//
// NAMED PREDICATES:
//
// The named predicate library is a name-keyed registry resolved at
// compile time. References between named predicates must form a DAG;
// cycles (direct or mutual) are detected with a depth-first walk and
// rejected with the offending path. Reachability cycles between
// locations are a separate concern, guarded at evaluation time by the
// oracle's in-flight set.
package rules
