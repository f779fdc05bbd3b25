// Package fill implements the sphere-based placement search and the
// independent validator.
//
// The search assigns every free pool item to a non-locked location such
// that the finished world is logically solvable: starting from an empty
// state, repeatedly collecting items at already-reachable locations
// eventually reaches every item-bearing location.
//
// STATE MACHINE:
//
//	INIT -> SWEEP -> FRONTIER_FILL -> (COMPLETE | DEADLOCK_RECOVERY -> SWEEP)
//
// with the whole machine retried from INIT up to a fixed attempt cap on
// recoverable failure, and FAILED surfaced when the cap is exhausted.
//
//   - INIT assigns locked items and checks that the pool exactly covers
//     the non-locked locations. A mismatch is a configuration error and
//     is never retried.
//   - SWEEP collects pre-placed locked items lazily, once their own
//     location becomes reachable under the evolving state. Guarded by a
//     collected set, so running it twice never double-collects.
//   - FRONTIER_FILL shuffles the reachable unfilled locations and draws
//     pool items progression-first, committing one item per location.
//   - DEADLOCK_RECOVERY fires when the frontier is empty but the pool
//     is not: a placed item is evicted and a pool item installed, with
//     an anti-circularity probe on a counterfactual state and a
//     preference for swaps that reopen the frontier.
//
// DETERMINISM:
//
// All randomness routes through the injectable Source, so a fixed seed
// reproduces an identical placement bit for bit. The single-threaded
// search owns its state, oracle and pool per call; nothing is shared
// across concurrent generations.
//
// The Validator re-simulates the finished, fixed placement from an
// empty state with no randomness, certifies 100% accessibility, and
// derives the sphere-by-sphere trace handed to the spoiler collaborator.
// A placement that fails validation is retried, never returned.
package fill
