// Package saga provides an effect-driven saga interpreter for Go.
//
// A saga is a sequential procedure that describes its side effects as
// declarative Effect values instead of performing them. The runtime steps
// the procedure, resolves each yielded effect against live resources — a
// callable, a Store, the action channel — and resumes the procedure with
// the result, until the procedure completes or fails.
//
// # Effects
//
// The effect algebra is a closed set of seven descriptions:
//
//   - Call: invoke an external operation and await its result
//   - Put: dispatch an action to the store and onto the action channel
//   - Take: suspend until an action matching a pattern is dequeued
//   - Select: read the current store state, optionally projected
//   - Fork: start a detached child saga, resuming immediately
//   - All: resolve several effects concurrently, results in input order
//   - Race: resolve several effects concurrently, first settled wins
//
// Effects are pure data. Resolution is the runtime's job, which keeps saga
// bodies deterministic and testable; see the sagatest package for a harness
// that records yielded effects and feeds mocked results back in.
//
// # Concurrency model
//
// Each saga instance runs its body in its own goroutine and suspends at
// every Yield. Fork spawns a sibling instance under the same run scope: the
// child is never cancelled by its parent's completion, but Run does not
// return until every structurally tracked child has finished. Only Race
// cancels anything, and only its own losing branches.
//
// Example:
//
//	rt := saga.New(saga.WithStore(store))
//	err := rt.Run(ctx, func(ctx context.Context, y *saga.Yielder, _ ...any) error {
//	    if _, err := y.Yield(ctx, saga.Take(saga.OfType("ORDER_PLACED"))); err != nil {
//	        return err
//	    }
//	    _, err := y.Yield(ctx, saga.Put(saga.ActionOf("ORDER_CONFIRMED", nil)))
//	    return err
//	})
package saga
