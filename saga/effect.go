package saga

import (
	"context"
	"time"
)

// CallFunc is the shape of an operation invokable through a Call effect.
// The variadic args are the ones carried by the effect, forwarded verbatim.
type CallFunc func(ctx context.Context, args ...any) (any, error)

// Effect is the sealed union of everything a saga may yield.
// Only the constructors in this file produce values of it; resolution
// type-switches over the concrete variants and treats anything else as
// ErrUnknownEffect.
type Effect interface {
	effect()
}

// CallEffect invokes Fn with Args and resumes the saga with its result.
type CallEffect struct {
	Fn   CallFunc
	Args []any
}

func (CallEffect) effect() {}

// Call describes the invocation of an external operation. It is the only
// sanctioned escape hatch for arbitrary side effects.
func Call(fn CallFunc, args ...any) Effect {
	return CallEffect{Fn: fn, Args: args}
}

// PutEffect dispatches Action to the store and enqueues it on the action
// channel, resuming with the action itself.
type PutEffect struct {
	Action Action
}

func (PutEffect) effect() {}

// Put describes dispatching an action. Requires a store to be attached.
func Put(action Action) Effect {
	return PutEffect{Action: action}
}

// TakeEffect suspends the saga until an action matching Pattern is dequeued.
// A nil Pattern matches the first dequeued action.
type TakeEffect struct {
	Pattern Pattern
}

func (TakeEffect) effect() {}

// Take describes a blocking wait for a matching action.
func Take(pattern Pattern) Effect {
	return TakeEffect{Pattern: pattern}
}

// SelectEffect reads the store state. A nil Selector resumes with the raw
// state, otherwise with Selector's projection of it.
type SelectEffect struct {
	Selector func(state any) any
}

func (SelectEffect) effect() {}

// Select describes a read of the current store state. Requires a store.
func Select(selector func(state any) any) Effect {
	return SelectEffect{Selector: selector}
}

// ForkEffect starts Proc as a detached child saga and resumes immediately
// with no value.
type ForkEffect struct {
	Proc Saga
	Args []any
}

func (ForkEffect) effect() {}

// Fork describes spawning a detached child saga.
func Fork(proc Saga, args ...any) Effect {
	return ForkEffect{Proc: proc, Args: args}
}

// AllEffect resolves every sub-effect concurrently and resumes with a []any
// ordered by input index, never by completion order.
type AllEffect struct {
	Effects []Effect
}

func (AllEffect) effect() {}

// All describes concurrent fan-out over a sequence of effects.
func All(effects ...Effect) Effect {
	return AllEffect{Effects: effects}
}

// RaceEffect resolves every entry concurrently; the first to settle wins and
// the saga resumes with a single-entry map[string]any of the winner. Losing
// branches are cancelled best-effort.
type RaceEffect struct {
	Effects map[string]Effect
}

func (RaceEffect) effect() {}

// Race describes racing a keyed set of effects against each other.
func Race(effects map[string]Effect) Effect {
	return RaceEffect{Effects: effects}
}

// Delay returns a CallFunc that resumes with d after sleeping for it.
// There is no timeout primitive in the algebra; time-bounded behavior is
// expressed by racing an effect against a Call to a delay:
//
//	Race(map[string]Effect{
//	    "payment": Call(processPayment),
//	    "timeout": Call(Delay(10 * time.Second)),
//	})
func Delay(d time.Duration) CallFunc {
	return func(ctx context.Context, _ ...any) (any, error) {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-timer.C:
			return d, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
