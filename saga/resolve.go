package saga

import (
	"context"
)

// EffectKind names an effect variant for logs and test assertions.
func EffectKind(eff Effect) string {
	switch eff.(type) {
	case CallEffect:
		return "call"
	case PutEffect:
		return "put"
	case TakeEffect:
		return "take"
	case SelectEffect:
		return "select"
	case ForkEffect:
		return "fork"
	case AllEffect:
		return "all"
	case RaceEffect:
		return "race"
	default:
		return "unknown"
	}
}

// resolve resolves one effect, converting panics from user code reached
// during resolution — a Select selector, a Take pattern predicate, a store
// Dispatch — into typed failures so they route through the handler chain
// like any other resolution failure. Call callables carry their own guard
// in invoke.
func (rt *Runtime) resolve(ctx context.Context, eff Effect) (res result) {
	defer func() {
		if r := recover(); r != nil {
			res = result{err: effectPanic(r)}
		}
	}()
	return rt.dispatchEffect(ctx, eff)
}

// dispatchEffect routes one effect to its resolver. The switch is the
// exhaustive match over the sealed algebra; the default arm is reachable
// only for a value constructed outside this package's constructors.
func (rt *Runtime) dispatchEffect(ctx context.Context, eff Effect) result {
	switch e := eff.(type) {
	case CallEffect:
		return resultFrom(invoke(ctx, e))

	case PutEffect:
		if rt.store == nil {
			return result{err: ErrNoStoreConfigured}
		}
		rt.store.Dispatch(e.Action)
		if err := rt.queue.Enqueue(ctx, e.Action); err != nil {
			return result{err: err}
		}
		rt.metrics.actionEnqueued()
		return result{value: e.Action}

	case TakeEffect:
		return rt.take(ctx, e.Pattern)

	case SelectEffect:
		if rt.store == nil {
			return result{err: ErrNoStoreConfigured}
		}
		state := rt.store.GetState()
		if e.Selector != nil {
			state = e.Selector(state)
		}
		return result{value: state}

	case ForkEffect:
		return rt.fork(ctx, e)

	case AllEffect:
		return rt.resolveAll(ctx, e)

	case RaceEffect:
		return rt.resolveRace(ctx, e)

	default:
		return result{err: unknownEffect(eff)}
	}
}

// invoke runs a Call's callable, converting panics and failures into
// ErrCallFailure.
func invoke(ctx context.Context, e CallEffect) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			value, err = nil, callPanic(r)
		}
	}()
	value, err = e.Fn(ctx, e.Args...)
	if err != nil {
		return nil, callFailure(err)
	}
	return value, nil
}

// take drains the action channel until an action matches the pattern. Each
// take owns one queue position at a time: a dequeued action that does not
// match is consumed from this consumer's perspective, never requeued.
func (rt *Runtime) take(ctx context.Context, pattern Pattern) result {
	for {
		action, err := rt.queue.Dequeue(ctx)
		if err != nil {
			return result{err: err}
		}
		if matches(pattern, action) {
			return result{value: action}
		}
	}
}
