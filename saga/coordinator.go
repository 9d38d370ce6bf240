package saga

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// resolveAll spawns one resolution goroutine per sub-effect. Every child
// writes its own index slot, so siblings never contend; the coordinator
// joins all children before reporting. Results are ordered by input index,
// never by completion order. On failure the lowest-index error is reported
// and the slots carry no guarantee.
func (rt *Runtime) resolveAll(ctx context.Context, e AllEffect) result {
	values := make([]any, len(e.Effects))
	errs := make([]error, len(e.Effects))

	wg := sync.WaitGroup{}
	for i, sub := range e.Effects {
		wg.Add(1)
		go func(i int, sub Effect) {
			defer wg.Done()
			res := rt.resolve(ctx, sub)
			values[i], errs[i] = res.value, res.err
		}(i, sub)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return result{err: err}
		}
	}
	return result{value: values}
}

// resolveRace spawns one resolution goroutine per entry. The first child to
// settle, success or failure, wins the buffered winner channel; the others
// are cancelled best-effort and their eventual results discarded. A winning
// failure surfaces as ErrRaceFailure.
func (rt *Runtime) resolveRace(ctx context.Context, e RaceEffect) result {
	if len(e.Effects) == 0 {
		return result{value: map[string]any{}}
	}

	raceCtx, cancelLosers := context.WithCancel(ctx)
	defer cancelLosers()

	type settled struct {
		key string
		res result
	}
	winnerCh := make(chan settled, 1)

	ready := sync.WaitGroup{}
	for key, sub := range e.Effects {
		ready.Add(1)
		go func(key string, sub Effect) {
			ready.Done()
			res := rt.resolve(raceCtx, sub)
			select {
			case winnerCh <- settled{key: key, res: res}:
			default:
				// lost the race; result discarded
			}
		}(key, sub)
	}
	ready.Wait()

	select {
	case winner := <-winnerCh:
		cancelLosers()
		if winner.res.err != nil {
			return result{err: raceFailure(winner.key, winner.res.err)}
		}
		return result{value: map[string]any{winner.key: winner.res.value}}
	case <-ctx.Done():
		return result{err: ctx.Err()}
	}
}

// fork spawns a detached child saga instance. The child is tracked by the
// run scope so Run joins it, but the parent resumes immediately with no
// value and the child's failures never abort the parent: they go through
// the handler chain and, if unhandled, are logged here.
//
// The child's context drops the parent's cancellation so that a fork
// inside a losing race branch, or a parent that completes first, cannot
// kill it.
func (rt *Runtime) fork(ctx context.Context, e ForkEffect) result {
	childCtx := context.WithoutCancel(ctx)

	rt.forks.Add(1)
	ready := make(chan struct{})
	go func() {
		defer rt.forks.Done()
		defer func() {
			if r := recover(); r != nil {
				rt.logger.Error("panic in forked saga", zap.Any("panic", r))
			}
		}()
		close(ready)
		if err := rt.runInstance(childCtx, e.Proc, e.Args); err != nil {
			rt.logger.Error("unhandled error in forked saga", zap.Error(err))
		}
	}()
	<-ready

	return result{value: nil}
}
