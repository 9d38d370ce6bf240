package saga

import (
	"context"
)

// Saga is a saga procedure: a sequential body that describes its side
// effects by yielding Effect values through y. The args are the ones given
// to Run or carried by a Fork effect.
type Saga func(ctx context.Context, y *Yielder, args ...any) error

// result carries one resolved effect back into a suspended saga body.
type result struct {
	value any
	err   error
}

func resultFrom(value any, err error) result {
	return result{value: value, err: err}
}

// effectMsg is one suspension of a saga body: the yielded effect plus the
// channel its resolution is resumed on. The resume channel is buffered so
// the interpreter loop never blocks on a body that has already given up.
type effectMsg struct {
	eff      Effect
	resumeCh chan result
}

// Yielder is the suspension point handed to a saga body. It is owned by
// exactly one saga instance and must not be shared across instances.
type Yielder struct {
	effCh chan effectMsg
}

// Yield suspends the saga on eff and blocks until the interpreter resumes
// it with the effect's result.
func (y *Yielder) Yield(ctx context.Context, eff Effect) (any, error) {
	resumeCh := make(chan result, 1)
	select {
	case y.effCh <- effectMsg{eff: eff, resumeCh: resumeCh}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case res := <-resumeCh:
		return res.value, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Interpret steps proc to completion, resolving every yielded effect with
// resolve. It is the bare interpreter loop: proc's body runs in its own
// goroutine and suspends on each Yield; Interpret receives the effect,
// resolves it, resumes the body, and repeats until the body returns.
//
// The runtime drives instances through this loop with its live resolver;
// harnesses such as sagatest drive it with a mocked one.
func Interpret(
	ctx context.Context,
	proc Saga,
	resolve func(context.Context, Effect) (any, error),
	args ...any,
) error {
	y := &Yielder{effCh: make(chan effectMsg)}
	bodyErr := make(chan error, 1)
	ready := make(chan struct{})

	go func() {
		var err error
		defer func() {
			if r := recover(); r != nil {
				err = sagaPanic(r)
			}
			bodyErr <- err
			close(y.effCh)
		}()
		close(ready)
		err = proc(ctx, y, args...)
	}()
	<-ready

	for msg := range y.effCh {
		msg.resumeCh <- resultFrom(resolve(ctx, msg.eff))
	}
	return <-bodyErr
}

// Sequence builds a saga that yields each effect in order, discarding the
// intermediate results. It normalizes the common linear case where a saga
// is nothing but a fixed series of effects.
func Sequence(effects ...Effect) Saga {
	return func(ctx context.Context, y *Yielder, _ ...any) error {
		for _, eff := range effects {
			if _, err := y.Yield(ctx, eff); err != nil {
				return err
			}
		}
		return nil
	}
}
