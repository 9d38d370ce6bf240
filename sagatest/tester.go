// Package sagatest provides a harness for testing saga procedures without a
// live runtime. A Tester drives the interpreter loop with a user-supplied
// mock resolver, recording every yielded effect and every result fed back
// in, so a test can assert on the declared effects instead of their
// execution.
package sagatest

import (
	"context"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/on-the-ground/saga_ive_go/saga"
)

// Resolver supplies the mocked result for one yielded effect.
type Resolver func(saga.Effect) (any, error)

// Tester runs a saga against a mock resolver, recording the trace.
type Tester struct {
	resolve Resolver

	mu      sync.Mutex
	effects []saga.Effect
	results []any
}

// New returns a Tester that answers every yielded effect with resolve.
// A nil resolve resumes every effect with a nil value.
func New(resolve Resolver) *Tester {
	if resolve == nil {
		resolve = func(saga.Effect) (any, error) { return nil, nil }
	}
	return &Tester{resolve: resolve}
}

// Run interprets proc, resolving each effect through the mock resolver.
// The recorded trace accumulates across calls.
func (t *Tester) Run(ctx context.Context, proc saga.Saga, args ...any) error {
	return saga.Interpret(ctx, proc, func(_ context.Context, eff saga.Effect) (any, error) {
		value, err := t.resolve(eff)
		t.mu.Lock()
		t.effects = append(t.effects, eff)
		t.results = append(t.results, value)
		t.mu.Unlock()
		return value, err
	}, args...)
}

// Effects returns the yielded effects in yield order.
func (t *Tester) Effects() []saga.Effect {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]saga.Effect, len(t.effects))
	copy(out, t.effects)
	return out
}

// Results returns the values fed back into the saga, in yield order.
func (t *Tester) Results() []any {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]any, len(t.results))
	copy(out, t.results)
	return out
}

// EffectKinds returns the variant name of each yielded effect, in order.
// Convenient for shape assertions:
//
//	require.Equal(t, []string{"call", "all", "race", "put"}, tester.EffectKinds())
func (t *Tester) EffectKinds() []string {
	effects := t.Effects()
	kinds := make([]string, len(effects))
	for i, eff := range effects {
		kinds[i] = saga.EffectKind(eff)
	}
	return kinds
}

// NewLogger returns a console zap logger at debug level for use in tests.
func NewLogger() *zap.Logger {
	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.Lock(os.Stdout),
		zap.DebugLevel,
	)
	return zap.New(consoleCore)
}
