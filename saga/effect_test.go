package saga_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/on-the-ground/saga_ive_go/saga"
)

func TestPattern_OfType(t *testing.T) {
	p := saga.OfType("INCREMENT")
	require.True(t, p.Matches(saga.ActionOf("INCREMENT", nil)))
	require.False(t, p.Matches(saga.ActionOf("DECREMENT", nil)))
}

func TestPattern_OfKind(t *testing.T) {
	p := saga.OfKind[customAction]()
	require.True(t, p.Matches(customAction{n: 1}))
	// Same discriminator, different concrete type.
	require.False(t, p.Matches(saga.ActionOf("CUSTOM", nil)))
}

func TestPattern_Matching(t *testing.T) {
	p := saga.Matching(func(a saga.Action) bool {
		ga, ok := a.(saga.GenericAction)
		return ok && ga.Payload == 42
	})
	require.True(t, p.Matches(saga.ActionOf("X", 42)))
	require.False(t, p.Matches(saga.ActionOf("X", 41)))
}

func TestEffectKind_NamesEveryVariant(t *testing.T) {
	kinds := map[string]saga.Effect{
		"call":   saga.Call(nil),
		"put":    saga.Put(saga.ActionOf("A", nil)),
		"take":   saga.Take(nil),
		"select": saga.Select(nil),
		"fork":   saga.Fork(nil),
		"all":    saga.All(),
		"race":   saga.Race(nil),
	}
	for want, eff := range kinds {
		require.Equal(t, want, saga.EffectKind(eff))
	}
}

func TestDelay_ReturnsAfterDuration(t *testing.T) {
	ctx := context.Background()
	started := time.Now()
	v, err := saga.Delay(20*time.Millisecond)(ctx)
	require.NoError(t, err)
	require.Equal(t, 20*time.Millisecond, v)
	require.GreaterOrEqual(t, time.Since(started), 20*time.Millisecond)
}

func TestDelay_AbortsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := saga.Delay(time.Second)(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
