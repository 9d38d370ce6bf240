package saga_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/on-the-ground/saga_ive_go/saga"
	"github.com/on-the-ground/saga_ive_go/sagatest"
)

func sleepThenReturn(d time.Duration, v any) saga.CallFunc {
	return func(ctx context.Context, _ ...any) (any, error) {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-timer.C:
			return v, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func TestAll_PreservesInputOrderUnderReversedLatency(t *testing.T) {
	ctx := context.Background()
	rt := saga.New(saga.WithLogger(sagatest.NewLogger()))

	// The first effect is the slowest: completion order is the reverse of
	// input order, results must not be.
	var results []any
	err := rt.Run(ctx, func(ctx context.Context, y *saga.Yielder, _ ...any) error {
		v, err := y.Yield(ctx, saga.All(
			saga.Call(sleepThenReturn(60*time.Millisecond, 10)),
			saga.Call(sleepThenReturn(30*time.Millisecond, 20)),
			saga.Call(sleepThenReturn(5*time.Millisecond, 30)),
		))
		if err != nil {
			return err
		}
		results = v.([]any)
		return nil
	})

	require.NoError(t, err)
	require.Equal(t, []any{10, 20, 30}, results)
}

func TestAll_SubEffectFailureSurfaces(t *testing.T) {
	ctx := context.Background()
	rt := saga.New(saga.WithLogger(sagatest.NewLogger()))

	err := rt.Run(ctx, func(ctx context.Context, y *saga.Yielder, _ ...any) error {
		_, err := y.Yield(ctx, saga.All(
			saga.Call(sleepThenReturn(5*time.Millisecond, "ok")),
			saga.Call(func(ctx context.Context, _ ...any) (any, error) {
				return nil, errors.New("broken")
			}),
		))
		return err
	})
	require.ErrorIs(t, err, saga.ErrCallFailure)
}

func TestRace_FastestWinsAndLoserIsDiscarded(t *testing.T) {
	ctx := context.Background()
	rt := saga.New(saga.WithLogger(sagatest.NewLogger()))

	var outcome map[string]any
	err := rt.Run(ctx, func(ctx context.Context, y *saga.Yielder, _ ...any) error {
		v, err := y.Yield(ctx, saga.Race(map[string]saga.Effect{
			"slow": saga.Call(sleepThenReturn(100*time.Millisecond, "SLOW")),
			"fast": saga.Call(sleepThenReturn(0, "FAST")),
		}))
		if err != nil {
			return err
		}
		outcome = v.(map[string]any)
		return nil
	})

	require.NoError(t, err)
	require.Len(t, outcome, 1)
	require.Equal(t, "FAST", outcome["fast"])
}

func TestRace_WinningFailureSurfacesAsRaceFailure(t *testing.T) {
	ctx := context.Background()
	rt := saga.New(saga.WithLogger(sagatest.NewLogger()))

	err := rt.Run(ctx, func(ctx context.Context, y *saga.Yielder, _ ...any) error {
		_, err := y.Yield(ctx, saga.Race(map[string]saga.Effect{
			"slow": saga.Call(sleepThenReturn(100*time.Millisecond, "SLOW")),
			"bad": saga.Call(func(ctx context.Context, _ ...any) (any, error) {
				return nil, errors.New("immediate failure")
			}),
		}))
		return err
	})

	require.ErrorIs(t, err, saga.ErrRaceFailure)
	require.ErrorIs(t, err, saga.ErrCallFailure)
}

func TestRace_TimeoutViaDelay(t *testing.T) {
	ctx := context.Background()
	rt := saga.New(saga.WithLogger(sagatest.NewLogger()))

	var outcome map[string]any
	err := rt.Run(ctx, func(ctx context.Context, y *saga.Yielder, _ ...any) error {
		v, err := y.Yield(ctx, saga.Race(map[string]saga.Effect{
			"payment": saga.Call(sleepThenReturn(200*time.Millisecond, "paid")),
			"timeout": saga.Call(saga.Delay(10 * time.Millisecond)),
		}))
		if err != nil {
			return err
		}
		outcome = v.(map[string]any)
		return nil
	})

	require.NoError(t, err)
	require.Len(t, outcome, 1)
	require.Contains(t, outcome, "timeout")
}

func TestFork_ResumesImmediatelyWithNoValue(t *testing.T) {
	ctx := context.Background()
	rt := saga.New(saga.WithLogger(sagatest.NewLogger()))

	var childDone atomic.Bool
	child := func(ctx context.Context, y *saga.Yielder, _ ...any) error {
		time.Sleep(50 * time.Millisecond)
		childDone.Store(true)
		return nil
	}

	err := rt.Run(ctx, func(ctx context.Context, y *saga.Yielder, _ ...any) error {
		v, err := y.Yield(ctx, saga.Fork(child))
		if err != nil {
			return err
		}
		if v != nil {
			t.Error("expected Fork to resume with no value")
		}
		if childDone.Load() {
			t.Error("expected parent to resume before the child completed")
		}
		return nil
	})

	require.NoError(t, err)
	// Run joins detached children before returning.
	require.True(t, childDone.Load())
}

func TestFork_ChildArgsArePassedThrough(t *testing.T) {
	ctx := context.Background()
	rt := saga.New(saga.WithLogger(sagatest.NewLogger()))

	got := make(chan any, 1)
	child := func(ctx context.Context, y *saga.Yielder, args ...any) error {
		got <- args[0]
		return nil
	}

	err := rt.Run(ctx, func(ctx context.Context, y *saga.Yielder, _ ...any) error {
		_, err := y.Yield(ctx, saga.Fork(child, "hello"))
		return err
	})
	require.NoError(t, err)
	require.Equal(t, "hello", <-got)
}

func TestFork_ChildFailureDoesNotFailParent(t *testing.T) {
	ctx := context.Background()
	rt := saga.New(saga.WithLogger(sagatest.NewLogger()))

	boom := errors.New("child boom")
	seen := make(chan error, 1)
	rt.AddErrorHandler(func(err error) error {
		select {
		case seen <- err:
		default:
		}
		return nil
	})

	err := rt.Run(ctx, func(ctx context.Context, y *saga.Yielder, _ ...any) error {
		_, err := y.Yield(ctx, saga.Fork(func(ctx context.Context, y *saga.Yielder, _ ...any) error {
			return boom
		}))
		return err
	})

	require.NoError(t, err, "detached child failures must not surface through Run")
	require.ErrorIs(t, <-seen, boom)
}

func TestFork_SurvivesLosingRaceBranchCancellation(t *testing.T) {
	ctx := context.Background()
	rt := saga.New(saga.WithLogger(sagatest.NewLogger()))

	var childDone atomic.Bool
	child := func(ctx context.Context, y *saga.Yielder, _ ...any) error {
		timer := time.NewTimer(50 * time.Millisecond)
		defer timer.Stop()
		select {
		case <-timer.C:
			childDone.Store(true)
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	// The losing branch forks a child and then sleeps long enough to lose.
	// Cancelling the branch must not take the forked child down with it.
	err := rt.Run(ctx, func(ctx context.Context, y *saga.Yielder, _ ...any) error {
		_, err := y.Yield(ctx, saga.Race(map[string]saga.Effect{
			"loser": saga.All(
				saga.Fork(child),
				saga.Call(saga.Delay(200*time.Millisecond)),
			),
			"winner": saga.Call(saga.Delay(time.Millisecond)),
		}))
		return err
	})

	require.NoError(t, err)
	require.True(t, childDone.Load(), "forked child must outlive the cancelled race branch")
}
