package saga

import (
	"errors"
	"fmt"
)

var (
	// ErrNoStoreConfigured reports a Put or Select with no store attached.
	ErrNoStoreConfigured = errors.New("saga: no store configured")

	// ErrUnknownEffect reports a yielded value outside the effect algebra.
	ErrUnknownEffect = errors.New("saga: unknown effect")

	// ErrCallFailure wraps a failure raised by the callable behind a Call.
	ErrCallFailure = errors.New("saga: call failed")

	// ErrSagaFailure wraps a failure of the saga body itself, outside of
	// any effect resolution.
	ErrSagaFailure = errors.New("saga: procedure failed")

	// ErrRaceFailure wraps the failure of the winning race branch.
	ErrRaceFailure = errors.New("saga: race winner failed")

	// ErrEffectPanic wraps a panic raised by user code reached during
	// effect resolution outside of a Call, such as a Select selector, a
	// Take pattern predicate, or a store Dispatch.
	ErrEffectPanic = errors.New("saga: effect resolution panicked")
)

func callFailure(err error) error {
	return fmt.Errorf("%w: %w", ErrCallFailure, err)
}

func callPanic(r any) error {
	return fmt.Errorf("%w: panic: %v", ErrCallFailure, r)
}

func effectPanic(r any) error {
	return fmt.Errorf("%w: %v", ErrEffectPanic, r)
}

func sagaPanic(r any) error {
	return fmt.Errorf("%w: panic: %v", ErrSagaFailure, r)
}

func raceFailure(key string, err error) error {
	return fmt.Errorf("%w: branch %q: %w", ErrRaceFailure, key, err)
}

func unknownEffect(eff Effect) error {
	return fmt.Errorf("%w: %T", ErrUnknownEffect, eff)
}
