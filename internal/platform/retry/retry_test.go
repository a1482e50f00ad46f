package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("transient")

func isTransient(err error) bool { return errors.Is(err, errTransient) }

func Test_Do_SucceedsAfterRetryableFailures(t *testing.T) {
	// arrange
	calls := 0
	var retried []int
	fn := func(context.Context) error {
		calls++
		if calls < 3 {
			return errTransient
		}
		return nil
	}

	// act
	err := Do(context.Background(), fn,
		WithBaseDelay(time.Millisecond),
		WithJitterFactor(0),
		WithRetryIf(isTransient),
		OnRetry(func(attempt int, _ error) { retried = append(retried, attempt) }),
	)

	// assert
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, retried)
}

func Test_Do_FailsFastOnPermanentError(t *testing.T) {
	permanent := errors.New("permanent")
	calls := 0

	err := Do(context.Background(), func(context.Context) error {
		calls++
		return permanent
	}, WithRetryIf(isTransient))

	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func Test_Do_StopsAtMaxAttempts(t *testing.T) {
	calls := 0

	err := Do(context.Background(), func(context.Context) error {
		calls++
		return errTransient
	}, WithMaxAttempts(3), WithBaseDelay(time.Millisecond), WithRetryIf(isTransient))

	assert.ErrorIs(t, err, errTransient)
	assert.Equal(t, 3, calls)
}

func Test_Do_WithoutPredicateNeverRetries(t *testing.T) {
	calls := 0

	err := Do(context.Background(), func(context.Context) error {
		calls++
		return errTransient
	})

	assert.ErrorIs(t, err, errTransient)
	assert.Equal(t, 1, calls)
}

func Test_Do_HonoursContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	err := Do(ctx, func(context.Context) error {
		calls++
		cancel()
		return errTransient
	}, WithBaseDelay(time.Second), WithRetryIf(isTransient))

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func Test_Do_RejectsInvalidOptions(t *testing.T) {
	noop := func(context.Context) error { return nil }

	assert.ErrorIs(t, Do(context.Background(), noop, WithMaxAttempts(0)), ErrInvalidMaxAttempts)
	assert.ErrorIs(t, Do(context.Background(), noop, WithBaseDelay(-time.Second)), ErrNegativeBaseDelay)
	assert.ErrorIs(t, Do(context.Background(), noop, WithJitterFactor(1.5)), ErrInvalidJitterFactor)
	assert.ErrorIs(t, Do(context.Background(), noop, WithRetryIf(nil)), ErrNilPredicate)
}
