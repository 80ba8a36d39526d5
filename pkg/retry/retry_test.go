package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renovpro/devis-api/pkg/retry"
)

func TestDo_SuccesPremiereTentative(t *testing.T) {
	p := retry.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond}
	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_ReessaiePuisReussit(t *testing.T) {
	p := retry.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond}
	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transitoire")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_TentativesEpuisees(t *testing.T) {
	p := retry.Policy{MaxAttempts: 2, BaseDelay: time.Millisecond}
	boom := errors.New("définitif")
	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}

func TestDo_TimeoutDeTentativeNormalise(t *testing.T) {
	p := retry.Policy{MaxAttempts: 2, BaseDelay: time.Millisecond, Timeout: 10 * time.Millisecond}
	err := p.Do(context.Background(), func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	require.Error(t, err)
	assert.True(t, retry.IsTimeout(err))
}

func TestDo_AnnulationDuParent(t *testing.T) {
	p := retry.Policy{MaxAttempts: 5, BaseDelay: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := p.Do(ctx, func(ctx context.Context) error {
		calls++
		return errors.New("transitoire")
	})
	// L'annulation interrompt l'attente entre deux tentatives.
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
	// Le timeout de tentative n'est pas en cause.
	assert.False(t, retry.IsTimeout(err))
}

func TestDo_AnnulationParentPendantTentative(t *testing.T) {
	p := retry.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, Timeout: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())
	err := p.Do(ctx, func(ctx context.Context) error {
		cancel()
		<-ctx.Done()
		return ctx.Err()
	})
	// Annulation du parent, pas timeout de tentative : jamais requalifiée.
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, retry.IsTimeout(err))
}

func TestDo_MaxAttemptsMinimumUn(t *testing.T) {
	p := retry.Policy{}
	calls := 0
	_ = p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return errors.New("e")
	})
	assert.Equal(t, 1, calls)
}
