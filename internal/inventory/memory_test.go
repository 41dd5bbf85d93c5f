package inventory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"shopdesk-be/internal/apperr"
	"shopdesk-be/internal/product"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLedger_StatusTransitions(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()
	l.Put(1, 10, 2, product.StatusActive)

	stock, err := l.DecreaseStock(ctx, 1, 10, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, stock)

	_, status, _ := l.Snapshot(1, 10)
	assert.Equal(t, product.StatusOutOfStock, status)

	stock, err = l.IncreaseStock(ctx, 1, 10, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, stock)

	_, status, _ = l.Snapshot(1, 10)
	assert.Equal(t, product.StatusActive, status)
}

func TestMemoryLedger_InactiveUntouched(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()
	l.Put(1, 10, 1, product.StatusInactive)

	_, err := l.DecreaseStock(ctx, 1, 10, 1)
	require.NoError(t, err)
	_, status, _ := l.Snapshot(1, 10)
	assert.Equal(t, product.StatusInactive, status)

	_, err = l.IncreaseStock(ctx, 1, 10, 3)
	require.NoError(t, err)
	_, status, _ = l.Snapshot(1, 10)
	assert.Equal(t, product.StatusInactive, status)
}

func TestMemoryLedger_Errors(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()
	l.Put(1, 10, 1, product.StatusActive)

	_, err := l.DecreaseStock(ctx, 1, 10, 2)
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 1, stockErr.Available)

	stock, _, _ := l.Snapshot(1, 10)
	assert.Equal(t, 1, stock, "rejected decrement must not change stock")

	_, err = l.DecreaseStock(ctx, 2, 10, 1)
	assert.True(t, apperr.IsNotFound(err), "tenants do not share products")

	_, err = l.IncreaseStock(ctx, 1, 10, 0)
	assert.True(t, apperr.IsValidation(err))
}

func TestMemoryLedger_ConcurrentDecrease(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()
	const units = 7
	const callers = 50
	l.Put(1, 10, units, product.StatusActive)

	var wg sync.WaitGroup
	var succeeded, insufficient int32
	start := make(chan struct{})

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := l.DecreaseStock(ctx, 1, 10, 1)
			var stockErr *InsufficientStockError
			switch {
			case err == nil:
				atomic.AddInt32(&succeeded, 1)
			case errors.As(err, &stockErr):
				atomic.AddInt32(&insufficient, 1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	stock, status, _ := l.Snapshot(1, 10)
	assert.Equal(t, int32(units), succeeded)
	assert.Equal(t, int32(callers-units), insufficient)
	assert.Equal(t, 0, stock)
	assert.Equal(t, product.StatusOutOfStock, status)
}

func TestMemoryLedger_ConcurrentMixed(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()
	l.Put(1, 10, 0, product.StatusOutOfStock)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = l.IncreaseStock(ctx, 1, 10, 1)
		}()
		go func() {
			defer wg.Done()
			_, _ = l.DecreaseStock(ctx, 1, 10, 1)
		}()
	}
	wg.Wait()

	stock, _, _ := l.Snapshot(1, 10)
	assert.GreaterOrEqual(t, stock, 0)
	assert.LessOrEqual(t, stock, 100)
}
