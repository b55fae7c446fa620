package order_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kode4food/larder/internal/order"
)

func TestKeyedMutexExclusive(t *testing.T) {
	m := order.NewKeyedMutex()
	ctx := context.Background()

	var mu sync.Mutex
	var active, peak, total int
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := m.Lock(ctx, "steps/r1")
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			active++
			peak = max(peak, active)
			total++
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, peak)
	assert.Equal(t, 16, total)
	assert.Equal(t, 0, m.Len())
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	m := order.NewKeyedMutex()
	ctx := context.Background()

	a, err := m.Lock(ctx, "steps/r1")
	require.NoError(t, err)
	b, err := m.Lock(ctx, "images/r1")
	require.NoError(t, err)
	assert.Equal(t, 2, m.Len())

	a()
	b()
	assert.Equal(t, 0, m.Len())
}

func TestKeyedMutexContextCancel(t *testing.T) {
	m := order.NewKeyedMutex()
	held, err := m.Lock(context.Background(), "steps/r1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(),
		10*time.Millisecond)
	defer cancel()

	_, err = m.Lock(ctx, "steps/r1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, m.Len())

	held()
	held()
	assert.Equal(t, 0, m.Len())
}
