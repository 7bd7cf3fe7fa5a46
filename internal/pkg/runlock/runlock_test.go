package runlock

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArena_TryAcquire(t *testing.T) {
	a := NewArena()

	release, ok := a.TryAcquire("run:1")
	require.True(t, ok)
	assert.True(t, a.Held("run:1"))

	_, ok = a.TryAcquire("run:1")
	assert.False(t, ok)

	// An unrelated id is independent.
	release2, ok := a.TryAcquire("run:2")
	require.True(t, ok)
	release2()

	release()
	assert.False(t, a.Held("run:1"))

	_, ok = a.TryAcquire("run:1")
	assert.True(t, ok)
}

func TestArena_ReleaseIsIdempotent(t *testing.T) {
	a := NewArena()

	release, ok := a.TryAcquire("run:1")
	require.True(t, ok)
	release()

	again, ok := a.TryAcquire("run:1")
	require.True(t, ok)

	// A stale double release must not free the new holder's lock.
	release()
	assert.True(t, a.Held("run:1"))
	again()
}

func TestArena_ConcurrentAcquire(t *testing.T) {
	a := NewArena()

	const attempts = 50
	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := a.TryAcquire("run:1"); ok {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, winners)
}

func TestGuard_SharedHoldersCoexist(t *testing.T) {
	g := NewGuard()

	r1, ok := g.TryShared()
	require.True(t, ok)
	r2, ok := g.TryShared()
	require.True(t, ok)

	_, ok = g.TryExclusive()
	assert.False(t, ok)

	r1()
	_, ok = g.TryExclusive()
	assert.False(t, ok)

	r2()
	r3, ok := g.TryExclusive()
	assert.True(t, ok)
	r3()
}

func TestGuard_ExclusiveBlocksShared(t *testing.T) {
	g := NewGuard()

	release, ok := g.TryExclusive()
	require.True(t, ok)

	_, ok = g.TryShared()
	assert.False(t, ok)
	_, ok = g.TryExclusive()
	assert.False(t, ok)

	release()
	r, ok := g.TryShared()
	assert.True(t, ok)
	r()
}
