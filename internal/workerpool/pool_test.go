package workerpool

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_PreservesOrderPerKey(t *testing.T) {
	p := New(4)
	defer p.Stop()

	var mu sync.Mutex
	var seen []int
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		i := i
		p.Dispatch("BTC-USD", func() {
			defer wg.Done()
			mu.Lock()
			seen = append(seen, i)
			mu.Unlock()
		})
	}

	waitOrTimeout(t, &wg, time.Second)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 20)
	for i, v := range seen {
		assert.Equal(t, i, v)
	}
}

func TestPool_DifferentKeysBothRun(t *testing.T) {
	p := New(4)
	defer p.Stop()

	var wg sync.WaitGroup
	wg.Add(2)
	var mu sync.Mutex
	ran := map[string]bool{}

	p.Dispatch("BTC-USD", func() {
		mu.Lock()
		ran["BTC-USD"] = true
		mu.Unlock()
		wg.Done()
	})
	p.Dispatch("ETH-USD", func() {
		mu.Lock()
		ran["ETH-USD"] = true
		mu.Unlock()
		wg.Done()
	})

	waitOrTimeout(t, &wg, time.Second)

	mu.Lock()
	defer mu.Unlock()
	assert.True(t, ran["BTC-USD"])
	assert.True(t, ran["ETH-USD"])
}

func waitOrTimeout(t *testing.T, wg *sync.WaitGroup, d time.Duration) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(d):
		t.Fatal("timed out waiting for dispatched tasks")
	}
}
