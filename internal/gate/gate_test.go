package gate

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runWorker mimics the overlay loop: it owns the gate and parks on requests
// until stop is closed.
func runWorker(g *Gate, stop <-chan struct{}, iterations *atomic.Int64) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		g.Hold()
		defer g.Drop()
		for {
			iterations.Add(1)
			select {
			case <-stop:
				return
			case <-g.Requests():
				g.Yield()
			}
		}
	}()
	return done
}

func TestAcquireWakesParkedWorker(t *testing.T) {
	g := New()
	stop := make(chan struct{})
	var iterations atomic.Int64
	done := runWorker(g, stop, &iterations)

	acquired := make(chan struct{})
	go func() {
		g.Acquire()
		close(acquired)
		g.Release()
	}()

	select {
	case <-acquired:
	case <-time.After(2 * time.Second):
		t.Fatal("caller never got the gate")
	}
	close(stop)
	<-done
	assert.Equal(t, 0, g.Pending())
}

func TestMutualExclusion(t *testing.T) {
	g := New()
	stop := make(chan struct{})
	var iterations atomic.Int64
	done := runWorker(g, stop, &iterations)

	var inside atomic.Int32
	var overlap atomic.Bool
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				g.Acquire()
				if inside.Add(1) != 1 {
					overlap.Store(true)
				}
				counter++
				inside.Add(-1)
				g.Release()
			}
		}()
	}
	wg.Wait()
	close(stop)
	<-done

	assert.False(t, overlap.Load())
	assert.Equal(t, 16*50, counter)
	assert.Equal(t, 0, g.Pending())
}

func TestWorkerResumesAfterRelease(t *testing.T) {
	g := New()
	stop := make(chan struct{})
	var iterations atomic.Int64
	done := runWorker(g, stop, &iterations)

	for i := 0; i < 5; i++ {
		g.Acquire()
		g.Release()
	}
	require.Eventually(t, func() bool { return iterations.Load() >= 2 }, time.Second, time.Millisecond)
	close(stop)
	<-done
}

func TestAcquireAfterDrop(t *testing.T) {
	g := New()
	g.Hold()
	g.Drop()

	finished := make(chan struct{})
	go func() {
		g.Acquire()
		g.Release()
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("acquire blocked on a dropped gate")
	}
}

func TestObserveReportsWait(t *testing.T) {
	g := New()
	var observed atomic.Int32
	g.Observe = func(d time.Duration) {
		assert.GreaterOrEqual(t, d, time.Duration(0))
		observed.Add(1)
	}
	g.Acquire()
	g.Release()
	assert.Equal(t, int32(1), observed.Load())
}
