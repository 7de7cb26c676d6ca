// Package gate implements the hand-off lock that arbitrates use of a
// single-threaded rendering connection.
//
// The worker normally holds the lock for its whole life and only lets go
// while parked. A caller that wants in posts a wake token and then blocks on
// the mutex. The worker sees the token, waits on the resume condition (which
// releases the mutex) and gets it back once every pending caller has released.
//
//	worker                         caller
//	Hold()
//	loop: select Requests() ─────  Acquire(): pending++, post token, lock
//	      Yield() (cond wait)      ... mutate shared state ...
//	      <── resumed ───────────  Release(): pending--, signal, unlock
//	Drop()
package gate

import (
	"sync"
	"sync/atomic"
	"time"
)

// Locker is the caller side of the gate.
type Locker interface {
	Acquire()
	Release()
}

// Gate is a single-owner lock with temporary delegation.
type Gate struct {
	mu      sync.Mutex
	resume  *sync.Cond
	wake    chan struct{}
	pending atomic.Int32

	// Observe, when set, receives the time every Acquire spent blocked.
	Observe func(time.Duration)
}

// New returns an unheld gate.
func New() *Gate {
	g := &Gate{wake: make(chan struct{}, 1)}
	g.resume = sync.NewCond(&g.mu)
	return g
}

// Acquire requests ownership and blocks until the worker has parked.
func (g *Gate) Acquire() {
	start := time.Now()
	g.pending.Add(1)
	select {
	case g.wake <- struct{}{}:
	default:
		// A token is already queued; the worker will count pending on wake.
	}
	g.mu.Lock()
	if g.Observe != nil {
		g.Observe(time.Since(start))
	}
}

// Release hands ownership back to the worker.
func (g *Gate) Release() {
	g.pending.Add(-1)
	g.resume.Signal()
	g.mu.Unlock()
}

// Pending returns the number of callers inside Acquire or holding the gate.
func (g *Gate) Pending() int { return int(g.pending.Load()) }

// Hold takes ownership for the worker. It must be called once, from the
// worker goroutine, before the event loop starts.
func (g *Gate) Hold() { g.mu.Lock() }

// Requests is readable when a caller has asked for ownership.
func (g *Gate) Requests() <-chan struct{} { return g.wake }

// Yield parks the worker until no caller is waiting, then returns with
// ownership held again.
func (g *Gate) Yield() {
	for g.pending.Load() > 0 {
		g.resume.Wait()
	}
}

// Drop releases the worker's hold for good. Later Acquire/Release pairs
// still work, they just no longer hand anything back.
func (g *Gate) Drop() { g.mu.Unlock() }
