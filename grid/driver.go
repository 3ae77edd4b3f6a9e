/*
Copyright © 2024 the mpdatax authors.
This file is part of mpdatax.

mpdatax is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

mpdatax is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with mpdatax.  If not, see <http://www.gnu.org/licenses/>.
*/

package grid

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Barrier is a reusable, sense-reversing barrier for a fixed party size,
// the only legal synchronization primitive crossing an iteration
// boundary (spec §4.3, §4.10): workers block in Wait until every worker
// has arrived, then are all released together.
type Barrier struct {
	n     int
	mu    sync.Mutex
	cond  *sync.Cond
	count int
	sense bool
}

// NewBarrier returns a barrier for n parties.
func NewBarrier(n int) *Barrier {
	b := &Barrier{n: n}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Wait blocks the calling goroutine until all n parties have called Wait
// since the last time the barrier tripped.
func (b *Barrier) Wait() {
	b.mu.Lock()
	localSense := b.sense
	b.count++
	if b.count == b.n {
		b.count = 0
		b.sense = !b.sense
		b.cond.Broadcast()
	} else {
		for b.sense == localSense {
			b.cond.Wait()
		}
	}
	b.mu.Unlock()
}

// Stripe is a worker's statically assigned, contiguous partition of the
// grid's outermost axis (spec §4.10, §5): halo cells straddling a
// boundary between stripes are owned by exactly one worker under the
// bcond rules, never written by two.
type Stripe struct {
	ID    int
	Lo    int
	Hi    int
	Outer int // size of the outermost axis, for neighbour-stripe lookups
}

// Stripes partitions extent cells of the outermost axis into n
// contiguous, near-equal stripes.
func Stripes(extent, n int) []Stripe {
	if n < 1 {
		n = 1
	}
	if n > extent {
		n = extent
	}
	out := make([]Stripe, n)
	base := extent / n
	rem := extent % n
	lo := 0
	for i := 0; i < n; i++ {
		size := base
		if i < rem {
			size++
		}
		out[i] = Stripe{ID: i, Lo: lo, Hi: lo + size, Outer: extent}
		lo += size
	}
	return out
}

// StripeDomain restricts domain to the worker's stripe along the grid's
// outermost axis, leaving every other axis untouched: the shared
// restriction every kernel (advection, FCT, pressure) applies so
// concurrent workers only ever write their own disjoint slice of a
// shared array (spec §4.10, §5).
//
// A face-centered array along axis 0 has one more entry than the cell
// count (domain.Hi[0] == s.Outer+1): no stripe's half-open [Lo,Hi) range
// reaches that trailing face, so the last stripe also claims it here,
// provided domain actually extends that far.
func StripeDomain(domain Domain, s Stripe) Domain {
	lo := append([]int(nil), domain.Lo...)
	hi := append([]int(nil), domain.Hi...)
	if s.Lo > lo[0] {
		lo[0] = s.Lo
	}
	stripeHi := s.Hi
	if s.Hi == s.Outer && stripeHi+1 <= hi[0] {
		stripeHi++
	}
	if stripeHi < hi[0] {
		hi[0] = stripeHi
	}
	if lo[0] > hi[0] {
		hi[0] = lo[0]
	}
	return Domain{Lo: lo, Hi: hi}
}

// WorkerContext is the explicit, per-goroutine handle threaded through
// every kernel call instead of relying on thread-local state (spec §9:
// "thread identity... pass as an explicit argument").
type WorkerContext struct {
	Stripe  Stripe
	driver  *Driver
	barrier *Barrier
}

// Barrier blocks until every worker has reached this call, then returns
// the latched error, if any worker has raised one (spec §7's "error
// latch": set by whichever worker first detects a CFL violation or
// divergence, observed identically by all workers after the barrier).
func (w *WorkerContext) Barrier() error {
	w.barrier.Wait()
	if v := w.driver.errLatch.Load(); v != nil {
		return v.(error)
	}
	return nil
}

// Raise latches err so that every worker observes it at the next
// Barrier call. The first raised error wins.
func (w *WorkerContext) Raise(err error) {
	w.driver.errLatch.CompareAndSwap(nil, err)
}

// Cancelled reports whether cooperative cancellation has been requested.
// Checked at step boundaries only; in-iteration cancellation is not
// supported because the barrier protocol requires full participation.
func (w *WorkerContext) Cancelled() bool {
	return atomic.LoadInt32(&w.driver.cancelFlag) != 0
}

// Driver partitions the grid's outermost axis across a fixed pool of
// worker goroutines created for one Run call and joined at its return,
// mirroring inmap's Calculations: a runtime.GOMAXPROCS(0)-sized
// sync.WaitGroup fan-out over contiguous work, generalized here to
// stripes (required for halo ownership) and to propagate the first
// worker error via errgroup instead of being silently dropped.
type Driver struct {
	NThreads   int
	stripes    []Stripe
	barrier    *Barrier
	errLatch   atomic.Value
	cancelFlag int32
}

// NewDriver creates a driver with nThreads workers over an axis of the
// given extent (the grid's outermost dimension).
func NewDriver(nThreads, outerExtent int) *Driver {
	stripes := Stripes(outerExtent, nThreads)
	return &Driver{
		NThreads: len(stripes),
		stripes:  stripes,
		barrier:  NewBarrier(len(stripes)),
	}
}

// Stripes returns the static partition assigned to each worker.
func (d *Driver) Stripes() []Stripe { return d.stripes }

// RequestCancel sets the cooperative cancellation flag; workers observe
// it at the next step boundary via WorkerContext.Cancelled.
func (d *Driver) RequestCancel() { atomic.StoreInt32(&d.cancelFlag, 1) }

// Run spawns one goroutine per stripe, each invoking work with its own
// WorkerContext, and waits for all of them to return. The first non-nil
// error returned by any worker is the error Run returns; per spec §7,
// workers detect errors at barrier points so every worker observes the
// same outcome before unwinding.
func (d *Driver) Run(work func(ctx *WorkerContext) error) error {
	d.errLatch = atomic.Value{}
	var g errgroup.Group
	for _, s := range d.stripes {
		s := s
		g.Go(func() error {
			ctx := &WorkerContext{Stripe: s, driver: d, barrier: d.barrier}
			return work(ctx)
		})
	}
	return g.Wait()
}
