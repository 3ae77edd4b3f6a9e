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

// Package pressure implements the elliptic pressure-projection inner
// solvers (spec §4.9): conjugate gradient, conjugate residual, and
// minimum residual, run matrix-free over grid.Array fields with
// barrier-synchronized global reductions (spec §5: "All reductions...
// must cross a barrier").
//
// The Settings/Stats split and residual-driven termination are shaped
// after gonum.org/v1/gonum/linsolve's Method/Settings/Stats API (see the
// pack's linsolve_test.go poisson fixtures); the iteration itself is
// reimplemented matrix-free because linsolve operates on mat.Vector and
// has no barrier of its own, while mpdatax's reductions must synchronize
// with the same worker pool the advection step uses (grid.Driver).
package pressure

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/spatialmodel/mpdatax/errs"
	"github.com/spatialmodel/mpdatax/grid"
)

// Scheme selects which Krylov variant projects the velocity field.
type Scheme int

const (
	None Scheme = iota
	CGScheme
	CRScheme
	MRScheme
)

func (s Scheme) String() string {
	switch s {
	case CGScheme:
		return "cg"
	case CRScheme:
		return "cr"
	case MRScheme:
		return "mr"
	default:
		return "none"
	}
}

// Operator applies the discrete elliptic operator (∇² under homogeneous
// or cyclic bcond) to src, writing into dst over domain only — callers
// restrict domain to their own worker's stripe so that concurrent
// workers never write overlapping cells. Callers must have exchanged
// src's halo before calling.
type Operator func(dst, src *grid.Array, domain grid.Domain)

// Settings bounds an iterative solve (spec §6 "prs_tol", "prs_maxiter").
type Settings struct {
	Tol     float64
	MaxIter int
}

// Stats reports how a solve terminated.
type Stats struct {
	Iterations int
	Residual   float64
	Converged  bool
}

// Reducer accumulates per-worker partial values into a single global
// result shared across a grid.Driver's worker pool, crossing barriers so
// every worker observes the same total before any worker resets it for
// reuse (spec §4.9 "All reductions... are global across workers and must
// cross a barrier").
type Reducer struct {
	mu       sync.Mutex
	value    float64
	identity float64
	combine  func(a, b float64) float64
}

// NewSumReducer returns a Reducer for global inner products.
func NewSumReducer() *Reducer {
	return &Reducer{combine: func(a, b float64) float64 { return a + b }}
}

// NewMaxReducer returns a Reducer for the global max-norm used by the
// pressure solver's residual check.
func NewMaxReducer() *Reducer {
	return &Reducer{
		value:    math.Inf(-1),
		identity: math.Inf(-1),
		combine: func(a, b float64) float64 {
			if b > a {
				return b
			}
			return a
		},
	}
}

// Global combines local into the shared value, synchronizes with every
// other worker, and returns the combined result to all of them.
func (r *Reducer) Global(ctx *grid.WorkerContext, local float64) (float64, error) {
	r.mu.Lock()
	r.value = r.combine(r.value, local)
	r.mu.Unlock()
	if err := ctx.Barrier(); err != nil {
		return 0, err
	}
	total := r.value
	if err := ctx.Barrier(); err != nil {
		return 0, err
	}
	if ctx.Stripe.ID == 0 {
		r.mu.Lock()
		r.value = r.identity
		r.mu.Unlock()
	}
	if err := ctx.Barrier(); err != nil {
		return 0, err
	}
	return total, nil
}

// stripeDomain restricts domain to the worker's stripe along the grid's
// outermost axis; an alias for grid.StripeDomain kept local so the
// solver-facing call sites in this package read the same as before.
func stripeDomain(domain grid.Domain, s grid.Stripe) grid.Domain {
	return grid.StripeDomain(domain, s)
}

// copyStripe copies src into dst over domain only — the stripe-scoped
// analogue of grid.Array.Copy. A plain whole-array Copy here would read
// every other worker's portion of src before it necessarily finished
// writing it (no barrier sits between a per-stripe Assign and a
// following Copy), so the Krylov solvers that seed ws.P from ws.R use
// this instead, each worker touching only the element range it produced
// itself in the statement right before.
func copyStripe(dst, src *grid.Array, domain grid.Domain) {
	dst.Assign(domain, func(idx []int) float64 { return src.At(idx...) }, src)
}

// flatten copies every element of a over domain into a contiguous
// row-major slice, the shape gonum/floats and gonum/mat expect.
func flatten(a *grid.Array, domain grid.Domain) []float64 {
	n := 1
	for _, s := range domain.Shape() {
		n *= s
	}
	out := make([]float64, 0, n)
	grid.ForEach(domain, func(idx []int) { out = append(out, a.At(idx...)) })
	return out
}

// dot is the local (per-worker-stripe) contribution to a global inner
// product, computed with gonum/floats.Dot over the flattened stripe —
// the same reduction primitive gonum/linsolve's poisson fixtures use
// over mat.Vector, re-expressed here over a grid.Array stripe since the
// global combine must cross mpdatax's own barrier (see Reducer.Global).
func dot(a, b *grid.Array, domain grid.Domain) float64 {
	return floats.Dot(flatten(a, domain), flatten(b, domain))
}

func axpy(dst, x, y *grid.Array, alpha float64, domain grid.Domain) {
	dst.Assign(domain, func(idx []int) float64 {
		return x.At(idx...) + alpha*y.At(idx...)
	}, x, y)
}

// maxAbs is the local max-norm contribution used by the residual check,
// computed via gonum/mat.Norm(v, math.Inf(1)) over the flattened stripe
// wrapped in a mat.VecDense, mirroring the Settings/Stats residual
// bookkeeping gonum/linsolve exposes for its own Method implementations.
func maxAbs(a *grid.Array, domain grid.Domain) float64 {
	data := flatten(a, domain)
	if len(data) == 0 {
		return 0
	}
	return mat.Norm(mat.NewVecDense(len(data), data), math.Inf(1))
}

// nonConvergence builds the non-fatal diagnostic spec §7 kind 3 requires
// when prs_maxiter is hit before prs_tol.
func nonConvergence(scheme Scheme, stats Stats, tol float64) error {
	return &errs.PressureNonConvergence{
		Scheme:   scheme.String(),
		Iters:    stats.Iterations,
		Residual: stats.Residual,
		Tol:      tol,
	}
}

// Workspace holds the scratch vectors a Krylov solve needs, allocated
// once outside the stepping loop (spec §5: "no worker performs
// allocation during steady-state stepping, except the pressure solver's
// scratch vectors, which are pre-allocated"). CG uses R, P, Q; CR uses all
// four; MR uses R, Q, Z.
type Workspace struct {
	R, P, Q, Z *grid.Array
}

// NewWorkspace allocates a Workspace sized to match the pressure field.
func NewWorkspace(shape []int, halo int) *Workspace {
	return &Workspace{
		R: grid.NewArray(shape, halo),
		P: grid.NewArray(shape, halo),
		Q: grid.NewArray(shape, halo),
		Z: grid.NewArray(shape, halo),
	}
}

// haloSync exchanges a's halo once on behalf of the whole worker pool:
// a single worker (stripe 0) performs the fill while the rest wait,
// bracketed by barriers on both sides (spec §4.2, §5).
func haloSync(ctx *grid.WorkerContext, exchange func(*grid.Array), a *grid.Array) error {
	if err := ctx.Barrier(); err != nil {
		return err
	}
	if ctx.Stripe.ID == 0 {
		exchange(a)
	}
	return ctx.Barrier()
}
