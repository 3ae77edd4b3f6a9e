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

package solver

import (
	"math"

	"github.com/spatialmodel/mpdatax/grid"
)

// BoussinesqBuoyancy couples a vertical-velocity equation to a buoyancy
// equation through the linear oscillator
//
//	dw/dt =  b
//	db/dt = -N²·w
//
// the Boussinesq pair every libmpdata++ harmonic-oscillator and 2D
// bubble demo carries as its RHS. Rather than approximating
// (I − ½Δt·L)⁻¹ by a linear solve, ApplyCoupled uses the pair's exact
// rotation solution, which is the closed form the spec's "implicit
// coupled" RHS kind calls for and is unconditionally stable regardless
// of N·Δt.
type BoussinesqBuoyancy struct {
	N  float64 // buoyancy frequency
	Dt float64 // solver time step

	w0, b0 *grid.Array // pre-rotation snapshot, pre-allocated by NewBoussinesqBuoyancy
}

// NewBoussinesqBuoyancy returns a BoussinesqBuoyancy whose snapshot
// scratch is pre-allocated to shape/halo — matching the solver's ψ pool
// arrays it will be called against — so ApplyCoupled needs no snapshot
// or staging buffer of its own during stepping (spec §5).
func NewBoussinesqBuoyancy(n, dt float64, shape []int, halo int) *BoussinesqBuoyancy {
	return &BoussinesqBuoyancy{
		N: n, Dt: dt,
		w0: grid.NewArray(shape, halo),
		b0: grid.NewArray(shape, halo),
	}
}

// ApplyCoupled rotates (w, b) through angle N·dtFraction·Δt exactly over
// domain. src and dst must each hold exactly two arrays, [w, b], in that
// order. Called once per worker with that worker's own stripe of domain
// (solver.applyRHS), so w0/b0 — shared scratch, not per-worker — are
// snapshotted with a domain-restricted Assign rather than a whole-array
// Copy: each worker only ever touches the slice of w0/b0 it owns.
//
// dst is typically aliased to src (the solver calls ApplyCoupled with
// src==dst to rotate a field in place): w and b are snapshotted before
// either output is written, so both new fields are computed from the
// same pre-rotation pair rather than the first write's result leaking
// into the second — a sequential read-after-write here would silently
// turn the exact rotation into an explicit-Euler-like approximation.
func (bb *BoussinesqBuoyancy) ApplyCoupled(dtFraction float64, src, dst []*grid.Array, domain grid.Domain) {
	theta := bb.N * dtFraction * bb.Dt
	cos, sin := math.Cos(theta), math.Sin(theta)
	w, b := src[0], src[1]
	dw, db := dst[0], dst[1]

	bb.w0.Assign(domain, func(idx []int) float64 { return w.At(idx...) }, w)
	bb.b0.Assign(domain, func(idx []int) float64 { return b.At(idx...) }, b)
	w0, b0 := bb.w0, bb.b0

	dw.Assign(domain, func(idx []int) float64 {
		wv, bv := w0.At(idx...), b0.At(idx...)
		if bb.N == 0 {
			return wv
		}
		return wv*cos + bv*sin/bb.N
	}, w0, b0)
	db.Assign(domain, func(idx []int) float64 {
		wv, bv := w0.At(idx...), b0.At(idx...)
		return -bb.N*wv*sin + bv*cos
	}, w0, b0)
}
