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

import "github.com/spatialmodel/mpdatax/grid"

// Phase identifies which side of the advection step an RHS hook fires on
// (spec §4.7 "RHS_PRE", "RHS_POST").
type Phase int

const (
	PhasePre Phase = iota
	PhasePost
)

// RHS is the capability the solver polymorphs over for forcing terms
// (spec §4.8): ApplyRHS writes ψ_dst ← contribution(dtFraction, ψ_src)
// over domain, restricted to the calling worker's stripe.
type RHS interface {
	ApplyRHS(dtFraction float64, src, dst *grid.Array, domain grid.Domain)
}

// Tendency computes R(ψ) at idx from the full field psi; the same
// signature libmpdata++ exposes as a per-cell forcing functor.
type Tendency func(psi *grid.Array, idx []int) float64

// ExplicitRHS implements the euler_a/euler_b/trapez rhs_scheme options:
// ψ_dst ← ψ_src + dtFraction·Δt·R(ψ_src). The three schemes differ only
// in which phases the solver invokes ApplyRHS on and with what
// dtFraction, not in this formula.
type ExplicitRHS struct {
	Dt float64
	R  Tendency
}

func (e ExplicitRHS) ApplyRHS(dtFraction float64, src, dst *grid.Array, domain grid.Domain) {
	dst.Assign(domain, func(idx []int) float64 {
		return src.At(idx...) + dtFraction*e.Dt*e.R(src, idx)
	}, src)
}

// CoupledRHS handles stiff linear couplings between two or more
// equations with a user-supplied closed form (spec §4.8 "implicit
// coupled": "solves (I − ½Δt·L)ψⁿ⁺¹ = rhs"), applied jointly across the
// whole group rather than one equation at a time.
type CoupledRHS interface {
	ApplyCoupled(dtFraction float64, src, dst []*grid.Array, domain grid.Domain)
}
