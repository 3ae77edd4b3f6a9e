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

// Package numerics implements the donor-cell base advector (spec §4.4),
// the MPDATA antidiffusive corrector (spec §4.5), and the FCT
// monotonicity limiter (spec §4.6).
//
// The donor-cell flux is the same upwind branch inmap.Cell.UpwindAdvection
// uses via github.com/ctessum/atmos/advect.UpwindFlux, generalized from a
// velocity argument to a dimensionless Courant number: UpwindFlux(C, ψL,
// ψR, 1) reproduces spec §4.4's F(ψL,ψR,C) exactly, since UpwindFlux
// branches on the sign of its first argument the same way F's (C±|C|)
// terms do.
package numerics

import (
	"github.com/ctessum/atmos/advect"

	"github.com/spatialmodel/mpdatax/grid"
)

// Flux is the donor-cell numerical flux across one face:
//
//	F(ψL, ψR, C) = ½·[(C+|C|)·ψL + (C−|C|)·ψR]
func Flux(psiL, psiR, c float64) float64 {
	return advect.UpwindFlux(c, psiL, psiR, 1)
}

// Faces is the set of face-centered Courant arrays, one per axis, using
// the convention that Faces[axis] has shape span[axis]+1 along axis and
// index i is the face at position i-½ (so the high face of cell i is
// index i+1).
type Faces []*grid.Array

// DonorCellStep writes one donor-cell update of psi into dst using the
// face velocities c, weighted by the optional geometric/density field g
// (nil means G≡1). dst may alias psi; Array.Assign stages the result
// through a scratch buffer in that case. The write is restricted to the
// caller's stripe so concurrent workers never touch the same cell (spec
// §4.10, §5).
func DonorCellStep(dst, psi *grid.Array, c Faces, g *grid.Array, stripe grid.Stripe) {
	domain := grid.StripeDomain(psi.Domain(), stripe)
	dst.Assign(domain, func(idx []int) float64 {
		val := psi.At(idx...)
		weight := 1.0
		if g != nil {
			weight = g.At(idx...)
		}
		var div float64
		for axis := range c {
			loFace := append([]int(nil), idx...)
			hiFace := append([]int(nil), idx...)
			hiFace[axis]++
			cLo := c[axis].At(loFace...)
			cHi := c[axis].At(hiFace...)

			left := append([]int(nil), idx...)
			left[axis]--
			right := append([]int(nil), idx...)
			right[axis]++

			fluxLo := Flux(psi.At(left...), val, cLo)
			fluxHi := Flux(val, psi.At(right...), cHi)
			div += fluxHi - fluxLo
		}
		return (weight*val - div) / weight
	}, psi)
}
