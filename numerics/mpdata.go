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

package numerics

import "github.com/spatialmodel/mpdatax/grid"

// Corrector computes the iteration-k antidiffusive pseudo-velocity
// GC_corr on every face from the current ψ estimate (spec §4.5 step 1).
// It is built once at solver construction from Options and stored as a
// single function value; the option flags are captured by that function
// and tested with Options.Has inside its per-face kernel.
type Corrector func(dst Faces, psi *grid.Array, c Faces, g *grid.Array, stripe grid.Stripe)

// NewCorrector builds the antidiffusive-velocity function for opts. New
// variants can be added without touching the stepping loop in solver.Solver
// by extending correctAxis (spec §4.5: "must permit adding a new variant
// without touching the stepping loop").
func NewCorrector(opts Options) Corrector {
	return func(dst Faces, psi *grid.Array, c Faces, g *grid.Array, stripe grid.Stripe) {
		for axis := range dst {
			correctAxis(dst, axis, psi, c, g, opts, stripe)
		}
	}
}

// correctAxis fills dst[axis] (shape span[axis]+1 along axis) with the
// antidiffusive velocity on every face normal to axis, including the
// cross-axis terms contributed by neighbour-axis Courant components
// (spec §4.5: "these terms must be computed from neighbour-axis Courant
// components, requiring halos ≥1 in those axes as well"). The write is
// restricted to the caller's stripe (spec §4.10, §5); grid.StripeDomain
// hands the last stripe the trailing face that closes this axis-0
// face-centered array when axis==0.
func correctAxis(c Faces, axis int, psi *grid.Array, v Faces, g *grid.Array, opts Options, stripe grid.Stripe) {
	dst := c[axis]
	domain := grid.StripeDomain(dst.Domain(), stripe)
	dst.Assign(domain, func(idx []int) float64 {
		// idx is a face index along axis: the face between cell idx-1̂
		// and cell idx (axis component), i.e. position idx[axis]-½.
		lo := append([]int(nil), idx...)
		lo[axis]--
		hi := append([]int(nil), idx...)

		psiLo := psi.At(lo...)
		psiHi := psi.At(hi...)
		cHere := v[axis].At(idx...)

		gLo, gHi := 1.0, 1.0
		if opts.Has(NUG) && g != nil {
			gLo, gHi = g.At(lo...), g.At(hi...)
		}

		denom := gLo*psiLo + gHi*psiHi
		var a float64
		if opts.Has(IGA) {
			// infinite-gauge: drop the ψ-dependent normalization.
			a = (absf(cHere) - cHere*cHere) * (psiHi - psiLo) / 2
		} else {
			a = (absf(cHere) - cHere*cHere) * (psiHi - psiLo) / (denom + epsilon)
		}

		// cross-axis terms: for every other axis b, average the
		// b-direction Courant number onto this face and add the
		// corresponding transverse-gradient contribution.
		for b := range v {
			if b == axis {
				continue
			}
			cBar := averageTransverse(v[b], idx, axis, b)
			pPP := shiftedIdx(hi, b, 1)
			pPM := shiftedIdx(hi, b, -1)
			pMP := shiftedIdx(lo, b, 1)
			pMM := shiftedIdx(lo, b, -1)
			num := psi.At(pPP...) + psi.At(pMP...) - psi.At(pPM...) - psi.At(pMM...)
			den := psi.At(pPP...) + psi.At(pMP...) + psi.At(pPM...) + psi.At(pMM...)
			a -= 0.5 * cHere * cBar * num / (den + epsilon)
		}

		if opts.Has(TOT) {
			// third-order correction: curvature of ψ along axis,
			// damping the antidiffusive velocity near extrema.
			hip := shiftedIdx(hi, axis, 1)
			lom := shiftedIdx(lo, axis, -1)
			curvature := psi.At(hip...) - psi.At(hi...) - psi.At(lo...) + psi.At(lom...)
			a += cHere * (1 - 2*absf(cHere)) / 3 * curvature / (denom + epsilon)
		}

		if opts.Has(DFL) {
			// divergence form: subtract the local face-normal
			// divergence of the Courant field, scaled by ψ.
			a -= 0.5 * cHere * faceDivergence(v, idx, axis) * (psiHi + psiLo) / (denom + epsilon)
		}

		return a
	}, psi)
}

func shiftedIdx(idx []int, axis, delta int) []int {
	out := append([]int(nil), idx...)
	out[axis] += delta
	return out
}

// averageTransverse averages the four b-direction face velocities that
// surround the axis-face at idx, giving the Courant component's value
// at that face's center (needed for the cross term).
func averageTransverse(vb *grid.Array, idx []int, axis, b int) float64 {
	hi := append([]int(nil), idx...)
	lo := append([]int(nil), idx...)
	lo[axis]--

	hiP := append([]int(nil), hi...)
	hiP[b]++
	loP := append([]int(nil), lo...)
	loP[b]++

	return 0.25 * (vb.At(hi...) + vb.At(lo...) + vb.At(hiP...) + vb.At(loP...))
}

// faceDivergence approximates ∇·C at the face, summing each axis's
// discrete derivative of its own Courant component.
func faceDivergence(v Faces, idx []int, axis int) float64 {
	var div float64
	for b := range v {
		hi := append([]int(nil), idx...)
		if b != axis {
			hi[b]++
		}
		lo := append([]int(nil), idx...)
		if b == axis {
			lo[b]--
		}
		div += v[b].At(hi...) - v[b].At(lo...)
	}
	return div
}

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
