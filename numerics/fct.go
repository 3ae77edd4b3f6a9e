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

// stripeWiden restricts psi.Domain().Widen(k) to the caller's stripe
// along axis 0, but still reaches the k-cell halo layer at the grid's
// true low/high boundary when this stripe owns that edge: Monotonize
// reads psi_min/psi_max and the betas one halo cell past the interior
// for faces sitting on the grid's outer edge, so that layer must be
// computed by whichever stripe borders it, not dropped. Interior
// stripe-to-stripe seams have no such halo cell — they abut, they don't
// overlap — so non-edge stripes get no widening at all.
func stripeWiden(psi *grid.Array, k int, stripe grid.Stripe) grid.Domain {
	widened := psi.Domain().Widen(k)
	lo := append([]int(nil), widened.Lo...)
	hi := append([]int(nil), widened.Hi...)
	lo[0] = stripe.Lo
	if stripe.Lo == 0 {
		lo[0] = widened.Lo[0]
	}
	hi[0] = stripe.Hi
	if stripe.Hi == stripe.Outer {
		hi[0] = widened.Hi[0]
	}
	return grid.Domain{Lo: lo, Hi: hi}
}

// ExtremaInit fills psiMin/psiMax with the min/max of ψ over N(p): p and
// its axis-aligned neighbours at distance 1 (spec §3 invariant 3, and
// the psi_min/psi_max recurrence in libmpdata++'s mpdata_fct_3d.hpp
// fct_init, generalized here from the 3D 6-neighbour min/max chain to D
// dimensions). Restricted to the caller's stripe (spec §4.10, §5).
func ExtremaInit(psiMin, psiMax, psi *grid.Array, stripe grid.Stripe) {
	domain := stripeWiden(psi, 1, stripe)
	psiMin.Assign(domain, func(idx []int) float64 {
		m := psi.At(idx...)
		for axis := 0; axis < psi.Dims(); axis++ {
			m = minf(m, psi.At(shiftedIdx(idx, axis, 1)...))
			m = minf(m, psi.At(shiftedIdx(idx, axis, -1)...))
		}
		return m
	})
	psiMax.Assign(domain, func(idx []int) float64 {
		m := psi.At(idx...)
		for axis := 0; axis < psi.Dims(); axis++ {
			m = maxf(m, psi.At(shiftedIdx(idx, axis, 1)...))
			m = maxf(m, psi.At(shiftedIdx(idx, axis, -1)...))
		}
		return m
	})
}

// Betas computes the per-cell FCT limiter ratios β↑, β↓ (spec §4.6) from
// the candidate antidiffusive flux field GC_corr and the precomputed
// local extrema. Restricted to the caller's stripe (spec §4.10, §5).
func Betas(betaUp, betaDn, psi, psiMin, psiMax *grid.Array, gcCorr Faces, g *grid.Array, stripe grid.Stripe) {
	domain := stripeWiden(psi, 1, stripe)
	betaUp.Assign(domain, func(idx []int) float64 {
		var in float64
		for axis := 0; axis < psi.Dims(); axis++ {
			in += maxf(0, -faceFlow(gcCorr[axis], idx, axis, 1)) // incoming from the high face
			in += maxf(0, faceFlow(gcCorr[axis], idx, axis, -1)) // incoming from the low face
		}
		return (psiMax.At(idx...) - psi.At(idx...)) / (in + epsilon)
	})
	betaDn.Assign(domain, func(idx []int) float64 {
		var out float64
		for axis := 0; axis < psi.Dims(); axis++ {
			out += maxf(0, faceFlow(gcCorr[axis], idx, axis, 1))
			out += maxf(0, -faceFlow(gcCorr[axis], idx, axis, -1))
		}
		return (psi.At(idx...) - psiMin.At(idx...)) / (out + epsilon)
	})
}

// faceFlow returns the antidiffusive velocity at the face on the given
// side of cell idx along axis: side +1 is the high face (idx+1 in the
// face array), side -1 is the low face (idx itself).
func faceFlow(gc *grid.Array, idx []int, axis, side int) float64 {
	f := append([]int(nil), idx...)
	if side > 0 {
		f[axis]++
	}
	return gc.At(f...)
}

// Monotonize derates gcCorr into gcMono so that the FCT invariant (spec
// §3 invariant 3, §4.6) holds: for each face f between donor cell p and
// acceptor cell q, GC_mono(f) = GC_corr(f)·min(1, β↓(p), β↑(q)), which
// guarantees |GC_mono| ≤ |GC_corr| and preserves sign. Restricted to the
// caller's stripe (spec §4.10, §5); the betas it reads at the stripe's
// own seams were computed by whichever neighbouring stripe owns them,
// visible here because a barrier always separates the Betas and
// Monotonize calls.
func Monotonize(gcMono, gcCorr Faces, betaUp, betaDn *grid.Array, stripe grid.Stripe) {
	for axis := range gcCorr {
		dst := gcMono[axis]
		src := gcCorr[axis]
		domain := grid.StripeDomain(src.Domain(), stripe)
		dst.Assign(domain, func(idx []int) float64 {
			c := src.At(idx...)
			donor := append([]int(nil), idx...)
			acceptor := append([]int(nil), idx...)
			if c >= 0 {
				donor[axis]--
			} else {
				acceptor[axis]--
			}
			limiter := minf(1, minf(betaDn.At(donor...), betaUp.At(acceptor...)))
			if limiter < 0 {
				limiter = 0
			}
			return c * limiter
		}, src)
	}
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
