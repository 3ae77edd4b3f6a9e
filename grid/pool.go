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

import "github.com/spatialmodel/mpdatax/errs"

// Pool owns every buffer a solver touches: the ψ time-level rings for
// each equation, the face-centered Courant/correction-velocity fields,
// the FCT extrema and limiters, and the shared worker driver. These
// buffers are allocated once, when the Pool is constructed (spec §3
// "Lifecycle"); stepping still allocates temporaries, since Array.Assign
// allocates a staging buffer whenever its destination aliases a source
// and index slices are allocated per visited cell.
type Pool struct {
	Spec Spec
	Halo int

	psi  [][]*Array // [equation][time level]
	n    []int      // active time level per equation; ring index, not a copy
	nEqs int

	C      []*Array // face-centered Courant number, one per axis
	CCorr  []*Array // iteration-local antidiffusive pseudo-velocity, one per axis
	GCMono []*Array // FCT-derated correction velocity, one per axis
	G      *Array   // geometric/density weight (cell-centered); nil means G≡1

	PsiMin []*Array // per-equation local minima, for FCT
	PsiMax []*Array // per-equation local maxima, for FCT
	BetaUp []*Array // per-equation FCT up-limiter
	BetaDn []*Array // per-equation FCT down-limiter

	Rhs *Array // pressure-projection divergence RHS; nil until EnablePressure
	Phi *Array // pressure-projection potential; nil until EnablePressure

	Driver *Driver
}

// NewPool allocates all buffers for nEqs equations over the given grid
// spec, with nTlev time levels per equation (2 for donor-cell and basic
// MPDATA, 2 or 3 when the chosen MPDATA option needs an extra level) and
// nThreads workers partitioning the outermost axis.
func NewPool(spec Spec, nEqs, halo, nTlev, nThreads int) (*Pool, error) {
	if nTlev < 2 {
		return nil, &errs.ConfigurationError{Reason: "n_tlev must be at least 2"}
	}
	faceShape := func(axis int) []int {
		s := append([]int(nil), spec.Span...)
		s[axis]++
		return s
	}

	p := &Pool{
		Spec: spec,
		Halo: halo,
		nEqs: nEqs,
		n:    make([]int, nEqs),
	}

	p.psi = make([][]*Array, nEqs)
	p.PsiMin = make([]*Array, nEqs)
	p.PsiMax = make([]*Array, nEqs)
	p.BetaUp = make([]*Array, nEqs)
	p.BetaDn = make([]*Array, nEqs)
	for e := 0; e < nEqs; e++ {
		p.psi[e] = make([]*Array, nTlev)
		for l := 0; l < nTlev; l++ {
			p.psi[e][l] = NewArray(spec.Span, halo)
		}
		p.PsiMin[e] = NewArray(spec.Span, halo)
		p.PsiMax[e] = NewArray(spec.Span, halo)
		p.BetaUp[e] = NewArray(spec.Span, halo)
		p.BetaDn[e] = NewArray(spec.Span, halo)
	}

	p.C = make([]*Array, spec.NDims)
	p.CCorr = make([]*Array, spec.NDims)
	p.GCMono = make([]*Array, spec.NDims)
	for d := 0; d < spec.NDims; d++ {
		p.C[d] = NewArray(faceShape(d), halo)
		p.CCorr[d] = NewArray(faceShape(d), halo)
		p.GCMono[d] = NewArray(faceShape(d), halo)
	}

	p.Driver = NewDriver(nThreads, spec.Span[0])
	return p, nil
}

// NEqns returns the number of prognostic equations.
func (p *Pool) NEqns() int { return p.nEqs }

// NTlev returns the size of each equation's time-level ring.
func (p *Pool) NTlev(e int) int { return len(p.psi[e]) }

// State returns the array holding ψ[e] at the currently active time
// level: the solver's n⁺¹ becomes the next call's n without copying.
func (p *Pool) State(e int) *Array { return p.psi[e][p.n[e]] }

// Level returns ψ[e] at a specific ring offset from the active level;
// offset 0 is State(e), -1 is the previous level, and so on modulo the
// ring size. NextState is Level(e, 1).
func (p *Pool) Level(e, offset int) *Array {
	nt := len(p.psi[e])
	idx := ((p.n[e]+offset)%nt + nt) % nt
	return p.psi[e][idx]
}

// NextState returns the array the next step should write ψ[e]ⁿ⁺¹ into:
// the ring slot one ahead of the active level.
func (p *Pool) NextState(e int) *Array { return p.Level(e, 1) }

// Rotate advances equation e's active time level by one ring slot — a
// logical index update, not a data copy (spec §3 "Lifecycle": n[e]^=1
// for a 2-level ring, generalized here to modulo arithmetic for 3-level
// rings per spec §9 "Circular buffer of time levels").
func (p *Pool) Rotate(e int) { p.n[e] = (p.n[e] + 1) % len(p.psi[e]) }

// ActiveLevel returns the ring index currently active for equation e.
func (p *Pool) ActiveLevel(e int) int { return p.n[e] }

// Span returns the grid's per-axis interior cell counts.
func (p *Pool) Span() []int { return append([]int(nil), p.Spec.Span...) }

// Weight returns the geometric/density weight at idx, defaulting to 1
// when no G field was configured (nug option off).
func (p *Pool) Weight(idx []int) float64 {
	if p.G == nil {
		return 1
	}
	return p.G.At(idx...)
}

// EnableWeight allocates the geometric/density weight field G,
// defaulting every cell (including halo) to 1.
func (p *Pool) EnableWeight() {
	p.G = NewArray(p.Spec.Span, p.Halo)
	ForEach(p.G.Domain().Widen(p.Halo), func(idx []int) { p.G.Set(1, idx...) })
}

// EnablePressure allocates the shared divergence/potential buffers the
// pressure projection reads and writes every step (spec §5: "no worker
// performs allocation during steady-state stepping"); callers fill Rhs
// per-stripe under a barrier rather than reallocating it.
func (p *Pool) EnablePressure() {
	p.Rhs = NewArray(p.Spec.Span, p.Halo)
	p.Phi = NewArray(p.Spec.Span, p.Halo)
}

// Mass sums ψ[e]·G over the interior domain, the conserved quantity
// invariant 3 (spec §3, §8) checks across steps under cyclic bcond and
// zero RHS.
func (p *Pool) Mass(e int) float64 {
	var total float64
	psi := p.State(e)
	ForEach(psi.Domain(), func(idx []int) {
		total += psi.At(idx...) * p.Weight(idx)
	})
	return total
}
