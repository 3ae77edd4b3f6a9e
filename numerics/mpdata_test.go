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

import (
	"math"
	"testing"

	"github.com/spatialmodel/mpdatax/grid"
)

func TestMonotonizeShrinksMagnitudeAndKeepsSign(t *testing.T) {
	n := 6
	gcCorr := grid.NewArray([]int{n + 1}, 1)
	betaUp := grid.NewArray([]int{n}, 1)
	betaDn := grid.NewArray([]int{n}, 1)
	for i := 0; i <= n; i++ {
		v := 0.4
		if i%2 == 0 {
			v = -0.4
		}
		gcCorr.Set(v, i)
	}
	for i := 0; i < n; i++ {
		betaUp.Set(0.3, i) // tighter than 1, forces derating
		betaDn.Set(0.5, i)
	}

	gcMono := grid.NewArray([]int{n + 1}, 1)
	Monotonize(Faces{gcMono}, Faces{gcCorr}, betaUp, betaDn, grid.Stripe{Lo: 0, Hi: n, Outer: n})

	for i := 0; i <= n; i++ {
		corr := gcCorr.At(i)
		mono := gcMono.At(i)
		if math.Abs(mono) > math.Abs(corr)+1e-12 {
			t.Errorf("face %d: |GC_mono|=%v > |GC_corr|=%v", i, mono, corr)
		}
		if corr > 0 && mono < 0 || corr < 0 && mono > 0 {
			t.Errorf("face %d: sign flipped, GC_corr=%v GC_mono=%v", i, corr, mono)
		}
	}
}

func TestExtremaInitBracketsNeighbourhood(t *testing.T) {
	psi := grid.NewArray([]int{5}, 1)
	vals := []float64{3, 1, 4, 1, 5}
	for i, v := range vals {
		psi.Set(v, i)
	}
	psiMin := grid.NewArray([]int{5}, 1)
	psiMax := grid.NewArray([]int{5}, 1)
	ExtremaInit(psiMin, psiMax, psi, grid.Stripe{Lo: 0, Hi: 5, Outer: 5})

	// cell 2 (value 4): neighbours are cell 1 (1) and cell 3 (1).
	if got := psiMin.At(2); got != 1 {
		t.Errorf("psiMin(2) = %v, want 1", got)
	}
	if got := psiMax.At(2); got != 4 {
		t.Errorf("psiMax(2) = %v, want 4", got)
	}
}

func TestCorrectorVariantsDoNotPanic(t *testing.T) {
	n := 8
	// halo 2: the TOT curvature term reads ψ two cells from a face, the
	// halo solver.New allocates when TOT is set.
	psi := grid.NewArray([]int{n}, 2)
	c := grid.NewArray([]int{n + 1}, 1)
	for i := 0; i < n; i++ {
		psi.Set(float64(i%3+1), i)
	}
	for i := 0; i <= n; i++ {
		c.Set(0.3, i)
	}
	for _, opts := range []Options{0, IGA, TOT, DFL, IGA | TOT, IGA | DFL} {
		dst := grid.NewArray([]int{n + 1}, 1)
		corr := NewCorrector(opts)
		corr(Faces{dst}, psi, Faces{c}, nil, grid.Stripe{Lo: 0, Hi: n, Outer: n})
	}
}
