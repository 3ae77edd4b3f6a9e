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
	"testing"

	"github.com/spatialmodel/mpdatax/bcond"
	"github.com/spatialmodel/mpdatax/grid"
)

// S5: donor-cell with |C|=1 exactly and constant ψ=1 must exactly
// preserve the field (spec §8 scenario S5).
func TestDonorCellCFLBoundaryExact(t *testing.T) {
	n := 10
	psi := grid.NewArray([]int{n}, 1)
	for i := 0; i < n; i++ {
		psi.Set(1, i)
	}
	c := grid.NewArray([]int{n + 1}, 1)
	for i := 0; i <= n; i++ {
		c.Set(1, i)
	}
	spec := bcond.Spec{{Low: bcond.Cyclic, High: bcond.Cyclic}}
	bcond.FillAll(psi, spec, bcond.Scalar)
	bcond.FillAll(c, spec, bcond.VectorNormal)

	next := grid.NewArray([]int{n}, 1)
	DonorCellStep(next, psi, Faces{c}, nil, grid.Stripe{Lo: 0, Hi: n, Outer: n})

	for i := 0; i < n; i++ {
		if got := next.At(i); got != 1 {
			t.Errorf("psi(%d) = %v, want 1 (exact preservation at |C|=1)", i, got)
		}
	}
}

// Positivity (spec §8 invariant 1): psi >= 0 and |C| <= 1 implies the
// donor-cell update stays >= 0.
func TestDonorCellPositivity(t *testing.T) {
	n := 20
	psi := grid.NewArray([]int{n}, 1)
	for i := 0; i < n; i++ {
		if i == 5 {
			psi.Set(3, i)
		}
	}
	c := grid.NewArray([]int{n + 1}, 1)
	for i := 0; i <= n; i++ {
		c.Set(0.7, i)
	}
	spec := bcond.Spec{{Low: bcond.Cyclic, High: bcond.Cyclic}}

	next := grid.NewArray([]int{n}, 1)
	cur := psi
	for step := 0; step < 30; step++ {
		bcond.FillAll(cur, spec, bcond.Scalar)
		DonorCellStep(next, cur, Faces{c}, nil, grid.Stripe{Lo: 0, Hi: n, Outer: n})
		cur, next = next, cur
	}

	for i := 0; i < n; i++ {
		if got := cur.At(i); got < 0 {
			t.Errorf("step %d: psi(%d) = %v, want >= 0", 30, i, got)
		}
	}
}
