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

import "testing"

func TestDomainWidenShiftFace(t *testing.T) {
	d := NewDomain([]int{4, 5})
	w := d.Widen(2)
	if w.Lo[0] != -2 || w.Hi[0] != 6 || w.Lo[1] != -2 || w.Hi[1] != 7 {
		t.Errorf("Widen(2) = %+v", w)
	}

	s := d.Shift(1, -1)
	if s.Lo[1] != -1 || s.Hi[1] != 4 {
		t.Errorf("Shift(1,-1) = %+v", s)
	}

	f := d.Face(0, 1)
	if f.Lo[0] != 1 || f.Hi[0] != 5 {
		t.Errorf("Face(0,+1) = %+v", f)
	}
}

func TestArraySetAt(t *testing.T) {
	a := NewArray([]int{3, 3}, 1)
	a.Set(7, 1, 1)
	if got := a.At(1, 1); got != 7 {
		t.Errorf("At(1,1) = %v, want 7", got)
	}
	// halo cell, untouched, should read zero until a bcond fills it.
	if got := a.At(-1, 0); got != 0 {
		t.Errorf("halo cell At(-1,0) = %v, want 0", got)
	}
}

func TestAssignAliasingIsOrderIndependent(t *testing.T) {
	a := NewArray([]int{5}, 1)
	for i := 0; i < 5; i++ {
		a.Set(float64(i), i)
	}
	// a(i) = a(i-1) computed from the pre-assignment field: every cell
	// should pick up its left neighbour's *old* value, not a value another
	// iteration already overwrote (spec §9's aliasing-correctness
	// requirement, §4.1's "lhs and rhs... share storage").
	domain := NewDomain([]int{5})
	restricted := Domain{Lo: []int{1}, Hi: []int{5}}
	a.Assign(restricted, func(idx []int) float64 {
		left := append([]int(nil), idx...)
		left[0]--
		return a.At(left...)
	}, a)

	want := []float64{0, 0, 1, 2, 3}
	for i := 0; i < 5; i++ {
		if a.At(i) != want[i] {
			t.Errorf("a(%d) = %v, want %v", i, a.At(i), want[i])
		}
	}
	_ = domain
}

func TestSumAndMaxAbs(t *testing.T) {
	a := NewArray([]int{4}, 1)
	for i := 0; i < 4; i++ {
		a.Set(float64(i)-1, i) // -1, 0, 1, 2
	}
	if got := a.Sum(); got != 2 {
		t.Errorf("Sum() = %v, want 2", got)
	}
	if got := a.MaxAbs(a.Domain()); got != 2 {
		t.Errorf("MaxAbs() = %v, want 2", got)
	}
}
