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

// Package grid implements the structured, halo-padded Cartesian arrays
// that every other mpdatax package reads and writes: rectangular index
// domains, shifted/widened views, and an aliasing-safe element-wise
// evaluator.
package grid

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Domain is a rectangular index range over an array's interior cells,
// expressed in axis-major order. Lo is inclusive, Hi is exclusive, so
// Hi[d]-Lo[d] is the extent along axis d.
type Domain struct {
	Lo []int
	Hi []int
}

// NewDomain builds a domain spanning [0,shape[d]) on every axis.
func NewDomain(shape []int) Domain {
	lo := make([]int, len(shape))
	hi := make([]int, len(shape))
	copy(hi, shape)
	return Domain{Lo: lo, Hi: hi}
}

// Dims reports the number of axes.
func (d Domain) Dims() int { return len(d.Lo) }

// Shape returns the per-axis extent Hi-Lo.
func (d Domain) Shape() []int {
	s := make([]int, d.Dims())
	for i := range s {
		s[i] = d.Hi[i] - d.Lo[i]
	}
	return s
}

// Widen returns i^k: the domain expanded by k cells on every side of
// every axis.
func (d Domain) Widen(k int) Domain {
	lo := make([]int, d.Dims())
	hi := make([]int, d.Dims())
	for i := range lo {
		lo[i] = d.Lo[i] - k
		hi[i] = d.Hi[i] + k
	}
	return Domain{Lo: lo, Hi: hi}
}

// Shift returns the domain translated by delta cells along axis.
// Used to build the ψ(i-1), ψ(i+1) neighbour domains a stencil reads.
func (d Domain) Shift(axis, delta int) Domain {
	lo := append([]int(nil), d.Lo...)
	hi := append([]int(nil), d.Hi...)
	lo[axis] += delta
	hi[axis] += delta
	return Domain{Lo: lo, Hi: hi}
}

// Face returns the staggered (i+½ in the spec's notation) domain for the
// face normal to axis lying between cell i and i+1 when side is +1, or
// between i-1 and i when side is -1. Face-centered arrays are stored with
// one extra element along axis relative to the cell-centered shape.
func (d Domain) Face(axis, side int) Domain {
	lo := append([]int(nil), d.Lo...)
	hi := append([]int(nil), d.Hi...)
	if side >= 0 {
		lo[axis]++
		hi[axis]++
	}
	return Domain{Lo: lo, Hi: hi}
}

func (d Domain) contains(idx []int) bool {
	for i, v := range idx {
		if v < d.Lo[i] || v >= d.Hi[i] {
			return false
		}
	}
	return true
}

// overlaps reports whether two domains share any index.
func (d Domain) overlaps(o Domain) bool {
	for i := range d.Lo {
		if d.Lo[i] >= o.Hi[i] || o.Lo[i] >= d.Hi[i] {
			return false
		}
	}
	return true
}

// Array is a dense, halo-padded, D-dimensional array of float64. Index 0
// along every axis refers to the first interior cell; indices
// -halo..-1 and shape[d]..shape[d]+halo-1 refer to ghost cells.
type Array struct {
	shape   []int
	halo    int
	strides []int
	data    []float64
}

// NewArray allocates an array with the given interior shape and halo
// width on every side of every axis.
func NewArray(shape []int, halo int) *Array {
	ndim := len(shape)
	padded := make([]int, ndim)
	strides := make([]int, ndim)
	n := 1
	for i := ndim - 1; i >= 0; i-- {
		padded[i] = shape[i] + 2*halo
		strides[i] = n
		n *= padded[i]
	}
	return &Array{
		shape:   append([]int(nil), shape...),
		halo:    halo,
		strides: strides,
		data:    make([]float64, n),
	}
}

// Shape returns the interior (non-halo) extents.
func (a *Array) Shape() []int { return append([]int(nil), a.shape...) }

// Halo returns the configured halo width.
func (a *Array) Halo() int { return a.halo }

// Dims returns the array's dimensionality (1, 2, or 3).
func (a *Array) Dims() int { return len(a.shape) }

// Domain returns the interior index domain [0,shape).
func (a *Array) Domain() Domain { return NewDomain(a.shape) }

func (a *Array) offset(idx []int) int {
	off := 0
	for i, v := range idx {
		off += (v + a.halo) * a.strides[i]
	}
	return off
}

// At returns the element at idx, where idx may reach into the halo.
func (a *Array) At(idx ...int) float64 { return a.data[a.offset(idx)] }

// Set assigns the element at idx.
func (a *Array) Set(v float64, idx ...int) { a.data[a.offset(idx)] = v }

// Same reports whether two arrays share underlying storage; used by the
// evaluator to decide whether an assignment must be staged through a
// scratch buffer.
func (a *Array) Same(b *Array) bool {
	return a != nil && b != nil && len(a.data) > 0 && len(b.data) > 0 && &a.data[0] == &b.data[0]
}

// Kernel computes the value to be written at idx, reading from whichever
// source arrays it closes over.
type Kernel func(idx []int) float64

// Assign evaluates kernel over every index in domain and writes the
// results into dst. If dst aliases any of sources (same backing array,
// which for mpdatax's ring-buffer fields happens whenever a stencil
// reads and writes the same time level), the results are staged into a
// scratch buffer first so that no write is observed by a read in the
// same pass — correctness does not depend on iteration order.
func (dst *Array) Assign(domain Domain, kernel Kernel, sources ...*Array) {
	aliased := false
	for _, s := range sources {
		if dst.Same(s) {
			aliased = true
			break
		}
	}
	shape := domain.Shape()
	idx := make([]int, domain.Dims())
	if !aliased {
		forEach(shape, idx, 0, func(rel []int) {
			abs := addIdx(domain.Lo, rel)
			dst.Set(kernel(abs), abs...)
		})
		return
	}
	n := 1
	for _, s := range shape {
		n *= s
	}
	scratch := make([]float64, n)
	strides := rowMajorStrides(shape)
	forEach(shape, idx, 0, func(rel []int) {
		abs := addIdx(domain.Lo, rel)
		off := 0
		for i, v := range rel {
			off += v * strides[i]
		}
		scratch[off] = kernel(abs)
	})
	forEach(shape, idx, 0, func(rel []int) {
		abs := addIdx(domain.Lo, rel)
		off := 0
		for i, v := range rel {
			off += v * strides[i]
		}
		dst.Set(scratch[off], abs...)
	})
}

// ForEach visits every index in domain in row-major order.
func ForEach(domain Domain, f func(idx []int)) {
	shape := domain.Shape()
	idx := make([]int, domain.Dims())
	forEach(shape, idx, 0, func(rel []int) {
		f(addIdx(domain.Lo, rel))
	})
}

func forEach(shape, idx []int, axis int, f func(idx []int)) {
	if axis == len(shape) {
		f(idx)
		return
	}
	for i := 0; i < shape[axis]; i++ {
		idx[axis] = i
		forEach(shape, idx, axis+1, f)
	}
}

func addIdx(a, b []int) []int {
	out := make([]int, len(a))
	for i := range a {
		out[i] = a[i] + b[i]
	}
	return out
}

func rowMajorStrides(shape []int) []int {
	strides := make([]int, len(shape))
	n := 1
	for i := len(shape) - 1; i >= 0; i-- {
		strides[i] = n
		n *= shape[i]
	}
	return strides
}

// Copy copies b's interior and halo contents into a; both must share the
// same shape and halo.
func (a *Array) Copy(b *Array) {
	if len(a.data) != len(b.data) {
		panic(fmt.Sprintf("mpdatax: grid.Array.Copy: shape mismatch %v vs %v", a.shape, b.shape))
	}
	copy(a.data, b.data)
}

// Sum returns the sum of all interior (non-halo) elements, used for mass
// conservation diagnostics. The interior is flattened into a plain slice
// and reduced with gonum/floats rather than an accumulating loop, the
// same reduction primitive inmap's io.go/vargrid.go reach for over
// []float64 data.
func (a *Array) Sum() float64 {
	return floats.Sum(a.flattenInterior())
}

// flattenInterior copies the interior (non-halo) elements of a into a
// freshly allocated, contiguous row-major slice.
func (a *Array) flattenInterior() []float64 {
	n := 1
	for _, s := range a.shape {
		n *= s
	}
	out := make([]float64, 0, n)
	ForEach(a.Domain(), func(idx []int) { out = append(out, a.At(idx...)) })
	return out
}

// MaxAbs returns the maximum absolute value over domain, used by the
// pressure solver's max-norm convergence check.
func (a *Array) MaxAbs(domain Domain) float64 {
	var m float64
	ForEach(domain, func(idx []int) {
		v := a.At(idx...)
		if v < 0 {
			v = -v
		}
		if v > m {
			m = v
		}
	})
	return m
}
