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

// ReadOnly wraps an Array so that callers across a package boundary
// (output adapters, spec §4.11 "Receives read-only views") cannot
// mutate grid state, while still sharing the same backing storage as
// whichever time level is currently active.
type ReadOnly struct {
	a *Array
}

// NewReadOnly wraps a for read-only access.
func NewReadOnly(a *Array) ReadOnly { return ReadOnly{a: a} }

// At returns the element at idx.
func (r ReadOnly) At(idx ...int) float64 { return r.a.At(idx...) }

// Shape returns the interior extents.
func (r ReadOnly) Shape() []int { return r.a.Shape() }

// Halo returns the configured halo width.
func (r ReadOnly) Halo() int { return r.a.Halo() }

// Dims returns the dimensionality.
func (r ReadOnly) Dims() int { return r.a.Dims() }

// Domain returns the interior index domain.
func (r ReadOnly) Domain() Domain { return r.a.Domain() }

// Sum returns the sum of interior elements.
func (r ReadOnly) Sum() float64 { return r.a.Sum() }
