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

package pressure

import "github.com/spatialmodel/mpdatax/grid"

// NewLaplacian builds the Operator for the standard second-order
// 2·NDims+1-point discrete Laplacian on a uniform grid with spacing d,
// the elliptic operator the pressure projection step inverts (spec §4.9
// "∇²φ = ∇·u*/Δt"). Callers exchange src's halo before every op(...)
// call; the stencil itself never touches a neighbour beyond halo 1.
func NewLaplacian(d []float64) Operator {
	inv2 := make([]float64, len(d))
	for i, di := range d {
		inv2[i] = 1 / (di * di)
	}
	return func(dst, src *grid.Array, domain grid.Domain) {
		dst.Assign(domain, func(idx []int) float64 {
			center := src.At(idx...)
			var v float64
			for axis, c := range inv2 {
				hi := append([]int(nil), idx...)
				hi[axis]++
				lo := append([]int(nil), idx...)
				lo[axis]--
				v += c * (src.At(hi...) - 2*center + src.At(lo...))
			}
			return v
		}, src)
	}
}
