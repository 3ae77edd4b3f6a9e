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

// Project corrects a face-centered Courant field in place after a
// pressure solve, C(f) ← C(f) − Δt/d[axis]·(φ(i) − φ(i−1))/d[axis],
// restoring the divergence-free condition the advection step requires
// (spec §4.9 "project the predicted Courant field onto its
// divergence-free component"). Each worker restricts the write to its
// own stripe of the face domain; phi's halo must already be current.
func Project(c *grid.Array, phi *grid.Array, axis int, d, dt float64, domain grid.Domain) {
	scale := dt / (d * d)
	c.Assign(domain, func(idx []int) float64 {
		lo := append([]int(nil), idx...)
		lo[axis]--
		return c.At(idx...) - scale*(phi.At(idx...)-phi.At(lo...))
	}, c, phi)
}
