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

// Spec is the rectilinear domain description from which a Pool is built:
// extent, spacing, and time step (spec §3 "Grid").
type Spec struct {
	NDims int       // 1, 2, or 3
	Span  []int     // cell counts per axis, len == NDims
	D     []float64 // cell spacings per axis, len == NDims
	Dt    float64   // time step
}
