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

package output

import (
	"github.com/ctessum/sparse"

	"github.com/spatialmodel/mpdatax/grid"
	"github.com/spatialmodel/mpdatax/solver"
)

// Dense is the array container a Snapshot stores a field in: a thin
// alias over ctessum/sparse.DenseArray, the same dense N-D container
// inmap uses for its own gridded output variables (vargrid.go's
// CTMData.Data, popgrid.go's population grids), standing in here for
// the HDF5/gnuplot writer's own array type that spec §1 excludes.
type Dense = sparse.DenseArray

// FromReadOnly copies a read-only grid view's interior into a freshly
// allocated Dense array.
func FromReadOnly(f solver.ReadOnly) *Dense {
	d := sparse.ZerosDense(f.Shape()...)
	grid.ForEach(f.Domain(), func(idx []int) {
		d.Set(f.At(idx...), idx...)
	})
	return d
}
