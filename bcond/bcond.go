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

// Package bcond fills halo cells per edge under one of four policies
// (spec §4.2), grounded on inmap's boundary-cell bookkeeping
// (westBoundary/eastBoundary/... in framework.go) generalized from a
// neighbor-pointer convention to a structured-array halo fill.
package bcond

import "github.com/spatialmodel/mpdatax/grid"

// Condition selects a halo-fill policy for one edge of one axis.
type Condition int

const (
	Cyclic Condition = iota
	Open
	Rigid
	Polar
)

// Side identifies the low or high edge of an axis.
type Side int

const (
	Low Side = iota
	High
)

// Kind distinguishes how a field's components behave under reflection:
// a scalar (ψ) or a vector component normal/tangential to the edge
// being filled. Rigid bcond sign-flips only the normal vector component
// (zero velocity at the wall); scalars and tangential components mirror
// the interior unchanged, the no-flux condition a rigid wall imposes on
// everything else.
type Kind int

const (
	Scalar Kind = iota
	VectorNormal
	VectorTangential
)

// Edge is the pair of policies bounding one axis.
type Edge struct {
	Low, High Condition
}

// Spec is the per-axis boundary condition configuration (spec §6 "bcond").
type Spec []Edge

// Fill writes the halo cells of a along axis/side under cond, treating
// the field as kind. The interior domain of a is unchanged.
func Fill(a *grid.Array, axis int, side Side, cond Condition, kind Kind) {
	switch cond {
	case Cyclic:
		fillCyclic(a, axis, side)
	case Open:
		fillOpen(a, axis, side)
	case Rigid:
		fillRigid(a, axis, side, kind)
	case Polar:
		fillPolar(a, axis, side, kind)
	}
}

// FillAll applies spec to every axis/side of a for a field of the given
// kind. Exchange order (spec §4.2) is the caller's responsibility: fill
// scalars for all equations before filling corrective velocities ahead
// of each non-first MPDATA pass, with a barrier on both sides.
func FillAll(a *grid.Array, spec Spec, kind Kind) {
	for axis, edge := range spec {
		Fill(a, axis, Low, edge.Low, kind)
		Fill(a, axis, High, edge.High, kind)
	}
}

// edgeDomain returns the halo-cell domain being written: h layers deep
// on the given axis/side, full extent on every other axis.
func edgeDomain(a *grid.Array, axis int, side Side) (domain grid.Domain, span int) {
	shape := a.Shape()
	halo := a.Halo()
	d := grid.NewDomain(shape).Widen(halo)
	span = shape[axis]
	if side == Low {
		d.Hi[axis] = d.Lo[axis] + halo // [-halo, 0)
	} else {
		d.Lo[axis] = d.Hi[axis] - halo // [span, span+halo)
	}
	return d, span
}

// depth returns how many cells into the halo idx sits along axis/side,
// where depth 1 is the layer immediately outside the interior.
func depth(idx []int, axis int, side Side, span int) int {
	if side == Low {
		return -idx[axis]
	}
	return idx[axis] - span + 1
}

func mirrorInterior(idx []int, axis int, side Side, span, d int) []int {
	out := append([]int(nil), idx...)
	if side == Low {
		out[axis] = d - 1 // ghost depth d <-> interior cell d-1 from that wall
	} else {
		out[axis] = span - d
	}
	return out
}

func wrapInterior(idx []int, axis int, side Side, span, d int) []int {
	out := append([]int(nil), idx...)
	if side == Low {
		out[axis] = span - d // wrap to the high edge's interior
	} else {
		out[axis] = d - 1 // wrap to the low edge's interior
	}
	return out
}

func fillCyclic(a *grid.Array, axis int, side Side) {
	d, span := edgeDomain(a, axis, side)
	grid.ForEach(d, func(idx []int) {
		depthHere := depth(idx, axis, side, span)
		src := wrapInterior(idx, axis, side, span, depthHere)
		a.Set(a.At(src...), idx...)
	})
}

func fillOpen(a *grid.Array, axis int, side Side) {
	d, span := edgeDomain(a, axis, side)
	grid.ForEach(d, func(idx []int) {
		// zero-gradient: every ghost layer replicates the boundary cell.
		boundary := append([]int(nil), idx...)
		if side == Low {
			boundary[axis] = 0
		} else {
			boundary[axis] = span - 1
		}
		a.Set(a.At(boundary...), idx...)
	})
}

func fillRigid(a *grid.Array, axis int, side Side, kind Kind) {
	d, span := edgeDomain(a, axis, side)
	grid.ForEach(d, func(idx []int) {
		depthHere := depth(idx, axis, side, span)
		src := mirrorInterior(idx, axis, side, span, depthHere)
		v := a.At(src...)
		if kind == VectorNormal {
			// odd reflection: the velocity normal to a rigid wall is
			// zero there, so its interpolated face value must vanish.
			v = -v
		}
		// Scalar and VectorTangential get even (no-flux) reflection:
		// the mirrored interior value, unchanged. Odd-reflecting a
		// scalar would force its wall value to zero and can hand
		// donor-cell a negative ghost next to a positive interior.
		a.Set(v, idx...)
	})
}

func fillPolar(a *grid.Array, axis int, side Side, kind Kind) {
	d, span := edgeDomain(a, axis, side)
	transverse := (axis + 1) % a.Dims()
	tSpan := a.Shape()[transverse]
	half := tSpan / 2
	grid.ForEach(d, func(idx []int) {
		depthHere := depth(idx, axis, side, span)
		src := mirrorInterior(idx, axis, side, span, depthHere)
		src[transverse] = ((src[transverse]+half)%tSpan + tSpan) % tSpan
		v := a.At(src...)
		if kind == VectorNormal {
			v = -v
		}
		a.Set(v, idx...)
	})
}
