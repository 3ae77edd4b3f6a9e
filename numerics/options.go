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

// Options is the bitset of numeric options selecting which MPDATA
// pseudo-velocity terms the corrector computes (spec §6 "opts").
// mpdatax interprets the bitset via tagged dispatch rather than
// generating one monomorphized kernel per combination: NewCorrector
// captures the bitset once, and the per-face kernel in correctAxis
// tests each flag with Has as it runs, so the inner loop does branch
// on Options.
type Options uint8

const (
	FCT Options = 1 << iota
	IGA
	TOT
	DFL
	NUG
)

// Has reports whether opt is set.
func (o Options) Has(opt Options) bool { return o&opt != 0 }

const epsilon = 1e-10
