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

// Package solver wires the grid, bcond, numerics, and pressure packages
// into the per-equation time-stepping state machine (spec §4.7) and its
// external construction/runtime API (spec §6).
package solver

import (
	"github.com/spatialmodel/mpdatax/bcond"
	"github.com/spatialmodel/mpdatax/errs"
	"github.com/spatialmodel/mpdatax/numerics"
	"github.com/spatialmodel/mpdatax/pressure"
)

// RHSScheme selects when a registered RHS contributes relative to the
// advection passes within a step (spec §4.8).
type RHSScheme int

const (
	NoRHS RHSScheme = iota
	EulerA          // full Δt·R applied before advection, using ψⁿ
	EulerB          // full Δt·R applied after advection, using ψⁿ⁺¹_adv
	Trapez          // half before using ψⁿ, half after using ψⁿ⁺¹_adv
)

// OutVar names one equation registered for output (spec §6 "outvars").
type OutVar struct {
	Name string
	Unit string
}

// Config is the solver's full construction-time configuration (spec §6
// "Solver construction").
type Config struct {
	NDims int
	NEqns int

	GridSize []int     // cell counts per axis, len == NDims
	D        []float64 // di, dj, dk spacings, len == NDims
	Dt       float64

	NIters int // MPDATA passes, >= 1; 1 means pure donor-cell

	Opts numerics.Options

	RHSScheme RHSScheme

	PrsScheme       pressure.Scheme
	PrsTol          float64
	PrsMaxIter      int
	ProjectVelocity bool // true when the Courant field is a prognostic velocity to project

	BCond bcond.Spec

	OutFreq int
	OutVars map[int]OutVar

	NThreads int
}

// Validate reports the inconsistent-configuration cases spec §7 kind 1
// names explicitly, plus the structural checks every other component
// assumes have already been enforced before construction.
func (c Config) Validate() error {
	switch {
	case c.NDims < 1 || c.NDims > 3:
		return &errs.ConfigurationError{Reason: "n_dims must be 1, 2, or 3"}
	case c.NEqns < 1:
		return &errs.ConfigurationError{Reason: "n_eqns must be positive"}
	case len(c.GridSize) != c.NDims:
		return &errs.ConfigurationError{Reason: "grid_size must have n_dims entries"}
	case len(c.D) != c.NDims:
		return &errs.ConfigurationError{Reason: "di/dj/dk must have n_dims entries"}
	case len(c.BCond) != c.NDims:
		return &errs.ConfigurationError{Reason: "bcond must specify one edge pair per axis"}
	case c.Dt <= 0:
		return &errs.ConfigurationError{Reason: "dt must be positive"}
	case c.NIters < 1:
		return &errs.ConfigurationError{Reason: "n_iters must be at least 1"}
	case c.Opts.Has(numerics.FCT) && c.NIters < 2:
		return &errs.ConfigurationError{Reason: "fct requires n_iters >= 2 (no MPDATA correction pass to limit)"}
	case c.PrsScheme != pressure.None && !c.ProjectVelocity:
		return &errs.ConfigurationError{Reason: "prs_scheme set without a velocity field to project"}
	case c.PrsScheme != pressure.None && c.PrsTol <= 0:
		return &errs.ConfigurationError{Reason: "prs_tol must be positive when prs_scheme is set"}
	case c.PrsScheme != pressure.None && c.PrsMaxIter < 1:
		return &errs.ConfigurationError{Reason: "prs_maxiter must be positive when prs_scheme is set"}
	case c.NThreads < 1:
		return &errs.ConfigurationError{Reason: "n_threads must be positive"}
	case c.OutFreq < 0:
		return &errs.ConfigurationError{Reason: "outfreq must be non-negative"}
	}
	for e := range c.OutVars {
		if e < 0 || e >= c.NEqns {
			return &errs.ConfigurationError{Reason: "outvars references an equation index out of range"}
		}
	}
	return nil
}
