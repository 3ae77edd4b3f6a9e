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

// Package errs holds the five error kinds the core raises (spec §7),
// following mpdatax's plain fmt.Errorf-with-prefix house style rather
// than a wrapping library: each kind is a small exported type so callers
// can errors.As onto the one they care about.
package errs

import "fmt"

// ConfigurationError reports an inconsistent solver configuration, e.g.
// fct requested without MPDATA, or prs_scheme set without a velocity
// equation to project.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("mpdatax: configuration error: %s", e.Reason)
}

// CFLViolation reports that |C_d| exceeded 1 at some face at step entry.
// Fatal: the cell and axis are reported so the caller can diagnose it.
type CFLViolation struct {
	Axis  int
	Index []int
	Value float64
}

func (e *CFLViolation) Error() string {
	return fmt.Sprintf("mpdatax: CFL violation on axis %d at %v: |C|=%g > 1", e.Axis, e.Index, e.Value)
}

// PressureNonConvergence reports that prs_maxiter was reached before
// prs_tol. Non-fatal: surfaced through the diagnostics channel, stepping
// continues.
type PressureNonConvergence struct {
	Scheme   string
	Iters    int
	Residual float64
	Tol      float64
}

func (e *PressureNonConvergence) Error() string {
	return fmt.Sprintf("mpdatax: pressure solver %s did not converge in %d iterations: residual=%g tol=%g",
		e.Scheme, e.Iters, e.Residual, e.Tol)
}

// OutputFailure wraps an error returned by an output adapter. It does
// not invalidate solver state.
type OutputFailure struct {
	Step int
	Err  error
}

func (e *OutputFailure) Error() string {
	return fmt.Sprintf("mpdatax: output adapter failed at step %d: %v", e.Step, e.Err)
}

func (e *OutputFailure) Unwrap() error { return e.Err }

// CancellationRequested reports a cooperative exit from Advance,
// observed at a step boundary.
type CancellationRequested struct {
	Step int
}

func (e *CancellationRequested) Error() string {
	return fmt.Sprintf("mpdatax: cancellation requested, stopped after step %d", e.Step)
}
