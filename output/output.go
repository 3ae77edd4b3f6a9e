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

// Package output implements the solver.Output collaborators spec §4.11
// and §6 describe as external: a cadenced logger grounded on inmap.Log,
// and a snapshot recorder standing in for the excluded HDF5/gnuplot
// writers (spec §1 "deliberately out of scope... via interfaces only").
//
// spec §9's open question — libmpdata++ asserts n_dims<3 in its HDF5
// writer while also compiling a 3D FCT kernel — is resolved here by
// making both adapters dimension-agnostic: neither rejects a 3D field,
// leaving any such restriction to a concrete adapter that actually needs
// one (see DESIGN.md).
package output

import (
	"fmt"
	"io"
	"time"

	"github.com/spatialmodel/mpdatax/solver"
)

// NameUnit names one registered output variable (spec §6 "outvars").
type NameUnit struct {
	Name string
	Unit string
}

// LogWriter prints, at each output step, one line per registered field
// to an io.Writer, the same
// shape as inmap.Log's plain fmt.Fprintf progress line, generalized from
// a fixed set of fields to the caller's registered equation names.
type LogWriter struct {
	W       io.Writer
	Vars    map[int]NameUnit
	started time.Time
}

// NewLogWriter returns a LogWriter labelling equations per vars.
func NewLogWriter(w io.Writer, vars map[int]NameUnit) *LogWriter {
	return &LogWriter{W: w, Vars: vars, started: walltime()}
}

// Write implements solver.Output: it prints the step number, elapsed
// wall time, and the interior sum of every registered field.
func (l *LogWriter) Write(step int, fields map[int]solver.ReadOnly) error {
	elapsed := walltime().Sub(l.started)
	for e, f := range fields {
		nu := l.Vars[e]
		if _, err := fmt.Fprintf(l.W, "step=%d t=%s %s[%s]=%g\n", step, elapsed, nu.Name, nu.Unit, f.Sum()); err != nil {
			return err
		}
	}
	return nil
}

// walltime is split out so tests can stub wall-clock behavior without
// touching the step-driven Write contract.
var walltime = time.Now

// Recorder accumulates one Snapshot per output step in memory, a
// read-everything collaborator suitable for test harnesses and for
// feeding a format-specific writer (HDF5, gnuplot) that lives outside
// this module.
type Recorder struct {
	Vars      map[int]NameUnit
	Snapshots []Snapshot
}

// Snapshot is one (step, field_name) → array capture (spec §6
// "Persisted state").
type Snapshot struct {
	Step   int
	Fields map[string]*Dense
}

// NewRecorder returns a Recorder labelling equations per vars.
func NewRecorder(vars map[int]NameUnit) *Recorder {
	return &Recorder{Vars: vars}
}

// Write implements solver.Output by copying every registered field's
// interior into a Dense snapshot.
func (r *Recorder) Write(step int, fields map[int]solver.ReadOnly) error {
	snap := Snapshot{Step: step, Fields: make(map[string]*Dense, len(fields))}
	for e, f := range fields {
		snap.Fields[r.Vars[e].Name] = FromReadOnly(f)
	}
	r.Snapshots = append(r.Snapshots, snap)
	return nil
}
