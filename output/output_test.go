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
	"bytes"
	"strings"
	"testing"

	"github.com/spatialmodel/mpdatax/grid"
	"github.com/spatialmodel/mpdatax/solver"
)

func oneFieldView(n int, val float64) map[int]solver.ReadOnly {
	a := grid.NewArray([]int{n}, 1)
	for i := 0; i < n; i++ {
		a.Set(val, i)
	}
	return map[int]solver.ReadOnly{0: grid.NewReadOnly(a)}
}

func TestLogWriterWritesOneLinePerStep(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogWriter(&buf, map[int]NameUnit{0: {Name: "psi", Unit: "kg"}})

	if err := l.Write(10, oneFieldView(5, 2)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "step=10") {
		t.Errorf("output %q missing step number", out)
	}
	if !strings.Contains(out, "psi[kg]=10") {
		t.Errorf("output %q missing field sum (want psi[kg]=10)", out)
	}
}

func TestLogWriterMultipleWritesAppend(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogWriter(&buf, map[int]NameUnit{0: {Name: "psi", Unit: ""}})
	l.Write(0, oneFieldView(1, 1))
	l.Write(1, oneFieldView(1, 1))
	lines := strings.Count(buf.String(), "\n")
	if lines != 2 {
		t.Errorf("got %d lines, want 2", lines)
	}
}

func TestRecorderAccumulatesSnapshots(t *testing.T) {
	r := NewRecorder(map[int]NameUnit{0: {Name: "psi", Unit: "kg"}})
	if err := r.Write(0, oneFieldView(4, 3)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := r.Write(5, oneFieldView(4, 7)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(r.Snapshots) != 2 {
		t.Fatalf("got %d snapshots, want 2", len(r.Snapshots))
	}
	if r.Snapshots[1].Step != 5 {
		t.Errorf("Snapshots[1].Step = %d, want 5", r.Snapshots[1].Step)
	}
	d := r.Snapshots[1].Fields["psi"]
	for i := 0; i < 4; i++ {
		if got := d.Get(i); got != 7 {
			t.Errorf("snapshot value at %d = %v, want 7", i, got)
		}
	}
}

func TestFromReadOnlyCopiesInterior(t *testing.T) {
	a := grid.NewArray([]int{3, 3}, 1)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			a.Set(float64(i*3+j), i, j)
		}
	}
	d := FromReadOnly(grid.NewReadOnly(a))
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if got, want := d.Get(i, j), float64(i*3+j); got != want {
				t.Errorf("Get(%d,%d) = %v, want %v", i, j, got, want)
			}
		}
	}
}
