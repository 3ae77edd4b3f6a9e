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

package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"

	"github.com/spatialmodel/mpdatax/bcond"
	"github.com/spatialmodel/mpdatax/errs"
	"github.com/spatialmodel/mpdatax/numerics"
	"github.com/spatialmodel/mpdatax/pressure"
	"github.com/spatialmodel/mpdatax/solver"
)

const validTOML = `
n_dims = 1
n_eqns = 1
grid_size = [10]
spacing = [1.0]
dt = 0.5
n_iters = 2
opts = ["fct"]
rhs_scheme = "trapez"
prs_scheme = "none"
n_threads = 2

[[bcond]]
low = "cyclic"
high = "cyclic"
`

func fromTOML(t *testing.T, toml string) (solver.Config, error) {
	t.Helper()
	v := viper.New()
	v.SetConfigType("toml")
	if err := v.ReadConfig(bytes.NewBufferString(toml)); err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}
	return FromViper(v)
}

func TestFromViperParsesValidConfig(t *testing.T) {
	cfg, err := fromTOML(t, validTOML)
	if err != nil {
		t.Fatalf("FromViper: %v", err)
	}
	if cfg.NDims != 1 || cfg.NEqns != 1 {
		t.Errorf("got NDims=%d NEqns=%d, want 1,1", cfg.NDims, cfg.NEqns)
	}
	if len(cfg.GridSize) != 1 || cfg.GridSize[0] != 10 {
		t.Errorf("got GridSize=%v, want [10]", cfg.GridSize)
	}
	if !cfg.Opts.Has(numerics.FCT) {
		t.Error("expected fct option to be set")
	}
	if cfg.RHSScheme != solver.Trapez {
		t.Errorf("got RHSScheme=%v, want Trapez", cfg.RHSScheme)
	}
	if len(cfg.BCond) != 1 || cfg.BCond[0].Low != bcond.Cyclic || cfg.BCond[0].High != bcond.Cyclic {
		t.Errorf("got BCond=%v, want one cyclic/cyclic edge", cfg.BCond)
	}
}

func TestFromViperRejectsUnrecognizedOpt(t *testing.T) {
	toml := `
n_dims = 1
n_eqns = 1
grid_size = [10]
spacing = [1.0]
dt = 0.5
n_iters = 1
opts = ["not-a-real-option"]
rhs_scheme = "none"
prs_scheme = "none"
n_threads = 1

[[bcond]]
low = "cyclic"
high = "cyclic"
`
	_, err := fromTOML(t, toml)
	if err == nil {
		t.Fatal("expected an error for an unrecognized opt")
	}
	if _, ok := err.(*errs.ConfigurationError); !ok {
		t.Errorf("got %T, want *errs.ConfigurationError", err)
	}
}

func TestFromViperRejectsMismatchedBCondCount(t *testing.T) {
	toml := `
n_dims = 2
n_eqns = 1
grid_size = [10, 10]
spacing = [1.0, 1.0]
dt = 0.5
n_iters = 1
rhs_scheme = "none"
prs_scheme = "none"
n_threads = 1

[[bcond]]
low = "cyclic"
high = "cyclic"
`
	_, err := fromTOML(t, toml)
	if err == nil {
		t.Fatal("expected an error: bcond has one entry but n_dims is 2")
	}
}

func TestFromViperRejectsPrsSchemeWithoutVelocity(t *testing.T) {
	toml := `
n_dims = 1
n_eqns = 1
grid_size = [10]
spacing = [1.0]
dt = 0.5
n_iters = 1
rhs_scheme = "none"
prs_scheme = "cg"
prs_tol = 1e-6
prs_maxiter = 50
n_threads = 1

[[bcond]]
low = "cyclic"
high = "cyclic"
`
	_, err := fromTOML(t, toml)
	if err == nil {
		t.Fatal("expected a ConfigurationError: prs_scheme set without project_velocity")
	}
}

func TestWriteDefaultProducesLoadableFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mpdatax.toml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file to exist: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load(WriteDefault output): %v", err)
	}
	if cfg.PrsScheme != pressure.None {
		t.Errorf("default PrsScheme = %v, want None", cfg.PrsScheme)
	}
}
