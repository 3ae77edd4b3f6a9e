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

package solver_test

import (
	"math"
	"testing"

	"github.com/spatialmodel/mpdatax/bcond"
	"github.com/spatialmodel/mpdatax/errs"
	"github.com/spatialmodel/mpdatax/numerics"
	"github.com/spatialmodel/mpdatax/pressure"
	"github.com/spatialmodel/mpdatax/solver"
)

func oneAxisCyclic() bcond.Spec {
	return bcond.Spec{{Low: bcond.Cyclic, High: bcond.Cyclic}}
}

// S1: 1D cyclic solid-body advection of an indicator profile must return
// to itself within L∞ error 0.2 after one full period, and conserve mass
// exactly under cyclic bcond and zero RHS (spec §8 scenario S1, invariant 3).
func TestS1CyclicSolidBody(t *testing.T) {
	n := 100
	cfg := solver.Config{
		NDims:     1,
		NEqns:     1,
		GridSize:  []int{n},
		D:         []float64{1},
		Dt:        1,
		NIters:    2,
		RHSScheme: solver.NoRHS,
		PrsScheme: pressure.None,
		BCond:     oneAxisCyclic(),
		NThreads:  4,
	}
	s, err := solver.New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	psi := s.Advectee(0)
	for i := 40; i < 60; i++ {
		psi.Set(1, i)
	}
	c := s.Courant()[0]
	for i := 0; i <= n; i++ {
		c.Set(0.5, i)
	}

	mass0 := sumState(s, n)

	if err := s.Advance(200); err != nil {
		t.Fatalf("Advance: %v", err)
	}

	mass1 := sumState(s, n)
	if math.Abs(mass1-mass0) > 1e-9 {
		t.Errorf("mass not conserved: %v -> %v", mass0, mass1)
	}

	st := s.State(0)
	var maxErr float64
	for i := 0; i < n; i++ {
		want := 0.0
		if i >= 40 && i < 60 {
			want = 1
		}
		if e := math.Abs(st.At(i) - want); e > maxErr {
			maxErr = e
		}
	}
	if maxErr > 0.2 {
		t.Errorf("L-inf error after one period = %v, want <= 0.2", maxErr)
	}
}

func sumState(s *solver.Solver, n int) float64 {
	v := s.State(0)
	var total float64
	for i := 0; i < n; i++ {
		total += v.At(i)
	}
	return total
}

// Invariant 5: two Advance(0) calls must leave the active time level
// untouched (spec §8 invariant 5).
func TestAdvanceZeroIsInvolution(t *testing.T) {
	cfg := solver.Config{
		NDims:     1,
		NEqns:     1,
		GridSize:  []int{10},
		D:         []float64{1},
		Dt:        1,
		NIters:    1,
		RHSScheme: solver.NoRHS,
		PrsScheme: pressure.None,
		BCond:     oneAxisCyclic(),
		NThreads:  1,
	}
	s, err := solver.New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	before := s.Advectee(0)
	if err := s.Advance(0); err != nil {
		t.Fatalf("Advance(0): %v", err)
	}
	if err := s.Advance(0); err != nil {
		t.Fatalf("Advance(0): %v", err)
	}
	if after := s.Advectee(0); before != after {
		t.Errorf("Advance(0) rotated the active time level")
	}
}

// Regression: the pressure projection must zero the divergence of every
// worker's stripe, not just the first one (spec §8 scenario S6,
// invariant 6), across a NThreads > 1 run.
func TestProjectZeroesDivergenceAcrossStripes(t *testing.T) {
	n := 16
	cfg := solver.Config{
		NDims:           2,
		NEqns:           1,
		GridSize:        []int{n, n},
		D:               []float64{1, 1},
		Dt:              1,
		NIters:          1,
		RHSScheme:       solver.NoRHS,
		PrsScheme:       pressure.CGScheme,
		PrsTol:          1e-7,
		PrsMaxIter:      2000,
		ProjectVelocity: true,
		BCond: bcond.Spec{
			{Low: bcond.Cyclic, High: bcond.Cyclic},
			{Low: bcond.Cyclic, High: bcond.Cyclic},
		},
		NThreads: 4,
	}
	s, err := solver.New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	psi := s.Advectee(0)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			psi.Set(1, i, j)
		}
	}

	k := 2 * math.Pi / float64(n)
	c := s.Courant()
	for i := 0; i <= n; i++ {
		for j := 0; j < n; j++ {
			c[0].Set(math.Sin(k*float64(i)), i, j)
		}
	}
	for i := 0; i < n; i++ {
		for j := 0; j <= n; j++ {
			c[1].Set(math.Sin(k*float64(j)), i, j)
		}
	}

	if err := s.Advance(1); err != nil {
		if _, ok := err.(*errs.PressureNonConvergence); !ok {
			t.Fatalf("Advance: %v", err)
		}
	}

	c = s.Courant()
	var maxDiv float64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			div := (c[0].At(i+1, j) - c[0].At(i, j)) + (c[1].At(i, j+1) - c[1].At(i, j))
			if d := math.Abs(div); d > maxDiv {
				maxDiv = d
			}
		}
	}
	if maxDiv > 1e-4 {
		t.Errorf("post-projection max |divergence| = %v over %d stripes, want <= 1e-4", maxDiv, cfg.NThreads)
	}
}

func TestConfigValidateFCTRequiresCorrectionPass(t *testing.T) {
	cfg := solver.Config{
		NDims:    1,
		NEqns:    1,
		GridSize: []int{10},
		D:        []float64{1},
		Dt:       1,
		NIters:   1,
		Opts:     numerics.FCT,
		BCond:    oneAxisCyclic(),
		NThreads: 1,
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected a ConfigurationError for fct with n_iters < 2")
	}
}

func TestConfigValidatePressureNeedsVelocity(t *testing.T) {
	cfg := solver.Config{
		NDims:      1,
		NEqns:      1,
		GridSize:   []int{10},
		D:          []float64{1},
		Dt:         1,
		NIters:     1,
		PrsScheme:  pressure.CGScheme,
		PrsTol:     1e-6,
		PrsMaxIter: 100,
		BCond:      oneAxisCyclic(),
		NThreads:   1,
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected a ConfigurationError for prs_scheme without a velocity field")
	}
}
