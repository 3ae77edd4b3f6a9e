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

package solver

import (
	"github.com/spatialmodel/mpdatax/bcond"
	"github.com/spatialmodel/mpdatax/errs"
	"github.com/spatialmodel/mpdatax/grid"
	"github.com/spatialmodel/mpdatax/numerics"
	"github.com/spatialmodel/mpdatax/pressure"
)

// Output is the hook the solver invokes after ROTATE on every step s such
// that s mod outfreq == 0 (spec §4.11). Implementations must not mutate
// the views they are handed.
type Output interface {
	Write(step int, fields map[int]grid.ReadOnly) error
}

// ReadOnly is reused from grid (see grid/view.go); aliased here for
// readability at the solver call site.
type ReadOnly = grid.ReadOnly

// Solver is the per-equation time-stepping state machine (spec §4.7): it
// owns a grid.Pool, drives donor-cell/MPDATA/FCT advection through
// numerics, optionally projects the Courant field through pressure, and
// dispatches registered RHS hooks around the advection step. It is built
// from a Config (spec §6 "Solver construction") and driven by Advance
// (spec §6 "Runtime API").
type Solver struct {
	cfg       Config
	pool      *grid.Pool
	corrector numerics.Corrector
	bcScalar  bcond.Spec

	rhs     map[int]RHS        // single-equation RHS hooks, keyed by equation index
	coupled []coupledGroup     // groups of equations advanced jointly by a CoupledRHS
	output  Output
	ws      *pressure.Workspace
	sums    *pressure.Reducer
	maxr    *pressure.Reducer
	lap     pressure.Operator

	step int // total steps executed across all Advance calls
}

type coupledGroup struct {
	eqns []int
	rhs  CoupledRHS
	buf  []*grid.Array // scratch reused every call instead of reallocated (spec §5)
}

// New constructs a Solver from a validated Config. The pool's field
// buffers are allocated once here (spec §3 "Lifecycle"); the stepping
// path still allocates temporaries: Assign's staging buffer for aliased
// writes, per-cell index slices, and the pressure solver's flattened
// stripes.
func New(cfg Config) (*Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	halo := 1
	nTlev := 2
	if cfg.Opts.Has(numerics.FCT) {
		halo = 2
	}
	if cfg.Opts.Has(numerics.TOT) {
		halo = 2 // the third-order term reads ψ two cells from a face
		nTlev = 3
	}

	spec := grid.Spec{NDims: cfg.NDims, Span: cfg.GridSize, D: cfg.D, Dt: cfg.Dt}
	pool, err := grid.NewPool(spec, cfg.NEqns, halo, nTlev, cfg.NThreads)
	if err != nil {
		return nil, err
	}
	if cfg.Opts.Has(numerics.NUG) {
		pool.EnableWeight()
	}

	s := &Solver{
		cfg:       cfg,
		pool:      pool,
		corrector: numerics.NewCorrector(cfg.Opts),
		bcScalar:  cfg.BCond,
		rhs:       make(map[int]RHS),
	}

	if cfg.PrsScheme != pressure.None {
		pool.EnablePressure()
		s.ws = pressure.NewWorkspace(cfg.GridSize, halo)
		s.sums = pressure.NewSumReducer()
		s.maxr = pressure.NewMaxReducer()
		s.lap = pressure.NewLaplacian(cfg.D)
	}

	return s, nil
}

// Advectee returns a writable view onto ψ[e]'s active time level, the
// handle callers use to seed the initial condition (spec §6 "advectee").
func (s *Solver) Advectee(e int) *grid.Array { return s.pool.State(e) }

// Courant returns the writable face-centered Courant views, one per
// axis, that callers seed the initial velocity field into (spec §6
// "courant").
func (s *Solver) Courant() []*grid.Array { return s.pool.C }

// State returns a read-only view onto ψ[e]'s active time level, the
// post-step output access point (spec §6 "state").
func (s *Solver) State(e int) ReadOnly { return grid.NewReadOnly(s.pool.State(e)) }

// SetRHS registers a single-equation RHS hook for equation e, applied
// around the advection step per the solver's rhs_scheme (spec §4.8).
func (s *Solver) SetRHS(e int, r RHS) { s.rhs[e] = r }

// SetCoupledRHS registers a CoupledRHS hook advancing the given
// equations jointly (spec §4.8 "implicit coupled").
func (s *Solver) SetCoupledRHS(eqns []int, r CoupledRHS) {
	s.coupled = append(s.coupled, coupledGroup{eqns: eqns, rhs: r, buf: make([]*grid.Array, len(eqns))})
}

// SetOutput registers the adapter invoked every outfreq steps (spec
// §4.11). Nil disables output regardless of OutFreq.
func (s *Solver) SetOutput(o Output) { s.output = o }

// RequestCancel asks the solver to stop at the next step boundary (spec
// §7 "CancellationRequested").
func (s *Solver) RequestCancel() { s.pool.Driver.RequestCancel() }

// Advance runs nt steps synchronously (spec §6 "advance"). Re-entrant:
// a subsequent Advance resumes from the state left by the previous call.
// The worker pool is spawned once for the whole call and joined on
// return, so thread identity (WorkerContext.Stripe) is stable across all
// nt steps (spec §4.10, §9). A PressureNonConvergence does not end the
// loop; the last one seen is returned after all nt steps have run.
func (s *Solver) Advance(nt int) error {
	return s.pool.Driver.Run(func(ctx *grid.WorkerContext) error {
		var nonConv error
		for i := 0; i < nt; i++ {
			if ctx.Cancelled() {
				if ctx.Stripe.ID == 0 {
					ctx.Raise(&errs.CancellationRequested{Step: s.step})
				}
				return ctx.Barrier()
			}
			if err := s.step1(ctx); err != nil {
				if _, ok := err.(*errs.PressureNonConvergence); !ok {
					return err
				}
				nonConv = err
			}
		}
		return nonConv
	})
}

// step1 runs one pass of HALO_FILL_PSI → RHS_PRE → ADVECT → RHS_POST →
// ROTATE → OUTPUT? (spec §4.7), restricted to the calling worker's
// stripe between barriers.
func (s *Solver) step1(ctx *grid.WorkerContext) error {
	if err := s.haloFillAllPsi(ctx); err != nil {
		return err
	}
	if err := s.checkCFL(ctx); err != nil {
		return err
	}
	if err := s.applyRHS(ctx, PhasePre, 0.5); err != nil {
		return err
	}
	if err := s.advect(ctx); err != nil {
		return err
	}
	var nonConv error
	if s.cfg.PrsScheme != pressure.None {
		if err := s.project(ctx); err != nil {
			if _, ok := err.(*errs.PressureNonConvergence); !ok {
				return err
			}
			nonConv = err
		}
	}
	if err := s.applyRHS(ctx, PhasePost, 0.5); err != nil {
		return err
	}
	if err := s.rotate(ctx); err != nil {
		return err
	}
	if err := s.maybeOutput(ctx); err != nil {
		return err
	}
	return nonConv
}

// haloFillAllPsi fills the halos of every equation's active ψ level
// (spec §4.2 exchange order (a)). Only stripe 0 performs the write
// (bcond fills full-extent edge slabs, not per-stripe slices); every
// worker crosses the barrier on both sides so producers have flushed
// before any consumer reads (spec §4.2, §5).
func (s *Solver) haloFillAllPsi(ctx *grid.WorkerContext) error {
	if err := ctx.Barrier(); err != nil {
		return err
	}
	if ctx.Stripe.ID == 0 {
		for e := 0; e < s.pool.NEqns(); e++ {
			bcond.FillAll(s.pool.State(e), s.bcScalar, bcond.Scalar)
		}
	}
	return ctx.Barrier()
}

// checkCFL raises a fatal CFLViolation (spec §7 kind 2) if any face
// Courant component exceeds 1 in magnitude at step entry. Every worker
// scans its own stripe of each face field; ctx.Raise is safe to call
// from multiple workers concurrently (the error latch keeps the first).
func (s *Solver) checkCFL(ctx *grid.WorkerContext) error {
	for d, c := range s.pool.C {
		stripe := grid.StripeDomain(c.Domain(), ctx.Stripe)
		var bad []int
		var badVal float64
		grid.ForEach(stripe, func(idx []int) {
			v := c.At(idx...)
			if v < 0 {
				v = -v
			}
			if v > 1 && bad == nil {
				bad = append([]int(nil), idx...)
				badVal = v
			}
		})
		if bad != nil {
			ctx.Raise(&errs.CFLViolation{Axis: d, Index: bad, Value: badVal})
			break
		}
	}
	return ctx.Barrier()
}

// advect runs the donor-cell pass followed by n_iters-1 MPDATA
// correction passes (spec §4.5), refilling ψ's halo before each
// corrective pass; the halos of the correction-velocity arrays (CCorr,
// GCMono) are not exchanged. FCT extrema are computed once per step from
// the pre-advection field, as libmpdata++'s fct_init does, and the
// limiter is applied on every corrective pass. Every worker computes
// over its own stripe of the grid, the same decomposition the pressure
// package already uses; only the bcond edge-fill between corrective
// passes stays single-writer, since it touches the grid's full-extent
// boundary slabs rather than a per-worker slice.
func (s *Solver) advect(ctx *grid.WorkerContext) error {
	for e := 0; e < s.pool.NEqns(); e++ {
		psi := s.pool.State(e)
		next := s.pool.NextState(e)

		if s.cfg.Opts.Has(numerics.FCT) {
			numerics.ExtremaInit(s.pool.PsiMin[e], s.pool.PsiMax[e], psi, ctx.Stripe)
		}
		if err := ctx.Barrier(); err != nil {
			return err
		}

		numerics.DonorCellStep(next, psi, numerics.Faces(s.pool.C), s.pool.G, ctx.Stripe)
		if err := ctx.Barrier(); err != nil {
			return err
		}

		for k := 1; k < s.cfg.NIters; k++ {
			if ctx.Stripe.ID == 0 {
				bcond.FillAll(next, s.bcScalar, bcond.Scalar)
			}
			if err := ctx.Barrier(); err != nil {
				return err
			}

			advectVel := numerics.Faces(s.pool.CCorr)
			s.corrector(advectVel, next, numerics.Faces(s.pool.C), s.pool.G, ctx.Stripe)
			if err := ctx.Barrier(); err != nil {
				return err
			}

			if s.cfg.Opts.Has(numerics.FCT) {
				numerics.Betas(s.pool.BetaUp[e], s.pool.BetaDn[e], next, s.pool.PsiMin[e], s.pool.PsiMax[e],
					numerics.Faces(s.pool.CCorr), s.pool.G, ctx.Stripe)
				if err := ctx.Barrier(); err != nil {
					return err
				}
				numerics.Monotonize(numerics.Faces(s.pool.GCMono), numerics.Faces(s.pool.CCorr),
					s.pool.BetaUp[e], s.pool.BetaDn[e], ctx.Stripe)
				advectVel = numerics.Faces(s.pool.GCMono)
				if err := ctx.Barrier(); err != nil {
					return err
				}
			}

			numerics.DonorCellStep(next, next, advectVel, s.pool.G, ctx.Stripe)
			if err := ctx.Barrier(); err != nil {
				return err
			}
		}
	}
	return nil
}

// project runs the configured Krylov pressure solve to enforce
// incompressibility (spec §4.9) and corrects every face's Courant field
// in place. PressureNonConvergence is non-fatal: it is returned but does
// not stop subsequent steps (spec §7 kind 3). rhs/phi are pool-owned
// buffers, filled and read in place every step rather than reallocated
// (spec §5 "no allocation during steady-state stepping").
func (s *Solver) project(ctx *grid.WorkerContext) error {
	rhs := s.pool.Rhs
	phi := s.pool.Phi
	stripe := grid.StripeDomain(rhs.Domain(), ctx.Stripe)
	divergence(rhs, s.pool.C, s.cfg.D, stripe)
	if err := ctx.Barrier(); err != nil {
		return err
	}

	settings := pressure.Settings{Tol: s.cfg.PrsTol, MaxIter: s.cfg.PrsMaxIter}
	exchange := func(a *grid.Array) { bcond.FillAll(a, s.bcScalar, bcond.Scalar) }

	var stats pressure.Stats
	var err error
	switch s.cfg.PrsScheme {
	case pressure.CGScheme:
		stats, err = pressure.CG(ctx, s.ws, s.lap, exchange, rhs, phi, phi.Domain(), s.sums, s.maxr, settings)
	case pressure.CRScheme:
		stats, err = pressure.CR(ctx, s.ws, s.lap, exchange, rhs, phi, phi.Domain(), s.sums, s.maxr, settings)
	case pressure.MRScheme:
		stats, err = pressure.MR(ctx, s.ws, s.lap, exchange, rhs, phi, phi.Domain(), s.sums, s.maxr, settings)
	}
	_ = stats

	var nonConv *errs.PressureNonConvergence
	if err != nil {
		if !isNonConvergence(err, &nonConv) {
			return err
		}
	}

	if ctx.Stripe.ID == 0 {
		bcond.FillAll(phi, s.bcScalar, bcond.Scalar)
	}
	if berr := ctx.Barrier(); berr != nil {
		return berr
	}
	for d := range s.pool.C {
		cStripe := grid.StripeDomain(s.pool.C[d].Domain(), ctx.Stripe)
		pressure.Project(s.pool.C[d], phi, d, s.cfg.D[d], s.cfg.Dt, cStripe)
	}
	if berr := ctx.Barrier(); berr != nil {
		return berr
	}
	return err
}

func isNonConvergence(err error, target **errs.PressureNonConvergence) bool {
	nc, ok := err.(*errs.PressureNonConvergence)
	if ok {
		*target = nc
	}
	return ok
}

// divergence computes ∇·u* over domain from the face-centered Courant
// field, the right-hand side of the pressure Poisson equation.
// Restricted to the caller's stripe (spec §4.10, §5).
func divergence(dst *grid.Array, c []*grid.Array, d []float64, domain grid.Domain) {
	dst.Assign(domain, func(idx []int) float64 {
		var div float64
		for axis, cd := range c {
			hi := append([]int(nil), idx...)
			hi[axis]++
			div += (cd.At(hi...) - cd.At(idx...)) / d[axis]
		}
		return div
	})
}

// applyRHS dispatches single-equation and coupled RHS hooks for the
// given phase according to rhs_scheme (spec §4.8): euler_a applies the
// full contribution in PhasePre, euler_b in PhasePost, trapez splits the
// contribution across both phases at dtFraction 0.5/0.5. Every worker
// applies the hooks over its own stripe; RHS/CoupledRHS implementations
// restrict their writes to the domain they are handed (spec §4.10, §5).
func (s *Solver) applyRHS(ctx *grid.WorkerContext, phase Phase, trapezFraction float64) error {
	fraction, active := s.rhsFraction(phase, trapezFraction)
	if !active {
		return nil
	}
	for e, r := range s.rhs {
		psi := s.pool.State(e)
		domain := grid.StripeDomain(psi.Domain(), ctx.Stripe)
		r.ApplyRHS(fraction, psi, psi, domain)
	}
	for _, g := range s.coupled {
		for i, e := range g.eqns {
			g.buf[i] = s.pool.State(e)
		}
		domain := grid.StripeDomain(g.buf[0].Domain(), ctx.Stripe)
		g.rhs.ApplyCoupled(fraction, g.buf, g.buf, domain)
	}
	return ctx.Barrier()
}

func (s *Solver) rhsFraction(phase Phase, trapezFraction float64) (float64, bool) {
	switch s.cfg.RHSScheme {
	case EulerA:
		return 1, phase == PhasePre
	case EulerB:
		return 1, phase == PhasePost
	case Trapez:
		return trapezFraction, true
	default:
		return 0, false
	}
}

// rotate advances every equation's active time level (spec §3
// "Lifecycle": a logical index update, not a data copy) and the global
// step counter. Only stripe 0 mutates the shared pool state.
func (s *Solver) rotate(ctx *grid.WorkerContext) error {
	if ctx.Stripe.ID == 0 {
		for e := 0; e < s.pool.NEqns(); e++ {
			s.pool.Rotate(e)
		}
		s.step++
	}
	return ctx.Barrier()
}

// maybeOutput invokes the registered adapter when the step counter is a
// multiple of outfreq (spec §4.11). OutputFailure wraps adapter errors
// without invalidating solver state (spec §7 kind 4).
func (s *Solver) maybeOutput(ctx *grid.WorkerContext) error {
	if s.output == nil || s.cfg.OutFreq == 0 || ctx.Stripe.ID != 0 {
		return ctx.Barrier()
	}
	if s.step%s.cfg.OutFreq == 0 {
		fields := make(map[int]ReadOnly, len(s.cfg.OutVars))
		for e := range s.cfg.OutVars {
			fields[e] = s.State(e)
		}
		if err := s.output.Write(s.step, fields); err != nil {
			ctx.Raise(&errs.OutputFailure{Step: s.step, Err: err})
		}
	}
	return ctx.Barrier()
}

// Step reports the number of steps executed so far across all Advance
// calls.
func (s *Solver) Step() int { return s.step }
