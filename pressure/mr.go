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

package pressure

import "github.com/spatialmodel/mpdatax/grid"

// MR solves op(φ) = rhs by the (non-conjugate) minimum residual
// iteration: each step moves along the current residual direction by
// the step length that minimizes the Euclidean norm ‖r_{k+1}‖₂,
// rather than building a conjugate search-direction basis. It
// costs one operator application per iteration, like CG and CR, but
// carries no history between steps — libmpdata++ offers it as the
// cheapest fallback when a stencil's symmetry is marginal enough that
// conjugacy tends to drift.
func MR(ctx *grid.WorkerContext, ws *Workspace, op Operator, exchange func(*grid.Array),
	rhs, phi *grid.Array, domain grid.Domain, sums, maxr *Reducer, settings Settings) (Stats, error) {

	stripe := stripeDomain(domain, ctx.Stripe)

	if err := haloSync(ctx, exchange, phi); err != nil {
		return Stats{}, err
	}
	op(ws.Q, phi, stripe) // Q = A·φ₀
	ws.R.Assign(stripe, func(idx []int) float64 { return rhs.At(idx...) - ws.Q.At(idx...) }, rhs, ws.Q)

	for iter := 0; iter < settings.MaxIter; iter++ {
		resid, err := maxr.Global(ctx, maxAbs(ws.R, stripe))
		if err != nil {
			return Stats{}, err
		}
		if resid <= settings.Tol {
			return Stats{Iterations: iter, Residual: resid, Converged: true}, nil
		}

		if err := haloSync(ctx, exchange, ws.R); err != nil {
			return Stats{}, err
		}
		op(ws.Z, ws.R, stripe) // Z = A·r_k

		rAr, err := sums.Global(ctx, dot(ws.R, ws.Z, stripe))
		if err != nil {
			return Stats{}, err
		}
		zz, err := sums.Global(ctx, dot(ws.Z, ws.Z, stripe))
		if err != nil {
			return Stats{}, err
		}
		if zz == 0 {
			return Stats{Iterations: iter, Residual: resid, Converged: resid <= settings.Tol}, nil
		}
		alpha := rAr / zz

		axpy(phi, phi, ws.R, alpha, stripe)
		axpy(ws.R, ws.R, ws.Z, -alpha, stripe)
	}

	resid, err := maxr.Global(ctx, maxAbs(ws.R, stripe))
	if err != nil {
		return Stats{}, err
	}
	stats := Stats{Iterations: settings.MaxIter, Residual: resid, Converged: resid <= settings.Tol}
	if !stats.Converged {
		return stats, nonConvergence(MRScheme, stats, settings.Tol)
	}
	return stats, nil
}
