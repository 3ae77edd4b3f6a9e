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

// CG solves op(φ) = rhs by conjugate gradient (spec §4.9), called
// identically by every worker in a grid.Driver.Run closure. Each worker
// only reads/writes its own stripe of domain; dot products and the
// max-norm residual check are combined globally via sums/maxr.
func CG(ctx *grid.WorkerContext, ws *Workspace, op Operator, exchange func(*grid.Array),
	rhs, phi *grid.Array, domain grid.Domain, sums, maxr *Reducer, settings Settings) (Stats, error) {

	stripe := stripeDomain(domain, ctx.Stripe)

	if err := haloSync(ctx, exchange, phi); err != nil {
		return Stats{}, err
	}
	op(ws.Q, phi, stripe) // Q = A·φ₀
	ws.R.Assign(stripe, func(idx []int) float64 { return rhs.At(idx...) - ws.Q.At(idx...) }, rhs, ws.Q)
	copyStripe(ws.P, ws.R, stripe)

	rr, err := sums.Global(ctx, dot(ws.R, ws.R, stripe))
	if err != nil {
		return Stats{}, err
	}

	for iter := 0; iter < settings.MaxIter; iter++ {
		resid, err := maxr.Global(ctx, maxAbs(ws.R, stripe))
		if err != nil {
			return Stats{}, err
		}
		if resid <= settings.Tol {
			return Stats{Iterations: iter, Residual: resid, Converged: true}, nil
		}

		if err := haloSync(ctx, exchange, ws.P); err != nil {
			return Stats{}, err
		}
		op(ws.Q, ws.P, stripe)
		pq, err := sums.Global(ctx, dot(ws.P, ws.Q, stripe))
		if err != nil {
			return Stats{}, err
		}
		if pq == 0 {
			return Stats{Iterations: iter, Residual: resid, Converged: resid <= settings.Tol}, nil
		}
		alpha := rr / pq

		axpy(phi, phi, ws.P, alpha, stripe)
		axpy(ws.R, ws.R, ws.Q, -alpha, stripe)

		rrNew, err := sums.Global(ctx, dot(ws.R, ws.R, stripe))
		if err != nil {
			return Stats{}, err
		}
		beta := rrNew / rr
		rr = rrNew

		// p_{k+1} = r_{k+1} + β·p_k
		axpy(ws.P, ws.R, ws.P, beta, stripe)
	}

	resid, err := maxr.Global(ctx, maxAbs(ws.R, stripe))
	if err != nil {
		return Stats{}, err
	}
	stats := Stats{Iterations: settings.MaxIter, Residual: resid, Converged: resid <= settings.Tol}
	if !stats.Converged {
		return stats, nonConvergence(CGScheme, stats, settings.Tol)
	}
	return stats, nil
}
