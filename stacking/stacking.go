package stacking

import (
	"context"
	"errors"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/qstack/lpmodel"
	"github.com/katalvlaran/qstack/pinball"
	"github.com/katalvlaran/qstack/qarr"
)

// Ensemble is a fitted quantile-stacking ensemble: per-group simplex weight
// vectors over the members, plus the level and group structure they were
// fit against. Immutable once returned by Fit; safe for concurrent reads.
type Ensemble struct {
	weights [][]float64 // [group][member], each row on the probability simplex
	tau     []float64   // quantile levels used for fitting
	groupOf []int       // dense group index per level
	members int
}

// Fit computes stacking weights for quantile array q, responses y and
// strictly increasing levels tau.
//
// Stage 1 (Build): delegate to lpmodel.Build; validation errors (dimension,
// level, group, weight) surface unchanged and no solver is invoked.
// Stage 2 (Solve): hand the program to the configured Solver.
// Stage 3 (Extract): pull α out of the primal solution, clamp negatives
// within the tolerance to exactly zero, renormalize each group onto the
// simplex when roundoff drifts its sum from one. This post-processing
// corrects solver noise only — structural failures were already reported.
//
// Solver failures come back as *FitError wrapping the outcome sentinel
// (ErrInfeasible, ErrUnbounded, ErrSolverTimeout, ErrSolverFailure) and
// carrying the problem dimensions. Fit never retries: infeasibility is a
// property of the inputs, not a transient fault.
func Fit(q *qarr.Array, y, tau []float64, opts ...Option) (*Ensemble, error) {
	o := gatherOptions(opts...)

	prog, err := buildProgram(q, y, tau, o)
	if err != nil {
		return nil, err
	}

	return solveProgram(prog, tau, o)
}

// FitMany fits one ensemble per grouping concurrently. Each grouping is a
// level-group assignment as in WithGroups; a nil entry means standard
// stacking. All fits share q, y, tau and the remaining options; each owns
// its program and result, so there is no shared mutable state.
//
// The context bounds the whole batch: cancellation stops unstarted fits,
// and a deadline expiry is reported as ErrSolverTimeout (the pass-through
// kind) inside a *FitError. Results align with groupings by index.
func FitMany(ctx context.Context, q *qarr.Array, y, tau []float64, groupings [][]int, opts ...Option) ([]*Ensemble, error) {
	if len(groupings) == 0 {
		return nil, nil
	}

	out := make([]*Ensemble, len(groupings))
	eg, ctx := errgroup.WithContext(ctx)
	for idx, groups := range groupings {
		idx, groups := idx, groups
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return ctxFitError(q, tau, groups, err)
			}
			ens, err := Fit(q, y, tau, append(append([]Option{}, opts...), WithGroups(groups))...)
			if err != nil {
				return err
			}
			out[idx] = ens

			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

// buildProgram maps fit options onto lpmodel.Build.
func buildProgram(q *qarr.Array, y, tau []float64, o Options) (*lpmodel.Program, error) {
	var buildOpts []lpmodel.Option
	if o.noncrossing {
		buildOpts = append(buildOpts, lpmodel.WithNoncrossing())
	}
	if o.constraintPoints != nil {
		buildOpts = append(buildOpts, lpmodel.WithConstraintPoints(o.constraintPoints))
	}

	return lpmodel.Build(q, y, tau, o.weights, o.groups, buildOpts...)
}

// solveProgram runs the solver and post-processes the weights.
func solveProgram(prog *lpmodel.Program, tau []float64, o Options) (*Ensemble, error) {
	x, err := o.solver.Solve(prog)
	if err != nil {
		return nil, fitError(prog, o, err)
	}
	alpha, err := prog.ExtractWeights(x)
	if err != nil {
		return nil, fitError(prog, o, fmt.Errorf("%v: %w", err, ErrSolverFailure))
	}
	for g := range alpha {
		if err = snapToSimplex(alpha[g], o.tolerance); err != nil {
			return nil, fitError(prog, o, err)
		}
	}

	groupOf := make([]int, prog.NumLevels())
	for k := range groupOf {
		groupOf[k] = prog.GroupOf(k)
	}
	tauCopy := make([]float64, len(tau))
	copy(tauCopy, tau)

	return &Ensemble{
		weights: alpha,
		tau:     tauCopy,
		groupOf: groupOf,
		members: prog.NumMembers(),
	}, nil
}

// snapToSimplex clamps solver noise in one group's weight vector: values
// within tol of zero become exactly zero, and the vector is rescaled when
// its sum drifts from one beyond tol. A non-positive sum cannot be
// rescaled and reports ErrDegenerateWeights.
func snapToSimplex(w []float64, tol float64) error {
	var sum float64
	for j, v := range w {
		if math.Abs(v) <= tol {
			v = 0
			w[j] = 0
		}
		sum += v
	}
	if sum <= 0 {
		return ErrDegenerateWeights
	}
	if math.Abs(sum-1) > tol {
		floats.Scale(1/sum, w)
	}

	return nil
}

// fitError wraps a solver outcome with the problem's dimensions.
func fitError(prog *lpmodel.Program, o Options, err error) *FitError {
	return &FitError{
		Obs:         prog.NumObs(),
		Members:     prog.NumMembers(),
		Levels:      prog.NumLevels(),
		Groups:      prog.NumGroups(),
		Noncrossing: o.noncrossing,
		Err:         err,
	}
}

// ctxFitError reports a context-terminated fit before the solver ran.
func ctxFitError(q *qarr.Array, tau []float64, groups []int, err error) *FitError {
	n, p, _ := q.Dims()
	cause := err
	if errors.Is(err, context.DeadlineExceeded) {
		cause = fmt.Errorf("%v: %w", err, ErrSolverTimeout)
	}
	distinct := map[int]struct{}{}
	for _, id := range groups {
		distinct[id] = struct{}{}
	}
	numGroups := len(distinct)
	if numGroups == 0 {
		numGroups = 1 // nil grouping is the single shared group
	}

	return &FitError{
		Obs:     n,
		Members: p,
		Levels:  len(tau),
		Groups:  numGroups,
		Err:     cause,
	}
}

// Members returns the ensemble member count p the weights were fit for.
func (e *Ensemble) Members() int { return e.members }

// Levels returns a copy of the quantile levels the ensemble was fit
// against.
func (e *Ensemble) Levels() []float64 {
	out := make([]float64, len(e.tau))
	copy(out, e.tau)

	return out
}

// Groups returns a copy of the dense group index per level.
func (e *Ensemble) Groups() []int {
	out := make([]int, len(e.groupOf))
	copy(out, e.groupOf)

	return out
}

// Coefficients returns a defensive copy of the fitted weights, shaped
// [group][member]. Every row is on the probability simplex.
func (e *Ensemble) Coefficients() [][]float64 {
	out := make([][]float64, len(e.weights))
	for g, row := range e.weights {
		out[g] = make([]float64, len(row))
		copy(out[g], row)
	}

	return out
}

// Weight returns the fitted weight of member j at quantile level k,
// resolving k through the level-group assignment.
func (e *Ensemble) Weight(j, k int) (float64, error) {
	if k < 0 || k >= len(e.groupOf) || j < 0 || j >= e.members {
		return 0, fmt.Errorf("stacking: Weight(%d,%d) outside %d members × %d levels: %w",
			j, k, e.members, len(e.groupOf), ErrShapeMismatch)
	}

	return e.weights[e.groupOf[k]][j], nil
}

// Predict combines member predictions in newQ into stacked quantile
// predictions, one row per observation and one column per level:
//
//	ŷ[i,k] = Σ_j α[j, g(k)] · newQ[i,j,k]
//
// newQ must carry the same member count and level count (same level
// identities, same order) the ensemble was fit with; its observation count
// is free. Weights are convex per group, so each ŷ[i,k] lies between the
// member minimum and maximum at (i,k).
// Complexity: O(n·p·r).
func (e *Ensemble) Predict(newQ *qarr.Array) (*mat.Dense, error) {
	if newQ == nil {
		return nil, fmt.Errorf("stacking: Predict: nil array: %w", ErrShapeMismatch)
	}
	n, p, r := newQ.Dims()
	if p != e.members || r != len(e.groupOf) {
		return nil, fmt.Errorf("stacking: Predict: got p=%d, r=%d, fitted with p=%d, r=%d: %w",
			p, r, e.members, len(e.groupOf), ErrShapeMismatch)
	}

	pred := mat.NewDense(n, r, nil)
	for i := 0; i < n; i++ {
		for k := 0; k < r; k++ {
			w := e.weights[e.groupOf[k]]
			var s float64
			for j := 0; j < p; j++ {
				s += w[j] * newQ.Value(i, j, k)
			}
			pred.Set(i, k, s)
		}
	}

	return pred, nil
}

// Score reports the per-level mean pinball loss of the stacked prediction
// on (q, y), optionally weighted by w (nil ⇒ unit weights). Lower is
// better; comparing Score outputs across group configurations is how the
// flexible/grouped/standard trade-off is usually judged.
func (e *Ensemble) Score(q *qarr.Array, y []float64, w []float64) ([]float64, error) {
	pred, err := e.Predict(q)
	if err != nil {
		return nil, err
	}
	n, _, r := q.Dims()
	if len(y) != n {
		return nil, fmt.Errorf("stacking: Score: %d responses for %d observations: %w",
			len(y), n, ErrShapeMismatch)
	}

	out := make([]float64, r)
	col := make([]float64, n)
	for k := 0; k < r; k++ {
		mat.Col(col, k, pred)
		s, err := pinball.Score(y, col, e.tau[k], w)
		if err != nil {
			return nil, fmt.Errorf("stacking: Score at level %g: %w", e.tau[k], err)
		}
		out[k] = s
	}

	return out, nil
}
