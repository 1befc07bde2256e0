package stacking

import (
	"errors"
	"fmt"
	"math"
)

// DefaultTolerance is the numerical tolerance used to clamp solver noise in
// fitted weights: negatives within the tolerance collapse to exactly zero,
// and group sums drifting from one beyond it trigger renormalization.
const DefaultTolerance = 1e-8

// Sentinel errors returned by the stacking package. Solver outcome kinds
// are propagated, not reinterpreted: an infeasible program is a structural
// property of the inputs, so nothing here retries.
var (
	// ErrInfeasible indicates the solver proved the stacking LP infeasible
	// (e.g. conflicting noncrossing constraints with too few members).
	ErrInfeasible = errors.New("stacking: problem is infeasible")

	// ErrUnbounded indicates the solver found the LP unbounded below. A
	// well-formed stacking program is never unbounded; this points at a
	// hand-built Program fed through WithSolver plumbing.
	ErrUnbounded = errors.New("stacking: problem is unbounded")

	// ErrSolverTimeout indicates the solving capability gave up on a time
	// bound. The core enforces no deadline of its own; this is a
	// pass-through kind for solvers (or contexts) that do.
	ErrSolverTimeout = errors.New("stacking: solver timed out")

	// ErrSolverFailure indicates a numerical solver breakdown that is none
	// of the structural kinds above (singular basis, failed pivot).
	ErrSolverFailure = errors.New("stacking: solver failure")

	// ErrShapeMismatch indicates a prediction-time array whose member or
	// level dimensions disagree with the fitted ensemble.
	ErrShapeMismatch = errors.New("stacking: array shape incompatible with fitted ensemble")

	// ErrDegenerateWeights indicates a solver solution whose group weights
	// could not be normalized onto the simplex (non-positive sum). Points
	// at a broken Solver implementation rather than bad data.
	ErrDegenerateWeights = errors.New("stacking: degenerate weight vector from solver")
)

// FitError reports a failed fit with enough context to tell a data-prep bug
// from a genuinely over-constrained ensembling problem. It wraps the solver
// outcome sentinel; match with errors.Is.
type FitError struct {
	Obs         int  // observations n
	Members     int  // ensemble members p
	Levels      int  // quantile levels r
	Groups      int  // distinct level groups
	Noncrossing bool // whether noncrossing rows were emitted
	Err         error
}

// Error implements the error interface.
func (e *FitError) Error() string {
	return fmt.Sprintf("stacking: fit failed (n=%d, p=%d, r=%d, groups=%d, noncrossing=%t): %v",
		e.Obs, e.Members, e.Levels, e.Groups, e.Noncrossing, e.Err)
}

// Unwrap exposes the underlying solver sentinel to errors.Is.
func (e *FitError) Unwrap() error { return e.Err }

// Options configures a fit. Zero value means: unit observation weights, one
// shared group across all levels, no noncrossing rows, SimplexSolver with
// its default tolerance, DefaultTolerance weight clamping.
type Options struct {
	weights          []float64
	groups           []int
	noncrossing      bool
	constraintPoints [][]float64
	solver           Solver
	tolerance        float64
}

// Option represents a functional option for configuring Fit and FitMany.
type Option func(*Options)

// WithWeights sets nonnegative observation weights (length n). Validation
// happens inside Build, against the array's dimensions.
func WithWeights(w []float64) Option {
	return func(o *Options) { o.weights = w }
}

// WithGroups assigns each quantile level a group id (length r). Levels
// sharing an id share one weight vector. Nil (the default) is standard
// stacking; a distinct id per level is fully flexible stacking.
func WithGroups(groups []int) Option {
	return func(o *Options) { o.groups = groups }
}

// WithNoncrossing emits monotonicity rows between adjacent levels whose
// groups differ, forcing stacked quantiles not to cross at the constraint
// points (training rows by default).
func WithNoncrossing() Option {
	return func(o *Options) { o.noncrossing = true }
}

// WithConstraintPoints supplies explicit m×p noncrossing evaluation points
// in place of the training rows. Only meaningful together with
// WithNoncrossing.
func WithConstraintPoints(pts [][]float64) Option {
	return func(o *Options) { o.constraintPoints = pts }
}

// WithSolver replaces the default SimplexSolver with another LP-solving
// capability satisfying the Solver contract.
func WithSolver(s Solver) Option {
	return func(o *Options) {
		if s == nil {
			panic("stacking: WithSolver: nil solver")
		}
		o.solver = s
	}
}

// WithTolerance sets the weight post-processing tolerance. Must be positive
// and finite; nonsensical values panic (programmer error).
func WithTolerance(tol float64) Option {
	if math.IsNaN(tol) || tol <= 0 || tol > 1 {
		panic("stacking: WithTolerance: tolerance must be in (0,1]")
	}

	return func(o *Options) { o.tolerance = tol }
}

// gatherOptions applies user setters on top of documented defaults.
func gatherOptions(user ...Option) Options {
	o := Options{
		solver:    SimplexSolver{},
		tolerance: DefaultTolerance,
	}
	for _, set := range user {
		set(&o)
	}

	return o
}
