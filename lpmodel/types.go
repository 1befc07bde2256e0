package lpmodel

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

// Sentinel errors returned by the lpmodel package. All validation failures
// are detected before any matrix is allocated, so a failed Build never
// leaks a partially constructed program.
var (
	// ErrNilArray indicates that a nil *qarr.Array was passed to Build.
	ErrNilArray = errors.New("lpmodel: quantile array is nil")

	// ErrDimensionMismatch indicates inconsistent lengths across the
	// quantile array, responses, weights or levels.
	ErrDimensionMismatch = errors.New("lpmodel: dimension mismatch")

	// ErrInvalidQuantileLevels indicates levels that are not finite, not
	// inside (0,1), or not strictly increasing.
	ErrInvalidQuantileLevels = errors.New("lpmodel: quantile levels must be strictly increasing in (0,1)")

	// ErrInvalidGroups indicates a group assignment whose length differs
	// from the number of quantile levels.
	ErrInvalidGroups = errors.New("lpmodel: group assignment must cover every quantile level")

	// ErrBadWeights indicates a negative or non-finite observation weight.
	ErrBadWeights = errors.New("lpmodel: observation weights must be finite and non-negative")

	// ErrBadResponses indicates a NaN or ±Inf response value.
	ErrBadResponses = errors.New("lpmodel: responses must be finite")

	// ErrBadConstraintPoints indicates constraint points that are empty, of
	// the wrong width (≠ member count), or non-finite.
	ErrBadConstraintPoints = errors.New("lpmodel: invalid noncrossing constraint points")

	// ErrBadSolution indicates a solver solution vector too short to contain
	// every program variable.
	ErrBadSolution = errors.New("lpmodel: solution vector does not match program variables")
)

// Options configures LP construction.
//
// Noncrossing      – emit monotonicity rows between adjacent levels whose
//
//	groups differ. Off by default: unconstrained stacking
//	is the base formulation.
//
// ConstraintPoints – explicit m×p member-prediction points at which the
//
//	noncrossing rows are evaluated. Nil means the default
//	policy: every training observation's member rows at the
//	two adjacent levels. Ignored unless Noncrossing is set.
type Options struct {
	Noncrossing      bool
	ConstraintPoints [][]float64
}

// Option represents a functional option for configuring Build.
type Option func(*Options)

// WithNoncrossing enables noncrossing rows between adjacent levels whose
// groups differ. With the default constraint-point policy, the rows pin the
// stacked quantiles to be nondecreasing at every training observation.
func WithNoncrossing() Option {
	return func(o *Options) { o.Noncrossing = true }
}

// WithConstraintPoints supplies explicit noncrossing evaluation points: m
// rows of p member values each. Each point contributes one row per adjacent
// differing-group level pair, with the same point on both sides. Implies
// nothing on its own — combine with WithNoncrossing.
//
// The points are validated (width p, finite entries) during Build, not here.
func WithConstraintPoints(pts [][]float64) Option {
	return func(o *Options) { o.ConstraintPoints = pts }
}

// DefaultOptions returns the documented defaults: no noncrossing rows, no
// explicit constraint points.
func DefaultOptions() Options {
	return Options{}
}

// Program is a quantile-stacking LP in general form:
//
//	minimize  Cᵀ·x
//	s.t.      G·x ≤ H
//	          A·x = B
//
// Variable layout (columns of G and A, entries of C):
//
//	[0, NumWeights)          α weight variables, ordered by (group, member)
//	                         with groups in order of first appearance along
//	                         increasing level index
//	[NumWeights, NumVars)    u slack variables, ordered by (observation, level)
//
// Row layout of G:
//
//	2·n·r epigraph rows by (observation, level, side), side 0 = τ piece,
//	side 1 = (τ−1) piece; then one −α[j,g] ≤ 0 row per (group, member);
//	then noncrossing rows by (adjacent level pair, point).
//
// Rows of A: one simplex row Σ_j α[j,g] = 1 per group, in group order.
//
// A Program is immutable by convention once returned from Build; solvers
// must treat it as read-only.
type Program struct {
	C []float64 // objective coefficients, length NumVars
	G *mat.Dense
	H []float64
	A *mat.Dense
	B []float64

	numObs     int
	numMembers int
	numLevels  int
	numGroups  int
	groupOf    []int // dense group index per level, length numLevels
}

// NumVars returns the total variable count: weights plus slacks.
func (p *Program) NumVars() int { return p.NumWeights() + p.numObs*p.numLevels }

// NumObs returns the observation count the program was built over.
func (p *Program) NumObs() int { return p.numObs }

// NumWeights returns the number of α variables (groups × members).
func (p *Program) NumWeights() int { return p.numGroups * p.numMembers }

// NumGroups returns the number of distinct level groups.
func (p *Program) NumGroups() int { return p.numGroups }

// NumMembers returns the ensemble member count.
func (p *Program) NumMembers() int { return p.numMembers }

// NumLevels returns the quantile level count.
func (p *Program) NumLevels() int { return p.numLevels }

// GroupOf returns the dense group index of level k.
// Panics via bounds check on invalid k; levels were validated at Build.
func (p *Program) GroupOf(k int) int { return p.groupOf[k] }

// WeightColumn returns the solution-vector column of α for member j in
// dense group g.
func (p *Program) WeightColumn(j, g int) int { return g*p.numMembers + j }

// ExtractWeights pulls the α variables out of a flat primal solution,
// shaped [group][member]. The solution may carry trailing entries beyond
// the program's variables (solver-internal slacks); it must cover at least
// NumVars entries or ExtractWeights fails with ErrBadSolution.
func (p *Program) ExtractWeights(x []float64) ([][]float64, error) {
	if len(x) < p.NumVars() {
		return nil, ErrBadSolution
	}
	out := make([][]float64, p.numGroups)
	for g := 0; g < p.numGroups; g++ {
		out[g] = make([]float64, p.numMembers)
		for j := 0; j < p.numMembers; j++ {
			out[g][j] = x[p.WeightColumn(j, g)]
		}
	}

	return out, nil
}
