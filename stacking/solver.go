package stacking

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/katalvlaran/qstack/lpmodel"
)

// Solver is the external LP-solving capability: given a general-form
// program (minimize Cᵀx s.t. G·x ≤ H, A·x = B), return the primal solution
// for the program's variables, in the program's column order. The slice may
// be longer than prog.NumVars(); extra entries are ignored.
//
// Implementations must report structural outcomes through the package
// sentinels — ErrInfeasible, ErrUnbounded, ErrSolverTimeout — so callers
// can match them with errors.Is through the FitError wrapper. The core
// never inspects a solver's internals and never retries it.
type Solver interface {
	Solve(prog *lpmodel.Program) ([]float64, error)
}

// SimplexSolver solves stacking programs with gonum's pure-Go Dantzig
// simplex. The general-form program is converted to standard form (free
// variables split into positive and negative parts, inequality rows given
// slack columns) and the original variables are recovered from the split.
//
// The zero value is ready to use.
type SimplexSolver struct {
	// Tol is the simplex convergence tolerance. Zero means the package
	// default (1e-10).
	Tol float64
}

// simplexDefaultTol matches the tolerance gonum's lp examples use; tight
// enough that weight noise stays well inside DefaultTolerance clamping.
const simplexDefaultTol = 1e-10

// Solve implements Solver.
// Stage 1 (Convert): general form → standard form via lp.Convert; the
// standard-form variable layout is [x⁺ (nv), x⁻ (nv), slack (rows of G)].
// Stage 2 (Solve): lp.Simplex on the converted program.
// Stage 3 (Extract): x[i] = x⁺[i] − x⁻[i] for the program's nv variables.
// Errors: lp.ErrInfeasible → ErrInfeasible, lp.ErrUnbounded → ErrUnbounded,
// anything else → wrapped ErrSolverFailure.
func (s SimplexSolver) Solve(prog *lpmodel.Program) ([]float64, error) {
	tol := s.Tol
	if tol == 0 {
		tol = simplexDefaultTol
	}

	// Pass constraint blocks as untyped nils when absent: lp.Convert accepts
	// a missing block but not a typed-nil matrix.
	var gMat, aMat mat.Matrix
	if prog.G != nil {
		gMat = prog.G
	}
	if prog.A != nil {
		aMat = prog.A
	}
	cStd, aStd, bStd := lp.Convert(prog.C, gMat, prog.H, aMat, prog.B)
	_, xStd, err := lp.Simplex(cStd, aStd, bStd, tol, nil)
	if err != nil {
		switch {
		case errors.Is(err, lp.ErrInfeasible):
			return nil, ErrInfeasible
		case errors.Is(err, lp.ErrUnbounded):
			return nil, ErrUnbounded
		default:
			return nil, fmt.Errorf("stacking: simplex breakdown (%v): %w", err, ErrSolverFailure)
		}
	}

	nv := prog.NumVars()
	if len(xStd) < 2*nv {
		return nil, fmt.Errorf("stacking: simplex returned %d values for %d split variables: %w",
			len(xStd), 2*nv, ErrSolverFailure)
	}
	x := make([]float64, nv)
	for i := 0; i < nv; i++ {
		x[i] = xStd[i] - xStd[nv+i]
	}

	return x, nil
}
