package lpmodel

import (
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/qstack/qarr"
)

// Build constructs the stacking LP for quantile array q, responses y,
// strictly increasing levels tau, observation weights w (nil ⇒ unit) and
// level-group assignment groups (nil ⇒ one shared group).
//
// Stage 1 (Validate): every precondition, before any allocation; see the
// sentinel set in types.go. Fail fast — no partial program escapes.
// Stage 2 (Layout): dense group indices, variable columns, row counts.
// Stage 3 (Fill): objective, epigraph rows, nonnegativity rows, optional
// noncrossing rows, simplex equality rows — all in fixed iteration order.
//
// Build is a pure function: identical inputs yield an identical Program,
// including row and column ordering, so solver output is reproducible.
// Complexity: O(n·r·p) time and O((n·r + G·p)·(G·p + n·r)) memory for the
// dense constraint matrix, G = number of groups.
func Build(q *qarr.Array, y, tau, w []float64, groups []int, opts ...Option) (*Program, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	// Validate everything up front.
	if err := validateInputs(q, y, tau, w, groups, o); err != nil {
		return nil, err
	}
	n, p, r := q.Dims()

	// Resolve the group layout.
	groupOf, numGroups := denseGroups(groups, r)

	prog := &Program{
		numObs:     n,
		numMembers: p,
		numLevels:  r,
		numGroups:  numGroups,
		groupOf:    groupOf,
	}
	nW := prog.NumWeights() // α columns: [0, nW)
	nv := prog.NumVars()    // slack columns: [nW, nv), ordered (i, k)

	// Row counts: two epigraph rows per (i,k), one nonnegativity row per α,
	// and one noncrossing row per (adjacent differing-group pair, point).
	ncPairs := 0
	if o.Noncrossing {
		for k := 0; k+1 < r; k++ {
			if groupOf[k] != groupOf[k+1] {
				ncPairs++
			}
		}
	}
	pointsPerPair := n
	if o.ConstraintPoints != nil {
		pointsPerPair = len(o.ConstraintPoints)
	}
	numIneq := 2*n*r + nW + ncPairs*pointsPerPair

	prog.C = make([]float64, nv)
	prog.G = mat.NewDense(numIneq, nv, nil)
	prog.H = make([]float64, numIneq)
	prog.A = mat.NewDense(numGroups, nv, nil)
	prog.B = make([]float64, numGroups)

	// Objective: minimize Σ_i Σ_k w[i]·u[i,k]. The α columns carry zero
	// objective weight; they enter only through the constraints.
	for i := 0; i < n; i++ {
		wi := 1.0
		if w != nil {
			wi = w[i]
		}
		for k := 0; k < r; k++ {
			prog.C[nW+i*r+k] = wi
		}
	}

	// Epigraph rows, ordered (i, k, side). Each pinball piece
	//   u ≥ c·(y − Σ_j α_j·q_j),  c ∈ {τ_k, τ_k−1}
	// becomes the ≤ row
	//   −c·Σ_j α_j·q_j − u ≤ −c·y.
	row := 0
	for i := 0; i < n; i++ {
		for k := 0; k < r; k++ {
			g := groupOf[k]
			uCol := nW + i*r + k
			for _, c := range [2]float64{tau[k], tau[k] - 1} {
				for j := 0; j < p; j++ {
					prog.G.Set(row, prog.WeightColumn(j, g), -c*q.Value(i, j, k))
				}
				prog.G.Set(row, uCol, -1)
				prog.H[row] = -c * y[i]
				row++
			}
		}
	}

	// Nonnegativity rows −α[j,g] ≤ 0, ordered (g, j). Slacks carry no
	// explicit bound: the two epigraph pieces already bound each u below.
	for g := 0; g < numGroups; g++ {
		for j := 0; j < p; j++ {
			prog.G.Set(row, prog.WeightColumn(j, g), -1)
			row++
		}
	}

	// Noncrossing rows: Σ_j α[j,gLo]·qLo[j] − Σ_j α[j,gHi]·qHi[j] ≤ 0 for
	// every adjacent level pair with differing groups, ordered (pair,
	// point). Default points are the training rows at the two levels;
	// explicit points are evaluated identically on both sides. Adjacent
	// levels sharing a group emit nothing.
	if o.Noncrossing {
		for k := 0; k+1 < r; k++ {
			gLo, gHi := groupOf[k], groupOf[k+1]
			if gLo == gHi {
				continue
			}
			if o.ConstraintPoints != nil {
				for _, pt := range o.ConstraintPoints {
					for j := 0; j < p; j++ {
						prog.G.Set(row, prog.WeightColumn(j, gLo), pt[j])
						prog.G.Set(row, prog.WeightColumn(j, gHi), -pt[j])
					}
					row++
				}
			} else {
				for i := 0; i < n; i++ {
					for j := 0; j < p; j++ {
						prog.G.Set(row, prog.WeightColumn(j, gLo), q.Value(i, j, k))
						prog.G.Set(row, prog.WeightColumn(j, gHi), -q.Value(i, j, k+1))
					}
					row++
				}
			}
		}
	}

	// Simplex equality rows: Σ_j α[j,g] = 1 per group, in group order.
	for g := 0; g < numGroups; g++ {
		for j := 0; j < p; j++ {
			prog.A.Set(g, prog.WeightColumn(j, g), 1)
		}
		prog.B[g] = 1
	}

	return prog, nil
}
