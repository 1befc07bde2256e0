package lpmodel_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/qstack/lpmodel"
	"github.com/katalvlaran/qstack/qarr"
)

// mustArray builds a qarr.Array or fails the test.
func mustArray(t *testing.T, n, p, r int, data []float64) *qarr.Array {
	t.Helper()
	a, err := qarr.FromSlice(n, p, r, data)
	require.NoError(t, err)

	return a
}

// TestBuild_SingleCell pins down the exact LP of the smallest instance:
// n=1, p=1, r=1, τ=0.5, y=2, q=3. Columns: [α, u].
func TestBuild_SingleCell(t *testing.T) {
	q := mustArray(t, 1, 1, 1, []float64{3})
	prog, err := lpmodel.Build(q, []float64{2}, []float64{0.5}, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, prog.NumVars())
	assert.Equal(t, 1, prog.NumWeights())
	assert.Equal(t, 1, prog.NumGroups())

	// Objective: only the slack is charged, with unit observation weight.
	assert.Equal(t, []float64{0, 1}, prog.C)

	// Epigraph rows for c ∈ {0.5, −0.5}: −c·q·α − u ≤ −c·y,
	// then the nonnegativity row −α ≤ 0.
	wantG := mat.NewDense(3, 2, []float64{
		-1.5, -1, // τ piece: −0.5·3·α − u ≤ −0.5·2
		1.5, -1, // (τ−1) piece: +0.5·3·α − u ≤ +0.5·2
		-1, 0, // −α ≤ 0
	})
	assert.True(t, mat.Equal(wantG, prog.G), "G mismatch:\ngot\n%v", mat.Formatted(prog.G))
	assert.Equal(t, []float64{-1, 1, 0}, prog.H)

	// One simplex row: α = 1.
	wantA := mat.NewDense(1, 2, []float64{1, 0})
	assert.True(t, mat.Equal(wantA, prog.A))
	assert.Equal(t, []float64{1}, prog.B)
}

// TestBuild_VariableAndRowCounts verifies the documented layout arithmetic
// for standard, grouped and flexible configurations.
func TestBuild_VariableAndRowCounts(t *testing.T) {
	n, p, r := 4, 3, 3
	q := mustArray(t, n, p, r, make([]float64, n*p*r))
	y := make([]float64, n)
	tau := []float64{0.1, 0.5, 0.9}

	cases := []struct {
		name       string
		groups     []int
		wantGroups int
	}{
		{"standard/nil", nil, 1},
		{"standard/uniform", []int{7, 7, 7}, 1},
		{"grouped", []int{0, 0, 1}, 2},
		{"flexible", []int{2, 1, 0}, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			prog, err := lpmodel.Build(q, y, tau, nil, tc.groups)
			require.NoError(t, err)

			assert.Equal(t, tc.wantGroups, prog.NumGroups())
			assert.Equal(t, tc.wantGroups*p, prog.NumWeights())
			assert.Equal(t, tc.wantGroups*p+n*r, prog.NumVars())

			rows, cols := prog.G.Dims()
			assert.Equal(t, 2*n*r+tc.wantGroups*p, rows, "no noncrossing rows by default")
			assert.Equal(t, prog.NumVars(), cols)

			eqRows, _ := prog.A.Dims()
			assert.Equal(t, tc.wantGroups, eqRows, "one simplex row per group")
		})
	}
}

// TestBuild_GroupOrderFollowsFirstAppearance verifies that arbitrary group
// ids map onto dense indices in order of first appearance along k.
func TestBuild_GroupOrderFollowsFirstAppearance(t *testing.T) {
	q := mustArray(t, 1, 1, 4, []float64{1, 2, 3, 4})
	prog, err := lpmodel.Build(q, []float64{0}, []float64{0.2, 0.4, 0.6, 0.8}, nil, []int{42, -1, 42, 9})
	require.NoError(t, err)

	assert.Equal(t, 3, prog.NumGroups())
	assert.Equal(t, []int{0, 1, 0, 2},
		[]int{prog.GroupOf(0), prog.GroupOf(1), prog.GroupOf(2), prog.GroupOf(3)})
}

// TestBuild_Deterministic verifies the reproducibility contract: two builds
// from identical inputs agree entry for entry, row for row.
func TestBuild_Deterministic(t *testing.T) {
	n, p, r := 5, 3, 4
	data := make([]float64, n*p*r)
	y := make([]float64, n)
	w := make([]float64, n)
	for i := range data {
		data[i] = math.Sin(float64(i)) // arbitrary but fixed
	}
	for i := range y {
		y[i] = float64(i) / 2
		w[i] = 1 + float64(i%3)
	}
	q := mustArray(t, n, p, r, data)
	tau := []float64{0.1, 0.25, 0.5, 0.75}
	groups := []int{0, 0, 1, 1}

	a, err := lpmodel.Build(q, y, tau, w, groups, lpmodel.WithNoncrossing())
	require.NoError(t, err)
	b, err := lpmodel.Build(q, y, tau, w, groups, lpmodel.WithNoncrossing())
	require.NoError(t, err)

	assert.Equal(t, a.C, b.C)
	assert.Equal(t, a.H, b.H)
	assert.Equal(t, a.B, b.B)
	assert.True(t, mat.Equal(a.G, b.G), "inequality matrices must be identical")
	assert.True(t, mat.Equal(a.A, b.A), "equality matrices must be identical")
}

// TestBuild_ObjectiveCarriesObservationWeights verifies that w lands on the
// slack columns and nowhere else.
func TestBuild_ObjectiveCarriesObservationWeights(t *testing.T) {
	n, p, r := 2, 1, 2
	q := mustArray(t, n, p, r, make([]float64, n*p*r))
	prog, err := lpmodel.Build(q, []float64{0, 0}, []float64{0.3, 0.6}, []float64{2, 5}, nil)
	require.NoError(t, err)

	// Columns: [α, u(0,0), u(0,1), u(1,0), u(1,1)].
	assert.Equal(t, []float64{0, 2, 2, 5, 5}, prog.C)
}

// TestBuild_NoncrossingRows verifies row emission policy: one row per
// (adjacent differing-group pair, training observation), none between
// levels sharing a group, and the exact coefficient pattern.
func TestBuild_NoncrossingRows(t *testing.T) {
	n, p, r := 2, 2, 3
	// Member j at level k for observation i: value 100i+10j+k.
	data := []float64{
		0, 1, 2, 10, 11, 12,
		100, 101, 102, 110, 111, 112,
	}
	q := mustArray(t, n, p, r, data)
	y := []float64{0, 0}
	tau := []float64{0.2, 0.5, 0.8}
	groups := []int{0, 0, 1} // only the (k=1, k=2) pair differs

	prog, err := lpmodel.Build(q, y, tau, nil, groups, lpmodel.WithNoncrossing())
	require.NoError(t, err)

	rows, _ := prog.G.Dims()
	base := 2*n*r + prog.NumWeights()
	assert.Equal(t, base+n, rows, "one noncrossing row per training observation for the single differing pair")

	// Row base+i: Σ_j α[j,0]·q[i,j,1] − Σ_j α[j,1]·q[i,j,2] ≤ 0.
	for i := 0; i < n; i++ {
		row := base + i
		for j := 0; j < p; j++ {
			lo, err := q.At(i, j, 1)
			require.NoError(t, err)
			hi, err := q.At(i, j, 2)
			require.NoError(t, err)
			assert.Equal(t, lo, prog.G.At(row, prog.WeightColumn(j, 0)), "low-side coefficient (i=%d,j=%d)", i, j)
			assert.Equal(t, -hi, prog.G.At(row, prog.WeightColumn(j, 1)), "high-side coefficient (i=%d,j=%d)", i, j)
		}
		assert.Equal(t, 0.0, prog.H[row])
	}
}

// TestBuild_NoncrossingSharedGroupEmitsNothing verifies that a single
// shared group never yields noncrossing rows even when requested.
func TestBuild_NoncrossingSharedGroupEmitsNothing(t *testing.T) {
	n, p, r := 3, 2, 2
	q := mustArray(t, n, p, r, make([]float64, n*p*r))
	prog, err := lpmodel.Build(q, make([]float64, n), []float64{0.4, 0.6}, nil, nil, lpmodel.WithNoncrossing())
	require.NoError(t, err)

	rows, _ := prog.G.Dims()
	assert.Equal(t, 2*n*r+prog.NumWeights(), rows)
}

// TestBuild_ExplicitConstraintPoints verifies explicit m×p points replace
// the training rows, with the same point on both sides of each pair.
func TestBuild_ExplicitConstraintPoints(t *testing.T) {
	n, p, r := 4, 2, 2
	q := mustArray(t, n, p, r, make([]float64, n*p*r))
	pts := [][]float64{{1, 2}, {3, 4}, {5, 6}}

	prog, err := lpmodel.Build(q, make([]float64, n), []float64{0.25, 0.75}, nil, []int{0, 1},
		lpmodel.WithNoncrossing(), lpmodel.WithConstraintPoints(pts))
	require.NoError(t, err)

	rows, _ := prog.G.Dims()
	base := 2*n*r + prog.NumWeights()
	require.Equal(t, base+len(pts), rows)

	for m, pt := range pts {
		row := base + m
		for j := 0; j < p; j++ {
			assert.Equal(t, pt[j], prog.G.At(row, prog.WeightColumn(j, 0)))
			assert.Equal(t, -pt[j], prog.G.At(row, prog.WeightColumn(j, 1)))
		}
	}
}

// TestBuild_ExtractWeights verifies the weight-column index round-trip.
func TestBuild_ExtractWeights(t *testing.T) {
	n, p, r := 1, 2, 2
	q := mustArray(t, n, p, r, make([]float64, n*p*r))
	prog, err := lpmodel.Build(q, []float64{0}, []float64{0.3, 0.7}, nil, []int{0, 1})
	require.NoError(t, err)

	// Hand-built solution: α columns first, ordered (group, member).
	x := make([]float64, prog.NumVars())
	x[prog.WeightColumn(0, 0)] = 0.25
	x[prog.WeightColumn(1, 0)] = 0.75
	x[prog.WeightColumn(0, 1)] = 0.5
	x[prog.WeightColumn(1, 1)] = 0.5

	alpha, err := prog.ExtractWeights(x)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{0.25, 0.75}, {0.5, 0.5}}, alpha)

	_, err = prog.ExtractWeights(x[:2])
	assert.ErrorIs(t, err, lpmodel.ErrBadSolution)
}
