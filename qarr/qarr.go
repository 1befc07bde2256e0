package qarr

import (
	"errors"
	"fmt"
	"math"
)

// Sentinel errors returned by the qarr package.
var (
	// ErrBadShape indicates a non-positive dimension or a backing slice whose
	// length does not equal n·p·r.
	ErrBadShape = errors.New("qarr: invalid shape")

	// ErrOutOfRange indicates that an (observation, member, level) index is
	// outside valid bounds.
	ErrOutOfRange = errors.New("qarr: index out of range")

	// ErrNaNInf indicates a NaN or ±Inf value where finite values are required.
	ErrNaNInf = errors.New("qarr: NaN or Inf encountered")
)

// indexErrorf wraps an underlying error with accessor context.
func indexErrorf(method string, i, j, k int, err error) error {
	return fmt.Errorf("Array.%s(%d,%d,%d): %w", method, i, j, k, err)
}

// Array is a dense n×p×r quantile-prediction array.
// n is observations, p is ensemble members, r is quantile levels.
// data holds n·p·r elements in row-major (i, j, k) order.
type Array struct {
	n, p, r int
	data    []float64
}

// New creates an n×p×r Array initialized to zeros.
// Stage 1 (Validate): ensure all three dimensions > 0.
// Stage 2 (Prepare): allocate flat backing slice.
// Stage 3 (Finalize): return new Array or ErrBadShape.
// Complexity: O(n·p·r) time and memory.
func New(n, p, r int) (*Array, error) {
	if n <= 0 || p <= 0 || r <= 0 {
		return nil, fmt.Errorf("qarr: New(%d,%d,%d): %w", n, p, r, ErrBadShape)
	}

	return &Array{n: n, p: p, r: r, data: make([]float64, n*p*r)}, nil
}

// FromSlice creates an n×p×r Array from data laid out row-major in
// (observation, member, level) order. The slice is copied, not adopted.
// Stage 1 (Validate): dimensions > 0 and len(data) == n·p·r.
// Stage 2 (Validate): every entry finite (ErrNaNInf otherwise).
// Stage 3 (Finalize): copy into fresh storage and return.
// Complexity: O(n·p·r).
func FromSlice(n, p, r int, data []float64) (*Array, error) {
	if n <= 0 || p <= 0 || r <= 0 || len(data) != n*p*r {
		return nil, fmt.Errorf("qarr: FromSlice(%d,%d,%d) with %d values: %w",
			n, p, r, len(data), ErrBadShape)
	}
	for idx, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("qarr: FromSlice: value %g at flat index %d: %w", v, idx, ErrNaNInf)
		}
	}
	cp := make([]float64, len(data))
	copy(cp, data)

	return &Array{n: n, p: p, r: r, data: cp}, nil
}

// Dims returns (observations, members, levels).
// Complexity: O(1).
func (a *Array) Dims() (n, p, r int) {
	return a.n, a.p, a.r
}

// indexOf computes the flat index for (i, j, k) or returns ErrOutOfRange.
// Complexity: O(1).
func (a *Array) indexOf(method string, i, j, k int) (int, error) {
	if i < 0 || i >= a.n || j < 0 || j >= a.p || k < 0 || k >= a.r {
		return 0, indexErrorf(method, i, j, k, ErrOutOfRange)
	}

	return (i*a.p+j)*a.r + k, nil
}

// At retrieves member j's prediction at level k for observation i.
// Complexity: O(1).
func (a *Array) At(i, j, k int) (float64, error) {
	idx, err := a.indexOf("At", i, j, k)
	if err != nil {
		return 0, err
	}

	return a.data[idx], nil
}

// Set assigns member j's prediction at level k for observation i.
// Rejects NaN and ±Inf so the finiteness invariant survives mutation.
// Complexity: O(1).
func (a *Array) Set(i, j, k int, v float64) error {
	idx, err := a.indexOf("Set", i, j, k)
	if err != nil {
		return err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return indexErrorf("Set", i, j, k, ErrNaNInf)
	}
	a.data[idx] = v

	return nil
}

// Row returns a copy of the member-prediction vector (length p) for
// observation i at level k — the constraint-point shape consumed by
// noncrossing rows in the LP builder.
// Complexity: O(p).
func (a *Array) Row(i, k int) ([]float64, error) {
	if _, err := a.indexOf("Row", i, 0, k); err != nil {
		return nil, err
	}
	row := make([]float64, a.p)
	for j := 0; j < a.p; j++ {
		row[j] = a.data[(i*a.p+j)*a.r+k]
	}

	return row, nil
}

// Clone returns a deep copy of the Array.
// Complexity: O(n·p·r).
func (a *Array) Clone() *Array {
	cp := make([]float64, len(a.data))
	copy(cp, a.data)

	return &Array{n: a.n, p: a.p, r: a.r, data: cp}
}

// Value is the unchecked accessor for hot loops that have already validated
// dimensions once up front (LP construction, prediction). Out-of-range
// indices panic via the runtime bounds check; use At when indices are not
// known to be valid.
// Complexity: O(1).
func (a *Array) Value(i, j, k int) float64 {
	return a.data[(i*a.p+j)*a.r+k]
}
