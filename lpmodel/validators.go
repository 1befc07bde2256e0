package lpmodel

import (
	"fmt"
	"math"

	"github.com/katalvlaran/qstack/qarr"
)

// validateInputs checks every precondition of Build before any allocation.
// Error priority (documented, enforced in tests):
// nil array -> dimension mismatch -> bad levels -> bad groups -> bad
// weights -> bad responses -> bad constraint points.
func validateInputs(q *qarr.Array, y, tau, w []float64, groups []int, opts Options) error {
	if q == nil {
		return ErrNilArray
	}
	n, p, r := q.Dims()

	if len(y) != n {
		return fmt.Errorf("lpmodel: %d responses for %d observations: %w", len(y), n, ErrDimensionMismatch)
	}
	if len(tau) != r {
		return fmt.Errorf("lpmodel: %d levels for array with r=%d: %w", len(tau), r, ErrDimensionMismatch)
	}
	if w != nil && len(w) != n {
		return fmt.Errorf("lpmodel: %d weights for %d observations: %w", len(w), n, ErrDimensionMismatch)
	}

	if err := validateLevels(tau); err != nil {
		return err
	}

	if groups != nil && len(groups) != r {
		return fmt.Errorf("lpmodel: %d group ids for %d levels: %w", len(groups), r, ErrInvalidGroups)
	}

	for i, wi := range w {
		if math.IsNaN(wi) || math.IsInf(wi, 0) || wi < 0 {
			return fmt.Errorf("lpmodel: weight %g at index %d: %w", wi, i, ErrBadWeights)
		}
	}
	for i, yi := range y {
		if math.IsNaN(yi) || math.IsInf(yi, 0) {
			return fmt.Errorf("lpmodel: response %g at index %d: %w", yi, i, ErrBadResponses)
		}
	}

	if opts.Noncrossing && opts.ConstraintPoints != nil {
		if len(opts.ConstraintPoints) == 0 {
			return fmt.Errorf("lpmodel: empty constraint-point set: %w", ErrBadConstraintPoints)
		}
		for m, pt := range opts.ConstraintPoints {
			if len(pt) != p {
				return fmt.Errorf("lpmodel: constraint point %d has %d values, want %d: %w",
					m, len(pt), p, ErrBadConstraintPoints)
			}
			for j, v := range pt {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					return fmt.Errorf("lpmodel: constraint point %d member %d is %g: %w",
						m, j, v, ErrBadConstraintPoints)
				}
			}
		}
	}

	return nil
}

// validateLevels enforces the QuantileLevels invariant: finite, inside the
// open unit interval, strictly increasing.
func validateLevels(tau []float64) error {
	for k, t := range tau {
		if math.IsNaN(t) || t <= 0 || t >= 1 {
			return fmt.Errorf("lpmodel: level %g at index %d: %w", t, k, ErrInvalidQuantileLevels)
		}
		if k > 0 && t <= tau[k-1] {
			return fmt.Errorf("lpmodel: level %g at index %d not above %g: %w",
				t, k, tau[k-1], ErrInvalidQuantileLevels)
		}
	}

	return nil
}

// denseGroups maps arbitrary caller group ids onto dense indices
// 0..G-1 in order of first appearance along increasing level index.
// A nil assignment collapses every level into one shared group
// (standard stacking).
func denseGroups(groups []int, r int) (groupOf []int, numGroups int) {
	groupOf = make([]int, r)
	if groups == nil {
		return groupOf, 1 // all zeros: one shared group
	}
	seen := make(map[int]int, r)
	for k, id := range groups {
		dense, ok := seen[id]
		if !ok {
			dense = len(seen)
			seen[id] = dense
		}
		groupOf[k] = dense
	}

	return groupOf, len(seen)
}
