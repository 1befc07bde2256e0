package pinball

import (
	"errors"
	"math"
)

// Sentinel errors returned by the pinball package.
var (
	// ErrBadLevel indicates a quantile level outside the open interval (0,1)
	// or a non-finite level.
	ErrBadLevel = errors.New("pinball: level must lie in (0,1)")

	// ErrDimensionMismatch indicates that y, pred and w (when given) do not
	// share one positive length.
	ErrDimensionMismatch = errors.New("pinball: dimension mismatch")

	// ErrBadWeight indicates a negative or non-finite observation weight.
	ErrBadWeight = errors.New("pinball: weights must be finite and non-negative")
)

// Loss returns the pinball loss ψ_τ(v) = max(τ·v, (τ−1)·v) of residual v at
// level tau. The caller is responsible for tau ∈ (0,1); Loss itself is a
// branch, not a validator, so it stays cheap inside scoring loops.
// Complexity: O(1).
func Loss(tau, v float64) float64 {
	if v >= 0 {
		return tau * v
	}

	return (tau - 1) * v
}

// Score returns the weighted mean pinball loss of pred against y at level
// tau. A nil w means unit weights. Weights are normalized by their sum, so
// Score is invariant under rescaling w.
//
// Stage 1 (Validate): tau in (0,1); lengths agree and are positive; weights
// finite, non-negative, not all zero.
// Stage 2 (Execute): accumulate w[i]·ψ_τ(y[i]−pred[i]).
// Stage 3 (Finalize): divide by total weight.
// Complexity: O(n).
func Score(y, pred []float64, tau float64, w []float64) (float64, error) {
	if math.IsNaN(tau) || tau <= 0 || tau >= 1 {
		return 0, ErrBadLevel
	}
	n := len(y)
	if n == 0 || len(pred) != n || (w != nil && len(w) != n) {
		return 0, ErrDimensionMismatch
	}

	var sum, wTotal float64
	for i := 0; i < n; i++ {
		wi := 1.0
		if w != nil {
			wi = w[i]
			if math.IsNaN(wi) || math.IsInf(wi, 0) || wi < 0 {
				return 0, ErrBadWeight
			}
		}
		sum += wi * Loss(tau, y[i]-pred[i])
		wTotal += wi
	}
	if wTotal == 0 {
		return 0, ErrBadWeight
	}

	return sum / wTotal, nil
}
