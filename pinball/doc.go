// Package pinball implements the pinball (quantile) loss and weighted
// aggregate scoring over prediction vectors.
//
// The pinball loss at level τ scores a residual v = y − ŷ as
//
//	ψ_τ(v) = max(τ·v, (τ−1)·v)
//
// so under-prediction is charged τ per unit and over-prediction (1−τ) per
// unit. Minimizing its expectation yields the τ-quantile, which is what
// makes it the natural objective both for fitting individual quantile
// estimators and for weighting them into a stacked ensemble.
//
// Score aggregates the loss across observations with optional nonnegative
// observation weights, matching the objective the LP builder encodes.
package pinball
