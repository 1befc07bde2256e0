// Package qstack combines several conditional-quantile estimators into a
// single better-calibrated one by quantile stacking: convex-combination
// weights that minimize aggregate pinball loss, found as the solution of a
// linear program.
//
// 🚀 What is quantile stacking?
//
//	Given p candidate estimators, each predicting r quantile levels for n
//	observations, stacking picks nonnegative weights summing to one (one
//	weight vector per group of levels) so that the weighted combination
//	scores best under the pinball loss. The piecewise-linear loss is
//	reformulated exactly as a linear program via per-(observation, level)
//	epigraph slack variables.
//
// ✨ Key features:
//   - standard stacking (one weight per member, shared across levels),
//     fully flexible stacking (one weight vector per level), and arbitrary
//     level groupings through a single mechanism
//   - optional noncrossing constraints across adjacent level groups,
//     evaluated at training rows or at caller-supplied points
//   - deterministic LP construction: identical inputs build identical
//     programs, row for row
//   - pluggable LP solver; a pure-Go simplex (gonum) ships as the default
//
// Under the hood, everything is organized under four subpackages:
//
//	qarr/     — the n×p×r quantile-prediction array container
//	pinball/  — pinball loss and weighted aggregate scoring
//	lpmodel/  — the LP builder (epigraph reformulation, simplex rows,
//	            noncrossing rows, weight-column index)
//	stacking/ — fitting, prediction, and coefficient inspection
//
// Quick sketch:
//
//	q, _ := qarr.FromSlice(n, p, r, preds)
//	ens, err := stacking.Fit(q, y, tau)            // standard stacking
//	ens, err = stacking.Fit(q, y, tau,
//	    stacking.WithGroups([]int{0, 1, 1, 2}),    // grouped levels
//	    stacking.WithNoncrossing())
//	yhat, _ := ens.Predict(qNew)                   // n'×r convex combinations
//
//	go get github.com/katalvlaran/qstack
package qstack
