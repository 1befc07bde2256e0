// Package stacking fits quantile-stacking ensembles and serves predictions
// from them.
//
// 🚀 What does it do?
//
//	Fit builds the epigraph LP (package lpmodel), hands it to a pluggable
//	linear-programming Solver, and packages the resulting per-group weight
//	vectors into an immutable Ensemble. Each group's weights live on the
//	probability simplex — nonnegative, summing to one — so every stacked
//	prediction is a convex combination of the members' predictions, never
//	an extrapolation beyond their range.
//
// ✨ Key features:
//   - one mechanism for standard stacking (shared weights), flexible
//     stacking (per-level weights) and arbitrary level groupings
//   - optional noncrossing constraints across adjacent level groups
//   - pluggable Solver; SimplexSolver (gonum, pure Go) is the default
//   - concurrent multi-configuration fitting via FitMany
//   - fit-quality inspection: per-level mean pinball loss via Score
//
// ⚙️ Usage:
//
//	ens, err := stacking.Fit(q, y, tau,
//	    stacking.WithGroups([]int{0, 0, 1, 1}),
//	    stacking.WithNoncrossing(),
//	)
//	if err != nil {
//	    // *FitError wraps ErrInfeasible / ErrUnbounded / ErrSolverTimeout
//	}
//	yhat, _ := ens.Predict(qNew)   // n'×r dense matrix
//	alpha := ens.Coefficients()    // [group][member], defensive copy
//
// An Ensemble has exactly two states: it does not exist, or it is fully
// fit and immutable. Fit never exposes a partial result; re-fitting means
// a new Fit call and a new, independent Ensemble. Concurrent Predict calls
// against one Ensemble need no synchronization.
package stacking
