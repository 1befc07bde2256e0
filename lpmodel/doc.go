// Package lpmodel builds the linear program whose solution is the set of
// quantile-stacking weights: the convex-combination coefficients minimizing
// aggregate weighted pinball loss over an n×p×r quantile-prediction array.
//
// 🚀 The reformulation
//
//	The pinball loss ψ_τ is piecewise linear, so its minimization over
//	weights α is not directly a linear objective. The builder applies the
//	standard epigraph trick: one slack variable u[i,k] per (observation,
//	level) pair, bounded below by both linear pieces of the loss,
//
//	  u[i,k] ≥ τ_k·(y[i] − Σ_j α[j,g(k)]·q[i,j,k])
//	  u[i,k] ≥ (τ_k−1)·(y[i] − Σ_j α[j,g(k)]·q[i,j,k])
//
//	and minimizes Σ_i Σ_k w[i]·u[i,k]. At the optimum each u[i,k] sits
//	exactly on the loss, making the LP equivalent to the original problem.
//	Slack variables are per (i,k), never per i — collapsing them would
//	break the equivalence.
//
// Level groups generalize the two textbook variants into one mechanism:
// a single shared group is standard stacking (p weights), one group per
// level is fully flexible stacking (p·r weights), and any other partition
// of the levels sits in between. Every group carries its own probability
// simplex: Σ_j α[j,g] = 1, α[j,g] ≥ 0.
//
// Optional noncrossing rows force the stacked quantile curve to be
// nondecreasing across adjacent levels that belong to different groups,
// evaluated either at every training row (default) or at caller-supplied
// member-prediction points. Adjacent levels sharing one group get no row:
// with a shared weight vector, monotone inputs already yield monotone
// output, and the builder does not police the inputs.
//
// The output Program is in general LP form — minimize Cᵀx subject to
// G·x ≤ H and A·x = B — with a documented, deterministic variable and row
// ordering, plus the index needed to pull the α values out of a flat
// solver solution. Building is a pure function: identical inputs produce
// an identical Program, row for row.
package lpmodel
