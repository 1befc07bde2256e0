// Package qarr provides the quantile-prediction array: a dense n×p×r
// container holding, for each of n observations, the predictions of p
// ensemble members at r quantile levels.
//
// The array is the input currency of the whole module: base estimators
// (lasso, quantile regression, anything else) produce one, the LP builder
// and the stacking fitter consume it. The package places no constraint on
// how the predictions were produced; it only enforces shape and finiteness.
//
// Storage is a flat row-major float64 slice indexed (observation, member,
// level), chosen for cache friendliness and cheap cloning. All entries must
// be finite: NaN and ±Inf are rejected at ingestion and on Set, so every
// downstream consumer may assume clean data.
//
// Errors (sentinel, matched via errors.Is):
//   - ErrBadShape   — non-positive dimension, or data length ≠ n·p·r
//   - ErrOutOfRange — index outside [0,n)×[0,p)×[0,r)
//   - ErrNaNInf     — non-finite value at ingestion or Set
package qarr
