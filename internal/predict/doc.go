// Package predict builds and manipulates parametric prediction functions
// for model-fitting and sensitivity workflows.
//
// A [Prediction] wraps a function from a parameter vector to an
// observable vector together with its Jacobian and metadata:
//
//   - [New]: wrap a function, validating ids and defaults
//   - [Prediction.Concat]: concatenate outputs of two predictions
//   - [Prediction.InLogParams]: reparametrize to log-parameter space
//   - [Prediction.Sigma]: heuristic error bars (constant, cv, mixed)
//   - [Prediction.Spectrum]: singular values of the sensitivity matrix
//   - [FiniteDifference]: central-difference Jacobian backfill
//
// # Example
//
//	pr, _ := predict.New(f, predict.WithPIDs("V", "K"), predict.WithYDim(3))
//	y, _ := pr.Eval(nil) // evaluates at the default parameter vector
//
// Everything is synchronous and in-memory; a Prediction is immutable
// after construction and derived predictions never mutate their sources.
package predict
