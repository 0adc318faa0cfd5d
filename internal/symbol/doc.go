// Package symbol provides the symbolic expression kernel behind the
// expression compiler.
//
// The package covers exactly what compiling prediction functions needs:
//
//   - [Parse]: expression strings to ASTs
//   - [Expr.Sub]: substitution of symbols by values or other expressions
//   - [Expr.Diff]: partial derivatives with simplification
//   - [Expr.Eval]: numeric evaluation against a symbol environment
//
// # Example
//
//	e, _ := symbol.Parse("V*x/(K+x)")
//	dv := e.Diff("V")
//	y, _ := dv.Eval(map[string]float64{"V": 1, "K": 1, "x": 2})
//
// Expressions are immutable values; Sub, Diff, and Simplify return new
// trees and never mutate their receiver.
package symbol
