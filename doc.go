// Package expression implements the expression language of a function
// plotter.
//
// An expression is lexed once, converted to reverse Polish notation with
// function calls extracted, and then evaluated as often as needed with
// different variable bindings: every curve is "evaluate this at x". The
// arithmetic is pluggable. RealOperators works on float64 values and
// ComplexOperators on complex128, and an Expression can switch between them
// without parsing again.
//
// Names are looked up in the call stack of the running Expression, innermost
// frame first, and then in a shared Environment of constants and functions.
// Assignment with = only ever writes to the call stack.
//
//	env := expression.DefaultEnvironment()
//	x := expression.New(env).Load("x ** 2 + 1")
//	x.SetSymbol("x", expression.Real(3))
//	v, err := x.Evaluate() // 10
//
// Note that unary minus binds more tightly than **, so -2**2 is 4.
package expression
