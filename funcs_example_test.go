package expression_test

import (
	"fmt"

	"github.com/plotkit/expression"
)

func ExampleFunc() {
	env := expression.DefaultEnvironment()
	nargin := &expression.Func{
		Variadic: true,
		Fn: func(args []expression.Value, cplx bool) (expression.Value, error) {
			return expression.Real(float64(len(args))), nil
		},
	}
	env.Define("nargin", nargin)

	for _, src := range []string{"nargin()", "nargin(100)", "nargin(3, 2, 1)"} {
		x := expression.New(env).Load(src)
		v, _ := x.Evaluate()
		fmt.Println(v, x.RPN())
	}

	// Output:
	// 0 nargin()
	// 1 nargin(100)
	// 3 nargin(3, 2, 1)
}

func ExampleParseDefinition() {
	env := expression.DefaultEnvironment()
	name, f, err := expression.ParseDefinition("g(x, y=2) = x ** y")
	if err != nil {
		panic(err)
	}
	env.Define(name, f)

	v, _ := expression.New(env).Load("g(3) + g(2, 3)").Evaluate()
	fmt.Println(name, len(f.Params), f.Body, v)

	// Output:
	// g 2 x ** y 17
}

func ExampleExpression_HandleError() {
	x := expression.New(nil).Load("1 + unknownSym")
	if _, err := x.Evaluate(); err != nil {
		fmt.Println(x.HandleError())
	}

	// Output:
	// UnboundSymbol: unbound symbol referenced 'unknownSym'
	// unknownSym
	// ^~~~~~~~~~
	// at _MAIN
}

func Example() {
	env := expression.DefaultEnvironment()
	y := expression.New(env).Load("x**3/2 - x")
	yp := expression.New(env).Load("3*x**2/2 - 1")
	ypp := expression.New(env).Load("3*x")

	for i := 0; i < 4; i++ {
		x := expression.Real(float64(i))
		y.SetSymbol("x", x)
		yp.SetSymbol("x", x)
		ypp.SetSymbol("x", x)
		a, _ := y.Evaluate()
		b, _ := yp.Evaluate()
		c, _ := ypp.Evaluate()
		fmt.Printf("x = %g   y = %-4g  y' = %-4g  y'' = %g\n", x.Float64(), a.Float64(), b.Float64(), c.Float64())
	}

	// Output:
	// x = 0   y = 0     y' = -1    y'' = 0
	// x = 1   y = -0.5  y' = 0.5   y'' = 3
	// x = 2   y = 2     y' = 5     y'' = 6
	// x = 3   y = 10.5  y' = 12.5  y'' = 9
}
