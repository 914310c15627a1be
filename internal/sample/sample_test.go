package sample

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/plotkit/expression"
)

func maker(env *expression.Environment, src string, opts ...expression.Option) func() (*expression.Expression, error) {
	return func() (*expression.Expression, error) {
		return expression.New(env, opts...).Load(src), nil
	}
}

func TestParse(t *testing.T) {
	sm, err := Parse("x:-1:1:5")
	require.NoError(t, err)
	require.Equal(t, Sampler{Var: "x", From: -1, To: 1, N: 5}, sm)

	for _, s := range []string{"x:0:1", "x:a:1:2", "x:0:b:2", "x:0:1:c", ":0:1:2", "x:0:1:0", "x:nan:1:2"} {
		_, err := Parse(s)
		require.Error(t, err, s)
	}
}

func TestAt(t *testing.T) {
	sm := Sampler{Var: "x", From: 0, To: 1, N: 3}
	require.Equal(t, []float64{0, 0.5, 1}, []float64{sm.At(0), sm.At(1), sm.At(2)})
	one := Sampler{Var: "x", From: 7, To: 9, N: 1}
	require.Equal(t, 7.0, one.At(0))
}

func TestRun(t *testing.T) {
	env := expression.DefaultEnvironment()
	sm := Sampler{Var: "x", From: 0, To: 2, N: 3}
	pts, err := sm.Run(context.Background(), maker(env, "x ** 2 + 1"))
	require.NoError(t, err)
	require.Equal(t, []Point{
		{X: 0, Y: 1},
		{X: 1, Y: 2},
		{X: 2, Y: 5},
	}, pts)
}

func TestRunGaps(t *testing.T) {
	env := expression.DefaultEnvironment()
	sm := Sampler{Var: "x", From: -1, To: 1, N: 3}
	pts, err := sm.Run(context.Background(), maker(env, "1 / sqrt(x)"))
	require.NoError(t, err)
	require.Len(t, pts, 3)
	require.True(t, pts[0].Gap, "sqrt(-1) is outside the real domain")
	require.True(t, pts[1].Gap, "1/0 is infinite")
	require.False(t, pts[2].Gap)
	require.Equal(t, expression.Real(1), pts[2].Y)

	cplx, err := sm.Run(context.Background(), maker(env, "sqrt(x)", expression.ComplexMode()))
	require.NoError(t, err)
	require.False(t, cplx[0].Gap)
	require.Equal(t, expression.Complex(0, 1), cplx[0].Y)
}

func TestRunParallel(t *testing.T) {
	env := expression.DefaultEnvironment()
	name, f, err := expression.ParseDefinition("cube(t) = t * t * t")
	require.NoError(t, err)
	require.NoError(t, env.Define(name, f))

	sm := Sampler{Var: "x", From: -10, To: 10, N: 101, Workers: 4}
	pts, err := sm.Run(context.Background(), maker(env, "cube(x) - x"))
	require.NoError(t, err)
	require.Len(t, pts, 101)
	for i, p := range pts {
		require.Equal(t, sm.At(i), p.X)
		require.InDelta(t, p.X*p.X*p.X-p.X, p.Y.Float64(), 1e-9)
	}
}

func TestRunError(t *testing.T) {
	env := expression.DefaultEnvironment()
	sm := Sampler{Var: "x", From: 0, To: 1, N: 4}
	_, err := sm.Run(context.Background(), maker(env, "x + y"))
	var serr *Error
	require.True(t, errors.As(err, &serr))
	require.Equal(t, 0.0, serr.At)
	require.ErrorIs(t, err, expression.ErrUnboundSymbol)
	require.True(t, strings.HasPrefix(serr.Diagnostic, "UnboundSymbol: unbound symbol referenced 'y'"), serr.Diagnostic)

	_, err = Sampler{Var: "pi", From: 0, To: 1, N: 2}.Run(context.Background(), maker(env, "pi"))
	require.ErrorIs(t, err, expression.ErrAssignToConstant)

	bad := errors.New("no expression")
	_, err = sm.Run(context.Background(), func() (*expression.Expression, error) { return nil, bad })
	require.ErrorIs(t, err, bad)
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sm := Sampler{Var: "x", From: 0, To: 1, N: 10}
	_, err := sm.Run(ctx, maker(nil, "x"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestGap(t *testing.T) {
	require.True(t, gap(expression.Real(math.NaN())))
	require.True(t, gap(expression.Real(math.Inf(-1))))
	require.True(t, gap(expression.Complex(0, math.Inf(1))))
	require.False(t, gap(expression.Complex(1, 2)))
}
