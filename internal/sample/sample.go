// Package sample evaluates an expression at evenly spaced points, which is
// how the plotter turns an expression into a curve.
package sample

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/plotkit/expression"
)

// Point is one sample of a curve.
type Point struct {
	X float64
	Y expression.Value
	// Gap is set when Y is outside the domain of the expression, i.e. NaN or
	// infinite. The plotter breaks the curve there.
	Gap bool
}

// Sampler describes a sampling of a variable over a closed interval.
type Sampler struct {
	// Var is the name bound to each sample point.
	Var      string
	From, To float64
	// N is the number of points, including both ends.
	N int
	// Workers is the number of expressions evaluating in parallel. Values
	// less than 2 evaluate sequentially.
	Workers int
}

// Parse parses a sampler of the form var:from:to:n.
func Parse(s string) (Sampler, error) {
	f := strings.Split(s, ":")
	if len(f) != 4 {
		return Sampler{}, fmt.Errorf("sample %q must have the form var:from:to:n", s)
	}
	var (
		sm  = Sampler{Var: strings.TrimSpace(f[0])}
		err error
	)
	if sm.From, err = strconv.ParseFloat(strings.TrimSpace(f[1]), 64); err != nil {
		return Sampler{}, fmt.Errorf("sample %q: bad start: %w", s, err)
	}
	if sm.To, err = strconv.ParseFloat(strings.TrimSpace(f[2]), 64); err != nil {
		return Sampler{}, fmt.Errorf("sample %q: bad end: %w", s, err)
	}
	if sm.N, err = strconv.Atoi(strings.TrimSpace(f[3])); err != nil {
		return Sampler{}, fmt.Errorf("sample %q: bad count: %w", s, err)
	}
	return sm, sm.Validate()
}

// Validate checks that the sampler describes at least one point.
func (sm Sampler) Validate() error {
	if sm.Var == "" {
		return errors.New("sample variable is empty")
	}
	if sm.N < 1 {
		return fmt.Errorf("sample count must be positive, got %d", sm.N)
	}
	if math.IsNaN(sm.From) || math.IsNaN(sm.To) || math.IsInf(sm.From, 0) || math.IsInf(sm.To, 0) {
		return fmt.Errorf("sample interval [%g, %g] is not finite", sm.From, sm.To)
	}
	return nil
}

// At returns the i'th sample point.
func (sm Sampler) At(i int) float64 {
	if sm.N == 1 {
		return sm.From
	}
	if i == sm.N-1 {
		return sm.To
	}
	return sm.From + (sm.To-sm.From)*float64(i)/float64(sm.N-1)
}

// Error is an evaluation error at a sample point.
type Error struct {
	At float64
	// Diagnostic is the formatted error with its call trace.
	Diagnostic string
	Err        error
}

func (err *Error) Error() string {
	return "at " + strconv.FormatFloat(err.At, 'g', -1, 64) + ": " + err.Err.Error()
}

func (err *Error) Unwrap() error {
	return err.Err
}

// Run samples the expressions created by mk. Each worker creates its own
// expression, so mk must return a fresh one every call; expressions may
// share an environment. The first error from mk or from an evaluation aborts
// sampling.
func (sm Sampler) Run(ctx context.Context, mk func() (*expression.Expression, error)) ([]Point, error) {
	if err := sm.Validate(); err != nil {
		return nil, err
	}
	pts := make([]Point, sm.N)
	w := sm.Workers
	if w < 1 {
		w = 1
	}
	if w > sm.N {
		w = sm.N
	}
	g, ctx := errgroup.WithContext(ctx)
	per := (sm.N + w - 1) / w
	for lo := 0; lo < sm.N; lo += per {
		lo, hi := lo, lo+per
		if hi > sm.N {
			hi = sm.N
		}
		g.Go(func() error {
			x, err := mk()
			if err != nil {
				return err
			}
			return sm.run(ctx, x, pts[lo:hi], lo)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return pts, nil
}

func (sm Sampler) run(ctx context.Context, x *expression.Expression, pts []Point, off int) error {
	for i := range pts {
		if err := ctx.Err(); err != nil {
			return err
		}
		at := sm.At(off + i)
		if err := x.SetSymbol(sm.Var, expression.Real(at)); err != nil {
			return fmt.Errorf("binding %s: %w", sm.Var, err)
		}
		v, err := x.Evaluate()
		if err != nil {
			return &Error{At: at, Diagnostic: x.HandleError(), Err: err}
		}
		pts[i] = Point{X: at, Y: v, Gap: gap(v)}
	}
	return nil
}

func gap(v expression.Value) bool {
	return v.IsNaN() || math.IsInf(v.Float64(), 0) || math.IsInf(v.Imag(), 0)
}
