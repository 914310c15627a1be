package expression_test

import (
	"errors"
	"testing"

	"github.com/plotkit/expression"
)

func FuzzParse(f *testing.F) {
	f.Add("x")
	f.Add("f(g(x), (1, 2))")
	f.Add("0x1F_FF.8e-2i")
	f.Fuzz(func(t *testing.T, s string) {
		x := expression.New(nil, expression.WithNumberOptions(expression.NumberOptions{Separator: '_', Imaginary: 'i'})).Load(s)
		if err := x.Parse(); err != nil {
			var e *expression.Error
			if !errors.As(err, &e) {
				t.Fatalf("parsing %q gave %#v", s, err)
			}
			if p := e.Pos(); p > len(s) {
				t.Fatalf("parsing %q: error position %d out of range", s, p)
			}
		}
	})
}
