package expression_test

import (
	"errors"
	"math"
	"testing"

	"github.com/plotkit/expression"
)

func TestParseDefinition(t *testing.T) {
	type param struct {
		name string
		def  *expression.Value
	}
	val := func(v expression.Value) *expression.Value { return &v }
	cases := []struct {
		src    string
		name   string
		params []param
		body   string
	}{
		{"f(x) = x + 1", "f", []param{{"x", nil}}, "x + 1"},
		{"  area ( w , h = 1 ) =  w*h  ", "area", []param{{"w", nil}, {"h", val(1)}}, "w*h"},
		{"k() = 3", "k", nil, "3"},
		{"z(a=-2.5, b=1i) = a", "z", []param{{"a", val(-2.5)}, {"b", val(expression.Complex(0, 1))}}, "a"},
		{"eq(a) = a == 1", "eq", []param{{"a", nil}}, "a == 1"},
	}
	for _, c := range cases {
		name, f, err := expression.ParseDefinition(c.src)
		if err != nil {
			t.Errorf("parsing %q: %v", c.src, err)
			continue
		}
		if name != c.name {
			t.Errorf("parsing %q: want name %q, got %q", c.src, c.name, name)
		}
		if f.Body != c.body {
			t.Errorf("parsing %q: want body %q, got %q", c.src, c.body, f.Body)
		}
		if len(f.Params) != len(c.params) {
			t.Errorf("parsing %q: want %d params, got %+v", c.src, len(c.params), f.Params)
			continue
		}
		for i, p := range c.params {
			got := f.Params[i]
			if got.Name != p.name {
				t.Errorf("parsing %q: param %d: want %q, got %q", c.src, i, p.name, got.Name)
			}
			switch {
			case p.def == nil && got.Default != nil:
				t.Errorf("parsing %q: param %s has default %v", c.src, p.name, *got.Default)
			case p.def != nil && (got.Default == nil || *got.Default != *p.def):
				t.Errorf("parsing %q: param %s: want default %v, got %v", c.src, p.name, *p.def, got.Default)
			}
		}
	}
}

func TestParseDefinitionErrors(t *testing.T) {
	cases := []struct {
		src string
		msg string
	}{
		{"", "expected function name"},
		{"2(x) = x", "expected function name"},
		{"f x = 1", "expected '(' after f"},
		{"f(1) = 2", "expected parameter name"},
		{"f(x,) = 1", "expected parameter name"},
		{"f(x = y) = 1", "expected number as default for x"},
		{"f(x y) = 1", "expected ',' or ')' in parameter list"},
		{"f(x)", "expected '=' before function body"},
		{"f(x) == 1", "expected '=' before function body"},
		{"f(x) =  ", "empty function body"},
	}
	for _, c := range cases {
		_, _, err := expression.ParseDefinition(c.src)
		if !errors.Is(err, expression.ErrSyntax) {
			t.Errorf("parsing %q: want syntax error, got %v", c.src, err)
			continue
		}
		if e := err.(*expression.Error); e.Msg != c.msg {
			t.Errorf("parsing %q: want %q, got %q", c.src, c.msg, e.Msg)
		}
	}
}

func TestUserFuncModes(t *testing.T) {
	env := expression.DefaultEnvironment()
	env.Define("r", expression.NewUserFunc("sqrt(x) + 1", expression.Required("x")...))
	rx := expression.New(env).Load("r(-4)")
	v, err := rx.Evaluate()
	if err != nil {
		t.Fatal(err)
	}
	if !v.IsNaN() {
		t.Errorf("real: want NaN, got %v", v)
	}
	cx := expression.New(env, expression.ComplexMode()).Load("r(-4)")
	v, err = cx.Evaluate()
	if err != nil {
		t.Fatal(err)
	}
	if v != expression.Complex(1, 2) {
		t.Errorf("complex: want 1+2i, got %v", v)
	}
}

func TestNativeWrappers(t *testing.T) {
	floor := expression.Monadic(math.Floor, nil)
	v, err := floor.Fn([]expression.Value{expression.Real(1.5)}, true)
	if err != nil || v != 1 {
		t.Errorf("floor(1.5): want 1, got %v, %v", v, err)
	}
	v, err = floor.Fn([]expression.Value{expression.Complex(1.5, 1)}, true)
	if err != nil || !v.IsNaN() {
		t.Errorf("floor(1.5+i): want NaN, got %v, %v", v, err)
	}
	pow := expression.Dyadic(math.Pow)
	if len(pow.Params) != 2 || pow.Variadic {
		t.Errorf("wrong signature %+v", pow)
	}
	v, err = pow.Fn([]expression.Value{2, 10}, false)
	if err != nil || v != 1024 {
		t.Errorf("pow(2, 10): want 1024, got %v, %v", v, err)
	}
}
