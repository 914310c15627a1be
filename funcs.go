package expression

import (
	"errors"
	"math"
	"math/big"
	"math/cmplx"
	"math/rand"
	"strings"
	"unicode"

	"github.com/zephyrtronium/bigfloat"
)

// NativeFunc implements a native function. args holds one value per declared
// parameter, followed by any extra arguments of a variadic function. cplx
// reports whether complex arithmetic is in effect. A result with a nonzero
// imaginary part is converted to NaN in real arithmetic.
type NativeFunc func(args []Value, cplx bool) (Value, error)

// Func is a native function.
type Func struct {
	Params []Param
	// Variadic allows any number of arguments beyond Params.
	Variadic bool
	Fn       NativeFunc
}

// NewFunc creates a native function with required parameters.
func NewFunc(fn NativeFunc, params ...string) *Func {
	return &Func{Params: Required(params...), Fn: fn}
}

func (*Func) object() {}

// Monadic wraps a function of one variable. In complex arithmetic, g is used
// if it is not nil; otherwise f is applied to real arguments and non-real
// arguments give NaN.
func Monadic(f func(float64) float64, g func(complex128) complex128) *Func {
	return NewFunc(func(args []Value, cplx bool) (Value, error) {
		x := args[0]
		if cplx && g != nil {
			return Value(g(complex128(x))), nil
		}
		if !x.IsReal() {
			return Real(math.NaN()), nil
		}
		return Real(f(real(x))), nil
	}, "x")
}

// Dyadic wraps a real function of two variables. Non-real arguments give NaN.
func Dyadic(f func(x, y float64) float64) *Func {
	return NewFunc(func(args []Value, cplx bool) (Value, error) {
		x, y := args[0], args[1]
		if !x.IsReal() || !y.IsReal() {
			return Real(math.NaN()), nil
		}
		return Real(f(real(x), real(y))), nil
	}, "x", "y")
}

// fold wraps a real function of one or more variables.
func fold(f func(x, y float64) float64) *Func {
	fn := NewFunc(func(args []Value, cplx bool) (Value, error) {
		r := real(args[0])
		for _, v := range args {
			if !v.IsReal() {
				return Real(math.NaN()), nil
			}
			r = f(r, real(v))
		}
		return Real(r), nil
	}, "x")
	fn.Variadic = true
	return fn
}

func bigconst(f func(z *big.Float) *big.Float) Value {
	x, _ := f(new(big.Float).SetPrec(64)).Float64()
	return Real(x)
}

// recip wraps the reciprocal of a trigonometric function.
func recip(f func(float64) float64, g func(complex128) complex128) *Func {
	return Monadic(
		func(x float64) float64 { return 1 / f(x) },
		func(z complex128) complex128 { return 1 / g(z) },
	)
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return x // 0, -0, and NaN
}

// random is rand(), rand(n) in [0, n), or rand(a, b) in [a, b).
func random(args []Value, cplx bool) (Value, error) {
	r := Real(rand.Float64())
	switch len(args) {
	case 0:
		return r, nil
	case 1:
		return r * args[0], nil
	case 2:
		return args[0] + r*(args[1]-args[0]), nil
	}
	return 0, errors.New("takes at most 2 arguments")
}

// defaults returns the contents of DefaultEnvironment.
func defaults() map[string]Object {
	asin := Monadic(math.Asin, cmplx.Asin)
	acos := Monadic(math.Acos, cmplx.Acos)
	atan := Monadic(math.Atan, cmplx.Atan)
	return map[string]Object{
		"pi": bigconst(bigfloat.Pi),
		"e": bigconst(func(z *big.Float) *big.Float {
			return bigfloat.Exp(z, new(big.Float).SetPrec(z.Prec()).SetInt64(1))
		}),

		"sin":       Monadic(math.Sin, cmplx.Sin),
		"cos":       Monadic(math.Cos, cmplx.Cos),
		"tan":       Monadic(math.Tan, cmplx.Tan),
		"csc":       recip(math.Sin, cmplx.Sin),
		"sec":       recip(math.Cos, cmplx.Cos),
		"cot":       recip(math.Tan, cmplx.Tan),
		"asin":      asin,
		"acos":      acos,
		"atan":      atan,
		"arcsin":    asin,
		"arccos":    acos,
		"arctan":    atan,
		"sinh":      Monadic(math.Sinh, cmplx.Sinh),
		"cosh":      Monadic(math.Cosh, cmplx.Cosh),
		"tanh":      Monadic(math.Tanh, cmplx.Tanh),
		"arcsinh":   Monadic(math.Asinh, cmplx.Asinh),
		"arccosh":   Monadic(math.Acosh, cmplx.Acosh),
		"arctanh":   Monadic(math.Atanh, cmplx.Atanh),
		"exp":       Monadic(math.Exp, cmplx.Exp),
		"ln":        Monadic(math.Log, cmplx.Log),
		"sqrt":      Monadic(math.Sqrt, cmplx.Sqrt),
		"floor":     Monadic(math.Floor, nil),
		"ceil":      Monadic(math.Ceil, nil),
		"round":     Monadic(math.Round, nil),
		"sgn":       Monadic(sign, nil),
		"factorial": Monadic(factorial, nil),
		"abs": NewFunc(func(args []Value, cplx bool) (Value, error) {
			return Real(cmplx.Abs(complex128(args[0]))), nil
		}, "x"),
		"re": NewFunc(func(args []Value, cplx bool) (Value, error) {
			return Real(real(args[0])), nil
		}, "z"),
		"im": NewFunc(func(args []Value, cplx bool) (Value, error) {
			return Real(imag(args[0])), nil
		}, "z"),
		"conj": NewFunc(func(args []Value, cplx bool) (Value, error) {
			return Value(cmplx.Conj(complex128(args[0]))), nil
		}, "z"),
		"arg": NewFunc(func(args []Value, cplx bool) (Value, error) {
			return Real(cmplx.Phase(complex128(args[0]))), nil
		}, "z"),
		"log": &Func{
			Params: []Param{{Name: "x"}, Optional("base", 10)},
			Fn: func(args []Value, cplx bool) (Value, error) {
				x, b := args[0], args[1]
				if cplx {
					return Value(cmplx.Log(complex128(x)) / cmplx.Log(complex128(b))), nil
				}
				return Real(math.Log(real(x)) / math.Log(real(b))), nil
			},
		},
		"pow": NewFunc(func(args []Value, cplx bool) (Value, error) {
			if cplx {
				return ComplexOperators.Pow(args[0], args[1]), nil
			}
			return RealOperators.Pow(args[0], args[1]), nil
		}, "x", "y"),
		"clamp": &Func{
			Params: []Param{{Name: "x"}, Optional("min", Real(math.Inf(-1))), Optional("max", Real(math.Inf(1)))},
			Fn: func(args []Value, cplx bool) (Value, error) {
				x, lo, hi := real(args[0]), real(args[1]), real(args[2])
				switch {
				case x <= lo:
					return Real(lo), nil
				case x >= hi:
					return Real(hi), nil
				}
				return args[0], nil
			},
		},
		"lerp": NewFunc(func(args []Value, cplx bool) (Value, error) {
			a, b, t := args[0], args[1], args[2]
			return a + (b-a)*t, nil
		}, "a", "b", "t"),
		"rand":  &Func{Variadic: true, Fn: random},
		"atan2": Dyadic(math.Atan2),
		"hypot": Dyadic(math.Hypot),
		"min":   fold(math.Min),
		"max":   fold(math.Max),

		"frac":     NewUserFunc("x - floor(x)", Required("x")...),
		"sawtooth": NewUserFunc("A * frac(x / T + P)", Param{Name: "x"}, Param{Name: "T"}, Optional("A", 1), Optional("P", 0)),
		"ndist":    NewUserFunc("(1 / (sigma * sqrt(2 * pi))) * e ** (-0.5 * ((x - mu) / sigma) ** 2)", Param{Name: "x"}, Optional("mu", 0), Optional("sigma", 1)),
	}
}

// ParseDefinition parses a function definition of the form
//
//	name(a, b=2) = body
//
// Defaults must be number literals, which may be signed or imaginary with the
// suffix i. The body is not parsed until the function is first called.
func ParseDefinition(def string) (string, *UserFunc, error) {
	s := scanner{src: def}
	s.space()
	name := s.ident()
	if name == "" {
		return "", nil, s.fail("expected function name")
	}
	s.space()
	if !s.take('(') {
		return "", nil, s.fail("expected '(' after " + name)
	}
	var params []Param
	s.space()
	if !s.take(')') {
		for {
			s.space()
			p := Param{Name: s.ident()}
			if p.Name == "" {
				return "", nil, s.fail("expected parameter name")
			}
			s.space()
			if s.take('=') {
				s.space()
				lit := ScanNumber(s.src[s.pos:], NumberOptions{Imaginary: 'i'})
				if lit.Len == 0 {
					return "", nil, s.fail("expected number as default for " + p.Name)
				}
				v := Real(lit.Value)
				if lit.Imag {
					v = Complex(0, lit.Value)
				}
				p.Default = &v
				s.pos += lit.Len
				s.space()
			}
			params = append(params, p)
			if s.take(')') {
				break
			}
			if !s.take(',') {
				return "", nil, s.fail("expected ',' or ')' in parameter list")
			}
		}
	}
	s.space()
	if !s.take('=') || s.peek('=') {
		return "", nil, s.fail("expected '=' before function body")
	}
	body := strings.TrimSpace(s.src[s.pos:])
	if body == "" {
		return "", nil, s.fail("empty function body")
	}
	return name, NewUserFunc(body, params...), nil
}

// scanner is a cursor for ParseDefinition.
type scanner struct {
	src string
	pos int
}

func (s *scanner) space() {
	for s.pos < len(s.src) && unicode.IsSpace(rune(s.src[s.pos])) {
		s.pos++
	}
}

func (s *scanner) ident() string {
	n := scanident(s.src[s.pos:])
	id := s.src[s.pos : s.pos+n]
	s.pos += n
	return id
}

func (s *scanner) peek(c byte) bool {
	return s.pos < len(s.src) && s.src[s.pos] == c
}

func (s *scanner) take(c byte) bool {
	if s.peek(c) {
		s.pos++
		return true
	}
	return false
}

func (s *scanner) fail(msg string) error {
	end := s.pos + 1
	if end > len(s.src) {
		end = len(s.src)
	}
	return &Error{
		Kind:  SyntaxError,
		Msg:   msg,
		Token: &Token{Start: s.pos, End: end, src: s.src},
	}
}

// errNativeResult is returned for a native function without an
// implementation.
var errNativeResult = errors.New("native function has no implementation")
