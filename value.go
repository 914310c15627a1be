package expression

import (
	"math"
	"strconv"
)

// Value is a scalar result. Real numbers have a zero imaginary part; whether
// the imaginary part is meaningful depends on the operator table in use.
type Value complex128

// Real returns x as a Value.
func Real(x float64) Value {
	return Value(complex(x, 0))
}

// Complex returns re+im·i as a Value.
func Complex(re, im float64) Value {
	return Value(complex(re, im))
}

// Float64 returns the real part of v.
func (v Value) Float64() float64 {
	return real(v)
}

// Imag returns the imaginary part of v.
func (v Value) Imag() float64 {
	return imag(v)
}

// Complex128 returns v as a complex128.
func (v Value) Complex128() complex128 {
	return complex128(v)
}

// IsReal reports whether v has no imaginary part.
func (v Value) IsReal() bool {
	return imag(v) == 0
}

// IsNaN reports whether either part of v is NaN.
func (v Value) IsNaN() bool {
	return math.IsNaN(real(v)) || math.IsNaN(imag(v))
}

// String formats v in the shortest form that round-trips. Values with a zero
// imaginary part print as plain reals.
func (v Value) String() string {
	re, im := real(v), imag(v)
	if im == 0 {
		return strconv.FormatFloat(re, 'g', -1, 64)
	}
	s := strconv.FormatFloat(im, 'g', -1, 64) + "i"
	if re == 0 {
		return s
	}
	if im >= 0 || math.IsNaN(im) {
		s = "+" + s
	}
	return strconv.FormatFloat(re, 'g', -1, 64) + s
}

func (Value) object() {}

// Object is anything a name can be bound to: a Value, a *Func, or a
// *UserFunc.
type Object interface {
	object()
}

var (
	_ Object = Value(0)
	_ Object = (*Func)(nil)
	_ Object = (*UserFunc)(nil)
)
