package expression

import (
	"math"
	"math/cmplx"
)

// opcode identifies an operator independent of its implementation.
type opcode uint8

const (
	opNone opcode = iota

	opComma  // ,
	opAssign // =
	opEq     // ==
	opNe     // !=
	opLt     // <
	opLe     // <=
	opGt     // >
	opGe     // >=
	opAdd    // +
	opSub    // -
	opMul    // *
	opDiv    // /
	opMod    // %
	opPow    // **
	opPos    // unary +
	opNeg    // unary -
	opFact   // !
	opOpen   // (
	opClose  // )

	numOps
)

// opinfo is the fixed syntax of an operator.
type opinfo struct {
	text  string
	arity int
	prec  int
	right bool
}

var opinfos = [numOps]opinfo{
	opComma:  {",", 2, 1, false},
	opAssign: {"=", 2, 3, true},
	opEq:     {"==", 2, 9, false},
	opNe:     {"!=", 2, 9, false},
	opLt:     {"<", 2, 10, false},
	opLe:     {"<=", 2, 10, false},
	opGt:     {">", 2, 10, false},
	opGe:     {">=", 2, 10, false},
	opAdd:    {"+", 2, 14, false},
	opSub:    {"-", 2, 14, false},
	opMul:    {"*", 2, 15, false},
	opDiv:    {"/", 2, 15, false},
	opMod:    {"%", 2, 15, false},
	opPow:    {"**", 2, 16, true},
	opPos:    {"u+", 1, 17, true},
	opNeg:    {"u-", 1, 17, true},
	opFact:   {"!", 1, 17, true},
	opOpen:   {"(", 0, 0, false},
	opClose:  {")", 0, 0, false},
}

func (op opcode) String() string {
	if op == opNone || op >= numOps {
		return "none"
	}
	return opinfos[op].text
}

// UnaryFunc implements a unary operator.
type UnaryFunc func(a Value) Value

// BinaryFunc implements a binary operator. a is the left operand.
type BinaryFunc func(a, b Value) Value

// Operators is a table of operator implementations for one numeric domain.
// Operator tokens bind their implementation from the table once at parse
// time. Assignment and the comma operator belong to the evaluator and have
// no entry.
type Operators struct {
	// Name identifies the table in diagnostics.
	Name string
	// Complex is whether the table implements complex arithmetic. Native
	// functions receive it, and the imaginary unit is only bound when it is
	// set.
	Complex bool

	Add, Sub, Mul, Div, Mod, Pow BinaryFunc
	Eq, Ne, Lt, Le, Gt, Ge       BinaryFunc
	Pos, Neg, Fact               UnaryFunc

	// Coerce converts a value produced outside the table, such as a native
	// function result, into the table's domain.
	Coerce UnaryFunc
}

func (ops *Operators) unary(op opcode) UnaryFunc {
	switch op {
	case opPos:
		return ops.Pos
	case opNeg:
		return ops.Neg
	case opFact:
		return ops.Fact
	}
	return nil
}

func (ops *Operators) binary(op opcode) BinaryFunc {
	switch op {
	case opAdd:
		return ops.Add
	case opSub:
		return ops.Sub
	case opMul:
		return ops.Mul
	case opDiv:
		return ops.Div
	case opMod:
		return ops.Mod
	case opPow:
		return ops.Pow
	case opEq:
		return ops.Eq
	case opNe:
		return ops.Ne
	case opLt:
		return ops.Lt
	case opLe:
		return ops.Le
	case opGt:
		return ops.Gt
	case opGe:
		return ops.Ge
	}
	return nil
}

func truth(b bool) Value {
	if b {
		return 1
	}
	return 0
}

// RealOperators is the operator table for real arithmetic. Operands are taken
// by their real parts.
var RealOperators = &Operators{
	Name: "real",
	Add:  func(a, b Value) Value { return Real(real(a) + real(b)) },
	Sub:  func(a, b Value) Value { return Real(real(a) - real(b)) },
	Mul:  func(a, b Value) Value { return Real(real(a) * real(b)) },
	Div:  func(a, b Value) Value { return Real(real(a) / real(b)) },
	Mod:  func(a, b Value) Value { return Real(math.Mod(real(a), real(b))) },
	Pow:  func(a, b Value) Value { return Real(math.Pow(real(a), real(b))) },
	Eq:   func(a, b Value) Value { return truth(real(a) == real(b)) },
	Ne:   func(a, b Value) Value { return truth(real(a) != real(b)) },
	Lt:   func(a, b Value) Value { return truth(real(a) < real(b)) },
	Le:   func(a, b Value) Value { return truth(real(a) <= real(b)) },
	Gt:   func(a, b Value) Value { return truth(real(a) > real(b)) },
	Ge:   func(a, b Value) Value { return truth(real(a) >= real(b)) },
	Pos:  func(a Value) Value { return Real(real(a)) },
	Neg:  func(a Value) Value { return Real(-real(a)) },
	Fact: func(a Value) Value { return Real(factorial(real(a))) },
	Coerce: func(a Value) Value {
		if imag(a) != 0 {
			return Real(math.NaN())
		}
		return a
	},
}

// ComplexOperators is the operator table for complex arithmetic. Ordering
// comparisons compare real parts.
var ComplexOperators = &Operators{
	Name:    "complex",
	Complex: true,
	Add:     func(a, b Value) Value { return a + b },
	Sub:     func(a, b Value) Value { return a - b },
	Mul:     func(a, b Value) Value { return a * b },
	Div:     func(a, b Value) Value { return a / b },
	Mod:     cmod,
	Pow: func(a, b Value) Value {
		if imag(a) == 0 && imag(b) == 0 && (real(a) >= 0 || real(b) == math.Trunc(real(b))) {
			return Real(math.Pow(real(a), real(b)))
		}
		return Value(cmplx.Pow(complex128(a), complex128(b)))
	},
	Eq:  func(a, b Value) Value { return truth(a == b) },
	Ne:  func(a, b Value) Value { return truth(a != b) },
	Lt:  func(a, b Value) Value { return truth(real(a) < real(b)) },
	Le:  func(a, b Value) Value { return truth(real(a) <= real(b)) },
	Gt:  func(a, b Value) Value { return truth(real(a) > real(b)) },
	Ge:  func(a, b Value) Value { return truth(real(a) >= real(b)) },
	Pos: func(a Value) Value { return a },
	Neg: func(a Value) Value { return 0 - a }, // -(4+0i) would have a -0 imaginary part
	Fact: func(a Value) Value {
		if imag(a) != 0 {
			return Complex(math.NaN(), math.NaN())
		}
		return Real(factorial(real(a)))
	},
	Coerce: func(a Value) Value { return a },
}

// cmod is the complex remainder z - w·q, where q is z/w with both parts
// truncated toward zero. For real operands it agrees with math.Mod.
func cmod(z, w Value) Value {
	if imag(z) == 0 && imag(w) == 0 {
		return Real(math.Mod(real(z), real(w)))
	}
	q := z / w
	q = Complex(math.Trunc(real(q)), math.Trunc(imag(q)))
	return z - w*q
}

// factorial computes x! exactly for small non-negative integers and as
// Γ(x+1) otherwise.
func factorial(x float64) float64 {
	if x >= 0 && x <= 170 && x == math.Trunc(x) {
		r := 1.0
		for i := 2.0; i <= x; i++ {
			r *= i
		}
		return r
	}
	return math.Gamma(x + 1)
}
