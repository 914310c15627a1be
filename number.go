package expression

import (
	"math"
	"math/big"
	"unicode/utf8"

	"github.com/zephyrtronium/bigfloat"
)

// NumberOptions configures the number literal grammar. The zero value allows
// an exponent, a decimal point, and a leading sign, with no digit separator
// and no imaginary suffix.
type NumberOptions struct {
	// NoExponent disables e/E exponent suffixes.
	NoExponent bool
	// NoDecimal disables the decimal point.
	NoDecimal bool
	// NoSign disables a leading + or -.
	NoSign bool
	// Separator, if nonzero, may appear strictly between two digits, e.g. the
	// _ in 1_000.
	Separator rune
	// Imaginary, if nonzero, marks a literal as imaginary when it directly
	// follows the mantissa, e.g. the i in 2.5i.
	Imaginary rune
}

// NumberLiteral is the result of scanning a number literal.
type NumberLiteral struct {
	// Len is the number of bytes the literal occupies. Zero means no match.
	Len int
	// Sign is -1 if the literal has a leading minus and 1 otherwise.
	Sign int
	// Radix is 2, 8, 10, or 16.
	Radix int
	// Int and Frac are the digits before and after the decimal point, with
	// separators removed.
	Int, Frac string
	// Exp is the exponent, if the literal has one.
	Exp *NumberLiteral
	// Imag is whether the literal carries the imaginary suffix.
	Imag bool
	// Value is the signed, exponent-scaled value of the literal. For an
	// imaginary literal, it is the coefficient of i.
	Value float64
}

// Text returns the source text of the literal.
func (lit NumberLiteral) Text(s string) string {
	return s[:lit.Len]
}

var radices = [...]struct {
	c byte
	r int
}{{'x', 16}, {'d', 10}, {'b', 2}, {'o', 8}}

// numprec is the working precision for converting literals.
const numprec = 128

// maxexp bounds decimal exponents beyond which every float64 saturates.
const maxexp = 1000

// digitval returns the value of c as a digit in base 36, or -1.
func digitval(c byte) int {
	switch {
	case '0' <= c && c <= '9':
		return int(c - '0')
	case 'a' <= c && c <= 'z':
		return int(c-'a') + 10
	case 'A' <= c && c <= 'Z':
		return int(c-'A') + 10
	}
	return -1
}

func isdigit(s string, i, radix int) bool {
	if i >= len(s) {
		return false
	}
	d := digitval(s[i])
	return d >= 0 && d < radix
}

// radixprefix returns the radix named by a 0x, 0d, 0b, or 0o prefix at the
// start of s, or 0 if there is none or no digit follows it.
func radixprefix(s string) int {
	if len(s) < 3 || s[0] != '0' {
		return 0
	}
	for _, p := range radices {
		if s[1] == p.c {
			if isdigit(s, 2, p.r) {
				return p.r
			}
			return 0
		}
	}
	return 0
}

// ScanNumber scans the longest number literal at the start of s. If there is
// no literal, the result has zero Len. Malformed tails such as a doubled or
// trailing separator end the literal rather than producing an error.
func ScanNumber(s string, opts NumberOptions) NumberLiteral {
	lit := NumberLiteral{Sign: 1, Radix: 10}
	var ints, fracs []byte
	pos := 0
	if r := radixprefix(s); r != 0 {
		lit.Radix = r
		pos = 2
	} else if !opts.NoSign && len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		if s[0] == '-' {
			lit.Sign = -1
		}
		pos = 1
	}
	var dot, digit bool
loop:
	for pos < len(s) {
		c := s[pos]
		switch {
		case isdigit(s, pos, lit.Radix):
			if dot {
				fracs = append(fracs, c)
			} else {
				ints = append(ints, c)
			}
			digit = true
			pos++
		case c == '.' && !opts.NoDecimal && !dot:
			dot = true
			digit = false
			pos++
		case (c == 'e' || c == 'E') && !opts.NoExponent:
			if len(ints)+len(fracs) == 0 {
				break loop
			}
			sub := ScanNumber(s[pos+1:], NumberOptions{
				NoExponent: true,
				NoDecimal:  opts.NoDecimal,
				Separator:  opts.Separator,
			})
			if sub.Len > 0 {
				lit.Exp = &sub
				pos += 1 + sub.Len
			}
			break loop
		default:
			r, w := utf8.DecodeRuneInString(s[pos:])
			if opts.Separator == 0 || r != opts.Separator || !digit || !isdigit(s, pos+w, lit.Radix) {
				break loop
			}
			pos += w
		}
	}
	if len(ints)+len(fracs) == 0 {
		return NumberLiteral{}
	}
	if opts.Imaginary != 0 && lit.Exp == nil {
		if r, w := utf8.DecodeRuneInString(s[pos:]); w > 0 && r == opts.Imaginary {
			lit.Imag = true
			pos += w
		}
	}
	lit.Len = pos
	lit.Int, lit.Frac = string(ints), string(fracs)
	lit.Value = lit.convert()
	return lit
}

// convert computes the value of the literal. The digits are summed by
// positional weight as an exact integer, so integral values never pick up
// rounding error. Integral exponents keep the value an exact fraction that is
// rounded once; fractional exponents are scaled with bigfloat.
func (lit *NumberLiteral) convert() float64 {
	radix := big.NewInt(int64(lit.Radix))
	digits := lit.Int + lit.Frac
	num := new(big.Int)
	weight := big.NewInt(1)
	var t big.Int
	for i := len(digits) - 1; i >= 0; i-- {
		t.SetInt64(int64(digitval(digits[i])))
		num.Add(num, t.Mul(&t, weight))
		weight.Mul(weight, radix)
	}
	sign := float64(lit.Sign)
	if num.Sign() == 0 {
		return sign * 0
	}
	den := new(big.Int).Exp(radix, big.NewInt(int64(len(lit.Frac))), nil)
	var e float64
	if lit.Exp != nil {
		e = lit.Exp.Value
	}
	switch {
	case e > maxexp:
		return sign * math.Inf(1)
	case e < -maxexp:
		return sign * 0
	case e != math.Trunc(e):
		z := new(big.Float).SetPrec(numprec).SetInt(num)
		z.Quo(z, new(big.Float).SetPrec(numprec).SetInt(den))
		ten := new(big.Float).SetPrec(numprec).SetInt64(10)
		p := bigfloat.Pow(new(big.Float).SetPrec(numprec), ten, new(big.Float).SetPrec(numprec).SetFloat64(e))
		f, _ := z.Mul(z, p).Float64()
		return sign * f
	case e > 0:
		num.Mul(num, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(e)), nil))
	case e < 0:
		den.Mul(den, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(-e)), nil))
	}
	f, _ := new(big.Rat).SetFrac(num, den).Float64()
	return sign * f
}
