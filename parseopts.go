package expression

// Option is an option for creating an Expression.
type Option interface {
	apply(*Expression)
}

type (
	opsopt   struct{ ops *Operators }
	numopt   NumberOptions
	depthopt int
	cplxopt  struct{}
)

func (o opsopt) apply(x *Expression)   { x.ops = o.ops }
func (o numopt) apply(x *Expression)   { x.num = NumberOptions(o) }
func (o depthopt) apply(x *Expression) { x.maxDepth = int(o) }

func (cplxopt) apply(x *Expression) {
	x.ops = ComplexOperators
	if x.num.Imaginary == 0 {
		x.num.Imaginary = 'i'
	}
}

// WithOperators sets the operator table.
func WithOperators(ops *Operators) Option {
	return opsopt{ops}
}

// WithNumberOptions sets the number literal grammar. NoSign has no effect;
// signs are always lexed as operators.
func WithNumberOptions(num NumberOptions) Option {
	return numopt(num)
}

// MaxDepth sets the limit on nested function calls.
func MaxDepth(n int) Option {
	return depthopt(n)
}

// ComplexMode selects complex arithmetic with the imaginary suffix i, unless
// an imaginary suffix is already set. Apply it after WithNumberOptions.
func ComplexMode() Option {
	return cplxopt{}
}
