package expression

import (
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// DefaultMaxDepth is the default limit on nested function calls.
const DefaultMaxDepth = 512

// Expression is a parsed expression that can be evaluated repeatedly with
// different variable bindings. Each Expression owns its tokens and call
// stack; several Expressions may share one Environment.
//
// An Expression is not safe for concurrent use. The first error from parsing
// or evaluating it is sticky: Parse and Evaluate keep returning it until
// HandleError clears it.
type Expression struct {
	env      *Environment
	ops      *Operators
	num      NumberOptions
	maxDepth int

	src    string
	rpn    []*Token
	parsed bool

	frames []*frame
	err    *Error
}

// New creates an expression using env for global names. If env is nil, a
// new DefaultEnvironment is used.
func New(env *Environment, opts ...Option) *Expression {
	if env == nil {
		env = DefaultEnvironment()
	}
	x := &Expression{
		env:      env,
		ops:      RealOperators,
		maxDepth: DefaultMaxDepth,
		frames:   []*frame{{name: mainFrame}},
	}
	for _, opt := range opts {
		if opt != nil {
			opt.apply(x)
		}
	}
	return x
}

// Load sets the source text. It must be parsed again before evaluation.
func (x *Expression) Load(src string) *Expression {
	x.src = src
	x.rpn = nil
	x.parsed = false
	return x
}

// Source returns the loaded source text.
func (x *Expression) Source() string {
	return x.src
}

// Environment returns the environment the expression uses.
func (x *Expression) Environment() *Environment {
	return x.env
}

// Operators returns the active operator table.
func (x *Expression) Operators() *Operators {
	return x.ops
}

// Parse lexes the source and converts it to RPN.
func (x *Expression) Parse() error {
	if x.err != nil {
		return x.err
	}
	rpn, err := compile(x.src, x.ops, x.num)
	if err != nil {
		x.err = err.(*Error)
		return x.err
	}
	x.rpn = rpn
	x.parsed = true
	return nil
}

// SetOperators switches the operator table. Parsed tokens are re-bound to
// the new table without lexing again.
func (x *Expression) SetOperators(ops *Operators) {
	x.ops = ops
	bind(x.rpn, ops)
}

// Evaluate evaluates the expression with the current bindings. If the source
// has not been parsed, Evaluate parses it first.
func (x *Expression) Evaluate() (Value, error) {
	if x.err != nil {
		return 0, x.err
	}
	if !x.parsed {
		if err := x.Parse(); err != nil {
			return 0, err
		}
	}
	v, err := x.run(x.rpn)
	if err != nil {
		x.err = err
		return 0, err
	}
	return v, nil
}

// Err returns the sticky error, if any.
func (x *Expression) Err() error {
	if x.err == nil {
		return nil
	}
	return x.err
}

// Depth returns the number of frames on the call stack, including the base
// frame.
func (x *Expression) Depth() int {
	return len(x.frames)
}

// RPN returns the parsed expression in postfix order, with call arguments
// shown in parentheses.
func (x *Expression) RPN() string {
	return rpnString(x.rpn)
}

// Symbols returns the sorted names the parsed expression uses as operands,
// including inside call arguments.
func (x *Expression) Symbols() []string {
	seen := make(map[string]bool)
	var walk func([]*Token)
	walk = func(toks []*Token) {
		for _, tok := range toks {
			switch tok.Kind {
			case TokenSymbol:
				seen[tok.name] = true
			case TokenCall:
				for _, arg := range tok.args {
					walk(arg)
				}
			}
		}
	}
	walk(x.rpn)
	names := make([]string, 0, len(seen))
	for k := range seen {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// maxTrace is the number of frames HandleError shows at each end of a long
// call stack.
const maxTrace = 8

// HandleError formats the sticky error, clears it, and truncates the call
// stack to the base frame. The first line is the message. If there is an
// offending token, its source text follows with an underline of the same
// width. Then each frame is listed, outermost first, with the text of the
// call that entered it. The result is empty if there is no error.
func (x *Expression) HandleError() string {
	err := x.err
	x.err = nil
	for len(x.frames) > 1 {
		x.pop()
	}
	if err == nil {
		return ""
	}
	return FormatError(err)
}

// FormatError formats an error in the same way as HandleError.
func FormatError(err *Error) string {
	var b strings.Builder
	b.WriteString(err.Error())
	if err.Token != nil {
		b.WriteByte('\n')
		snippet(&b, "", err.Token)
	}
	frames := err.Frames
	for i := 0; i < len(frames); i++ {
		if len(frames) > 2*maxTrace && i == maxTrace {
			skip := len(frames) - 2*maxTrace
			b.WriteString("\n... " + strconv.Itoa(skip) + " more frames")
			i += skip - 1
			continue
		}
		f := frames[i]
		b.WriteString("\nat " + f.Name)
		if f.Call != nil {
			b.WriteString(": ")
			snippet(&b, strings.Repeat(" ", len("at "+f.Name+": ")), f.Call)
		}
	}
	return b.String()
}

// snippet writes the token's text, a newline, indent, and an underline as
// wide as the text.
func snippet(b *strings.Builder, indent string, tok *Token) {
	text := tok.Text()
	b.WriteString(text)
	b.WriteByte('\n')
	b.WriteString(indent)
	b.WriteString(underline(utf8.RuneCountInString(text)))
}

func underline(n int) string {
	if n <= 0 {
		return "^"
	}
	return "^" + strings.Repeat("~", n-1)
}
