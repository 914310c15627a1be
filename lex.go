package expression

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// TokenKind is the kind of a token.
type TokenKind uint8

const (
	TokenNone TokenKind = iota
	// TokenNumber is a real or imaginary literal.
	TokenNumber
	// TokenSymbol is a variable or function name.
	TokenSymbol
	// TokenOperator is an operator, a parenthesis, or a comma.
	TokenOperator
	// TokenCall is a function call with its arguments already in RPN.
	TokenCall
)

func (k TokenKind) String() string {
	switch k {
	case TokenNumber:
		return "Number"
	case TokenSymbol:
		return "Symbol"
	case TokenOperator:
		return "Operator"
	case TokenCall:
		return "Call"
	}
	return "None"
}

// Token is a lexical token. Tokens remember the source text they were lexed
// from so that errors can quote them.
type Token struct {
	Kind TokenKind
	// Start and End are the byte offsets of the token in its source. For a
	// call, the span covers the callee through the closing parenthesis.
	Start, End int

	src string

	num  Value  // TokenNumber
	name string // TokenSymbol

	op     opcode // TokenOperator
	unary  UnaryFunc
	binary BinaryFunc

	callee *Token     // TokenCall
	args   [][]*Token // TokenCall, each in RPN
}

// Text returns the source text the token spans.
func (t *Token) Text() string {
	if t == nil || t.End > len(t.src) {
		return ""
	}
	return t.src[t.Start:t.End]
}

// Source returns the whole source the token was lexed from.
func (t *Token) Source() string {
	return t.src
}

func (t *Token) String() string {
	switch t.Kind {
	case TokenNumber:
		return t.num.String()
	case TokenSymbol:
		return t.name
	case TokenOperator:
		return t.op.String()
	case TokenCall:
		var b strings.Builder
		b.WriteString(t.callee.name)
		b.WriteByte('(')
		for i, arg := range t.args {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(rpnString(arg))
		}
		b.WriteByte(')')
		return b.String()
	}
	return "<none>@" + strconv.Itoa(t.Start)
}

func rpnString(toks []*Token) string {
	var b strings.Builder
	for i, tok := range toks {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(tok.String())
	}
	return b.String()
}

// twochar and onechar map operator text to opcodes. Two-character operators
// are matched first.
var (
	twochar = map[string]opcode{
		"**": opPow,
		"==": opEq,
		"!=": opNe,
		"<=": opLe,
		">=": opGe,
	}
	onechar = map[byte]opcode{
		'+': opAdd,
		'-': opSub,
		'*': opMul,
		'/': opDiv,
		'%': opMod,
		'!': opFact,
		'<': opLt,
		'>': opGt,
		'=': opAssign,
		',': opComma,
		'(': opOpen,
		')': opClose,
	}
)

func scanop(s string) (opcode, int) {
	if len(s) >= 2 {
		if op, ok := twochar[s[:2]]; ok {
			return op, 2
		}
	}
	if len(s) >= 1 {
		if op, ok := onechar[s[0]]; ok {
			return op, 1
		}
	}
	return opNone, 0
}

func identStart(c byte) bool {
	return c == '_' || c == '$' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

func identPart(c byte) bool {
	return identStart(c) || '0' <= c && c <= '9'
}

func scanident(s string) int {
	if len(s) == 0 || !identStart(s[0]) {
		return 0
	}
	n := 1
	for n < len(s) && identPart(s[n]) {
		n++
	}
	return n
}

// lex splits src into tokens and binds operator tokens to ops. Leading signs
// are always lexed as operators, so num.NoSign is forced.
func lex(src string, ops *Operators, num NumberOptions) ([]*Token, error) {
	num.NoSign = true
	var toks []*Token
	for i := 0; i < len(src); {
		r, w := utf8.DecodeRuneInString(src[i:])
		if unicode.IsSpace(r) {
			i += w
			continue
		}
		if op, n := scanop(src[i:]); n > 0 {
			toks = append(toks, &Token{Kind: TokenOperator, Start: i, End: i + n, src: src, op: op})
			i += n
			continue
		}
		if lit := ScanNumber(src[i:], num); lit.Len > 0 {
			v := Real(lit.Value)
			if lit.Imag {
				v = Complex(0, lit.Value)
			}
			toks = append(toks, &Token{Kind: TokenNumber, Start: i, End: i + lit.Len, src: src, num: v})
			i += lit.Len
			continue
		}
		if n := scanident(src[i:]); n > 0 {
			toks = append(toks, &Token{Kind: TokenSymbol, Start: i, End: i + n, src: src, name: src[i : i+n]})
			i += n
			continue
		}
		bad := &Token{Start: i, End: i + w, src: src}
		return nil, &Error{
			Kind:  LexError,
			Msg:   "unknown token " + strconv.QuoteRune(r) + " at position " + strconv.Itoa(i),
			Token: bad,
		}
	}
	unaries(toks)
	bind(toks, ops)
	return toks, nil
}

// unaries rewrites + and - to their unary forms wherever no operand can
// precede them: at the start, or after any operator other than ).
func unaries(toks []*Token) {
	for i, tok := range toks {
		if tok.Kind != TokenOperator || (tok.op != opAdd && tok.op != opSub) {
			continue
		}
		if i > 0 {
			prev := toks[i-1]
			if prev.Kind != TokenOperator || prev.op == opClose {
				continue
			}
		}
		if tok.op == opAdd {
			tok.op = opPos
		} else {
			tok.op = opNeg
		}
	}
}

// bind attaches operator implementations from ops to every operator token,
// including those inside call arguments.
func bind(toks []*Token, ops *Operators) {
	for _, tok := range toks {
		switch tok.Kind {
		case TokenOperator:
			tok.unary = ops.unary(tok.op)
			tok.binary = ops.binary(tok.op)
		case TokenCall:
			for _, arg := range tok.args {
				bind(arg, ops)
			}
		}
	}
}
