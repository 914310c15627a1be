package expression

import "strconv"

// compile lexes src and converts it to RPN with calls extracted.
func compile(src string, ops *Operators, num NumberOptions) ([]*Token, error) {
	toks, err := lex(src, ops, num)
	if err != nil {
		return nil, err
	}
	toks, err = extractCalls(toks)
	if err != nil {
		return nil, err
	}
	return toRPN(toks)
}

func isop(tok *Token, op opcode) bool {
	return tok.Kind == TokenOperator && tok.op == op
}

// extractCalls collapses every span of the form name(args...) into a single
// call token. Each comma-separated argument is extracted and converted to RPN
// on its own, so a call token is an operand as far as the outer expression
// is concerned.
func extractCalls(toks []*Token) ([]*Token, error) {
	out := make([]*Token, 0, len(toks))
	for i := 0; i < len(toks); i++ {
		tok := toks[i]
		if tok.Kind != TokenSymbol || i+1 >= len(toks) || !isop(toks[i+1], opOpen) {
			out = append(out, tok)
			continue
		}
		depth := 0
		j := i + 1
		for ; j < len(toks); j++ {
			switch {
			case isop(toks[j], opOpen):
				depth++
			case isop(toks[j], opClose):
				depth--
			}
			if depth == 0 {
				break
			}
		}
		if depth != 0 {
			return nil, &Error{
				Kind:  SyntaxError,
				Msg:   "expected " + strconv.Itoa(depth) + " more ')' to close call to " + tok.name,
				Token: toks[i+1],
			}
		}
		args, err := splitArgs(toks[i+2 : j])
		if err != nil {
			return nil, err
		}
		out = append(out, &Token{
			Kind:   TokenCall,
			Start:  tok.Start,
			End:    toks[j].End,
			src:    tok.src,
			callee: tok,
			args:   args,
		})
		i = j
	}
	return out, nil
}

// splitArgs splits the tokens between a call's parentheses on top-level
// commas and compiles each argument to RPN. An empty list has no arguments.
func splitArgs(toks []*Token) ([][]*Token, error) {
	if len(toks) == 0 {
		return nil, nil
	}
	var args [][]*Token
	depth, start := 0, 0
	for k := 0; k <= len(toks); k++ {
		if k < len(toks) {
			switch {
			case isop(toks[k], opOpen):
				depth++
				continue
			case isop(toks[k], opClose):
				depth--
				continue
			case depth != 0 || !isop(toks[k], opComma):
				continue
			}
		}
		arg, err := extractCalls(toks[start:k])
		if err != nil {
			return nil, err
		}
		rpn, err := toRPN(arg)
		if err != nil {
			return nil, err
		}
		args = append(args, rpn)
		start = k + 1
	}
	return args, nil
}

// toRPN converts infix tokens to postfix order with the shunting-yard
// algorithm.
func toRPN(toks []*Token) ([]*Token, error) {
	out := make([]*Token, 0, len(toks))
	var stack []*Token
	for _, tok := range toks {
		if tok.Kind != TokenOperator {
			out = append(out, tok)
			continue
		}
		switch tok.op {
		case opOpen:
			stack = append(stack, tok)
		case opClose:
			for {
				if len(stack) == 0 {
					return nil, &Error{Kind: SyntaxError, Msg: "unmatched ')'", Token: tok}
				}
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if top.op == opOpen {
					break
				}
				out = append(out, top)
			}
		default:
			info := opinfos[tok.op]
			for len(stack) > 0 {
				p := opinfos[stack[len(stack)-1].op].prec
				if p < info.prec || info.right && p == info.prec {
					break
				}
				out = append(out, stack[len(stack)-1])
				stack = stack[:len(stack)-1]
			}
			stack = append(stack, tok)
		}
	}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.op == opOpen {
			return nil, &Error{Kind: SyntaxError, Msg: "unmatched '('", Token: top}
		}
		out = append(out, top)
	}
	return out, nil
}
