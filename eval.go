package expression

import "strconv"

// item is an entry on the evaluation stack. A symbol stays unresolved until
// an operator consumes it so that = can use it as a name.
type item struct {
	sym *Token
	val Value
}

// fail creates an error with a snapshot of the current call stack.
func (x *Expression) fail(kind ErrorKind, tok *Token, msg string) *Error {
	return &Error{Kind: kind, Msg: msg, Token: tok, Frames: x.snapshot()}
}

// run evaluates an RPN program in the current frame.
func (x *Expression) run(rpn []*Token) (Value, *Error) {
	stack := make([]item, 0, 8)
	for _, tok := range rpn {
		switch tok.Kind {
		case TokenNumber:
			stack = append(stack, item{val: x.coerce(tok.num)})
		case TokenSymbol:
			stack = append(stack, item{sym: tok})
		case TokenOperator:
			n := opinfos[tok.op].arity
			if len(stack) < n {
				return 0, x.fail(StackUnderflow, tok, "stack underflow whilst executing operator "+tok.op.String())
			}
			var args [2]item
			copy(args[:], stack[len(stack)-n:])
			stack = stack[:len(stack)-n]
			v, err := x.apply(tok, args[:n])
			if err != nil {
				return 0, err
			}
			stack = append(stack, item{val: v})
		case TokenCall:
			v, err := x.call(tok)
			if err != nil {
				return 0, err
			}
			stack = append(stack, item{val: v})
		default:
			return 0, x.fail(SyntaxError, tok, "invalid token "+tok.String())
		}
	}
	switch len(stack) {
	case 1:
		return x.resolve(stack[0])
	case 0:
		return 0, x.fail(ResultStackImbalance, nil, "expected one item in result stack, got none")
	default:
		return 0, x.fail(ResultStackImbalance, nil, "expected one item in result stack, got "+strconv.Itoa(len(stack)))
	}
}

// resolve converts a stack item to a value.
func (x *Expression) resolve(it item) (Value, *Error) {
	if it.sym == nil {
		return it.val, nil
	}
	name := it.sym.name
	obj, ok := x.lookup(name)
	if !ok {
		if x.imaginaryUnit(name) {
			return Complex(0, 1), nil
		}
		return 0, x.fail(UnboundSymbol, it.sym, "unbound symbol referenced "+quote(name))
	}
	v, ok := obj.(Value)
	if !ok {
		return 0, x.fail(TypeMismatch, it.sym, quote(name)+" is a function, not a number")
	}
	return x.coerce(v), nil
}

// coerce maps v into the domain of the operator table.
func (x *Expression) coerce(v Value) Value {
	if x.ops.Coerce == nil {
		return v
	}
	return x.ops.Coerce(v)
}

// apply executes an operator on its operands.
func (x *Expression) apply(tok *Token, args []item) (Value, *Error) {
	switch tok.op {
	case opAssign:
		target := args[0].sym
		if target == nil {
			return 0, x.fail(NotAssignable, tok, "left side of = must be a name")
		}
		v, err := x.resolve(args[1])
		if err != nil {
			return 0, err
		}
		if err := x.setSymbol(target.name, v); err != nil {
			err.Token = target
			err.Frames = x.snapshot()
			return 0, err
		}
		return v, nil
	case opComma:
		if _, err := x.resolve(args[0]); err != nil {
			return 0, err
		}
		return x.resolve(args[1])
	}
	var vals [2]Value
	for i, it := range args {
		v, err := x.resolve(it)
		if err != nil {
			return 0, err
		}
		vals[i] = v
	}
	switch len(args) {
	case 1:
		if tok.unary != nil {
			return tok.unary(vals[0]), nil
		}
	case 2:
		if tok.binary != nil {
			return tok.binary(vals[0], vals[1]), nil
		}
	}
	return 0, x.fail(NotCallable, tok, "operator "+tok.op.String()+" is not defined for "+x.ops.Name+" arithmetic")
}

// call executes a call token. Arguments are evaluated in the caller's frame,
// then the callee runs in a new frame holding its parameters.
func (x *Expression) call(tok *Token) (Value, *Error) {
	callee := tok.callee
	obj, ok := x.lookup(callee.name)
	if !ok {
		return 0, x.fail(UnboundSymbol, callee, "unbound function referenced "+quote(callee.name))
	}
	var (
		params   []Param
		variadic bool
	)
	switch f := obj.(type) {
	case *Func:
		params, variadic = f.Params, f.Variadic
	case *UserFunc:
		params = f.Params
	default:
		return 0, x.fail(NotCallable, callee, quote(callee.name)+" is not a function")
	}

	vals := make([]Value, len(tok.args))
	for i, arg := range tok.args {
		v, err := x.run(arg)
		if err != nil {
			return 0, err
		}
		vals[i] = v
	}

	if len(x.frames) > x.maxDepth {
		return 0, x.fail(RecursionLimitExceeded, tok, "call depth exceeds "+strconv.Itoa(x.maxDepth))
	}
	fr := x.push(callee.name, tok)
	defer x.pop()

	if len(vals) > len(params) && !variadic {
		return 0, x.fail(ArityMismatch, tok, callee.name+" takes at most "+strconv.Itoa(len(params))+" arguments, got "+strconv.Itoa(len(vals)))
	}
	args := make([]Value, len(params), len(vals)+len(params))
	for i, p := range params {
		switch {
		case i < len(vals):
			args[i] = vals[i]
		case p.Default != nil:
			args[i] = *p.Default
		default:
			return 0, x.fail(MissingArgument, tok, "missing argument "+quote(p.Name)+" in call to "+callee.name)
		}
		fr.def(p.Name, args[i])
	}
	if len(vals) > len(params) {
		args = append(args, vals[len(params):]...)
	}

	var r Value
	switch f := obj.(type) {
	case *Func:
		if f.Fn == nil {
			return 0, &Error{Kind: FunctionError, Msg: callee.name + ": " + errNativeResult.Error(), Token: tok, Frames: x.snapshot(), Err: errNativeResult}
		}
		v, err := f.Fn(args, x.ops.Complex)
		if err != nil {
			return 0, &Error{Kind: FunctionError, Msg: callee.name + ": " + err.Error(), Token: tok, Frames: x.snapshot(), Err: err}
		}
		r = v
	case *UserFunc:
		rpn, err := f.rpn(x.ops, x.num)
		if err != nil {
			e := err.(*Error)
			e.Func = callee.name
			e.Frames = x.snapshot()
			return 0, e
		}
		v, e := x.run(rpn)
		if e != nil {
			return 0, e
		}
		r = v
	}
	return x.coerce(r), nil
}
