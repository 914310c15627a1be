package expression

import "strconv"

// ErrorKind classifies an Error.
type ErrorKind uint8

const (
	NoError ErrorKind = iota
	// LexError is an unknown character in the source.
	LexError
	// SyntaxError is an unbalanced parenthesis.
	SyntaxError
	// StackUnderflow is an operator with too few operands.
	StackUnderflow
	// UnboundSymbol is a name with no binding in any frame or the
	// environment.
	UnboundSymbol
	// AssignToConstant is an assignment to a name in the environment.
	AssignToConstant
	// NotAssignable is an assignment whose target is not a name.
	NotAssignable
	// ArityMismatch is a call with more arguments than parameters.
	ArityMismatch
	// MissingArgument is a call that leaves a parameter without a value or
	// default.
	MissingArgument
	// NotCallable is a call of something that is not a function.
	NotCallable
	// TypeMismatch is a function used where a number is needed.
	TypeMismatch
	// ResultStackImbalance is an expression that leaves zero or several
	// values.
	ResultStackImbalance
	// RecursionLimitExceeded is a call nested deeper than the limit.
	RecursionLimitExceeded
	// FunctionError is an error returned by a native function.
	FunctionError
)

var kindnames = [...]string{
	NoError:                "NoError",
	LexError:               "LexError",
	SyntaxError:            "SyntaxError",
	StackUnderflow:         "StackUnderflow",
	UnboundSymbol:          "UnboundSymbol",
	AssignToConstant:       "AssignToConstant",
	NotAssignable:          "NotAssignable",
	ArityMismatch:          "ArityMismatch",
	MissingArgument:        "MissingArgument",
	NotCallable:            "NotCallable",
	TypeMismatch:           "TypeMismatch",
	ResultStackImbalance:   "ResultStackImbalance",
	RecursionLimitExceeded: "RecursionLimitExceeded",
	FunctionError:          "FunctionError",
}

func (k ErrorKind) String() string {
	if int(k) < len(kindnames) {
		return kindnames[k]
	}
	return "ErrorKind(" + strconv.Itoa(int(k)) + ")"
}

// FrameInfo is a snapshot of a call frame taken when an error occurs.
type FrameInfo struct {
	// Name is the name of the function executing in the frame, or _MAIN.
	Name string
	// Call is the call token that entered the frame, if any.
	Call *Token
}

// Error is an error from lexing, parsing, or evaluating an expression. It
// implements InputError.
type Error struct {
	Kind ErrorKind
	// Msg describes the error.
	Msg string
	// Token is the offending token, if there is one.
	Token *Token
	// Frames is the call stack at the time of the error, outermost first.
	Frames []FrameInfo
	// Func names the user function whose body failed to parse, if any.
	Func string
	// Err is the underlying error from a native function, if any.
	Err error
}

func (err *Error) Error() string {
	msg := err.Kind.String() + ": " + err.Msg
	if err.Func != "" {
		msg += " (in function " + err.Func + ")"
	}
	return msg
}

func (err *Error) Unwrap() error {
	return err.Err
}

// Is reports whether target is an *Error of the same kind, so that errors
// can be matched against the Err* sentinels.
func (err *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Msg == "" && t.Token == nil && t.Kind == err.Kind
}

// Pos returns the byte offset of the offending token, or -1.
func (err *Error) Pos() int {
	if err.Token == nil {
		return -1
	}
	return err.Token.Start
}

// InputError is an error with position information.
type InputError interface {
	error
	// Pos returns the byte offset of the token that caused the error, or -1
	// if there is none.
	Pos() int
}

var _ InputError = (*Error)(nil)

// Sentinels for use with errors.Is.
var (
	ErrLex                    = &Error{Kind: LexError}
	ErrSyntax                 = &Error{Kind: SyntaxError}
	ErrStackUnderflow         = &Error{Kind: StackUnderflow}
	ErrUnboundSymbol          = &Error{Kind: UnboundSymbol}
	ErrAssignToConstant       = &Error{Kind: AssignToConstant}
	ErrNotAssignable          = &Error{Kind: NotAssignable}
	ErrArityMismatch          = &Error{Kind: ArityMismatch}
	ErrMissingArgument        = &Error{Kind: MissingArgument}
	ErrNotCallable            = &Error{Kind: NotCallable}
	ErrTypeMismatch           = &Error{Kind: TypeMismatch}
	ErrResultStackImbalance   = &Error{Kind: ResultStackImbalance}
	ErrRecursionLimitExceeded = &Error{Kind: RecursionLimitExceeded}
	ErrFunction               = &Error{Kind: FunctionError}
)
