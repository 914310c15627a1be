package expression

// mainFrame is the name of the base frame, which is never popped.
const mainFrame = "_MAIN"

// frame is the local scope of one call.
type frame struct {
	name   string
	locals map[string]Object
	call   *Token
}

func (f *frame) def(name string, obj Object) {
	if f.locals == nil {
		f.locals = make(map[string]Object)
	}
	f.locals[name] = obj
}

// lookup finds name in the innermost frame that binds it, then in the
// environment.
func (x *Expression) lookup(name string) (Object, bool) {
	for i := len(x.frames) - 1; i >= 0; i-- {
		if obj, ok := x.frames[i].locals[name]; ok {
			return obj, true
		}
	}
	return x.env.Lookup(name)
}

// imaginaryUnit reports whether name refers to the imaginary unit, which is
// the fallback for the imaginary suffix used as a bare name in complex
// arithmetic.
func (x *Expression) imaginaryUnit(name string) bool {
	return x.ops.Complex && x.num.Imaginary != 0 && name == string(x.num.Imaginary)
}

// setSymbol assigns to the innermost existing binding of name, or creates one
// in the innermost frame. Names in the environment cannot be assigned.
func (x *Expression) setSymbol(name string, obj Object) *Error {
	if _, ok := x.env.Lookup(name); ok {
		return &Error{Kind: AssignToConstant, Msg: "cannot assign to constant " + quote(name)}
	}
	for i := len(x.frames) - 1; i >= 0; i-- {
		if _, ok := x.frames[i].locals[name]; ok {
			x.frames[i].locals[name] = obj
			return nil
		}
	}
	x.defSymbol(name, obj)
	return nil
}

// defSymbol binds name in the innermost frame.
func (x *Expression) defSymbol(name string, obj Object) {
	x.frames[len(x.frames)-1].def(name, obj)
}

// push enters a new frame.
func (x *Expression) push(name string, call *Token) *frame {
	f := &frame{name: name, call: call}
	x.frames = append(x.frames, f)
	return f
}

// pop leaves the innermost frame. The base frame is never popped.
func (x *Expression) pop() {
	if len(x.frames) > 1 {
		x.frames[len(x.frames)-1] = nil
		x.frames = x.frames[:len(x.frames)-1]
	}
}

// snapshot copies the call stack for an error.
func (x *Expression) snapshot() []FrameInfo {
	r := make([]FrameInfo, len(x.frames))
	for i, f := range x.frames {
		r[i] = FrameInfo{Name: f.name, Call: f.call}
	}
	return r
}

// SetSymbol assigns a value or function to name, following the same rules as
// the = operator: the innermost frame that already binds name is updated,
// otherwise the binding is created in the innermost frame. It is an error to
// assign to a name defined in the environment.
func (x *Expression) SetSymbol(name string, obj Object) error {
	if err := x.setSymbol(name, obj); err != nil {
		return err
	}
	return nil
}

// GetSymbol returns the object bound to name, searching the call stack from
// the innermost frame outward and then the environment.
func (x *Expression) GetSymbol(name string) (Object, bool) {
	return x.lookup(name)
}

// HasSymbol reports whether name is bound in any frame or the environment.
func (x *Expression) HasSymbol(name string) bool {
	_, ok := x.lookup(name)
	return ok
}

// DelSymbol removes the innermost frame binding of name and reports whether
// there was one. Environment bindings are removed with Environment.Delete.
func (x *Expression) DelSymbol(name string) bool {
	for i := len(x.frames) - 1; i >= 0; i-- {
		if _, ok := x.frames[i].locals[name]; ok {
			delete(x.frames[i].locals, name)
			return true
		}
	}
	return false
}
