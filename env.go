package expression

import (
	"sort"
	"sync"
)

// Environment is the global table of constants and functions. Expressions
// created from the same Environment share it by reference, so a definition
// made through one is visible to all of them.
//
// An Environment is safe for concurrent lookups, but a Define or Delete must
// not run concurrently with an evaluation of any Expression using it.
type Environment struct {
	consts map[string]Object
}

// NewEnvironment creates an empty environment.
func NewEnvironment() *Environment {
	return &Environment{consts: make(map[string]Object)}
}

// DefaultEnvironment creates an environment holding pi, e, and the native
// math library.
func DefaultEnvironment() *Environment {
	env := NewEnvironment()
	for name, obj := range defaults() {
		env.consts[name] = obj
	}
	return env
}

// Define binds name in the environment. It is an error to define a name that
// is already bound; Delete it first to replace it.
func (env *Environment) Define(name string, obj Object) error {
	if scanident(name) != len(name) {
		return &Error{Kind: NotAssignable, Msg: "invalid name " + quote(name)}
	}
	if _, ok := env.consts[name]; ok {
		return &Error{Kind: AssignToConstant, Msg: quote(name) + " is already defined"}
	}
	env.consts[name] = obj
	return nil
}

// Delete removes the binding of name. It reports whether there was one.
func (env *Environment) Delete(name string) bool {
	_, ok := env.consts[name]
	delete(env.consts, name)
	return ok
}

// Lookup returns the object bound to name.
func (env *Environment) Lookup(name string) (Object, bool) {
	obj, ok := env.consts[name]
	return obj, ok
}

// Names returns the bound names in sorted order.
func (env *Environment) Names() []string {
	names := make([]string, 0, len(env.consts))
	for k := range env.consts {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Param is a function parameter.
type Param struct {
	Name string
	// Default is the value used when a call omits the argument. Parameters
	// with no default are required.
	Default *Value
}

// Optional is a shortcut to create a parameter with a default value.
func Optional(name string, def Value) Param {
	return Param{Name: name, Default: &def}
}

// Required is a shortcut to create parameters without defaults.
func Required(names ...string) []Param {
	p := make([]Param, len(names))
	for i, n := range names {
		p[i].Name = n
	}
	return p
}

// UserFunc is a function whose body is an expression. The body is parsed the
// first time the function is called and the result is cached per operator
// table and number grammar.
type UserFunc struct {
	Params []Param
	Body   string

	mu    sync.Mutex
	cache map[cachekey][]*Token
}

type cachekey struct {
	ops *Operators
	num NumberOptions
}

// NewUserFunc creates a user function.
func NewUserFunc(body string, params ...Param) *UserFunc {
	return &UserFunc{Params: params, Body: body}
}

func (*UserFunc) object() {}

// rpn returns the compiled body for the given grammar.
func (f *UserFunc) rpn(ops *Operators, num NumberOptions) ([]*Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := cachekey{ops, num}
	if r, ok := f.cache[k]; ok {
		return r, nil
	}
	r, err := compile(f.Body, ops, num)
	if err != nil {
		return nil, err
	}
	if f.cache == nil {
		f.cache = make(map[cachekey][]*Token)
	}
	f.cache[k] = r
	return r, nil
}

func quote(s string) string {
	return "'" + s + "'"
}
