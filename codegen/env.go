package codegen

import "github.com/ajsnow/llvm"

// Env is the emitter's symbol table: a mapping from variable name to
// the stack-slot address holding its current float64 value. It is an
// adaptation of the interpreter's lexical scope chain — LookUp walks
// up through Parent exactly as the original Scope.LookUp does — but
// retyped to hold llvm.Value stack slots instead of runtime objects,
// since Kaleidoscope's "named_values" table (spec.md §4.3) plays the
// same role const/let tracking played in the source this is adapted
// from.
//
// Var and For push a child Env for their own bindings and restore the
// parent Env once their body has been emitted; that push/pop pair IS
// the "save prior binding, install, restore" shadowing mechanism
// spec.md describes.
type Env struct {
	Variables map[string]llvm.Value
	Parent    *Env
}

// NewEnv creates an Env linked to parent (nil for a function's
// top-level named_values table).
func NewEnv(parent *Env) *Env {
	return &Env{Variables: make(map[string]llvm.Value), Parent: parent}
}

// LookUp searches this Env and its ancestors for name.
func (e *Env) LookUp(name string) (llvm.Value, bool) {
	if e == nil {
		return llvm.Value{}, false
	}
	if v, ok := e.Variables[name]; ok {
		return v, true
	}
	return e.Parent.LookUp(name)
}

// Bind creates or overwrites a binding in this Env only.
func (e *Env) Bind(name string, v llvm.Value) {
	e.Variables[name] = v
}
