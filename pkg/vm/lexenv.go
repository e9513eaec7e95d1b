package vm

// LexEnvKind distinguishes the two lexical environment record shapes: a
// declarative environment holding named bindings directly, and an
// object-bound environment that wraps a host object (used for `with`
// and the global environment).
type LexEnvKind uint8

const (
	LexEnvDeclarative LexEnvKind = iota
	LexEnvObjectBound
)

// Binding is one named slot of a declarative environment.
type Binding struct {
	Value        Value
	Writable     bool
	Enumerable   bool // var bindings expose this for the global object
	Configurable bool
	Initialized  bool // false denotes TDZ
}

// LexEnv is a lexical environment record. Block-flagged environments are
// transparent to `var` hoisting: VAR_EVAL and friends walk outward past
// them looking for the nearest function/global environment.
type LexEnv struct {
	Kind     LexEnvKind
	Outer    *LexEnv // nil at the root
	IsBlock  bool    // transparent to var hoisting

	// LexEnvDeclarative
	Bindings map[string]*Binding

	// LexEnvObjectBound
	Object  ObjectRef
	IsWith  bool // true for `with`, false for the global object-bound env
}

func NewDeclarativeEnv(outer *LexEnv, isBlock bool) *LexEnv {
	return &LexEnv{
		Kind:     LexEnvDeclarative,
		Outer:    outer,
		IsBlock:  isBlock,
		Bindings: make(map[string]*Binding),
	}
}

func NewObjectBoundEnv(outer *LexEnv, obj ObjectRef, isWith bool) *LexEnv {
	return &LexEnv{
		Kind:   LexEnvObjectBound,
		Outer:  outer,
		Object: obj,
		IsWith: isWith,
	}
}

// CreateBinding installs a new binding with the given attribute set:
// var is writable only, let is writable+enumerable, const is enumerable
// only.
func (e *LexEnv) CreateBinding(name string, writable, enumerable bool, initial Value, initialized bool) {
	e.Bindings[name] = &Binding{
		Value:        initial,
		Writable:     writable,
		Enumerable:   enumerable,
		Configurable: false,
		Initialized:  initialized,
	}
}

// Lookup finds the binding for name in this environment only (no outer
// chain walk); returns nil if absent.
func (e *LexEnv) Lookup(name string) *Binding {
	if e.Kind != LexEnvDeclarative {
		return nil
	}
	return e.Bindings[name]
}

// FunctionOrGlobalOuter walks outward past BLOCK-flagged environments to
// find the nearest function or global scope, as VAR_EVAL/EXT_VAR_EVAL do.
func (e *LexEnv) FunctionOrGlobalOuter() *LexEnv {
	cur := e
	for cur != nil && cur.IsBlock {
		cur = cur.Outer
	}
	return cur
}

// Clone makes a shallow copy of a declarative environment's binding map,
// used by CLONE_CONTEXT for per-iteration loop-variable environments.
func (e *LexEnv) Clone(copyBindings bool) *LexEnv {
	clone := &LexEnv{Kind: e.Kind, Outer: e.Outer, IsBlock: e.IsBlock, Object: e.Object, IsWith: e.IsWith}
	if e.Kind == LexEnvDeclarative {
		clone.Bindings = make(map[string]*Binding, len(e.Bindings))
		if copyBindings {
			for k, b := range e.Bindings {
				cp := *b
				clone.Bindings[k] = &cp
			}
		}
	}
	return clone
}
