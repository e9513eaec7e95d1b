package objects

import "ecmavm/pkg/vm"

// Host is the concrete vm.Host: it owns the well-known prototypes every
// constructor in this package needs and a back-reference to the VM that
// runs script closures, so FunctionCall/FunctionConstruct can hand a
// FunctionObject's code unit back to the same interpreter loop that
// called them. The VM and the Host are constructed in two steps for
// exactly this reason — vm.NewVM needs a Host value before the Host can
// hold a *vm.VM back-reference — so callers must call BindVM right after
// both exist.
type Host struct {
	vm *vm.VM

	objectProto    vm.Value
	arrayProto     vm.Value
	functionProto  vm.Value
	errorProto     vm.Value
	regexpProto    vm.Value
	generatorProto vm.Value
}

// NewHost builds a Host with fresh, empty prototype objects. Callers
// that want Object.prototype/Array.prototype/etc. to carry any built-in
// methods install them as own properties on the returned Host's
// prototypes before running any script; this collaborator itself
// installs none, per the minimal-surface scope it targets.
func NewHost() *Host {
	h := &Host{}
	h.objectProto = vm.MakeObject(NewPlainObject(vm.Null()))
	h.functionProto = vm.MakeObject(NewPlainObject(h.objectProto))
	h.arrayProto = vm.MakeObject(NewPlainObject(h.objectProto))
	h.errorProto = vm.MakeObject(NewPlainObject(h.objectProto))
	h.regexpProto = vm.MakeObject(NewPlainObject(h.objectProto))
	h.generatorProto = vm.MakeObject(NewPlainObject(h.objectProto))
	return h
}

// BindVM completes construction by giving the host a way to run a
// script closure's code unit; must be called once, immediately after
// vm.NewVM(host).
func (h *Host) BindVM(v *vm.VM) { h.vm = v }

func (h *Host) ObjectProto() vm.Value    { return h.objectProto }
func (h *Host) ArrayProto() vm.Value     { return h.arrayProto }
func (h *Host) FunctionProto() vm.Value  { return h.functionProto }
func (h *Host) ErrorProto() vm.Value     { return h.errorProto }
func (h *Host) RegExpProto() vm.Value    { return h.regexpProto }
func (h *Host) GeneratorProto() vm.Value { return h.generatorProto }

// --- Property access ------------------------------------------------------

// ObjectGet reads obj[key], walking the prototype chain for a data
// property and invoking a getter where the chain holds an accessor
// instead; a proxy with a `get` trap defers to it before touching its
// own table at all.
func (h *Host) ObjectGet(obj vm.ObjectRef, key vm.Value) (vm.Value, error) {
	v, _, err := h.objectGetKind(obj, key)
	return v, err
}

// ObjectGetWithKind is ObjectGet plus the PropertyKind the returned value
// came from, so getValue's lookup cache can refuse to store a getter's
// return value as if it were a stable data property.
func (h *Host) ObjectGetWithKind(obj vm.ObjectRef, key vm.Value) (vm.Value, vm.PropertyKind, error) {
	return h.objectGetKind(obj, key)
}

func (h *Host) objectGetKind(obj vm.ObjectRef, key vm.Value) (vm.Value, vm.PropertyKind, error) {
	if p, ok := obj.(*ProxyObject); ok {
		if trap, has := p.trap(h, "get"); has {
			v, err := h.FunctionCall(trap, p.handler, []vm.Value{p.target, key, vm.MakeObject(p)})
			// A trap can return anything it likes on every call, so its
			// result is never safe to cache as a stable data property.
			return v, vm.PropertyAccessor, err
		}
		if p.target.IsObject() {
			return h.objectGetKind(p.target.AsObject(), key)
		}
		return vm.Undefined(), vm.PropertyMissing, nil
	}
	if arr, ok := obj.(*ArrayObject); ok {
		if key.IsString() && key.AsString() == "length" {
			return vm.MakeInt(int32(arr.Length())), vm.PropertyData, nil
		}
		if idx, ok := arrayIndex(key); ok {
			if v, found := arr.getIndex(idx); found {
				return v, vm.PropertyData, nil
			}
			return vm.Undefined(), vm.PropertyMissing, nil
		}
	}
	receiver, ok := obj.(Objecter)
	if !ok {
		return vm.Undefined(), vm.PropertyMissing, nil
	}
	cur := vm.MakeObject(receiver)
	for cur.IsObject() {
		o, ok := cur.AsObject().(Objecter)
		if !ok {
			break
		}
		if e, found := getOwn(o, key); found {
			if e.isAccessor {
				if e.getter.IsUndefined() {
					return vm.Undefined(), vm.PropertyAccessor, nil
				}
				v, err := h.FunctionCall(e.getter, vm.MakeObject(receiver), nil)
				return v, vm.PropertyAccessor, err
			}
			return e.value, vm.PropertyData, nil
		}
		cur = o.base().proto
	}
	return vm.Undefined(), vm.PropertyMissing, nil
}

func (h *Host) ObjectPutWithReceiver(obj vm.ObjectRef, key vm.Value, val vm.Value, receiver vm.ObjectRef, strict bool) error {
	if p, ok := obj.(*ProxyObject); ok {
		if trap, has := p.trap(h, "set"); has {
			_, err := h.FunctionCall(trap, p.handler, []vm.Value{p.target, key, val, vm.MakeObject(p)})
			return err
		}
		if p.target.IsObject() {
			return h.ObjectPutWithReceiver(p.target.AsObject(), key, val, receiver, strict)
		}
		return nil
	}
	if arr, ok := obj.(*ArrayObject); ok {
		if key.IsString() && key.AsString() == "length" {
			n, err := h.ToNumber(val)
			if err != nil {
				return err
			}
			newLen := int(n.AsFloat())
			if newLen < arr.Length() {
				arr.dense = arr.dense[:newLen]
			} else {
				for i := arr.Length(); i < newLen; i++ {
					arr.setIndex(i, vm.ArrayHole())
				}
			}
			return nil
		}
		if idx, ok := arrayIndex(key); ok {
			arr.setIndex(idx, val)
			return nil
		}
	}
	// Walk the prototype chain looking for an inherited accessor/non-
	// writable data property, which redirects the write; otherwise the
	// value lands as an own property of the original receiver.
	cur := vm.MakeObject(obj)
	for cur.IsObject() {
		o, ok := cur.AsObject().(Objecter)
		if !ok {
			break
		}
		if e, found := getOwn(o, key); found {
			if e.isAccessor {
				if e.setter.IsUndefined() {
					return nil
				}
				_, err := h.FunctionCall(e.setter, vm.MakeObject(receiver), []vm.Value{val})
				return err
			}
			if !e.writable {
				if strict {
					return h.raiseTypeErrorErr("Cannot assign to read only property '%s'", key.String())
				}
				return nil
			}
			break
		}
		cur = o.base().proto
	}
	ro, ok := receiver.(Objecter)
	if !ok {
		return h.raiseTypeErrorErr("cannot set property on a non-object receiver")
	}
	defineOwn(ro, key, val, true, true, true)
	return nil
}

func (h *Host) ObjectHasProperty(obj vm.ObjectRef, key vm.Value) (bool, error) {
	if p, ok := obj.(*ProxyObject); ok {
		if trap, has := p.trap(h, "has"); has {
			result, err := h.FunctionCall(trap, p.handler, []vm.Value{p.target, key})
			if err != nil {
				return false, err
			}
			return h.ToBoolean(result), nil
		}
		if p.target.IsObject() {
			return h.ObjectHasProperty(p.target.AsObject(), key)
		}
		return false, nil
	}
	if arr, ok := obj.(*ArrayObject); ok {
		if key.IsString() && key.AsString() == "length" {
			return true, nil
		}
		if idx, ok := arrayIndex(key); ok {
			_, found := arr.getIndex(idx)
			return found, nil
		}
	}
	o, ok := obj.(Objecter)
	if !ok {
		return false, nil
	}
	_, found, _ := walkProto(vm.MakeObject(o), func(cur Objecter) (vm.Value, bool, bool) {
		if ownHas(cur, key) {
			return vm.Undefined(), true, false
		}
		return vm.Undefined(), false, false
	})
	return found, nil
}

func (h *Host) ObjectDelete(obj vm.ObjectRef, key vm.Value) (bool, error) {
	if p, ok := obj.(*ProxyObject); ok {
		if trap, has := p.trap(h, "deleteProperty"); has {
			result, err := h.FunctionCall(trap, p.handler, []vm.Value{p.target, key})
			if err != nil {
				return false, err
			}
			return h.ToBoolean(result), nil
		}
		if p.target.IsObject() {
			return h.ObjectDelete(p.target.AsObject(), key)
		}
		return true, nil
	}
	if arr, ok := obj.(*ArrayObject); ok {
		if idx, ok := arrayIndex(key); ok && idx < arr.Length() {
			arr.dense[idx] = vm.ArrayHole()
			return true, nil
		}
	}
	o, ok := obj.(Objecter)
	if !ok {
		return true, nil
	}
	return deleteOwn(o, key), nil
}

func (h *Host) ObjectDefineOwn(obj vm.ObjectRef, key vm.Value, val vm.Value, writable, enumerable, configurable bool) error {
	if arr, ok := obj.(*ArrayObject); ok {
		if idx, ok := arrayIndex(key); ok {
			arr.setIndex(idx, val)
			return nil
		}
	}
	o, ok := obj.(Objecter)
	if !ok {
		return h.raiseTypeErrorErr("cannot define a property on this value")
	}
	defineOwn(o, key, val, writable, enumerable, configurable)
	return nil
}

func (h *Host) ObjectDefineAccessor(obj vm.ObjectRef, key vm.Value, getter, setter vm.Value, enumerable, configurable bool) error {
	o, ok := obj.(Objecter)
	if !ok {
		return h.raiseTypeErrorErr("cannot define an accessor on this value")
	}
	defineAccessor(o, key, getter, setter, enumerable, configurable)
	return nil
}

func (h *Host) ObjectSetProto(obj vm.ObjectRef, proto vm.Value) error {
	o, ok := obj.(Objecter)
	if !ok {
		return h.raiseTypeErrorErr("cannot set the prototype of this value")
	}
	o.base().proto = proto
	return nil
}

func (h *Host) ObjectGetProto(obj vm.ObjectRef) (vm.Value, error) {
	o, ok := obj.(Objecter)
	if !ok {
		return vm.Null(), nil
	}
	return o.base().proto, nil
}

func (h *Host) IsFastArray(obj vm.ObjectRef) bool {
	_, ok := obj.(*ArrayObject)
	return ok
}

func (h *Host) FastArrayGet(obj vm.ObjectRef, index int) (vm.Value, bool) {
	arr, ok := obj.(*ArrayObject)
	if !ok {
		return vm.Undefined(), false
	}
	return arr.getIndex(index)
}

func (h *Host) FastArrayLength(obj vm.ObjectRef) int {
	arr, ok := obj.(*ArrayObject)
	if !ok {
		return 0
	}
	return arr.Length()
}

// --- Callable classification ----------------------------------------------

func (h *Host) IsCallable(v vm.Value) bool {
	if !v.IsObject() {
		return false
	}
	switch v.AsObject().(type) {
	case *FunctionObject, *NativeFunction, *BoundFunctionObject:
		return true
	default:
		return false
	}
}

func (h *Host) IsConstructor(v vm.Value) bool {
	if !v.IsObject() {
		return false
	}
	switch o := v.AsObject().(type) {
	case *FunctionObject:
		return o.IsConstructible()
	case *BoundFunctionObject:
		return h.IsConstructor(o.target)
	default:
		return false
	}
}

func (h *Host) IsPlainObject(v vm.Value) bool {
	if !v.IsObject() {
		return false
	}
	_, ok := v.AsObject().(*PlainObject)
	return ok
}

func (h *Host) IsExtensible(obj vm.ObjectRef) bool {
	o, ok := obj.(Objecter)
	if !ok {
		return false
	}
	return o.base().extensible
}

func (h *Host) PreventExtensions(obj vm.ObjectRef) error {
	o, ok := obj.(Objecter)
	if !ok {
		return h.raiseTypeErrorErr("cannot change extensibility of this value")
	}
	o.base().extensible = false
	return nil
}

// --- Invocation -------------------------------------------------------------

func (h *Host) FunctionCall(fn vm.Value, this vm.Value, args []vm.Value) (vm.Value, error) {
	if !fn.IsObject() {
		return vm.Undefined(), h.raiseTypeErrorErr("value is not a function")
	}
	switch f := fn.AsObject().(type) {
	case *NativeFunction:
		return f.call(this, args)
	case *BoundFunctionObject:
		return h.FunctionCall(f.target, f.boundThis, append(append([]vm.Value{}, f.boundArgs...), args...))
	case *FunctionObject:
		return h.vm.RunFunction(f.unit, this, f.env, args, fn)
	default:
		return vm.Undefined(), h.raiseTypeErrorErr("value is not a function")
	}
}

func (h *Host) FunctionConstruct(fn vm.Value, newTarget vm.Value, args []vm.Value) (vm.Value, error) {
	if !fn.IsObject() {
		return vm.Undefined(), h.raiseTypeErrorErr("value is not a constructor")
	}
	switch f := fn.AsObject().(type) {
	case *BoundFunctionObject:
		return h.FunctionConstruct(f.target, newTarget, append(append([]vm.Value{}, f.boundArgs...), args...))
	case *FunctionObject:
		protoVal, err := h.ObjectGet(fn.AsObject(), vm.MakeString("prototype"))
		if err != nil {
			return vm.Undefined(), err
		}
		if !protoVal.IsObject() {
			protoVal = h.objectProto
		}
		inst := vm.MakeObject(NewPlainObject(protoVal))
		result, err := h.vm.RunFunction(f.unit, inst, f.env, args, newTarget)
		if err != nil {
			return vm.Undefined(), err
		}
		if result.IsObject() {
			return result, nil
		}
		return inst, nil
	default:
		return vm.Undefined(), h.raiseTypeErrorErr("value is not a constructor")
	}
}

// --- Refcounting ------------------------------------------------------------
//
// Go's GC already reclaims every type in this package; Retain/Release
// exist only to satisfy vm.ObjectHost, matching the dispatcher's
// ownership-transfer call shape without doing anything observable.

func (h *Host) Retain(ref vm.ObjectRef)  {}
func (h *Host) Release(ref vm.ObjectRef) {}

// --- Constructors the VM core calls through the host -----------------------

func (h *Host) NewArrayFromSlice(items []vm.Value) (vm.Value, error) {
	return vm.MakeObject(NewArrayObject(h.arrayProto, items)), nil
}

func (h *Host) NewPlainObject() (vm.Value, error) {
	return vm.MakeObject(NewPlainObject(h.objectProto)), nil
}

func (h *Host) NewArguments(args []vm.Value, callee vm.Value, isStrict bool) (vm.Value, error) {
	return vm.MakeObject(NewArguments(h.arrayProto, args, callee, isStrict)), nil
}

func (h *Host) NewClosure(unit *vm.CodeUnit, env *vm.LexEnv, name string) (vm.Value, error) {
	fn := NewFunctionObject(h.functionProto, unit, env, name)
	if fn.IsConstructible() {
		protoObj := NewPlainObject(h.objectProto)
		defineOwn(protoObj, vm.MakeString("constructor"), vm.MakeObject(fn), true, false, true)
		defineOwn(fn, vm.MakeString("prototype"), vm.MakeObject(protoObj), true, false, false)
	}
	return vm.MakeObject(fn), nil
}

// NewGeneratorObject wraps gs/resume in a GeneratorObject and installs
// next/throw/return as native methods, each mapping resume's raw
// (value, done, err) back to the {value, done} iterator-result shape
// script code observes.
func (h *Host) NewGeneratorObject(gs *vm.GeneratorSuspend, resume func(kind vm.ResumeKind, value vm.Value) (vm.Value, bool, error)) (vm.Value, error) {
	g := NewGeneratorObject(h.generatorProto, gs, resume)
	gv := vm.MakeObject(g)
	install := func(name string, kind vm.ResumeKind) {
		nf := NewNativeFunction(h.functionProto, name, func(this vm.Value, args []vm.Value) (vm.Value, error) {
			var arg vm.Value = vm.Undefined()
			if len(args) > 0 {
				arg = args[0]
			}
			val, done, err := g.resume(kind, arg)
			if err != nil {
				return vm.Undefined(), err
			}
			return h.iterResult(val, done), nil
		})
		defineOwn(g, vm.MakeString(name), vm.MakeObject(nf), true, false, true)
	}
	install("next", vm.ResumeNext)
	install("throw", vm.ResumeThrow)
	install("return", vm.ResumeReturn)
	return gv, nil
}
