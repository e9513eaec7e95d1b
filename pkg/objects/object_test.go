package objects

import (
	"testing"

	"ecmavm/pkg/vm"
)

func TestObjectGetOwnDataProperty(t *testing.T) {
	host := NewHost()
	obj := NewPlainObject(host.ObjectProto())
	defineOwn(obj, vm.MakeString("x"), vm.MakeInt(42), true, true, true)

	v, err := host.ObjectGet(obj, vm.MakeString("x"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.IsInt() || v.AsInt() != 42 {
		t.Fatalf("got %v, want 42", v)
	}
}

func TestObjectGetWalksPrototypeChain(t *testing.T) {
	host := NewHost()
	parent := NewPlainObject(host.ObjectProto())
	defineOwn(parent, vm.MakeString("greeting"), vm.MakeString("hi"), true, true, true)
	child := NewPlainObject(vm.MakeObject(parent))

	v, err := host.ObjectGet(child, vm.MakeString("greeting"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.IsString() || v.AsString() != "hi" {
		t.Fatalf("got %v, want %q", v, "hi")
	}
}

func TestObjectGetMissingPropertyIsUndefined(t *testing.T) {
	host := NewHost()
	obj := NewPlainObject(host.ObjectProto())

	v, err := host.ObjectGet(obj, vm.MakeString("nope"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.IsUndefined() {
		t.Fatalf("got %v, want undefined", v)
	}
}

func TestObjectGetInvokesInheritedAccessor(t *testing.T) {
	host := NewHost()
	parent := NewPlainObject(host.ObjectProto())
	getter := NewNativeFunction(host.FunctionProto(), "get x", func(this vm.Value, args []vm.Value) (vm.Value, error) {
		return vm.MakeInt(7), nil
	})
	defineAccessor(parent, vm.MakeString("x"), vm.MakeObject(getter), vm.Undefined(), true, true)
	child := NewPlainObject(vm.MakeObject(parent))

	v, err := host.ObjectGet(child, vm.MakeString("x"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.IsInt() || v.AsInt() != 7 {
		t.Fatalf("got %v, want 7", v)
	}
}

func TestObjectGetWithKindDistinguishesDataFromAccessor(t *testing.T) {
	host := NewHost()
	obj := NewPlainObject(host.ObjectProto())
	n := 0
	getter := NewNativeFunction(host.FunctionProto(), "get x", func(this vm.Value, args []vm.Value) (vm.Value, error) {
		v := vm.MakeInt(int32(n))
		n++
		return v, nil
	})
	defineAccessor(obj, vm.MakeString("x"), vm.MakeObject(getter), vm.Undefined(), true, true)
	defineOwn(obj, vm.MakeString("y"), vm.MakeInt(1), true, true, true)

	v, kind, err := host.ObjectGetWithKind(obj, vm.MakeString("x"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if kind != vm.PropertyAccessor {
		t.Fatalf("got kind %v, want PropertyAccessor", kind)
	}
	if !v.IsInt() || v.AsInt() != 0 {
		t.Fatalf("first read: got %v, want 0", v)
	}
	// A second read must re-invoke the getter rather than report a
	// memoized value: this is the property the lookup cache in pkg/vm
	// relies on to know a getter's result may never be cached.
	v, kind, err = host.ObjectGetWithKind(obj, vm.MakeString("x"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if kind != vm.PropertyAccessor || v.AsInt() != 1 {
		t.Fatalf("second read: got (%v, %v), want (1, PropertyAccessor)", v, kind)
	}

	v, kind, err = host.ObjectGetWithKind(obj, vm.MakeString("y"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if kind != vm.PropertyData || !v.IsInt() || v.AsInt() != 1 {
		t.Fatalf("got (%v, %v), want (1, PropertyData)", v, kind)
	}

	v, kind, err = host.ObjectGetWithKind(obj, vm.MakeString("missing"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if kind != vm.PropertyMissing || !v.IsUndefined() {
		t.Fatalf("got (%v, %v), want (undefined, PropertyMissing)", v, kind)
	}
}

func TestObjectPutDefinesOwnPropertyOnReceiver(t *testing.T) {
	host := NewHost()
	obj := NewPlainObject(host.ObjectProto())

	if err := host.ObjectPutWithReceiver(obj, vm.MakeString("y"), vm.MakeInt(9), obj, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, _ := host.ObjectGet(obj, vm.MakeString("y"))
	if !v.IsInt() || v.AsInt() != 9 {
		t.Fatalf("got %v, want 9", v)
	}
}

func TestObjectPutNonWritableSilentlyNoOpsInSloppyMode(t *testing.T) {
	host := NewHost()
	obj := NewPlainObject(host.ObjectProto())
	defineOwn(obj, vm.MakeString("frozen"), vm.MakeInt(1), false, true, true)

	if err := host.ObjectPutWithReceiver(obj, vm.MakeString("frozen"), vm.MakeInt(2), obj, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, _ := host.ObjectGet(obj, vm.MakeString("frozen"))
	if v.AsInt() != 1 {
		t.Fatalf("non-writable property was overwritten: got %v", v)
	}
}

func TestObjectPutNonWritableThrowsInStrictMode(t *testing.T) {
	host := NewHost()
	obj := NewPlainObject(host.ObjectProto())
	defineOwn(obj, vm.MakeString("frozen"), vm.MakeInt(1), false, true, true)

	err := host.ObjectPutWithReceiver(obj, vm.MakeString("frozen"), vm.MakeInt(2), obj, true)
	if err == nil {
		t.Fatal("expected a TypeError in strict mode, got nil")
	}
}

func TestObjectPutInvokesInheritedSetter(t *testing.T) {
	host := NewHost()
	parent := NewPlainObject(host.ObjectProto())
	var captured vm.Value
	setter := NewNativeFunction(host.FunctionProto(), "set x", func(this vm.Value, args []vm.Value) (vm.Value, error) {
		captured = args[0]
		return vm.Undefined(), nil
	})
	defineAccessor(parent, vm.MakeString("x"), vm.Undefined(), vm.MakeObject(setter), true, true)
	child := NewPlainObject(vm.MakeObject(parent))

	if err := host.ObjectPutWithReceiver(child, vm.MakeString("x"), vm.MakeInt(5), child, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !captured.IsInt() || captured.AsInt() != 5 {
		t.Fatalf("setter was not invoked with the new value, got %v", captured)
	}
	// The setter handled the write; no own property should have been created.
	if ownHas(child, vm.MakeString("x")) {
		t.Fatal("expected no own property to be defined when an inherited setter handles the write")
	}
}

func TestObjectHasPropertyWalksPrototypeChain(t *testing.T) {
	host := NewHost()
	parent := NewPlainObject(host.ObjectProto())
	defineOwn(parent, vm.MakeString("inherited"), vm.MakeInt(1), true, true, true)
	child := NewPlainObject(vm.MakeObject(parent))

	has, err := host.ObjectHasProperty(child, vm.MakeString("inherited"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !has {
		t.Fatal("expected ObjectHasProperty to find the inherited property")
	}

	has, err = host.ObjectHasProperty(child, vm.MakeString("missing"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if has {
		t.Fatal("expected ObjectHasProperty to report false for a missing property")
	}
}

func TestObjectDeleteRespectsConfigurable(t *testing.T) {
	host := NewHost()
	obj := NewPlainObject(host.ObjectProto())
	defineOwn(obj, vm.MakeString("perm"), vm.MakeInt(1), true, true, false)
	defineOwn(obj, vm.MakeString("temp"), vm.MakeInt(2), true, true, true)

	ok, err := host.ObjectDelete(obj, vm.MakeString("perm"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected deleting a non-configurable property to fail")
	}

	ok, err = host.ObjectDelete(obj, vm.MakeString("temp"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected deleting a configurable property to succeed")
	}
	if ownHas(obj, vm.MakeString("temp")) {
		t.Fatal("deleted property is still present")
	}
}

func TestObjectDefinePropertyOverwritesExisting(t *testing.T) {
	host := NewHost()
	obj := NewPlainObject(host.ObjectProto())
	if err := host.ObjectDefineOwn(obj, vm.MakeString("x"), vm.MakeInt(1), true, true, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := host.ObjectDefineOwn(obj, vm.MakeString("x"), vm.MakeInt(2), true, true, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, _ := host.ObjectGet(obj, vm.MakeString("x"))
	if v.AsInt() != 2 {
		t.Fatalf("got %v, want 2", v)
	}
}

func TestObjectSetAndGetProto(t *testing.T) {
	host := NewHost()
	obj := NewPlainObject(host.ObjectProto())
	newProto := NewPlainObject(vm.Null())

	if err := host.ObjectSetProto(obj, vm.MakeObject(newProto)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	proto, err := host.ObjectGetProto(obj)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if proto.AsObject() != vm.ObjectRef(newProto) {
		t.Fatal("prototype was not updated")
	}
}

func TestExtensibility(t *testing.T) {
	host := NewHost()
	obj := NewPlainObject(host.ObjectProto())
	if !host.IsExtensible(obj) {
		t.Fatal("a fresh object should be extensible")
	}
	if err := host.PreventExtensions(obj); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if host.IsExtensible(obj) {
		t.Fatal("PreventExtensions did not take effect")
	}
}

func TestSymbolKeyedPropertiesAreDistinctByIdentity(t *testing.T) {
	host := NewHost()
	obj := NewPlainObject(host.ObjectProto())
	a := vm.MakeSymbol("tag")
	b := vm.MakeSymbol("tag")

	defineOwn(obj, a, vm.MakeInt(1), true, false, true)
	defineOwn(obj, b, vm.MakeInt(2), true, false, true)

	va, _ := host.ObjectGet(obj, a)
	vb, _ := host.ObjectGet(obj, b)
	if va.AsInt() != 1 || vb.AsInt() != 2 {
		t.Fatalf("symbols with the same description collided: got %v and %v", va, vb)
	}
}
