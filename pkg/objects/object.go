// Package objects is the concrete object/property store that backs
// vm.ObjectHost and vm.ErrorHost: the interpreter core in pkg/vm only
// ever touches an ObjectRef as an opaque handle, and this package is
// what that handle actually is.
package objects

import (
	"ecmavm/pkg/vm"
)

// propEntry is one property slot: either a data property (value,
// writable) or an accessor pair (getter/setter), never both.
type propEntry struct {
	value        vm.Value
	getter       vm.Value
	setter       vm.Value
	isAccessor   bool
	writable     bool
	enumerable   bool
	configurable bool
}

// propTable stores an object's own properties in two parallel key
// spaces: string keys in insertion order (what for-in/Object.keys walk),
// and symbol keys keyed by identity (symbols are never enumerable via
// for-in). A real engine would back this with a shared shape tree the
// way the teacher's PlainObject does; this module's collaborator
// surface only needs to be correct, not share layout across instances,
// so each object just owns its own table.
type propTable struct {
	keys    []string
	byKey   map[string]*propEntry
	symKeys []uintptr
	bySym   map[uintptr]*propEntry
	symVal  map[uintptr]vm.Value // the symbol Value itself, for OwnKeys
}

func newPropTable() propTable {
	return propTable{byKey: make(map[string]*propEntry)}
}

func (t *propTable) get(key vm.Value) (*propEntry, bool) {
	if key.IsSymbol() {
		e, ok := t.bySym[key.SymbolIdentity()]
		return e, ok
	}
	e, ok := t.byKey[key.AsString()]
	return e, ok
}

func (t *propTable) set(key vm.Value, e *propEntry) {
	if key.IsSymbol() {
		id := key.SymbolIdentity()
		if t.bySym == nil {
			t.bySym = make(map[uintptr]*propEntry)
			t.symVal = make(map[uintptr]vm.Value)
		}
		if _, exists := t.bySym[id]; !exists {
			t.symKeys = append(t.symKeys, id)
			t.symVal[id] = key
		}
		t.bySym[id] = e
		return
	}
	name := key.AsString()
	if _, exists := t.byKey[name]; !exists {
		t.keys = append(t.keys, name)
	}
	t.byKey[name] = e
}

func (t *propTable) delete(key vm.Value) bool {
	if key.IsSymbol() {
		id := key.SymbolIdentity()
		if _, ok := t.bySym[id]; !ok {
			return true
		}
		delete(t.bySym, id)
		delete(t.symVal, id)
		for i, k := range t.symKeys {
			if k == id {
				t.symKeys = append(t.symKeys[:i], t.symKeys[i+1:]...)
				break
			}
		}
		return true
	}
	name := key.AsString()
	e, ok := t.byKey[name]
	if !ok {
		return true
	}
	if !e.configurable {
		return false
	}
	delete(t.byKey, name)
	for i, k := range t.keys {
		if k == name {
			t.keys = append(t.keys[:i], t.keys[i+1:]...)
			break
		}
	}
	return true
}

// ownKeys returns own string keys in insertion order followed by own
// symbol keys; enumerableOnly filters to the for-in-visible subset
// (string keys only, per spec).
func (t *propTable) ownKeys(enumerableOnly bool) []vm.Value {
	out := make([]vm.Value, 0, len(t.keys)+len(t.symKeys))
	for _, k := range t.keys {
		e := t.byKey[k]
		if enumerableOnly && !e.enumerable {
			continue
		}
		out = append(out, vm.MakeString(k))
	}
	if !enumerableOnly {
		for _, id := range t.symKeys {
			out = append(out, t.symVal[id])
		}
	}
	return out
}

// object is the base every heap-object kind embeds: prototype link,
// extensibility, and the property table. Kind-specific state (array
// dense storage, a closure's code unit, a proxy's traps, ...) lives on
// the wrapping type.
type object struct {
	proto      vm.Value
	extensible bool
	refcount   int32
	props      propTable
}

func newObject(proto vm.Value) object {
	return object{proto: proto, extensible: true, props: newPropTable()}
}

// Objecter is implemented by every heap-object type in this package so
// the host's generic property machinery (get/put/define/delete/has/
// enumerate/proto) can operate on any of them without a type switch at
// every call site; kind-specific behavior (callable, fast array,
// iterator, proxy traps) is type-switched only where it actually
// differs.
type Objecter interface {
	base() *object
}

func (o *object) base() *object { return o }

// PlainObject is an ordinary object: no internal slots beyond
// properties and a prototype.
type PlainObject struct{ object }

func NewPlainObject(proto vm.Value) *PlainObject {
	p := &PlainObject{newObject(proto)}
	return p
}

// --- Generic property operations, shared by every Objecter --------------

func getOwn(o Objecter, key vm.Value) (*propEntry, bool) {
	return o.base().props.get(key)
}

func ownHas(o Objecter, key vm.Value) bool {
	_, ok := getOwn(o, key)
	return ok
}

func defineOwn(o Objecter, key vm.Value, val vm.Value, writable, enumerable, configurable bool) {
	b := o.base()
	if e, ok := b.props.get(key); ok {
		if !e.configurable {
			// Non-configurable own properties only accept a new value
			// for a writable data property (attributes stay as they
			// are); anything else is a
			// silent no-op in sloppy mode (the VM core itself never calls
			// this path in strict mode without checking first).
			if e.isAccessor || !e.writable {
				return
			}
			e.value = val
			return
		}
		*e = propEntry{value: val, writable: writable, enumerable: enumerable, configurable: configurable}
		return
	}
	b.props.set(key, &propEntry{value: val, writable: writable, enumerable: enumerable, configurable: configurable})
}

func defineAccessor(o Objecter, key vm.Value, getter, setter vm.Value, enumerable, configurable bool) {
	b := o.base()
	if e, ok := b.props.get(key); ok && !e.configurable {
		return
	}
	e, ok := b.props.get(key)
	if !ok {
		e = &propEntry{}
		b.props.set(key, e)
	}
	e.isAccessor = true
	e.enumerable = enumerable
	e.configurable = configurable
	if !getter.IsUndefined() {
		e.getter = getter
	}
	if !setter.IsUndefined() {
		e.setter = setter
	}
}

func deleteOwn(o Objecter, key vm.Value) bool {
	return o.base().props.delete(key)
}

// walkProto walks the prototype chain calling lookup at each step;
// lookup returns (value, found, isErr): the walk stops and returns that
// triple when found or isErr is true, and keeps climbing otherwise.
func walkProto(start vm.Value, lookup func(Objecter) (vm.Value, bool, bool)) (vm.Value, bool, bool) {
	cur := start
	for cur.IsObject() {
		obj, ok := cur.AsObject().(Objecter)
		if !ok {
			break
		}
		if v, found, isErr := lookup(obj); found || isErr {
			return v, found, isErr
		}
		cur = obj.base().proto
	}
	return vm.Undefined(), false, false
}
