package vm

// A tiny global property lookup cache keyed by (object, property name),
// grounded in the same idea as the reference engine's ecma_lcache: most
// property reads hit the same handful of (object, name) pairs over and
// over (a loop reading obj.field every iteration), so caching the
// resolved value next to the VM avoids a host.ObjectGet round trip
// through the property storage/accessor machinery on every repeat.
//
// Unlike a real engine's cache, this one only ever holds plain string
// property names (symbols are never cached) and has no per-shape
// versioning: an (object, name) entry is dropped when setValue writes
// that name on that object or PROP_DELETE removes it. Nothing else
// invalidates entries.
const lcacheCapacity = 512

type lcacheKey struct {
	obj  ObjectRef
	name string
}

func (vm *VM) lcacheLookup(obj ObjectRef, key Value) (Value, bool) {
	if vm.lcache == nil || !key.IsString() {
		return Undefined(), false
	}
	cached, ok := vm.lcache[lcacheKey{obj, key.AsString()}]
	if !ok {
		return Undefined(), false
	}
	return cached.FastCopy(vm.host), true
}

func (vm *VM) lcacheStore(obj ObjectRef, key Value, val Value) {
	if !key.IsString() {
		return
	}
	if vm.lcache == nil {
		vm.lcache = make(map[lcacheKey]Value)
	}
	if len(vm.lcache) >= lcacheCapacity {
		// No eviction policy beyond "stop caching new entries once full":
		// existing entries stay valid (and are still invalidated on
		// write), they just won't be joined by more until room frees up
		// via invalidation.
		return
	}
	k := lcacheKey{obj, key.AsString()}
	if old, ok := vm.lcache[k]; ok {
		old.FastFree(vm.host)
	}
	vm.lcache[k] = val.FastCopy(vm.host)
}

func (vm *VM) lcacheInvalidate(obj ObjectRef, key Value) {
	if vm.lcache == nil || !key.IsString() {
		return
	}
	k := lcacheKey{obj, key.AsString()}
	if old, ok := vm.lcache[k]; ok {
		old.FastFree(vm.host)
		delete(vm.lcache, k)
	}
}
