package objects

import "ecmavm/pkg/vm"

// iteratorObject is the generic step-function iterator every built-in
// iterable (array, string, any object with a callable `next`) reduces
// to once GetIterator has resolved it; the VM core only ever calls
// IteratorStep/IteratorClose on whatever GetIterator handed back, so a
// single closure-based representation covers every built-in source
// without a separate Go type per iterable kind.
type iteratorObject struct {
	object
	step  func() (done bool, value vm.Value, err error)
	close func(cause error) error
}

func (h *Host) GetIterator(v vm.Value) (vm.ObjectRef, error) {
	if v.IsString() {
		return h.stringIterator(v.AsString()), nil
	}
	if !v.IsObject() {
		return nil, h.raiseTypeErrorErr("%s is not iterable", h.TypeOf(v))
	}
	switch o := v.AsObject().(type) {
	case *ArrayObject:
		return h.arrayIterator(o), nil
	case *GeneratorObject:
		return o, nil
	default:
		nextFn, err := h.ObjectGet(v.AsObject(), vm.MakeString("next"))
		if err == nil && h.IsCallable(nextFn) {
			return h.duckIterator(v, nextFn), nil
		}
		return nil, h.raiseTypeErrorErr("value is not iterable")
	}
}

func (h *Host) arrayIterator(arr *ArrayObject) *iteratorObject {
	idx := 0
	return &iteratorObject{
		object: newObject(vm.Null()),
		step: func() (bool, vm.Value, error) {
			if idx >= arr.Length() {
				return true, vm.Undefined(), nil
			}
			v, ok := arr.getIndex(idx)
			idx++
			if !ok {
				return false, vm.Undefined(), nil
			}
			return false, v, nil
		},
	}
}

func (h *Host) stringIterator(s string) *iteratorObject {
	runes := []rune(s)
	idx := 0
	return &iteratorObject{
		object: newObject(vm.Null()),
		step: func() (bool, vm.Value, error) {
			if idx >= len(runes) {
				return true, vm.Undefined(), nil
			}
			v := vm.MakeString(string(runes[idx]))
			idx++
			return false, v, nil
		},
	}
}

// duckIterator wraps an object that merely has a callable `next`
// property (any user-defined iterable that doesn't go through one of
// the built-in kinds above) by calling it and reading {value, done}
// back off the result each step.
func (h *Host) duckIterator(target, nextFn vm.Value) *iteratorObject {
	return &iteratorObject{
		object: newObject(vm.Null()),
		step: func() (bool, vm.Value, error) {
			result, err := h.FunctionCall(nextFn, target, nil)
			if err != nil {
				return false, vm.Undefined(), err
			}
			if !result.IsObject() {
				return false, vm.Undefined(), h.raiseTypeErrorErr("iterator result is not an object")
			}
			doneVal, err := h.ObjectGet(result.AsObject(), vm.MakeString("done"))
			if err != nil {
				return false, vm.Undefined(), err
			}
			val, err := h.ObjectGet(result.AsObject(), vm.MakeString("value"))
			if err != nil {
				return false, vm.Undefined(), err
			}
			return h.ToBoolean(doneVal), val, nil
		},
	}
}

func (h *Host) IteratorStep(iter vm.ObjectRef) (bool, vm.Value, error) {
	switch it := iter.(type) {
	case *iteratorObject:
		return it.step()
	case *GeneratorObject:
		val, done, err := it.resume(vm.ResumeNext, vm.Undefined())
		return done, val, err
	default:
		return true, vm.Undefined(), h.raiseTypeErrorErr("not an iterator")
	}
}

// IteratorValue extracts .value from an already-materialized iterator-
// result object; the interpreter core's own for-of/spread/destructuring
// paths all go through IteratorStep instead, which already does this
// extraction internally, so this method exists only to satisfy
// vm.ObjectHost for a host-authored loop that drives a raw iterator
// result by hand.
func (h *Host) IteratorValue(result vm.ObjectRef) (vm.Value, error) {
	obj, ok := result.(Objecter)
	if !ok {
		return vm.Undefined(), h.raiseTypeErrorErr("not an iterator result")
	}
	return h.ObjectGet(obj, vm.MakeString("value"))
}

func (h *Host) IteratorClose(iter vm.ObjectRef, completion error) error {
	it, ok := iter.(*iteratorObject)
	if !ok || it.close == nil {
		return nil
	}
	return it.close(completion)
}

// EnumerableKeys snapshots an object's own-enumerable string keys plus
// its prototype chain's, de-duplicating by name in own-then-prototype
// shadowing order, exactly what for-in iterates.
func (h *Host) EnumerableKeys(obj vm.ObjectRef) ([]vm.Value, error) {
	seen := make(map[string]bool)
	var out []vm.Value
	cur, ok := obj.(Objecter)
	for ok {
		for _, k := range cur.base().props.ownKeys(true) {
			name := k.AsString()
			if seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, k)
		}
		if arr, isArr := cur.(*ArrayObject); isArr {
			for i := 0; i < arr.Length(); i++ {
				name := itoa(i)
				if seen[name] {
					continue
				}
				if _, hasVal := arr.getIndex(i); hasVal {
					seen[name] = true
					out = append(out, vm.MakeString(name))
				}
			}
		}
		if !cur.base().proto.IsObject() {
			break
		}
		cur, ok = cur.base().proto.AsObject().(Objecter)
	}
	return out, nil
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var b []byte
	for i > 0 {
		b = append([]byte{byte('0' + i%10)}, b...)
		i /= 10
	}
	if neg {
		return "-" + string(b)
	}
	return string(b)
}
