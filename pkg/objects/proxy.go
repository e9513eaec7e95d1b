package objects

import "ecmavm/pkg/vm"

// ProxyObject implements the `get`/`set`/`has`/`deleteProperty` traps;
// every other fundamental operation (enumerate, prototype access,
// extensibility) falls through to target directly, a deliberately
// partial trap set since the VM core only ever reaches a proxy through
// ObjectGet/ObjectPutWithReceiver/ObjectHasProperty/ObjectDelete.
type ProxyObject struct {
	object
	target  vm.Value
	handler vm.Value
}

func NewProxyObject(target, handler vm.Value) *ProxyObject {
	p := &ProxyObject{object: newObject(vm.Null())}
	p.target = target
	p.handler = handler
	return p
}

func (p *ProxyObject) trap(host *Host, name string) (vm.Value, bool) {
	if !p.handler.IsObject() {
		return vm.Undefined(), false
	}
	fn, err := host.ObjectGet(p.handler.AsObject(), vm.MakeString(name))
	if err != nil || !host.IsCallable(fn) {
		return vm.Undefined(), false
	}
	return fn, true
}
