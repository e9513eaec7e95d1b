package objects

import (
	"testing"

	"ecmavm/pkg/vm"
)

func TestCreateObjectLexEnvBindingRoundTrip(t *testing.T) {
	host := NewHost()
	obj := NewPlainObject(host.ObjectProto())
	env := host.CreateObjectLexEnv(nil, obj, false)

	if host.HasBinding(env, "x") {
		t.Fatal("fresh object-bound environment should not yet have a binding for x")
	}
	if err := host.PutValueLexEnvBase(env, "x", vm.MakeInt(5), false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !host.HasBinding(env, "x") {
		t.Fatal("expected HasBinding to report true after a put")
	}
	v, err := host.GetValueLexEnvBase(env, "x", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.IsInt() || v.AsInt() != 5 {
		t.Fatalf("got %v, want 5", v)
	}
}

func TestCreateDeclLexEnvIsDeclarative(t *testing.T) {
	host := NewHost()
	env := host.CreateDeclLexEnv(nil)
	if env.Kind != vm.LexEnvDeclarative {
		t.Fatal("expected a declarative environment")
	}
}
