package objects

import (
	"ecmavm/pkg/errors"
	"ecmavm/pkg/vm"
)

// The Raise* family matches vm.ErrorHost exactly: each constructs the
// matching errors.ScriptError, wraps it as a script-visible error
// object, deposits it as the return value the VM core pushes into
// vm.pendingException, and returns that same Value so call-sites can
// write `vm.pendingException = host.RaiseTypeError(...)` in one line.

func (h *Host) RaiseTypeError(pos errors.Position, format string, args ...interface{}) vm.Value {
	return h.MakeErrorValue(errors.NewTypeError(pos, format, args...))
}

func (h *Host) RaiseReferenceError(pos errors.Position, format string, args ...interface{}) vm.Value {
	return h.MakeErrorValue(errors.NewReferenceError(pos, format, args...))
}

func (h *Host) RaiseSyntaxError(pos errors.Position, format string, args ...interface{}) vm.Value {
	return h.MakeErrorValue(errors.NewSyntaxError(pos, format, args...))
}

func (h *Host) RaiseRangeError(pos errors.Position, format string, args ...interface{}) vm.Value {
	return h.MakeErrorValue(errors.NewRangeError(pos, format, args...))
}

func (h *Host) RaiseCommonError(pos errors.Position, format string, args ...interface{}) vm.Value {
	return h.MakeErrorValue(errors.NewCommonError(pos, format, args...))
}

// raiseTypeErrorErr is the Go-error-returning twin of RaiseTypeError,
// for collaborator methods (ToString, ToObject, ...) whose signature
// already returns `error` rather than threading through the pending-
// exception protocol; the VM core wraps any such error back into a
// thrown value itself via vm.fail.
func (h *Host) raiseTypeErrorErr(format string, args ...interface{}) error {
	return errors.NewTypeError(errors.Position{ByteCodeIP: -1}, format, args...)
}

// errorObject carries the originating Go error alongside the script-
// visible name/message/stack properties, so ErrorFromValue can recover
// the exact ScriptError instead of re-parsing a printed message.
type errorObject struct {
	PlainObject
	cause error
}

// MakeErrorValue wraps a Go error (almost always a errors.ScriptError,
// but an arbitrary error from a host callback is accepted too) as a
// script Error instance: name/message own properties matching the
// teacher's PaseratiError taxonomy, plus a hidden cause link for
// ErrorFromValue's round trip.
func (h *Host) MakeErrorValue(err error) vm.Value {
	kind := "Error"
	msg := err.Error()
	if se, ok := err.(errors.ScriptError); ok {
		kind = se.Kind()
		msg = se.Message()
	}
	eo := &errorObject{PlainObject: *NewPlainObject(h.errorProto), cause: err}
	defineOwn(eo, vm.MakeString("name"), vm.MakeString(kind), true, false, true)
	defineOwn(eo, vm.MakeString("message"), vm.MakeString(msg), true, false, true)
	defineOwn(eo, vm.MakeString("stack"), vm.MakeString(kind+": "+msg), true, false, true)
	return vm.MakeObject(eo)
}

// ErrorFromValue is MakeErrorValue's inverse, used when an exception
// escapes every frame on the call stack and must become the Go error
// Run/RunGlobal/RunEval report. A thrown value that was never produced
// by MakeErrorValue (a user `throw "plain string"`, or a thrown object
// literal) still gets wrapped as a errors.CommonError carrying its
// displayed form, so callers always get a Go error back, never a bare
// script Value.
func (h *Host) ErrorFromValue(v vm.Value) error {
	if v.IsObject() {
		if eo, ok := v.AsObject().(*errorObject); ok {
			return eo.cause
		}
	}
	s, err := h.ToString(v)
	if err != nil {
		s = v.String()
	}
	return errors.NewCommonError(errors.Position{ByteCodeIP: -1}, "%s", s)
}
