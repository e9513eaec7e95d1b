package objects

import (
	"github.com/dlclark/regexp2"

	"ecmavm/pkg/vm"
)

// RegExpObject wraps a compiled regexp2 pattern. regexp2 is used instead
// of the standard library's RE2-based regexp because ECMAScript regex
// literals can contain backreferences and lookaround assertions that an
// RE2 automaton cannot express; regexp2's backtracking engine accepts
// the same grammar a real engine's regex literal would compile.
//
// Constructing a RegExpObject from source text is in scope for this
// collaborator even though the regex *engine* itself is named a
// Non-goal: a regex literal reaching the VM as a ready-made Value still
// has to come from somewhere, and that somewhere is this constructor.
type RegExpObject struct {
	object
	source    string
	flags     string
	re        *regexp2.Regexp
	lastIndex int
}

func regexp2Options(flags string) regexp2.RegexOptions {
	opts := regexp2.None
	for _, c := range flags {
		switch c {
		case 'i':
			opts |= regexp2.IgnoreCase
		case 's':
			opts |= regexp2.Singleline
		case 'm':
			opts |= regexp2.Multiline
		}
	}
	return opts
}

func NewRegExpObject(proto vm.Value, source, flags string) (*RegExpObject, error) {
	re, err := regexp2.Compile(source, regexp2Options(flags))
	if err != nil {
		return nil, err
	}
	r := &RegExpObject{object: newObject(proto), source: source, flags: flags, re: re}
	defineOwn(r, vm.MakeString("source"), vm.MakeString(source), false, false, false)
	defineOwn(r, vm.MakeString("flags"), vm.MakeString(flags), false, false, false)
	defineOwn(r, vm.MakeString("global"), vm.MakeBool(containsRune(flags, 'g')), false, false, false)
	defineOwn(r, vm.MakeString("lastIndex"), vm.MakeInt(0), true, false, false)
	return r, nil
}

func containsRune(s string, r rune) bool {
	for _, c := range s {
		if c == r {
			return true
		}
	}
	return false
}

// Exec runs the pattern against s starting at r.lastIndex when the
// `g`/`y` flag is set (0 otherwise), advancing lastIndex on a match the
// way RegExp.prototype.exec does. Returns (nil, false, nil) on no
// match.
func (r *RegExpObject) Exec(s string) (*regexp2.Match, bool, error) {
	start := 0
	if containsRune(r.flags, 'g') || containsRune(r.flags, 'y') {
		start = r.lastIndex
	}
	if start > len(s) {
		r.lastIndex = 0
		return nil, false, nil
	}
	m, err := r.re.FindStringMatchStartingAt(s, start)
	if err != nil {
		return nil, false, err
	}
	if m == nil {
		if containsRune(r.flags, 'g') || containsRune(r.flags, 'y') {
			r.lastIndex = 0
		}
		return nil, false, nil
	}
	if containsRune(r.flags, 'g') || containsRune(r.flags, 'y') {
		r.lastIndex = m.Index + m.Length
	}
	return m, true, nil
}
