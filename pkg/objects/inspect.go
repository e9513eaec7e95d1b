package objects

import (
	"fmt"
	"strings"

	"golang.org/x/text/width"

	"ecmavm/pkg/vm"
)

// displayWidth sums each rune's terminal display width (2 for wide and
// fullwidth East Asian forms, 1 for everything else, ambiguous included), so
// Inspect's column alignment doesn't assume one rune == one terminal
// cell.
func displayWidth(s string) int {
	w := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			w += 2
		default:
			w += 1
		}
	}
	return w
}

// Inspect renders a debug dump of v for the CLI's result/trace output:
// primitives print their literal form, objects print a shallow
// {key: value, ...} listing with own-property values inspected
// recursively but never descending through a prototype chain or
// re-entering an object already on the current inspection path (cyclic
// object graphs are common once a script builds linked structures).
func (h *Host) Inspect(v vm.Value) string {
	return h.inspect(v, map[vm.ObjectRef]bool{})
}

func (h *Host) inspect(v vm.Value, seen map[vm.ObjectRef]bool) string {
	switch {
	case v.IsString():
		return fmt.Sprintf("%q", v.AsString())
	case !v.IsObject():
		return v.String()
	}

	ref := v.AsObject()
	if seen[ref] {
		return "[Circular]"
	}
	seen[ref] = true
	defer delete(seen, ref)

	switch o := ref.(type) {
	case *ArrayObject:
		parts := make([]string, o.Length())
		for i := 0; i < o.Length(); i++ {
			item, ok := o.getIndex(i)
			if !ok {
				parts[i] = "<hole>"
				continue
			}
			parts[i] = h.inspect(item, seen)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *FunctionObject:
		return "[Function: " + nameOrAnonymous(o.name) + "]"
	case *NativeFunction:
		return "[Function: " + nameOrAnonymous(o.name) + "]"
	case *BoundFunctionObject:
		return "[Function: bound]"
	case *RegExpObject:
		return "/" + o.source + "/" + o.flags
	case *GeneratorObject:
		return "[Generator]"
	case *ProxyObject:
		return "[Proxy]"
	case *errorObject:
		return o.cause.Error()
	default:
		plain, ok := ref.(Objecter)
		if !ok {
			return "[object]"
		}
		keys := plain.base().props.ownKeys(true)
		keyWidth := 0
		for _, k := range keys {
			if w := displayWidth(k.String()); w > keyWidth {
				keyWidth = w
			}
		}
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			e, _ := getOwn(plain, k)
			valStr := "[Getter]"
			if !e.isAccessor {
				valStr = h.inspect(e.value, seen)
			}
			pad := strings.Repeat(" ", keyWidth-displayWidth(k.String()))
			parts = append(parts, k.String()+pad+": "+valStr)
		}
		return "{ " + strings.Join(parts, ", ") + " }"
	}
}

func nameOrAnonymous(name string) string {
	if name == "" {
		return "(anonymous)"
	}
	return name
}
