// Command vmrun loads a compiled .pvmb code unit and executes it on the
// bytecode VM, printing the observable completion value or a formatted
// thrown exception. It takes the place of a source-level REPL/driver
// since this module's boundary starts at the compiled code unit, not at
// source text.
package main

import (
	"flag"
	"fmt"
	"os"

	"ecmavm/pkg/errors"
	"ecmavm/pkg/objects"
	"ecmavm/pkg/vm"
)

func main() {
	traceFlag := flag.Bool("trace", false, "print each opcode before it executes")
	stepBudget := flag.Int("step-budget", 0, "abort after this many backward branches (0 disables the cooperative stop callback)")
	strictFlag := flag.Bool("strict", false, "run the top-level unit as strict mode even if its own flag says otherwise")
	inspectFlag := flag.Bool("inspect", false, "print the result via the debug Inspect() dump instead of ToString")

	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: vmrun [flags] <file.pvmb>")
		os.Exit(64)
	}

	path := flag.Arg(0)
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vmrun: %s\n", err)
		os.Exit(70)
	}
	defer f.Close()

	unit, err := vm.DecodeCodeUnit(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vmrun: %s\n", err)
		os.Exit(70)
	}
	if *strictFlag {
		unit.Status |= vm.FlagStrictMode
	}

	vm.DebugTrace = *traceFlag

	host := objects.NewHost()
	machine := vm.NewVM(host)
	host.BindVM(machine)

	globalObj := objects.NewPlainObject(host.ObjectProto())
	globalEnv := vm.NewObjectBoundEnv(nil, globalObj, false)
	machine.SetGlobal(vm.MakeObject(globalObj), globalEnv)

	if *stepBudget > 0 {
		budget := *stepBudget
		machine.SetStopCallback(func(v *vm.VM) (vm.Value, bool, bool) {
			budget--
			if budget <= 0 {
				return vm.Undefined(), true, true
			}
			return vm.Undefined(), false, false
		}, 1)
	}

	result, runErr := machine.RunGlobal(unit)
	if runErr != nil {
		se, ok := runErr.(errors.ScriptError)
		if ok {
			errors.DisplayErrors("", []errors.ScriptError{se})
		} else {
			fmt.Fprintf(os.Stderr, "vmrun: %s\n", runErr)
		}
		os.Exit(1)
	}

	if *inspectFlag {
		fmt.Println(host.Inspect(result))
		return
	}
	s, err := host.ToString(result)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vmrun: %s\n", err)
		os.Exit(1)
	}
	fmt.Println(s)
}
