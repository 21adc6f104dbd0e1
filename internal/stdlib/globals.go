package stdlib

import (
	"fmt"
	"io"

	"github.com/aiscriptdev/aiscript/internal/bytecode"
)

// InstallGlobals registers the handful of always-available builtins
// (spec's worked examples call `print` with no `use` statement, so it
// and its companions live directly in vm.globals rather than behind a
// std.* module) — print, type_of, and assert.
func InstallGlobals(vm *bytecode.VM) {
	vm.RegisterNativeFunction("print", func(nvm bytecode.NativeVM, args []bytecode.Value) (bytecode.Value, error) {
		printTo(vm.Output, args)
		return bytecode.NilValue(), nil
	})
	vm.RegisterNativeFunction("type_of", func(nvm bytecode.NativeVM, args []bytecode.Value) (bytecode.Value, error) {
		if len(args) != 1 {
			return nvm.RaiseError("ArgumentError", "type_of expects 1 argument"), nil
		}
		return bytecode.StringValue(args[0].TypeName()), nil
	})
	vm.RegisterNativeFunction("assert", func(nvm bytecode.NativeVM, args []bytecode.Value) (bytecode.Value, error) {
		if len(args) == 0 || len(args) > 2 {
			return nvm.RaiseError("ArgumentError", "assert expects (condition[, message])"), nil
		}
		if args[0].IsTruthy() {
			return bytecode.NilValue(), nil
		}
		msg := "assertion failed"
		if len(args) == 2 {
			msg = args[1].AsString()
		}
		return nvm.RaiseError("AssertionError", msg), nil
	})
}

func printTo(w io.Writer, args []bytecode.Value) {
	if w == nil {
		return
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	for i, p := range parts {
		if i > 0 {
			fmt.Fprint(w, " ")
		}
		fmt.Fprint(w, p)
	}
	fmt.Fprintln(w)
}
