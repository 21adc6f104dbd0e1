package stdlib

import (
	"github.com/aiscriptdev/aiscript/internal/bytecode"
	"github.com/aiscriptdev/aiscript/internal/module"
)

// stubModule builds a named-at-interface-only module (spec's Non-goals:
// "no SQL/Redis/HTTP client implementations ... stubs only"): every
// listed export exists and is callable, but raises NotImplementedError
// instead of doing network I/O. This keeps `use "std.http";` resolvable
// and type-checkable in a script without the host needing a real
// client, matching how a scaffold interface is usually stood up ahead of
// its implementation.
func stubModule(path string, fnNames ...string) module.NativeLoader {
	return func() (*bytecode.ModuleObject, error) {
		exports := bytecode.NewMap()
		for _, name := range fnNames {
			qualified := path + "." + name
			exports.Set(name, bytecode.NativeFunctionValue(&bytecode.NativeFunction{
				Name: qualified,
				Fn: func(vm bytecode.NativeVM, args []bytecode.Value) (bytecode.Value, error) {
					return vm.RaiseError("NotImplementedError", qualified+" is not implemented"), nil
				},
			}))
		}
		return &bytecode.ModuleObject{Path: path, Exports: exports}, nil
	}
}

func httpModule() module.NativeLoader {
	return stubModule("std.http", "get", "post", "put", "delete", "request")
}

func sqlModule() module.NativeLoader {
	return stubModule("std.sql", "query", "exec", "transaction")
}

func redisModule() module.NativeLoader {
	return stubModule("std.redis", "get", "set", "del", "publish", "subscribe")
}
