// Package aiscript is the embedder API: the surface a host Go program
// uses to run AIScript source, inject values across the boundary, and
// call back into compiled script functions. It wires internal/module,
// internal/stdlib and internal/agentrt onto one internal/bytecode.VM,
// mirroring the Engine/functional-options shape of go-dws's
// pkg/dwscript, while using AIScript's own fixed native-function ABI
// rather than dwscript's reflection-based RegisterFunction(name, any).
package aiscript

import (
	"fmt"
	"io"

	"github.com/tidwall/sjson"

	"github.com/aiscriptdev/aiscript/internal/agentrt"
	"github.com/aiscriptdev/aiscript/internal/bytecode"
	"github.com/aiscriptdev/aiscript/internal/lexer"
	"github.com/aiscriptdev/aiscript/internal/module"
	"github.com/aiscriptdev/aiscript/internal/parser"
	"github.com/aiscriptdev/aiscript/internal/stdlib"

	_ "github.com/aiscriptdev/aiscript/internal/validator" // registers the builtin validator kinds via init()
)

// ChunkID identifies a chunk compiled by Engine.Compile, for a later
// EvalFunctionByID call.
type ChunkID int

// Engine is one embedded AIScript interpreter instance: a VM plus the
// module manager and chunk table that back it. Not safe for concurrent
// use from multiple goroutines, matching the VM it wraps.
type Engine struct {
	vm      *bytecode.VM
	modules *module.Manager
	chunks  []*bytecode.Chunk
	ran     map[int]bool
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithSearchPaths sets the directories the module manager searches when
// resolving a project-relative `use` path (spec §4.6). Defaults to the
// current directory.
func WithSearchPaths(paths ...string) Option {
	return func(e *Engine) { e.modules.SearchPaths = paths }
}

// WithOutput redirects `print` and other script output to w instead of
// discarding it.
func WithOutput(w io.Writer) Option {
	return func(e *Engine) { e.vm.Output = w }
}

// WithDisabledModules withdraws one or more std.* native modules (e.g.
// "std.http") after installation, for a host or project config that
// wants a narrower stdlib surface than the default.
func WithDisabledModules(paths ...string) Option {
	return func(e *Engine) {
		for _, p := range paths {
			e.modules.Deregister(p)
		}
	}
}

// WithAgentRunner replaces the default agentrt.EchoRunner with r,
// letting a host plug in a real model client behind the same
// agentrt.Runner boundary that `prompt`/`ai fn` compile down to.
func WithAgentRunner(r agentrt.Runner) Option {
	return func(e *Engine) { agentrt.Bridge(e.vm, r) }
}

// New constructs an Engine with the standard library and a module
// resolver wired in, ready to Compile and run scripts.
func New(opts ...Option) *Engine {
	vm := bytecode.NewVM()
	mgr := module.New([]string{"."})
	stdlib.Install(mgr)
	stdlib.InstallGlobals(vm)
	vm.ResolveModule = mgr.Resolve

	e := &Engine{vm: vm, modules: mgr, ran: make(map[int]bool)}
	agentrt.Bridge(vm, agentrt.EchoRunner{})

	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetOutput redirects script output after construction.
func (e *Engine) SetOutput(w io.Writer) { e.vm.Output = w }

// InjectVariable binds name to the value decoded from valueJSON (spec
// §6's inject-variable operation), so a script can reference a global
// the host computed before running it.
func (e *Engine) InjectVariable(name, valueJSON string) error {
	v, err := stdlib.JSONToValue(e.vm, valueJSON)
	if err != nil {
		return fmt.Errorf("aiscript: inject variable %q: %w", name, err)
	}
	e.vm.RegisterGlobal(name, v)
	return nil
}

// InjectInstance binds name to a fresh instance of a minimal class
// named className with the given fields (spec §6's inject-instance
// operation), for hosts that want to hand a script a structured object
// rather than a JSON scalar/collection.
func (e *Engine) InjectInstance(name, className string, fields map[string]any) error {
	fieldMap := bytecode.NewMap()
	class := &bytecode.ClassObject{Name: className, Methods: map[string]*bytecode.Closure{}}
	for k, raw := range fields {
		v, err := anyToValue(e.vm, raw)
		if err != nil {
			return fmt.Errorf("aiscript: inject instance %q field %q: %w", name, k, err)
		}
		fieldMap.Set(k, v)
		class.Fields = append(class.Fields, bytecode.FieldSpec{Name: k})
	}
	inst := &bytecode.Instance{Class: class, Fields: fieldMap}
	e.vm.RegisterGlobal(name, bytecode.InstanceValue(inst))
	return nil
}

// anyToValue converts a host-side Go value into a bytecode.Value by
// routing it through sjson (which marshals arbitrary Go values, not
// just JSON text, into a document) and then the same gjson-backed
// bridge InjectVariable uses, so InjectInstance doesn't need a second
// ad hoc conversion table.
func anyToValue(vm bytecode.NativeVM, raw any) (bytecode.Value, error) {
	text, err := sjson.Set("{}", "v", raw)
	if err != nil {
		return bytecode.Value{}, err
	}
	decoded, err := stdlib.JSONToValue(vm, text)
	if err != nil {
		return bytecode.Value{}, err
	}
	v, _ := decoded.AsMap().Get("v")
	return v, nil
}

// RegisterNativeFunction exposes a Go function to scripts under name,
// using AIScript's native ABI directly (spec §6's register-native-
// function operation) rather than go-dws's reflection-based FFI.
func (e *Engine) RegisterNativeFunction(name string, fn func(vm bytecode.NativeVM, args []bytecode.Value) (bytecode.Value, error)) {
	e.vm.RegisterNativeFunction(name, fn)
}

// Compile lexes, parses and compiles source into a chunk, returning a
// ChunkID a later EvalFunctionByID call can reference. Compile does not
// execute the chunk's top level; Run does that explicitly.
func (e *Engine) Compile(source string) (ChunkID, error) {
	l := lexer.New(source)
	p := parser.New(l)
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		return 0, fmt.Errorf("aiscript: %d parse error(s), first: %s", len(errs), errs[0].Message)
	}

	chunk, cerrs := bytecode.Compile(program)
	if len(cerrs) > 0 {
		return 0, fmt.Errorf("aiscript: %d compile error(s), first: %s", len(cerrs), cerrs[0].Message)
	}

	e.chunks = append(e.chunks, chunk)
	return ChunkID(len(e.chunks) - 1), nil
}

// Run executes a compiled chunk's top-level code (its `let`/`const`
// declarations, class/agent/fn registrations, and any bare statements),
// populating the globals EvalFunctionByID and InjectVariable observe.
// Idempotent: running the same id twice is a no-op after the first call.
func (e *Engine) Run(id ChunkID) (bytecode.Value, error) {
	i := int(id)
	if i < 0 || i >= len(e.chunks) {
		return bytecode.NilValue(), fmt.Errorf("aiscript: unknown chunk id %d", id)
	}
	if e.ran[i] {
		return bytecode.NilValue(), nil
	}
	result, err := e.vm.Run(e.chunks[i])
	if err != nil {
		return bytecode.NilValue(), err
	}
	e.ran[i] = true
	return result, nil
}

// EvalFunctionByID runs chunk id's top level (if not already run) then
// calls the global function named fnName with args (spec §6's eval-
// function-by-id operation), returning its result through the same
// synchronous call path `?`-propagation and validators run on.
func (e *Engine) EvalFunctionByID(id ChunkID, fnName string, args ...bytecode.Value) (bytecode.Value, error) {
	if _, err := e.Run(id); err != nil {
		return bytecode.NilValue(), err
	}
	fn, ok := e.vm.Global(fnName)
	if !ok {
		return bytecode.NilValue(), fmt.Errorf("aiscript: chunk %d has no global function %q", id, fnName)
	}
	return e.vm.Call(fn, args)
}

// ImportModule resolves a `use` path outside of any script, for a host
// that wants to read a module's exports directly (spec §6's import-
// module operation) rather than through a script's `use` statement.
func (e *Engine) ImportModule(path string) (*bytecode.ModuleObject, error) {
	return e.modules.Resolve(path)
}

// RegisterNativeModule installs a native module loader under a dotted
// path, the same mechanism internal/stdlib uses for "std.*", open to
// host-defined modules beyond the standard library.
func (e *Engine) RegisterNativeModule(path string, loader module.NativeLoader) {
	e.modules.RegisterNative(path, loader)
}

// VM exposes the underlying *bytecode.VM for hosts that need lower-level
// access (e.g. reading a global directly) beyond this package's surface.
func (e *Engine) VM() *bytecode.VM { return e.vm }

// LoadedModules reports the dotted paths of every module resolved so
// far, for the CLI's `--show-modules` diagnostic.
func (e *Engine) LoadedModules() []string { return e.modules.Loaded() }
