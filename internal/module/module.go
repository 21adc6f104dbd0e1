// Package module implements AIScript's module manager: resolving a `use`
// path (spec §4.6) to a compiled module's export table, either by running
// a project-relative `.ai` file or by invoking a natively registered
// `std.*` module. Grounded on go-dws's internal/interp/unit_loader.go
// consumer (internal/units.UnitRegistry) — a path-keyed cache with
// cycle-breaking pre-registration and a search-path list — adapted from
// DWScript's `uses`-clause semantics to AIScript's dotted `use` paths.
package module

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aiscriptdev/aiscript/internal/bytecode"
	"github.com/aiscriptdev/aiscript/internal/lexer"
	"github.com/aiscriptdev/aiscript/internal/parser"
)

// NativeLoader builds a native module's export table on first use. Used
// for `std.*` modules registered by internal/stdlib; unlike a file
// module, a native loader runs once and its result is cached exactly
// like a resolved script module.
type NativeLoader func() (*bytecode.ModuleObject, error)

// Manager owns the module cache and search paths for one interpreter
// instance. It satisfies bytecode.ModuleResolver via its Resolve method,
// and is normally wired in through pkg/aiscript:
//
//	mgr := module.New([]string{"."})
//	vm.ResolveModule = mgr.Resolve
type Manager struct {
	// SearchPaths are tried in order when resolving a project-relative
	// module path; "." (the project root) if unset.
	SearchPaths []string

	cache   map[string]*bytecode.ModuleObject
	natives map[string]NativeLoader
}

// New creates a Manager rooted at the given search paths.
func New(searchPaths []string) *Manager {
	if len(searchPaths) == 0 {
		searchPaths = []string{"."}
	}
	return &Manager{
		SearchPaths: searchPaths,
		cache:       make(map[string]*bytecode.ModuleObject),
		natives:     make(map[string]NativeLoader),
	}
}

// RegisterNative installs a native module loader under a dotted path
// (e.g. "std.json"), checked before any file-system resolution. Called
// by internal/stdlib during VM setup.
func (m *Manager) RegisterNative(path string, loader NativeLoader) {
	m.natives[path] = loader
}

// Deregister removes a previously registered native module, so a host
// (or `aiscript.yaml`'s stdlib toggles) can withdraw a std.* module
// before any script resolves it — a later `use` of path then fails with
// the same "not found" error a missing file module gives.
func (m *Manager) Deregister(path string) {
	delete(m.natives, path)
}

// Resolve implements bytecode.ModuleResolver. It is re-entrant: a module
// whose top-level code itself imports another module calls back into the
// same Manager, so the cache also serves as the cycle breaker — a module
// currently being compiled and run is already present in the cache (with
// a still-empty Exports table) by the time any cyclic `use` of it is
// resolved, exactly mirroring go-dws's "unit is cached before its
// dependencies recurse" rule.
func (m *Manager) Resolve(path string) (*bytecode.ModuleObject, error) {
	if mod, ok := m.cache[path]; ok {
		return mod, nil
	}

	if loader, ok := m.natives[path]; ok {
		mod, err := loader()
		if err != nil {
			return nil, fmt.Errorf("module %q: %w", path, err)
		}
		m.cache[path] = mod
		return mod, nil
	}

	file, err := m.findFile(path)
	if err != nil {
		return nil, err
	}

	src, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("module %q: %w", path, err)
	}

	// Pre-register before compiling/running so a cycle back to this same
	// path (directly or transitively) sees this entry instead of
	// recursing into Resolve again.
	mod := &bytecode.ModuleObject{Path: path, Exports: bytecode.NewMap()}
	m.cache[path] = mod

	if err := m.run(string(src), file, mod); err != nil {
		delete(m.cache, path)
		return nil, err
	}
	return mod, nil
}

// run lexes, parses, compiles and executes a module's source, then
// mirrors every top-level `pub` declaration (Chunk.PublicNames) into
// mod.Exports by reading the finished VM's globals.
func (m *Manager) run(src, file string, mod *bytecode.ModuleObject) error {
	l := lexer.New(src)
	p := parser.New(l)
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		return fmt.Errorf("%s: %d parse error(s), first: %s", file, len(errs), errs[0].Message)
	}

	chunk, cerrs := bytecode.Compile(program)
	if len(cerrs) > 0 {
		return fmt.Errorf("%s: %d compile error(s), first: %s", file, len(cerrs), cerrs[0].Message)
	}

	vm := bytecode.NewVM()
	vm.ResolveModule = m.Resolve
	if _, err := vm.Run(chunk); err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}

	for name := range chunk.PublicNames {
		if v, ok := vm.Global(name); ok {
			mod.Exports.Set(name, v)
		}
	}
	return nil
}

// findFile translates a dotted module path to a file, per spec §4.6:
// "a.b.c" first tries "a/b/c.ai", falling back to "a/b/c/main.ai" for
// directory-style modules, tried against each search path in order.
func (m *Manager) findFile(path string) (string, error) {
	rel := filepath.Join(strings.Split(path, ".")...)
	candidates := []string{rel + ".ai", filepath.Join(rel, "main.ai")}

	for _, dir := range m.SearchPaths {
		for _, c := range candidates {
			full := filepath.Join(dir, c)
			if info, err := os.Stat(full); err == nil && !info.IsDir() {
				return full, nil
			}
		}
	}
	return "", fmt.Errorf("module %q not found (searched %v under %v)", path, candidates, m.SearchPaths)
}

// Loaded reports the dotted paths of every module resolved so far
// (native and file-backed alike), in no particular order. Used by the
// CLI's `--show-modules` diagnostic (spec §4.6 note).
func (m *Manager) Loaded() []string {
	out := make([]string, 0, len(m.cache))
	for p := range m.cache {
		out = append(out, p)
	}
	return out
}
