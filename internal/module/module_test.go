package module

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aiscriptdev/aiscript/internal/bytecode"
)

func TestResolve_FileModule(t *testing.T) {
	dir := t.TempDir()
	src := `
pub fn add(a, b) {
  return a + b;
}
pub fn greet() {
  return "hi";
}
let secret = 42;
`
	if err := os.WriteFile(filepath.Join(dir, "mathutil.ai"), []byte(src), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	mgr := New([]string{dir})
	mod, err := mgr.Resolve("mathutil")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if mod.Path != "mathutil" {
		t.Errorf("Path = %q, want %q", mod.Path, "mathutil")
	}
	if _, ok := mod.Exports.Get("add"); !ok {
		t.Error("expected export \"add\"")
	}
	if _, ok := mod.Exports.Get("greet"); !ok {
		t.Error("expected export \"greet\"")
	}
	if _, ok := mod.Exports.Get("secret"); ok {
		t.Error("non-pub binding \"secret\" must not be exported")
	}
}

func TestResolve_DirectoryMainFallback(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "a", "b"), 0755); err != nil {
		t.Fatal(err)
	}
	src := `pub fn hello() { return "hi"; }`
	if err := os.WriteFile(filepath.Join(dir, "a", "b", "main.ai"), []byte(src), 0644); err != nil {
		t.Fatal(err)
	}

	mgr := New([]string{dir})
	mod, err := mgr.Resolve("a.b")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if _, ok := mod.Exports.Get("hello"); !ok {
		t.Error("expected export \"hello\"")
	}
}

func TestResolve_CachesResult(t *testing.T) {
	dir := t.TempDir()
	src := `pub fn one() { return 1; }`
	if err := os.WriteFile(filepath.Join(dir, "once.ai"), []byte(src), 0644); err != nil {
		t.Fatal(err)
	}

	mgr := New([]string{dir})
	first, err := mgr.Resolve("once")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	second, err := mgr.Resolve("once")
	if err != nil {
		t.Fatalf("Resolve (cached): %v", err)
	}
	if first != second {
		t.Error("expected Resolve to return the cached *ModuleObject on a second call")
	}
}

func TestResolve_NotFound(t *testing.T) {
	mgr := New([]string{t.TempDir()})
	if _, err := mgr.Resolve("nope.nowhere"); err == nil {
		t.Error("expected an error for an unresolvable module path")
	}
}

func TestResolve_NativeModule(t *testing.T) {
	mgr := New(nil)
	calls := 0
	mgr.RegisterNative("std.math", func() (*bytecode.ModuleObject, error) {
		calls++
		exports := bytecode.NewMap()
		exports.Set("pi", bytecode.NumberValue(3.14159))
		return &bytecode.ModuleObject{Path: "std.math", Exports: exports}, nil
	})

	mod, err := mgr.Resolve("std.math")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if v, ok := mod.Exports.Get("pi"); !ok || v.AsNumber() != 3.14159 {
		t.Errorf("expected pi export, got %v ok=%v", v, ok)
	}
	if _, err := mgr.Resolve("std.math"); err != nil {
		t.Fatalf("second Resolve: %v", err)
	}
	if calls != 1 {
		t.Errorf("native loader called %d times, want 1 (should be cached)", calls)
	}
}

func TestDeregister_WithdrawsNativeModule(t *testing.T) {
	mgr := New(nil)
	mgr.RegisterNative("std.http", func() (*bytecode.ModuleObject, error) {
		return &bytecode.ModuleObject{Path: "std.http", Exports: bytecode.NewMap()}, nil
	})

	mgr.Deregister("std.http")

	if _, err := mgr.Resolve("std.http"); err == nil {
		t.Fatal("expected Resolve to fail after Deregister, got nil error")
	}
}

func TestFindFile_PrefersFirstSearchPath(t *testing.T) {
	dir1 := t.TempDir()
	dir2 := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir2, "shared.ai"), []byte("pub fn f() { return nil; }"), 0644); err != nil {
		t.Fatal(err)
	}

	mgr := New([]string{dir1, dir2})
	file, err := mgr.findFile("shared")
	if err != nil {
		t.Fatalf("findFile: %v", err)
	}
	if filepath.Dir(file) != dir2 {
		t.Errorf("expected file resolved from dir2, got %s", file)
	}
}
