// Package stdlib provides AIScript's native standard library: the
// always-global builtins (print, type_of, assert) plus the std.* native
// modules resolved through internal/module (json, math, datetime,
// strings, and named-at-interface-only http/sql/redis stubs per the
// Non-goals).
package stdlib

import "github.com/aiscriptdev/aiscript/internal/module"

// Install registers every std.* native module with mgr. Called once
// per interpreter construction (pkg/aiscript.New), before any script
// runs, so a `use "std.json";` resolves without touching the file
// system.
func Install(mgr *module.Manager) {
	mgr.RegisterNative("std.json", jsonModule())
	mgr.RegisterNative("std.math", mathModule())
	mgr.RegisterNative("std.datetime", dateTimeModule())
	mgr.RegisterNative("std.strings", stringsModule())
	mgr.RegisterNative("std.http", httpModule())
	mgr.RegisterNative("std.sql", sqlModule())
	mgr.RegisterNative("std.redis", redisModule())
}
