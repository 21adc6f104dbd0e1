// Package gc implements AIScript's fuel-gated tracing mark-sweep
// collector. No example repo in the retrieval pack implements a tracing
// GC — every teacher package leans on Go's own allocator over plain
// struct pointers, which is exactly why this package has to be built
// from scratch rather than adapted from one of them.
//
// Collector does not manage physical memory itself: Go gives no manual
// free, and reimplementing a bump allocator with unsafe pointers would
// be both un-idiomatic and unnecessary. What it does instead is track
// liveness of the VM's own heap object graph (arrays, maps, instances,
// closures, upvalues, agents, module export tables) against a fuel
// budget, exactly as a tracing collector would, so the VM can answer
// "how much of the script's heap is still reachable" and drop its own
// references (e.g. cached globals, closed-over upvalues) to anything a
// mark-sweep pass found unreachable, instead of waiting on Go's GC to
// eventually notice on its own schedule.
package gc

// Tracer is implemented by any heap object that can itself hold
// references to other heap objects. Collect calls TraceRefs during the
// mark phase to discover a live object's direct children.
type Tracer interface {
	TraceRefs(visit func(ref any))
}

// Stats summarizes the outcome of the most recent Collect pass.
type Stats struct {
	Collections int
	LastLive    int
	LastSwept   int
}

// Collector is a fuel-gated tracing mark-sweep collector over a registry
// of heap object pointers (compared by identity, since Go map keys of
// pointer type do exactly that).
type Collector struct {
	fuel      int
	fuelLimit int
	live      map[any]struct{}
	marked    map[any]struct{}
	stats     Stats
}

// NewCollector creates a Collector that recommends a pass once fuelLimit
// allocations have accumulated since the last one. fuelLimit <= 0 uses a
// reasonable default.
func NewCollector(fuelLimit int) *Collector {
	if fuelLimit <= 0 {
		fuelLimit = 4096
	}
	return &Collector{
		fuelLimit: fuelLimit,
		live:      make(map[any]struct{}),
		marked:    make(map[any]struct{}),
	}
}

// Register tracks a freshly allocated heap object and spends one unit of
// fuel. Called from the VM's own allocation sites (NewArray, NewMap,
// makeClosure, captureUpvalue, instantiate), not by arbitrary code.
func (c *Collector) Register(obj any) {
	if obj == nil {
		return
	}
	c.live[obj] = struct{}{}
	c.fuel++
}

// ShouldCollect reports whether enough allocations have happened since
// the last pass (or since construction) to justify running one now.
func (c *Collector) ShouldCollect() bool {
	return c.fuel >= c.fuelLimit
}

// Collect runs one full mark-sweep pass. walkRoots is called once with a
// mark callback; the caller is responsible for invoking mark on every
// root directly reachable from VM state (operand stack, frame locals,
// open upvalues, globals, module export tables) — Collect then walks the
// transitive closure itself via Tracer.TraceRefs. Every registered
// object not reached by the end of the walk is dropped from the live
// set and reported as swept.
func (c *Collector) Collect(walkRoots func(mark func(obj any))) Stats {
	for k := range c.marked {
		delete(c.marked, k)
	}

	var pending []any
	mark := func(obj any) {
		if obj == nil {
			return
		}
		if _, ok := c.marked[obj]; ok {
			return
		}
		c.marked[obj] = struct{}{}
		pending = append(pending, obj)
	}

	walkRoots(mark)
	for len(pending) > 0 {
		obj := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		if t, ok := obj.(Tracer); ok {
			t.TraceRefs(mark)
		}
	}

	swept := 0
	for k := range c.live {
		if _, ok := c.marked[k]; !ok {
			delete(c.live, k)
			swept++
		}
	}

	c.fuel = 0
	c.stats = Stats{Collections: c.stats.Collections + 1, LastLive: len(c.live), LastSwept: swept}
	return c.stats
}

// Stats returns the result of the most recently completed Collect pass.
func (c *Collector) Stats() Stats { return c.stats }

// LiveCount returns the number of objects the collector currently
// believes are live (registered minus swept).
func (c *Collector) LiveCount() int { return len(c.live) }
