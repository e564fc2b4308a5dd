// Package natives implements the host functions exposed to cinder scripts
// (spec §6, "Native function contract"). The spec deliberately leaves the
// registry's internal lookup structure unspecified, so unlike globals,
// fields, and method tables — which are pinned to the spec's bespoke
// open-addressed Table — this one is free to reach for a fast generic hash
// map from the retrieval pack instead.
package natives

import (
	"time"

	"github.com/dolthub/swiss"

	"github.com/cinderlang/cinder/internal/object"
)

// Registry holds every native function available to be installed into a
// VM's globals at startup.
type Registry struct {
	fns *swiss.Map[string, object.NativeFn]
}

// NewRegistry returns a Registry pre-populated with the standard library
// of natives (currently just clock()).
func NewRegistry() *Registry {
	r := &Registry{fns: swiss.NewMap[string, object.NativeFn](4)}
	r.fns.Put("clock", clockNative)
	return r
}

// Register adds or replaces the native function bound to name, for
// embedders that want to extend the standard set.
func (r *Registry) Register(name string, fn object.NativeFn) {
	r.fns.Put(name, fn)
}

// Each calls fn for every registered native, in no particular order —
// callers use this to install the registry's contents as VM globals.
func (r *Registry) Each(fn func(name string, native object.NativeFn)) {
	r.fns.Iter(func(name string, native object.NativeFn) bool {
		fn(name, native)
		return false
	})
}

var processStart = time.Now()

// clockNative returns the wall-clock seconds elapsed since this package
// was initialized, as a double, mirroring clockNative's "seconds as a
// double" contract (source material's src/vm.c). It does not measure CPU
// time.
func clockNative(args []object.Value) (object.Value, error) {
	return object.NewNumber(time.Since(processStart).Seconds()), nil
}
