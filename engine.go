package sfs

import "sync"

// Engine is a native geometry backend. Engines are registered once, usually
// from an init function, and must be comparable values (typically pointers)
// that are safe for concurrent use.
type Engine interface {
	Name() string
	// IsValid reports whether a ring or polygon is topologically valid.
	IsValid(g Geometry) bool
	// Equals reports point-set equality of two non-empty geometries.
	Equals(a, b Geometry) bool
	Boundary(g Geometry) Geometry
	Envelope(g Geometry) Geometry
}

var (
	registryMu sync.Mutex
	registered Engine

	probeOnce sync.Once
	native    Engine
)

// Register makes an engine available to factories created with BackendAuto
// or BackendNative. It panics if called twice or with a nil engine, and has
// no effect on the capability probe once Supported has run.
func Register(e Engine) {
	if e == nil {
		panic("sfs: Register engine is nil")
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	if registered != nil {
		panic("sfs: Register called twice for engine " + e.Name())
	}
	registered = e
}

// Supported reports whether a native engine is available. The answer is
// computed on first use and never changes afterwards.
func Supported() bool {
	probeOnce.Do(func() {
		registryMu.Lock()
		native = registered
		registryMu.Unlock()
	})
	return native != nil
}

// NativeEngine returns the probed native engine, or nil.
func NativeEngine() Engine {
	if !Supported() {
		return nil
	}
	return native
}

// IsNative reports whether g was built by a factory with a native engine.
func IsNative(g Geometry) bool {
	if isNilGeometry(g) {
		return false
	}
	f := g.Factory()
	return f != nil && f.engine != nil
}

// sharedEngine returns the engine both geometries were built with, if any.
func sharedEngine(a, b Geometry) Engine {
	fa, fb := a.Factory(), b.Factory()
	if fa == nil || fb == nil || fa.engine == nil || fa.engine != fb.engine {
		return nil
	}
	return fa.engine
}
