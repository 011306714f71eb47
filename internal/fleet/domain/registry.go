package domain

import (
	"sort"
	"sync"
)

// OccupancyRegistry records which passenger names are seated on any vehicle.
// One registry is shared by every vehicle of a fleet; its mutex is the single
// point where occupancy decisions are serialized.
type OccupancyRegistry struct {
	mu    sync.RWMutex
	names map[string]struct{}
}

// NewOccupancyRegistry returns an empty registry.
func NewOccupancyRegistry() *OccupancyRegistry {
	return &OccupancyRegistry{
		names: make(map[string]struct{}),
	}
}

// TryClaim inserts name if it is absent and reports whether it did.
// When several goroutines claim the same name, exactly one gets true.
func (r *OccupancyRegistry) TryClaim(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.names[name]; ok {
		return false
	}
	r.names[name] = struct{}{}
	return true
}

// Release removes name. Releasing an absent name is a no-op.
func (r *OccupancyRegistry) Release(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.names, name)
}

// Contains reports whether name is currently claimed. The answer may be stale
// by the time the caller acts on it; use TryClaim to make decisions.
func (r *OccupancyRegistry) Contains(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.names[name]
	return ok
}

// Len returns the number of claimed names.
func (r *OccupancyRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.names)
}

// Names returns the claimed names sorted alphabetically.
func (r *OccupancyRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.names))
	for name := range r.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reset drops every claim. Vehicles still holding passengers are not
// touched, so this is only meant for tests.
func (r *OccupancyRegistry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.names = make(map[string]struct{})
}
