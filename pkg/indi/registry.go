package indi

import (
	"sync"

	"github.com/jinzhu/copier"
)

// RegistryEntry is the minimal descriptive record the registry keeps
// for a defined property. It deliberately holds no back-reference to
// the driver's live aggregate: re-Define replay on a later
// getProperties is serviced by the caller's own lookup (see
// Handlers.Redefine), not by dereferencing a stored
// pointer into driver memory that may have been mutated or freed
// concurrently.
type RegistryEntry struct {
	Device     string
	Name       string
	Permission Permission
	Type       Type
}

type propKey struct {
	device string
	name   string
}

// Registry is the thread-safe, idempotent cache of every property a
// driver has Defined and not since removed with Forget. It answers two questions cheaply and
// without touching driver memory: "does this property exist" and "is
// it read-only", which the dispatcher needs before it will even
// attempt to decode an incoming newXxxVector.
type Registry struct {
	mu      sync.RWMutex
	entries map[propKey]RegistryEntry
}

// NewRegistry returns an empty registry ready for use.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[propKey]RegistryEntry)}
}

// RegisterUnique records a property definition. Calling it again for
// the same (device, name) is always a no-op success — even if
// permission/type differ from the first call — matching the
// original's rosc_add_unique, which only inserts "if (rosc_find(...)
// == NULL)" and never overwrites an existing entry. The first Define
// for a (device, name) wins until Forget removes that entry.
func (r *Registry) RegisterUnique(entry RegistryEntry) error {
	if err := ValidateIdentifier("device", entry.Device); err != nil {
		return err
	}
	if err := ValidateIdentifier("property", entry.Name); err != nil {
		return err
	}
	key := propKey{entry.Device, entry.Name}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[key]; ok {
		return nil
	}
	r.entries[key] = entry
	return nil
}

// Lookup returns a value-type copy of the entry for (device, name),
// never a pointer into shared state, so callers can read it without
// holding the registry lock. Found is false if no such property was
// ever Defined.
func (r *Registry) Lookup(device, name string) (entry RegistryEntry, found bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	src, ok := r.entries[propKey{device, name}]
	if !ok {
		return RegistryEntry{}, false
	}

	var dst RegistryEntry
	if err := copier.Copy(&dst, &src); err != nil {
		// copier only fails on invalid copy targets, which can't happen
		// for this identical value-to-value copy.
		return src, true
	}
	return dst, true
}

// IsReadOnly reports whether the named property is ro. Properties not
// present in the registry are treated as not-read-only by this call
// alone; callers must also check found via Lookup to reject unknown
// properties outright.
func (r *Registry) IsReadOnly(device, name string) bool {
	entry, found := r.Lookup(device, name)
	return found && entry.Permission == PermRO
}

// Snapshot returns a copy of every entry for a device, for
// introspection (the debug API) without exposing the live map.
func (r *Registry) Snapshot(device string) []RegistryEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]RegistryEntry, 0, len(r.entries))
	for k, v := range r.entries {
		if device != "" && k.device != device {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Forget removes a property from the registry, called when a driver
// emits delProperty.
func (r *Registry) Forget(device, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if name == "" {
		for k := range r.entries {
			if k.device == device {
				delete(r.entries, k)
			}
		}
		return
	}
	delete(r.entries, propKey{device, name})
}
