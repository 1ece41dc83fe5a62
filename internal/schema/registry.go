package schema

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/localnerve/fabrica/internal/store"
	"github.com/localnerve/fabrica/internal/types"
)

// LoadFailure records one persisted descriptor that could not be loaded.
type LoadFailure struct {
	Name string `json:"name"`
	Err  string `json:"error"`
}

// Registry is the process-wide cache of canonical model descriptors, keyed
// by lowercased model name over a DescriptorStore. It is constructed once by
// the composition root and shared by every request handler.
//
// Descriptors held in the map are never mutated after insertion, so readers
// always observe a complete descriptor. Save and Delete serialize per model
// name; the map swap itself is held under a short RWMutex so reads proceed
// during unrelated store I/O.
type Registry struct {
	store store.DescriptorStore

	mu     sync.RWMutex
	byKey  map[string]*ModelDescriptor
	order  []string
	nameMu sync.Mutex
	locks  map[string]*sync.Mutex
}

// NewRegistry returns an empty registry over the given descriptor store.
func NewRegistry(s store.DescriptorStore) *Registry {
	return &Registry{
		store: s,
		byKey: make(map[string]*ModelDescriptor),
		locks: make(map[string]*sync.Mutex),
	}
}

// lockFor returns the write lock that serializes Save/Delete for one key.
func (r *Registry) lockFor(key string) *sync.Mutex {
	r.nameMu.Lock()
	defer r.nameMu.Unlock()
	l, ok := r.locks[key]
	if !ok {
		l = &sync.Mutex{}
		r.locks[key] = l
	}
	return l
}

// LoadAll enumerates every persisted descriptor, validates each, and swaps
// the result in as the new registry content. A descriptor that fails to
// parse or validate is skipped and reported in the failure list; it never
// aborts the rest of the load. Loading the same persisted set twice yields
// an identical registry.
func (r *Registry) LoadAll(ctx context.Context) ([]string, []LoadFailure, error) {
	raws, err := r.store.ListAll(ctx)
	if err != nil {
		return nil, nil, err
	}

	byKey := make(map[string]*ModelDescriptor, len(raws))
	order := make([]string, 0, len(raws))
	var loaded []string
	var failures []LoadFailure

	for _, raw := range raws {
		var d ModelDescriptor
		if err := json.Unmarshal(raw.Data, &d); err != nil {
			failures = append(failures, LoadFailure{Name: raw.Name, Err: err.Error()})
			continue
		}
		if err := ValidateAndNormalize(&d); err != nil {
			failures = append(failures, LoadFailure{Name: raw.Name, Err: err.Error()})
			continue
		}
		key := d.Key()
		if _, dup := byKey[key]; !dup {
			order = append(order, key)
		}
		byKey[key] = &d
		loaded = append(loaded, d.Name)
	}

	r.mu.Lock()
	r.byKey = byKey
	r.order = order
	r.mu.Unlock()

	return loaded, failures, nil
}

// Get returns the descriptor registered under name, case-insensitively,
// or nil when no such model exists.
func (r *Registry) Get(name string) *ModelDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byKey[(&ModelDescriptor{Name: name}).Key()]
}

// Exists reports whether a model is registered under name.
func (r *Registry) Exists(name string) bool {
	return r.Get(name) != nil
}

// GetAll returns every registered descriptor in insertion order.
func (r *Registry) GetAll() []*ModelDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*ModelDescriptor, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.byKey[key])
	}
	return out
}

// Count returns the number of registered models.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byKey)
}

// Save validates and normalizes d, stamps its timestamps, persists the
// canonical document, and only then publishes it to the in-memory map.
// UpdatedAt is always refreshed; CreatedAt is preserved from the registered
// copy when the model already exists. A store failure leaves the in-memory
// state untouched.
func (r *Registry) Save(ctx context.Context, d *ModelDescriptor) error {
	if err := ValidateAndNormalize(d); err != nil {
		return err
	}

	key := d.Key()
	lock := r.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	r.mu.RLock()
	prev := r.byKey[key]
	r.mu.RUnlock()

	now := Timestamp(time.Now())
	d.UpdatedAt = now
	if d.CreatedAt == "" {
		if prev != nil {
			d.CreatedAt = prev.CreatedAt
		} else {
			d.CreatedAt = now
		}
	}

	data, err := json.Marshal(d)
	if err != nil {
		return types.Collaborator(err)
	}

	if err := r.store.WriteOne(ctx, key, data); err != nil {
		return err
	}

	r.mu.Lock()
	if _, exists := r.byKey[key]; !exists {
		r.order = append(r.order, key)
	}
	r.byKey[key] = d
	r.mu.Unlock()

	return nil
}

// Delete removes the persisted descriptor and the in-memory entry. The
// store delete runs first so a missing descriptor surfaces as NotFound and
// the registry entry survives a failed delete. Records of the model are not
// cascade-deleted.
func (r *Registry) Delete(ctx context.Context, name string) error {
	key := (&ModelDescriptor{Name: name}).Key()
	lock := r.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	if err := r.store.DeleteOne(ctx, key); err != nil {
		return err
	}

	r.mu.Lock()
	delete(r.byKey, key)
	for i, k := range r.order {
		if k == key {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.mu.Unlock()

	return nil
}
