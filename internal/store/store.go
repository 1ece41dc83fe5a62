// Package store provides the persisted descriptor store the model registry
// sits on: one canonical JSON document per model, keyed by the lowercased
// model name. Two implementations exist, a GORM table and a directory of
// JSON files.
package store

import "context"

// RawDescriptor is one persisted descriptor document, unparsed.
type RawDescriptor struct {
	Name string
	Data []byte
}

// DescriptorStore persists canonical model descriptors.
// DeleteOne must fail when the named descriptor does not exist; the other
// operations treat absence as documented on each method.
type DescriptorStore interface {
	// ListAll enumerates every persisted descriptor.
	ListAll(ctx context.Context) ([]RawDescriptor, error)
	// ReadOne returns the named descriptor, or (nil, nil) when absent.
	ReadOne(ctx context.Context, name string) ([]byte, error)
	// WriteOne creates or replaces the named descriptor.
	WriteOne(ctx context.Context, name string, data []byte) error
	// DeleteOne removes the named descriptor, failing when it is absent.
	DeleteOne(ctx context.Context, name string) error
}

// Watchable is implemented by stores that can report external changes to
// their descriptor set, such as the file store's directory watcher.
type Watchable interface {
	Watch(ctx context.Context, onChange func()) error
}
