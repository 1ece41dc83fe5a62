package records

import "context"

// Record is an opaque JSON object with at least an "id" field. The engine
// reads only the descriptor's ownerField and the declared field values.
type Record map[string]interface{}

// ID returns the record's id, or "" when absent.
func (r Record) ID() string {
	id, _ := r["id"].(string)
	return id
}

// Store is the external persistence for records, scoped by
// (lowercased model name, id).
type Store interface {
	// Insert writes a new record and returns the stored form.
	Insert(ctx context.Context, modelKey string, rec Record) (Record, error)
	// FindAll returns every record of the model.
	FindAll(ctx context.Context, modelKey string) ([]Record, error)
	// FindOne returns the record, or (nil, nil) when absent.
	FindOne(ctx context.Context, modelKey, id string) (Record, error)
	// Merge shallow-merges partial into the stored record and returns the
	// result, failing with RecordNotFound when the record is absent.
	Merge(ctx context.Context, modelKey, id string, partial Record) (Record, error)
	// Remove deletes the record, failing with RecordNotFound when absent.
	Remove(ctx context.Context, modelKey, id string) error
}
