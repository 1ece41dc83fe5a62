package records

import (
	"context"
	"strings"
	"time"

	"github.com/localnerve/fabrica/internal/schema"
)

// Service performs generic record CRUD against the record store, applying
// the descriptor's field defaults and per-kind coercions. It performs no
// authorization; the dispatch layer runs the decision engine before every
// call.
type Service struct {
	Store Store
}

// NewService returns a record service over the given store.
func NewService(s Store) *Service {
	return &Service{Store: s}
}

func modelKey(modelName string) string {
	return strings.ToLower(modelName)
}

// Create writes a new record with a generated id. Declared defaults fill
// absent fields, declared fields are coerced toward their kind, and when
// the model names an ownerField the caller id is stamped into it unless the
// payload already set one. Timestamp-enabled models get record-level
// createdAt/updatedAt stamps.
func (s *Service) Create(ctx context.Context, modelName string, payload Record, callerID string, model *schema.ModelDescriptor) (Record, error) {
	if payload == nil {
		payload = Record{}
	}

	schema.ApplyDefaults(model, payload)
	schema.CoerceRecord(model, payload)

	if model.OwnerField != "" && callerID != "" {
		if _, set := payload[model.OwnerField]; !set {
			payload[model.OwnerField] = callerID
		}
	}

	if model.TimestampsEnabled() {
		now := schema.Timestamp(time.Now())
		payload["createdAt"] = now
		payload["updatedAt"] = now
	}

	return s.Store.Insert(ctx, modelKey(modelName), payload)
}

// FindAll returns every record of the model. Visibility is governed by the
// rbac table alone; no ownership filtering happens here.
func (s *Service) FindAll(ctx context.Context, modelName string) ([]Record, error) {
	return s.Store.FindAll(ctx, modelKey(modelName))
}

// FindByID returns the record, or nil when absent.
func (s *Service) FindByID(ctx context.Context, modelName, id string) (Record, error) {
	return s.Store.FindOne(ctx, modelKey(modelName), id)
}

// Update shallow-merges payload into the stored record. Fields not present
// in payload are preserved. Fails with RecordNotFound when the record does
// not exist.
func (s *Service) Update(ctx context.Context, modelName, id string, payload Record, model *schema.ModelDescriptor) (Record, error) {
	if payload == nil {
		payload = Record{}
	}

	schema.CoerceRecord(model, payload)

	if model.TimestampsEnabled() {
		payload["updatedAt"] = schema.Timestamp(time.Now())
	}

	return s.Store.Merge(ctx, modelKey(modelName), id, payload)
}

// Delete removes the record, failing with RecordNotFound when absent.
func (s *Service) Delete(ctx context.Context, modelName, id string) error {
	return s.Store.Remove(ctx, modelKey(modelName), id)
}
