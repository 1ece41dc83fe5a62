package records_test

import (
	"context"
	"testing"
	"time"

	"github.com/localnerve/fabrica/internal/models"
	"github.com/localnerve/fabrica/internal/records"
	"github.com/localnerve/fabrica/internal/schema"
	"github.com/localnerve/fabrica/internal/types"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	if err := db.AutoMigrate(&models.DynamicRecord{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

func taskModel(t *testing.T) *schema.ModelDescriptor {
	m := &schema.ModelDescriptor{
		Name:       "Task",
		OwnerField: "createdBy",
		Fields: []schema.ModelField{
			{Name: "title", Type: schema.FieldString, Required: true},
			{Name: "done", Type: schema.FieldBoolean, Default: false},
			{Name: "priority", Type: schema.FieldNumber, Default: 3.0},
		},
		RBAC: schema.RBAC{"Manager": {schema.OpAll}},
	}
	if err := schema.ValidateAndNormalize(m); err != nil {
		t.Fatalf("Failed to build test model: %v", err)
	}
	return m
}

func TestServiceCreateStampsRecord(t *testing.T) {
	svc := records.NewService(records.NewGormStore(setupTestDB(t)))
	model := taskModel(t)
	ctx := context.Background()

	rec, err := svc.Create(ctx, "Task", records.Record{"title": "buy milk"}, "u1", model)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if rec.ID() == "" {
		t.Error("Expected a generated record id")
	}
	if rec["done"] != false {
		t.Errorf("Expected default done=false, got %v", rec["done"])
	}
	if rec["priority"] != 3.0 {
		t.Errorf("Expected default priority=3, got %v", rec["priority"])
	}
	if rec["createdBy"] != "u1" {
		t.Errorf("Expected owner stamp u1, got %v", rec["createdBy"])
	}

	stamp, ok := rec["createdAt"].(string)
	if !ok {
		t.Fatal("Expected a createdAt stamp")
	}
	if _, err := time.Parse(time.RFC3339Nano, stamp); err != nil {
		t.Errorf("createdAt is not RFC3339Nano: %v", err)
	}
	if rec["updatedAt"] != stamp {
		t.Errorf("Expected createdAt == updatedAt on create")
	}
}

func TestServiceCreateRespectsExplicitOwnerAndNoTimestamps(t *testing.T) {
	svc := records.NewService(records.NewGormStore(setupTestDB(t)))
	model := taskModel(t)
	disabled := false
	model.Timestamps = &disabled
	ctx := context.Background()

	rec, err := svc.Create(ctx, "Task", records.Record{"title": "x", "createdBy": "u9"}, "u1", model)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if rec["createdBy"] != "u9" {
		t.Errorf("Explicit owner must not be overwritten, got %v", rec["createdBy"])
	}
	if _, present := rec["createdAt"]; present {
		t.Error("Timestamp-disabled model must not stamp createdAt")
	}
}

func TestServiceFindScopedByModel(t *testing.T) {
	svc := records.NewService(records.NewGormStore(setupTestDB(t)))
	model := taskModel(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "Task", records.Record{"title": "a"}, "u1", model); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := svc.Create(ctx, "Other", records.Record{"title": "b"}, "u1", model); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	recs, err := svc.FindAll(ctx, "TASK")
	if err != nil {
		t.Fatalf("FindAll failed: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("Expected 1 task, got %d", len(recs))
	}
	if recs[0]["title"] != "a" {
		t.Errorf("Expected title a, got %v", recs[0]["title"])
	}
}

func TestServiceUpdateShallowMerge(t *testing.T) {
	svc := records.NewService(records.NewGormStore(setupTestDB(t)))
	model := taskModel(t)
	ctx := context.Background()

	rec, err := svc.Create(ctx, "Task", records.Record{"title": "before", "done": false}, "u1", model)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	created := rec["createdAt"].(string)

	time.Sleep(10 * time.Millisecond)
	merged, err := svc.Update(ctx, "Task", rec.ID(), records.Record{"done": "true"}, model)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if merged["title"] != "before" {
		t.Errorf("Untouched field must be preserved, got %v", merged["title"])
	}
	if merged["done"] != true {
		t.Errorf("Expected coerced done=true, got %v", merged["done"])
	}
	if merged["createdAt"] != created {
		t.Errorf("createdAt must survive updates")
	}
	if merged["updatedAt"] == created {
		t.Errorf("updatedAt must refresh on update")
	}
	if merged.ID() != rec.ID() {
		t.Errorf("Record id must never change on merge")
	}
}

func TestServiceUpdateAbsentRecord(t *testing.T) {
	svc := records.NewService(records.NewGormStore(setupTestDB(t)))
	model := taskModel(t)

	_, err := svc.Update(context.Background(), "Task", "nope", records.Record{"done": true}, model)
	if err == nil {
		t.Fatal("Expected error updating absent record")
	}
	if !types.IsType(err, types.TypeRecordNotFound) {
		t.Errorf("Expected record not found, got %v", err)
	}
}

func TestServiceDelete(t *testing.T) {
	svc := records.NewService(records.NewGormStore(setupTestDB(t)))
	model := taskModel(t)
	ctx := context.Background()

	rec, err := svc.Create(ctx, "Task", records.Record{"title": "x"}, "u1", model)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := svc.Delete(ctx, "Task", rec.ID()); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	found, err := svc.FindByID(ctx, "Task", rec.ID())
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if found != nil {
		t.Error("Expected record gone after delete")
	}

	err = svc.Delete(ctx, "Task", rec.ID())
	if !types.IsType(err, types.TypeRecordNotFound) {
		t.Errorf("Expected record not found, got %v", err)
	}
}
