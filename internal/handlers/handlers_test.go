package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/fabrica/data"
	"github.com/localnerve/fabrica/internal/auth"
	"github.com/localnerve/fabrica/internal/handlers"
	"github.com/localnerve/fabrica/internal/middleware"
	"github.com/localnerve/fabrica/internal/models"
	"github.com/localnerve/fabrica/internal/records"
	"github.com/localnerve/fabrica/internal/schema"
	"github.com/localnerve/fabrica/internal/store"
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

	err = db.AutoMigrate(
		&models.ModelDescriptorRow{},
		&models.DynamicRecord{},
		&models.User{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

// setupApp wires the API routes the way the server composition root does.
func setupApp(t *testing.T) (*fiber.App, *schema.Registry, *auth.JWTProvider) {
	db := setupTestDB(t)
	registry := schema.NewRegistry(store.NewGormStore(db))
	provider := auth.NewJWTProvider("test-secret", time.Hour)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := err.Error()
			var customErr *types.CustomError
			var fiberErr *fiber.Error
			switch {
			case errors.As(err, &customErr):
				code = customErr.Code
				message = customErr.Message
			case errors.As(err, &fiberErr):
				code = fiberErr.Code
				message = fiberErr.Message
			}
			return c.Status(code).JSON(fiber.Map{"error": message})
		},
	})

	authenticated := middleware.Authenticate(provider)

	modelHandler := &handlers.ModelHandler{Registry: registry}
	modelGroup := app.Group("/api/models", authenticated)
	modelGroup.Get("/", modelHandler.ListModels)
	modelGroup.Get("/:name", modelHandler.GetModel)
	modelGroup.Post("/", middleware.RequireRoles(schema.AdminRole), modelHandler.PublishModel)
	modelGroup.Put("/:name", middleware.RequireRoles(schema.AdminRole), modelHandler.UpdateModel)
	modelGroup.Delete("/:name", middleware.RequireRoles(schema.AdminRole), modelHandler.DeleteModel)

	recordHandler := &handlers.RecordHandler{
		Registry: registry,
		Service:  records.NewService(records.NewGormStore(db)),
	}
	app.Post("/api/:modelName", authenticated, recordHandler.CreateRecord)
	app.Get("/api/:modelName", authenticated, recordHandler.ListRecords)
	app.Get("/api/:modelName/:id", authenticated, recordHandler.GetRecord)
	app.Put("/api/:modelName/:id", authenticated, recordHandler.UpdateRecord)
	app.Delete("/api/:modelName/:id", authenticated, recordHandler.DeleteRecord)

	return app, registry, provider
}

func tokenFor(t *testing.T, provider *auth.JWTProvider, id, role string) string {
	token, err := provider.IssueToken(&auth.Identity{ID: id, Role: role})
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	return token
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body []byte) (*http.Response, map[string]interface{}) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("Request %s %s failed: %v", method, path, err)
	}

	var payload map[string]interface{}
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			t.Fatalf("Invalid JSON response for %s %s: %v (%s)", method, path, err, raw)
		}
	}
	return resp, payload
}

func TestModelPublishLifecycle(t *testing.T) {
	app, _, provider := setupApp(t)
	admin := tokenFor(t, provider, "admin-1", schema.AdminRole)

	// Publish the bundled Task model.
	resp, body := doJSON(t, app, "POST", "/api/models", admin, []byte(data.SeedTaskModel))
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("Expected 201, got %d: %v", resp.StatusCode, body)
	}
	published := body["data"].(map[string]interface{})
	if published["name"] != "Task" {
		t.Errorf("Expected model name Task, got %v", published["name"])
	}
	if published["tableName"] != "tasks" {
		t.Errorf("Expected normalized tableName tasks, got %v", published["tableName"])
	}
	createdAt := published["createdAt"].(string)

	// Publishing the same name again is a client error.
	resp, _ = doJSON(t, app, "POST", "/api/models", admin, []byte(data.SeedTaskModel))
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("Expected 400 for duplicate publish, got %d", resp.StatusCode)
	}

	// The list shows one model summary.
	resp, body = doJSON(t, app, "GET", "/api/models", admin, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if body["count"].(float64) != 1 {
		t.Errorf("Expected 1 model, got %v", body["count"])
	}

	// Lookup is case-insensitive.
	resp, body = doJSON(t, app, "GET", "/api/models/task", admin, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	full := body["data"].(map[string]interface{})
	if full["rbac"] == nil {
		t.Error("Expected full descriptor with rbac in detail view")
	}

	// Update in place; createdAt survives, the body cannot rename.
	var descriptor map[string]interface{}
	if err := json.Unmarshal([]byte(data.SeedTaskModel), &descriptor); err != nil {
		t.Fatalf("Failed to parse seed model: %v", err)
	}
	descriptor["name"] = "Renamed"
	descriptor["ownerField"] = ""
	updateBody, _ := json.Marshal(descriptor)

	resp, body = doJSON(t, app, "PUT", "/api/models/Task", admin, updateBody)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected 200, got %d: %v", resp.StatusCode, body)
	}
	updated := body["data"].(map[string]interface{})
	if updated["name"] != "Task" {
		t.Errorf("Update must not rename the model, got %v", updated["name"])
	}
	if updated["createdAt"] != createdAt {
		t.Errorf("createdAt must be preserved across updates")
	}

	// Updating an unregistered model is 404, never an upsert.
	resp, _ = doJSON(t, app, "PUT", "/api/models/Ghost", admin, updateBody)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("Expected 404, got %d", resp.StatusCode)
	}

	// Delete, then the model is gone.
	resp, _ = doJSON(t, app, "DELETE", "/api/models/task", admin, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, app, "GET", "/api/models/Task", admin, nil)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %d", resp.StatusCode)
	}
}

func TestModelMutationsRequireAdmin(t *testing.T) {
	app, _, provider := setupApp(t)
	manager := tokenFor(t, provider, "u2", "Manager")

	resp, body := doJSON(t, app, "POST", "/api/models", manager, []byte(data.SeedTaskModel))
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("Expected 403, got %d: %v", resp.StatusCode, body)
	}
	if body["error"] == nil {
		t.Error("Expected error envelope")
	}

	// Reads are open to any authenticated caller.
	resp, _ = doJSON(t, app, "GET", "/api/models", manager, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("Expected 200 for authenticated list, got %d", resp.StatusCode)
	}
}

func TestRoutesRequireAuthentication(t *testing.T) {
	app, _, _ := setupApp(t)

	resp, body := doJSON(t, app, "GET", "/api/models", "", nil)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d: %v", resp.StatusCode, body)
	}

	resp, _ = doJSON(t, app, "GET", "/api/Task", "", nil)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", resp.StatusCode)
	}
}

func TestRecordLifecycle(t *testing.T) {
	app, _, provider := setupApp(t)
	admin := tokenFor(t, provider, "admin-1", schema.AdminRole)
	manager := tokenFor(t, provider, "mgr-1", "Manager")
	user := tokenFor(t, provider, "usr-1", "User")
	viewer := tokenFor(t, provider, "vwr-1", "Viewer")

	resp, _ := doJSON(t, app, "POST", "/api/models", admin, []byte(data.SeedTaskModel))
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("Failed to publish model: %d", resp.StatusCode)
	}

	// Manager creates a record; defaults fill, owner is stamped.
	resp, body := doJSON(t, app, "POST", "/api/Task", manager, []byte(`{"title":"buy milk"}`))
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("Expected 201, got %d: %v", resp.StatusCode, body)
	}
	rec := body["data"].(map[string]interface{})
	id, _ := rec["id"].(string)
	if id == "" {
		t.Fatal("Expected a generated record id")
	}
	if rec["done"] != false {
		t.Errorf("Expected default done=false, got %v", rec["done"])
	}
	if rec["createdBy"] != "mgr-1" {
		t.Errorf("Expected owner stamp mgr-1, got %v", rec["createdBy"])
	}

	// The list shows it; any role with read may look.
	resp, body = doJSON(t, app, "GET", "/api/task", viewer, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if body["count"].(float64) != 1 {
		t.Errorf("Expected 1 record, got %v", body["count"])
	}

	// Reads are never owner-gated.
	resp, _ = doJSON(t, app, "GET", "/api/Task/"+id, user, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("Expected 200 reading another caller's record, got %d", resp.StatusCode)
	}

	// A non-owner with update permission is still blocked by ownership.
	resp, body = doJSON(t, app, "PUT", "/api/Task/"+id, user, []byte(`{"done":true}`))
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("Expected 403 for non-owner update, got %d: %v", resp.StatusCode, body)
	}

	// The owner updates; untouched fields survive the merge.
	resp, body = doJSON(t, app, "PUT", "/api/Task/"+id, manager, []byte(`{"done":true}`))
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected 200, got %d: %v", resp.StatusCode, body)
	}
	merged := body["data"].(map[string]interface{})
	if merged["title"] != "buy milk" {
		t.Errorf("Merge must preserve untouched fields, got %v", merged["title"])
	}
	if merged["done"] != true {
		t.Errorf("Expected done=true after update, got %v", merged["done"])
	}

	// Viewer has no delete permission at all.
	resp, _ = doJSON(t, app, "DELETE", "/api/Task/"+id, viewer, nil)
	if resp.StatusCode != fiber.StatusForbidden {
		t.Errorf("Expected 403 for viewer delete, got %d", resp.StatusCode)
	}

	// Admin may delete anything.
	resp, _ = doJSON(t, app, "DELETE", "/api/Task/"+id, admin, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, app, "GET", "/api/Task/"+id, manager, nil)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %d", resp.StatusCode)
	}
}

func TestRecordRoutesUnknownModel(t *testing.T) {
	app, _, provider := setupApp(t)
	admin := tokenFor(t, provider, "admin-1", schema.AdminRole)

	resp, body := doJSON(t, app, "GET", "/api/Widget", admin, nil)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("Expected 404, got %d: %v", resp.StatusCode, body)
	}

	resp, _ = doJSON(t, app, "POST", "/api/Widget", admin, []byte(`{"x":1}`))
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("Expected 404, got %d", resp.StatusCode)
	}
}

func TestRecordUnknownIDIs404(t *testing.T) {
	app, _, provider := setupApp(t)
	admin := tokenFor(t, provider, "admin-1", schema.AdminRole)

	resp, _ := doJSON(t, app, "POST", "/api/models", admin, []byte(data.SeedTaskModel))
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("Failed to publish model: %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, app, "GET", "/api/Task/nope", admin, nil)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("Expected 404, got %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, app, "PUT", "/api/Task/nope", admin, []byte(`{"done":true}`))
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("Expected 404, got %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, app, "DELETE", "/api/Task/nope", admin, nil)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("Expected 404, got %d", resp.StatusCode)
	}
}
