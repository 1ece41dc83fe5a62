package schema_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/localnerve/fabrica/internal/schema"
	"github.com/localnerve/fabrica/internal/store"
	"github.com/localnerve/fabrica/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) (*schema.Registry, string) {
	dir := t.TempDir()
	fs, err := store.NewFileStore(dir)
	require.NoError(t, err)
	return schema.NewRegistry(fs), dir
}

func TestRegistrySaveAndGetCaseInsensitive(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, reg.Save(ctx, validModel()))

	assert.NotNil(t, reg.Get("Task"))
	assert.NotNil(t, reg.Get("task"))
	assert.NotNil(t, reg.Get("TASK"))
	assert.True(t, reg.Exists("tAsK"))
	assert.Equal(t, 1, reg.Count())

	// Same name in a different case is the same model, not a second one.
	again := validModel()
	again.Name = "TASK"
	require.NoError(t, reg.Save(ctx, again))
	assert.Equal(t, 1, reg.Count())
}

func TestRegistrySaveStampsTimestamps(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	m := validModel()
	require.NoError(t, reg.Save(ctx, m))
	require.NotEmpty(t, m.CreatedAt)
	assert.Equal(t, m.CreatedAt, m.UpdatedAt)

	created := m.CreatedAt
	time.Sleep(10 * time.Millisecond)

	// An update clears CreatedAt so the registered value is preserved.
	update := validModel()
	update.CreatedAt = ""
	require.NoError(t, reg.Save(ctx, update))

	assert.Equal(t, created, update.CreatedAt, "createdAt must survive updates")
	assert.NotEqual(t, created, update.UpdatedAt, "updatedAt must refresh on every save")
}

func TestRegistrySaveRejectsInvalid(t *testing.T) {
	reg, _ := newTestRegistry(t)

	m := validModel()
	m.RBAC = nil
	err := reg.Save(context.Background(), m)
	require.Error(t, err)
	assert.True(t, types.IsType(err, types.TypeInvalidSchema))
	assert.Equal(t, 0, reg.Count(), "a failed save must not register anything")
}

func TestRegistryLoadAllIsIdempotent(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, reg.Save(ctx, validModel()))
	article := validModel()
	article.Name = "Article"
	require.NoError(t, reg.Save(ctx, article))

	loaded, failures, err := reg.LoadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, failures)
	assert.Len(t, loaded, 2)

	first := reg.GetAll()
	_, _, err = reg.LoadAll(ctx)
	require.NoError(t, err)
	second := reg.GetAll()

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Name, second[i].Name)
		assert.Equal(t, first[i].CreatedAt, second[i].CreatedAt)
	}
}

func TestRegistryLoadAllSkipsAndReportsFailures(t *testing.T) {
	reg, dir := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, reg.Save(ctx, validModel()))

	// A corrupt descriptor and a structurally invalid one, planted directly.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "norbac.json"),
		[]byte(`{"name":"NoRbac","fields":[{"name":"x","type":"string"}]}`), 0o644))

	loaded, failures, err := reg.LoadAll(ctx)
	require.NoError(t, err, "individual failures must not abort the load")
	assert.Equal(t, []string{"Task"}, loaded)
	require.Len(t, failures, 2)

	names := map[string]bool{}
	for _, f := range failures {
		names[f.Name] = true
		assert.NotEmpty(t, f.Err)
	}
	assert.True(t, names["broken"])
	assert.True(t, names["norbac"])

	assert.Equal(t, 1, reg.Count())
}

func TestRegistryDelete(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, reg.Save(ctx, validModel()))
	require.NoError(t, reg.Delete(ctx, "TASK"))
	assert.False(t, reg.Exists("Task"))

	err := reg.Delete(ctx, "Task")
	require.Error(t, err)
	assert.True(t, types.IsType(err, types.TypeModelNotFound))
}

func TestRegistryGetAllInsertionOrder(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	for _, name := range []string{"Gamma", "Alpha", "Beta"} {
		m := validModel()
		m.Name = name
		require.NoError(t, reg.Save(ctx, m))
	}

	all := reg.GetAll()
	require.Len(t, all, 3)
	assert.Equal(t, "Gamma", all[0].Name)
	assert.Equal(t, "Alpha", all[1].Name)
	assert.Equal(t, "Beta", all[2].Name)
}
