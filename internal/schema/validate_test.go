package schema_test

import (
	"testing"

	"github.com/localnerve/fabrica/internal/schema"
	"github.com/localnerve/fabrica/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validModel() *schema.ModelDescriptor {
	return &schema.ModelDescriptor{
		Name: "Task",
		Fields: []schema.ModelField{
			{Name: "title", Type: schema.FieldString, Required: true},
			{Name: "done", Type: schema.FieldBoolean, Default: false},
		},
		RBAC: schema.RBAC{
			"Manager": {schema.OpAll},
			"User":    {schema.OpCreate, schema.OpRead},
		},
	}
}

func TestValidateAndNormalizeDefaults(t *testing.T) {
	m := validModel()
	require.NoError(t, schema.ValidateAndNormalize(m))

	assert.Equal(t, "tasks", m.TableName, "tableName defaults to lowercased plural")
	require.NotNil(t, m.Timestamps)
	assert.True(t, *m.Timestamps, "timestamps default to enabled")
	assert.True(t, m.TimestampsEnabled())
}

func TestValidateAndNormalizePreservesExplicitValues(t *testing.T) {
	disabled := false
	m := validModel()
	m.TableName = "todo_items"
	m.Timestamps = &disabled

	require.NoError(t, schema.ValidateAndNormalize(m))
	assert.Equal(t, "todo_items", m.TableName)
	assert.False(t, m.TimestampsEnabled(), "explicit false must survive normalization")
}

func TestValidateAndNormalizeRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*schema.ModelDescriptor)
	}{
		{"empty name", func(m *schema.ModelDescriptor) { m.Name = "  " }},
		{"no fields", func(m *schema.ModelDescriptor) { m.Fields = nil }},
		{"empty field name", func(m *schema.ModelDescriptor) { m.Fields[0].Name = "" }},
		{"unknown field type", func(m *schema.ModelDescriptor) { m.Fields[0].Type = "decimal" }},
		{"missing rbac", func(m *schema.ModelDescriptor) { m.RBAC = nil }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := validModel()
			tc.mutate(m)
			err := schema.ValidateAndNormalize(m)
			require.Error(t, err)
			assert.True(t, types.IsType(err, types.TypeInvalidSchema), "got %v", err)
		})
	}
}

func TestValidateAndNormalizeNil(t *testing.T) {
	err := schema.ValidateAndNormalize(nil)
	require.Error(t, err)
	assert.True(t, types.IsType(err, types.TypeInvalidSchema))
}

func TestRBACAllows(t *testing.T) {
	rbac := schema.RBAC{
		"Manager": {schema.OpAll},
		"User":    {schema.OpCreate, schema.OpRead},
	}

	assert.True(t, rbac.Allows("Manager", schema.OpDelete), "'all' grants every operation")
	assert.True(t, rbac.Allows("User", schema.OpRead))
	assert.False(t, rbac.Allows("User", schema.OpDelete))
	assert.False(t, rbac.Allows("Ghost", schema.OpRead), "missing role has no permissions")
}

func TestDescriptorKeyIsCaseInsensitive(t *testing.T) {
	a := &schema.ModelDescriptor{Name: "Task"}
	b := &schema.ModelDescriptor{Name: "TASK"}
	assert.Equal(t, a.Key(), b.Key())
	assert.Equal(t, "task", a.Key())
}
