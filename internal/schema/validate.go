package schema

import (
	"strings"

	"github.com/localnerve/fabrica/internal/types"
)

// ValidateAndNormalize checks a raw descriptor against the schema rules and
// fills in the normalized defaults. It mutates the descriptor in place and
// touches neither the registry nor any store. The checks run in a fixed
// order so the first violation reported is deterministic for a given input.
func ValidateAndNormalize(m *ModelDescriptor) error {
	if m == nil || strings.TrimSpace(m.Name) == "" {
		return types.InvalidSchema("Model name is required and must be a non-empty string")
	}

	if len(m.Fields) == 0 {
		return types.InvalidSchema("Model must have at least one field")
	}

	for i := range m.Fields {
		f := &m.Fields[i]
		if strings.TrimSpace(f.Name) == "" {
			return types.InvalidSchema("Field name is required and must be a non-empty string")
		}
		if !f.Type.IsValid() {
			return types.InvalidSchema("Invalid field type: %s. Must be one of: %s", f.Type, joinFieldTypes())
		}
	}

	if m.RBAC == nil {
		return types.InvalidSchema("Model must have RBAC configuration")
	}

	if m.TableName == "" {
		m.TableName = strings.ToLower(m.Name) + "s"
	}

	// Absent means enabled; an explicit false is preserved.
	if m.Timestamps == nil {
		enabled := true
		m.Timestamps = &enabled
	}

	return nil
}

func joinFieldTypes() string {
	parts := make([]string, len(ValidFieldTypes))
	for i, t := range ValidFieldTypes {
		parts[i] = string(t)
	}
	return strings.Join(parts, ", ")
}
