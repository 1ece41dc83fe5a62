package schema

import "strings"

// FieldType enumerates the value kinds a model field may declare.
type FieldType string

const (
	FieldString  FieldType = "string"
	FieldNumber  FieldType = "number"
	FieldBoolean FieldType = "boolean"
	FieldDate    FieldType = "date"
	FieldEmail   FieldType = "email"
	FieldJSON    FieldType = "json"
)

// ValidFieldTypes lists every accepted field type, in declaration order.
var ValidFieldTypes = []FieldType{FieldString, FieldNumber, FieldBoolean, FieldDate, FieldEmail, FieldJSON}

// IsValid reports whether t is one of the enumerated field types.
func (t FieldType) IsValid() bool {
	for _, v := range ValidFieldTypes {
		if t == v {
			return true
		}
	}
	return false
}

// Operation enumerates the record operations RBAC entries may grant.
type Operation string

const (
	OpCreate Operation = "create"
	OpRead   Operation = "read"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
	OpAll    Operation = "all"
)

// AdminRole bypasses every RBAC and ownership check.
const AdminRole = "Admin"

// FieldRelation is an advisory link to another model's field. It is
// persisted with the descriptor but never enforced by the engine.
type FieldRelation struct {
	Model string `json:"model"`
	Field string `json:"field"`
}

// ModelField describes one typed field of a model.
type ModelField struct {
	Name     string         `json:"name"`
	Type     FieldType      `json:"type"`
	Required bool           `json:"required,omitempty"`
	Unique   bool           `json:"unique,omitempty"`
	Default  interface{}    `json:"default,omitempty"`
	Relation *FieldRelation `json:"relation,omitempty"`
}

// RBAC maps a role name to the operations it may perform.
type RBAC map[string][]Operation

// Allows reports whether the role's permission set contains op or "all".
// A role with no entry has no permissions.
func (r RBAC) Allows(role string, op Operation) bool {
	for _, p := range r[role] {
		if p == OpAll || p == op {
			return true
		}
	}
	return false
}

// ModelDescriptor is the canonical, validated representation of a model.
// Name is the unique identifier; the storage key is the lowercased name.
// Timestamps is tri-state on input so an absent value can default to true
// while an explicit false survives; after validation it is never nil.
type ModelDescriptor struct {
	Name       string       `json:"name"`
	TableName  string       `json:"tableName,omitempty"`
	Fields     []ModelField `json:"fields"`
	OwnerField string       `json:"ownerField,omitempty"`
	RBAC       RBAC         `json:"rbac"`
	Timestamps *bool        `json:"timestamps,omitempty"`
	CreatedAt  string       `json:"createdAt,omitempty"`
	UpdatedAt  string       `json:"updatedAt,omitempty"`
}

// Key returns the canonical registry/storage key for the model.
func (m *ModelDescriptor) Key() string {
	return strings.ToLower(m.Name)
}

// TimestampsEnabled reports whether records of this model carry
// createdAt/updatedAt stamps. Defaults to true for unvalidated descriptors.
func (m *ModelDescriptor) TimestampsEnabled() bool {
	return m.Timestamps == nil || *m.Timestamps
}

// Field returns the declared field with the given name, or nil.
func (m *ModelDescriptor) Field(name string) *ModelField {
	for i := range m.Fields {
		if m.Fields[i].Name == name {
			return &m.Fields[i]
		}
	}
	return nil
}
