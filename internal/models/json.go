package models

import (
	"database/sql/driver"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// JSON is the column type for descriptor and record documents. It rides on
// gorm.io/datatypes.JSON for value handling but picks its own column DDL so
// the same model works on every supported dialect.
type JSON datatypes.JSON

// Value implements driver.Valuer.
func (j JSON) Value() (driver.Value, error) {
	return datatypes.JSON(j).Value()
}

// Scan implements sql.Scanner.
func (j *JSON) Scan(value interface{}) error {
	return (*datatypes.JSON)(j).Scan(value)
}

// MarshalJSON keeps the stored document transparent to encoding/json.
func (j JSON) MarshalJSON() ([]byte, error) {
	return datatypes.JSON(j).MarshalJSON()
}

// UnmarshalJSON keeps the stored document transparent to encoding/json.
func (j *JSON) UnmarshalJSON(b []byte) error {
	return (*datatypes.JSON)(j).UnmarshalJSON(b)
}

// GormDBDataType picks the column DDL per database driver. SQL Server has
// no native json type.
func (JSON) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	switch db.Dialector.Name() {
	case "mysql":
		return "JSON"
	case "postgres":
		return "JSONB"
	case "sqlserver", "mssql":
		return "NVARCHAR(MAX)"
	case "sqlite":
		return "JSON"
	}
	return "TEXT"
}
