package models

import (
	"database/sql/driver"
	"fmt"

	"github.com/goccy/go-json"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// JSON is a wrapper around gorm.io/datatypes.JSON to allow for custom data type mapping
type JSON struct {
	datatypes.JSON
}

// Value promotes the embedded JSON's Value method. An empty value is stored
// as an empty array so history columns are never NULL.
func (j JSON) Value() (driver.Value, error) {
	if len(j.JSON) == 0 {
		return "[]", nil
	}
	return j.JSON.Value()
}

// Scan promotes the embedded JSON's Scan method
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		j.JSON = nil
		return nil
	}
	return j.JSON.Scan(value)
}

// GormDBDataType ensures the correct data type is used for each database driver.
// This resolves the issue where MSSQL does not support the 'json' data type.
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

// DecodeList decodes a JSON array column into entries. Empty decodes to nil.
func DecodeList[T any](j JSON) ([]T, error) {
	if len(j.JSON) == 0 || string(j.JSON) == "null" {
		return nil, nil
	}
	var out []T
	if err := json.Unmarshal(j.JSON, &out); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	return out, nil
}

// AppendBounded appends entry to the JSON array in j, keeping at most max of
// the newest entries.
func AppendBounded[T any](j JSON, entry T, max int) (JSON, error) {
	entries, err := DecodeList[T](j)
	if err != nil {
		return j, err
	}
	entries = append(entries, entry)
	if max > 0 && len(entries) > max {
		entries = entries[len(entries)-max:]
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return j, fmt.Errorf("encode history: %w", err)
	}
	return JSON{JSON: datatypes.JSON(raw)}, nil
}
