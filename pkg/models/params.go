package models

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/pkg/errors"
)

// JSONMap maps a jsonb column onto an untyped object. Task parameters and
// workflow settings are opaque to the engine, so no stronger typing applies.
type JSONMap map[string]interface{}

func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.Errorf("cannot scan %T into JSONMap", value)
	}
	if len(raw) == 0 {
		*m = nil
		return nil
	}
	return json.Unmarshal(raw, m)
}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// String extracts a string-valued key, with a default for missing or
// non-string entries.
func (m JSONMap) String(key, def string) string {
	if v, ok := m[key].(string); ok && v != "" {
		return v
	}
	return def
}
