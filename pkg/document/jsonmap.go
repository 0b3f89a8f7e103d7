package document

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONMap holds a document's structured content. The column store persists
// it as JSON text; the search store stores it as a nested object.
type JSONMap map[string]any

// Value implements driver.Valuer for the column store.
func (j JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner for the column store.
func (j *JSONMap) Scan(value any) error {
	if value == nil {
		*j = make(map[string]any)
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into JSONMap", value)
	}
	return json.Unmarshal(data, j)
}
