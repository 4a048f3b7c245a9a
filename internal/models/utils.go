package models

import (
	"database/sql/driver"

	"github.com/goccy/go-json"
)

// JSONMap represents a JSON object stored in a text or jsonb column
type JSONMap map[string]interface{}

// Value implements the driver.Valuer interface for JSONMap
func (j JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return "{}", nil
	}
	b, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for JSONMap
func (j *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSONMap)
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	}
	return nil
}

// AllModels lists the tables owned by the service, in migration order.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&UserEmail{},
		&ForwardEmail{},
		&SystemConfig{},
		&Domain{},
		&DeliveryLog{},
	}
}
