package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// LocationValue is the column shape of one work location stored inline as JSON.
type LocationValue struct {
	Country         string  `json:"country"`
	Region          *string `json:"region"`
	HasVehicle      bool    `json:"hasVehicle"`
	IsHoused        bool    `json:"isHoused"`
	IsLocalResident bool    `json:"isLocalResident"`
	IsPrimary       bool    `json:"isPrimary"`
}

// LocationValues persists an ordered location list as a JSON text column.
type LocationValues []LocationValue

// Value marshals the list into JSON.
func (l LocationValues) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	buf, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(buf), nil
}

// Scan decodes the JSON column.
func (l *LocationValues) Scan(value interface{}) error {
	if value == nil {
		*l = LocationValues{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("location values: unsupported scan type %T", value)
	}

	result := LocationValues{}
	if len(raw) == 0 {
		*l = result
		return nil
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return err
	}
	*l = result
	return nil
}
