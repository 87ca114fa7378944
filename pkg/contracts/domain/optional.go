package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// OptionalFloat is a numeric cell that may be explicitly undefined.
// Undefined values marshal to JSON null and are skipped by aggregations.
type OptionalFloat struct {
	Value float64
	Valid bool
}

// Some returns a defined OptionalFloat
func Some(v float64) OptionalFloat {
	return OptionalFloat{Value: v, Valid: true}
}

// Undefined returns an OptionalFloat with no value
func Undefined() OptionalFloat {
	return OptionalFloat{}
}

// Get returns the value and whether it is defined
func (o OptionalFloat) Get() (float64, bool) {
	return o.Value, o.Valid
}

// String formats the value, or returns "" when undefined
func (o OptionalFloat) String() string {
	if !o.Valid {
		return ""
	}
	return strconv.FormatFloat(o.Value, 'f', -1, 64)
}

// MarshalJSON implements json.Marshaler
func (o OptionalFloat) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// UnmarshalJSON implements json.Unmarshaler
func (o *OptionalFloat) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = Undefined()
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}
