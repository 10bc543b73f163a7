package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// FlexibleID accepts identifiers encoded as JSON strings or numbers.
// The upstream API is not consistent about which one it sends.
type FlexibleID string

// String returns the identifier as text.
func (id FlexibleID) String() string { return string(id) }

// UnmarshalJSON implements json.Unmarshaler.
func (id *FlexibleID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = FlexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	if i, err := n.Int64(); err == nil {
		*id = FlexibleID(strconv.FormatInt(i, 10))
		return nil
	}
	*id = FlexibleID(n.String())
	return nil
}
