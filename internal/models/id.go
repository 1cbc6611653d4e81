package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ID identifies a record in one of the remote collections. The store decides its
// shape: users carry numeric ids, permissions carry string ids and roles may carry
// either. ID keeps the shape it was decoded with so a record written back to the
// store carries the same id it was read with.
type ID struct {
	raw     string
	numeric bool
}

// NumericID returns an ID encoded as a JSON number.
func NumericID(n int64) ID {
	return ID{raw: fmt.Sprintf("%d", n), numeric: true}
}

// StringID returns an ID encoded as a JSON string.
func StringID(s string) ID {
	return ID{raw: s}
}

// ParseID builds an ID from user input. All-digit input is treated as numeric.
func ParseID(s string) ID {
	s = strings.TrimSpace(s)
	if s == "" {
		return ID{}
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return ID{raw: s}
		}
	}
	return ID{raw: s, numeric: true}
}

func (id ID) String() string { return id.raw }

// IsZero reports whether the ID is unset. Zero IDs are omitted from create payloads.
func (id ID) IsZero() bool { return id.raw == "" }

// Numeric reports whether the ID is encoded as a JSON number.
func (id ID) Numeric() bool { return id.numeric }

// Equal compares IDs by value, ignoring how they are encoded on the wire.
func (id ID) Equal(other ID) bool { return id.raw == other.raw }

func (id ID) MarshalJSON() ([]byte, error) {
	if id.raw == "" {
		return []byte("null"), nil
	}
	if id.numeric {
		return []byte(id.raw), nil
	}
	return json.Marshal(id.raw)
}

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*id = ID{}
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("invalid id: %w", err)
		}
		*id = ID{raw: s}
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("invalid id %s: %w", data, err)
		}
		*id = ID{raw: n.String(), numeric: true}
	}
	return nil
}

// MarshalText is used by the YAML and TOML snapshot encoders.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.raw), nil
}

func (id *ID) UnmarshalText(text []byte) error {
	*id = ParseID(string(text))
	return nil
}
