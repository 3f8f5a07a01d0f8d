package remote

import (
	"encoding/json"
	"strings"
)

// Flag is a remote boolean. Spreadsheet-backed authorities store booleans
// as strings like "True" or "Yes", while API-backed ones send real JSON
// booleans; Flag accepts both.
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = Flag(b)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*f = Flag(truthy(s))
	return nil
}

func (f Flag) Bool() bool { return bool(f) }

func truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1":
		return true
	default:
		return false
	}
}
