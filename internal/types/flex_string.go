package types

import (
	"bytes"
	"strings"

	"github.com/goccy/go-json"
)

// FlexString keeps the raw text of a JSON string or number. It never fails to
// unmarshal; callers parse the text and fall back to defaults on bad input.
type FlexString string

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*f = ""
			return nil
		}
		*f = FlexString(strings.TrimSpace(s))
		return nil
	}
	*f = FlexString(data)
	return nil
}

// String returns the captured text
func (f FlexString) String() string {
	return string(f)
}

// Empty reports whether nothing usable was supplied
func (f FlexString) Empty() bool {
	return strings.TrimSpace(string(f)) == ""
}
