package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// FlexFloat decodes a JSON number that the backend may send as a number,
// a numeric string, or null. It remembers how the value arrived so callers
// can tell an absent/zero number apart from a string that happens to be "0".
type FlexFloat struct {
	Value  float64
	Raw    string
	Quoted bool
	Valid  bool
	// NaN is set for a string with no numeric prefix, such as "نامشخص".
	// Value is 0 for such a string.
	NaN bool
}

// Float returns a FlexFloat holding a plain number.
func Float(v float64) FlexFloat {
	return FlexFloat{Value: v, Raw: strconv.FormatFloat(v, 'f', -1, 64), Valid: true}
}

// Present reports whether the field carries a usable value: a non-empty
// string, or a number other than zero.
func (f FlexFloat) Present() bool {
	if !f.Valid {
		return false
	}
	if f.Quoted {
		return f.Raw != ""
	}
	return f.Value != 0
}

// String returns the textual form the value arrived in.
func (f FlexFloat) String() string {
	if !f.Valid {
		return ""
	}
	return f.Raw
}

func (f *FlexFloat) UnmarshalJSON(b []byte) error {
	*f = FlexFloat{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		f.Raw = s
		f.Quoted = true
		f.Valid = true
		v, ok := leadingFloat(s)
		f.Value, f.NaN = v, !ok
		return nil
	}
	if bytes.Equal(b, []byte("true")) || bytes.Equal(b, []byte("false")) {
		return nil
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return err
	}
	f.Value = v
	f.Raw = strconv.FormatFloat(v, 'f', -1, 64)
	f.Valid = true
	return nil
}

func (f FlexFloat) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	if f.Quoted {
		return json.Marshal(f.Raw)
	}
	return []byte(strconv.FormatFloat(f.Value, 'f', -1, 64)), nil
}

// leadingFloat parses the longest numeric prefix of s. ok is false when s
// has none.
func leadingFloat(s string) (v float64, ok bool) {
	s = strings.TrimSpace(s)
	end := 0
	seenDigit, seenDot, seenExp := false, false, false
scan:
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			seenDigit = true
			end = i + 1
		case (r == '-' || r == '+') && (i == 0 || s[i-1] == 'e' || s[i-1] == 'E'):
		case r == '.' && !seenDot && !seenExp:
			seenDot = true
		case (r == 'e' || r == 'E') && seenDigit && !seenExp:
			seenExp = true
		default:
			break scan
		}
	}
	if !seenDigit {
		return 0, false
	}
	v, _ = strconv.ParseFloat(s[:end], 64)
	return v, true
}

// FlexString decodes identifiers that may arrive as JSON strings or numbers.
type FlexString string

func (s *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = FlexString(v)
		return nil
	}
	*s = FlexString(string(b))
	return nil
}

func (s FlexString) String() string { return string(s) }
