// Package options holds the caller-supplied named options of an export request.
package options

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Store is an immutable view of named options (key -> raw string value).
// An option is "defined" when its key is present with a non-blank value;
// a present-but-blank option behaves exactly like an absent one.
type Store struct {
	values map[string]string
}

// New copies m into a Store. Keys and values are trimmed.
func New(m map[string]string) Store {
	values := make(map[string]string, len(m))
	for k, v := range m {
		key := strings.TrimSpace(k)
		if key == "" {
			continue
		}
		values[key] = strings.TrimSpace(v)
	}
	return Store{values: values}
}

// Parse reads the "key=value,key=value" form used on the command line.
// A bare key without "=" is recorded with the value "1" so flags can be
// switched on by name alone.
func Parse(s string) (Store, error) {
	values := map[string]string{}
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, found := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if key == "" {
			return Store{}, fmt.Errorf("parse options: empty key in %q", pair)
		}
		if !found {
			value = "1"
		}
		if _, dup := values[key]; dup {
			return Store{}, fmt.Errorf("parse options: duplicate key %q", key)
		}
		values[key] = value
	}
	return New(values), nil
}

// Lookup returns the value of key and whether it is defined.
func (s Store) Lookup(key string) (string, bool) {
	v, ok := s.values[key]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Defined reports whether key carries a non-blank value.
func (s Store) Defined(key string) bool {
	_, ok := s.Lookup(key)
	return ok
}

// Require returns the value of key or a *MissingError when it is undefined.
func (s Store) Require(key string) (string, error) {
	v, ok := s.Lookup(key)
	if !ok {
		return "", &MissingError{Key: key}
	}
	return v, nil
}

// ErrMissing is wrapped by every MissingError.
var ErrMissing = errors.New("missing required option")

// MissingError reports a required option that was not supplied.
type MissingError struct {
	Key string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("option %s is required", e.Key)
}

func (e *MissingError) Unwrap() error { return ErrMissing }

// Bool coerces key to a boolean. A defined value is true unless it spells
// an explicit negative ("0", "false", "no", "off"); an undefined key yields def.
func (s Store) Bool(key string, def bool) bool {
	v, ok := s.Lookup(key)
	if !ok {
		return def
	}
	switch strings.ToLower(v) {
	case "0", "false", "no", "off":
		return false
	default:
		return true
	}
}

// Float parses key as a finite float64. It returns def when the key is
// undefined or does not parse; the second result is false only on a parse
// failure. NaN and infinities are parse failures.
func (s Store) Float(key string, def float64) (float64, bool) {
	v, ok := s.Lookup(key)
	if !ok {
		return def, true
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return def, false
	}
	return f, true
}

// Int parses key as an int, with the same fallback rules as Float.
// Values written with a fractional part ("150.0") are truncated; values
// outside the int range are parse failures.
func (s Store) Int(key string, def int) (int, bool) {
	v, ok := s.Lookup(key)
	if !ok {
		return def, true
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || f < math.MinInt || f >= math.MaxInt {
		return def, false
	}
	return int(f), true
}

// String returns the raw value of key or def when undefined.
func (s Store) String(key, def string) string {
	if v, ok := s.Lookup(key); ok {
		return v
	}
	return def
}

// Keys returns the defined keys in sorted order.
func (s Store) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k, v := range s.values {
		if v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of defined options.
func (s Store) Len() int {
	return len(s.Keys())
}

// Map returns a copy of the underlying values.
func (s Store) Map() map[string]string {
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// MarshalJSON encodes the store as a flat JSON object.
func (s Store) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Map())
}

// UnmarshalJSON accepts a flat JSON object. Non-string scalars are
// converted to their textual form so clients may send numbers and booleans.
func (s *Store) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode options: %w", err)
	}
	values := make(map[string]string, len(raw))
	for k, v := range raw {
		switch tv := v.(type) {
		case nil:
			continue
		case string:
			values[k] = tv
		case bool:
			if tv {
				values[k] = "true"
			} else {
				values[k] = "false"
			}
		case float64:
			values[k] = strconv.FormatFloat(tv, 'f', -1, 64)
		default:
			return fmt.Errorf("decode options: %s must be a scalar", k)
		}
	}
	*s = New(values)
	return nil
}
