package runnerspec

import (
	"fmt"
	"time"
)

// Args holds the declarative arguments a Module spec passes to its Factory.
// Values come from decoded configuration, so numbers arrive as float64 and
// durations as strings.
type Args map[string]any

// String returns the string argument for key, or def when absent.
// A present value of the wrong type is an error.
func (a Args) String(key, def string) (string, error) {
	v, ok := a[key]
	if !ok || v == nil {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %q: expected string, got %T", key, v)
	}
	return s, nil
}

// Int returns the integer argument for key, or def when absent. Decoded
// config delivers numbers as float64; a fractional value is an error.
func (a Args) Int(key string, def int) (int, error) {
	v, ok := a[key]
	if !ok || v == nil {
		return def, nil
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("argument %q: expected number, got %T", key, v)
	}
	n := int(f)
	if float64(n) != f {
		return 0, fmt.Errorf("argument %q: expected whole number, got %v", key, f)
	}
	return n, nil
}

// Bool returns the boolean argument for key, or def when absent.
func (a Args) Bool(key string, def bool) (bool, error) {
	v, ok := a[key]
	if !ok || v == nil {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("argument %q: expected bool, got %T", key, v)
	}
	return b, nil
}

// Duration returns the duration argument for key parsed from its string
// form ("250ms", "5s"), or def when absent.
func (a Args) Duration(key string, def time.Duration) (time.Duration, error) {
	s, err := a.String(key, "")
	if err != nil {
		return 0, err
	}
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("argument %q: %w", key, err)
	}
	return d, nil
}
