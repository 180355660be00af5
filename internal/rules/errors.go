package rules

import "fmt"

// ErrorKind says which way a rules document was malformed.
type ErrorKind int

const (
	// KindType means a value had the wrong shape, e.g. a string where an
	// array of objects was required.
	KindType ErrorKind = iota
	// KindPattern means a regular expression failed to compile.
	KindPattern
	// KindColor means a color literal was not a decimal 0-255 index.
	KindColor
	// KindGroup means a capture group reference was out of range.
	KindGroup
)

// ConfigError reports why a rules document was rejected, pointing at the
// offending field by its path, e.g. "event_patterns[2].color".
type ConfigError struct {
	Field    string
	Kind     ErrorKind
	Expected string // for KindType: the shape that was required
	Err      error  // underlying cause, nil for KindType
}

func (e *ConfigError) Error() string {
	if e.Kind == KindType {
		return fmt.Sprintf("%s: invalid value type (expected %s)", e.Field, e.Expected)
	}
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func typeErr(field, expected string) *ConfigError {
	return &ConfigError{Field: field, Kind: KindType, Expected: expected}
}
