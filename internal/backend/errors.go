package backend

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFormat reports a file extension the active engine cannot
// load. Fatal for that load call.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ErrUnknownBackend reports a registry lookup for a name no engine
// registered under.
var ErrUnknownBackend = errors.New("unknown backend")

// NameKind distinguishes which registry a name check walked.
type NameKind string

const (
	KindFeature NameKind = "feature"
	KindAddress NameKind = "address"
)

// NameError reports the first invalid object type or name found while
// checking a selection against an engine's registries.
type NameError struct {
	Kind   NameKind
	Object string   // offending object type
	Name   string   // offending feature/address name; empty if the object type itself is invalid
	Valid  []string // valid candidates at the failing level
}

// Error implements the error interface.
func (e *NameError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%q is not a valid object name, pick from %v", e.Object, e.Valid)
	}
	return fmt.Sprintf("%q is not a valid %s name for %q, pick from %v", e.Name, e.Kind, e.Object, e.Valid)
}
