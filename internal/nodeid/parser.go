// internal/nodeid/parser.go
package nodeid

import (
	"fmt"
	"regexp"
	"strings"
)

// nameRegex matches a single identifier, used both for node ids and port names.
var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// isValidName checks for undesirable but technically matching names.
func isValidName(name string) bool {
	if name == "-" || name == "_" {
		return false
	}
	return nameRegex.MatchString(name)
}

// ValidateName returns an error if name cannot be used as a node id or port name.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("identifier cannot be empty")
	}
	if !isValidName(name) {
		return fmt.Errorf("invalid identifier: %q", name)
	}
	return nil
}

// Parse creates a Ref by parsing its canonical string representation.
func Parse(raw string) (Ref, error) {
	if raw == "" {
		return Ref{}, fmt.Errorf("reference cannot be empty")
	}

	parts := strings.Split(raw, ".")
	if len(parts) > 2 {
		return Ref{}, fmt.Errorf("reference %q has too many segments", raw)
	}
	for _, p := range parts {
		if p == "" {
			return Ref{}, fmt.Errorf("reference %q contains empty segment", raw)
		}
		if !isValidName(p) {
			return Ref{}, fmt.Errorf("invalid reference segment: %q", p)
		}
	}

	if len(parts) == 1 {
		return NodeRef(parts[0]), nil
	}
	return PortRef(parts[0], parts[1]), nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// statically known references.
func MustParse(raw string) Ref {
	r, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return r
}
