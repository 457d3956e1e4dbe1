// Package component interprets a tree as a graph of component specs: maps
// that name an importable type under "provider" and carry their construction
// data under "config".
package component

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	ProviderKey = "provider"
	ConfigKey   = "config"

	// MaxDepth bounds the traversal of a tree.
	MaxDepth = 256
)

var segmentPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// TypeReference is a dotted path naming a symbol inside a namespace,
// e.g. "autogen_agentchat.teams.RoundRobinGroupChat".
type TypeReference string

// ReferenceError reports a missing or malformed provider.
type ReferenceError struct {
	// Path locates the offending value, e.g. "$.config.participants[0].provider".
	Path   string
	Value  string
	Reason string
}

func (e *ReferenceError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("resolve: %s: %s", e.Path, e.Reason)
	}
	return fmt.Sprintf("resolve: %s: %s in %q", e.Path, e.Reason, e.Value)
}

// Stage names the pipeline stage that produced the error.
func (e *ReferenceError) Stage() string { return "resolve" }

// ParseTypeReference validates s. The namespace is everything before the last
// dot and the symbol everything after it; both must be non-empty, and every
// dot-separated segment must be a plain identifier.
func ParseTypeReference(s string) (TypeReference, error) {
	return parseAt("$", s)
}

func parseAt(path, s string) (TypeReference, error) {
	if strings.TrimSpace(s) == "" {
		return "", &ReferenceError{Path: path, Value: s, Reason: "empty type reference"}
	}
	i := strings.LastIndexByte(s, '.')
	if i < 0 {
		return "", &ReferenceError{Path: path, Value: s, Reason: "missing namespace separator"}
	}
	if i == 0 {
		return "", &ReferenceError{Path: path, Value: s, Reason: "empty namespace"}
	}
	if i == len(s)-1 {
		return "", &ReferenceError{Path: path, Value: s, Reason: "empty symbol"}
	}
	for _, seg := range strings.Split(s, ".") {
		if !segmentPattern.MatchString(seg) {
			return "", &ReferenceError{Path: path, Value: s, Reason: "invalid identifier segment"}
		}
	}
	return TypeReference(s), nil
}

// Split returns the namespace and symbol of a valid reference.
func (r TypeReference) Split() (namespace, symbol string) {
	s := string(r)
	i := strings.LastIndexByte(s, '.')
	if i < 0 {
		return "", s
	}
	return s[:i], s[i+1:]
}

func (r TypeReference) Namespace() string {
	ns, _ := r.Split()
	return ns
}

func (r TypeReference) Symbol() string {
	_, sym := r.Split()
	return sym
}

func (r TypeReference) String() string { return string(r) }
