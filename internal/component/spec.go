package component

import (
	"github.com/Alia5/studiogen/internal/confignode"
)

// Spec is a validated component: a map with a well-formed provider.
// Keys other than provider and config are kept untouched in Node.
type Spec struct {
	Provider TypeReference
	Node     confignode.Map
}

// FromNode validates that n is a component spec.
func FromNode(n confignode.Node) (*Spec, error) {
	m, ok := n.(confignode.Map)
	if !ok {
		kind := "nil"
		if n != nil {
			kind = n.Kind().String()
		}
		return nil, &ReferenceError{Path: "$", Reason: "component must be a map, got " + kind}
	}
	s, ok := m.GetString(ProviderKey)
	if !ok {
		raw, present := m.Get(ProviderKey)
		if !present {
			return nil, &ReferenceError{Path: "$." + ProviderKey, Reason: "missing provider"}
		}
		kind := "nil"
		if raw != nil {
			kind = raw.Kind().String()
		}
		return nil, &ReferenceError{Path: "$." + ProviderKey, Reason: "provider must be a string, got " + kind}
	}
	ref, err := parseAt("$."+ProviderKey, s)
	if err != nil {
		return nil, err
	}
	return &Spec{Provider: ref, Node: m}, nil
}

// Config returns the construction data, if present.
func (s *Spec) Config() (confignode.Node, bool) {
	return s.Node.Get(ConfigKey)
}
