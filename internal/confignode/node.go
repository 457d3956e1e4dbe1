// Package confignode holds the in-memory tree built from a component
// document and the loaders that build it.
//
// A tree is made of three shapes: Map, List and the scalars (String, Number,
// Bool, Null). Trees are built once by a loader and treated as read-only
// afterwards; nothing in this module mutates a tree after Parse returns.
package confignode

import (
	"regexp"
	"sort"
)

// Kind identifies the variant of a Node.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// Node is a sealed sum type; only the types in this package implement it.
type Node interface {
	Kind() Kind
	node()
}

// Map is a string-keyed mapping. Key order carries no meaning.
type Map map[string]Node

// List is an ordered sequence. Element order is significant.
type List []Node

// String is a text scalar.
type String string

// Number is a numeric scalar kept as its canonical decimal text so that no
// precision is lost between loading and emission.
type Number string

// Bool is a boolean scalar.
type Bool bool

// Null is the null scalar.
type Null struct{}

func (Map) Kind() Kind    { return KindMap }
func (List) Kind() Kind   { return KindList }
func (String) Kind() Kind { return KindString }
func (Number) Kind() Kind { return KindNumber }
func (Bool) Kind() Kind   { return KindBool }
func (Null) Kind() Kind   { return KindNull }

func (Map) node()    {}
func (List) node()   {}
func (String) node() {}
func (Number) node() {}
func (Bool) node()   {}
func (Null) node()   {}

// Keys returns the map keys in lexicographic order.
func (m Map) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the value under key.
func (m Map) Get(key string) (Node, bool) {
	n, ok := m[key]
	return n, ok
}

// GetString returns the value under key if it is a String.
func (m Map) GetString(key string) (string, bool) {
	s, ok := m[key].(String)
	return string(s), ok
}

var numberPattern = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

// ValidNumber reports whether s follows the JSON number grammar, which is
// the canonical text form of Number.
func ValidNumber(s string) bool {
	return numberPattern.MatchString(s)
}

// Equal reports whether two trees are deeply equal. Map key order is
// irrelevant; list order is not.
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case Map:
		bv := b.(Map)
		if len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			w, ok := bv[k]
			if !ok || !Equal(v, w) {
				return false
			}
		}
		return true
	case List:
		bv := b.(List)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
