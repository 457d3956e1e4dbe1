package confignode

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	yaml "gopkg.in/yaml.v3"
)

const maxYAMLDepth = 512

// parseYAML walks the yaml.v3 node graph instead of decoding into any so
// that integers and floats keep their distinction and aliases are expanded
// explicitly.
func parseYAML(data []byte) (Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, errors.New("empty document")
	}
	return fromYAML(doc.Content[0], 0)
}

func fromYAML(n *yaml.Node, depth int) (Node, error) {
	if depth > maxYAMLDepth {
		return nil, fmt.Errorf("line %d: document nested deeper than %d levels", n.Line, maxYAMLDepth)
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null{}, nil
		}
		return fromYAML(n.Content[0], depth+1)
	case yaml.AliasNode:
		return fromYAML(n.Alias, depth+1)
	case yaml.SequenceNode:
		out := make(List, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := fromYAML(item, depth+1)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.MappingNode:
		return yamlMapping(n, depth)
	case yaml.ScalarNode:
		return yamlScalar(n)
	default:
		return nil, fmt.Errorf("line %d: unsupported node kind %d", n.Line, n.Kind)
	}
}

func yamlMapping(n *yaml.Node, depth int) (Node, error) {
	out := make(Map, len(n.Content)/2)
	var merged []Map
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		if key.ShortTag() == "!!merge" {
			m, err := yamlMerge(val, depth)
			if err != nil {
				return nil, err
			}
			merged = append(merged, m...)
			continue
		}
		if key.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: map keys must be scalars", key.Line)
		}
		if _, dup := out[key.Value]; dup {
			return nil, fmt.Errorf("line %d: duplicate key %q", key.Line, key.Value)
		}
		v, err := fromYAML(val, depth+1)
		if err != nil {
			return nil, err
		}
		out[key.Value] = v
	}
	// Explicit keys win over merged ones; earlier merge sources win over later ones.
	for _, m := range merged {
		for k, v := range m {
			if _, ok := out[k]; !ok {
				out[k] = v
			}
		}
	}
	return out, nil
}

func yamlMerge(val *yaml.Node, depth int) ([]Map, error) {
	var sources []*yaml.Node
	if val.Kind == yaml.SequenceNode {
		sources = val.Content
	} else {
		sources = []*yaml.Node{val}
	}
	out := make([]Map, 0, len(sources))
	for _, src := range sources {
		v, err := fromYAML(src, depth+1)
		if err != nil {
			return nil, err
		}
		m, ok := v.(Map)
		if !ok {
			return nil, fmt.Errorf("line %d: merge source is not a map", src.Line)
		}
		out = append(out, m)
	}
	return out, nil
}

func yamlScalar(n *yaml.Node) (Node, error) {
	switch n.ShortTag() {
	case "!!null":
		return Null{}, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return Bool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			return Number(strconv.FormatInt(i, 10)), nil
		}
		var u uint64
		if err := n.Decode(&u); err != nil {
			return nil, fmt.Errorf("line %d: integer %q out of range", n.Line, n.Value)
		}
		return Number(strconv.FormatUint(u, 10)), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		num, err := floatNumber(f)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return num, nil
	case "!!timestamp":
		var t time.Time
		if err := n.Decode(&t); err != nil {
			return String(n.Value), nil
		}
		return String(t.Format(time.RFC3339Nano)), nil
	default:
		// !!str, !!binary and application tags keep their literal text.
		return String(n.Value), nil
	}
}
