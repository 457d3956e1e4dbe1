package confignode

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// parseHCL reads a body made only of attributes, e.g.
//
//	provider = "autogen_agentchat.teams.RoundRobinGroupChat"
//	config = {
//	  participants = [{ provider = "autogen_agentchat.agents.AssistantAgent" }]
//	}
//
// Expressions are evaluated without variables or functions.
func parseHCL(source string, data []byte) (Node, error) {
	if source == "" {
		source = "input.hcl"
	}
	file, diags := hclsyntax.ParseConfig(data, source, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, diags
	}
	attrs, diags := file.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}

	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(Map, len(attrs))
	for _, name := range names {
		val, diags := attrs[name].Expr.Value(nil)
		if diags.HasErrors() {
			return nil, diags
		}
		n, err := fromCty(val)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", name, err)
		}
		out[name] = n
	}
	return out, nil
}

// fromCty converts an evaluated cty value into a tree.
func fromCty(v cty.Value) (Node, error) {
	if v.IsNull() {
		return Null{}, nil
	}
	if !v.IsKnown() {
		return nil, fmt.Errorf("value is not known without evaluation context")
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return String(v.AsString()), nil
	case ty == cty.Number:
		return bigFloatNumber(v.AsBigFloat())
	case ty == cty.Bool:
		return Bool(v.True()), nil
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		out := make(List, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			n, err := fromCty(elem)
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		}
		return out, nil
	case ty.IsObjectType() || ty.IsMapType():
		out := make(Map, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			key, elem := it.Element()
			n, err := fromCty(elem)
			if err != nil {
				return nil, fmt.Errorf("in attribute '%s': %w", key.AsString(), err)
			}
			out[key.AsString()] = n
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported cty type: %s", ty.FriendlyName())
	}
}
