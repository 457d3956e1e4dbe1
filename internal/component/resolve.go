package component

import (
	"fmt"
	"sort"

	"github.com/Alia5/studiogen/internal/confignode"
)

// CollectReferences walks the whole tree and returns every provider it finds,
// deduplicated and sorted. Map keys are visited in sorted order so the first
// error reported for a given tree is always the same one.
func CollectReferences(root confignode.Node) ([]TypeReference, error) {
	seen := make(map[TypeReference]struct{})
	if err := collect(root, "$", 0, seen); err != nil {
		return nil, err
	}
	refs := make([]TypeReference, 0, len(seen))
	for ref := range seen {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i] < refs[j] })
	return refs, nil
}

func collect(n confignode.Node, path string, depth int, seen map[TypeReference]struct{}) error {
	if depth > MaxDepth {
		return &ReferenceError{Path: path, Reason: fmt.Sprintf("tree nested deeper than %d levels", MaxDepth)}
	}
	switch v := n.(type) {
	case confignode.Map:
		for _, key := range v.Keys() {
			child := v[key]
			childPath := path + "." + key
			if key == ProviderKey {
				if s, ok := child.(confignode.String); ok {
					ref, err := parseAt(childPath, string(s))
					if err != nil {
						return err
					}
					seen[ref] = struct{}{}
					continue
				}
			}
			if err := collect(child, childPath, depth+1, seen); err != nil {
				return err
			}
		}
	case confignode.List:
		for i, child := range v {
			if err := collect(child, fmt.Sprintf("%s[%d]", path, i), depth+1, seen); err != nil {
				return err
			}
		}
	}
	return nil
}
