package python

import (
	"sort"
	"strconv"
	"strings"

	"github.com/Alia5/studiogen/internal/component"
)

// Import is one imported symbol. Alias is set only when the symbol name is
// exported by more than one imported namespace, or when the plain name is
// already taken by another import.
type Import struct {
	Namespace string
	Symbol    string
	Alias     string
}

// Ident is the name the generated code uses for the symbol.
func (i Import) Ident() string {
	if i.Alias != "" {
		return i.Alias
	}
	return i.Symbol
}

// ImportGroup is every symbol imported from one namespace.
type ImportGroup struct {
	Namespace string
	Imports   []Import
}

// Statement renders the group as a single from-import.
func (g ImportGroup) Statement() string {
	names := make([]string, 0, len(g.Imports))
	for _, imp := range g.Imports {
		if imp.Alias != "" {
			names = append(names, imp.Symbol+" as "+imp.Alias)
		} else {
			names = append(names, imp.Symbol)
		}
	}
	return "from " + g.Namespace + " import " + strings.Join(names, ", ")
}

// ImportSet is the aggregated imports of one generated program.
type ImportSet struct {
	groups []ImportGroup
	idents map[component.TypeReference]string
}

// GroupImports groups references by namespace. Namespaces are sorted,
// symbols are sorted and deduplicated within their namespace. When two
// namespaces export the same symbol name, every such import is renamed to
// <namespace>_<symbol> with dots in the namespace replaced by underscores.
// Symbols imported under their own name keep it; an alias that is already
// taken gets the first free suffix _2, _3, ... in namespace then symbol order,
// so every reference ends up with a distinct identifier.
func GroupImports(refs []component.TypeReference) *ImportSet {
	byNamespace := make(map[string]map[string]struct{})
	namespacesOf := make(map[string]map[string]struct{})
	for _, ref := range refs {
		ns, sym := ref.Split()
		if byNamespace[ns] == nil {
			byNamespace[ns] = make(map[string]struct{})
		}
		byNamespace[ns][sym] = struct{}{}
		if namespacesOf[sym] == nil {
			namespacesOf[sym] = make(map[string]struct{})
		}
		namespacesOf[sym][ns] = struct{}{}
	}

	namespaces := make([]string, 0, len(byNamespace))
	for ns := range byNamespace {
		namespaces = append(namespaces, ns)
	}
	sort.Strings(namespaces)

	sorted := make(map[string][]string, len(namespaces))
	used := make(map[string]struct{})
	for _, ns := range namespaces {
		symbols := make([]string, 0, len(byNamespace[ns]))
		for sym := range byNamespace[ns] {
			symbols = append(symbols, sym)
			if len(namespacesOf[sym]) == 1 {
				used[sym] = struct{}{}
			}
		}
		sort.Strings(symbols)
		sorted[ns] = symbols
	}

	set := &ImportSet{idents: make(map[component.TypeReference]string, len(refs))}
	for _, ns := range namespaces {
		group := ImportGroup{Namespace: ns}
		for _, sym := range sorted[ns] {
			imp := Import{Namespace: ns, Symbol: sym}
			if len(namespacesOf[sym]) > 1 {
				imp.Alias = freeName(aliasFor(ns, sym), used)
				used[imp.Alias] = struct{}{}
			}
			group.Imports = append(group.Imports, imp)
			set.idents[component.TypeReference(ns+"."+sym)] = imp.Ident()
		}
		set.groups = append(set.groups, group)
	}
	return set
}

func aliasFor(namespace, symbol string) string {
	return strings.ReplaceAll(namespace, ".", "_") + "_" + symbol
}

// freeName returns name, or name with the first numeric suffix not in used.
func freeName(name string, used map[string]struct{}) string {
	if _, taken := used[name]; !taken {
		return name
	}
	for i := 2; ; i++ {
		candidate := name + "_" + strconv.Itoa(i)
		if _, taken := used[candidate]; !taken {
			return candidate
		}
	}
}

// Groups returns the import groups in namespace order.
func (s *ImportSet) Groups() []ImportGroup {
	return s.groups
}

// Statements renders one import statement per namespace.
func (s *ImportSet) Statements() []string {
	out := make([]string, 0, len(s.groups))
	for _, g := range s.groups {
		out = append(out, g.Statement())
	}
	return out
}

// Ident returns the identifier ref is imported under, and whether ref is
// part of the set.
func (s *ImportSet) Ident(ref component.TypeReference) (string, bool) {
	id, ok := s.idents[ref]
	return id, ok
}
