package meta

import (
	"github.com/Alia5/studiogen/internal/component"
	"github.com/Alia5/studiogen/internal/confignode"
)

// Metadata holds everything loaded and resolved from one input document.
// Shared between generator orchestrator and language-specific generators.
type Metadata struct {
	Source     string                    // document name shown in the generated header
	Root       confignode.Node           // full tree as loaded
	Spec       *component.Spec           // root component
	References []component.TypeReference // every provider in the tree, sorted
}

// Options tune how the body of a program is emitted.
type Options struct {
	Var        string // variable holding the root component
	Entrypoint string // class method used by the fallback path
	Width      int    // literal wrap width, <= 0 disables wrapping
}
