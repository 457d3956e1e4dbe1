package generator

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/Alia5/studiogen/internal/codegen/generator/python"
	"github.com/Alia5/studiogen/internal/codegen/meta"
	"github.com/Alia5/studiogen/internal/codegen/templates"
	"github.com/Alia5/studiogen/internal/component"
	"github.com/Alia5/studiogen/internal/confignode"
	"github.com/Alia5/studiogen/internal/log"
)

// Options configure one Generator.
type Options struct {
	Lang   string
	Format confignode.Format
	meta.Options
}

type Generator struct {
	logger   *slog.Logger
	registry *templates.Registry
	opts     Options
}

type LanguageGenerator func(logger *slog.Logger, md *meta.Metadata, reg *templates.Registry, opts meta.Options) (string, error)

var generators = map[string]LanguageGenerator{
	"python": python.Generate,
}

// Languages lists the supported target languages.
func Languages() []string {
	out := make([]string, 0, len(generators))
	for k := range generators {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// New creates a Generator. The registry is frozen here: templates must be
// registered before the first run.
func New(logger *slog.Logger, registry *templates.Registry, opts Options) *Generator {
	if registry == nil {
		registry = templates.NewRegistry()
	}
	registry.Freeze()
	if opts.Lang == "" {
		opts.Lang = "python"
	}
	return &Generator{
		logger:   logger,
		registry: registry,
		opts:     opts,
	}
}

// Generate reads inputPath, renders the program and writes it to outputPath
// in a single all-or-nothing write.
func (g *Generator) Generate(inputPath, outputPath string) error {
	g.logger.Debug("Reading input", "path", inputPath)
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return &IOError{Op: "read", Path: inputPath, Err: err}
	}

	out, err := g.Render(filepath.Base(inputPath), data)
	if err != nil {
		return err
	}

	g.logger.Debug("Writing output", "path", outputPath, "bytes", len(out))
	if err := WriteFileAtomic(outputPath, []byte(out), 0o644); err != nil {
		return &IOError{Op: "write", Path: outputPath, Err: err}
	}

	g.logger.Info("Generated program", "input", inputPath, "output", outputPath, "lang", g.opts.Lang)
	return nil
}

// Render runs every in-memory stage and returns the program text.
func (g *Generator) Render(source string, data []byte) (string, error) {
	gen, ok := generators[g.opts.Lang]
	if !ok {
		return "", fmt.Errorf("unsupported language '%s' (supported: %v)", g.opts.Lang, Languages())
	}

	md, err := g.Load(source, data)
	if err != nil {
		return "", err
	}

	g.logger.Debug("Emitting program", "language", g.opts.Lang, "root", md.Spec.Provider)
	return gen(g.logger, md, g.registry, g.opts.Options)
}

// Load parses the document, collects its references and validates the root
// component.
func (g *Generator) Load(source string, data []byte) (*meta.Metadata, error) {
	format := g.opts.Format
	if format == "" || format == confignode.FormatAuto {
		format = confignode.FormatFromPath(source)
	}

	g.logger.Debug("Parsing document", "source", source, "format", format)
	root, err := confignode.ParseSource(source, data, format)
	if err != nil {
		return nil, err
	}

	g.logger.Debug("Collecting provider references")
	refs, err := component.CollectReferences(root)
	if err != nil {
		return nil, err
	}
	for _, ref := range refs {
		g.logger.Log(context.Background(), log.LevelTrace, "Found provider", "ref", string(ref))
	}

	spec, err := component.FromNode(root)
	if err != nil {
		return nil, err
	}
	g.logger.Info("Resolved components", "root", spec.Provider, "references", len(refs))

	return &meta.Metadata{
		Source:     source,
		Root:       root,
		Spec:       spec,
		References: refs,
	}, nil
}
