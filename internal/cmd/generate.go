package cmd

import (
	"log/slog"

	"github.com/Alia5/studiogen/internal/codegen/generator"
	"github.com/Alia5/studiogen/internal/codegen/generator/python"
	"github.com/Alia5/studiogen/internal/codegen/meta"
	"github.com/Alia5/studiogen/internal/codegen/templates"
	"github.com/Alia5/studiogen/internal/confignode"
)

type Generate struct {
	Input      string `arg:"" help:"Component document (JSON, YAML, TOML or HCL)"`
	Out        string `help:"Output file" short:"o" default:"run_team_generated.py" env:"STUDIOGEN_OUT"`
	Var        string `help:"Variable the root component is assigned to" default:"team" env:"STUDIOGEN_VAR"`
	Entrypoint string `help:"Class method that rebuilds a component from its document" default:"load_component" env:"STUDIOGEN_ENTRYPOINT"`
	Width      int    `help:"Wrap literals at this many columns, 0 keeps them on one line" default:"88" env:"STUDIOGEN_WIDTH"`
	Templates  string `help:"Provider templates file (JSON, YAML or TOML)" env:"STUDIOGEN_TEMPLATES"`
	Format     string `help:"Input format; auto picks by file extension" enum:"auto,json,yaml,toml,hcl" default:"auto" env:"STUDIOGEN_FORMAT"`
	Lang       string `help:"Target language" enum:"python" default:"python" env:"STUDIOGEN_LANG"`
}

// Run is called by Kong when the generate command is executed.
func (g *Generate) Run(logger *slog.Logger) error {
	format, err := confignode.ParseFormat(g.Format)
	if err != nil {
		return err
	}

	reg := templates.NewRegistry()
	if g.Templates != "" {
		if err := templates.LoadFile(reg, g.Templates, python.FuncMap()); err != nil {
			return err
		}
		logger.Debug("Loaded templates", "file", g.Templates, "providers", len(reg.Providers()))
	}

	gen := generator.New(logger, reg, generator.Options{
		Lang:   g.Lang,
		Format: format,
		Options: meta.Options{
			Var:        g.Var,
			Entrypoint: g.Entrypoint,
			Width:      g.Width,
		},
	})
	return gen.Generate(g.Input, g.Out)
}
