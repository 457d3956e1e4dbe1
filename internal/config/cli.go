// Package config declares the command line, which kong also fills from
// config files and STUDIOGEN_* environment variables.
package config

import (
	"github.com/Alia5/studiogen/internal/cmd"
)

type Log struct {
	Level   string `help:"Log level: trace, debug, info, warn, error" default:"info" enum:"trace,debug,info,warn,error" env:"STUDIOGEN_LOG_LEVEL"`
	File    string `help:"Also write logs to this file; console output then goes to stderr only" env:"STUDIOGEN_LOG_FILE"`
	RawFile string `help:"Dump raw HTTP payloads of the collaborator commands to this file" env:"STUDIOGEN_LOG_RAW_FILE"`
}

type CLI struct {
	ConfigFile string `name:"config" help:"Config file (JSON, YAML or TOML); searched in the working directory and the user config dir when unset" env:"STUDIOGEN_CONFIG"`
	Log        Log    `embed:"" prefix:"log."`

	Generate cmd.Generate      `cmd:"" help:"Generate a Python program from a component document"`
	Config   cmd.ConfigCommand `cmd:"" help:"Configuration helpers"`
	Feed     cmd.Feed          `cmd:"" help:"Fetch the latest entries of a news feed"`
	Dataset  cmd.Dataset       `cmd:"" help:"Query the yearly gas consumption dataset"`
	Probe    cmd.Probe         `cmd:"" help:"Diagnose connectivity to HTTP endpoints"`
	Version  cmd.Version       `cmd:"" help:"Print the version"`
}
