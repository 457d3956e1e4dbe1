package confignode

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml"
)

// Format names a supported document syntax.
type Format string

const (
	FormatAuto Format = "auto"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatHCL  Format = "hcl"
)

// ParseError reports a document that could not be turned into a tree.
type ParseError struct {
	Source string
	Format Format
	Err    error
}

func (e *ParseError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("load: parse %s: %v", e.Format, e.Err)
	}
	return fmt.Sprintf("load: parse %s %s: %v", e.Format, e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Stage names the pipeline stage that produced the error.
func (e *ParseError) Stage() string { return "load" }

// FormatFromPath picks a format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	case ".hcl":
		return FormatHCL
	default:
		return FormatJSON
	}
}

// ParseFormat normalizes a user supplied format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatAuto, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	case "hcl":
		return FormatHCL, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", s)
	}
}

// ParseFile reads path and parses it with the format implied by its extension.
// Read failures are returned as-is so the caller can classify them.
func ParseFile(path string) (Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSource(filepath.Base(path), data, FormatFromPath(path))
}

// Parse builds a tree from data.
func Parse(data []byte, format Format) (Node, error) {
	return ParseSource("", data, format)
}

// ParseSource is Parse with a source name used in error messages and by the
// HCL parser for diagnostics.
func ParseSource(source string, data []byte, format Format) (Node, error) {
	if format == FormatAuto || format == "" {
		format = FormatFromPath(source)
	}

	var (
		n   Node
		err error
	)
	switch format {
	case FormatJSON:
		n, err = parseJSON(data)
	case FormatYAML:
		n, err = parseYAML(data)
	case FormatTOML:
		n, err = parseTOML(data)
	case FormatHCL:
		n, err = parseHCL(source, data)
	default:
		err = fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return nil, &ParseError{Source: source, Format: format, Err: err}
	}
	return n, nil
}

func parseJSON(data []byte) (Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty document")
		}
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level value")
	}
	return FromNative(v)
}

func parseTOML(data []byte) (Node, error) {
	tree, err := toml.LoadBytes(data)
	if err != nil {
		return nil, err
	}
	return FromNative(tree.ToMap())
}
