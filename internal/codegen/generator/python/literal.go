package python

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Alia5/studiogen/internal/confignode"
)

const (
	// DefaultWidth is the line length literals are wrapped at.
	DefaultWidth = 88

	indentUnit = "    "
)

// LiteralEmitError reports a value that has no Python literal form.
type LiteralEmitError struct {
	Path   string
	Reason string
}

func (e *LiteralEmitError) Error() string {
	return fmt.Sprintf("emit: %s: %s", e.Path, e.Reason)
}

// Stage names the pipeline stage that produced the error.
func (e *LiteralEmitError) Stage() string { return "emit" }

// RenderLiteral renders n as a Python literal. Map keys are sorted, list
// order is kept. Containers that do not fit in width columns are broken one
// element per line; width <= 0 keeps everything on one line.
func RenderLiteral(n confignode.Node, width int) (string, error) {
	return renderAt(n, "$", "", 0, width)
}

// renderAt renders n for a position where the first line already has
// prefix columns taken.
func renderAt(n confignode.Node, path, indent string, prefix, width int) (string, error) {
	flat, err := renderFlat(n, path)
	if err != nil {
		return "", err
	}
	if width <= 0 || prefix+len(indent)+utf8.RuneCountInString(flat) <= width {
		return flat, nil
	}

	inner := indent + indentUnit
	var b strings.Builder
	switch v := n.(type) {
	case confignode.Map:
		if len(v) == 0 {
			return flat, nil
		}
		b.WriteString("{\n")
		for _, key := range v.Keys() {
			k := quote(key)
			val, err := renderAt(v[key], path+"."+key, inner, len(k)+2, width)
			if err != nil {
				return "", err
			}
			b.WriteString(inner)
			b.WriteString(k)
			b.WriteString(": ")
			b.WriteString(val)
			b.WriteString(",\n")
		}
		b.WriteString(indent)
		b.WriteString("}")
	case confignode.List:
		if len(v) == 0 {
			return flat, nil
		}
		b.WriteString("[\n")
		for i, item := range v {
			val, err := renderAt(item, fmt.Sprintf("%s[%d]", path, i), inner, 0, width)
			if err != nil {
				return "", err
			}
			b.WriteString(inner)
			b.WriteString(val)
			b.WriteString(",\n")
		}
		b.WriteString(indent)
		b.WriteString("]")
	default:
		// Scalars are never split.
		return flat, nil
	}
	return b.String(), nil
}

func renderFlat(n confignode.Node, path string) (string, error) {
	switch v := n.(type) {
	case confignode.Map:
		parts := make([]string, 0, len(v))
		for _, key := range v.Keys() {
			val, err := renderFlat(v[key], path+"."+key)
			if err != nil {
				return "", err
			}
			parts = append(parts, quote(key)+": "+val)
		}
		return "{" + strings.Join(parts, ", ") + "}", nil
	case confignode.List:
		parts := make([]string, 0, len(v))
		for i, item := range v {
			val, err := renderFlat(item, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return "", err
			}
			parts = append(parts, val)
		}
		return "[" + strings.Join(parts, ", ") + "]", nil
	case confignode.String:
		return quote(string(v)), nil
	case confignode.Number:
		if !confignode.ValidNumber(string(v)) {
			return "", &LiteralEmitError{Path: path, Reason: fmt.Sprintf("malformed number %q", string(v))}
		}
		if overflowsFloat(string(v)) {
			return "", &LiteralEmitError{Path: path, Reason: fmt.Sprintf("number %s is out of float range", string(v))}
		}
		return string(v), nil
	case confignode.Bool:
		if v {
			return "True", nil
		}
		return "False", nil
	case confignode.Null:
		return "None", nil
	case nil:
		return "", &LiteralEmitError{Path: path, Reason: "missing value"}
	default:
		return "", &LiteralEmitError{Path: path, Reason: fmt.Sprintf("unsupported value of type %T", n)}
	}
}

// overflowsFloat reports whether Python would read s as an infinite float.
// Integers are arbitrary precision in Python and never overflow.
func overflowsFloat(s string) bool {
	if !strings.ContainsAny(s, ".eE") {
		return false
	}
	f, err := strconv.ParseFloat(s, 64)
	return err != nil && math.IsInf(f, 0)
}

// quote renders s as a double-quoted Python string literal. Anything that
// is not printable is escaped, so the literal never spans lines.
func quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			b.WriteString(`\ufffd`)
			i++
			continue
		}
		i += size
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			switch {
			case r < 0x80 && strconv.IsPrint(r):
				b.WriteRune(r)
			case r < 0x100 && !strconv.IsPrint(r):
				fmt.Fprintf(&b, `\x%02x`, r)
			case strconv.IsPrint(r):
				b.WriteRune(r)
			case r <= 0xffff:
				fmt.Fprintf(&b, `\u%04x`, r)
			default:
				fmt.Fprintf(&b, `\U%08x`, r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}
