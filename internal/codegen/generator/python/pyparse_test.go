package python

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Alia5/studiogen/internal/confignode"
)

// parsePyLiteral decodes the subset of Python literal syntax RenderLiteral
// produces, so tests can check that emission round-trips.
func parsePyLiteral(s string) (confignode.Node, error) {
	p := &pyParser{s: s}
	n, err := p.value()
	if err != nil {
		return nil, err
	}
	p.ws()
	if p.i != len(p.s) {
		return nil, fmt.Errorf("trailing data at %d: %q", p.i, p.s[p.i:])
	}
	return n, nil
}

type pyParser struct {
	s string
	i int
}

func (p *pyParser) ws() {
	for p.i < len(p.s) && strings.ContainsRune(" \t\r\n", rune(p.s[p.i])) {
		p.i++
	}
}

func (p *pyParser) expect(c byte) error {
	p.ws()
	if p.i >= len(p.s) || p.s[p.i] != c {
		return fmt.Errorf("expected %q at %d", c, p.i)
	}
	p.i++
	return nil
}

func (p *pyParser) peek() byte {
	p.ws()
	if p.i >= len(p.s) {
		return 0
	}
	return p.s[p.i]
}

func (p *pyParser) value() (confignode.Node, error) {
	switch c := p.peek(); {
	case c == '{':
		return p.mapping()
	case c == '[':
		return p.list()
	case c == '"':
		s, err := p.str()
		return confignode.String(s), err
	case strings.HasPrefix(p.s[p.i:], "True"):
		p.i += 4
		return confignode.Bool(true), nil
	case strings.HasPrefix(p.s[p.i:], "False"):
		p.i += 5
		return confignode.Bool(false), nil
	case strings.HasPrefix(p.s[p.i:], "None"):
		p.i += 4
		return confignode.Null{}, nil
	case c == '-' || (c >= '0' && c <= '9'):
		start := p.i
		for p.i < len(p.s) && strings.ContainsRune("-+.eE0123456789", rune(p.s[p.i])) {
			p.i++
		}
		return confignode.Number(p.s[start:p.i]), nil
	default:
		return nil, fmt.Errorf("unexpected %q at %d", c, p.i)
	}
}

func (p *pyParser) mapping() (confignode.Node, error) {
	out := confignode.Map{}
	p.i++
	for p.peek() != '}' {
		k, err := p.str()
		if err != nil {
			return nil, err
		}
		if err := p.expect(':'); err != nil {
			return nil, err
		}
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		out[k] = v
		if p.peek() == ',' {
			p.i++
		}
	}
	p.i++
	return out, nil
}

func (p *pyParser) list() (confignode.Node, error) {
	out := confignode.List{}
	p.i++
	for p.peek() != ']' {
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		if p.peek() == ',' {
			p.i++
		}
	}
	p.i++
	return out, nil
}

func (p *pyParser) str() (string, error) {
	if err := p.expect('"'); err != nil {
		return "", err
	}
	var b strings.Builder
	for p.i < len(p.s) {
		c := p.s[p.i]
		switch c {
		case '"':
			p.i++
			return b.String(), nil
		case '\n':
			return "", fmt.Errorf("newline inside string at %d", p.i)
		case '\\':
			p.i++
			if p.i >= len(p.s) {
				return "", fmt.Errorf("dangling escape")
			}
			esc := p.s[p.i]
			p.i++
			switch esc {
			case '\\', '"':
				b.WriteByte(esc)
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			case 'x', 'u', 'U':
				size := map[byte]int{'x': 2, 'u': 4, 'U': 8}[esc]
				if p.i+size > len(p.s) {
					return "", fmt.Errorf("short escape at %d", p.i)
				}
				r, err := strconv.ParseUint(p.s[p.i:p.i+size], 16, 32)
				if err != nil {
					return "", err
				}
				p.i += size
				b.WriteRune(rune(r))
			default:
				return "", fmt.Errorf("unknown escape \\%c", esc)
			}
		default:
			r, size := utf8.DecodeRuneInString(p.s[p.i:])
			b.WriteRune(r)
			p.i += size
		}
	}
	return "", fmt.Errorf("unterminated string")
}
