package python

import (
	"text/template"

	"github.com/Alia5/studiogen/internal/confignode"
)

// FuncMap exposes the literal renderer to text templates as "py".
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"py": func(v any) (string, error) {
			n, err := confignode.FromNative(v)
			if err != nil {
				return "", err
			}
			return RenderLiteral(n, 0)
		},
	}
}
