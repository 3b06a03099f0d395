package catalog

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// markdown renders help strings. Raw HTML in templates is dropped.
var markdown = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		highlighting.NewHighlighting(
			highlighting.WithStyle("github"),
		),
	),
	goldmark.WithRendererOptions(
		html.WithHardWraps(),
	),
)

// RenderHTML resolves a string like GetString and renders the result as
// Markdown. Misses render as the escaped miss marker.
func (t *Table) RenderHTML(identifier, component string, a Substitution) (string, error) {
	src := t.GetString(identifier, component, a)

	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", errors.Wrapf(err, "rendering %s/%s", component, identifier)
	}
	return buf.String(), nil
}
