package web

import (
	"html/template"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// renderMarkdown converts model output to HTML. Raw HTML in the source is
// dropped and only safe link schemes are rendered.
func renderMarkdown(source string) template.HTML {
	if source == "" {
		return ""
	}

	// parsers hold state and cannot be reused
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.NoEmptyLineBeforeBlock)
	doc := p.Parse([]byte(source))

	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.SkipHTML | html.Safelink | html.HrefTargetBlank | html.NofollowLinks | html.NoreferrerLinks,
	})
	return template.HTML(markdown.Render(doc, renderer))
}
