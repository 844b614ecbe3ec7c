// Package excerpt reduces raw page HTML to a compact markdown excerpt
// suitable as LLM context.
//
// The pipeline is an aggressive sanitizer pass (navigation, forms, and
// script chrome removed wholesale) followed by markdown conversion and
// truncation to a fixed character budget.
package excerpt

import (
	"fmt"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/microcosm-cc/bluemonday"
)

// MaxChars is the excerpt budget in Unicode code points, not bytes.
const MaxChars = 3500

// chromeElements are removed together with their contents before conversion.
var chromeElements = []string{
	"nav", "form", "header", "footer", "aside",
	"script", "style", "noscript", "iframe",
	"button", "select", "input", "textarea", "label",
}

// Excerpter converts HTML to a truncated markdown excerpt.
type Excerpter struct {
	policy    *bluemonday.Policy
	converter *converter.Converter
}

// New builds an Excerpter with the cleanup policy and markdown converter
// constructed once; both are safe for concurrent use.
func New() *Excerpter {
	policy := bluemonday.NewPolicy()
	policy.AllowElements(
		"h1", "h2", "h3", "h4", "h5", "h6",
		"p", "br", "hr", "div", "span", "article", "section", "main",
		"ul", "ol", "li", "dl", "dt", "dd",
		"a", "em", "strong", "b", "i", "code", "pre", "blockquote",
		"table", "thead", "tbody", "tr", "th", "td",
	)
	policy.AllowAttrs("href").OnElements("a")
	policy.AllowStandardURLs()
	policy.SkipElementsContent(chromeElements...)

	return &Excerpter{
		policy: policy,
		converter: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
			),
		),
	}
}

// Excerpt cleans html and converts it to markdown, truncated to MaxChars
// characters. An empty conversion result is an error: there is nothing to tag.
func (e *Excerpter) Excerpt(html []byte) (string, error) {
	cleaned := e.policy.SanitizeBytes(html)

	markdown, err := e.converter.ConvertString(string(cleaned))
	if err != nil {
		return "", fmt.Errorf("convert: %w", err)
	}

	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return "", fmt.Errorf("empty excerpt")
	}

	return Truncate(markdown, MaxChars), nil
}

// Truncate cuts s to at most n Unicode code points. Slicing runes rather
// than bytes guarantees a multi-byte character is never split.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
