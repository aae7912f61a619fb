package parser

import (
	"html"
	"net/url"
	"regexp"
	"strings"

	"github.com/amishk599/jobpipe/internal/model"
)

var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

// extractText converts an HTML or HTML-encoded string to plain text.
// It first unescapes HTML entities (handles Greenhouse's double-encoding;
// no-op on already-real HTML), strips all tags, then collapses whitespace.
func extractText(content string) string {
	unescaped := html.UnescapeString(content)
	plain := htmlTagRegex.ReplaceAllString(unescaped, " ")
	return strings.Join(strings.Fields(plain), " ")
}

// Auto picks a job-board JSON parser by API host (or, for Greenhouse, by
// payload shape) and the HTML parser for everything else.
type Auto struct {
	html       *HTMLParser
	greenhouse *GreenhouseParser
	lever      *LeverParser
	ashby      *AshbyParser
	gem        *GemParser
}

// Ensure Auto implements model.Parser.
var _ model.Parser = (*Auto)(nil)

func NewAuto() *Auto {
	return &Auto{
		html:       NewHTMLParser(),
		greenhouse: NewGreenhouseParser(),
		lever:      NewLeverParser(),
		ashby:      NewAshbyParser(),
		gem:        NewGemParser(),
	}
}

func (a *Auto) Parse(page *model.Page) ([]model.Posting, error) {
	var host string
	if u, err := url.Parse(page.URL); err == nil {
		host = u.Host
	}
	switch {
	case host == leverHost:
		return a.lever.Parse(page)
	case host == ashbyHost:
		return a.ashby.Parse(page)
	case host == gemHost:
		return a.gem.Parse(page)
	case looksLikeGreenhouse(page):
		return a.greenhouse.Parse(page)
	}
	return a.html.Parse(page)
}
