package scraper

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	strippedSelector = "script, style, nav, header, footer, noscript, iframe"
)

// contentSelectors are collected in this order: headings first, then
// paragraphs, then list items.
var contentSelectors = []string{"h1, h2, h3", "p", "li"}

// ExtractText parses an HTML document and returns its headings, paragraphs and
// list items joined by single spaces with whitespace runs collapsed.
func ExtractText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", err
	}
	doc.Find(strippedSelector).Remove()

	var parts []string
	for _, selector := range contentSelectors {
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			if text := strings.TrimSpace(sel.Text()); text != "" {
				parts = append(parts, text)
			}
		})
	}
	return collapseWhitespace(strings.Join(parts, " ")), nil
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
