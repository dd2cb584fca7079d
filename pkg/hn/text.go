package hn

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"
)

// decodeText converts the HTML fragment the item API returns for comment
// bodies into NFC-normalized plain text with paragraph breaks preserved.
func decodeText(html string) string {
	// The item API separates paragraphs with <p> tags and never closes them.
	html = strings.ReplaceAll(html, "<p>", "\n\n")
	html = strings.ReplaceAll(html, "<br>", "\n")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		// Fall back to the raw fragment; extraction still sees the content.
		return norm.NFC.String(strings.TrimSpace(html))
	}

	text := doc.Text()
	return norm.NFC.String(strings.TrimSpace(text))
}
