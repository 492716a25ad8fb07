// Package markup wraps raw HTML into a document queryable by CSS selectors.
//
// Lookups never fail: a selector that matches nothing, or that does not
// compile, yields an empty result so callers can simply try the next one.
package markup

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Document is a parsed HTML page
type Document struct {
	doc *goquery.Document
}

// Parse builds a Document from raw HTML
func Parse(html []byte) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return &Document{doc: doc}, nil
}

// find returns the matches for selector. goquery treats a selector that
// fails to compile as matching nothing.
func (d *Document) find(selector string) *goquery.Selection {
	return d.doc.Find(selector)
}

// Text returns the cleaned text content of the first element matching selector
func (d *Document) Text(selector string) string {
	return Clean(d.find(selector).First().Text())
}

// Attr returns the trimmed value of attribute name on the first element
// matching selector
func (d *Document) Attr(selector, name string) string {
	v, _ := d.find(selector).First().Attr(name)
	return strings.TrimSpace(v)
}

// All returns every element matching selector in document order
func (d *Document) All(selector string) []*goquery.Selection {
	var out []*goquery.Selection
	d.find(selector).Each(func(_ int, s *goquery.Selection) {
		out = append(out, s)
	})
	return out
}

// Texts returns the cleaned, non-empty text of every element matching selector
func (d *Document) Texts(selector string) []string {
	var out []string
	for _, s := range d.All(selector) {
		if text := Clean(s.Text()); text != "" {
			out = append(out, text)
		}
	}
	return out
}

// Scripts returns the raw contents of every <script> with the given type
// attribute, in document order
func (d *Document) Scripts(scriptType string) []string {
	var out []string
	d.doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		if t, _ := s.Attr("type"); strings.EqualFold(strings.TrimSpace(t), scriptType) {
			out = append(out, s.Text())
		}
	})
	return out
}

// Title returns the text of the <title> element
func (d *Document) Title() string {
	return d.Text("title")
}
