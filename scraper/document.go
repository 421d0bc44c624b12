package scraper

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Document is an immutable parsed view of one fetched product page. It
// exposes only what the extraction policy needs per node: tag name, class
// attribute and text content, walked in document order.
type Document struct {
	doc *goquery.Document
}

// Node is the shape of one element as seen by the extractor.
type Node struct {
	Tag   string
	Class string
	Text  string
}

// ParseDocument parses HTML from a reader. A nil document is never
// returned; unparseable input yields an empty document so extraction
// downstream degrades to "no price found" instead of failing.
func ParseDocument(r io.Reader) *Document {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return &Document{}
	}
	return &Document{doc: doc}
}

// ParseDocumentString parses HTML held in a string.
func ParseDocumentString(html string) *Document {
	return ParseDocument(strings.NewReader(html))
}

// EachParagraph walks every paragraph element in document order, stopping
// early when fn returns false.
func (d *Document) EachParagraph(fn func(Node) bool) {
	d.EachMatch("p", fn)
}

// EachMatch walks every element matching the selector in document order,
// stopping early when fn returns false.
func (d *Document) EachMatch(selector string, fn func(Node) bool) {
	if d == nil || d.doc == nil {
		return
	}
	d.doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		node := Node{
			Class: s.AttrOr("class", ""),
			Text:  s.Text(),
		}
		if len(s.Nodes) > 0 {
			node.Tag = s.Nodes[0].Data
		}
		return fn(node)
	})
}

// Title returns the page title, or an empty string.
func (d *Document) Title() string {
	if d == nil || d.doc == nil {
		return ""
	}
	return strings.TrimSpace(d.doc.Find("title").Text())
}

// BodyText returns the visible text of the page body.
func (d *Document) BodyText() string {
	if d == nil || d.doc == nil {
		return ""
	}
	return d.doc.Find("body").Text()
}
