package extract

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/nao1215/handlescan/internal/model"
)

// HTMLExtractor extracts signals from the parsed DOM instead of the raw
// text. It tolerates attribute order, single quotes and entities, which the
// regex patterns do not. Contacts are searched in text nodes, comments and
// mailto:/tel: links.
type HTMLExtractor struct{}

// NewHTMLExtractor creates an HTMLExtractor.
func NewHTMLExtractor() *HTMLExtractor {
	return &HTMLExtractor{}
}

// document is the part of a page the HTML extractor cares about.
type document struct {
	meta  map[string]string
	links []string
	text  strings.Builder
}

// parse walks the DOM once. html.Parse only fails on reader errors, which
// cannot happen for a string reader, so a failure yields an empty document.
func parse(body string) *document {
	doc := &document{meta: make(map[string]string)}
	root, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return doc
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			doc.element(n)
		case html.TextNode, html.CommentNode:
			doc.text.WriteString(n.Data)
			doc.text.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return doc
}

func (d *document) element(n *html.Node) {
	switch n.Data {
	case "meta":
		key := strings.ToLower(getAttr(n, "name"))
		if key == "" {
			key = strings.ToLower(getAttr(n, "property"))
		}
		if key == "" {
			return
		}
		if _, seen := d.meta[key]; !seen {
			d.meta[key] = getAttr(n, "content")
		}
	case "a", "link", "area":
		href := strings.TrimSpace(getAttr(n, "href"))
		switch {
		case strings.HasPrefix(href, "mailto:"):
			addr := strings.TrimPrefix(href, "mailto:")
			if i := strings.IndexByte(addr, '?'); i >= 0 {
				addr = addr[:i]
			}
			if unescaped, err := url.PathUnescape(addr); err == nil {
				addr = unescaped
			}
			d.text.WriteString(addr)
			d.text.WriteString(" ")
		case strings.HasPrefix(href, "tel:"):
			d.text.WriteString(strings.TrimPrefix(href, "tel:"))
			d.text.WriteString(" ")
		case isExternal(href):
			d.links = append(d.links, href)
		}
	}
}

// Extract parses body once and returns all signals.
func (HTMLExtractor) Extract(body string) model.Signals {
	doc := parse(body)
	signals := model.EmptySignals()
	if bio, ok := doc.bio(); ok {
		signals.Bio = bio
	}
	signals.Links = model.SortedSet(doc.links)
	signals.Contacts = contactsFromText(doc.text.String())
	return signals
}

// Bio returns the meta description, falling back to og:description.
func (HTMLExtractor) Bio(body string) (string, bool) {
	return parse(body).bio()
}

func (d *document) bio() (string, bool) {
	for _, key := range []string{"description", "og:description"} {
		content, ok := d.meta[key]
		if !ok {
			continue
		}
		bio := strings.TrimSpace(content)
		return bio, bio != ""
	}
	return "", false
}

// Links returns the absolute http(s) targets of anchors and link elements.
func (HTMLExtractor) Links(body string) []string {
	return model.SortedSet(parse(body).links)
}

// Contacts returns the emails and phone numbers found in the page text.
func (HTMLExtractor) Contacts(body string) model.Contacts {
	return contactsFromText(parse(body).text.String())
}

func isExternal(href string) bool {
	lower := strings.ToLower(href)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if strings.EqualFold(attr.Key, key) {
			return attr.Val
		}
	}
	return ""
}
