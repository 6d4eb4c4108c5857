// Package htmltext flattens HTML fragments into plain chapter text.
//
// Text nodes are trimmed and concatenated; block-ish elements (br, p, h1-h4,
// tr, th) start a new line and list items start a new "- " line. Script and
// style contents are dropped.
package htmltext

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var breaks = map[string]string{
	"br": "\n",
	"p":  "\n",
	"h1": "\n",
	"h2": "\n",
	"h3": "\n",
	"h4": "\n",
	"tr": "\n",
	"th": "\n",
	"li": "\n- ",
}

// FromSelection flattens every node in sel, in document order.
func FromSelection(sel *goquery.Selection) string {
	var b strings.Builder
	for _, n := range sel.Nodes {
		walk(&b, n, true)
	}
	return b.String()
}

// FromHTML parses fragment and flattens its body.
func FromHTML(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	return FromSelection(doc.Find("body"))
}

func walk(b *strings.Builder, n *html.Node, root bool) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(strings.TrimSpace(n.Data))
		return
	case html.ElementNode:
		if n.Data == "script" || n.Data == "style" {
			return
		}
		if !root {
			b.WriteString(breaks[n.Data])
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(b, c, false)
	}
}
