package ozon

import (
	"encoding/json"
	"strings"

	xhtml "golang.org/x/net/html"
)

// cleanText unescapes HTML entities and collapses runs of whitespace.
func cleanText(s string) string {
	return collapseWhitespace(xhtml.UnescapeString(s))
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// stripHTML flattens an HTML fragment to plain text, turning structural
// breaks (br, p, li, div) into spaces. Returns the input text content even
// for partially invalid markup; the x/net/html parser never hard-fails on
// real-world fragments.
func stripHTML(fragment string) string {
	doc, err := xhtml.Parse(strings.NewReader(fragment))
	if err != nil {
		return collapseWhitespace(fragment)
	}
	var b strings.Builder
	var walk func(*xhtml.Node)
	walk = func(n *xhtml.Node) {
		switch n.Type {
		case xhtml.TextNode:
			b.WriteString(n.Data)
		case xhtml.ElementNode:
			switch n.Data {
			case "br", "p", "li", "div":
				b.WriteByte(' ')
			case "script", "style":
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return collapseWhitespace(b.String())
}

// richContentText walks the storefront's rich structured content tree
// (nested blocks/title/text objects with content arrays) and joins the leaf
// strings in document order.
func richContentText(raw json.RawMessage) string {
	var node any
	if err := json.Unmarshal(raw, &node); err != nil {
		return ""
	}
	var leaves []string
	collectRichText(node, &leaves)
	return strings.Join(leaves, " ")
}

func collectRichText(node any, out *[]string) {
	switch v := node.(type) {
	case string:
		s := strings.TrimSpace(v)
		if s != "" {
			*out = append(*out, s)
		}
	case []any:
		for _, item := range v {
			collectRichText(item, out)
		}
	case map[string]any:
		// Fixed traversal order keeps output deterministic.
		for _, key := range []string{"title", "text", "blocks", "content"} {
			if child, ok := v[key]; ok {
				collectRichText(child, out)
			}
		}
	}
}
