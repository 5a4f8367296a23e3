// Package label turns a post description into the caption drawn on its cell.
package label

import (
	"html"
	"strings"
	"unicode/utf8"

	nethtml "golang.org/x/net/html"
)

// MaxRunes is the caption length used on the wall.
const MaxRunes = 20

var skippedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"template": true,
	"noscript": true,
}

// For returns the caption for a description.
func For(description string) string {
	return Truncate(Text(description), MaxRunes)
}

// Text strips markup from description and collapses whitespace. Plain text
// passes through with entities decoded.
func Text(description string) string {
	raw := strings.TrimSpace(description)
	if raw == "" {
		return ""
	}
	if !strings.ContainsAny(raw, "<&") {
		return strings.Join(strings.Fields(raw), " ")
	}

	doc, err := nethtml.Parse(strings.NewReader("<html><body>" + raw + "</body></html>"))
	if err != nil {
		return strings.Join(strings.Fields(html.UnescapeString(raw)), " ")
	}
	body := findBodyNode(doc)
	if body == nil {
		return strings.Join(strings.Fields(html.UnescapeString(raw)), " ")
	}

	var b strings.Builder
	collectText(body, &b)
	return strings.Join(strings.Fields(b.String()), " ")
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

func findBodyNode(node *nethtml.Node) *nethtml.Node {
	if node == nil {
		return nil
	}
	if node.Type == nethtml.ElementNode && strings.EqualFold(node.Data, "body") {
		return node
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if found := findBodyNode(child); found != nil {
			return found
		}
	}
	return nil
}

func collectText(node *nethtml.Node, b *strings.Builder) {
	switch node.Type {
	case nethtml.TextNode:
		b.WriteString(node.Data)
		return
	case nethtml.ElementNode:
		name := strings.ToLower(node.Data)
		if skippedElements[name] {
			return
		}
		if name == "br" || name == "p" || name == "div" || name == "li" {
			b.WriteByte(' ')
		}
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		collectText(child, b)
	}
}
