package browser

import (
	"strings"

	"golang.org/x/net/html"
)

// FirstTextLine extracts the first non-empty line of visible text from an
// HTML fragment, truncated to maxLen.
//
// Used as a last-resort title fallback when none of the known selectors match
// inside a feed card: the first visible text line of a card is almost always
// its title.
func FirstTextLine(fragment string, maxLen int) string {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return ""
	}

	var builder strings.Builder
	collectText(doc, &builder)

	for _, line := range strings.Split(builder.String(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if len(line) > maxLen {
			return line[:maxLen]
		}
		return line
	}
	return ""
}

// collectText walks the node tree appending visible text, one node per line.
// Script, style, and comment nodes are noise and are skipped.
func collectText(n *html.Node, builder *strings.Builder) {
	if n.Type == html.CommentNode {
		return
	}
	if n.Type == html.ElementNode && isSkippedElement(strings.ToLower(n.Data)) {
		return
	}

	if n.Type == html.TextNode {
		if text := strings.TrimSpace(n.Data); text != "" {
			builder.WriteString(text)
			builder.WriteString("\n")
		}
		return
	}

	for child := n.FirstChild; child != nil; child = child.NextSibling {
		collectText(child, builder)
	}
}

// isSkippedElement reports whether an element never contains visible text.
func isSkippedElement(tag string) bool {
	switch tag {
	case "script", "style", "noscript", "template", "svg", "iframe":
		return true
	}
	return false
}
