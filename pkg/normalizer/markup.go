package normalizer

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// StripMarkup removes HTML tags from s and returns the concatenated text.
// Strings that look like a local path or a URL are returned unchanged so
// they are never parsed as markup.
func StripMarkup(s string) string {
	if isLocalPath(s) || hasURLScheme(s) {
		return s
	}

	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return s
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
		case html.CommentNode:
			return
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return b.String()
}

// isLocalPath reports whether s is a single token shaped like a filesystem path.
func isLocalPath(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, " \t\n") {
		return false
	}
	for _, prefix := range []string{"/", "./", "../", "~/"} {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	// C:\ and similar drive paths
	if len(s) > 2 && s[1] == ':' && (s[2] == '\\' || s[2] == '/') {
		return true
	}
	return false
}

// hasURLScheme reports whether s is a single absolute URL.
func hasURLScheme(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, " \t\n") {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Scheme != "" && (u.Host != "" || u.Opaque != "")
}
