package extract

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Tags whose subtree never carries article text.
var skipTags = map[atom.Atom]bool{
	atom.Script: true, atom.Style: true, atom.Nav: true,
	atom.Header: true, atom.Footer: true, atom.Aside: true,
	atom.Noscript: true, atom.Iframe: true, atom.Form: true,
	atom.Svg: true, atom.Button: true, atom.Template: true,
}

var blockTags = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Section: true, atom.Article: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Li: true, atom.Br: true, atom.Tr: true, atom.Blockquote: true, atom.Pre: true,
}

// minMainRunes is how much text an <article> or <main> needs before it is
// preferred over the whole body.
const minMainRunes = 200

// parseHTML returns the page title and its readable text.
func parseHTML(src string) (title, text string) {
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return "", ""
	}
	title = findTitle(doc)

	root := doc
	if main := findFirst(doc, atom.Article); main != nil {
		root = main
	} else if main := findFirst(doc, atom.Main); main != nil {
		root = main
	}
	text = collectText(root)
	if root != doc && len([]rune(text)) < minMainRunes {
		text = collectText(doc)
	}
	return title, text
}

// findTitle prefers og:title and falls back to <title>.
func findTitle(doc *html.Node) string {
	var og, plain string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if og != "" {
			return
		}
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Meta:
				if strings.EqualFold(attr(n, "property"), "og:title") {
					og = strings.TrimSpace(attr(n, "content"))
				}
			case atom.Title:
				if plain == "" && n.FirstChild != nil {
					plain = strings.TrimSpace(n.FirstChild.Data)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	if og != "" {
		return og
	}
	return plain
}

func findFirst(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, a); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func collectText(root *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (skipTags[n.DataAtom] || n.DataAtom == atom.Title) {
			return
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				sb.WriteString(t)
				sb.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blockTags[n.DataAtom] {
			sb.WriteString("\n")
		}
	}
	walk(root)
	return normalizeText(sb.String())
}

// normalizeText collapses whitespace inside lines and drops blank lines.
func normalizeText(s string) string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
