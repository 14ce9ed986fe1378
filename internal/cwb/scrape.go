package cwb

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

var advisoryKeywords = []string{
	"brown water", "sewage", "spill", "overflow", "bacteria",
	"enterococci", "closure", "advisory", "warning",
}

// parsePage pulls advisories out of the advisory page: table rows of
// beach | island | type | reason | posted, then any list item that reads
// like an advisory
func parsePage(r io.Reader) ([]Advisory, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse advisory page: %w", err)
	}

	content := findElement(doc, func(n *html.Node) bool {
		return n.Data == "div" && hasClass(n, "entry-content")
	})
	if content == nil {
		content = findElement(doc, func(n *html.Node) bool { return n.Data == "article" })
	}
	if content == nil {
		content = findElement(doc, func(n *html.Node) bool { return n.Data == "body" })
	}
	if content == nil {
		return nil, nil
	}

	var advisories []Advisory

	for _, table := range findAll(content, "table") {
		rows := findAll(table, "tr")
		for i, row := range rows {
			if i == 0 {
				continue // header
			}
			var cells []string
			for cell := row.FirstChild; cell != nil; cell = cell.NextSibling {
				if cell.Type == html.ElementNode && (cell.Data == "td" || cell.Data == "th") {
					cells = append(cells, textContent(cell))
				}
			}
			if len(cells) < 2 || cells[0] == "" {
				continue
			}
			a := Advisory{Beach: cells[0], Island: cells[1], Type: "Advisory", Status: "active"}
			if len(cells) > 2 {
				a.Type = cells[2]
			}
			if len(cells) > 3 {
				a.Reason = cells[3]
			}
			if len(cells) > 4 {
				a.PostedDate = cells[4]
			}
			advisories = append(advisories, a)
		}
	}

	for _, item := range findAll(content, "li") {
		text := textContent(item)
		if !containsAny(strings.ToLower(text), advisoryKeywords) {
			continue
		}
		a := Advisory{
			Beach:  extractLocation(text),
			Type:   advisoryType(text),
			Reason: text,
			Status: "active",
		}
		if isOahuLocation(text) {
			a.Island = "Oahu"
		}
		advisories = append(advisories, a)
	}

	return advisories, nil
}

func findElement(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, match); found != nil {
			return found
		}
	}
	return nil
}

func findAll(n *html.Node, tag string) []*html.Node {
	var nodes []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.Data == tag {
				nodes = append(nodes, c)
			}
			walk(c)
		}
	}
	walk(n)
	return nodes
}

func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key == "class" {
			for _, c := range strings.Fields(attr.Val) {
				if c == class {
					return true
				}
			}
		}
	}
	return false
}

// textContent returns the node's text with whitespace collapsed
func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

func advisoryType(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "closure"), strings.Contains(lower, "closed"):
		return "Closure"
	case strings.Contains(lower, "brown water"):
		return "Brown Water Advisory"
	case strings.Contains(lower, "sewage"):
		return "Sewage Advisory"
	case strings.Contains(lower, "bacteria"), strings.Contains(lower, "enterococci"):
		return "Bacteria Advisory"
	default:
		return "Advisory"
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
