package rows

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"chat-harvester/internal/domain/entity"

	"golang.org/x/net/html"
)

var skippedTags = []string{"script", "style", "noscript", "svg", "template"}

// ParseHTMLTable reads the first <table> of an HTML document. Its first row
// is the header; th and td cells are both accepted.
func ParseHTMLTable(r io.Reader) ([]entity.Row, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	table := findNode(doc, "table")
	if table == nil {
		return nil, nil
	}

	var records [][]string
	collectRows(table, &records)
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	out := make([]entity.Row, 0, len(records)-1)
	for i, rec := range records[1:] {
		out = append(out, newRow(i, header, rec))
	}
	return out, nil
}

// findNode walks depth-first for the first element named tag.
func findNode(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findNode(c, tag); b != nil {
			return b
		}
	}
	return nil
}

// collectRows gathers tr rows but does not descend into nested tables.
func collectRows(n *html.Node, out *[][]string) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "tr":
			*out = append(*out, rowCells(c))
		case "table":
		default:
			collectRows(c, out)
		}
	}
}

func rowCells(tr *html.Node) []string {
	var cells []string
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && isOneOf(c.Data, "td", "th") {
			cells = append(cells, cellText(c))
		}
	}
	return cells
}

func cellText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			// Source newlines are layout; only <br> breaks a line.
			sb.WriteString(strings.Map(func(r rune) rune {
				if unicode.IsSpace(r) {
					return ' '
				}
				return r
			}, n.Data))
		case html.ElementNode:
			if isOneOf(n.Data, skippedTags...) {
				return
			}
			if n.Data == "br" {
				sb.WriteByte('\n')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	var lines []string
	for _, line := range strings.Split(sb.String(), "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func isOneOf(s string, candidates ...string) bool {
	for _, c := range candidates {
		if s == c {
			return true
		}
	}
	return false
}
