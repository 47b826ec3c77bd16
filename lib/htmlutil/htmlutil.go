package htmlutil

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// FlatText renders the text of every node in the selection with single
// spaces between text nodes, the way a browser would lay out inline
// content. Useful for regex matching over a whole page.
func FlatText(sel *goquery.Selection) string {
	var parts []string
	for _, node := range sel.Nodes {
		collectTextNodes(node, &parts)
	}
	return strings.Join(parts, " ")
}

func collectTextNodes(node *html.Node, parts *[]string) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		text := strings.TrimSpace(node.Data)
		if text != "" {
			*parts = append(*parts, text)
		}
		return
	}
	child := node.FirstChild
	for child != nil {
		collectTextNodes(child, parts)
		child = child.NextSibling
	}
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// CleanText collapses inner whitespace and strips non-printable runes
// from rendered node text.
func CleanText(s string) string {
	s = removeNonPrintable(s)
	s = strings.Trim(s, " \t\n")
	s = innerWhitespace.ReplaceAllString(s, " ")
	return s
}

// CellTexts returns the cleaned text of every <td>/<th> cell of a table
// row selection, in column order.
func CellTexts(row *goquery.Selection) []string {
	var cells []string
	row.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
		cells = append(cells, CleanText(cell.Text()))
	})
	return cells
}
