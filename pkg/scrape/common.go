package scrape

import (
	"bytes"
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const BaseUrl = "https://www.ims.tau.ac.il/"

// Literals the result pages use as structural cues. They must match the
// site's Hebrew text exactly; when parsing suddenly yields nothing, check
// these first.
const (
	blockMarkerClass = "kotcol"
	distributionList = "רשימת תפוצה"
	noDataMarker     = "אין נתונים"
	andMarker        = "וגם"
	orMarker         = "או"
	parallelMarker   = "קורסים מקבילים נדרשים"
	allOptionsPrefix = "כל "

	examHeaderRow = `<tr class="listth"><th>מועד</th><th>תאריך</th><th>שעה</th><th>סוג מטלה</th></tr>`
)

// Source semester tokens, in semester index order (index 0 is semester 1)
var semesterTokens = []string{"א'", "ב'"}

var (
	// ErrUnexpectedPage means the page no longer looks the way the parsers
	// expect it to.
	ErrUnexpectedPage = errors.New("unexpected page format")

	// ErrMissingAttribute is raised by row accessors when a row lacks the
	// attribute or nested element being looked up.
	ErrMissingAttribute = errors.New("missing attribute")
)

// SemesterIndex maps a source semester token like "א'" to its index (1 or 2).
func SemesterIndex(token string) (int, bool) {
	for i, t := range semesterTokens {
		if t == token {
			return i + 1, true
		}
	}
	return 0, false
}

// SemesterToken maps a semester letter ("a" or "b") to the token used on the
// result pages.
func SemesterToken(letter string) (string, error) {
	switch letter {
	case "a":
		return semesterTokens[0], nil
	case "b":
		return semesterTokens[1], nil
	default:
		return "", errors.New(letter + " is not a valid semester")
	}
}

// SemesterNumber maps a semester letter to the digit the site appends to the year.
func SemesterNumber(letter string) (string, error) {
	switch letter {
	case "a":
		return "1", nil
	case "b":
		return "2", nil
	default:
		return "", errors.New(letter + " is not a valid semester")
	}
}

func stripSeparators(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "-", ""))
}

// nodeText concatenates every text node under n, like the DOM's textContent.
func nodeText(n *html.Node) string {
	var buf bytes.Buffer
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if n != nil {
		walk(n)
	}
	return buf.String()
}

// childNodes returns the immediate children of n. Whitespace-only text nodes
// are formatting, not content, and are left out.
func childNodes(n *html.Node) []*html.Node {
	var children []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.CommentNode {
			continue
		}
		if c.Type == html.TextNode && strings.TrimSpace(c.Data) == "" {
			continue
		}
		children = append(children, c)
	}
	return children
}

// nextInDocument returns the node that follows n in document order.
func nextInDocument(n *html.Node) *html.Node {
	if n.FirstChild != nil {
		return n.FirstChild
	}
	for n != nil {
		if n.NextSibling != nil {
			return n.NextSibling
		}
		n = n.Parent
	}
	return nil
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// directRows lists the rows that belong to table itself, skipping rows of
// nested tables. The HTML parser wraps rows in tbody, so sections are
// descended into.
func directRows(table *html.Node) []*html.Node {
	var rows []*html.Node
	for c := table.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "tr":
			rows = append(rows, c)
		case "thead", "tbody", "tfoot":
			for r := c.FirstChild; r != nil; r = r.NextSibling {
				if r.Type == html.ElementNode && r.Data == "tr" {
					rows = append(rows, r)
				}
			}
		}
	}
	return rows
}

func selectionText(s *goquery.Selection) string {
	return strings.TrimSpace(s.Text())
}
