package htmlutil

import (
	"bytes"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

// non-printable runes (newlines, tabs, non-breaking spaces) become
// ordinary spaces so collapsing never welds adjacent words together
func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) {
			newStr.WriteRune(c)
		} else {
			newStr.WriteRune(' ')
		}
	}
	return newStr.String()
}

// CollapseWhitespace strips the ends of the given string and collapses
// internal runs of whitespace into a single space.
func CollapseWhitespace(s string) string {
	s = removeNonPrintable(s)
	s = strings.Trim(s, " \t\n")
	return innerWhitespace.ReplaceAllString(s, " ")
}

// SelectionText returns the whitespace-collapsed text of all nodes in the
// selection, document order.
func SelectionText(sel *goquery.Selection) string {
	var buffer bytes.Buffer
	for _, n := range sel.Nodes {
		getTextRecursive(n, &buffer)
		buffer.WriteString(" ")
	}
	return CollapseWhitespace(buffer.String())
}

type Anchor struct {
	Name string
	Href string
}

// GetAnchors pulls (text, href) pairs out of a selection of <a> elements,
// resolving each href against base when base is non-nil.
func GetAnchors(sel *goquery.Selection, base *url.URL) []Anchor {
	anchors := []Anchor{}
	for _, n := range sel.Nodes {
		href := ""
		for _, a := range n.Attr {
			if a.Key == "href" {
				href = a.Val
				break
			}
		}

		link, err := url.Parse(href)
		if err != nil {
			continue
		}
		if base != nil {
			link = base.ResolveReference(link)
		}

		anchors = append(anchors, Anchor{
			Name: CollapseWhitespace(GetText(n)),
			Href: link.String(),
		})
	}

	return anchors
}

// HiddenInputs collects the name="..." value="..." pairs of every hidden
// <input> in the document. ASP.NET pages carry their session state this way.
func HiddenInputs(doc *goquery.Document) map[string]string {
	state := map[string]string{}
	doc.Find("input[type=hidden]").Each(func(_ int, s *goquery.Selection) {
		name := s.AttrOr("name", "")
		if name == "" {
			return
		}
		state[name] = s.AttrOr("value", "")
	})
	return state
}
