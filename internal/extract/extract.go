// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract locates named disclosure items inside SEC filing
// documents and returns the bounded section content.
package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/k3a/html2text"
)

// DefaultMinSectionChars rejects spans shorter than this after trimming.
// A heading match with almost no content behind it is a table-of-contents
// mention, not a disclosure.
const DefaultMinSectionChars = 100

// itemHeadingRe matches any "Item N", "Item N.NN", "Item 1A", or
// "Item 407(j)" style heading, used to bound a section at the next item.
var itemHeadingRe = regexp.MustCompile(`(?i)\bitem\s+\d+[a-cA-C]?(?:\.\d+)?\s*(?:\(\s*[a-z]\s*\))?`)

// terminatorRe matches the trailing-matter headings that end the item
// portion of a filing.
var terminatorRe = regexp.MustCompile(`(?i)^\s*(signatures?\b|exhibit\s+index\b)`)

// maxHeadingChars is the largest whitespace-collapsed text an element may
// have and still be treated as a heading candidate. Keeps wrapper divs that
// contain the whole document from being picked as the start node.
const maxHeadingChars = 300

// Result is a bounded disclosure section. Exactly one of HTML or Text is
// populated: HTML when the DOM traversal succeeded, Text when the
// line-scan fallback produced plain text.
type Result struct {
	HTML string
	Text string
}

// Extract returns the bounded content of the item described by spec within
// the filing document src, or nil when the item is absent. Absence is not
// an error; errors are reserved for unparseable input.
//
// The primary strategy parses the HTML and walks body-level siblings from
// the element containing the item heading until the next item heading,
// SIGNATURES, or EXHIBIT INDEX. When the document's structure is too flat
// or too deeply wrapped for that to bound the section safely, a plain-text
// line scan over the whole document is used instead.
func Extract(src string, spec ItemSpec, minChars int) (*Result, error) {
	if minChars <= 0 {
		minChars = DefaultMinSectionChars
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parsing filing document: %w", err)
	}
	doc.Find("script,style").Remove()

	if res := extractDOM(doc, spec); res != nil {
		if plainLen(res) >= minChars {
			return res, nil
		}
		return nil, nil
	}

	if res := extractLines(src, spec); res != nil {
		if plainLen(res) >= minChars {
			return res, nil
		}
	}
	return nil, nil
}

// extractDOM walks the parsed document. It finds the deepest short element
// whose text matches a start pattern, climbs to its body-level ancestor,
// and collects that ancestor plus following siblings until a boundary.
// Returns nil when no safe DOM bound exists.
func extractDOM(doc *goquery.Document, spec ItemSpec) *Result {
	var start *goquery.Selection
	doc.Find("body *").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := compact(s.Text())
		if text == "" || len(text) > maxHeadingChars {
			return true
		}
		if _, _, ok := spec.findStart(text); ok {
			start = s
			return false
		}
		return true
	})
	if start == nil {
		return nil
	}

	// Climb to the ancestor that is a direct child of body so sibling
	// traversal covers whole blocks, not cells of a nested table.
	point := start
	for {
		parent := point.Parent()
		if parent.Length() == 0 || goquery.NodeName(parent) == "body" {
			break
		}
		point = parent
	}

	// If the body-level block already contains the next item heading, the
	// document is one big wrapper and sibling slicing would capture too
	// much. Let the line scan bound it instead.
	pointText := compact(point.Text())
	_, end, ok := spec.findStart(pointText)
	if !ok || isBoundary(pointText[end:], spec) {
		return nil
	}

	var html, text strings.Builder
	appendNode := func(s *goquery.Selection) {
		if h, err := goquery.OuterHtml(s); err == nil {
			html.WriteString(h)
			html.WriteString("\n")
			text.WriteString(s.Text())
			text.WriteString("\n")
		}
	}

	appendNode(point)
	for sib := point.Next(); sib.Length() > 0; sib = sib.Next() {
		if isBoundary(compact(sib.Text()), spec) {
			break
		}
		appendNode(sib)
	}

	return &Result{HTML: html.String()}
}

// extractLines scans the plain-text rendering of the document line by
// line: start at the first line matching a start pattern, end before the
// first later line containing a different item heading or a terminator.
func extractLines(src string, spec ItemSpec) *Result {
	plain := html2text.HTML2Text(src)
	lines := strings.Split(plain, "\n")

	startIdx := -1
	for i, line := range lines {
		if _, _, ok := spec.findStart(compact(line)); ok {
			startIdx = i
			break
		}
	}
	if startIdx == -1 {
		return nil
	}

	endIdx := len(lines)
	for i := startIdx + 1; i < len(lines); i++ {
		if isBoundary(compact(lines[i]), spec) {
			endIdx = i
			break
		}
	}

	text := strings.TrimSpace(strings.Join(lines[startIdx:endIdx], "\n"))
	if text == "" {
		return nil
	}
	return &Result{Text: text}
}

// isBoundary reports whether text ends the current section: a trailing
// matter heading, or an item heading that is not the spec's own item (the
// spec's synonyms cover renumberings such as 106/1C).
func isBoundary(text string, spec ItemSpec) bool {
	if text == "" {
		return false
	}
	if terminatorRe.MatchString(text) {
		return true
	}
	loc := itemHeadingRe.FindStringIndex(text)
	if loc == nil {
		return false
	}
	return !spec.matchesAt(text[loc[0]:])
}

// plainLen returns the trimmed plain-text length of a result, used for the
// minimum-length check.
func plainLen(r *Result) int {
	if r.Text != "" {
		return len(strings.TrimSpace(r.Text))
	}
	return len(strings.TrimSpace(html2text.HTML2Text(r.HTML)))
}

// compact collapses all runs of whitespace (including non-breaking spaces
// from filing HTML) into single spaces.
func compact(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
