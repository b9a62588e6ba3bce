// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns extracted filing HTML into clean Markdown.
package convert

import (
	"fmt"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

var (
	blankRunRe = regexp.MustCompile(`\n[ \t]*\n[ \t]*\n+`)
	spaceRunRe = regexp.MustCompile(`[ \t]{2,}`)
	pageNumRe  = regexp.MustCompile(`(?m)^\s*\d{1,3}\s*$`)
)

// mojibake artifacts from Windows-1252 filings read as UTF-8.
var artifactReplacer = strings.NewReplacer(
	"", "'",
	"", "\"",
	"", "\"",
	"", "--",
	" ", " ",
)

// ToMarkdown converts an HTML fragment to Markdown, preserving headings,
// emphasis, and links, then applies Clean.
func ToMarkdown(html string) (string, error) {
	md, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("converting HTML to markdown: %w", err)
	}
	return Clean(md), nil
}

// Clean normalizes Markdown or plain text extracted from a filing:
// collapses runs of blank lines, squeezes repeated spaces, drops
// standalone page numbers, and repairs common encoding artifacts.
func Clean(text string) string {
	text = artifactReplacer.Replace(text)
	text = pageNumRe.ReplaceAllString(text, "")
	text = spaceRunRe.ReplaceAllString(text, " ")
	text = blankRunRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
