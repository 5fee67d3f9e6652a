package main

import (
	"strings"

	"golang.org/x/net/html"
)

// textStats summarises generated text for logging.
type textStats struct {
	Blocks int
	Words  int
	Bytes  int
}

// Block-level elements Loripsum emits.
var blockTags = map[string]bool{
	"p":          true,
	"h1":         true,
	"h2":         true,
	"h3":         true,
	"h4":         true,
	"h5":         true,
	"h6":         true,
	"ul":         true,
	"ol":         true,
	"dl":         true,
	"blockquote": true,
	"pre":        true,
}

func measureText(format Format, text string) textStats {
	stats := textStats{Bytes: len(text)}
	if format == FormatHTML {
		doc, err := html.Parse(strings.NewReader(text))
		if err == nil {
			countBlocks(doc, &stats)
			return stats
		}
	}
	for _, para := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		if strings.TrimSpace(para) != "" {
			stats.Blocks++
		}
	}
	stats.Words = len(strings.Fields(text))
	return stats
}

func countBlocks(n *html.Node, stats *textStats) {
	switch n.Type {
	case html.ElementNode:
		if blockTags[n.Data] {
			stats.Blocks++
			// Nested lists and quoted paragraphs still count once.
			countWords(n, stats)
			return
		}
	case html.TextNode:
		stats.Words += len(strings.Fields(n.Data))
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		countBlocks(c, stats)
	}
}

func countWords(n *html.Node, stats *textStats) {
	if n.Type == html.TextNode {
		stats.Words += len(strings.Fields(n.Data))
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		countWords(c, stats)
	}
}
