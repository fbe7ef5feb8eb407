package rag

import (
	"fmt"
	"strings"

	"docextract-ai/internal/retrieval"
)

const contextDelimiter = "\n\n---\n\n"

// CompressChunks assembles retrieved chunks into a single context string of
// at most maxChars characters, each piece prefixed with its source file.
// When the next piece would overflow the budget it is truncated to exactly
// fill the remainder and assembly stops. The returned source names are
// deduplicated preserving first-seen order.
func CompressChunks(chunks []retrieval.RetrievedChunk, maxChars int) (string, []string) {
	var pieces []string
	var sources []string
	used := 0

	for _, c := range chunks {
		fileName := c.FileName
		if fileName == "" {
			fileName = "unknown"
		}
		piece := fmt.Sprintf("[Source: %s]\n%s", fileName, c.Text)

		cost := len(piece)
		if len(pieces) > 0 {
			cost += len(contextDelimiter)
		}

		if used+cost > maxChars {
			remaining := maxChars - used
			if len(pieces) > 0 {
				remaining -= len(contextDelimiter)
			}
			if remaining > 0 {
				pieces = append(pieces, piece[:remaining])
				sources = append(sources, fileName)
			}
			break
		}

		pieces = append(pieces, piece)
		sources = append(sources, fileName)
		used += cost
	}

	return strings.Join(pieces, contextDelimiter), dedupe(sources)
}

// dedupe removes duplicates preserving first-seen order.
func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}
