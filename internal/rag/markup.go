package rag

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
)

// ensureHTMLFragment normalizes a model reply into an HTML fragment.
// The prompts demand strict HTML, but models occasionally answer in
// markdown anyway; such replies are rendered to HTML rather than passed
// through raw. Replies already starting with a tag, the bare sentinel
// phrase, and empty replies are returned as-is.
func ensureHTMLFragment(answer string) string {
	trimmed := strings.TrimSpace(answer)
	if trimmed == "" || trimmed == noInfoSentinel || strings.HasPrefix(trimmed, "<") {
		return trimmed
	}

	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(trimmed), &buf); err != nil {
		return trimmed
	}
	return strings.TrimSpace(buf.String())
}
