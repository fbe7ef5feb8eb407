package ingest

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var sentencePattern = regexp.MustCompile(`(?s)[^.!?]*[.!?]+`)

// SentenceChunker splits text into overlapping windows of whole sentences.
// Window size and overlap are measured in runes; a window never exceeds
// chunkSize unless a single sentence does, in which case the sentence is
// hard-split first.
type SentenceChunker struct {
	chunkSize    int
	chunkOverlap int
}

// NewSentenceChunker creates a chunker with the given rune budget per chunk
// and overlap budget between consecutive chunks.
func NewSentenceChunker(chunkSize, chunkOverlap int) *SentenceChunker {
	if chunkSize <= 0 {
		chunkSize = 800
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = 0
	}
	return &SentenceChunker{chunkSize: chunkSize, chunkOverlap: chunkOverlap}
}

// Chunk splits text into chunks. Empty or whitespace-only input yields nil.
func (c *SentenceChunker) Chunk(text string) []string {
	sentences := c.split(text)
	if len(sentences) == 0 {
		return nil
	}

	lengths := make([]int, len(sentences))
	for i, s := range sentences {
		lengths[i] = utf8.RuneCountInString(s)
	}

	var chunks []string
	start := 0
	for start < len(sentences) {
		end := start
		size := 0
		for end < len(sentences) {
			cost := lengths[end]
			if end > start {
				cost++ // joining space
			}
			if end > start && size+cost > c.chunkSize {
				break
			}
			size += cost
			end++
		}

		chunks = append(chunks, strings.TrimSpace(strings.Join(sentences[start:end], " ")))
		if end >= len(sentences) {
			break
		}

		// Step back over trailing sentences to seed the next window,
		// always advancing by at least one sentence.
		next := end
		overlap := 0
		for next > start+1 && overlap+lengths[next-1] <= c.chunkOverlap {
			overlap += lengths[next-1]
			next--
		}
		start = next
	}
	return chunks
}

// split breaks text into sentences, hard-splitting any single sentence that
// exceeds the chunk budget into rune windows.
func (c *SentenceChunker) split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var raw []string
	last := 0
	for _, loc := range sentencePattern.FindAllStringIndex(text, -1) {
		raw = append(raw, text[loc[0]:loc[1]])
		last = loc[1]
	}
	if tail := strings.TrimSpace(text[last:]); tail != "" {
		raw = append(raw, tail)
	}

	var sentences []string
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if utf8.RuneCountInString(s) <= c.chunkSize {
			sentences = append(sentences, s)
			continue
		}
		runes := []rune(s)
		for len(runes) > 0 {
			n := c.chunkSize
			if n > len(runes) {
				n = len(runes)
			}
			piece := strings.TrimSpace(string(runes[:n]))
			if piece != "" {
				sentences = append(sentences, piece)
			}
			runes = runes[n:]
		}
	}
	return sentences
}
