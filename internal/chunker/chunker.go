// Package chunker splits raw document text into overlapping segments sized
// for embedding. Splitting prefers sentence boundaries, then word
// boundaries, then a hard cut, and always advances the cursor so the scan
// terminates on any input.
package chunker

import "strings"

const (
	DefaultChunkSize = 1000
	DefaultOverlap   = 200
)

type Chunker struct {
	chunkSize int
	overlap   int
}

func New(chunkSize, overlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = chunkSize / 5
	}
	return &Chunker{chunkSize: chunkSize, overlap: overlap}
}

// Chunk returns the ordered segments of text. Deterministic: the same input
// and configuration always produce the same sequence.
func (c *Chunker) Chunk(text string) []string {
	normalized := normalizeWhitespace(text)
	if normalized == "" {
		return nil
	}
	runes := []rune(normalized)
	if len(runes) <= c.chunkSize {
		return []string{normalized}
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + c.chunkSize
		if end >= len(runes) {
			chunks = append(chunks, strings.TrimSpace(string(runes[start:])))
			break
		}
		cut := breakPoint(runes[start:end])
		end = start + cut
		chunks = append(chunks, strings.TrimSpace(string(runes[start:end])))

		next := end - c.overlap
		// The cursor must move forward every iteration; a short cut near the
		// window start could otherwise re-emit the same window forever.
		if next <= start {
			next = start + 1
		}
		start = next
	}
	return chunks
}

// breakPoint picks the cut position inside one window: last sentence
// terminator, else last space, else the full window.
func breakPoint(window []rune) int {
	lastSentence := -1
	lastSpace := -1
	for i, r := range window {
		switch r {
		case '.', '!', '?':
			lastSentence = i
		case ' ':
			lastSpace = i
		}
	}
	if lastSentence > 0 {
		return lastSentence + 1
	}
	if lastSpace > 0 {
		return lastSpace + 1
	}
	return len(window)
}

func normalizeWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
