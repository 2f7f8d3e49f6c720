// ABOUTME: Chunker splits extracted text into overlapping sentence-aligned passages
// ABOUTME: Pure function over text, no I/O; boundaries never cut mid-sentence
package chunker

import (
	"regexp"
	"strings"
)

// Defaults match the ingestion configuration defaults
const (
	DefaultMaxChars     = 512
	DefaultOverlapChars = 50
)

// Piece is one emitted chunk of text.
//
// StartOffset is the cumulative length of previously emitted chunk text,
// not a character offset into the source: once overlap is introduced the
// two diverge. Treat it as an ordering hint, not a source position.
type Piece struct {
	Text        string
	StartOffset int
}

// Chunker accumulates sentences into bounded, overlapping passages
type Chunker struct {
	maxChars     int
	overlapChars int
}

var sentenceBoundary = regexp.MustCompile(`([.!?])\s+`)

// New creates a Chunker. Non-positive maxChars and negative overlapChars
// fall back to the defaults.
func New(maxChars, overlapChars int) *Chunker {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	if overlapChars < 0 {
		overlapChars = DefaultOverlapChars
	}
	return &Chunker{maxChars: maxChars, overlapChars: overlapChars}
}

// Chunk splits text into ordered overlapping pieces. Sentences accumulate
// greedily until the next one would push past maxChars; the closed chunk
// seeds the next with its trailing sentences up to the overlap budget.
// A single sentence longer than maxChars is emitted whole rather than
// split. Empty input yields nil.
func (c *Chunker) Chunk(text string) []Piece {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var (
		pieces        []Piece
		current       []string
		currentLen    int
		cumulativePos int
	)

	for _, sentence := range sentences {
		if currentLen+len(sentence) > c.maxChars && len(current) > 0 {
			chunkText := strings.Join(current, " ")
			pieces = append(pieces, Piece{Text: chunkText, StartOffset: cumulativePos})
			cumulativePos += len(chunkText)

			current, currentLen = c.overlapTail(current)
		}

		current = append(current, sentence)
		currentLen += len(sentence)
	}

	if len(current) > 0 {
		pieces = append(pieces, Piece{Text: strings.Join(current, " "), StartOffset: cumulativePos})
	}

	return pieces
}

// overlapTail returns the trailing sentences of a closed chunk whose
// combined length fits the overlap budget, preserving order.
func (c *Chunker) overlapTail(sentences []string) ([]string, int) {
	var (
		tail    []string
		tailLen int
	)
	for i := len(sentences) - 1; i >= 0; i-- {
		if tailLen+len(sentences[i]) > c.overlapChars {
			break
		}
		tail = append([]string{sentences[i]}, tail...)
		tailLen += len(sentences[i])
	}
	return tail, tailLen
}

// splitSentences splits on `.`, `!` or `?` followed by whitespace,
// keeping the punctuation with the sentence.
func splitSentences(text string) []string {
	// Insert a marker after each boundary, then split on it. This keeps
	// the terminating punctuation attached to its sentence.
	marked := sentenceBoundary.ReplaceAllString(text, "$1\x00")
	parts := strings.Split(marked, "\x00")

	var sentences []string
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			sentences = append(sentences, part)
		}
	}
	return sentences
}
