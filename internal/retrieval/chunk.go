package retrieval

import (
	"regexp"
	"strings"

	"github.com/sriinnu/chitragupta/internal/scoring"
)

// ChunkTokenThreshold is the content length (in estimated tokens) at or
// above which ChunkContent splits content into overlapping windows rather than
// returning it whole.
const ChunkTokenThreshold = 500

// ChunkMaxTokens bounds each emitted chunk.
const ChunkMaxTokens = 500

// ChunkOverlapSentences is the number of trailing sentences repeated at
// the start of the next chunk.
const ChunkOverlapSentences = 1

var sentenceBoundary = regexp.MustCompile(`([.!?])\s+([A-Z])`)

// Chunk is one semantic window of content.
type Chunk struct {
	StartSentence int
	EndSentence   int
	Text          string
}

// SplitSentences breaks text on [.!?] followed by whitespace and a
// capital letter, a cheap approximation of sentence boundaries that
// avoids splitting on abbreviations mid-sentence most of the time.
func SplitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var sentences []string
	last := 0
	matches := sentenceBoundary.FindAllStringSubmatchIndex(text, -1)
	for _, m := range matches {
		// m[2:4] is the punctuation group, split right after it.
		end := m[3]
		sentences = append(sentences, strings.TrimSpace(text[last:end]))
		last = m[4]
	}
	if last < len(text) {
		sentences = append(sentences, strings.TrimSpace(text[last:]))
	}
	return sentences
}

// ChunkContent splits content into chunks of at most ChunkMaxTokens estimated
// tokens with a one-sentence overlap between consecutive chunks, if
// content is at or above ChunkTokenThreshold tokens; otherwise it
// returns the whole content as a single chunk.
func ChunkContent(content string) []Chunk {
	if scoring.EstimateTokens(content) < ChunkTokenThreshold {
		sentences := SplitSentences(content)
		return []Chunk{{
			StartSentence: 0,
			EndSentence:   len(sentences) - 1,
			Text:          content,
		}}
	}

	sentences := SplitSentences(content)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []Chunk
	start := 0
	for start < len(sentences) {
		tokens := 0
		end := start
		for end < len(sentences) {
			t := scoring.EstimateTokens(sentences[end])
			if tokens+t > ChunkMaxTokens && end > start {
				break
			}
			tokens += t
			end++
		}

		chunks = append(chunks, Chunk{
			StartSentence: start,
			EndSentence:   end - 1,
			Text:          strings.Join(sentences[start:end], " "),
		})

		if end >= len(sentences) {
			break
		}
		start = end - ChunkOverlapSentences
		if start < 0 {
			start = 0
		}
		if start <= chunks[len(chunks)-1].StartSentence {
			start = end
		}
	}
	return chunks
}
