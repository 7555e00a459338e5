package services

import (
	"strings"
	"unicode/utf8"
)

type TextChunker interface {
	// ChunkText splits text into pieces of at most maxChunkSize runes,
	// carrying overlap runes of the previous piece into the next when they
	// fit. A single sentence longer than maxChunkSize is kept whole.
	ChunkText(text string, maxChunkSize int, overlap int) []string
}

type textChunker struct{}

func NewTextChunker() TextChunker {
	return &textChunker{}
}

func (tc *textChunker) ChunkText(text string, maxChunkSize int, overlap int) []string {
	if maxChunkSize <= 0 {
		maxChunkSize = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxChunkSize {
		overlap = maxChunkSize / 4
	}

	var chunks []string
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		chunks = append(chunks, current.String())
		current.Reset()
		current.WriteString(lastRunes(chunks[len(chunks)-1], overlap))
	}

	fits := func(piece, sep string) bool {
		return utf8.RuneCountInString(current.String())+utf8.RuneCountInString(piece)+len(sep) <= maxChunkSize
	}

	add := func(piece, sep string) {
		if !fits(piece, sep) {
			flush()
			// The overlap is dropped when it leaves no room for the piece.
			if !fits(piece, sep) {
				current.Reset()
			}
		}
		if current.Len() > 0 {
			current.WriteString(sep)
		}
		current.WriteString(piece)
	}

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		if utf8.RuneCountInString(para) <= maxChunkSize {
			add(para, "\n\n")
			continue
		}

		// Long paragraph: pack sentence by sentence.
		for _, sentence := range splitSentences(para) {
			add(sentence, " ")
		}
	}

	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

// splitSentences breaks on terminal punctuation, keeping it on the sentence.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	for i, r := range text {
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(text[start : i+1]); s != "" {
				sentences = append(sentences, s)
			}
			start = i + 1
		}
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func lastRunes(text string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[len(runes)-n:])
}
