package document

import (
	"strings"
	"unicode/utf8"
)

const (
	// ChunkThreshold is the content length above which a document is
	// chunked before analysis.
	ChunkThreshold = 150000
	// DefaultChunkSize is the target size of each chunk.
	DefaultChunkSize = 100000
)

// ChunkText splits text on blank lines into chunks of at most size
// characters. A single paragraph longer than size becomes its own chunk.
func ChunkText(text string, size int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}

	var (
		chunks  []string
		current string
		length  int // characters in current
	)
	for _, paragraph := range strings.Split(text, "\n\n") {
		n := utf8.RuneCountInString(paragraph)
		if current != "" && length+n > size {
			chunks = append(chunks, strings.TrimSpace(current))
			current, length = paragraph, n
			continue
		}
		if current != "" {
			current += "\n\n"
			length += 2
		}
		current += paragraph
		length += n
	}
	if current != "" {
		chunks = append(chunks, strings.TrimSpace(current))
	}
	return chunks
}

// Prepare returns the part of content that should be analysed: the whole
// text, or the first chunk when it is longer than ChunkThreshold.
func Prepare(content string) (text string, chunked bool, chunks int) {
	if utf8.RuneCountInString(content) <= ChunkThreshold {
		return content, false, 1
	}
	parts := ChunkText(content, DefaultChunkSize)
	if len(parts) == 0 {
		return content, false, 1
	}
	return parts[0], true, len(parts)
}
