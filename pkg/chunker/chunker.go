package chunker

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoContent is returned when splitting produces no usable chunks.
// Ingestion must stop on it rather than populate an empty index.
var ErrNoContent = errors.New("no content could be extracted from the document")

const (
	DefaultChunkSize = 1000
	DefaultOverlap   = 200
)

// defaultSeparators are tried coarsest-first: paragraph, line, word, character.
var defaultSeparators = []string{"\n\n", "\n", " ", ""}

// Segment is one extracted piece of source text, e.g. a page or a slide.
type Segment struct {
	Text   string
	Source string
}

// Chunk is a bounded span of document text, the unit of retrieval. Source
// carries the back-reference for citation.
type Chunk struct {
	Text   string
	Source string
	Index  int
}

// Chunker splits extracted text into overlapping bounded-size chunks using a
// recursive splitting strategy: it prefers the coarsest separator that still
// yields pieces at or under the configured maximum size.
type Chunker struct {
	chunkSize  int
	overlap    int
	separators []string
}

func New(chunkSize, overlap int) (*Chunker, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, fmt.Errorf("overlap must be in [0, chunk size), got %d", overlap)
	}
	return &Chunker{
		chunkSize:  chunkSize,
		overlap:    overlap,
		separators: defaultSeparators,
	}, nil
}

// Split chunks every segment and returns the chunks in document order.
// Returns ErrNoContent when nothing survives the minimum-content filter.
func (c *Chunker) Split(segments []Segment) ([]Chunk, error) {
	var chunks []Chunk
	for _, seg := range segments {
		for _, piece := range c.splitText(seg.Text, c.separators) {
			piece = strings.TrimSpace(piece)
			if piece == "" {
				continue
			}
			chunks = append(chunks, Chunk{
				Text:   piece,
				Source: seg.Source,
				Index:  len(chunks),
			})
		}
	}
	if len(chunks) == 0 {
		return nil, ErrNoContent
	}
	return chunks, nil
}

// splitText breaks text on the first separator present in it, merges the
// resulting pieces back into windows of at most chunkSize with the configured
// overlap, and recurses with finer separators on pieces that are still too
// large.
func (c *Chunker) splitText(text string, separators []string) []string {
	if text == "" {
		return nil
	}

	separator := separators[len(separators)-1]
	remaining := []string{}
	for i, sep := range separators {
		if sep == "" || strings.Contains(text, sep) {
			separator = sep
			remaining = separators[i+1:]
			break
		}
	}

	splits := splitWithSeparator(text, separator)

	var final []string
	var good []string
	for _, s := range splits {
		if len(s) <= c.chunkSize {
			good = append(good, s)
			continue
		}
		if len(good) > 0 {
			final = append(final, c.merge(good, separator)...)
			good = nil
		}
		if len(remaining) == 0 {
			final = append(final, s)
		} else {
			final = append(final, c.splitText(s, remaining)...)
		}
	}
	if len(good) > 0 {
		final = append(final, c.merge(good, separator)...)
	}
	return final
}

// merge joins pieces into chunks no longer than chunkSize. When a chunk is
// emitted, leading pieces are dropped until the carried-over tail is at most
// the overlap, so consecutive chunks share context across the boundary.
func (c *Chunker) merge(pieces []string, separator string) []string {
	sepLen := len(separator)

	var merged []string
	var window []string
	total := 0

	flush := func() {
		if len(window) == 0 {
			return
		}
		doc := strings.TrimSpace(strings.Join(window, separator))
		if doc != "" {
			merged = append(merged, doc)
		}
	}

	for _, piece := range pieces {
		pieceLen := len(piece)
		if total+pieceLen+boundary(len(window), sepLen) > c.chunkSize && total > 0 {
			flush()
			// Slide the window forward, keeping at most `overlap` units.
			for total > c.overlap || (total+pieceLen+boundary(len(window), sepLen) > c.chunkSize && total > 0) {
				total -= len(window[0]) + boundary(len(window)-1, sepLen)
				window = window[1:]
			}
		}
		window = append(window, piece)
		total += pieceLen + boundary(len(window)-1, sepLen)
	}
	flush()
	return merged
}

// boundary is the separator cost of appending to a window of n pieces.
func boundary(n, sepLen int) int {
	if n > 0 {
		return sepLen
	}
	return 0
}

// splitWithSeparator splits text on sep while keeping every piece non-empty.
// An empty separator degrades to per-character splitting.
func splitWithSeparator(text, sep string) []string {
	var raw []string
	if sep == "" {
		raw = strings.Split(text, "")
	} else {
		raw = strings.Split(text, sep)
	}
	splits := raw[:0]
	for _, s := range raw {
		if s != "" {
			splits = append(splits, s)
		}
	}
	return splits
}
