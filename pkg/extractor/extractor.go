// Package extractor turns uploaded files into plain text segments. One
// extractor exists per supported extension; the ingestion pipeline picks one
// by filename and never looks inside the file itself.
package extractor

import (
	"sort"
	"strings"

	"docmind-be/pkg/chunker"
)

// Extractor reads a file from disk and returns its text split into natural
// segments (pages, slides, or the whole document).
type Extractor interface {
	Extract(path string) ([]chunker.Segment, error)
}

var registry = map[string]Extractor{
	".pdf":  &PDFExtractor{},
	".docx": &DocxExtractor{},
	".pptx": &PptxExtractor{},
	".txt":  &TextExtractor{},
}

// ForExtension returns the extractor for a lowercase extension like ".pdf".
func ForExtension(ext string) (Extractor, bool) {
	e, ok := registry[strings.ToLower(ext)]
	return e, ok
}

// SupportedExtensions lists the accepted extensions in stable order, for
// error messages.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(registry))
	for ext := range registry {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
