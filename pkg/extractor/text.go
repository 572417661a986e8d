package extractor

import (
	"fmt"
	"os"
	"path/filepath"

	"docmind-be/pkg/chunker"
)

// TextExtractor handles plain .txt uploads as a single segment.
type TextExtractor struct{}

func (e *TextExtractor) Extract(path string) ([]chunker.Segment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read text file: %w", err)
	}
	return []chunker.Segment{{
		Text:   string(data),
		Source: filepath.Base(path),
	}}, nil
}
