package extractor

import (
	"archive/zip"
	"fmt"
	"path/filepath"

	"docmind-be/pkg/chunker"
)

// DocxExtractor reads the main document part of a Word file.
type DocxExtractor struct{}

func (e *DocxExtractor) Extract(path string) ([]chunker.Segment, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}
	defer archive.Close()

	part, err := openZipPart(archive, "word/document.xml")
	if err != nil {
		return nil, fmt.Errorf("open docx body: %w", err)
	}
	defer part.Close()

	text, err := ooxmlPartText(part, "t")
	if err != nil {
		return nil, fmt.Errorf("extract docx text: %w", err)
	}

	return []chunker.Segment{{
		Text:   text,
		Source: filepath.Base(path),
	}}, nil
}
