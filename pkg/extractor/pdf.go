package extractor

import (
	"fmt"

	"github.com/ledongthuc/pdf"

	"docmind-be/pkg/chunker"
)

// PDFExtractor extracts one segment per page so citations can point back to
// the page the chunk came from.
type PDFExtractor struct{}

func (e *PDFExtractor) Extract(path string) ([]chunker.Segment, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	segments := make([]chunker.Segment, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extract pdf page %d: %w", i, err)
		}
		segments = append(segments, chunker.Segment{
			Text:   text,
			Source: fmt.Sprintf("page %d", i),
		})
	}
	return segments, nil
}
