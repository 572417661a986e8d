package extractor

import (
	"archive/zip"
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"docmind-be/pkg/chunker"
)

var slidePartPattern = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// PptxExtractor extracts one segment per slide, in slide order.
type PptxExtractor struct{}

func (e *PptxExtractor) Extract(path string) ([]chunker.Segment, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open pptx: %w", err)
	}
	defer archive.Close()

	type slidePart struct {
		number int
		name   string
	}
	var slides []slidePart
	for _, f := range archive.File {
		m := slidePartPattern.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		slides = append(slides, slidePart{number: n, name: f.Name})
	}
	if len(slides) == 0 {
		return nil, fmt.Errorf("pptx contains no slides")
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].number < slides[j].number })

	segments := make([]chunker.Segment, 0, len(slides))
	for _, slide := range slides {
		part, err := openZipPart(archive, slide.name)
		if err != nil {
			return nil, err
		}
		text, err := ooxmlPartText(part, "t")
		part.Close()
		if err != nil {
			return nil, fmt.Errorf("extract slide %d: %w", slide.number, err)
		}
		segments = append(segments, chunker.Segment{
			Text:   text,
			Source: fmt.Sprintf("slide %d", slide.number),
		})
	}
	return segments, nil
}
