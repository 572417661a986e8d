package extractor

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Both .docx and .pptx are OOXML containers: a zip archive holding XML parts.
// Visible text lives in <w:t> (WordprocessingML) and <a:t> (DrawingML)
// elements; everything else is layout and styling.

// ooxmlPartText decodes one XML part and concatenates the character data of
// every element with the given local name. Paragraph ends (</w:p>, </a:p>)
// become newlines so the chunker can split on them.
func ooxmlPartText(r io.Reader, textLocal string) (string, error) {
	decoder := xml.NewDecoder(r)

	var sb strings.Builder
	inText := false
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decode xml part: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == textLocal {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case textLocal:
				inText = false
			case "p":
				sb.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return sb.String(), nil
}

// openZipPart finds a named file inside the archive.
func openZipPart(archive *zip.ReadCloser, name string) (io.ReadCloser, error) {
	for _, f := range archive.File {
		if f.Name == name {
			return f.Open()
		}
	}
	return nil, fmt.Errorf("archive part %s not found", name)
}
