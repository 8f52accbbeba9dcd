package translate

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

// ErrNotDocx is returned when the uploaded file is not a readable
// .docx archive.
var ErrNotDocx = errors.New("file is not a valid docx document")

// ExtractDocxText pulls the raw paragraph text out of a .docx upload.
// A docx file is a zip archive whose main content lives in
// word/document.xml; paragraphs become lines, runs are concatenated.
func ExtractDocxText(r io.ReaderAt, size int64) (string, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return "", ErrNotDocx
	}

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", ErrNotDocx
	}

	rc, err := doc.Open()
	if err != nil {
		return "", ErrNotDocx
	}
	defer rc.Close()

	return extractParagraphs(rc)
}

// extractParagraphs streams document.xml and collects the character
// data of every w:t element, inserting a newline at each w:p boundary.
func extractParagraphs(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)

	var sb strings.Builder
	inText := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", ErrNotDocx
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}

	return strings.TrimSpace(sb.String()), nil
}
