package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const wordNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

const documentPart = "word/document.xml"

// MaxDocumentPartSize is the largest uncompressed main document part that will be read.
const MaxDocumentPartSize = 32 << 20

var ErrDocumentTooLarge = errors.New("document too large")

func docx(data []byte, maxPartSize int64) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &ExtractionError{Format: FormatDOCX, Err: err}
	}
	var part *zip.File
	for _, f := range zr.File {
		if f.Name == documentPart {
			part = f
			break
		}
	}
	if part == nil {
		return "", &ExtractionError{Format: FormatDOCX, Err: fmt.Errorf("missing %s", documentPart)}
	}
	if part.UncompressedSize64 > uint64(maxPartSize) {
		return "", &ExtractionError{Format: FormatDOCX, Err: fmt.Errorf("%w: %s is %d bytes, the limit is %d", ErrDocumentTooLarge, documentPart, part.UncompressedSize64, maxPartSize)}
	}
	f, err := part.Open()
	if err != nil {
		return "", &ExtractionError{Format: FormatDOCX, Err: fmt.Errorf("failed to open %s: %w", documentPart, err)}
	}
	defer f.Close()
	// The declared size can't be trusted, so the read is limited too.
	text, err := documentText(&limitedReader{r: f, n: maxPartSize})
	if err != nil {
		return "", &ExtractionError{Format: FormatDOCX, Err: err}
	}
	return text, nil
}

// limitedReader reads up to n bytes, and returns ErrDocumentTooLarge if more are available.
type limitedReader struct {
	r io.Reader
	n int64
}

func (l *limitedReader) Read(p []byte) (n int, err error) {
	if l.n <= 0 {
		var one [1]byte
		n, err = l.r.Read(one[:])
		if n > 0 {
			return 0, ErrDocumentTooLarge
		}
		return 0, err
	}
	if int64(len(p)) > l.n {
		p = p[:l.n]
	}
	n, err = l.r.Read(p)
	l.n -= int64(n)
	return n, err
}

// documentText returns the raw text of a WordprocessingML main document part.
// Paragraphs are terminated with a blank line.
func documentText(r io.Reader) (string, error) {
	var sb strings.Builder
	d := xml.NewDecoder(r)
	var inText, inTabStops bool
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return sb.String(), nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", documentPart, err)
		}
		switch tok := tok.(type) {
		case xml.StartElement:
			if tok.Name.Space != wordNamespace {
				continue
			}
			switch tok.Name.Local {
			case "t":
				inText = true
			case "tabs":
				inTabStops = true
			case "tab":
				if !inTabStops {
					sb.WriteByte('\t')
				}
			case "br", "cr":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			if tok.Name.Space != wordNamespace {
				continue
			}
			switch tok.Name.Local {
			case "t":
				inText = false
			case "tabs":
				inTabStops = false
			case "p":
				sb.WriteString("\n\n")
			}
		case xml.CharData:
			if inText {
				sb.Write(tok)
			}
		}
	}
}
