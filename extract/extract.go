// Package extract converts uploaded document bytes into plain text.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tmc/langchaingo/documentloaders"
)

// Format is the closed set of document formats that can be extracted.
type Format int

const (
	FormatUnknown Format = iota
	FormatTXT
	FormatDOCX
)

const (
	MIMETypeTXT  = "text/plain"
	MIMETypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// Supported lists the extractable formats in the order they are reported to users.
var Supported = []Format{FormatDOCX, FormatTXT}

func (f Format) String() string {
	switch f {
	case FormatTXT:
		return "TXT"
	case FormatDOCX:
		return "DOCX"
	}
	return "unknown"
}

// Extension returns the lower case file extension of the format, including the dot.
func (f Format) Extension() string {
	switch f {
	case FormatTXT:
		return ".txt"
	case FormatDOCX:
		return ".docx"
	}
	return ""
}

// SupportedExtensions returns the extensions of all supported formats, e.g. [".docx", ".txt"].
func SupportedExtensions() []string {
	exts := make([]string, len(Supported))
	for i, f := range Supported {
		exts[i] = f.Extension()
	}
	return exts
}

// Ext returns the lower case extension of the file name, including the dot.
func Ext(fileName string) string {
	return strings.ToLower(filepath.Ext(fileName))
}

// FromExtension returns the format for a file extension, or FormatUnknown.
func FromExtension(ext string) Format {
	for _, f := range Supported {
		if strings.EqualFold(f.Extension(), ext) {
			return f
		}
	}
	return FormatUnknown
}

// Detect resolves the format of a file. The extension wins; the MIME type is
// only used when the extension is not recognised.
func Detect(fileName, mimeType string) (Format, error) {
	if f := FromExtension(Ext(fileName)); f != FormatUnknown {
		return f, nil
	}
	switch {
	case strings.Contains(mimeType, MIMETypeDOCX):
		return FormatDOCX, nil
	case strings.Contains(mimeType, MIMETypeTXT):
		return FormatTXT, nil
	}
	return FormatUnknown, &UnsupportedFormatError{FileName: fileName, MIMEType: mimeType}
}

// Text extracts the plain text content of data.
func Text(ctx context.Context, f Format, data []byte) (string, error) {
	switch f {
	case FormatTXT:
		return txt(ctx, data)
	case FormatDOCX:
		return docx(data, MaxDocumentPartSize)
	}
	return "", &UnsupportedFormatError{}
}

func txt(ctx context.Context, data []byte) (string, error) {
	docs, err := documentloaders.NewText(bytes.NewReader(data)).Load(ctx)
	if err != nil {
		return "", &ExtractionError{Format: FormatTXT, Err: err}
	}
	var sb strings.Builder
	for _, doc := range docs {
		sb.WriteString(doc.PageContent)
	}
	return sb.String(), nil
}

type UnsupportedFormatError struct {
	FileName string
	MIMEType string
}

func (e *UnsupportedFormatError) Error() string {
	names := make([]string, len(Supported))
	for i, f := range Supported {
		names[i] = f.String()
	}
	mimeType := e.MIMEType
	if mimeType == "" {
		mimeType = "unknown"
	}
	return fmt.Sprintf("unsupported file type: %s. Supported: %s", mimeType, strings.Join(names, ", "))
}

type ExtractionError struct {
	Format Format
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.Format, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
