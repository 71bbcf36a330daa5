// Package pipeline turns an uploaded document into a stored summary.
//
// A document record is created before any extraction or inference work is
// started. From then on, every failure is written to the record, so that no
// record is left in the PROCESSING state when Run returns.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/a-h/docsum/db"
	"github.com/a-h/docsum/extract"
	"github.com/a-h/docsum/summarize"
)

const (
	// MaxFileSize is the largest accepted upload, in bytes.
	MaxFileSize = 10 * 1024 * 1024
	// MinTextLength is the minimum number of characters of trimmed text required to summarize.
	MinTextLength = 50
)

const (
	MessageFileTooLarge        = "File size too large. Maximum 10MB allowed."
	MessageInsufficientContent = "No sufficient text content found in the file. Minimum 50 characters required."
	MessageProcessingFailed    = "Error processing file"

	// ReasonInsufficientContent is stored as the summary of documents without enough text.
	ReasonInsufficientContent = "Insufficient text content found in the file"
)

var ErrTextTooShort = errors.New("text too short or empty")

type Store interface {
	DocumentCreate(ctx context.Context, fileName, userID string) (db.Document, error)
	DocumentComplete(ctx context.Context, id string, status db.Status, summary string) error
}

type Summarizer interface {
	Summarize(ctx context.Context, text string, p summarize.Params) (string, error)
}

func New(log *slog.Logger, store Store, summarizer Summarizer) *Pipeline {
	return &Pipeline{
		log:        log,
		store:      store,
		summarizer: summarizer,
		params:     summarize.DefaultParams,
	}
}

type Pipeline struct {
	log        *slog.Logger
	store      Store
	summarizer Summarizer
	params     summarize.Params
}

type Upload struct {
	UserID   string
	FileName string
	MIMEType string
	Size     int64
	Data     []byte
}

type Result struct {
	DocumentID string
	Summary    string
	// TextLength is the number of characters extracted from the file.
	TextLength int
	// FileType is the lower case extension of the file, e.g. ".txt".
	FileType string
}

// Validate checks the upload size and file type. It returns the lower case file extension.
func Validate(fileName string, size int64) (ext string, err error) {
	if size > MaxFileSize {
		return "", &Error{Kind: KindPayloadTooLarge, Message: MessageFileTooLarge}
	}
	ext = extract.Ext(fileName)
	supported := extract.SupportedExtensions()
	if !slices.Contains(supported, ext) {
		return "", &Error{
			Kind:    KindBadRequest,
			Message: fmt.Sprintf("Unsupported file type. Supported formats: %s", strings.Join(supported, ", ")),
		}
	}
	return ext, nil
}

// Run validates the upload, creates the document record, extracts the text,
// summarizes it and stores the result. Errors are of type *Error.
func (p *Pipeline) Run(ctx context.Context, u Upload) (r Result, err error) {
	ext, err := Validate(u.FileName, u.Size)
	if err != nil {
		return r, err
	}
	format, err := extract.Detect(u.FileName, u.MIMEType)
	if err != nil {
		return r, &Error{Kind: KindUnsupportedFormat, Message: err.Error(), Err: err}
	}

	// Once the record exists, the work must run to completion so that the
	// record reaches a terminal state, even if the client goes away.
	ctx = context.WithoutCancel(ctx)

	doc, err := p.store.DocumentCreate(ctx, u.FileName, u.UserID)
	if err != nil {
		return r, &Error{Kind: KindProcessingFailed, Message: MessageProcessingFailed, Err: fmt.Errorf("failed to create document record: %w", err)}
	}
	log := p.log.With(slog.String("documentId", doc.ID), slog.String("fileName", u.FileName))
	log.Info("document record created", slog.Int64("size", u.Size), slog.String("format", format.String()))

	text, err := extract.Text(ctx, format, u.Data)
	if err != nil {
		return r, p.fail(ctx, log, doc.ID, extractionKind(err), err)
	}
	textLength := utf8.RuneCountInString(text)
	log.Info("text extracted", slog.Int("length", textLength))

	if utf8.RuneCountInString(strings.TrimSpace(text)) < MinTextLength {
		e := &Error{
			Kind:            KindInsufficientContent,
			Message:         MessageInsufficientContent,
			Err:             ErrTextTooShort,
			ExtractedLength: textLength,
			DocumentID:      doc.ID,
		}
		e.Recorded = p.record(ctx, log, doc.ID, db.StatusFailed, ReasonInsufficientContent)
		return r, e
	}

	summary, err := p.summarizer.Summarize(ctx, text, p.params)
	if err != nil {
		return r, p.fail(ctx, log, doc.ID, KindInferenceFailure, err)
	}
	summary = strings.TrimSpace(summary)
	log.Info("summary generated", slog.Int("length", utf8.RuneCountInString(summary)))

	if err = p.store.DocumentComplete(ctx, doc.ID, db.StatusSuccess, summary); err != nil {
		return r, p.fail(ctx, log, doc.ID, KindProcessingFailed, fmt.Errorf("failed to store summary: %w", err))
	}

	return Result{
		DocumentID: doc.ID,
		Summary:    summary,
		TextLength: textLength,
		FileType:   ext,
	}, nil
}

func extractionKind(err error) Kind {
	var ufe *extract.UnsupportedFormatError
	if errors.As(err, &ufe) {
		return KindUnsupportedFormat
	}
	return KindExtractionFailure
}

func (p *Pipeline) fail(ctx context.Context, log *slog.Logger, id string, kind Kind, err error) *Error {
	log.Error("processing failed", slog.String("kind", string(kind)), slog.Any("error", err))
	return &Error{
		Kind:       kind,
		Message:    MessageProcessingFailed,
		Err:        err,
		DocumentID: id,
		Recorded:   p.record(ctx, log, id, db.StatusFailed, "Processing failed: "+err.Error()),
	}
}

// record completes the document. Failure to do so is logged, but is not returned,
// because the caller is already reporting the original error.
func (p *Pipeline) record(ctx context.Context, log *slog.Logger, id string, status db.Status, summary string) (ok bool) {
	if err := p.store.DocumentComplete(ctx, id, status, summary); err != nil {
		log.Error("failed to update document status", slog.String("status", string(status)), slog.Any("error", err))
		return false
	}
	return true
}
