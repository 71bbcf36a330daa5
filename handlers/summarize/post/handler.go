package post

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/a-h/docsum/auth"
	"github.com/a-h/docsum/models"
	"github.com/a-h/docsum/pipeline"
	"github.com/a-h/respond"
)

// maxRequestSize allows for the multipart encoding around a file of the maximum size.
const maxRequestSize = pipeline.MaxFileSize + 1024*1024

// maxMemory is the amount of the form held in memory before parts are written to disk.
const maxMemory = 32 << 20

type Runner interface {
	Run(ctx context.Context, u pipeline.Upload) (pipeline.Result, error)
}

func New(log *slog.Logger, runner Runner) Handler {
	return Handler{
		log:    log,
		runner: runner,
	}
}

type Handler struct {
	log    *slog.Logger
	runner Runner
}

func ptr[T any](v T) *T {
	return &v
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUser(r)
	if !ok {
		respond.WithJSON(w, models.ErrorResponse{Message: "Unauthorized"}, http.StatusUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestSize)
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			respond.WithJSON(w, models.ErrorResponse{Message: pipeline.MessageFileTooLarge}, http.StatusRequestEntityTooLarge)
			return
		}
		h.log.Warn("failed to parse form data", slog.Any("error", err))
		respond.WithJSON(w, models.ErrorResponse{
			Message: "Failed to parse form data. File might be too large or corrupted.",
			Error:   err.Error(),
		}, http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	f, fh, err := r.FormFile("file")
	if err != nil {
		respond.WithJSON(w, models.ErrorResponse{Message: "No file uploaded"}, http.StatusBadRequest)
		return
	}
	defer f.Close()

	if _, err = pipeline.Validate(fh.Filename, fh.Size); err != nil {
		h.writeError(w, err)
		return
	}

	data, err := io.ReadAll(f)
	if err != nil {
		h.log.Error("failed to read uploaded file", slog.Any("error", err))
		respond.WithJSON(w, models.ErrorResponse{
			Success: ptr(false),
			Message: pipeline.MessageProcessingFailed,
			Error:   err.Error(),
		}, http.StatusInternalServerError)
		return
	}

	result, err := h.runner.Run(r.Context(), pipeline.Upload{
		UserID:   userID,
		FileName: fh.Filename,
		MIMEType: fh.Header.Get("Content-Type"),
		Size:     fh.Size,
		Data:     data,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	respond.WithJSON(w, models.SummarizePostResponse{
		Success:    true,
		Summary:    result.Summary,
		DocumentID: result.DocumentID,
		FileInfo: models.FileInfo{
			Name:       fh.Filename,
			Size:       fh.Size,
			TextLength: result.TextLength,
			FileType:   result.FileType,
		},
	}, http.StatusOK)
}

func (h Handler) writeError(w http.ResponseWriter, err error) {
	var pe *pipeline.Error
	if !errors.As(err, &pe) {
		h.log.Error("unexpected error", slog.Any("error", err))
		respond.WithJSON(w, models.ErrorResponse{
			Success: ptr(false),
			Message: pipeline.MessageProcessingFailed,
			Error:   err.Error(),
		}, http.StatusInternalServerError)
		return
	}
	if pe.DocumentID != "" && !pe.Recorded {
		h.log.Error("document failure was not recorded", slog.String("documentId", pe.DocumentID), slog.String("kind", string(pe.Kind)))
	}
	status := pe.Kind.StatusCode()
	switch {
	case pe.Kind == pipeline.KindInsufficientContent:
		respond.WithJSON(w, models.ErrorResponse{
			Success:         ptr(false),
			Message:         pe.Message,
			Error:           pe.Cause(),
			ExtractedLength: ptr(pe.ExtractedLength),
		}, status)
	case status >= http.StatusInternalServerError:
		respond.WithJSON(w, models.ErrorResponse{
			Success: ptr(false),
			Message: pe.Message,
			Error:   pe.Cause(),
		}, status)
	default:
		respond.WithJSON(w, models.ErrorResponse{Message: pe.Message}, status)
	}
}
