package get

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/a-h/docsum/auth"
	"github.com/a-h/docsum/db"
	"github.com/a-h/docsum/models"
	"github.com/a-h/respond"
)

type HistoryStore interface {
	DocumentHistory(ctx context.Context, userID string) ([]db.HistoryEntry, error)
}

func New(log *slog.Logger, store HistoryStore) Handler {
	return Handler{
		log:   log,
		store: store,
	}
}

type Handler struct {
	log   *slog.Logger
	store HistoryStore
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUser(r)
	if !ok {
		respond.WithJSON(w, models.ErrorResponse{Message: "Unauthorized"}, http.StatusUnauthorized)
		return
	}

	entries, err := h.store.DocumentHistory(r.Context(), userID)
	if err != nil {
		h.log.Error("failed to fetch history", slog.String("userId", userID), slog.Any("error", err))
		respond.WithJSON(w, models.ErrorResponse{Message: "Failed to fetch History data"}, http.StatusInternalServerError)
		return
	}

	items := make([]models.HistoryItem, len(entries))
	for i, e := range entries {
		items[i] = models.HistoryItem{
			ID:        e.ID,
			FileName:  e.FileName,
			Summary:   e.Summary,
			CreatedAt: e.CreatedAt,
		}
	}
	respond.WithJSON(w, items, http.StatusOK)
}
