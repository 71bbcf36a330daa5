package get

import (
	"log/slog"
	"net/http"

	"github.com/a-h/docsum/auth"
	"github.com/a-h/docsum/models"
	"github.com/a-h/respond"
)

func New(log *slog.Logger) Handler {
	return Handler{
		log: log,
	}
}

// Handler reports whether the API is up, and who the caller is.
type Handler struct {
	log *slog.Logger
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp := models.SummarizeGetResponse{
		Message: "Summarize API is working",
		Method:  http.MethodGet,
	}
	if s, ok := auth.GetSession(r); ok {
		u := s.Model().User
		resp.Authenticated = true
		resp.User = &u
	}
	respond.WithJSON(w, resp, http.StatusOK)
}
