package audio

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	audioservice "github.com/b4babl/backend/internal/service/audio"
	"github.com/b4babl/backend/pkg/utils"
)

// Handler serves the playback queue poll.
type Handler struct {
	audio *audioservice.Service
}

// New creates the audio handler.
func New(svc *audioservice.Service) *Handler {
	return &Handler{audio: svc}
}

// RegisterRoutes mounts the audio routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/session/{code}/audio", h.handleQueue)
}

func (h *Handler) handleQueue(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	listener := r.URL.Query().Get("listener")
	if listener == "" {
		utils.RespondError(w, http.StatusBadRequest, "listener query parameter is required")
		return
	}

	var sinceID int64
	if raw := r.URL.Query().Get("lastId"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil {
			sinceID = parsed
		}
	}

	result, err := h.audio.Poll(r.Context(), code, listener, sinceID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, result)
}
