package babel

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	babelservice "github.com/b4babl/backend/internal/service/babel"
	"github.com/b4babl/backend/pkg/utils"
)

// Handler serves the Babel story log.
type Handler struct {
	babel *babelservice.Service
}

// New creates the Babel handler.
func New(svc *babelservice.Service) *Handler {
	return &Handler{babel: svc}
}

// RegisterRoutes mounts the Babel routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/babel", h.handleSubmit)
	r.Get("/babel", h.handleRecent)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name     string `json:"name"`
		Language string `json:"language"`
		Response string `json:"response"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.babel.Submit(r.Context(), payload.Name, payload.Language, payload.Response); err != nil {
		if errors.Is(err, babelservice.ErrEmptyResponse) {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) handleRecent(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	responses, err := h.babel.Recent(r.Context(), limit)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{"responses": responses})
}
