package session

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/b4babl/backend/internal/service/registry"
	"github.com/b4babl/backend/internal/store"
	"github.com/b4babl/backend/pkg/utils"
)

// Handler serves session creation, join and lookup.
type Handler struct {
	registry *registry.Service
}

// New creates the session handler.
func New(reg *registry.Service) *Handler {
	return &Handler{registry: reg}
}

// RegisterRoutes mounts the session routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session", h.handleCreate)
	r.Get("/session/{code}", h.handleInfo)
	r.Post("/session/{code}/join", h.handleJoin)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SessionCode string `json:"sessionCode"`
		Name        string `json:"name"`
		UserA       string `json:"userA"`
		UserB       string `json:"userB"`
		Language    string `json:"language"`
		LangA       string `json:"langA"`
		LangB       string `json:"langB"`
		Audiate     bool   `json:"audiate"`
		VoiceA      string `json:"voiceA"`
		VoiceB      string `json:"voiceB"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Older clients send name/language instead of userA/langA.
	if payload.UserA == "" {
		payload.UserA = payload.Name
	}
	if payload.LangA == "" {
		payload.LangA = payload.Language
	}

	result, err := h.registry.Create(r.Context(), registry.CreateRequest{
		Code:    payload.SessionCode,
		UserA:   payload.UserA,
		UserB:   payload.UserB,
		LangA:   payload.LangA,
		LangB:   payload.LangB,
		Audiate: payload.Audiate,
		VoiceA:  payload.VoiceA,
		VoiceB:  payload.VoiceB,
	})
	if err != nil {
		if errors.Is(err, store.ErrSessionExists) {
			utils.RespondJSON(w, http.StatusConflict, map[string]interface{}{
				"error":       "session already exists",
				"sessionCode": payload.SessionCode,
			})
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"success":     true,
		"sessionCode": result.Code,
		"token":       result.TokenA,
		"config":      result.Config,
	})
}

func (h *Handler) handleJoin(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	var payload struct {
		Name     string `json:"name"`
		Language string `json:"language"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.registry.Join(r.Context(), code, payload.Name, payload.Language)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			utils.RespondError(w, http.StatusNotFound, "session not found: "+code)
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	response := map[string]interface{}{
		"success":     true,
		"sessionCode": code,
		"config":      result.Config,
	}
	if result.TokenB != "" {
		response["token"] = result.TokenB
	}
	utils.RespondJSON(w, http.StatusOK, response)
}

func (h *Handler) handleInfo(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	config, err := h.registry.Info(r.Context(), code)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			utils.RespondJSON(w, http.StatusNotFound, map[string]interface{}{
				"error":  "session not found",
				"exists": false,
			})
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"sessionCode": code,
		"config":      config,
		"exists":      true,
	})
}
