package message

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/b4babl/backend/internal/model/message"
	"github.com/b4babl/backend/internal/service/channel"
	"github.com/b4babl/backend/internal/store"
	"github.com/b4babl/backend/pkg/utils"
)

// Handler serves message send and poll.
type Handler struct {
	channel *channel.Service
}

// New creates the message handler.
func New(ch *channel.Service) *Handler {
	return &Handler{channel: ch}
}

// RegisterRoutes mounts the message routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session/{code}/messages", h.handleSend)
	r.Get("/session/{code}/messages", h.handleList)
}

func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	var payload struct {
		Text  string `json:"text"`
		Token string `json:"token"`
		Role  string `json:"role"`
		From  string `json:"from"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.channel.Send(r.Context(), code, channel.SendRequest{
		Text:  payload.Text,
		Token: payload.Token,
		Role:  payload.Role,
		From:  payload.From,
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrSessionNotFound):
			utils.RespondError(w, http.StatusNotFound, "session not found")
		case errors.Is(err, channel.ErrEmptyMessage):
			utils.RespondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, channel.ErrBadToken):
			utils.RespondError(w, http.StatusForbidden, err.Error())
		default:
			utils.RespondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"row":         result.Row,
		"translation": result.Translation,
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	sinceRow := 1
	if raw := r.URL.Query().Get("lastRow"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			sinceRow = parsed
		}
	}

	result, err := h.channel.Messages(r.Context(), code, sinceRow)
	if err != nil {
		status := http.StatusInternalServerError
		msg := err.Error()
		if errors.Is(err, store.ErrSessionNotFound) {
			status = http.StatusNotFound
			msg = "session not found"
		}
		// Polling clients expect the messages field even on failure.
		utils.RespondJSON(w, status, map[string]interface{}{
			"error":    msg,
			"messages": []message.Message{},
		})
		return
	}

	utils.RespondJSON(w, http.StatusOK, result)
}
