package message

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/b4babl/backend/internal/service/channel"
	"github.com/b4babl/backend/internal/service/registry"
	"github.com/b4babl/backend/internal/service/translate"
	"github.com/b4babl/backend/internal/store/memory"
)

func setupRouter(t *testing.T) (*chi.Mux, string) {
	t.Helper()

	st := memory.NewSessionStore()
	reg := registry.NewService(st)

	created, err := reg.Create(t.Context(), registry.CreateRequest{
		Code:  "MSGS01",
		UserA: "Alice",
		LangA: "English",
		LangB: "Spanish",
	})
	if err != nil {
		t.Fatalf("Create err: %v", err)
	}

	ch := channel.NewService(st, translate.NewStaticGateway(nil), nil)
	handler := New(ch)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, created.TokenA
}

func TestSendAndPollRoundTrip(t *testing.T) {
	r, token := setupRouter(t)

	payload, _ := json.Marshal(map[string]string{"text": "hello", "token": token})
	req := httptest.NewRequest(http.MethodPost, "/session/MSGS01/messages", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var sendBody struct {
		Success     bool    `json:"success"`
		Row         int     `json:"row"`
		Translation *string `json:"translation"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &sendBody); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if !sendBody.Success || sendBody.Row != 2 || sendBody.Translation == nil {
		t.Fatalf("unexpected send body: %+v", sendBody)
	}

	pollReq := httptest.NewRequest(http.MethodGet, "/session/MSGS01/messages?lastRow=1", nil)
	pollResp := httptest.NewRecorder()
	r.ServeHTTP(pollResp, pollReq)
	if pollResp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", pollResp.Code)
	}

	var pollBody struct {
		Messages []struct {
			ID           string `json:"id"`
			OriginalText string `json:"originalText"`
		} `json:"messages"`
		LastRow int `json:"lastRow"`
	}
	if err := json.Unmarshal(pollResp.Body.Bytes(), &pollBody); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if len(pollBody.Messages) != 1 || pollBody.Messages[0].OriginalText != "hello" {
		t.Fatalf("unexpected poll body: %+v", pollBody)
	}
	if pollBody.LastRow != 2 {
		t.Fatalf("unexpected lastRow: %d", pollBody.LastRow)
	}
}

func TestPollMissingSessionKeepsMessagesField(t *testing.T) {
	r, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/session/NOPE42/messages", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}

	var body struct {
		Error    string        `json:"error"`
		Messages []interface{} `json:"messages"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if body.Error == "" || body.Messages == nil {
		t.Fatalf("error responses must carry an empty messages list: %s", resp.Body.String())
	}
}

func TestSendMissingSession(t *testing.T) {
	r, _ := setupRouter(t)

	payload, _ := json.Marshal(map[string]string{"text": "hi", "role": "A"})
	req := httptest.NewRequest(http.MethodPost, "/session/NOPE42/messages", bytes.NewReader(payload))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}
