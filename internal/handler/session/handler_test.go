package session

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/b4babl/backend/internal/service/registry"
	"github.com/b4babl/backend/internal/store/memory"
)

func setupRouter() *chi.Mux {
	reg := registry.NewService(memory.NewSessionStore())
	handler := New(reg)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r
}

func postJSON(t *testing.T, r http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestCreateSession(t *testing.T) {
	r := setupRouter()

	resp := postJSON(t, r, "/session", map[string]interface{}{
		"sessionCode": "HTTP01",
		"name":        "Alice",
		"language":    "English",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var body struct {
		Success     bool   `json:"success"`
		SessionCode string `json:"sessionCode"`
		Token       string `json:"token"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if !body.Success || body.SessionCode != "HTTP01" || body.Token == "" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestCreateSessionDuplicate(t *testing.T) {
	r := setupRouter()

	if resp := postJSON(t, r, "/session", map[string]string{"sessionCode": "HTTP02"}); resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}
	resp := postJSON(t, r, "/session", map[string]string{"sessionCode": "HTTP02"})
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.Code)
	}
}

func TestCreateSessionMalformedBody(t *testing.T) {
	r := setupRouter()

	req := httptest.NewRequest(http.MethodPost, "/session", bytes.NewReader([]byte("{not json")))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestJoinAndInfo(t *testing.T) {
	r := setupRouter()

	if resp := postJSON(t, r, "/session", map[string]string{"sessionCode": "HTTP03", "name": "Alice"}); resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}

	resp := postJSON(t, r, "/session/HTTP03/join", map[string]string{"name": "Bob", "language": "Spanish"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var joinBody struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
		Config  struct {
			UserB       string `json:"userB"`
			UserBJoined bool   `json:"userBJoined"`
		} `json:"config"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &joinBody); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if !joinBody.Success || joinBody.Config.UserB != "Bob" || !joinBody.Config.UserBJoined {
		t.Fatalf("unexpected join body: %+v", joinBody)
	}
	if joinBody.Token == "" {
		t.Fatal("first join should return a token")
	}

	infoReq := httptest.NewRequest(http.MethodGet, "/session/HTTP03", nil)
	infoResp := httptest.NewRecorder()
	r.ServeHTTP(infoResp, infoReq)
	if infoResp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", infoResp.Code)
	}

	var infoBody struct {
		Exists bool `json:"exists"`
		Config struct {
			UserB string `json:"userB"`
		} `json:"config"`
	}
	if err := json.Unmarshal(infoResp.Body.Bytes(), &infoBody); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if !infoBody.Exists || infoBody.Config.UserB != "Bob" {
		t.Fatalf("unexpected info body: %+v", infoBody)
	}
}

func TestInfoMissingSession(t *testing.T) {
	r := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/session/NOPE42", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}

	var body struct {
		Exists bool   `json:"exists"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if body.Exists || body.Error == "" {
		t.Fatalf("unexpected body: %+v", body)
	}
}
