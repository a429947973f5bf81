// Package client is a Go client for the b4babl backend. It wraps the HTTP
// API and provides the polling subscriptions the web app runs in the browser.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Config mirrors the server-side session configuration blob.
type Config struct {
	UserA       string `json:"userA"`
	UserB       string `json:"userB"`
	LangA       string `json:"langA"`
	LangB       string `json:"langB"`
	LangCodeA   string `json:"langCodeA"`
	LangCodeB   string `json:"langCodeB"`
	Audiate     bool   `json:"audiate,omitempty"`
	UserBJoined bool   `json:"userBJoined"`
}

// Message is one translated chat entry.
type Message struct {
	ID             string `json:"id"`
	Row            int    `json:"row"`
	From           string `json:"from"`
	OriginalText   string `json:"originalText"`
	TranslatedText string `json:"translatedText"`
	FromLanguage   string `json:"fromLanguage"`
	ToLanguage     string `json:"toLanguage"`
	Timestamp      string `json:"timestamp"`
	Side           string `json:"side"`
}

// AudioItem is one playback queue entry. Played is client-local state.
type AudioItem struct {
	ID       int64  `json:"id"`
	AudioURL string `json:"audioUrl"`
	Message  string `json:"message"`
	From     string `json:"from"`
	Played   bool   `json:"played,omitempty"`
}

// BabelResponse is one story log entry.
type BabelResponse struct {
	Name      string    `json:"name"`
	Language  string    `json:"language"`
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp"`
}

// Client talks to a b4babl backend instance.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for the given base URL (for example
// "http://localhost:8080").
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// CreateSessionRequest carries session creation parameters. Zero values take
// server-side defaults.
type CreateSessionRequest struct {
	SessionCode string `json:"sessionCode,omitempty"`
	UserA       string `json:"userA,omitempty"`
	UserB       string `json:"userB,omitempty"`
	LangA       string `json:"langA,omitempty"`
	LangB       string `json:"langB,omitempty"`
	Audiate     bool   `json:"audiate,omitempty"`
	VoiceA      string `json:"voiceA,omitempty"`
	VoiceB      string `json:"voiceB,omitempty"`
}

// SessionResult is returned from create and join calls. Token authenticates
// this participant on sends.
type SessionResult struct {
	Success     bool   `json:"success"`
	SessionCode string `json:"sessionCode"`
	Token       string `json:"token"`
	Config      Config `json:"config"`
}

// CreateSession creates a new session as participant A.
func (c *Client) CreateSession(ctx context.Context, req CreateSessionRequest) (SessionResult, error) {
	var result SessionResult
	err := c.post(ctx, "/api/session", req, &result)
	return result, err
}

// JoinSession joins an existing session as participant B.
func (c *Client) JoinSession(ctx context.Context, code, name, language string) (SessionResult, error) {
	var result SessionResult
	err := c.post(ctx, "/api/session/"+url.PathEscape(code)+"/join", map[string]string{
		"name":     name,
		"language": language,
	}, &result)
	return result, err
}

// InfoResult is the session lookup response.
type InfoResult struct {
	SessionCode string `json:"sessionCode"`
	Config      Config `json:"config"`
	Exists      bool   `json:"exists"`
}

// SessionInfo fetches the configuration for a session code.
func (c *Client) SessionInfo(ctx context.Context, code string) (InfoResult, error) {
	var result InfoResult
	err := c.get(ctx, "/api/session/"+url.PathEscape(code), nil, &result)
	return result, err
}

// SendResult reports the allocated row; Translation is nil when the gateway
// failed and the message went out untranslated.
type SendResult struct {
	Success     bool    `json:"success"`
	Row         int     `json:"row"`
	Translation *string `json:"translation"`
}

// SendMessage appends a message using the participant token issued at
// create/join time.
func (c *Client) SendMessage(ctx context.Context, code, token, text string) (SendResult, error) {
	var result SendResult
	err := c.post(ctx, "/api/session/"+url.PathEscape(code)+"/messages", map[string]string{
		"text":  text,
		"token": token,
	}, &result)
	return result, err
}

// MessagesResult is the message poll response.
type MessagesResult struct {
	Messages []Message `json:"messages"`
	LastRow  int       `json:"lastRow"`
	Config   Config    `json:"config"`
	Error    string    `json:"error,omitempty"`
}

// Messages fetches messages in rows above sinceRow.
func (c *Client) Messages(ctx context.Context, code string, sinceRow int) (MessagesResult, error) {
	var result MessagesResult
	err := c.get(ctx, "/api/session/"+url.PathEscape(code)+"/messages", url.Values{
		"lastRow": {fmt.Sprint(sinceRow)},
	}, &result)
	return result, err
}

// AudioQueueResult is the audio poll response.
type AudioQueueResult struct {
	Queue  []AudioItem `json:"queue"`
	LastID int64       `json:"lastId"`
}

// AudioQueue fetches playback items with id > sinceID for the listener.
func (c *Client) AudioQueue(ctx context.Context, code, listener string, sinceID int64) (AudioQueueResult, error) {
	var result AudioQueueResult
	err := c.get(ctx, "/api/session/"+url.PathEscape(code)+"/audio", url.Values{
		"listener": {listener},
		"lastId":   {fmt.Sprint(sinceID)},
	}, &result)
	return result, err
}

// SubmitBabelResponse appends one story response.
func (c *Client) SubmitBabelResponse(ctx context.Context, name, language, text string) error {
	var result struct {
		Success bool `json:"success"`
	}
	return c.post(ctx, "/api/babel", map[string]string{
		"name":     name,
		"language": language,
		"response": text,
	}, &result)
}

// BabelResponses fetches the newest story responses, most recent first.
func (c *Client) BabelResponses(ctx context.Context, limit int) ([]BabelResponse, error) {
	var result struct {
		Responses []BabelResponse `json:"responses"`
	}
	err := c.get(ctx, "/api/babel", url.Values{"limit": {fmt.Sprint(limit)}}, &result)
	return result.Responses, err
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error != "" {
			return fmt.Errorf("api error (status %d): %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("api error: status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
