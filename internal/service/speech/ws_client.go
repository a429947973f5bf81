package speech

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// Config holds TTS endpoint settings.
type Config struct {
	BaseURL     string
	AppID       string
	AccessToken string
	Voice       string
	Format      string
	Timeout     time.Duration
}

// WSClient streams synthesis over the TTS provider's websocket endpoint.
// The server answers a single request with a sequence of JSON frames carrying
// base64 audio chunks; the frame marked final closes the job.
type WSClient struct {
	config Config
	dialer *websocket.Dialer
}

type ttsRequest struct {
	Text     string `json:"text"`
	Voice    string `json:"voice"`
	Language string `json:"language,omitempty"`
	Format   string `json:"format"`
}

type ttsFrame struct {
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
	Data    string `json:"data,omitempty"`
	Final   bool   `json:"final"`
}

// NewWSClient returns a websocket TTS client for the configured endpoint.
func NewWSClient(config Config) *WSClient {
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	return &WSClient{
		config: config,
		dialer: &websocket.Dialer{HandshakeTimeout: config.Timeout},
	}
}

func (c *WSClient) Synthesize(ctx context.Context, req Request) (*Response, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("tts text is empty")
	}

	voice := req.Voice
	if voice == "" {
		voice = c.config.Voice
	}
	format := req.Format
	if format == "" {
		format = c.config.Format
	}
	if format == "" {
		format = "mp3"
	}

	header := http.Header{}
	if c.config.AppID != "" {
		header.Set("X-App-Id", c.config.AppID)
	}
	if c.config.AccessToken != "" {
		header.Set("Authorization", "Bearer "+c.config.AccessToken)
	}

	dialCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	conn, resp, err := c.dialer.DialContext(dialCtx, c.config.BaseURL, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("tts handshake failed with status %d: %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("tts handshake failed: %w", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(c.config.Timeout)
	_ = conn.SetWriteDeadline(deadline)
	_ = conn.SetReadDeadline(deadline)

	if err := conn.WriteJSON(ttsRequest{
		Text:     req.Text,
		Voice:    voice,
		Language: req.Language,
		Format:   format,
	}); err != nil {
		return nil, fmt.Errorf("send tts request: %w", err)
	}

	var audio []byte
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		var frame ttsFrame
		if err := conn.ReadJSON(&frame); err != nil {
			return nil, fmt.Errorf("read tts frame: %w", err)
		}
		if frame.Code != 0 {
			return nil, fmt.Errorf("tts server error %d: %s", frame.Code, frame.Message)
		}
		if frame.Data != "" {
			chunk, err := base64.StdEncoding.DecodeString(frame.Data)
			if err != nil {
				return nil, fmt.Errorf("decode tts audio chunk: %w", err)
			}
			audio = append(audio, chunk...)
		}
		if frame.Final {
			break
		}
	}

	if len(audio) == 0 {
		return nil, fmt.Errorf("tts returned no audio")
	}
	return &Response{Audio: audio, Format: format}, nil
}
