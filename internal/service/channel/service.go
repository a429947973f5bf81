package channel

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/b4babl/backend/internal/model/message"
	"github.com/b4babl/backend/internal/model/session"
	"github.com/b4babl/backend/internal/service/translate"
	"github.com/b4babl/backend/internal/store"
)

var (
	ErrEmptyMessage = errors.New("message text is empty")
	ErrBadToken     = errors.New("unknown participant token")
)

// Notifier is told about successful translations so audio can be synthesized
// for the other participant.
type Notifier interface {
	TranslationReady(ctx context.Context, rec session.Record, from message.Side, translated string)
}

// Service is the message channel: it appends outbound messages, runs the
// translation inline and serves the cursor-based poll reads.
type Service struct {
	store    store.SessionStore
	gateway  translate.Gateway
	notifier Notifier
}

// NewService returns a message channel. notifier may be nil when audio
// playback is disabled.
func NewService(st store.SessionStore, gateway translate.Gateway, notifier Notifier) *Service {
	return &Service{store: st, gateway: gateway, notifier: notifier}
}

// SendRequest identifies the sender and carries the outbound text. Token is
// authoritative when present; Role and From are fallbacks for tokenless
// clients.
type SendRequest struct {
	Text  string
	Token string
	Role  string
	From  string
}

// SendResult reports the allocated row and the translation, which is nil when
// the gateway failed. The message itself is persisted either way.
type SendResult struct {
	Row         int
	Translation *string
}

// Send appends the message into the sender's next free row slot and
// translates it for the other participant.
func (s *Service) Send(ctx context.Context, code string, req SendRequest) (SendResult, error) {
	if strings.TrimSpace(req.Text) == "" {
		return SendResult{}, ErrEmptyMessage
	}

	rec, err := s.store.GetSession(ctx, code)
	if err != nil {
		return SendResult{}, err
	}

	side, err := resolveSide(rec, req)
	if err != nil {
		return SendResult{}, err
	}

	slot := message.Slot{Text: req.Text, SentAt: time.Now().UTC()}
	row, err := s.store.AppendSlot(ctx, code, side, slot)
	if err != nil {
		return SendResult{}, err
	}

	result := SendResult{Row: row}

	sourceLang, targetLang := rec.Config.LangA, rec.Config.LangB
	if side == message.SideB {
		sourceLang, targetLang = rec.Config.LangB, rec.Config.LangA
	}

	translated, err := s.gateway.Translate(ctx, req.Text, sourceLang, targetLang)
	if err != nil {
		// Degrade to an untranslated message; the send already succeeded.
		log.Printf("[channel] translation failed for session=%s row=%d: %v", code, row, err)
		return result, nil
	}

	if err := s.store.SetTranslation(ctx, code, row, side, translated); err != nil {
		log.Printf("[channel] storing translation failed for session=%s row=%d: %v", code, row, err)
	}
	result.Translation = &translated

	if rec.Config.Audiate && s.notifier != nil {
		s.notifier.TranslationReady(ctx, rec, side, translated)
	}
	return result, nil
}

// resolveSide picks the sender's side: participant token first, then the
// explicit role, then the display-name match, defaulting to B.
func resolveSide(rec session.Record, req SendRequest) (message.Side, error) {
	if req.Token != "" {
		switch req.Token {
		case rec.TokenA:
			return message.SideA, nil
		case rec.TokenB:
			return message.SideB, nil
		}
		return "", ErrBadToken
	}
	if req.Role == string(message.SideA) || req.From == rec.Config.UserA {
		return message.SideA, nil
	}
	return message.SideB, nil
}

// MessagesResult is the poll response. LastRow is the next poll's cursor
// floor; Config is echoed so clients pick up a late join without an extra
// call.
type MessagesResult struct {
	Messages []message.Message `json:"messages"`
	LastRow  int               `json:"lastRow"`
	Config   session.Config    `json:"config"`
}

// Messages returns every populated slot in rows numbered above
// max(1, sinceRow), sorted ascending by timestamp.
func (s *Service) Messages(ctx context.Context, code string, sinceRow int) (MessagesResult, error) {
	rec, err := s.store.GetSession(ctx, code)
	if err != nil {
		return MessagesResult{}, err
	}

	rows, err := s.store.Rows(ctx, code)
	if err != nil {
		return MessagesResult{}, err
	}

	floor := sinceRow
	if floor < 1 {
		floor = 1
	}

	messages := []message.Message{}
	for i, row := range rows {
		rowNum := i + 2
		if rowNum <= floor {
			continue
		}
		if row.A != nil && row.A.Text != "" {
			messages = append(messages, flatten(code, rowNum, message.SideA, *row.A, rec.Config))
		}
		if row.B != nil && row.B.Text != "" {
			messages = append(messages, flatten(code, rowNum, message.SideB, *row.B, rec.Config))
		}
	}

	// RFC3339 strings compare chronologically; unknown (empty) timestamps
	// sort first rather than masquerading as "now".
	sort.SliceStable(messages, func(i, j int) bool {
		if messages[i].Timestamp != messages[j].Timestamp {
			return messages[i].Timestamp < messages[j].Timestamp
		}
		return messages[i].Row < messages[j].Row
	})

	return MessagesResult{
		Messages: messages,
		LastRow:  len(rows) + 1,
		Config:   rec.Config,
	}, nil
}

func flatten(code string, row int, side message.Side, slot message.Slot, cfg session.Config) message.Message {
	from, fromLang, toLang := cfg.UserA, cfg.LangCodeA, cfg.LangCodeB
	if side == message.SideB {
		from, fromLang, toLang = cfg.UserB, cfg.LangCodeB, cfg.LangCodeA
	}

	timestamp := ""
	if !slot.SentAt.IsZero() {
		timestamp = slot.SentAt.UTC().Format(time.RFC3339)
	}

	return message.Message{
		ID:             message.ID(code, row, side),
		Row:            row,
		From:           from,
		OriginalText:   slot.Text,
		TranslatedText: slot.Translated,
		FromLanguage:   fromLang,
		ToLanguage:     toLang,
		Timestamp:      timestamp,
		Side:           side,
	}
}
