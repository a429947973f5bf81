package store

import (
	"context"
	"errors"

	"github.com/b4babl/backend/internal/model/audio"
	"github.com/b4babl/backend/internal/model/babel"
	"github.com/b4babl/backend/internal/model/message"
	"github.com/b4babl/backend/internal/model/session"
)

var (
	ErrSessionExists   = errors.New("session already exists")
	ErrSessionNotFound = errors.New("session not found")
)

// SessionStore persists session records and their conversation rows.
// Implementations must serialize writes per session code so that
// AppendSlot allocates each row slot at most once.
type SessionStore interface {
	// CreateSession inserts a fresh record, failing with ErrSessionExists
	// when the code is already taken.
	CreateSession(ctx context.Context, rec session.Record) error

	// GetSession returns the record for a code or ErrSessionNotFound.
	GetSession(ctx context.Context, code string) (session.Record, error)

	// UpdateConfig applies update to the stored record under the session's
	// write serialization. The callback sees the current record and mutates
	// it in place.
	UpdateConfig(ctx context.Context, code string, update func(*session.Record)) (session.Record, error)

	// AppendSlot writes the slot into the first row whose side column is
	// empty, extending the table when every existing row is taken. It
	// returns the 1-based row number (row 1 is the config header, so
	// content rows start at 2).
	AppendSlot(ctx context.Context, code string, side message.Side, slot message.Slot) (int, error)

	// SetTranslation fills the translation cell of an existing slot.
	SetTranslation(ctx context.Context, code string, row int, side message.Side, translated string) error

	// Rows returns every conversation row in table order.
	Rows(ctx context.Context, code string) ([]message.Row, error)
}

// AudioQueue stores synthesized playback items, partitioned by session code.
// IDs are allocated monotonically within a session and never reused.
type AudioQueue interface {
	Enqueue(ctx context.Context, code string, item audio.Item) (int64, error)

	// After returns items with id > sinceID addressed to listener, in id
	// order.
	After(ctx context.Context, code, listener string, sinceID int64) ([]audio.Item, error)
}

// BabelStore is the global append-only story-response log.
type BabelStore interface {
	Append(ctx context.Context, resp babel.Response) error

	// Recent returns up to limit entries, newest first.
	Recent(ctx context.Context, limit int) ([]babel.Response, error)
}
