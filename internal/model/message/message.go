package message

import (
	"fmt"
	"time"
)

// Side identifies which participant a slot belongs to.
type Side string

const (
	SideA Side = "A"
	SideB Side = "B"
)

// Other returns the opposite side.
func (s Side) Other() Side {
	if s == SideA {
		return SideB
	}
	return SideA
}

// Slot is one participant's half of a conversation row. A slot is written
// once on send and mutated once more when the translation lands.
type Slot struct {
	Text       string    `json:"text" bson:"text"`
	Translated string    `json:"translated" bson:"translated"`
	SentAt     time.Time `json:"sentAt" bson:"sentAt"`
}

// Row pairs both participants' slots at the same row index.
type Row struct {
	A *Slot `json:"a,omitempty" bson:"a,omitempty"`
	B *Slot `json:"b,omitempty" bson:"b,omitempty"`
}

// Slot returns the slot for the given side, which may be nil.
func (r Row) Slot(side Side) *Slot {
	if side == SideA {
		return r.A
	}
	return r.B
}

// Message is the flattened per-slot view returned to polling clients.
// Timestamp is RFC3339, or empty when the stored send time is unknown.
type Message struct {
	ID             string `json:"id"`
	Row            int    `json:"row"`
	From           string `json:"from"`
	OriginalText   string `json:"originalText"`
	TranslatedText string `json:"translatedText"`
	FromLanguage   string `json:"fromLanguage"`
	ToLanguage     string `json:"toLanguage"`
	Timestamp      string `json:"timestamp"`
	Side           Side   `json:"side"`
}

// ID builds the client-facing message identifier for a row slot.
func ID(code string, row int, side Side) string {
	return fmt.Sprintf("%s_%d_%s", code, row, side)
}
