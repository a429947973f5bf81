package translate

import "context"

// Gateway converts text between languages. Implementations are opaque to the
// message channel: a failure degrades the message to untranslated, it never
// fails the send.
type Gateway interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}
