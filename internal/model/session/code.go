package session

import "math/rand/v2"

// codeAlphabet excludes visually ambiguous glyphs (I, O, 0, 1) so codes
// survive being read aloud or copied by hand.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// CodeLength is the fixed length of generated session codes.
const CodeLength = 6

// NewCode draws a fresh session code. Uniqueness is not checked here; the
// registry retries on a store collision.
func NewCode() string {
	buf := make([]byte, CodeLength)
	for i := range buf {
		buf[i] = codeAlphabet[rand.IntN(len(codeAlphabet))]
	}
	return string(buf)
}
