package translate

import "context"

// StaticGateway is a dictionary-backed Gateway used when no model credentials
// are configured and in tests. Unknown phrases come back tagged with the
// target language so the pipeline stays observable offline.
type StaticGateway struct {
	// dictionary maps target language -> source text -> translation.
	dictionary map[string]map[string]string
}

// NewStaticGateway returns a gateway over the supplied dictionary, which may
// be nil.
func NewStaticGateway(dictionary map[string]map[string]string) *StaticGateway {
	return &StaticGateway{dictionary: dictionary}
}

func (g *StaticGateway) Translate(_ context.Context, text, _, targetLang string) (string, error) {
	if byText, ok := g.dictionary[targetLang]; ok {
		if translated, ok := byText[text]; ok {
			return translated, nil
		}
	}
	return "[" + targetLang + "] " + text, nil
}
