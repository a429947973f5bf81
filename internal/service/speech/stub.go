package speech

import "context"

// StubSynthesizer returns deterministic audio for tests and offline runs.
type StubSynthesizer struct {
	// Err, when set, is returned from every call.
	Err error
}

func (s *StubSynthesizer) Synthesize(_ context.Context, req Request) (*Response, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	format := req.Format
	if format == "" {
		format = "mp3"
	}
	return &Response{Audio: []byte("audio:" + req.Voice + ":" + req.Text), Format: format}, nil
}
