package speech

import "context"

// Request describes one synthesis job.
type Request struct {
	Text     string
	Voice    string
	Language string
	Format   string
}

// Response carries the synthesized audio. Format is the container actually
// produced, which may differ from the requested one.
type Response struct {
	Audio  []byte
	Format string
}

// Synthesizer turns translated text into playable audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, req Request) (*Response, error)
}
