package audio

import (
	"context"
	"encoding/base64"
	"log"

	"github.com/b4babl/backend/internal/model/audio"
	"github.com/b4babl/backend/internal/model/message"
	"github.com/b4babl/backend/internal/model/session"
	"github.com/b4babl/backend/internal/service/speech"
	"github.com/b4babl/backend/internal/store"
)

// Service serves the playback queue and feeds it from finished translations.
type Service struct {
	queue store.AudioQueue
	synth speech.Synthesizer
}

// NewService returns an audio service. synth may be nil, which disables
// enqueueing; polling still works against whatever the queue holds.
func NewService(queue store.AudioQueue, synth speech.Synthesizer) *Service {
	return &Service{queue: queue, synth: synth}
}

// Poll returns items newer than sinceID addressed to the listener. LastID is
// the highest returned id, or sinceID unchanged when nothing is new.
func (s *Service) Poll(ctx context.Context, code, listener string, sinceID int64) (audio.QueueResponse, error) {
	items, err := s.queue.After(ctx, code, listener, sinceID)
	if err != nil {
		return audio.QueueResponse{}, err
	}

	resp := audio.QueueResponse{Queue: items, LastID: sinceID}
	if len(items) > 0 {
		resp.LastID = items[len(items)-1].ID
	}
	if resp.Queue == nil {
		resp.Queue = []audio.Item{}
	}
	return resp, nil
}

// TranslationReady synthesizes the translated text with the listening
// participant's voice and appends it to the session queue. Failures are
// logged and dropped; playback is best-effort.
func (s *Service) TranslationReady(ctx context.Context, rec session.Record, from message.Side, translated string) {
	if s.synth == nil {
		return
	}

	sender, listener := rec.Config.UserA, rec.Config.UserB
	voice, language := rec.Config.VoiceB, rec.Config.LangCodeB
	if from == message.SideB {
		sender, listener = rec.Config.UserB, rec.Config.UserA
		voice, language = rec.Config.VoiceA, rec.Config.LangCodeA
	}

	resp, err := s.synth.Synthesize(ctx, speech.Request{
		Text:     translated,
		Voice:    voice,
		Language: language,
	})
	if err != nil {
		log.Printf("[audio] synthesis failed for session=%s: %v", rec.Code, err)
		return
	}

	item := audio.Item{
		Listener: listener,
		AudioURL: dataURL(resp),
		Message:  translated,
		From:     sender,
	}
	if _, err := s.queue.Enqueue(ctx, rec.Code, item); err != nil {
		log.Printf("[audio] enqueue failed for session=%s: %v", rec.Code, err)
	}
}

// dataURL inlines the audio as a data URI so clients can play it without a
// separate file host.
func dataURL(resp *speech.Response) string {
	mime := "audio/mpeg"
	switch resp.Format {
	case "wav":
		mime = "audio/wav"
	case "ogg":
		mime = "audio/ogg"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(resp.Audio)
}
