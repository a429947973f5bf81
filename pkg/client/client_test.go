package client_test

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/b4babl/backend/internal/handler"
	audioservice "github.com/b4babl/backend/internal/service/audio"
	babelservice "github.com/b4babl/backend/internal/service/babel"
	channelservice "github.com/b4babl/backend/internal/service/channel"
	registryservice "github.com/b4babl/backend/internal/service/registry"
	"github.com/b4babl/backend/internal/service/speech"
	"github.com/b4babl/backend/internal/service/translate"
	"github.com/b4babl/backend/internal/store/memory"
	"github.com/b4babl/backend/pkg/client"
)

func startBackend(t *testing.T) *httptest.Server {
	t.Helper()

	sessions := memory.NewSessionStore()
	queue := memory.NewAudioQueue()

	registry := registryservice.NewService(sessions)
	audio := audioservice.NewService(queue, &speech.StubSynthesizer{})
	channel := channelservice.NewService(sessions, translate.NewStaticGateway(nil), audio)
	babel := babelservice.NewService(memory.NewBabelStore())

	srv := httptest.NewServer(handler.NewRouter(registry, channel, audio, babel))
	t.Cleanup(srv.Close)
	return srv
}

func TestEndToEndSessionFlow(t *testing.T) {
	srv := startBackend(t)
	c := client.New(srv.URL)
	ctx := context.Background()

	created, err := c.CreateSession(ctx, client.CreateSessionRequest{
		UserA: "Alice",
		LangA: "English",
		LangB: "Spanish",
	})
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}
	if created.SessionCode == "" || created.Token == "" {
		t.Fatalf("unexpected create result: %+v", created)
	}

	joined, err := c.JoinSession(ctx, created.SessionCode, "Bob", "Spanish")
	if err != nil {
		t.Fatalf("JoinSession err: %v", err)
	}
	if joined.Config.UserB != "Bob" {
		t.Fatalf("unexpected join config: %+v", joined.Config)
	}

	sent, err := c.SendMessage(ctx, created.SessionCode, created.Token, "hello")
	if err != nil {
		t.Fatalf("SendMessage err: %v", err)
	}
	if sent.Translation == nil {
		t.Fatal("expected a translation from the static gateway")
	}

	polled, err := c.Messages(ctx, created.SessionCode, 1)
	if err != nil {
		t.Fatalf("Messages err: %v", err)
	}
	if len(polled.Messages) != 1 || polled.Messages[0].OriginalText != "hello" {
		t.Fatalf("unexpected messages: %+v", polled.Messages)
	}

	info, err := c.SessionInfo(ctx, created.SessionCode)
	if err != nil {
		t.Fatalf("SessionInfo err: %v", err)
	}
	if !info.Exists || info.Config.UserB != "Bob" {
		t.Fatalf("unexpected info: %+v", info)
	}
}

func TestSubscribeMessagesDeduplicates(t *testing.T) {
	srv := startBackend(t)
	c := client.New(srv.URL)
	ctx := context.Background()

	created, err := c.CreateSession(ctx, client.CreateSessionRequest{UserA: "Alice"})
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}
	if _, err := c.SendMessage(ctx, created.SessionCode, created.Token, "first"); err != nil {
		t.Fatalf("SendMessage err: %v", err)
	}

	var mu sync.Mutex
	var got []string
	sub := c.SubscribeMessages(ctx, created.SessionCode, 10*time.Millisecond, func(msg client.Message) {
		mu.Lock()
		got = append(got, msg.ID)
		mu.Unlock()
	})
	defer sub.Stop()

	// Let several poll ticks pass over the same single message.
	time.Sleep(100 * time.Millisecond)

	if _, err := c.SendMessage(ctx, created.SessionCode, created.Token, "second"); err != nil {
		t.Fatalf("SendMessage err: %v", err)
	}
	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 2 {
		t.Fatalf("expected exactly 2 deliveries, got %d: %v", len(got), got)
	}
	seen := map[string]bool{}
	for _, id := range got {
		if seen[id] {
			t.Fatalf("message %s delivered twice", id)
		}
		seen[id] = true
	}
}

func TestSubscribeMessagesSurvivesServerErrors(t *testing.T) {
	srv := startBackend(t)
	c := client.New(srv.URL)

	var mu sync.Mutex
	count := 0
	// Unknown session: every poll returns the {error, messages: []} shape.
	sub := c.SubscribeMessages(context.Background(), "NOPE42", 10*time.Millisecond, func(client.Message) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	time.Sleep(60 * time.Millisecond)
	sub.Stop()

	mu.Lock()
	defer mu.Unlock()
	if count != 0 {
		t.Fatalf("error polls must deliver nothing, got %d", count)
	}

	select {
	case <-sub.Done():
	default:
		t.Fatal("Stop must terminate the poll loop")
	}
}

func TestSubscribeAudioAdvancesCursor(t *testing.T) {
	srv := startBackend(t)
	c := client.New(srv.URL)
	ctx := context.Background()

	created, err := c.CreateSession(ctx, client.CreateSessionRequest{
		UserA:   "Alice",
		Audiate: true,
		VoiceB:  "voice-b",
	})
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}

	var mu sync.Mutex
	var items []client.AudioItem
	sub := c.SubscribeAudio(ctx, created.SessionCode, "User B", 10*time.Millisecond, func(item client.AudioItem) {
		mu.Lock()
		items = append(items, item)
		mu.Unlock()
	})
	defer sub.Stop()

	// Each translated send enqueues one playback item for B.
	if _, err := c.SendMessage(ctx, created.SessionCode, created.Token, "hello"); err != nil {
		t.Fatalf("SendMessage err: %v", err)
	}
	if _, err := c.SendMessage(ctx, created.SessionCode, created.Token, "again"); err != nil {
		t.Fatalf("SendMessage err: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		n := len(items)
		mu.Unlock()
		if n >= 2 || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(items) != 2 {
		t.Fatalf("expected 2 audio items, got %d", len(items))
	}
	if items[0].ID >= items[1].ID {
		t.Fatalf("ids must increase: %d then %d", items[0].ID, items[1].ID)
	}
}

func TestBabelRoundTrip(t *testing.T) {
	srv := startBackend(t)
	c := client.New(srv.URL)
	ctx := context.Background()

	for _, text := range []string{"r1", "r2", "r3"} {
		if err := c.SubmitBabelResponse(ctx, "Nadia", "en", text); err != nil {
			t.Fatalf("SubmitBabelResponse err: %v", err)
		}
	}

	responses, err := c.BabelResponses(ctx, 2)
	if err != nil {
		t.Fatalf("BabelResponses err: %v", err)
	}
	if len(responses) != 2 || responses[0].Response != "r3" || responses[1].Response != "r2" {
		t.Fatalf("unexpected responses: %+v", responses)
	}
}
