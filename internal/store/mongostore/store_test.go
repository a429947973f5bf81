package mongostore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/b4babl/backend/internal/model/message"
	"github.com/b4babl/backend/internal/model/session"
	"github.com/b4babl/backend/internal/store"
)

// Integration tests, gated on a live MongoDB:
//
//	TEST_MONGO_URI=mongodb://localhost:27017 go test ./internal/store/mongostore/
func testStore(t *testing.T) *SessionStore {
	t.Helper()

	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set, skipping Mongo integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("mongo connect failed: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		t.Fatalf("mongo ping failed: %v", err)
	}
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	st := NewSessionStore(client, "b4babl_test")
	if err := st.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes err: %v", err)
	}
	return st
}

func testCode() string {
	return fmt.Sprintf("TST%d", time.Now().UnixNano()%100000)
}

func TestCreateAndGetSession(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	code := testCode()

	rec := session.Record{Code: code, TokenA: "token-a"}
	rec.Config.UserA = "Alice"
	if err := st.CreateSession(ctx, rec); err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}

	if err := st.CreateSession(ctx, rec); !errors.Is(err, store.ErrSessionExists) {
		t.Fatalf("expected ErrSessionExists, got %v", err)
	}

	got, err := st.GetSession(ctx, code)
	if err != nil {
		t.Fatalf("GetSession err: %v", err)
	}
	if got.Config.UserA != "Alice" || got.TokenA != "token-a" {
		t.Fatalf("unexpected record: %+v", got)
	}
}

func TestAppendSlotUnderContention(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	code := testCode()

	if err := st.CreateSession(ctx, session.Record{Code: code}); err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}

	const sends = 4
	rows := make(chan int, sends)
	var wg sync.WaitGroup
	for i := 0; i < sends; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			row, err := st.AppendSlot(ctx, code, message.SideA, message.Slot{Text: "x"})
			if err != nil {
				t.Errorf("AppendSlot err: %v", err)
				return
			}
			rows <- row
		}()
	}
	wg.Wait()
	close(rows)

	seen := make(map[int]bool)
	for row := range rows {
		if seen[row] {
			t.Fatalf("row %d allocated twice", row)
		}
		seen[row] = true
	}
}

func TestSetTranslationRoundTrip(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	code := testCode()

	if err := st.CreateSession(ctx, session.Record{Code: code}); err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}

	row, err := st.AppendSlot(ctx, code, message.SideB, message.Slot{Text: "hello"})
	if err != nil {
		t.Fatalf("AppendSlot err: %v", err)
	}
	if err := st.SetTranslation(ctx, code, row, message.SideB, "hola"); err != nil {
		t.Fatalf("SetTranslation err: %v", err)
	}

	rows, err := st.Rows(ctx, code)
	if err != nil {
		t.Fatalf("Rows err: %v", err)
	}
	if rows[row-2].B == nil || rows[row-2].B.Translated != "hola" {
		t.Fatalf("translation not stored: %+v", rows)
	}
}

func TestMissingSession(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	if _, err := st.GetSession(ctx, "NOPE42"); !errors.Is(err, store.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}
