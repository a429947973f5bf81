package mongostore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/b4babl/backend/internal/model/message"
	"github.com/b4babl/backend/internal/model/session"
	"github.com/b4babl/backend/internal/store"
)

// maxCASAttempts bounds the optimistic-concurrency retry loop on session
// writes. Contention is per session code, so a handful of retries is plenty.
const maxCASAttempts = 5

var errConflict = errors.New("concurrent session update")

type sessionDoc struct {
	Code    string         `bson:"code"`
	Record  session.Record `bson:"record"`
	Rows    []message.Row  `bson:"rows"`
	Version int64          `bson:"version"`
}

// SessionStore is the Mongo-backed store.SessionStore. Each session is a
// single document holding the config record plus the conversation row array;
// a version field guards read-modify-write cycles.
type SessionStore struct {
	collection *mongo.Collection
}

// NewSessionStore returns a session store over the given database.
func NewSessionStore(client *mongo.Client, database string) *SessionStore {
	return &SessionStore{collection: client.Database(database).Collection("sessions")}
}

// EnsureIndexes creates the unique index on the session code. Call once at
// startup.
func (s *SessionStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "code", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (s *SessionStore) CreateSession(ctx context.Context, rec session.Record) error {
	doc := sessionDoc{Code: rec.Code, Record: rec, Rows: []message.Row{}}
	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return store.ErrSessionExists
		}
		return err
	}
	return nil
}

func (s *SessionStore) GetSession(ctx context.Context, code string) (session.Record, error) {
	doc, err := s.fetch(ctx, code)
	if err != nil {
		return session.Record{}, err
	}
	return doc.Record, nil
}

func (s *SessionStore) UpdateConfig(ctx context.Context, code string, update func(*session.Record)) (session.Record, error) {
	for attempt := 0; attempt < maxCASAttempts; attempt++ {
		doc, err := s.fetch(ctx, code)
		if err != nil {
			return session.Record{}, err
		}

		update(&doc.Record)

		res, err := s.collection.UpdateOne(ctx,
			bson.M{"code": code, "version": doc.Version},
			bson.M{"$set": bson.M{"record": doc.Record}, "$inc": bson.M{"version": 1}},
		)
		if err != nil {
			return session.Record{}, err
		}
		if res.MatchedCount == 1 {
			return doc.Record, nil
		}
	}
	return session.Record{}, fmt.Errorf("update session %s: %w", code, errConflict)
}

// AppendSlot allocates the first free row for the side with a compare-and-set
// on the document version, retrying when a concurrent send won the race.
func (s *SessionStore) AppendSlot(ctx context.Context, code string, side message.Side, slot message.Slot) (int, error) {
	for attempt := 0; attempt < maxCASAttempts; attempt++ {
		doc, err := s.fetch(ctx, code)
		if err != nil {
			return 0, err
		}

		row := len(doc.Rows) + 2
		for i := range doc.Rows {
			if doc.Rows[i].Slot(side) == nil {
				row = i + 2
				break
			}
		}

		if idx := row - 2; idx < len(doc.Rows) {
			if side == message.SideA {
				doc.Rows[idx].A = &slot
			} else {
				doc.Rows[idx].B = &slot
			}
		} else {
			var fresh message.Row
			if side == message.SideA {
				fresh.A = &slot
			} else {
				fresh.B = &slot
			}
			doc.Rows = append(doc.Rows, fresh)
		}

		res, err := s.collection.UpdateOne(ctx,
			bson.M{"code": code, "version": doc.Version},
			bson.M{"$set": bson.M{"rows": doc.Rows}, "$inc": bson.M{"version": 1}},
		)
		if err != nil {
			return 0, err
		}
		if res.MatchedCount == 1 {
			return row, nil
		}
	}
	return 0, fmt.Errorf("append slot in session %s: %w", code, errConflict)
}

func (s *SessionStore) SetTranslation(ctx context.Context, code string, row int, side message.Side, translated string) error {
	field := "a"
	if side == message.SideB {
		field = "b"
	}
	path := fmt.Sprintf("rows.%d.%s.translated", row-2, field)

	res, err := s.collection.UpdateOne(ctx,
		bson.M{"code": code},
		bson.M{"$set": bson.M{path: translated}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrSessionNotFound
	}
	return nil
}

func (s *SessionStore) Rows(ctx context.Context, code string) ([]message.Row, error) {
	doc, err := s.fetch(ctx, code)
	if err != nil {
		return nil, err
	}
	return doc.Rows, nil
}

func (s *SessionStore) fetch(ctx context.Context, code string) (sessionDoc, error) {
	var doc sessionDoc
	err := s.collection.FindOne(ctx, bson.M{"code": code}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return sessionDoc{}, store.ErrSessionNotFound
		}
		return sessionDoc{}, err
	}
	return doc, nil
}
