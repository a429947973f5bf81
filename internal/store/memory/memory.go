package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/b4babl/backend/internal/model/audio"
	"github.com/b4babl/backend/internal/model/babel"
	"github.com/b4babl/backend/internal/model/message"
	"github.com/b4babl/backend/internal/model/session"
	"github.com/b4babl/backend/internal/store"
)

// SessionStore is the in-memory store.SessionStore, suitable for tests and
// single-instance deployments without Mongo.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*sessionState
}

type sessionState struct {
	mu   sync.Mutex
	rec  session.Record
	rows []message.Row
}

// NewSessionStore returns an empty in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*sessionState)}
}

func (s *SessionStore) CreateSession(_ context.Context, rec session.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[rec.Code]; ok {
		return store.ErrSessionExists
	}
	s.sessions[rec.Code] = &sessionState{rec: rec}
	return nil
}

func (s *SessionStore) GetSession(_ context.Context, code string) (session.Record, error) {
	state, err := s.state(code)
	if err != nil {
		return session.Record{}, err
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	return state.rec, nil
}

func (s *SessionStore) UpdateConfig(_ context.Context, code string, update func(*session.Record)) (session.Record, error) {
	state, err := s.state(code)
	if err != nil {
		return session.Record{}, err
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	update(&state.rec)
	return state.rec, nil
}

// AppendSlot fills the first row whose side column is empty. The per-session
// mutex makes the scan-and-write atomic, so concurrent sends from the same
// side land in distinct rows.
func (s *SessionStore) AppendSlot(_ context.Context, code string, side message.Side, slot message.Slot) (int, error) {
	state, err := s.state(code)
	if err != nil {
		return 0, err
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	for i := range state.rows {
		if state.rows[i].Slot(side) == nil {
			setSlot(&state.rows[i], side, &slot)
			return i + 2, nil
		}
	}

	var row message.Row
	setSlot(&row, side, &slot)
	state.rows = append(state.rows, row)
	return len(state.rows) + 1, nil
}

func (s *SessionStore) SetTranslation(_ context.Context, code string, row int, side message.Side, translated string) error {
	state, err := s.state(code)
	if err != nil {
		return err
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	idx := row - 2
	if idx < 0 || idx >= len(state.rows) {
		return store.ErrSessionNotFound
	}
	if slot := state.rows[idx].Slot(side); slot != nil {
		slot.Translated = translated
	}
	return nil
}

func (s *SessionStore) Rows(_ context.Context, code string) ([]message.Row, error) {
	state, err := s.state(code)
	if err != nil {
		return nil, err
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	rows := make([]message.Row, len(state.rows))
	for i, row := range state.rows {
		rows[i] = copyRow(row)
	}
	return rows, nil
}

func (s *SessionStore) state(code string) (*sessionState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.sessions[code]
	if !ok {
		return nil, store.ErrSessionNotFound
	}
	return state, nil
}

func setSlot(row *message.Row, side message.Side, slot *message.Slot) {
	if side == message.SideA {
		row.A = slot
	} else {
		row.B = slot
	}
}

func copyRow(row message.Row) message.Row {
	var out message.Row
	if row.A != nil {
		a := *row.A
		out.A = &a
	}
	if row.B != nil {
		b := *row.B
		out.B = &b
	}
	return out
}

// AudioQueue is the in-memory store.AudioQueue.
type AudioQueue struct {
	mu     sync.Mutex
	nextID map[string]int64
	items  map[string][]audio.Item
}

// NewAudioQueue returns an empty in-memory audio queue.
func NewAudioQueue() *AudioQueue {
	return &AudioQueue{
		nextID: make(map[string]int64),
		items:  make(map[string][]audio.Item),
	}
}

func (q *AudioQueue) Enqueue(_ context.Context, code string, item audio.Item) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.nextID[code]++
	item.ID = q.nextID[code]
	q.items[code] = append(q.items[code], item)
	return item.ID, nil
}

func (q *AudioQueue) After(_ context.Context, code, listener string, sinceID int64) ([]audio.Item, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var out []audio.Item
	for _, item := range q.items[code] {
		if item.ID > sinceID && item.Listener == listener {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// BabelStore is the in-memory store.BabelStore.
type BabelStore struct {
	mu        sync.Mutex
	responses []babel.Response
}

// NewBabelStore returns an empty in-memory Babel log.
func NewBabelStore() *BabelStore {
	return &BabelStore{}
}

func (b *BabelStore) Append(_ context.Context, resp babel.Response) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.responses = append(b.responses, resp)
	return nil
}

func (b *BabelStore) Recent(_ context.Context, limit int) ([]babel.Response, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if limit <= 0 || limit > len(b.responses) {
		limit = len(b.responses)
	}

	out := make([]babel.Response, 0, limit)
	for i := len(b.responses) - 1; i >= len(b.responses)-limit; i-- {
		out = append(out, b.responses[i])
	}
	return out, nil
}
