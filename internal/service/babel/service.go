package babel

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/b4babl/backend/internal/model/babel"
	"github.com/b4babl/backend/internal/store"
)

var ErrEmptyResponse = errors.New("response text is empty")

// defaultLimit caps Recent reads when the caller does not ask for a count.
const defaultLimit = 20

// Service is the append-only Babel story log.
type Service struct {
	store store.BabelStore
}

// NewService returns a Babel service over the given store.
func NewService(st store.BabelStore) *Service {
	return &Service{store: st}
}

// Submit appends one response with a server-side timestamp.
func (s *Service) Submit(ctx context.Context, name, language, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyResponse
	}
	if strings.TrimSpace(name) == "" {
		name = "Anonymous"
	}
	if strings.TrimSpace(language) == "" {
		language = "en"
	}

	return s.store.Append(ctx, babel.Response{
		Name:      name,
		Language:  language,
		Response:  text,
		Timestamp: time.Now().UTC(),
	})
}

// Recent returns the newest responses, most recent first.
func (s *Service) Recent(ctx context.Context, limit int) ([]babel.Response, error) {
	if limit <= 0 {
		limit = defaultLimit
	}

	responses, err := s.store.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	if responses == nil {
		responses = []babel.Response{}
	}
	return responses, nil
}
