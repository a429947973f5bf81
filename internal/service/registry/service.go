package registry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/b4babl/backend/internal/model/session"
	"github.com/b4babl/backend/internal/store"
)

// maxCodeAttempts bounds code generation retries when a generated code
// collides with an existing session.
const maxCodeAttempts = 5

// Service manages session lifecycle: creation, join, lookup.
type Service struct {
	store store.SessionStore
}

// NewService returns a registry over the given session store.
func NewService(st store.SessionStore) *Service {
	return &Service{store: st}
}

// CreateRequest carries session creation parameters. Empty fields fall back
// to the historical defaults.
type CreateRequest struct {
	Code    string
	UserA   string
	UserB   string
	LangA   string
	LangB   string
	Audiate bool
	VoiceA  string
	VoiceB  string
}

// CreateResult is returned to the creating participant. TokenA authenticates
// participant A on subsequent sends.
type CreateResult struct {
	Code   string
	Config session.Config
	TokenA string
}

// Create allocates a new session. A caller-supplied code fails immediately
// with store.ErrSessionExists on collision; generated codes are retried.
func (s *Service) Create(ctx context.Context, req CreateRequest) (CreateResult, error) {
	langA, codeA := normalizeLanguage(req.LangA, "English")
	langB, codeB := normalizeLanguage(req.LangB, "Spanish")

	rec := session.Record{
		Config: session.Config{
			UserA:     defaultName(req.UserA, "User A"),
			UserB:     defaultName(req.UserB, "User B"),
			LangA:     langA,
			LangB:     langB,
			LangCodeA: codeA,
			LangCodeB: codeB,
			Audiate:   req.Audiate,
			VoiceA:    req.VoiceA,
			VoiceB:    req.VoiceB,
		},
		TokenA:    uuid.NewString(),
		TokenB:    uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}

	if code := strings.TrimSpace(req.Code); code != "" {
		rec.Code = code
		if err := s.store.CreateSession(ctx, rec); err != nil {
			return CreateResult{}, err
		}
		return CreateResult{Code: rec.Code, Config: rec.Config, TokenA: rec.TokenA}, nil
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		rec.Code = session.NewCode()
		err := s.store.CreateSession(ctx, rec)
		if err == nil {
			return CreateResult{Code: rec.Code, Config: rec.Config, TokenA: rec.TokenA}, nil
		}
		if err != store.ErrSessionExists {
			return CreateResult{}, err
		}
	}
	return CreateResult{}, fmt.Errorf("could not allocate a free session code: %w", store.ErrSessionExists)
}

// JoinResult is returned to a joining participant. TokenB is only present on
// the join call that actually attached participant B; repeat joins get the
// current config without a token.
type JoinResult struct {
	Config session.Config
	TokenB string
}

// Join attaches participant B to a session. The first join wins: later calls
// never overwrite B's identity and simply echo the stored config.
func (s *Service) Join(ctx context.Context, code, name, language string) (JoinResult, error) {
	joined := false
	rec, err := s.store.UpdateConfig(ctx, code, func(r *session.Record) {
		// The store may re-run this under contention; only the final
		// attempt's outcome counts.
		joined = false
		if name == "" || r.Config.UserBJoined {
			return
		}
		r.Config.UserB = name
		if language != "" {
			langB, codeB := normalizeLanguage(language, r.Config.LangB)
			r.Config.LangB = langB
			r.Config.LangCodeB = codeB
		}
		r.Config.UserBJoined = true
		joined = true
	})
	if err != nil {
		return JoinResult{}, err
	}

	result := JoinResult{Config: rec.Config}
	if joined {
		result.TokenB = rec.TokenB
	}
	return result, nil
}

// Info returns the configuration for a session code.
func (s *Service) Info(ctx context.Context, code string) (session.Config, error) {
	rec, err := s.store.GetSession(ctx, code)
	if err != nil {
		return session.Config{}, err
	}
	return rec.Config, nil
}

func defaultName(name, fallback string) string {
	if strings.TrimSpace(name) == "" {
		return fallback
	}
	return name
}

// normalizeLanguage accepts either an ISO code or a display name and returns
// the (name, code) pair, falling back to the supplied default name.
func normalizeLanguage(input, fallback string) (string, string) {
	input = strings.TrimSpace(input)
	if input == "" {
		input = fallback
	}
	if name, ok := session.LookupName(input); ok {
		return name, input
	}
	if code, ok := session.LookupCode(input); ok {
		return input, code
	}
	// Unknown value: keep the caller's spelling, tag it as English.
	return input, "en"
}
