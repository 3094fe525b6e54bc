package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"control_center_echo/internal/services"
)

const sessionKeyPrefix = "session:"

// ErrSessionNotFound is returned when a session id is unknown or expired.
var ErrSessionNotFound = errors.New("session not found")

// Session is the signed-in state produced by a successful callback. Only
// display claims are kept next to the raw ID token, which is needed again
// as id_token_hint on sign-out.
type Session struct {
	ID        string    `json:"id"`
	Subject   string    `json:"sub"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	IDToken   string    `json:"id_token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// DisplayName is the best human-readable name for the session user.
func (s *Session) DisplayName() string {
	switch {
	case s.Name != "":
		return s.Name
	case s.Email != "":
		return s.Email
	default:
		return s.Subject
	}
}

// SessionStore keeps sessions in a cache until they expire.
type SessionStore struct {
	cache services.Cache
	now   func() time.Time
}

// NewSessionStore creates a session store on top of cache.
func NewSessionStore(cache services.Cache) *SessionStore {
	return &SessionStore{cache: cache, now: time.Now}
}

// Save stores the session until its ExpiresAt.
func (s *SessionStore) Save(ctx context.Context, sess *Session) error {
	ttl := sess.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return fmt.Errorf("save session %s: already expired", sess.ID)
	}
	if err := s.cache.Set(ctx, sessionKeyPrefix+sess.ID, sess, ttl); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Load returns the session with the given id.
func (s *SessionStore) Load(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, ErrSessionNotFound
	}

	var sess Session
	if err := s.cache.Get(ctx, sessionKeyPrefix+id, &sess); err != nil {
		if errors.Is(err, services.ErrCacheMiss) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !s.now().Before(sess.ExpiresAt) {
		_ = s.cache.Delete(ctx, sessionKeyPrefix+id)
		return nil, ErrSessionNotFound
	}
	return &sess, nil
}

// Delete removes the session. Deleting an unknown id is not an error.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if err := s.cache.Delete(ctx, sessionKeyPrefix+id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
