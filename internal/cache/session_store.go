package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/peptidedeals/peptidedeals_api/internal/models"
	"github.com/peptidedeals/peptidedeals_api/internal/utils"
)

// SessionStore persists visitor sessions under session:<id>.
type SessionStore struct {
	kv  KV
	ttl time.Duration
}

// NewSessionStore creates a new SessionStore.
func NewSessionStore(kv KV, ttl time.Duration) *SessionStore {
	return &SessionStore{kv: kv, ttl: ttl}
}

func (s *SessionStore) key(id string) string {
	return fmt.Sprintf("session:%s", id)
}

// Get loads a session. Unknown ids return utils.ErrSessionNotFound.
func (s *SessionStore) Get(ctx context.Context, id string) (*models.Session, error) {
	raw, err := s.kv.Get(ctx, s.key(id))
	if errors.Is(err, ErrCacheMiss) {
		return nil, utils.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	var sess models.Session
	if err := msgpack.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &sess, nil
}

// Save writes a session and refreshes its TTL.
func (s *SessionStore) Save(ctx context.Context, sess *models.Session) error {
	raw, err := msgpack.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	return s.kv.Set(ctx, s.key(sess.ID), raw, s.ttl)
}

// Delete removes a session.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	return s.kv.Delete(ctx, s.key(id))
}
