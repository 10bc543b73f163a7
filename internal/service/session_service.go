package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/peptidedeals/peptidedeals_api/internal/models"
	"github.com/peptidedeals/peptidedeals_api/internal/utils"
	"github.com/peptidedeals/peptidedeals_api/pkg/peptideapi"
)

// SessionRepository persists sessions.
type SessionRepository interface {
	Get(ctx context.Context, id string) (*models.Session, error)
	Save(ctx context.Context, sess *models.Session) error
	Delete(ctx context.Context, id string) error
}

// Authenticator exchanges admin credentials for a bearer token.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
}

// SessionService manages visitor sessions and the admin token they carry.
type SessionService struct {
	repo SessionRepository
	auth Authenticator
	now  func() time.Time
}

// NewSessionService constructs a SessionService.
func NewSessionService(repo SessionRepository, auth Authenticator) *SessionService {
	return &SessionService{repo: repo, auth: auth, now: time.Now}
}

// Create starts a fresh anonymous session.
func (s *SessionService) Create(ctx context.Context) (*models.Session, error) {
	now := s.now().UTC()
	sess := &models.Session{
		ID:        uuid.New().String(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Get loads a session by id. An expired token is cleared on read.
func (s *SessionService) Get(ctx context.Context, id string) (*models.Session, error) {
	if strings.TrimSpace(id) == "" {
		return nil, utils.ErrSessionNotFound
	}
	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Token != "" && !sess.IsAuthenticated(s.now()) {
		log.Info().Str("session_id", sess.ID).Msg("Session token expired, clearing")
		sess.Token = ""
		sess.TokenExpiresAt = nil
		if err := s.touch(ctx, sess); err != nil {
			return nil, err
		}
	}
	return sess, nil
}

// AcceptDisclaimer records the research-use disclaimer acceptance.
func (s *SessionService) AcceptDisclaimer(ctx context.Context, id string) (*models.Session, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.DisclaimerAccepted = true
	if err := s.touch(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Login authenticates against the upstream and attaches the issued token to
// the session. Rejected credentials return utils.ErrInvalidCredentials.
func (s *SessionService) Login(ctx context.Context, id, email, password string) (*models.Session, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	log.Debug().Str("email", email).Str("session_id", id).Msg("Login attempt")

	token, err := s.auth.Login(ctx, email, password)
	if err != nil {
		if peptideapi.IsUnauthorized(err) {
			log.Warn().Str("email", email).Msg("Upstream rejected credentials")
			return nil, utils.ErrInvalidCredentials
		}
		return nil, err
	}

	exp, err := utils.TokenExpiry(token)
	if err != nil {
		// Opaque tokens carry no expiry; the upstream decides when they lapse.
		log.Debug().Err(err).Msg("Token expiry unreadable")
		exp = nil
	}
	if exp != nil && !s.now().Before(*exp) {
		return nil, utils.ErrTokenExpired
	}

	sess.Token = token
	sess.TokenExpiresAt = exp
	if err := s.touch(ctx, sess); err != nil {
		return nil, err
	}

	log.Info().Str("email", email).Str("session_id", id).Msg("Login successful")
	return sess, nil
}

// Logout drops the admin token and keeps the rest of the session.
func (s *SessionService) Logout(ctx context.Context, id string) (*models.Session, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.Token = ""
	sess.TokenExpiresAt = nil
	if err := s.touch(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// AdminToken returns the live token of a session, rejecting expired tokens
// before they reach the upstream.
func (s *SessionService) AdminToken(sess *models.Session) (string, error) {
	if sess == nil || sess.Token == "" {
		return "", utils.ErrNotAuthenticated
	}
	if !sess.IsAuthenticated(s.now()) {
		return "", utils.ErrTokenExpired
	}
	return sess.Token, nil
}

func (s *SessionService) touch(ctx context.Context, sess *models.Session) error {
	sess.UpdatedAt = s.now().UTC()
	return s.repo.Save(ctx, sess)
}
