package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/peptidedeals/peptidedeals_api/internal/models"
	"github.com/peptidedeals/peptidedeals_api/internal/service"
	"github.com/peptidedeals/peptidedeals_api/internal/utils"
)

// SessionHeader carries the visitor session id.
const SessionHeader = "X-Session-Id"

const (
	ctxSession    = "session"
	ctxSessionID  = "session_id"
	ctxAdminToken = "admin_token"
)

// SessionMiddleware resolves the visitor session and guards admin routes.
type SessionMiddleware struct {
	sessions *service.SessionService
}

// NewSessionMiddleware constructs a SessionMiddleware.
func NewSessionMiddleware(sessions *service.SessionService) *SessionMiddleware {
	return &SessionMiddleware{sessions: sessions}
}

// sessionID reads the id from the header, falling back to the "session" query
// parameter. EventSource cannot set custom headers.
func sessionID(c *gin.Context) string {
	if id := strings.TrimSpace(c.GetHeader(SessionHeader)); id != "" {
		return id
	}
	return strings.TrimSpace(c.Query("session"))
}

// Handle loads the session named by the request and aborts with 401 when it is unknown.
func (m *SessionMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := sessionID(c)
		if id == "" {
			utils.Error(c, 401, "SESSION_REQUIRED", "Missing "+SessionHeader+" header")
			c.Abort()
			return
		}

		sess, err := m.sessions.Get(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, utils.ErrSessionNotFound) {
				utils.Error(c, 401, "SESSION_NOT_FOUND", "Session not found or expired")
			} else {
				log.Error().Err(err).Str("session_id", id).Msg("Failed to load session")
				utils.Error(c, 500, "INTERNAL_ERROR", "Failed to load session")
			}
			c.Abort()
			return
		}

		c.Set(ctxSession, sess)
		c.Set(ctxSessionID, sess.ID)
		c.Next()
	}
}

// RequireAdmin must run after Handle. It rejects sessions without a live token.
func (m *SessionMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, _ := SessionFrom(c)
		token, err := m.sessions.AdminToken(sess)
		if err != nil {
			if errors.Is(err, utils.ErrTokenExpired) {
				utils.Error(c, 401, "TOKEN_EXPIRED", "Admin session expired, please log in again")
			} else {
				utils.Error(c, 401, "UNAUTHORIZED", "Admin login required")
			}
			c.Abort()
			return
		}
		c.Set(ctxAdminToken, token)
		c.Next()
	}
}

// SessionFrom returns the session attached by Handle.
func SessionFrom(c *gin.Context) (*models.Session, bool) {
	v, ok := c.Get(ctxSession)
	if !ok {
		return nil, false
	}
	sess, ok := v.(*models.Session)
	return sess, ok
}

// AdminTokenFrom returns the token attached by RequireAdmin.
func AdminTokenFrom(c *gin.Context) string {
	return c.GetString(ctxAdminToken)
}
