package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/peptidedeals/peptidedeals_api/internal/middleware"
	"github.com/peptidedeals/peptidedeals_api/internal/service"
	"github.com/peptidedeals/peptidedeals_api/internal/utils"
)

// SessionHandler handles visitor sessions and admin login.
type SessionHandler struct {
	sessionService *service.SessionService
	loginLimiter   *middleware.LoginRateLimiter
}

// NewSessionHandler constructs a SessionHandler.
func NewSessionHandler(sessionService *service.SessionService, loginLimiter *middleware.LoginRateLimiter) *SessionHandler {
	return &SessionHandler{sessionService: sessionService, loginLimiter: loginLimiter}
}

// Create starts a new session.
func (h *SessionHandler) Create(c *gin.Context) {
	sess, err := h.sessionService.Create(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to create session")
		return
	}
	utils.Success(c, 201, "Session created", sess)
}

// Get returns the current session.
func (h *SessionHandler) Get(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)
	utils.Success(c, 200, "Session retrieved successfully", gin.H{
		"session":       sess,
		"authenticated": sess.Token != "",
	})
}

// AcceptDisclaimer records the research-use disclaimer acceptance.
func (h *SessionHandler) AcceptDisclaimer(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)
	updated, err := h.sessionService.AcceptDisclaimer(c.Request.Context(), sess.ID)
	if err != nil {
		respondError(c, err, "Failed to accept disclaimer")
		return
	}
	utils.Success(c, 200, "Disclaimer accepted", updated)
}

// Login authenticates against the catalog API and attaches the token to the session.
func (h *SessionHandler) Login(c *gin.Context) {
	ip := c.ClientIP()
	if !h.loginLimiter.Allow(ip) {
		c.Header("Retry-After", strconv.Itoa(int(h.loginLimiter.RetryAfter(ip).Seconds())+1))
		utils.Error(c, 429, "RATE_LIMITED", "Too many failed login attempts, try again later")
		return
	}

	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	sess, _ := middleware.SessionFrom(c)
	updated, err := h.sessionService.Login(c.Request.Context(), sess.ID, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, utils.ErrInvalidCredentials) {
			h.loginLimiter.Fail(ip)
		}
		respondError(c, err, "Failed to log in")
		return
	}
	h.loginLimiter.Reset(ip)

	utils.Success(c, 200, "Login successful", gin.H{
		"session":        updated,
		"tokenExpiresAt": updated.TokenExpiresAt,
	})
}

// Logout clears the admin token of the session.
func (h *SessionHandler) Logout(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)
	updated, err := h.sessionService.Logout(c.Request.Context(), sess.ID)
	if err != nil {
		respondError(c, err, "Failed to log out")
		return
	}
	utils.Success(c, 200, "Logout successful", updated)
}
