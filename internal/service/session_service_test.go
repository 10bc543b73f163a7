package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/peptidedeals/peptidedeals_api/internal/utils"
	"github.com/peptidedeals/peptidedeals_api/pkg/peptideapi"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "admin@example.com",
		"exp": exp.Unix(),
	})
	s, err := tok.SignedString([]byte("upstream-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func newTestSessions(auth *fakeAuth, now time.Time) (*SessionService, *memSessionRepo) {
	repo := newMemSessionRepo()
	svc := NewSessionService(repo, auth)
	svc.now = func() time.Time { return now }
	return svc, repo
}

func TestSessionCreateAndDisclaimer(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, _ := newTestSessions(&fakeAuth{}, now)
	ctx := context.Background()

	sess, err := svc.Create(ctx)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if sess.ID == "" || sess.DisclaimerAccepted {
		t.Fatalf("new session = %+v", sess)
	}

	accepted, err := svc.AcceptDisclaimer(ctx, sess.ID)
	if err != nil {
		t.Fatalf("AcceptDisclaimer: %v", err)
	}
	if !accepted.DisclaimerAccepted {
		t.Fatal("disclaimer not recorded")
	}

	if _, err := svc.Get(ctx, "unknown"); !errors.Is(err, utils.ErrSessionNotFound) {
		t.Fatalf("err = %v", err)
	}
	if _, err := svc.Get(ctx, ""); !errors.Is(err, utils.ErrSessionNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestSessionLoginLogout(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	exp := now.Add(time.Hour)
	auth := &fakeAuth{}
	svc, _ := newTestSessions(auth, now)
	ctx := context.Background()
	auth.token = signedToken(t, exp)

	sess, _ := svc.Create(ctx)
	sess, err := svc.Login(ctx, sess.ID, "admin@example.com", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if sess.TokenExpiresAt == nil || !sess.TokenExpiresAt.Equal(exp) {
		t.Fatalf("expiry = %v, want %v", sess.TokenExpiresAt, exp)
	}
	token, err := svc.AdminToken(sess)
	if err != nil || token != auth.token {
		t.Fatalf("AdminToken = %q, %v", token, err)
	}

	sess, err = svc.Logout(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := svc.AdminToken(sess); !errors.Is(err, utils.ErrNotAuthenticated) {
		t.Fatalf("err = %v", err)
	}
}

func TestSessionLoginRejected(t *testing.T) {
	now := time.Now()
	auth := &fakeAuth{err: &peptideapi.APIError{Status: 401, Message: "bad credentials"}}
	svc, _ := newTestSessions(auth, now)
	ctx := context.Background()

	sess, _ := svc.Create(ctx)
	if _, err := svc.Login(ctx, sess.ID, "a@b.c", "wrong"); !errors.Is(err, utils.ErrInvalidCredentials) {
		t.Fatalf("err = %v", err)
	}
}

func TestSessionExpiredTokenRejectedAndCleared(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	auth := &fakeAuth{}
	svc, repo := newTestSessions(auth, now)
	ctx := context.Background()

	auth.token = signedToken(t, now.Add(-time.Minute))
	sess, _ := svc.Create(ctx)
	if _, err := svc.Login(ctx, sess.ID, "a@b.c", "pw"); !errors.Is(err, utils.ErrTokenExpired) {
		t.Fatalf("err = %v", err)
	}

	auth.token = signedToken(t, now.Add(time.Minute))
	if _, err := svc.Login(ctx, sess.ID, "a@b.c", "pw"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	svc.now = func() time.Time { return now.Add(2 * time.Minute) }
	loaded, err := svc.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if loaded.Token != "" {
		t.Fatal("expired token should be cleared on read")
	}
	if repo.sessions[sess.ID].Token != "" {
		t.Fatal("cleared token not persisted")
	}
}

func TestSessionOpaqueTokenHasNoExpiry(t *testing.T) {
	auth := &fakeAuth{token: "opaque-token"}
	svc, _ := newTestSessions(auth, time.Now())
	ctx := context.Background()

	sess, _ := svc.Create(ctx)
	sess, err := svc.Login(ctx, sess.ID, "a@b.c", "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if sess.TokenExpiresAt != nil {
		t.Fatalf("expiry = %v", sess.TokenExpiresAt)
	}
	if tok, err := svc.AdminToken(sess); err != nil || tok != "opaque-token" {
		t.Fatalf("AdminToken = %q, %v", tok, err)
	}
}
