package main

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/peptidedeals/peptidedeals_api/internal/cache"
	"github.com/peptidedeals/peptidedeals_api/internal/handler"
	"github.com/peptidedeals/peptidedeals_api/internal/middleware"
	"github.com/peptidedeals/peptidedeals_api/internal/models"
	"github.com/peptidedeals/peptidedeals_api/internal/service"
	"github.com/peptidedeals/peptidedeals_api/internal/sse"
	"github.com/peptidedeals/peptidedeals_api/pkg/peptideapi"
)

const upstreamPeptides = `[
  {"id": 1, "name": "BPC-157", "category": "recovery", "unit": "mg", "dosages": ["250mcg"],
   "retailers": [{"retailer_id": "aminoasylum", "retailer_name": "Amino Asylum", "size": "5mg", "price": 50, "discounted_price": 40, "stock": true, "affiliate_url": "https://a"}]},
  {"id": 2, "name": "TB-500", "category": "recovery", "unit": "mg", "dosages": ["2mg"],
   "retailers": [{"retailer_id": "limitless", "retailer_name": "Limitless", "size": "10mg", "price": 80, "stock": false, "affiliate_url": "https://b"}]}
]`

type memKV struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *memKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memKV) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return v, nil
}

func (m *memKV) Delete(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

type upstream struct {
	down     atomic.Bool
	adminHit atomic.Int32
}

func (u *upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if u.down.Load() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"message": "maintenance"}`))
		return
	}
	switch {
	case r.URL.Path == "/peptides":
		_, _ = w.Write([]byte(upstreamPeptides))
	case r.URL.Path == "/categories":
		_, _ = w.Write([]byte(`[{"id": 1, "name": "Recovery"}]`))
	case r.URL.Path == "/retailers":
		_, _ = w.Write([]byte(`[]`))
	case r.URL.Path == "/admin/login":
		var body peptideapi.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Password != "correct-horse" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message": "invalid credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"token": "opaque-admin-token"}`))
	case r.URL.Path == "/admin/peptides" && r.Method == http.MethodGet:
		if r.Header.Get("Authorization") != "Bearer opaque-admin-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		u.adminHit.Add(1)
		_, _ = w.Write([]byte(upstreamPeptides))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) (*gin.Engine, *upstream, *sse.Hub) {
	t.Helper()
	up := &upstream{}
	srv := httptest.NewServer(up)
	t.Cleanup(srv.Close)

	api := peptideapi.NewClient(peptideapi.Config{BaseURL: srv.URL})
	kv := &memKV{data: map[string][]byte{}}

	catalogSvc := service.NewCatalogService(api, cache.NewCatalogCache(kv, time.Minute), nil)
	sessionSvc := service.NewSessionService(cache.NewSessionStore(kv, time.Hour), api)
	limiter := middleware.NewLoginRateLimiter(5, time.Minute)
	hub := sse.NewHub()

	handlers := &Handlers{
		Health:     handler.NewHealthHandler(catalogSvc, nil),
		Catalog:    handler.NewCatalogHandler(catalogSvc, service.NewPriceHistoryService(nil, catalogSvc)),
		Calculator: handler.NewCalculatorHandler(service.NewCalculatorService(catalogSvc)),
		Stack:      handler.NewStackHandler(service.NewStackService(catalogSvc)),
		Session:    handler.NewSessionHandler(sessionSvc, limiter),
		Admin:      handler.NewAdminHandler(service.NewAdminService(api, catalogSvc)),
		SSE:        handler.NewSSEHandler(hub),
	}

	router := gin.New()
	setupRoutes(router, handlers, middleware.NewSessionMiddleware(sessionSvc))
	return router, up, hub
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
	Meta struct {
		Pagination *struct {
			TotalItems int `json:"totalItems"`
		} `json:"pagination"`
	} `json:"meta"`
}

func do(t *testing.T, r http.Handler, method, path, session, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if session != "" {
		req.Header.Set(middleware.SessionHeader, session)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: decode %q: %v", method, path, w.Body.String(), err)
	}
	return w, env
}

func newSession(t *testing.T, r http.Handler) string {
	t.Helper()
	w, env := do(t, r, http.MethodPost, "/v1/session", "", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("create session = %d", w.Code)
	}
	var sess struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &sess); err != nil || sess.ID == "" {
		t.Fatalf("session payload %s", env.Data)
	}
	return sess.ID
}

func TestHealthReportsCatalog(t *testing.T) {
	r, _, _ := newTestRouter(t)
	w, env := do(t, r, http.MethodGet, "/v1/health", "", "")
	if w.Code != http.StatusOK || !env.Success {
		t.Fatalf("health = %d", w.Code)
	}
	var data struct {
		Status  string `json:"status"`
		Catalog struct {
			Peptides int `json:"peptides"`
		} `json:"catalog"`
	}
	_ = json.Unmarshal(env.Data, &data)
	if data.Status != "healthy" || data.Catalog.Peptides != 2 {
		t.Fatalf("health payload %s", env.Data)
	}
}

func TestListPeptides(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w, env := do(t, r, http.MethodGet, "/v1/peptides?inStock=true", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list = %d %s", w.Code, w.Body.String())
	}
	if env.Meta.Pagination == nil || env.Meta.Pagination.TotalItems != 1 {
		t.Fatalf("pagination %+v", env.Meta.Pagination)
	}

	w, env = do(t, r, http.MethodGet, "/v1/peptides?sort=cheapest", "", "")
	if w.Code != http.StatusBadRequest || env.Error.Code != "INVALID_SORT" {
		t.Fatalf("bad sort = %d %s", w.Code, w.Body.String())
	}
}

func TestCatalogUnavailable(t *testing.T) {
	r, up, _ := newTestRouter(t)
	up.down.Store(true)

	w, env := do(t, r, http.MethodGet, "/v1/peptides", "", "")
	if w.Code != http.StatusServiceUnavailable || env.Error.Code != "DATA_UNAVAILABLE" {
		t.Fatalf("list = %d %s", w.Code, w.Body.String())
	}
}

func TestPeptideNotFound(t *testing.T) {
	r, _, _ := newTestRouter(t)
	w, env := do(t, r, http.MethodGet, "/v1/peptides/404", "", "")
	if w.Code != http.StatusNotFound || env.Error.Code != "PEPTIDE_NOT_FOUND" {
		t.Fatalf("get = %d %s", w.Code, w.Body.String())
	}
}

func TestCalculator(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w, env := do(t, r, http.MethodPost, "/v1/calculator", "", `{"totalAmount": 0, "desiredDose": 250, "doseUnit": "mcg"}`)
	if w.Code != http.StatusBadRequest || env.Error.Code != "VALIDATION_ERROR" {
		t.Fatalf("invalid = %d %s", w.Code, w.Body.String())
	}

	body := `{"peptideId": "1", "retailerId": "aminoasylum", "desiredDose": 250, "doseUnit": "mcg", "frequency": "daily"}`
	w, env = do(t, r, http.MethodPost, "/v1/calculator", "", body)
	if w.Code != http.StatusOK {
		t.Fatalf("calculate = %d %s", w.Code, w.Body.String())
	}
	var res struct {
		TotalDoses  int     `json:"totalDoses"`
		CostPerDose float64 `json:"costPerDose"`
	}
	_ = json.Unmarshal(env.Data, &res)
	if res.TotalDoses != 20 || res.CostPerDose != 2 {
		t.Fatalf("result %s", env.Data)
	}
}

func TestSessionRequired(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w, env := do(t, r, http.MethodGet, "/v1/session", "", "")
	if w.Code != http.StatusUnauthorized || env.Error.Code != "SESSION_REQUIRED" {
		t.Fatalf("no header = %d %s", w.Code, w.Body.String())
	}
	w, env = do(t, r, http.MethodGet, "/v1/session", "missing", "")
	if w.Code != http.StatusUnauthorized || env.Error.Code != "SESSION_NOT_FOUND" {
		t.Fatalf("unknown = %d %s", w.Code, w.Body.String())
	}

	id := newSession(t, r)
	w, _ = do(t, r, http.MethodPost, "/v1/session/disclaimer", id, "")
	if w.Code != http.StatusOK {
		t.Fatalf("disclaimer = %d", w.Code)
	}
	_, env = do(t, r, http.MethodGet, "/v1/session", id, "")
	var data struct {
		Session struct {
			DisclaimerAccepted bool `json:"disclaimerAccepted"`
		} `json:"session"`
		Authenticated bool `json:"authenticated"`
	}
	_ = json.Unmarshal(env.Data, &data)
	if !data.Session.DisclaimerAccepted || data.Authenticated {
		t.Fatalf("session payload %s", env.Data)
	}
}

func TestAdminRequiresLogin(t *testing.T) {
	r, up, _ := newTestRouter(t)
	id := newSession(t, r)

	w, env := do(t, r, http.MethodGet, "/v1/admin/peptides", id, "")
	if w.Code != http.StatusUnauthorized || env.Error.Code != "UNAUTHORIZED" {
		t.Fatalf("before login = %d %s", w.Code, w.Body.String())
	}

	w, _ = do(t, r, http.MethodPost, "/v1/admin/login", id, `{"email": "admin@peptidedeals.com", "password": "correct-horse"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("login = %d %s", w.Code, w.Body.String())
	}
	if strings.Contains(w.Body.String(), "opaque-admin-token") {
		t.Fatal("token leaked in login response")
	}

	w, _ = do(t, r, http.MethodGet, "/v1/admin/peptides", id, "")
	if w.Code != http.StatusOK || up.adminHit.Load() != 1 {
		t.Fatalf("after login = %d hits=%d", w.Code, up.adminHit.Load())
	}

	do(t, r, http.MethodPost, "/v1/admin/logout", id, "")
	w, _ = do(t, r, http.MethodGet, "/v1/admin/peptides", id, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("after logout = %d", w.Code)
	}
}

func TestLoginRateLimited(t *testing.T) {
	r, _, _ := newTestRouter(t)
	id := newSession(t, r)
	bad := `{"email": "admin@peptidedeals.com", "password": "wrong"}`

	for i := 0; i < 5; i++ {
		w, env := do(t, r, http.MethodPost, "/v1/admin/login", id, bad)
		if w.Code != http.StatusUnauthorized || env.Error.Code != "INVALID_CREDENTIALS" {
			t.Fatalf("attempt %d = %d %s", i+1, w.Code, w.Body.String())
		}
	}

	w, env := do(t, r, http.MethodPost, "/v1/admin/login", id, `{"email": "admin@peptidedeals.com", "password": "correct-horse"}`)
	if w.Code != http.StatusTooManyRequests || env.Error.Code != "RATE_LIMITED" {
		t.Fatalf("blocked attempt = %d %s", w.Code, w.Body.String())
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatal("missing Retry-After")
	}
}

func TestAdminEventsUseEventTypeAsName(t *testing.T) {
	r, _, hub := newTestRouter(t)
	id := newSession(t, r)
	w, _ := do(t, r, http.MethodPost, "/v1/admin/login", id, `{"email": "admin@peptidedeals.com", "password": "correct-horse"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("login = %d", w.Code)
	}

	srv := httptest.NewServer(r)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/v1/admin/events?session="+id, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("events = %d", resp.StatusCode)
	}

	lines := bufio.NewScanner(resp.Body)
	waitFor := func(prefix string) string {
		t.Helper()
		for lines.Scan() {
			if strings.HasPrefix(lines.Text(), prefix) {
				return lines.Text()
			}
		}
		t.Fatalf("stream ended before %q: %v", prefix, lines.Err())
		return ""
	}
	waitFor("event:connected")

	notifier := sse.NewHubNotifier(hub)
	notifier.NotifyPriceChanged(models.PriceChange{PeptideID: "1", RetailerID: "aminoasylum", Size: "5mg", OldPrice: 40, NewPrice: 35})
	notifier.NotifyCatalogRefreshed(2)

	if got := waitFor("event:"); got != "event:"+string(sse.EventPriceChanged) {
		t.Fatalf("first event line %q", got)
	}
	if got := waitFor("event:"); got != "event:"+string(sse.EventCatalogRefreshed) {
		t.Fatalf("second event line %q", got)
	}
}
