package v1

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appctx "colisflow/internal/core/context"
	"colisflow/internal/domain/audit"
	"colisflow/internal/domain/auth"
	"colisflow/internal/domain/cash"
	"colisflow/internal/infrastructure/http/v1/handlers"
	"colisflow/internal/infrastructure/http/v1/middleware"
	"colisflow/internal/infrastructure/storage/postgres"
	"colisflow/pkg/logger"
)

type stubDB struct{}

func (stubDB) Ping(context.Context) error { return nil }
func (stubDB) Stats() postgres.PoolStats { return postgres.PoolStats{} }

type stubValidator map[string]*appctx.UserContext

func (v stubValidator) ValidateToken(token string) (*appctx.UserContext, error) {
	if u, ok := v[token]; ok {
		return u, nil
	}
	return nil, errors.New("invalid")
}

type stubCash struct {
	handlers.CashService
}

func (stubCash) ListRegisters(context.Context) ([]*cash.Register, error) {
	return []*cash.Register{{Code: "CAI-2024-00001", Name: "Dakar"}}, nil
}

type sink struct {
	mu      sync.Mutex
	entries []*audit.Entry
}

func (s *sink) Submit(e *audit.Entry) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return true
}

func (s *sink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func newTestRouter(s *sink) http.Handler {
	return NewRouter(RouterConfig{
		Logger:   logger.Nop(),
		Database: stubDB{},
		JWTValidator: stubValidator{
			"cashier": {UserID: "u1", UserCode: "awa", Permissions: auth.RolePermissions[auth.RoleCashier]},
			"nobody":  {UserID: "u2", UserCode: "moussa"},
		},
		CashService:  stubCash{},
		AuditSink:    s,
		AuditOptions: middleware.AuditConfig{IncludeReads: true},
	})
}

func get(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_PublicEndpoints(t *testing.T) {
	s := &sink{}
	r := newTestRouter(s)

	assert.Equal(t, http.StatusOK, get(r, "/health/live", "").Code)
	assert.Equal(t, http.StatusOK, get(r, "/health/ready", "").Code)
	assert.Equal(t, http.StatusOK, get(r, "/metrics", "").Code)
	assert.Zero(t, s.count())
}

func TestRouter_AuthAndPermissions(t *testing.T) {
	s := &sink{}
	r := newTestRouter(s)

	assert.Equal(t, http.StatusUnauthorized, get(r, "/api/v1/registers", "").Code)

	w := get(r, "/api/v1/registers", "cashier")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "CAI-2024-00001")

	assert.Equal(t, http.StatusForbidden, get(r, "/api/v1/registers", "nobody").Code)
	assert.Equal(t, http.StatusNotFound, get(r, "/api/v1/unknown", "cashier").Code)

	require.Equal(t, 4, s.count())
	assert.Equal(t, appctx.AnonymousUser, s.entries[0].UserID)
	assert.Equal(t, "u1", s.entries[1].UserID)
	assert.Equal(t, audit.OutcomeSuccess, s.entries[1].Outcome)
	assert.Equal(t, audit.OutcomeError, s.entries[2].Outcome)
}

func TestRouter_CORSPreflight(t *testing.T) {
	r := newTestRouter(&sink{})
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/registers", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
