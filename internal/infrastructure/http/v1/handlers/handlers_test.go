package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colisflow/internal/core/apperror"
	"colisflow/internal/core/id"
	"colisflow/internal/core/types"
	"colisflow/internal/domain/auth"
	"colisflow/internal/domain/cash"
	"colisflow/internal/infrastructure/export"
	"colisflow/internal/infrastructure/http/v1/middleware"
	"colisflow/internal/infrastructure/storage/postgres"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeCash struct {
	CashService

	cashIn       *cash.CashIn
	disburseErr  error
	filter       cash.MovementFilter
	report       cash.ReportRequest
	summaryCalls int
}

func (f *fakeCash) RecordCashIn(_ context.Context, registerID id.ID, in cash.CashIn) (*cash.Movement, error) {
	f.cashIn = &in
	return &cash.Movement{
		ID:         id.New(),
		Number:     "ENC-000001",
		RegisterID: registerID,
		Category:   cash.CategoryCashInCash,
		Date:       in.Date,
		Amount:     in.Amount,
	}, nil
}

func (f *fakeCash) Disburse(context.Context, id.ID, cash.Disbursement) (*cash.Movement, error) {
	return nil, f.disburseErr
}

func (f *fakeCash) ListMovements(_ context.Context, filter cash.MovementFilter) (*cash.MovementPage, error) {
	f.filter = filter
	return &cash.MovementPage{TotalCount: 0}, nil
}

func (f *fakeCash) Report(_ context.Context, req cash.ReportRequest) (*cash.Report, error) {
	f.summaryCalls++
	report, _, err := f.ReportDetail(context.Background(), req)
	return report, err
}

func (f *fakeCash) ReportDetail(_ context.Context, req cash.ReportRequest) (*cash.Report, []cash.Movement, error) {
	f.report = req
	return &cash.Report{
		From:           req.From.Format(dateLayout),
		To:             req.To.Format(dateLayout),
		OpeningBalance: types.MustMoney("100.00"),
		ClosingBalance: types.MustMoney("250.00"),
	}, nil, nil
}

const dateLayout = "2006-01-02"

func newRouter() *gin.Engine {
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	return r
}

func serve(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	code, _ := body["code"].(string)
	return code
}

func TestCashHandler_CashIn(t *testing.T) {
	svc := &fakeCash{}
	h := NewCashHandler(NewBaseHandler(), svc)
	r := newRouter()
	r.POST("/registers/:id/cash-ins", h.CashIn)

	regID := id.New()
	w := serve(r, http.MethodPost, "/registers/"+regID.String()+"/cash-ins",
		`{"mode":"cash","amount":"150.50","date":"2024-03-05","receiptNumber":"R-12","parcelReference":"col-2024-00001"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	require.NotNil(t, svc.cashIn)
	assert.Equal(t, cash.ModeCash, svc.cashIn.Mode)
	assert.True(t, types.MustMoney("150.50").Equal(svc.cashIn.Amount))
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), svc.cashIn.Date)
	assert.Equal(t, "R-12", svc.cashIn.Settlement.ReceiptNumber)
	assert.Equal(t, "col-2024-00001", svc.cashIn.ParcelReference)

	var m cash.Movement
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	assert.Equal(t, regID, m.RegisterID)
	assert.Equal(t, "ENC-000001", m.Number)
}

func TestCashHandler_BadInput(t *testing.T) {
	h := NewCashHandler(NewBaseHandler(), &fakeCash{})
	r := newRouter()
	r.POST("/registers/:id/cash-ins", h.CashIn)

	w := serve(r, http.MethodPost, "/registers/not-a-uuid/cash-ins", `{"mode":"cash","amount":"1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperror.CodeValidation, errorCode(t, w))

	w = serve(r, http.MethodPost, "/registers/"+id.New().String()+"/cash-ins", `{"mode":"cash","amount":"1","date":"05/03/2024"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(r, http.MethodPost, "/registers/"+id.New().String()+"/cash-ins", `{"amount":"1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCashHandler_DisburseInsufficientBalance(t *testing.T) {
	svc := &fakeCash{disburseErr: apperror.NewInsufficientBalance("r1", types.MustMoney("500"), types.MustMoney("120"))}
	h := NewCashHandler(NewBaseHandler(), svc)
	r := newRouter()
	r.POST("/registers/:id/disbursements", h.Disburse)

	w := serve(r, http.MethodPost, "/registers/"+id.New().String()+"/disbursements", `{"amount":"500"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, apperror.CodeInsufficientBalance, errorCode(t, w))
}

func TestCashHandler_ListMovementsInclusiveTo(t *testing.T) {
	svc := &fakeCash{}
	h := NewCashHandler(NewBaseHandler(), svc)
	r := newRouter()
	r.GET("/movements", h.ListMovements)

	w := serve(r, http.MethodGet, "/movements?from=2024-01-01&to=2024-01-31&category=disbursement&limit=20", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.NotNil(t, svc.filter.From)
	require.NotNil(t, svc.filter.To)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *svc.filter.From)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), *svc.filter.To)
	require.NotNil(t, svc.filter.Category)
	assert.Equal(t, cash.CategoryDisbursement, *svc.filter.Category)
	assert.JSONEq(t, `{"items":[],"limit":20,"offset":0}`, w.Body.String())

	w = serve(r, http.MethodGet, "/movements?category=refund", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportHandler(t *testing.T) {
	svc := &fakeCash{}
	h := NewReportHandler(NewBaseHandler(), svc)
	r := newRouter()
	r.GET("/reports/cash", h.Cash)
	r.GET("/reports/cash/export", h.Export)

	w := serve(r, http.MethodGet, "/reports/cash?from=2024-01-01&to=2024-01-31", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Nil(t, svc.report.RegisterID)
	var rep map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rep))
	assert.Equal(t, "2024-01-01", rep["from"])
	assert.Equal(t, 1, svc.summaryCalls)

	w = serve(r, http.MethodGet, "/reports/cash/export?from=2024-01-01&to=2024-01-31", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, export.ContentTypeXLSX, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "caisse_2024-01-01_2024-01-31.xlsx")
	assert.True(t, strings.HasPrefix(w.Body.String(), "PK"))

	w = serve(r, http.MethodGet, "/reports/cash?from=2024-01-01", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type fakeAuth struct {
	user *auth.User
	err  error
}

func (f fakeAuth) Login(context.Context, auth.Credentials) (*auth.Token, *auth.User, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return &auth.Token{AccessToken: "tok", TokenType: "Bearer", ExpiresAt: time.Now().Add(time.Hour)}, f.user, nil
}

func (f fakeAuth) Me(context.Context) (*auth.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

func TestAuthHandler_Login(t *testing.T) {
	user := &auth.User{ID: id.New(), Username: "awa", PasswordHash: "secret-hash", Roles: []string{auth.RoleCashier}}
	h := NewAuthHandler(NewBaseHandler(), fakeAuth{user: user})
	r := newRouter()
	r.POST("/auth/login", h.Login)

	w := serve(r, http.MethodPost, "/auth/login", `{"username":"awa","password":"passw0rd!"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "secret-hash")

	var resp struct {
		Token struct{ AccessToken string }
		User  struct {
			Username    string
			Permissions []string
		}
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "tok", resp.Token.AccessToken)
	assert.Equal(t, "awa", resp.User.Username)
	assert.Contains(t, resp.User.Permissions, auth.PermMovementCreate)

	w = serve(r, http.MethodPost, "/auth/login", `{"username":"awa"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_MeUnauthorized(t *testing.T) {
	h := NewAuthHandler(NewBaseHandler(), fakeAuth{err: apperror.NewUnauthorized("authentication required")})
	r := newRouter()
	r.GET("/auth/me", h.Me)

	w := serve(r, http.MethodGet, "/auth/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

type fakeDB struct{ err error }

func (f fakeDB) Ping(context.Context) error { return f.err }
func (fakeDB) Stats() postgres.PoolStats { return postgres.PoolStats{MaxConns: 10} }

func TestHealthHandler(t *testing.T) {
	r := gin.New()
	ok := NewHealthHandler(fakeDB{}, nil)
	down := NewHealthHandler(fakeDB{err: errors.New("dial tcp: refused")}, nil)
	r.GET("/live", ok.Live)
	r.GET("/ready", ok.Ready)
	r.GET("/down", down.Ready)
	r.GET("/info", ok.Info)

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/live", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/ready", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, serve(r, http.MethodGet, "/down", "").Code)

	w := serve(r, http.MethodGet, "/info", "")
	assert.Contains(t, w.Body.String(), `"maxConns":10`)
}
