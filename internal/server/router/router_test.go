package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/feedlot/internal/authz"
	"github.com/mamadbah2/feedlot/internal/config"
	"github.com/mamadbah2/feedlot/internal/domain/models"
	"github.com/mamadbah2/feedlot/internal/metrics"
	"github.com/mamadbah2/feedlot/internal/repository/sqlstore"
	"github.com/mamadbah2/feedlot/internal/server/handlers"
	"github.com/mamadbah2/feedlot/internal/service/analytics"
	cattlesvc "github.com/mamadbah2/feedlot/internal/service/cattle"
	feedsvc "github.com/mamadbah2/feedlot/internal/service/feed"
	healthsvc "github.com/mamadbah2/feedlot/internal/service/health"
	"github.com/mamadbah2/feedlot/internal/service/reports"
	salessvc "github.com/mamadbah2/feedlot/internal/service/sales"
)

var (
	manager  = models.Caller{UserID: "u-manager", Role: models.RoleManager}
	operator = models.Caller{UserID: "u-operator", Role: models.RoleOperator}
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	db, err := sqlstore.Open(config.DatabaseConfig{Driver: "sqlite", URL: ":memory:"}, nil)
	require.NoError(t, err)
	require.NoError(t, sqlstore.Migrate(context.Background(), db))
	t.Cleanup(func() { _ = sqlstore.Close(db) })

	checker, err := authz.New(nil)
	require.NoError(t, err)

	store := sqlstore.New()
	m := metrics.New()
	health := healthsvc.NewService(db, store, checker, nil)

	return New(Handlers{
		Cattle:    handlers.NewCattleHandler(cattlesvc.NewService(db, store, checker, m, nil), health, nil),
		Health:    handlers.NewHealthHandler(health, nil),
		Feed:      handlers.NewFeedHandler(feedsvc.NewService(db, store, checker, m, nil), nil),
		Sales:     handlers.NewSalesHandler(salessvc.NewService(db, store, checker, m, nil), nil),
		Dashboard: handlers.NewDashboardHandler(analytics.NewService(db, store, checker, nil), nil),
		Reports:   handlers.NewReportHandler(reports.NewService(db, store, checker, nil, m, nil), nil),
	}, m, nil)
}

func do(t *testing.T, h http.Handler, caller *models.Caller, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if caller != nil {
		req.Header.Set(handlers.HeaderUserID, caller.UserID)
		req.Header.Set(handlers.HeaderUserRole, string(caller.Role))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestHealthz(t *testing.T) {
	rec := do(t, newTestServer(t), nil, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAPIRequiresCaller(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, nil, http.MethodGet, "/api/cattle", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var body map[string]string
	decode(t, rec, &body)
	assert.Equal(t, "Failed to authenticate request. Please try again.", body["error"])

	rec = do(t, srv, &models.Caller{UserID: "u-1", Role: "VET"}, http.MethodGet, "/api/cattle", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCattleLifecycle(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, &operator, http.MethodPost, "/api/cattle", map[string]interface{}{
		"tag": "FL-100", "breed": "Zebu", "gender": "MALE", "initialWeight": "300",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created models.Cattle
	decode(t, rec, &created)
	assert.Equal(t, models.CattleActive, created.Status)

	rec = do(t, srv, &operator, http.MethodPost, "/api/cattle", map[string]interface{}{
		"tag": "FL-100", "breed": "Zebu", "gender": "MALE", "initialWeight": "300",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, srv, &operator, http.MethodPost, "/api/cattle/"+created.ID+"/weights", map[string]interface{}{
		"weight": "0",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var verr map[string]string
	decode(t, rec, &verr)
	assert.Equal(t, "weight", verr["field"])
	assert.Equal(t, "Failed to record weight. Please try again.", verr["error"])

	rec = do(t, srv, &operator, http.MethodPost, "/api/cattle/"+created.ID+"/weights", map[string]interface{}{
		"weight": "320.5",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, srv, &operator, http.MethodGet, "/api/cattle/by-tag/FL-100", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var fetched models.Cattle
	decode(t, rec, &fetched)
	assert.Equal(t, "320.5", fetched.CurrentWeight.String())

	rec = do(t, srv, &operator, http.MethodGet, "/api/cattle/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, srv, &operator, http.MethodGet, "/api/cattle?status=LOST", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFeedStockRejection(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, &manager, http.MethodPost, "/api/feed/materials", map[string]interface{}{
		"name": "Maize", "category": "grain", "unit": "kg",
		"currentStock": "50", "minStock": "10", "pricePerUnit": "0.3",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var material models.RawMaterial
	decode(t, rec, &material)

	rec = do(t, srv, &manager, http.MethodPost, "/api/feed/usage", map[string]interface{}{
		"rawMaterialId": material.ID, "quantity": "80",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, srv, &manager, http.MethodGet, "/api/feed/materials/"+material.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &material)
	assert.Equal(t, "50", material.CurrentStock.String())

	rec = do(t, srv, &operator, http.MethodGet, "/api/feed/materials", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDashboardForbiddenForOperator(t *testing.T) {
	srv := newTestServer(t)

	assert.Equal(t, http.StatusForbidden, do(t, srv, &operator, http.MethodGet, "/api/dashboard", nil).Code)
	assert.Equal(t, http.StatusOK, do(t, srv, &manager, http.MethodGet, "/api/dashboard", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, srv, &manager, http.MethodGet, "/api/dashboard/activities?limit=0", nil).Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(t, srv, &manager, http.MethodGet, "/api/dashboard/snapshots", nil).Code)
}

func TestReportDownload(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, &manager, http.MethodGet, "/api/reports/cattle?format=csv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Disposition"), `attachment; filename="cattle-report-`))
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "ID,Breed,Gender"))

	assert.Equal(t, http.StatusBadRequest, do(t, srv, &manager, http.MethodGet, "/api/reports/weights", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, srv, &manager, http.MethodGet, "/api/reports/cattle?format=xml", nil).Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(t, srv, &manager, http.MethodPost, "/api/reports/cattle/publish", nil).Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	do(t, srv, nil, http.MethodGet, "/healthz", nil)

	rec := do(t, srv, nil, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `feedlot_http_requests_total{method="GET",route="/healthz",status="200"} 1`)
}
