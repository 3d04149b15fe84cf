package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/gl-engine/internal/accounting/memstore"
	"github.com/odyssey-erp/gl-engine/internal/observability"
	_ "github.com/odyssey-erp/gl-engine/testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("PG_DSN", "")
	t.Setenv("LEDGER_SYNC_ALERT_THRESHOLD", "5")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.AppAddr)
	require.Equal(t, 120, cfg.AppRateLimit)
	require.Equal(t, 5, cfg.LedgerSyncAlertThreshold)
	require.Equal(t, "30 1 * * *", cfg.IntegrityCron)
	require.True(t, cfg.InMemory())
	require.False(t, cfg.IsProduction())
}

func TestLoadConfigRejectsZeroThreshold(t *testing.T) {
	t.Setenv("LEDGER_SYNC_ALERT_THRESHOLD", "0")
	_, err := LoadConfig()
	require.Error(t, err)
}

func TestInTestMode(t *testing.T) {
	RefreshTestMode()
	require.True(t, InTestMode())
}

func newTestRouter(t *testing.T) (http.Handler, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	require.NoError(t, store.Seed(context.Background(), nil, 2025))
	metrics := observability.NewMetrics()
	cfg := &Config{AppRateLimit: 1000}
	services := NewServices(cfg, MemoryRepositories(store), nil, metrics, nil)
	params := services.HTTPHandlers(nil, nil)
	params.Config = cfg
	params.Metrics = metrics
	return NewRouter(params), store
}

func do(router http.Handler, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRouterPostsJournalAndReportsBalance(t *testing.T) {
	router, store := newTestRouter(t)

	rec := do(router, http.MethodPost, "/accounting/journals", `{"date":"2025-06-15","description":"Float","post":true,
		"lines":[{"account_code":"1111","debit":"500"},{"account_code":"3210","credit":"500"}]}`,
		map[string]string{ActorHeader: "42"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(router, http.MethodGet, "/accounting/ledger/accounts/1111/balance?as_of=2025-06-30", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var balance struct {
		Balance string `json:"balance"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&balance))
	require.True(t, decimal.RequireFromString("500").Equal(decimal.RequireFromString(balance.Balance)))

	records := store.AuditRecords()
	require.NotEmpty(t, records)
	require.NotNil(t, records[0].UserID)
	require.Equal(t, int64(42), *records[0].UserID)
	require.Len(t, store.LedgerRows(), 2)
}

func TestRouterRejectsBadActorHeader(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := do(router, http.MethodGet, "/accounting/accounts", "", map[string]string{ActorHeader: "abc"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouterServesHealthAndMetrics(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := do(router, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	rec = do(router, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "odyssey_http_requests_total")
}

func TestRebuildWithoutQueueIsNotImplemented(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := do(router, http.MethodPost, "/accounting/ledger/rebuild", "", nil)
	require.Equal(t, http.StatusNotImplemented, rec.Code)
}
