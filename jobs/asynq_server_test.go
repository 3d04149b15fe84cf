package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/gl-engine/internal/platform/httpx"
)

func TestClientCollapsesConcurrentRebuilds(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := NewClient(asynq.RedisClientOpt{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	id, err := client.EnqueueLedgerRebuild(context.Background(), false)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	_, err = client.EnqueueLedgerRebuild(context.Background(), false)
	require.ErrorIs(t, err, ErrRebuildQueued)
	require.ErrorIs(t, err, httpx.ErrConflict)
}

type stubInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (s stubInspector) GetQueueInfo(string) (*asynq.QueueInfo, error) { return s.info, s.err }

func serveHealth(h *Handler) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Route("/jobs", h.MountRoutes)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))
	return rec
}

func TestHealthReportsQueueCounts(t *testing.T) {
	rec := serveHealth(NewHandler(stubInspector{info: &asynq.QueueInfo{Queue: QueueDefault, Pending: 4, Retry: 1}}, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var body queueHealth
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Equal(t, 4, body.Pending)
	require.Equal(t, 1, body.Retry)
}

func TestHealthUnavailableWhenRedisDown(t *testing.T) {
	rec := serveHealth(NewHandler(stubInspector{err: errors.New("dial tcp: refused")}, nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = serveHealth(NewHandler(nil, nil))
	require.Equal(t, http.StatusOK, rec.Code)
}
