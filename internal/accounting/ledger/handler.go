package ledger

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/gl-engine/internal/accounting/shared"
	"github.com/odyssey-erp/gl-engine/internal/platform/httpx"
)

// RebuildEnqueuer schedules an asynchronous projection rebuild.
type RebuildEnqueuer interface {
	EnqueueLedgerRebuild(ctx context.Context, force bool) (string, error)
}

type Handler struct {
	service  *Service
	monitor  *SyncMonitor
	enqueuer RebuildEnqueuer
	logger   *slog.Logger
	now      func() time.Time
}

func NewHandler(logger *slog.Logger, service *Service, monitor *SyncMonitor, enqueuer RebuildEnqueuer) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, monitor: monitor, enqueuer: enqueuer, logger: logger, now: time.Now}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/trial-balance", h.TrialBalance)
	r.Get("/accounts/{code}/balance", h.Balance)
	r.Get("/sum", h.Sum)
	r.Get("/sync", h.SyncStatus)
	r.Post("/rebuild", h.Rebuild)
}

func (h *Handler) TrialBalance(w http.ResponseWriter, r *http.Request) {
	asOf, ok := h.dateParam(w, r, "as_of")
	if !ok {
		return
	}
	rows, err := h.service.TrialBalance(r.Context(), asOf)
	if err != nil {
		h.logger.Error("trial balance", slog.Any("error", err))
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"as_of": asOf.Format(shared.DateLayout), "rows": rows})
}

func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	asOf, ok := h.dateParam(w, r, "as_of")
	if !ok {
		return
	}
	code := chi.URLParam(r, "code")
	balance, typ, err := h.service.AccountBalanceByCode(r.Context(), code, asOf)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"code": code, "type": typ, "balance": balance, "as_of": asOf.Format(shared.DateLayout)})
}

func (h *Handler) Sum(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var codes []string
	for _, c := range strings.Split(q.Get("codes"), ",") {
		if c = strings.TrimSpace(c); c != "" {
			codes = append(codes, c)
		}
	}
	from, err := shared.ParseDate(q.Get("from"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "from must be YYYY-MM-DD")
		return
	}
	to, err := shared.ParseDate(q.Get("to"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "to must be YYYY-MM-DD")
		return
	}
	creditMinusDebit := q.Get("sign") == "credit"
	total, err := h.service.SumByCodesAndRange(r.Context(), codes, from, to, creditMinusDebit)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"codes": codes, "total": total})
}

func (h *Handler) SyncStatus(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.monitor.Snapshot())
}

func (h *Handler) Rebuild(w http.ResponseWriter, r *http.Request) {
	if h.enqueuer == nil {
		http.Error(w, http.StatusText(http.StatusNotImplemented), http.StatusNotImplemented)
		return
	}
	force := r.URL.Query().Get("force") == "true"
	id, err := h.enqueuer.EnqueueLedgerRebuild(r.Context(), force)
	if err != nil {
		h.logger.Error("enqueue ledger rebuild", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]any{"task_id": id, "force": force})
}

func (h *Handler) dateParam(w http.ResponseWriter, r *http.Request, name string) (time.Time, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return shared.DateOnly(h.now()), true
	}
	d, err := shared.ParseDate(raw)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", name+" must be YYYY-MM-DD")
		return time.Time{}, false
	}
	return d, true
}
