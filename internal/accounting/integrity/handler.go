package integrity

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/gl-engine/internal/accounting/shared"
	"github.com/odyssey-erp/gl-engine/internal/platform/httpx"
)

type Handler struct {
	checker *Checker
	logger  *slog.Logger
}

func NewHandler(logger *slog.Logger, checker *Checker) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{checker: checker, logger: logger}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/scan", h.Scan)
	r.Get("/snapshots/{year}", h.Snapshot)
}

// Scan runs an ad hoc check over from..to without caching the result.
func (h *Handler) Scan(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, errFrom := shared.ParseDate(q.Get("from"))
	to, errTo := shared.ParseDate(q.Get("to"))
	if errFrom != nil || errTo != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "from and to must be YYYY-MM-DD")
		return
	}
	snap, err := h.checker.Run(r.Context(), from, to)
	if err != nil {
		h.logger.Error("integrity scan", slog.Any("error", err))
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, snap)
}

func (h *Handler) Snapshot(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1900 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid fiscal year")
		return
	}
	snap, ok, err := h.checker.Latest(r.Context(), year)
	if err != nil {
		h.logger.Error("load integrity snapshot", slog.Any("error", err))
		httpx.Problem(w, http.StatusServiceUnavailable, "Service Unavailable", "snapshot cache unavailable")
		return
	}
	if !ok {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "no snapshot for fiscal year "+strconv.Itoa(year))
		return
	}
	w.Header().Set("Last-Modified", snap.RunAt.UTC().Format(time.RFC1123))
	httpx.JSON(w, http.StatusOK, snap)
}
