package reports

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/gl-engine/internal/accounting/shared"
	"github.com/odyssey-erp/gl-engine/internal/platform/httpx"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
	now     func() time.Time
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, logger: logger, now: time.Now}
}

// MountRoutes registers report routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/trial-balance", h.TrialBalance)
	r.Get("/profit-loss", h.ProfitAndLoss)
	r.Get("/balance-sheet", h.BalanceSheet)
	r.Get("/vat", h.VAT)
}

func (h *Handler) TrialBalance(w http.ResponseWriter, r *http.Request) {
	from, to, ok := h.rangeParams(w, r)
	if !ok {
		return
	}
	tb, err := h.service.TrialBalance(r.Context(), from, to)
	if err != nil {
		h.logger.Error("trial balance report", slog.Any("error", err))
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, TrialBalanceViewModel{
		PeriodLabel: periodLabel(from, to),
		From:        from.Format(shared.DateLayout),
		To:          to.Format(shared.DateLayout),
		GeneratedAt: h.now().UTC(),
		Balanced:    tb.Balanced(),
		Report:      tb,
	})
}

func (h *Handler) ProfitAndLoss(w http.ResponseWriter, r *http.Request) {
	from, to, ok := h.rangeParams(w, r)
	if !ok {
		return
	}
	pl, err := h.service.ProfitAndLoss(r.Context(), from, to)
	if err != nil {
		h.logger.Error("profit and loss report", slog.Any("error", err))
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ProfitAndLossViewModel{
		PeriodLabel: periodLabel(from, to),
		From:        from.Format(shared.DateLayout),
		To:          to.Format(shared.DateLayout),
		GeneratedAt: h.now().UTC(),
		Report:      pl,
	})
}

func (h *Handler) BalanceSheet(w http.ResponseWriter, r *http.Request) {
	asOf, ok := h.dateParam(w, r, "as_of", shared.DateOnly(h.now()))
	if !ok {
		return
	}
	bs, err := h.service.BalanceSheet(r.Context(), asOf)
	if err != nil {
		h.logger.Error("balance sheet report", slog.Any("error", err))
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, BalanceSheetViewModel{
		PeriodLabel: "As of " + asOf.Format("02 Jan 2006"),
		AsOf:        asOf.Format(shared.DateLayout),
		GeneratedAt: h.now().UTC(),
		Balanced:    bs.Balanced(),
		Report:      bs,
	})
}

func (h *Handler) VAT(w http.ResponseWriter, r *http.Request) {
	from, to, ok := h.rangeParams(w, r)
	if !ok {
		return
	}
	vat, err := h.service.VAT(r.Context(), from, to)
	if err != nil {
		h.logger.Error("vat report", slog.Any("error", err))
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, VATViewModel{
		PeriodLabel: periodLabel(from, to),
		GeneratedAt: h.now().UTC(),
		Payable:     vat.Payable(),
		Report:      vat,
	})
}

// rangeParams defaults to the first of the current month through today.
func (h *Handler) rangeParams(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	today := shared.DateOnly(h.now())
	from, ok := h.dateParam(w, r, "from", today.AddDate(0, 0, 1-today.Day()))
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	to, ok := h.dateParam(w, r, "to", today)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	if to.Before(from) {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "to must not be before from")
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

func (h *Handler) dateParam(w http.ResponseWriter, r *http.Request, name string, def time.Time) (time.Time, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, true
	}
	d, err := shared.ParseDate(raw)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", name+" must be YYYY-MM-DD")
		return time.Time{}, false
	}
	return d, true
}

func periodLabel(from, to time.Time) string {
	return from.Format("02 Jan 2006") + " - " + to.Format("02 Jan 2006")
}
