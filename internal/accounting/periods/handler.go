package periods

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/gl-engine/internal/accounting/shared"
	"github.com/odyssey-erp/gl-engine/internal/platform/httpx"
	platformshared "github.com/odyssey-erp/gl-engine/internal/shared"
)

type Handler struct {
	service   *Service
	logger    *slog.Logger
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers fiscal year routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/open", h.IsOpen)
	r.Delete("/exceptional-periods/{id}", h.RemoveExceptional)
	r.Get("/{id}", h.Get)
	r.Post("/{id}/close", h.Close)
	r.Post("/{id}/partial-close", h.PartialClose)
	r.Post("/{id}/lock", h.Lock)
	r.Post("/{id}/reopen", h.Reopen)
	r.Post("/{id}/exceptional-periods", h.AddExceptional)
}

type createYearRequest struct {
	Year      int    `json:"year" validate:"required,gt=1900"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
}

type closeRequest struct {
	Reason string `json:"reason"`
}

type partialCloseRequest struct {
	ClosedUntil string `json:"closed_until" validate:"required,datetime=2006-01-02"`
	Reason      string `json:"reason"`
}

type reopenRequest struct {
	Reason string `json:"reason" validate:"required,min=20"`
}

type exceptionalRequest struct {
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
	Reason    string `json:"reason" validate:"required"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	years, err := h.service.ListYears(r.Context())
	if err != nil {
		h.logger.Error("list fiscal years", slog.Any("error", err))
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"fiscal_years": years})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	fy, err := h.service.GetYear(r.Context(), id)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, fy)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createYearRequest
	if fields, err := httpx.Bind(r, h.validator, &req); err != nil {
		httpx.RespondBindError(w, fields, err)
		return
	}
	start, _ := shared.ParseDate(req.StartDate)
	end, _ := shared.ParseDate(req.EndDate)
	fy, err := h.service.CreateYear(r.Context(), CreateYearInput{
		Year:      req.Year,
		StartDate: start,
		EndDate:   end,
		ActorID:   platformshared.ActorFromContext(r.Context()),
	})
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, fy)
}

func (h *Handler) Close(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req closeRequest
	if fields, err := httpx.Bind(r, h.validator, &req); err != nil {
		httpx.RespondBindError(w, fields, err)
		return
	}
	fy, err := h.service.Close(r.Context(), id, CloseInput{Reason: req.Reason, ActorID: platformshared.ActorFromContext(r.Context())})
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, fy)
}

func (h *Handler) PartialClose(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req partialCloseRequest
	if fields, err := httpx.Bind(r, h.validator, &req); err != nil {
		httpx.RespondBindError(w, fields, err)
		return
	}
	until, _ := shared.ParseDate(req.ClosedUntil)
	fy, err := h.service.PartialClose(r.Context(), id, until, CloseInput{Reason: req.Reason, ActorID: platformshared.ActorFromContext(r.Context())})
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, fy)
}

func (h *Handler) Lock(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	fy, err := h.service.Lock(r.Context(), id, platformshared.ActorFromContext(r.Context()))
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, fy)
}

func (h *Handler) Reopen(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req reopenRequest
	if fields, err := httpx.Bind(r, h.validator, &req); err != nil {
		httpx.RespondBindError(w, fields, err)
		return
	}
	fy, err := h.service.Reopen(r.Context(), id, CloseInput{Reason: req.Reason, ActorID: platformshared.ActorFromContext(r.Context())})
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, fy)
}

func (h *Handler) AddExceptional(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req exceptionalRequest
	if fields, err := httpx.Bind(r, h.validator, &req); err != nil {
		httpx.RespondBindError(w, fields, err)
		return
	}
	start, _ := shared.ParseDate(req.StartDate)
	end, _ := shared.ParseDate(req.EndDate)
	p, err := h.service.AddExceptionalPeriod(r.Context(), id, ExceptionalInput{
		StartDate: start,
		EndDate:   end,
		Reason:    req.Reason,
		ActorID:   platformshared.ActorFromContext(r.Context()),
	})
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

func (h *Handler) RemoveExceptional(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.RemoveExceptionalPeriod(r.Context(), id, platformshared.ActorFromContext(r.Context())); err != nil {
		shared.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) IsOpen(w http.ResponseWriter, r *http.Request) {
	d, err := shared.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "date must be YYYY-MM-DD")
		return
	}
	open, reason, err := h.service.IsPeriodOpenForDate(r.Context(), d)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"date": d.Format(shared.DateLayout), "open": open, "reason": reason})
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid id")
		return 0, false
	}
	return id, true
}
