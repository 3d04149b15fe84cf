package integration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/gl-engine/internal/accounting/shared"
	"github.com/odyssey-erp/gl-engine/internal/platform/httpx"
)

// Handler exposes the posting hooks to host modules over HTTP.
type Handler struct {
	hooks     *Hooks
	logger    *slog.Logger
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, hooks *Hooks) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{hooks: hooks, logger: logger, validator: validator.New()}
}

// MountRoutes registers posting routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/sales", h.Sales)
	r.Post("/purchases", h.Purchase)
	r.Post("/expenses", h.Expense)
	r.Post("/payroll", h.Payroll)
	r.Post("/receipts", h.Receipt)
	r.Post("/payments", h.Payment)
	r.Post("/salary-payments", h.SalaryPayment)
}

func (h *Handler) Sales(w http.ResponseWriter, r *http.Request) {
	var req salesRequest
	if !h.bind(w, r, &req) {
		return
	}
	inv, err := req.document()
	if err != nil {
		h.respondError(w, "sales", err)
		return
	}
	h.respond(w, r, "sales", func(ctx context.Context) (Outcome, error) { return h.hooks.PostSales(ctx, inv) })
}

func (h *Handler) Purchase(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if !h.bind(w, r, &req) {
		return
	}
	h.respond(w, r, "purchase", func(ctx context.Context) (Outcome, error) { return h.hooks.PostPurchase(ctx, req.document()) })
}

func (h *Handler) Expense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if !h.bind(w, r, &req) {
		return
	}
	h.respond(w, r, "expense", func(ctx context.Context) (Outcome, error) { return h.hooks.PostExpense(ctx, req.document()) })
}

func (h *Handler) Payroll(w http.ResponseWriter, r *http.Request) {
	var req payrollRequest
	if !h.bind(w, r, &req) {
		return
	}
	h.respond(w, r, "payroll", func(ctx context.Context) (Outcome, error) { return h.hooks.PostPayroll(ctx, req.document()) })
}

func (h *Handler) Receipt(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if !h.bind(w, r, &req) {
		return
	}
	h.respond(w, r, "receipt", func(ctx context.Context) (Outcome, error) { return h.hooks.PostReceipt(ctx, req.document()) })
}

func (h *Handler) Payment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if !h.bind(w, r, &req) {
		return
	}
	h.respond(w, r, "payment", func(ctx context.Context) (Outcome, error) { return h.hooks.PostPayment(ctx, req.document()) })
}

func (h *Handler) SalaryPayment(w http.ResponseWriter, r *http.Request) {
	var req salaryPaymentRequest
	if !h.bind(w, r, &req) {
		return
	}
	h.respond(w, r, "salary_payment", func(ctx context.Context) (Outcome, error) { return h.hooks.PostSalaryPayment(ctx, req.document()) })
}

func (h *Handler) bind(w http.ResponseWriter, r *http.Request, target any) bool {
	if fields, err := httpx.Bind(r, h.validator, target); err != nil {
		httpx.RespondBindError(w, fields, err)
		return false
	}
	return true
}

// respond writes 201 for a new entry and 200 when the document was already booked.
func (h *Handler) respond(w http.ResponseWriter, r *http.Request, document string, post func(context.Context) (Outcome, error)) {
	out, err := post(r.Context())
	if err != nil {
		h.respondError(w, document, err)
		return
	}
	status := http.StatusOK
	if out.Created {
		status = http.StatusCreated
	}
	httpx.JSON(w, status, map[string]any{"journal_entry": out.Entry, "created": out.Created})
}

func (h *Handler) respondError(w http.ResponseWriter, document string, err error) {
	switch {
	case errors.Is(err, ErrInvalidDocument), errors.Is(err, ErrNothingToPost):
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
	case errors.Is(err, ErrInvoiceNotBooked), errors.Is(err, ErrSettlementAccount):
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrConflict, err))
	default:
		h.logger.Warn("post document", slog.String("document", document), slog.Any("error", err))
		shared.RespondError(w, err)
	}
}
