package integration_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/gl-engine/internal/integration"
)

type postingResponse struct {
	Created bool `json:"created"`
	Entry   struct {
		Number     string `json:"entry_number"`
		TotalDebit string `json:"total_debit"`
	} `json:"journal_entry"`
}

func newPostingRouter(t *testing.T) (http.Handler, env) {
	t.Helper()
	e := newEnv(t)
	r := chi.NewRouter()
	r.Route("/postings", integration.NewHandler(nil, e.hooks).MountRoutes)
	return r, e
}

func postJSON(router http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSalesEndpointPostsOnceAndReplays(t *testing.T) {
	router, e := newPostingRouter(t)
	body := `{"id":7,"invoice_number":"INV-7","date":"2025-06-15","customer_channel":"keeta",
		"payment_method":"credit","amount_before_tax":"100","discount_amount":"10","tax_amount":"15"}`

	rec := postJSON(router, "/postings/sales", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var first postingResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&first))
	require.True(t, first.Created)
	require.Equal(t, "JE-SAL-INV-7", first.Entry.Number)
	require.True(t, d("115").Equal(d(first.Entry.TotalDebit)))

	rec = postJSON(router, "/postings/sales", body)
	require.Equal(t, http.StatusOK, rec.Code)
	var second postingResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&second))
	require.False(t, second.Created)
	require.Equal(t, 1, e.store.EntryCount())
}

func TestSalesEndpointRejectsUnknownChannel(t *testing.T) {
	router, _ := newPostingRouter(t)
	rec := postJSON(router, "/postings/sales", `{"id":1,"date":"2025-06-15","customer_channel":"uber","amount_before_tax":"10"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestPaymentEndpointNeedsBookedInvoice(t *testing.T) {
	router, _ := newPostingRouter(t)
	rec := postJSON(router, "/postings/payments", `{"id":3,"invoice_id":99,"invoice_type":"purchase","date":"2025-06-16","amount":"50"}`)
	require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())

	rec = postJSON(router, "/postings/payments", `{"id":3,"invoice_id":99,"invoice_type":"refund","date":"2025-06-16","amount":"50"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestPayrollEndpointValidatesMonth(t *testing.T) {
	router, _ := newPostingRouter(t)
	rec := postJSON(router, "/postings/payroll", `{"id":4,"month":"June","lines":[{"employee_id":1,"net_salary":"3000"}]}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = postJSON(router, "/postings/payroll", `{"id":4,"month":"2025-06","lines":[{"employee_id":1,"net_salary":"3000"}]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}
