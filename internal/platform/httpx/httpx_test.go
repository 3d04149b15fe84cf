package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"

	_ "github.com/odyssey-erp/gl-engine/testing"
)

func TestRespondErrorMapsSentinels(t *testing.T) {
	cases := map[error]int{
		fmt.Errorf("%w: journal 9", ErrNotFound): http.StatusNotFound,
		ErrConflict:                              http.StatusConflict,
		ErrValidation:                            http.StatusUnprocessableEntity,
		errors.New("boom"):                       http.StatusInternalServerError,
	}
	for err, status := range cases {
		rec := httptest.NewRecorder()
		RespondError(rec, err)
		if rec.Code != status {
			t.Fatalf("%v: expected %d, got %d", err, status, rec.Code)
		}
	}
}

type bindTarget struct {
	Name string `json:"name" validate:"required"`
}

func TestBindReportsFieldErrors(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":""}`))
	fields, err := Bind(req, validator.New(), &bindTarget{})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if fields["Name"] != "required" {
		t.Fatalf("expected required tag for Name, got %v", fields)
	}

	rec := httptest.NewRecorder()
	RespondBindError(rec, fields, err)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	var body ProblemDetail
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Violations == nil {
		t.Fatalf("expected violations in problem body")
	}
}

func TestBindRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x","extra":1}`))
	_, err := Bind(req, validator.New(), &bindTarget{})
	if !errors.Is(err, ErrBadRequest) {
		t.Fatalf("expected bad request, got %v", err)
	}
}
