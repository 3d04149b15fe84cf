package shared

import (
	"context"
	"errors"
	"testing"

	_ "github.com/odyssey-erp/gl-engine/testing"
)

func TestValidatePeriodTransition(t *testing.T) {
	cases := []struct {
		current, target string
		override        bool
		ok              bool
	}{
		{PeriodStatusOpen, PeriodStatusPartial, false, true},
		{PeriodStatusOpen, PeriodStatusClosed, false, true},
		{PeriodStatusPartial, PeriodStatusPartial, false, true},
		{PeriodStatusPartial, PeriodStatusClosed, false, true},
		{PeriodStatusClosed, PeriodStatusOpen, false, true},
		{PeriodStatusClosed, PeriodStatusPartial, false, false},
		{PeriodStatusLocked, PeriodStatusOpen, false, false},
		{PeriodStatusLocked, PeriodStatusOpen, true, true},
		{PeriodStatusOpen, PeriodStatusOpen, false, false},
	}
	for _, tc := range cases {
		err := ValidatePeriodTransition(tc.current, tc.target, tc.override)
		if tc.ok && err != nil {
			t.Fatalf("%s -> %s: unexpected error %v", tc.current, tc.target, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidPeriodTransition) {
			t.Fatalf("%s -> %s: expected invalid transition, got %v", tc.current, tc.target, err)
		}
	}
}

func TestActorContext(t *testing.T) {
	ctx := context.Background()
	if ActorPtr(ctx) != nil {
		t.Fatalf("expected nil actor for bare context")
	}
	ctx = ContextWithActor(ctx, 42)
	if got := ActorFromContext(ctx); got != 42 {
		t.Fatalf("expected actor 42, got %d", got)
	}
}

func TestAuditLogValidate(t *testing.T) {
	if err := (AuditLog{Action: "close"}).Validate(); !errors.Is(err, ErrAuditIncomplete) {
		t.Fatalf("expected incomplete error, got %v", err)
	}
	if err := (AuditLog{Action: "close", Entity: "fiscal_year", EntityID: "2025"}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
