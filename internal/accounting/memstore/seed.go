package memstore

import (
	"context"
	"log/slog"
	"time"

	"github.com/odyssey-erp/gl-engine/internal/accounting/accounts"
	"github.com/odyssey-erp/gl-engine/internal/accounting/periods"
)

// Seed loads the canonical chart of accounts and opens one calendar fiscal
// year per entry of years.
func (s *Store) Seed(ctx context.Context, logger *slog.Logger, years ...int) error {
	if _, err := accounts.NewService(s.Accounts(), logger).Seed(ctx); err != nil {
		return err
	}
	calendar := periods.NewService(s.Periods(), logger)
	for _, y := range years {
		_, err := calendar.CreateYear(ctx, periods.CreateYearInput{
			Year:      y,
			StartDate: time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(y, time.December, 31, 0, 0, 0, 0, time.UTC),
		})
		if err != nil {
			return err
		}
	}
	return nil
}
