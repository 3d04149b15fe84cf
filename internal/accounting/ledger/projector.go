package ledger

import (
	"context"
	"log/slog"
	"sort"

	"github.com/odyssey-erp/gl-engine/internal/accounting/shared"
	"github.com/odyssey-erp/gl-engine/internal/observability"
)

// Projector maintains ledger_entries as a replayable projection of posted lines.
type Projector struct {
	repo    Repository
	logger  *slog.Logger
	metrics *observability.LedgerMetrics
}

func NewProjector(repo Repository, logger *slog.Logger, metrics *observability.LedgerMetrics) *Projector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Projector{repo: repo, logger: logger, metrics: metrics}
}

// Rebuild clears the projection and replays every posted line in one
// transaction. Running it twice yields the same rows.
func (p *Projector) Rebuild(ctx context.Context) (RebuildResult, error) {
	var result RebuildResult
	err := p.repo.WithTx(ctx, func(ctx context.Context, tx ProjectionTx) error {
		deleted, err := tx.ClearProjection(ctx)
		if err != nil {
			return err
		}
		lines, err := tx.PostedLines(ctx)
		if err != nil {
			return err
		}
		rows := LegacyRows(lines)
		if err := tx.InsertLegacyRows(ctx, rows); err != nil {
			return err
		}
		result = RebuildResult{Deleted: deleted, Inserted: len(rows)}
		return nil
	})
	if err != nil {
		p.logger.Error("ledger projection rebuild failed", slog.Any("error", err))
		return RebuildResult{}, err
	}
	p.metrics.SetDriftAccounts(0)
	p.logger.Info("ledger projection rebuilt", slog.Int64("deleted", result.Deleted), slog.Int("inserted", result.Inserted))
	return result, nil
}

// Drift lists accounts whose projection totals differ from posted journal lines.
func (p *Projector) Drift(ctx context.Context) ([]DriftRow, error) {
	projection, err := p.repo.ProjectionTotals(ctx)
	if err != nil {
		return nil, err
	}
	journal, err := p.repo.JournalTotals(ctx)
	if err != nil {
		return nil, err
	}
	ids := make(map[int64]struct{}, len(journal))
	for id := range projection {
		ids[id] = struct{}{}
	}
	for id := range journal {
		ids[id] = struct{}{}
	}
	var drift []DriftRow
	for id := range ids {
		pt, jt := projection[id], journal[id]
		if shared.Balanced(pt.Debit, jt.Debit) && shared.Balanced(pt.Credit, jt.Credit) {
			continue
		}
		drift = append(drift, DriftRow{AccountID: id, Projection: pt, Journal: jt})
	}
	sort.Slice(drift, func(i, j int) bool { return drift[i].AccountID < drift[j].AccountID })
	p.metrics.SetDriftAccounts(len(drift))
	return drift, nil
}
