package app

import (
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/gl-engine/internal/accounting/accounts"
	"github.com/odyssey-erp/gl-engine/internal/accounting/integrity"
	"github.com/odyssey-erp/gl-engine/internal/accounting/journals"
	"github.com/odyssey-erp/gl-engine/internal/accounting/ledger"
	"github.com/odyssey-erp/gl-engine/internal/accounting/memstore"
	"github.com/odyssey-erp/gl-engine/internal/accounting/periods"
	"github.com/odyssey-erp/gl-engine/internal/accounting/reports"
	"github.com/odyssey-erp/gl-engine/internal/audit"
	audithttp "github.com/odyssey-erp/gl-engine/internal/audit/http"
	"github.com/odyssey-erp/gl-engine/internal/integration"
	"github.com/odyssey-erp/gl-engine/internal/observability"
)

// Repositories groups the storage ports of the ledger.
type Repositories struct {
	Accounts  accounts.Repository
	Periods   periods.Repository
	Journals  journals.Repository
	Ledger    ledger.Repository
	Audit     audit.Repository
	Integrity integrity.Repository
}

// PostgresRepositories backs every port with pgx.
func PostgresRepositories(pool *pgxpool.Pool) Repositories {
	return Repositories{
		Accounts:  accounts.NewRepository(pool),
		Periods:   periods.NewRepository(pool),
		Journals:  journals.NewRepository(pool),
		Ledger:    ledger.NewRepository(pool),
		Audit:     audit.NewRepository(pool),
		Integrity: integrity.NewRepository(pool),
	}
}

// MemoryRepositories backs every port with one in-process store.
func MemoryRepositories(store *memstore.Store) Repositories {
	return Repositories{
		Accounts:  store.Accounts(),
		Periods:   store.Periods(),
		Journals:  store.Journals(),
		Ledger:    store.Ledger(),
		Audit:     store.Audit(),
		Integrity: store.Integrity(),
	}
}

// Services is the wired ledger: stores, monitors and the integrity checker.
type Services struct {
	Accounts  *accounts.Service
	Periods   *periods.Service
	Journals  *journals.Service
	Ledger    *ledger.Service
	Projector *ledger.Projector
	Monitor   *ledger.SyncMonitor
	Reports   *reports.Service
	Audit     *audit.Service
	Integrity *integrity.Checker
	Hooks     *integration.Hooks
}

// NewServices wires services over repos. A nil redis client disables the
// integrity snapshot cache. Ledger metrics go to a private registry when
// metrics is nil.
func NewServices(cfg *Config, repos Repositories, logger *slog.Logger, metrics *observability.Metrics, redisClient *redis.Client) *Services {
	if logger == nil {
		logger = slog.Default()
	}
	threshold, window := ledger.DefaultSyncAlertThreshold, ledger.DefaultSyncAlertWindow
	ttl := integrity.DefaultSnapshotTTL
	if cfg != nil {
		threshold, window = cfg.LedgerSyncAlertThreshold, cfg.LedgerSyncAlertWindow
		if cfg.IntegritySnapshotTTL > 0 {
			ttl = cfg.IntegritySnapshotTTL
		}
	}
	var registerer prometheus.Registerer = prometheus.NewRegistry()
	if metrics != nil {
		registerer = metrics.Registerer()
	}
	ledgerMetrics := observability.NewLedgerMetrics(registerer)

	s := &Services{
		Accounts: accounts.NewService(repos.Accounts, logger),
		Periods:  periods.NewService(repos.Periods, logger),
		Journals: journals.NewService(repos.Journals, logger),
		Ledger:   ledger.NewService(repos.Ledger),
		Monitor:  ledger.NewSyncMonitor(threshold, window),
		Audit:    audit.NewService(repos.Audit),
	}
	s.Projector = ledger.NewProjector(repos.Ledger, logger, ledgerMetrics)
	s.Journals.WithMetrics(ledgerMetrics)
	s.Journals.WithSyncMonitor(s.Monitor)
	s.Reports = reports.NewService(s.Ledger, accounts.DefaultRoles)

	s.Integrity = integrity.NewChecker(repos.Integrity, s.Accounts, s.Projector, logger)
	if redisClient != nil {
		s.Integrity.WithCache(integrity.NewSnapshotCache(redisClient, ttl))
	}
	s.Periods.WithAuditor(s.Integrity)
	s.Hooks = integration.NewHooks(s.Journals, s.Accounts, s.Periods, logger)
	return s
}

// HTTPHandlers builds the API handlers over s. enqueuer may be nil when no
// queue is configured.
func (s *Services) HTTPHandlers(logger *slog.Logger, enqueuer ledger.RebuildEnqueuer) RouterParams {
	return RouterParams{
		Logger:           logger,
		AccountsHandler:  accounts.NewHandler(logger, s.Accounts),
		PeriodsHandler:   periods.NewHandler(logger, s.Periods),
		JournalsHandler:  journals.NewHandler(logger, s.Journals),
		LedgerHandler:    ledger.NewHandler(logger, s.Ledger, s.Monitor, enqueuer),
		ReportsHandler:   reports.NewHandler(logger, s.Reports),
		IntegrityHandler: integrity.NewHandler(logger, s.Integrity),
		PostingsHandler:  integration.NewHandler(logger, s.Hooks),
		AuditHandler:     audithttp.NewHandler(logger, s.Audit, audit.NewExporter()),
	}
}
