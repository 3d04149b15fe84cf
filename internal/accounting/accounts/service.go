package accounts

import (
	"context"
	"log/slog"
)

type Service struct {
	repo   Repository
	roles  map[Role]string
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, roles: DefaultRoles, logger: logger}
}

// WithRoles overrides the role to code mapping.
func (s *Service) WithRoles(roles map[Role]string) {
	if roles != nil {
		s.roles = roles
	}
}

func (s *Service) List(ctx context.Context) ([]Account, error) {
	return s.repo.List(ctx)
}

// Seed inserts canonical tree nodes that are not persisted yet. Leaves are
// postable, every parent is a control account.
func (s *Service) Seed(ctx context.Context) (int, error) {
	tree := CanonicalTree()
	nodes := tree.Nodes()
	accounts := make([]Account, 0, len(nodes))
	for _, n := range nodes {
		leaf := tree.IsLeaf(n.Code)
		accounts = append(accounts, Account{
			Code:         n.Code,
			Name:         n.Name,
			Type:         n.Type,
			ParentCode:   n.Parent,
			AllowPosting: leaf,
			IsControl:    !leaf,
			IsActive:     true,
		})
	}
	inserted, err := s.repo.InsertMissing(ctx, accounts)
	if err != nil {
		return inserted, err
	}
	s.logger.Info("chart of accounts seeded", slog.Int("inserted", inserted), slog.Int("canonical", len(accounts)))
	return inserted, nil
}

// Registry loads every account into a lookup snapshot.
func (s *Service) Registry(ctx context.Context) (*Registry, error) {
	accounts, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return NewRegistry(accounts, s.roles), nil
}

// ResolveRole returns the postable account for role.
func (s *Service) ResolveRole(ctx context.Context, role Role) (Account, error) {
	reg, err := s.Registry(ctx)
	if err != nil {
		return Account{}, err
	}
	return reg.Resolve(role)
}

// FindByCode returns a persisted account.
func (s *Service) FindByCode(ctx context.Context, code string) (Account, error) {
	return s.repo.FindByCode(ctx, code)
}

func (s *Service) Deactivate(ctx context.Context, code string) error {
	if err := s.repo.SetActive(ctx, code, false); err != nil {
		return err
	}
	s.logger.Info("account deactivated", slog.String("code", code))
	return nil
}

func (s *Service) Activate(ctx context.Context, code string) error {
	if err := s.repo.SetActive(ctx, code, true); err != nil {
		return err
	}
	s.logger.Info("account activated", slog.String("code", code))
	return nil
}
