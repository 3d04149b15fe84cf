package accounts

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/gl-engine/internal/accounting/shared"
	_ "github.com/odyssey-erp/gl-engine/testing"
)

type stubRepo struct {
	accounts map[string]Account
	nextID   int64
}

func newStubRepo() *stubRepo {
	return &stubRepo{accounts: map[string]Account{}}
}

func (s *stubRepo) List(context.Context) ([]Account, error) {
	out := make([]Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (s *stubRepo) FindByCode(_ context.Context, code string) (Account, error) {
	a, ok := s.accounts[code]
	if !ok {
		return Account{}, shared.ErrAccountNotFound
	}
	return a, nil
}

func (s *stubRepo) InsertMissing(_ context.Context, accounts []Account) (int, error) {
	n := 0
	for _, a := range accounts {
		if _, ok := s.accounts[a.Code]; ok {
			continue
		}
		s.nextID++
		a.ID = s.nextID
		s.accounts[a.Code] = a
		n++
	}
	return n, nil
}

func (s *stubRepo) SetActive(_ context.Context, code string, active bool) error {
	a, ok := s.accounts[code]
	if !ok {
		return shared.ErrAccountNotFound
	}
	a.IsActive = active
	s.accounts[code] = a
	return nil
}

func TestTreeLeafRule(t *testing.T) {
	tree := CanonicalTree()
	require.True(t, tree.IsLeaf("1111"))
	require.False(t, tree.IsLeaf("111"))
	require.False(t, tree.IsLeaf("1"))
	require.False(t, tree.IsLeaf("9999"), "unknown codes are not leaves")
}

func TestRegistryIsLeafIgnoresNonHierarchicalCodes(t *testing.T) {
	reg := NewRegistry(nil, nil)
	require.True(t, reg.IsLeaf("CASH-LEGACY"))
	require.False(t, reg.IsLeaf("11"))
}

func TestSeedIsIdempotent(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo, nil)

	first, err := svc.Seed(context.Background())
	require.NoError(t, err)
	require.Equal(t, len(CanonicalTree().Nodes()), first)

	second, err := svc.Seed(context.Background())
	require.NoError(t, err)
	require.Zero(t, second)

	parent, err := svc.FindByCode(context.Background(), "111")
	require.NoError(t, err)
	require.True(t, parent.IsControl)
	require.False(t, parent.Postable())

	leaf, err := svc.FindByCode(context.Background(), "1112")
	require.NoError(t, err)
	require.True(t, leaf.Postable())
}

func TestResolveRole(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo, nil)
	_, err := svc.Seed(context.Background())
	require.NoError(t, err)

	acc, err := svc.ResolveRole(context.Background(), RoleBank)
	require.NoError(t, err)
	require.Equal(t, "1121", acc.Code)

	require.NoError(t, svc.Deactivate(context.Background(), "1121"))
	_, err = svc.ResolveRole(context.Background(), RoleBank)
	require.True(t, errors.Is(err, shared.ErrAccountNotPostable))

	svc.WithRoles(map[Role]string{RoleBank: "112"})
	_, err = svc.ResolveRole(context.Background(), RoleBank)
	require.True(t, errors.Is(err, shared.ErrAccountNotPostable), "control accounts are not postable")

	_, err = svc.ResolveRole(context.Background(), RoleCashSales)
	require.True(t, errors.Is(err, shared.ErrRoleNotMapped))
}

func TestResolveMissingAccount(t *testing.T) {
	reg := NewRegistry(nil, nil)
	_, err := reg.Resolve(RoleAccountsReceivable)
	require.True(t, errors.Is(err, shared.ErrAccountNotFound))
}

func TestCreditNormal(t *testing.T) {
	require.True(t, AccountTypeLiability.CreditNormal())
	require.True(t, AccountTypeEquity.CreditNormal())
	require.False(t, AccountTypeRevenue.CreditNormal())
	require.False(t, AccountTypeAsset.CreditNormal())
}
