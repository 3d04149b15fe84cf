package memstore

import (
	"context"
	"fmt"

	"github.com/odyssey-erp/gl-engine/internal/accounting/accounts"
	"github.com/odyssey-erp/gl-engine/internal/accounting/shared"
)

type accountRepo struct{ s *Store }

func (r accountRepo) List(ctx context.Context) ([]accounts.Account, error) {
	var out []accounts.Account
	r.s.read(func(st *state) { out = st.accountList() })
	return out, nil
}

func (r accountRepo) FindByCode(ctx context.Context, code string) (accounts.Account, error) {
	var (
		a  accounts.Account
		ok bool
	)
	r.s.read(func(st *state) { a, ok = st.accounts[code] })
	if !ok {
		return accounts.Account{}, fmt.Errorf("%w: %s", shared.ErrAccountNotFound, code)
	}
	return a, nil
}

func (r accountRepo) InsertMissing(ctx context.Context, list []accounts.Account) (int, error) {
	inserted := 0
	err := r.s.tx(func(st *state) error {
		now := r.s.now()
		for _, a := range list {
			if _, exists := st.accounts[a.Code]; exists {
				continue
			}
			a.ID = st.nextID()
			a.CreatedAt, a.UpdatedAt = now, now
			st.accounts[a.Code] = a
			inserted++
		}
		return nil
	})
	return inserted, err
}

func (r accountRepo) SetActive(ctx context.Context, code string, active bool) error {
	return r.s.tx(func(st *state) error {
		a, ok := st.accounts[code]
		if !ok {
			return fmt.Errorf("%w: %s", shared.ErrAccountNotFound, code)
		}
		a.IsActive = active
		a.UpdatedAt = r.s.now()
		st.accounts[code] = a
		return nil
	})
}
