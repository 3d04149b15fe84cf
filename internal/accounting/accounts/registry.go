package accounts

import (
	"fmt"
	"sort"

	"github.com/odyssey-erp/gl-engine/internal/accounting/shared"
)

// Registry is an immutable lookup over persisted accounts, the canonical
// tree and the role map.
type Registry struct {
	tree   *Tree
	roles  map[Role]string
	byCode map[string]Account
	byID   map[int64]Account
}

// NewRegistry builds a registry. A nil roles map uses DefaultRoles.
func NewRegistry(accounts []Account, roles map[Role]string) *Registry {
	if roles == nil {
		roles = DefaultRoles
	}
	r := &Registry{
		tree:   CanonicalTree(),
		roles:  roles,
		byCode: make(map[string]Account, len(accounts)),
		byID:   make(map[int64]Account, len(accounts)),
	}
	for _, a := range accounts {
		r.byCode[a.Code] = a
		if a.ID != 0 {
			r.byID[a.ID] = a
		}
	}
	return r
}

// Lookup returns the account stored under code.
func (r *Registry) Lookup(code string) (Account, bool) {
	a, ok := r.byCode[code]
	return a, ok
}

// ByID returns the account with the given id.
func (r *Registry) ByID(id int64) (Account, bool) {
	a, ok := r.byID[id]
	return a, ok
}

// IsLeaf applies the canonical tree rule to hierarchical codes. Codes outside
// the numeric pattern are not subject to the tree.
func (r *Registry) IsLeaf(code string) bool {
	if !IsHierarchical(code) {
		return true
	}
	return r.tree.IsLeaf(code)
}

// RoleCode returns the code mapped to role.
func (r *Registry) RoleCode(role Role) (string, error) {
	code, ok := r.roles[role]
	if !ok || code == "" {
		return "", fmt.Errorf("%w: %s", shared.ErrRoleNotMapped, role)
	}
	return code, nil
}

// Resolve returns the postable account mapped to role.
func (r *Registry) Resolve(role Role) (Account, error) {
	code, err := r.RoleCode(role)
	if err != nil {
		return Account{}, err
	}
	acc, ok := r.byCode[code]
	if !ok {
		return Account{}, fmt.Errorf("%w: %s (%s)", shared.ErrAccountNotFound, code, role)
	}
	if !acc.Postable() || !r.IsLeaf(code) {
		return Account{}, fmt.Errorf("%w: %s (%s)", shared.ErrAccountNotPostable, code, role)
	}
	return acc, nil
}

// Accounts returns every account ordered by code.
func (r *Registry) Accounts() []Account {
	out := make([]Account, 0, len(r.byCode))
	for _, a := range r.byCode {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
