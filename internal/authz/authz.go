// Package authz answers "does this user hold this role". The single
// configured admin is just a role grant seeded at startup, so call sites do
// not change when more roles or a richer grant source are introduced.
package authz

import (
	"context"

	"pollboard/internal/platform/apperr"
)

type Role string

const RoleAdmin Role = "admin"

// RoleStore is the capability lookup backing the authorizer. The production
// implementation is a one-row-per-grant table.
type RoleStore interface {
	HasRole(ctx context.Context, userID string, role Role) (bool, error)
}

type Authorizer struct {
	store RoleStore
}

func NewAuthorizer(store RoleStore) *Authorizer {
	return &Authorizer{store: store}
}

// HasRole fails closed: a store error denies and surfaces as Unavailable so
// it is never mistaken for "authorized" or silently dropped.
func (a *Authorizer) HasRole(ctx context.Context, userID string, role Role) (bool, error) {
	if userID == "" {
		return false, nil
	}
	ok, err := a.store.HasRole(ctx, userID, role)
	if err != nil {
		return false, apperr.Unavailable("authz_unavailable", "role lookup failed", err)
	}
	return ok, nil
}

func (a *Authorizer) IsAdmin(ctx context.Context, userID string) (bool, error) {
	return a.HasRole(ctx, userID, RoleAdmin)
}

// StaticStore is an in-memory RoleStore keyed by user ID.
type StaticStore map[string][]Role

func (s StaticStore) HasRole(_ context.Context, userID string, role Role) (bool, error) {
	for _, r := range s[userID] {
		if r == role {
			return true, nil
		}
	}
	return false, nil
}
