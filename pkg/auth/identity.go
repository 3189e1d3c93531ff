// Package auth reads the caller identity forwarded by the authentication
// gateway and answers role allow-list checks.
package auth

import (
	"context"
	"net/http"
	"strings"
)

type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleHotelOwner Role = "HOTEL_OWNER"
	RoleCustomer   Role = "CUSTOMER"

	HeaderUserID    = "X-User-ID"
	HeaderUserRole  = "X-User-Role"
	HeaderUserEmail = "X-User-Email"
)

func ParseRole(s string) (Role, bool) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleHotelOwner, RoleCustomer:
		return r, true
	}
	return "", false
}

type Identity struct {
	UserID string
	Role   Role
	Email  string
}

func (id Identity) IsAdmin() bool {
	return id.Role == RoleAdmin
}

// Allowed reports whether the identity's role is in the allow-list.
// An empty allow-list admits any authenticated role.
func (id Identity) Allowed(roles ...Role) bool {
	if len(roles) == 0 {
		return true
	}
	for _, r := range roles {
		if id.Role == r {
			return true
		}
	}
	return false
}

// CanAccess reports whether the identity may read a resource owned by ownerID.
func (id Identity) CanAccess(ownerID string) bool {
	return id.UserID == ownerID || id.IsAdmin()
}

// FromRequest extracts the identity headers. ok is false when the user id is
// missing or the role is not one of the known roles.
func FromRequest(r *http.Request) (Identity, bool) {
	userID := strings.TrimSpace(r.Header.Get(HeaderUserID))
	if userID == "" {
		return Identity{}, false
	}
	role, ok := ParseRole(r.Header.Get(HeaderUserRole))
	if !ok {
		return Identity{}, false
	}
	return Identity{
		UserID: userID,
		Role:   role,
		Email:  strings.TrimSpace(r.Header.Get(HeaderUserEmail)),
	}, true
}

type ctxKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}
