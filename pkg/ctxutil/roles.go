package ctxutil

import (
	"context"

	"github.com/opc-efiling/drafting-backend/internal/domain"
)

const rolesKey ctxKey = "roles"

// WithRoles stores the authenticated user's role set in the context.
func WithRoles(ctx context.Context, roles []domain.Role) context.Context {
	return context.WithValue(ctx, rolesKey, roles)
}

// RolesFromCtx extracts the role set from the context.
// Returns nil and false if absent or of the wrong type.
func RolesFromCtx(ctx context.Context) ([]domain.Role, bool) {
	roles, ok := ctx.Value(rolesKey).([]domain.Role)
	if !ok || len(roles) == 0 {
		return nil, false
	}
	return roles, true
}

// HasRole reports whether the context's role set contains role.
func HasRole(ctx context.Context, role domain.Role) bool {
	roles, ok := RolesFromCtx(ctx)
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
