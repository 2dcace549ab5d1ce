package middleware

import (
	"context"

	"github.com/opc-efiling/drafting-backend/internal/domain"
	"github.com/opc-efiling/drafting-backend/pkg/ctxutil"
)

// RequireRole returns domain.ErrForbidden unless the context user holds at
// least one of the given roles. Use in REST handlers, not as HTTP
// middleware: most endpoints accept several roles and decide per action.
func RequireRole(ctx context.Context, roles ...domain.Role) error {
	for _, role := range roles {
		if ctxutil.HasRole(ctx, role) {
			return nil
		}
	}
	return domain.ErrForbidden
}
