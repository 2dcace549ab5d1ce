package ctxutil

import (
	"context"
	"testing"

	"github.com/opc-efiling/drafting-backend/internal/domain"
)

func TestWithRoles_And_RolesFromCtx(t *testing.T) {
	t.Parallel()

	roles := []domain.Role{domain.RoleDrafter, domain.RoleCounsel}
	ctx := WithRoles(context.Background(), roles)

	got, ok := RolesFromCtx(ctx)
	if !ok {
		t.Fatal("expected ok=true for stored roles")
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 roles, got %d", len(got))
	}
}

func TestRolesFromCtx_EmptyContext(t *testing.T) {
	t.Parallel()

	if _, ok := RolesFromCtx(context.Background()); ok {
		t.Fatal("expected ok=false for empty context")
	}
}

func TestRolesFromCtx_EmptySlice(t *testing.T) {
	t.Parallel()

	ctx := WithRoles(context.Background(), nil)
	if _, ok := RolesFromCtx(ctx); ok {
		t.Fatal("expected ok=false for empty role set")
	}
}

func TestHasRole(t *testing.T) {
	t.Parallel()

	ctx := WithRoles(context.Background(), []domain.Role{domain.RoleSeniorCounsel})

	if !HasRole(ctx, domain.RoleSeniorCounsel) {
		t.Fatal("expected HasRole=true for held role")
	}
	if HasRole(ctx, domain.RoleAdmin) {
		t.Fatal("expected HasRole=false for role not held")
	}
	if HasRole(context.Background(), domain.RoleAdmin) {
		t.Fatal("expected HasRole=false for empty context")
	}
}
