// Package user implements the identity lookup store consulted for login and
// transition authorization. Full user administration is out of scope; only
// reads live here.
package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	"github.com/opc-efiling/drafting-backend/internal/adapter/postgres"
	"github.com/opc-efiling/drafting-backend/internal/domain"
)

const table = "users"

var columns = "id, email, full_name, password_hash, roles, created_at"

// Repo provides user reads backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new user repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

type row struct {
	ID           uuid.UUID `db:"id"`
	Email        string    `db:"email"`
	FullName     string    `db:"full_name"`
	PasswordHash string    `db:"password_hash"`
	Roles        []string  `db:"roles"`
	CreatedAt    time.Time `db:"created_at"`
}

func (r row) toDomain() *domain.User {
	roles := make([]domain.Role, len(r.Roles))
	for i, s := range r.Roles {
		roles[i] = domain.Role(s)
	}
	return &domain.User{
		ID:           r.ID,
		Email:        r.Email,
		FullName:     r.FullName,
		PasswordHash: r.PasswordHash,
		Roles:        roles,
		CreatedAt:    r.CreatedAt,
	}
}

// GetByID returns the user with the given ID, or domain.ErrNotFound.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.getBy(ctx, squirrel.Eq{"id": id}, id.String())
}

// GetByEmail returns the user with the given email (case-insensitive), or
// domain.ErrNotFound.
func (r *Repo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	norm := strings.ToLower(strings.TrimSpace(email))
	return r.getBy(ctx, squirrel.Expr("lower(email) = ?", norm), norm)
}

func (r *Repo) getBy(ctx context.Context, cond squirrel.Sqlizer, key string) (*domain.User, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := postgres.Builder().
		Select(columns).
		From(table).
		Where(cond).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get user: %w", err)
	}

	var out row
	if err := pgxscan.Get(ctx, q, &out, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, fmt.Errorf("user %s: %w", key, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get user %s: %w", key, err)
	}
	return out.toDomain(), nil
}
