// Package lock implements the instruction edit-lock store using
// PostgreSQL. The lock table holds at most one row per instruction; all
// acquire-time races are resolved by a single-statement upsert so that two
// concurrent acquires by different holders can never both succeed.
//
// Every expiry comparison uses the database clock (now()), never the
// application clock, so all callers observe the same notion of "expired".
package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	"github.com/opc-efiling/drafting-backend/internal/adapter/postgres"
	"github.com/opc-efiling/drafting-backend/internal/domain"
)

const table = "instruction_locks"

// Repo provides lock persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new lock repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

type lockRow struct {
	InstructionID uuid.UUID `db:"instruction_id"`
	HolderID      uuid.UUID `db:"holder_id"`
	AcquiredAt    time.Time `db:"acquired_at"`
	ExpiresAt     time.Time `db:"expires_at"`
}

func (r lockRow) toDomain() *domain.Lock {
	return &domain.Lock{
		InstructionID: r.InstructionID,
		HolderID:      r.HolderID,
		AcquiredAt:    r.AcquiredAt,
		ExpiresAt:     r.ExpiresAt,
	}
}

// Acquire attempts to take or refresh the lock on an instruction for
// holderID with the given TTL. It returns true when the lock is now held by
// holderID, false when a different holder has a live lock.
//
// The whole decision runs as one upsert: the insert wins when no row exists;
// on conflict the update fires only when the existing row belongs to the
// same holder or has expired. RowsAffected distinguishes grant from denial.
func (r *Repo) Acquire(ctx context.Context, instructionID, holderID uuid.UUID, ttl time.Duration) (bool, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := postgres.Builder().
		Insert(table).
		Columns("instruction_id", "holder_id", "acquired_at", "expires_at").
		Values(instructionID, holderID,
			squirrel.Expr("now()"),
			squirrel.Expr("now() + make_interval(secs => ?)", ttl.Seconds())).
		Suffix(`ON CONFLICT (instruction_id) DO UPDATE
			SET holder_id = EXCLUDED.holder_id,
			    acquired_at = CASE
			        WHEN ` + table + `.holder_id = EXCLUDED.holder_id
			             AND ` + table + `.expires_at > now()
			        THEN ` + table + `.acquired_at
			        ELSE now()
			    END,
			    expires_at = EXCLUDED.expires_at
			WHERE ` + table + `.holder_id = EXCLUDED.holder_id
			   OR ` + table + `.expires_at <= now()`).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build acquire lock: %w", err)
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("acquire lock %s: %w", instructionID, err)
	}

	return tag.RowsAffected() == 1, nil
}

// Renew extends the lease of a lock held by holderID. It returns false when
// the row is missing, expired, or owned by someone else — the holder check
// and the expiry check sit in the WHERE clause, so a renewal racing the
// reaper fails closed instead of resurrecting a reaped lock.
func (r *Repo) Renew(ctx context.Context, instructionID, holderID uuid.UUID, ttl time.Duration) (bool, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := postgres.Builder().
		Update(table).
		Set("expires_at", squirrel.Expr("now() + make_interval(secs => ?)", ttl.Seconds())).
		Where(squirrel.Eq{"instruction_id": instructionID, "holder_id": holderID}).
		Where(squirrel.Expr("expires_at > now()")).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build renew lock: %w", err)
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("renew lock %s: %w", instructionID, err)
	}

	return tag.RowsAffected() == 1, nil
}

// Release removes the lock if held by holderID. Releasing a lock that is
// absent or held by someone else is a silent no-op.
func (r *Repo) Release(ctx context.Context, instructionID, holderID uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := postgres.Builder().
		Delete(table).
		Where(squirrel.Eq{"instruction_id": instructionID, "holder_id": holderID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build release lock: %w", err)
	}

	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("release lock %s: %w", instructionID, err)
	}
	return nil
}

// IsLockedByOther reports whether a live lock exists on the instruction with
// a holder different from userID.
func (r *Repo) IsLockedByOther(ctx context.Context, instructionID, userID uuid.UUID) (bool, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	inner, args, err := postgres.Builder().
		Select("1").
		From(table).
		Where(squirrel.Eq{"instruction_id": instructionID}).
		Where(squirrel.NotEq{"holder_id": userID}).
		Where(squirrel.Expr("expires_at > now()")).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build lock check: %w", err)
	}

	var locked bool
	row := q.QueryRow(ctx, "SELECT EXISTS ("+inner+")", args...)
	if err := row.Scan(&locked); err != nil {
		return false, fmt.Errorf("check lock %s: %w", instructionID, err)
	}
	return locked, nil
}

// Get returns the current lock row for an instruction, expired or not.
// Returns domain.ErrNotFound when no row exists.
func (r *Repo) Get(ctx context.Context, instructionID uuid.UUID) (*domain.Lock, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := postgres.Builder().
		Select("instruction_id", "holder_id", "acquired_at", "expires_at").
		From(table).
		Where(squirrel.Eq{"instruction_id": instructionID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get lock: %w", err)
	}

	var row lockRow
	if err := pgxscan.Get(ctx, q, &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, fmt.Errorf("lock %s: %w", instructionID, domain.ErrNotFound)
		}
		return nil, postgres.MapError(err, "lock", instructionID)
	}
	return row.toDomain(), nil
}

// DeleteExpired removes every lock whose lease has lapsed, regardless of
// instruction or holder, and returns the number of rows removed. This is the
// reaper's sweep operation.
func (r *Repo) DeleteExpired(ctx context.Context) (int64, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := postgres.Builder().
		Delete(table).
		Where(squirrel.Expr("expires_at <= now()")).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete expired locks: %w", err)
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("delete expired locks: %w", err)
	}
	return tag.RowsAffected(), nil
}
