// Package instruction implements the Instruction repository using
// PostgreSQL. Status changes go through a compare-and-update on the current
// status so concurrent workflow transitions cannot overwrite each other.
package instruction

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

const table = "instructions"

var columns = []string{
	"id", "title", "description", "department_id", "status", "priority",
	"assigned_counsel_id", "assigned_drafter_id", "received_date",
	"created_at", "updated_at",
}

// Repo provides instruction persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new instruction repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

type row struct {
	ID                uuid.UUID                `db:"id"`
	Title             string                   `db:"title"`
	Description       *string                  `db:"description"`
	DepartmentID      *uuid.UUID               `db:"department_id"`
	Status            domain.InstructionStatus `db:"status"`
	Priority          domain.Priority          `db:"priority"`
	AssignedCounselID *uuid.UUID               `db:"assigned_counsel_id"`
	AssignedDrafterID *uuid.UUID               `db:"assigned_drafter_id"`
	ReceivedDate      time.Time                `db:"received_date"`
	CreatedAt         time.Time                `db:"created_at"`
	UpdatedAt         time.Time                `db:"updated_at"`
}

func (r row) toDomain() *domain.Instruction {
	return &domain.Instruction{
		ID:                r.ID,
		Title:             r.Title,
		Description:       r.Description,
		DepartmentID:      r.DepartmentID,
		Status:            r.Status,
		Priority:          r.Priority,
		AssignedCounselID: r.AssignedCounselID,
		AssignedDrafterID: r.AssignedDrafterID,
		ReceivedDate:      r.ReceivedDate,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

func toDomainList(rows []row) []*domain.Instruction {
	out := make([]*domain.Instruction, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out
}

// Create inserts a new instruction and returns the persisted record.
func (r *Repo) Create(ctx context.Context, in *domain.Instruction) (*domain.Instruction, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	if in.ID == uuid.Nil {
		in.ID = uuid.New()
	}

	sql, args, err := postgres.Builder().
		Insert(table).
		Columns("id", "title", "description", "department_id", "status",
			"priority", "received_date").
		Values(in.ID, in.Title, in.Description, in.DepartmentID, in.Status,
			in.Priority, in.ReceivedDate).
		Suffix("RETURNING " + columnList()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build create instruction: %w", err)
	}

	var out row
	if err := pgxscan.Get(ctx, q, &out, sql, args...); err != nil {
		return nil, postgres.MapError(err, "instruction", in.ID)
	}
	return out.toDomain(), nil
}

// GetByID returns one instruction. Returns domain.ErrNotFound when absent.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Instruction, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := postgres.Builder().
		Select(columns...).
		From(table).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get instruction: %w", err)
	}

	var out row
	if err := pgxscan.Get(ctx, q, &out, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, fmt.Errorf("instruction %s: %w", id, domain.ErrNotFound)
		}
		return nil, postgres.MapError(err, "instruction", id)
	}
	return out.toDomain(), nil
}

// UpdateStatusFrom moves the instruction from one status to another with a
// compare-and-update: the row changes only when its current status still
// equals from. Returns false when the row was concurrently moved elsewhere
// (or does not exist); the caller must re-read and re-evaluate.
func (r *Repo) UpdateStatusFrom(ctx context.Context, id uuid.UUID, from, to domain.InstructionStatus) (bool, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := postgres.Builder().
		Update(table).
		Set("status", to).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id, "status": from}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build update status: %w", err)
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return false, postgres.MapError(err, "instruction", id)
	}
	return tag.RowsAffected() == 1, nil
}

// SetCounsel records the counsel responsible for the instruction.
func (r *Repo) SetCounsel(ctx context.Context, id, counselID uuid.UUID) error {
	return r.setAssignee(ctx, id, "assigned_counsel_id", counselID)
}

// SetDrafter records the drafter responsible for the instruction.
func (r *Repo) SetDrafter(ctx context.Context, id, drafterID uuid.UUID) error {
	return r.setAssignee(ctx, id, "assigned_drafter_id", drafterID)
}

func (r *Repo) setAssignee(ctx context.Context, id uuid.UUID, column string, userID uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := postgres.Builder().
		Update(table).
		Set(column, userID).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build set %s: %w", column, err)
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "instruction", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("instruction %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ListByStatus returns instructions in the given status ordered by received
// date (oldest first), paginated. Task queues for registry and review roles
// are built on this.
func (r *Repo) ListByStatus(ctx context.Context, status domain.InstructionStatus, limit, offset int) ([]*domain.Instruction, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := postgres.Builder().
		Select(columns...).
		From(table).
		Where(squirrel.Eq{"status": status}).
		OrderBy("received_date ASC", "id ASC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list by status: %w", err)
	}

	var rows []row
	if err := pgxscan.Select(ctx, q, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list instructions by status: %w", err)
	}
	return toDomainList(rows), nil
}

// ListByAssignee returns non-terminal instructions currently assigned to the
// user as counsel or drafter, the user's personal work queue.
func (r *Repo) ListByAssignee(ctx context.Context, userID uuid.UUID) ([]*domain.Instruction, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := postgres.Builder().
		Select(columns...).
		From(table).
		Where(squirrel.Or{
			squirrel.Eq{"assigned_counsel_id": userID},
			squirrel.Eq{"assigned_drafter_id": userID},
		}).
		Where(squirrel.NotEq{"status": domain.StatusSignedOff}).
		OrderBy("received_date ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list by assignee: %w", err)
	}

	var rows []row
	if err := pgxscan.Select(ctx, q, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list instructions by assignee: %w", err)
	}
	return toDomainList(rows), nil
}

func columnList() string {
	return strings.Join(columns, ", ")
}
