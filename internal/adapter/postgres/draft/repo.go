// Package draft implements the append-only draft version store. Versions
// are never updated or deleted; the instruction's edit history is the
// ordered set of its versions.
package draft

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

const table = "draft_versions"

var columns = "id, instruction_id, version_number, content_html, note, author_id, created_at"

// Repo provides draft version persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new draft version repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

type row struct {
	ID            uuid.UUID `db:"id"`
	InstructionID uuid.UUID `db:"instruction_id"`
	VersionNumber int       `db:"version_number"`
	ContentHTML   string    `db:"content_html"`
	Note          *string   `db:"note"`
	AuthorID      uuid.UUID `db:"author_id"`
	CreatedAt     time.Time `db:"created_at"`
}

func (r row) toDomain() *domain.DraftVersion {
	return &domain.DraftVersion{
		ID:            r.ID,
		InstructionID: r.InstructionID,
		VersionNumber: r.VersionNumber,
		ContentHTML:   r.ContentHTML,
		Note:          r.Note,
		AuthorID:      r.AuthorID,
		CreatedAt:     r.CreatedAt,
	}
}

// Append inserts the next version for an instruction and returns it. The
// version number is computed in the insert itself; single-writer ordering is
// guaranteed by the edit lock, not by this statement.
func (r *Repo) Append(ctx context.Context, v *domain.DraftVersion) (*domain.DraftVersion, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}

	sql, args, err := postgres.Builder().
		Insert(table).
		Columns("id", "instruction_id", "version_number", "content_html", "note", "author_id").
		Values(v.ID, v.InstructionID,
			squirrel.Expr("(SELECT COALESCE(MAX(version_number), 0) + 1 FROM "+table+" WHERE instruction_id = ?)", v.InstructionID),
			v.ContentHTML, v.Note, v.AuthorID).
		Suffix("RETURNING " + columns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build append draft version: %w", err)
	}

	var out row
	if err := pgxscan.Get(ctx, q, &out, sql, args...); err != nil {
		return nil, postgres.MapError(err, "draft_version", v.ID)
	}
	return out.toDomain(), nil
}

// Current returns the latest version for an instruction, or
// domain.ErrNotFound when no draft has been saved yet.
func (r *Repo) Current(ctx context.Context, instructionID uuid.UUID) (*domain.DraftVersion, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := postgres.Builder().
		Select(columns).
		From(table).
		Where(squirrel.Eq{"instruction_id": instructionID}).
		OrderBy("version_number DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build current draft version: %w", err)
	}

	var out row
	if err := pgxscan.Get(ctx, q, &out, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, fmt.Errorf("draft for instruction %s: %w", instructionID, domain.ErrNotFound)
		}
		return nil, postgres.MapError(err, "draft_version", instructionID)
	}
	return out.toDomain(), nil
}

// ListByInstruction returns all versions for an instruction, oldest first.
func (r *Repo) ListByInstruction(ctx context.Context, instructionID uuid.UUID) ([]*domain.DraftVersion, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := postgres.Builder().
		Select(columns).
		From(table).
		Where(squirrel.Eq{"instruction_id": instructionID}).
		OrderBy("version_number ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list draft versions: %w", err)
	}

	var rows []row
	if err := pgxscan.Select(ctx, q, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list draft versions: %w", err)
	}

	out := make([]*domain.DraftVersion, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}
