// Package signature implements the sign-off signature store. Signatures are
// append-only and tied to the instruction, not a draft version, so final
// approval survives later edits.
package signature

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

const table = "signatures"

var columns = "id, instruction_id, signer_id, signer_name, image_data, signed_at"

// Repo provides signature persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new signature repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

type row struct {
	ID            uuid.UUID `db:"id"`
	InstructionID uuid.UUID `db:"instruction_id"`
	SignerID      uuid.UUID `db:"signer_id"`
	SignerName    string    `db:"signer_name"`
	ImageData     string    `db:"image_data"`
	SignedAt      time.Time `db:"signed_at"`
}

func (r row) toDomain() *domain.Signature {
	return &domain.Signature{
		ID:            r.ID,
		InstructionID: r.InstructionID,
		SignerID:      r.SignerID,
		SignerName:    r.SignerName,
		ImageData:     r.ImageData,
		SignedAt:      r.SignedAt,
	}
}

// Append inserts a signature and returns the persisted record.
func (r *Repo) Append(ctx context.Context, s *domain.Signature) (*domain.Signature, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}

	sql, args, err := postgres.Builder().
		Insert(table).
		Columns("id", "instruction_id", "signer_id", "signer_name", "image_data").
		Values(s.ID, s.InstructionID, s.SignerID, s.SignerName, s.ImageData).
		Suffix("RETURNING " + columns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build append signature: %w", err)
	}

	var out row
	if err := pgxscan.Get(ctx, q, &out, sql, args...); err != nil {
		return nil, postgres.MapError(err, "signature", s.ID)
	}
	return out.toDomain(), nil
}

// ListByInstruction returns all signatures for an instruction, oldest first.
func (r *Repo) ListByInstruction(ctx context.Context, instructionID uuid.UUID) ([]*domain.Signature, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := postgres.Builder().
		Select(columns).
		From(table).
		Where(squirrel.Eq{"instruction_id": instructionID}).
		OrderBy("signed_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list signatures: %w", err)
	}

	var rows []row
	if err := pgxscan.Select(ctx, q, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list signatures: %w", err)
	}

	out := make([]*domain.Signature, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}
