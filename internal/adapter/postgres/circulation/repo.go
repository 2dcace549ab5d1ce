// Package circulation implements the append-only circulation audit trail:
// one log row per external send, zero or more response rows per log. Rows
// are never updated or deleted.
package circulation

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

const (
	logTable      = "circulation_logs"
	responseTable = "circulation_responses"
)

var (
	logColumns      = "id, instruction_id, draft_version_id, sent_to_email, cc_email, subject, notes, sent_by_user_id, sent_at"
	responseColumns = "id, circulation_log_id, response_text, received_by_user_id, received_at"
)

// Repo provides circulation trail persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new circulation repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

type logRow struct {
	ID             uuid.UUID `db:"id"`
	InstructionID  uuid.UUID `db:"instruction_id"`
	DraftVersionID uuid.UUID `db:"draft_version_id"`
	SentToEmail    string    `db:"sent_to_email"`
	CcEmail        *string   `db:"cc_email"`
	Subject        string    `db:"subject"`
	Notes          *string   `db:"notes"`
	SentByUserID   uuid.UUID `db:"sent_by_user_id"`
	SentAt         time.Time `db:"sent_at"`
}

func (r logRow) toDomain() *domain.CirculationLog {
	return &domain.CirculationLog{
		ID:             r.ID,
		InstructionID:  r.InstructionID,
		DraftVersionID: r.DraftVersionID,
		SentToEmail:    r.SentToEmail,
		CcEmail:        r.CcEmail,
		Subject:        r.Subject,
		Notes:          r.Notes,
		SentByUserID:   r.SentByUserID,
		SentAt:         r.SentAt,
	}
}

type responseRow struct {
	ID               uuid.UUID `db:"id"`
	CirculationLogID uuid.UUID `db:"circulation_log_id"`
	ResponseText     string    `db:"response_text"`
	ReceivedByUserID uuid.UUID `db:"received_by_user_id"`
	ReceivedAt       time.Time `db:"received_at"`
}

func (r responseRow) toDomain() *domain.CirculationResponse {
	return &domain.CirculationResponse{
		ID:               r.ID,
		CirculationLogID: r.CirculationLogID,
		ResponseText:     r.ResponseText,
		ReceivedByUserID: r.ReceivedByUserID,
		ReceivedAt:       r.ReceivedAt,
	}
}

// AppendLog inserts a circulation log entry and returns the persisted row.
func (r *Repo) AppendLog(ctx context.Context, log *domain.CirculationLog) (*domain.CirculationLog, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}

	sql, args, err := postgres.Builder().
		Insert(logTable).
		Columns("id", "instruction_id", "draft_version_id", "sent_to_email",
			"cc_email", "subject", "notes", "sent_by_user_id").
		Values(log.ID, log.InstructionID, log.DraftVersionID, log.SentToEmail,
			log.CcEmail, log.Subject, log.Notes, log.SentByUserID).
		Suffix("RETURNING " + logColumns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build append circulation log: %w", err)
	}

	var out logRow
	if err := pgxscan.Get(ctx, q, &out, sql, args...); err != nil {
		return nil, postgres.MapError(err, "circulation_log", log.ID)
	}
	return out.toDomain(), nil
}

// AppendResponse inserts a response against an existing circulation log.
// A foreign-key violation (unknown log) maps to domain.ErrNotFound.
func (r *Repo) AppendResponse(ctx context.Context, resp *domain.CirculationResponse) (*domain.CirculationResponse, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	if resp.ID == uuid.Nil {
		resp.ID = uuid.New()
	}

	sql, args, err := postgres.Builder().
		Insert(responseTable).
		Columns("id", "circulation_log_id", "response_text", "received_by_user_id").
		Values(resp.ID, resp.CirculationLogID, resp.ResponseText, resp.ReceivedByUserID).
		Suffix("RETURNING " + responseColumns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build append circulation response: %w", err)
	}

	var out responseRow
	if err := pgxscan.Get(ctx, q, &out, sql, args...); err != nil {
		return nil, postgres.MapError(err, "circulation_response", resp.ID)
	}
	return out.toDomain(), nil
}

// GetLog returns one circulation log entry by ID.
func (r *Repo) GetLog(ctx context.Context, id uuid.UUID) (*domain.CirculationLog, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := postgres.Builder().
		Select(logColumns).
		From(logTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get circulation log: %w", err)
	}

	var out logRow
	if err := pgxscan.Get(ctx, q, &out, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, fmt.Errorf("circulation_log %s: %w", id, domain.ErrNotFound)
		}
		return nil, postgres.MapError(err, "circulation_log", id)
	}
	return out.toDomain(), nil
}

// ListLogsByInstruction returns the send history for an instruction,
// oldest first.
func (r *Repo) ListLogsByInstruction(ctx context.Context, instructionID uuid.UUID) ([]*domain.CirculationLog, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := postgres.Builder().
		Select(logColumns).
		From(logTable).
		Where(squirrel.Eq{"instruction_id": instructionID}).
		OrderBy("sent_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list circulation logs: %w", err)
	}

	var rows []logRow
	if err := pgxscan.Select(ctx, q, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list circulation logs: %w", err)
	}

	out := make([]*domain.CirculationLog, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}

// ListResponsesByLog returns all responses recorded against one send,
// oldest first.
func (r *Repo) ListResponsesByLog(ctx context.Context, logID uuid.UUID) ([]*domain.CirculationResponse, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := postgres.Builder().
		Select(responseColumns).
		From(responseTable).
		Where(squirrel.Eq{"circulation_log_id": logID}).
		OrderBy("received_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list circulation responses: %w", err)
	}

	var rows []responseRow
	if err := pgxscan.Select(ctx, q, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list circulation responses: %w", err)
	}

	out := make([]*domain.CirculationResponse, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}

// ListResponsesByInstruction returns every response across all of an
// instruction's sends, for timeline assembly.
func (r *Repo) ListResponsesByInstruction(ctx context.Context, instructionID uuid.UUID) ([]*domain.CirculationResponse, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := postgres.Builder().
		Select("r.id", "r.circulation_log_id", "r.response_text", "r.received_by_user_id", "r.received_at").
		From(responseTable + " r").
		Join(logTable + " l ON l.id = r.circulation_log_id").
		Where(squirrel.Eq{"l.instruction_id": instructionID}).
		OrderBy("r.received_at ASC", "r.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list responses by instruction: %w", err)
	}

	var rows []responseRow
	if err := pgxscan.Select(ctx, q, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list responses by instruction: %w", err)
	}

	out := make([]*domain.CirculationResponse, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}
