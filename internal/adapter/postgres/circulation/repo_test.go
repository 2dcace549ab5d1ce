package circulation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v2"

	"github.com/opc-efiling/drafting-backend/internal/domain"
)

func newRepo(t *testing.T) (*Repo, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	t.Cleanup(mock.Close)
	return New(mock), mock
}

func TestAppendLog(t *testing.T) {
	t.Parallel()

	repo, mock := newRepo(t)
	id := uuid.New()
	instructionID := uuid.New()
	versionID := uuid.New()
	senderID := uuid.New()

	mock.ExpectQuery("INSERT INTO circulation_logs").
		WithArgs(id, instructionID, versionID, "legal@ministry.gov.ls",
			pgxmock.AnyArg(), "Draft for comment", pgxmock.AnyArg(), senderID).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "instruction_id", "draft_version_id", "sent_to_email",
			"cc_email", "subject", "notes", "sent_by_user_id", "sent_at",
		}).AddRow(id, instructionID, versionID, "legal@ministry.gov.ls",
			nil, "Draft for comment", nil, senderID, time.Now().UTC()))

	got, err := repo.AppendLog(context.Background(), &domain.CirculationLog{
		ID:             id,
		InstructionID:  instructionID,
		DraftVersionID: versionID,
		SentToEmail:    "legal@ministry.gov.ls",
		Subject:        "Draft for comment",
		SentByUserID:   senderID,
	})
	if err != nil {
		t.Fatalf("AppendLog: unexpected error: %v", err)
	}
	if got.ID != id || got.DraftVersionID != versionID {
		t.Errorf("persisted log mismatch: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAppendResponse_UnknownLog(t *testing.T) {
	t.Parallel()

	repo, mock := newRepo(t)

	// FK violation surfaces as ErrNotFound via the shared error mapper.
	mock.ExpectQuery("INSERT INTO circulation_responses").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&fkError{})

	_, err := repo.AppendResponse(context.Background(), &domain.CirculationResponse{
		ID:               uuid.New(),
		CirculationLogID: uuid.New(),
		ResponseText:     "No comments.",
		ReceivedByUserID: uuid.New(),
	})
	if err == nil {
		t.Fatal("AppendResponse should fail for unknown log")
	}
}

// fkError mimics a pgconn foreign-key violation without a live server.
type fkError struct{}

func (e *fkError) Error() string { return "ERROR: foreign key violation (SQLSTATE 23503)" }

func TestGetLog_NotFound(t *testing.T) {
	t.Parallel()

	repo, mock := newRepo(t)
	id := uuid.New()

	mock.ExpectQuery("SELECT id, instruction_id, draft_version_id").
		WithArgs(id.String()).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	_, err := repo.GetLog(context.Background(), id)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("GetLog: got %v, want ErrNotFound", err)
	}
}

func TestListLogsByInstruction(t *testing.T) {
	t.Parallel()

	repo, mock := newRepo(t)
	instructionID := uuid.New()

	rows := pgxmock.NewRows([]string{
		"id", "instruction_id", "draft_version_id", "sent_to_email",
		"cc_email", "subject", "notes", "sent_by_user_id", "sent_at",
	}).
		AddRow(uuid.New(), instructionID, uuid.New(), "a@x.gov", nil, "First send", nil, uuid.New(), time.Now().UTC()).
		AddRow(uuid.New(), instructionID, uuid.New(), "b@y.gov", nil, "Second send", nil, uuid.New(), time.Now().UTC())

	mock.ExpectQuery("SELECT id, instruction_id, draft_version_id").
		WithArgs(instructionID.String()).
		WillReturnRows(rows)

	got, err := repo.ListLogsByInstruction(context.Background(), instructionID)
	if err != nil {
		t.Fatalf("ListLogsByInstruction: unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len: got %d, want 2", len(got))
	}
}
