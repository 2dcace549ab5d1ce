package lock

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

func expectMet(t *testing.T, mock pgxmock.PgxPoolIface) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAcquire_Granted(t *testing.T) {
	t.Parallel()

	repo, mock := newRepo(t)
	instructionID := uuid.New()
	holderID := uuid.New()

	mock.ExpectExec("INSERT INTO instruction_locks").
		WithArgs(instructionID, holderID, float64(60)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	granted, err := repo.Acquire(context.Background(), instructionID, holderID, 60*time.Second)
	if err != nil {
		t.Fatalf("Acquire: unexpected error: %v", err)
	}
	if !granted {
		t.Error("Acquire should grant when one row is affected")
	}
	expectMet(t, mock)
}

func TestAcquire_DeniedWhenConflictUpdatesNothing(t *testing.T) {
	t.Parallel()

	repo, mock := newRepo(t)
	instructionID := uuid.New()
	holderID := uuid.New()

	// Conflicting row belongs to a live different holder: the DO UPDATE's
	// WHERE clause filters it out and zero rows are affected.
	mock.ExpectExec("INSERT INTO instruction_locks").
		WithArgs(instructionID, holderID, float64(60)).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	granted, err := repo.Acquire(context.Background(), instructionID, holderID, 60*time.Second)
	if err != nil {
		t.Fatalf("Acquire: unexpected error: %v", err)
	}
	if granted {
		t.Error("Acquire must deny when the upsert touches no row")
	}
	expectMet(t, mock)
}

func TestAcquire_StoreError(t *testing.T) {
	t.Parallel()

	repo, mock := newRepo(t)
	boom := errors.New("connection refused")

	mock.ExpectExec("INSERT INTO instruction_locks").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(boom)

	_, err := repo.Acquire(context.Background(), uuid.New(), uuid.New(), time.Minute)
	if !errors.Is(err, boom) {
		t.Fatalf("Acquire: got %v, want wrapped %v", err, boom)
	}
	expectMet(t, mock)
}

func TestRenew_Success(t *testing.T) {
	t.Parallel()

	repo, mock := newRepo(t)
	instructionID := uuid.New()
	holderID := uuid.New()

	// squirrel orders Eq keys alphabetically: holder_id before instruction_id.
	mock.ExpectExec("UPDATE instruction_locks SET expires_at").
		WithArgs(float64(30), holderID.String(), instructionID.String()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	renewed, err := repo.Renew(context.Background(), instructionID, holderID, 30*time.Second)
	if err != nil {
		t.Fatalf("Renew: unexpected error: %v", err)
	}
	if !renewed {
		t.Error("Renew should succeed for the live holder")
	}
	expectMet(t, mock)
}

func TestRenew_FailsClosedWhenRowGone(t *testing.T) {
	t.Parallel()

	repo, mock := newRepo(t)

	mock.ExpectExec("UPDATE instruction_locks SET expires_at").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	renewed, err := repo.Renew(context.Background(), uuid.New(), uuid.New(), time.Minute)
	if err != nil {
		t.Fatalf("Renew: unexpected error: %v", err)
	}
	if renewed {
		t.Error("Renew must report lock lost when no row matches")
	}
	expectMet(t, mock)
}

func TestRelease_Idempotent(t *testing.T) {
	t.Parallel()

	repo, mock := newRepo(t)
	instructionID := uuid.New()
	holderID := uuid.New()

	mock.ExpectExec("DELETE FROM instruction_locks").
		WithArgs(holderID.String(), instructionID.String()).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	// Zero rows deleted (non-holder or absent lock) is still success.
	if err := repo.Release(context.Background(), instructionID, holderID); err != nil {
		t.Fatalf("Release: unexpected error: %v", err)
	}
	expectMet(t, mock)
}

func TestIsLockedByOther(t *testing.T) {
	t.Parallel()

	repo, mock := newRepo(t)
	instructionID := uuid.New()
	userID := uuid.New()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(instructionID.String(), userID.String()).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	locked, err := repo.IsLockedByOther(context.Background(), instructionID, userID)
	if err != nil {
		t.Fatalf("IsLockedByOther: unexpected error: %v", err)
	}
	if !locked {
		t.Error("expected locked by other")
	}
	expectMet(t, mock)
}

func TestGet_Found(t *testing.T) {
	t.Parallel()

	repo, mock := newRepo(t)
	instructionID := uuid.New()
	holderID := uuid.New()
	acquired := time.Now().UTC().Truncate(time.Microsecond)
	expires := acquired.Add(time.Minute)

	mock.ExpectQuery("SELECT instruction_id, holder_id, acquired_at, expires_at FROM instruction_locks").
		WithArgs(instructionID.String()).
		WillReturnRows(pgxmock.NewRows([]string{"instruction_id", "holder_id", "acquired_at", "expires_at"}).
			AddRow(instructionID, holderID, acquired, expires))

	lock, err := repo.Get(context.Background(), instructionID)
	if err != nil {
		t.Fatalf("Get: unexpected error: %v", err)
	}
	if lock.HolderID != holderID {
		t.Errorf("HolderID: got %s, want %s", lock.HolderID, holderID)
	}
	if !lock.ExpiresAt.Equal(expires) {
		t.Errorf("ExpiresAt: got %v, want %v", lock.ExpiresAt, expires)
	}
	expectMet(t, mock)
}

func TestGet_NotFound(t *testing.T) {
	t.Parallel()

	repo, mock := newRepo(t)
	instructionID := uuid.New()

	mock.ExpectQuery("SELECT instruction_id, holder_id, acquired_at, expires_at FROM instruction_locks").
		WithArgs(instructionID.String()).
		WillReturnRows(pgxmock.NewRows([]string{"instruction_id", "holder_id", "acquired_at", "expires_at"}))

	_, err := repo.Get(context.Background(), instructionID)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Get: got %v, want ErrNotFound", err)
	}
	expectMet(t, mock)
}

func TestDeleteExpired(t *testing.T) {
	t.Parallel()

	repo, mock := newRepo(t)

	mock.ExpectExec("DELETE FROM instruction_locks WHERE expires_at <= now").
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	n, err := repo.DeleteExpired(context.Background())
	if err != nil {
		t.Fatalf("DeleteExpired: unexpected error: %v", err)
	}
	if n != 3 {
		t.Errorf("DeleteExpired: got %d, want 3", n)
	}
	expectMet(t, mock)
}
