// Package lock implements the edit-lock manager: single-holder leases with
// a fixed TTL over instructions. Contention is reported as a boolean result,
// not an error — losing a race for a lock is an expected outcome, not a
// failure.
package lock

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/opc-efiling/drafting-backend/internal/domain"
)

type lockStore interface {
	Acquire(ctx context.Context, instructionID, holderID uuid.UUID, ttl time.Duration) (bool, error)
	Renew(ctx context.Context, instructionID, holderID uuid.UUID, ttl time.Duration) (bool, error)
	Release(ctx context.Context, instructionID, holderID uuid.UUID) error
	IsLockedByOther(ctx context.Context, instructionID, userID uuid.UUID) (bool, error)
	Get(ctx context.Context, instructionID uuid.UUID) (*domain.Lock, error)
}

// Service provides lease operations over instruction edit locks.
type Service struct {
	store lockStore
	ttl   time.Duration
	log   *slog.Logger
}

// NewService creates a new lock service with the given lease TTL.
func NewService(log *slog.Logger, store lockStore, ttl time.Duration) *Service {
	return &Service{
		store: store,
		ttl:   ttl,
		log:   log.With("service", "lock"),
	}
}

// TTL returns the lease lifetime granted on acquire and renew. Clients use
// it to pace heartbeats.
func (s *Service) TTL() time.Duration { return s.ttl }

// Acquire attempts to take the edit lock on an instruction for userID.
// It returns false only when a different holder has a live lock; acquiring a
// lock you already hold refreshes the lease and returns true.
func (s *Service) Acquire(ctx context.Context, instructionID, userID uuid.UUID) (bool, error) {
	if err := validateIDs(instructionID, userID); err != nil {
		return false, err
	}

	granted, err := s.store.Acquire(ctx, instructionID, userID, s.ttl)
	if err != nil {
		return false, fmt.Errorf("acquire lock: %w", err)
	}

	if granted {
		s.log.DebugContext(ctx, "lock acquired",
			slog.String("instruction_id", instructionID.String()),
			slog.String("holder_id", userID.String()),
		)
	}
	return granted, nil
}

// Renew extends the lease as a heartbeat from an active editing session.
// A false return means the lock was lost — expired, reaped, or taken over —
// and the caller must stop accepting edits until it re-acquires.
func (s *Service) Renew(ctx context.Context, instructionID, userID uuid.UUID) (bool, error) {
	if err := validateIDs(instructionID, userID); err != nil {
		return false, err
	}

	renewed, err := s.store.Renew(ctx, instructionID, userID, s.ttl)
	if err != nil {
		return false, fmt.Errorf("renew lock: %w", err)
	}

	if !renewed {
		s.log.InfoContext(ctx, "lock lost on renew",
			slog.String("instruction_id", instructionID.String()),
			slog.String("holder_id", userID.String()),
		)
	}
	return renewed, nil
}

// Release drops the lock if held by userID. It is idempotent: releasing an
// absent lock, or one held by someone else, is a silent no-op.
func (s *Service) Release(ctx context.Context, instructionID, userID uuid.UUID) error {
	if err := validateIDs(instructionID, userID); err != nil {
		return err
	}

	if err := s.store.Release(ctx, instructionID, userID); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}

// IsLockedByOther reports whether a live lock held by someone other than
// userID exists. Read paths use it to warn without blocking.
func (s *Service) IsLockedByOther(ctx context.Context, instructionID, userID uuid.UUID) (bool, error) {
	if err := validateIDs(instructionID, userID); err != nil {
		return false, err
	}

	locked, err := s.store.IsLockedByOther(ctx, instructionID, userID)
	if err != nil {
		return false, fmt.Errorf("check lock: %w", err)
	}
	return locked, nil
}

// Status returns the current lock record for an instruction, or
// domain.ErrNotFound when none exists. The record may already be expired;
// callers needing a liveness answer should use IsLockedByOther.
func (s *Service) Status(ctx context.Context, instructionID uuid.UUID) (*domain.Lock, error) {
	if instructionID == uuid.Nil {
		return nil, domain.NewValidationError("instruction_id", "must not be empty")
	}
	return s.store.Get(ctx, instructionID)
}

func validateIDs(instructionID, userID uuid.UUID) error {
	if instructionID == uuid.Nil {
		return domain.NewValidationError("instruction_id", "must not be empty")
	}
	if userID == uuid.Nil {
		return domain.NewValidationError("user_id", "must not be empty")
	}
	return nil
}
