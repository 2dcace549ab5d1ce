package domain

import (
	"time"

	"github.com/google/uuid"
)

// Lock represents an exclusive, time-bounded edit claim on one instruction.
// At most one non-expired Lock exists per instruction at any instant; the
// store's single-row compare-and-update enforces this, not in-process state.
type Lock struct {
	InstructionID uuid.UUID
	HolderID      uuid.UUID
	AcquiredAt    time.Time
	ExpiresAt     time.Time
}

// Expired reports whether the lock's lease has lapsed at the given instant.
func (l *Lock) Expired(now time.Time) bool {
	return !l.ExpiresAt.After(now)
}

// HeldBy reports whether the lock is live and owned by userID at now.
func (l *Lock) HeldBy(userID uuid.UUID, now time.Time) bool {
	return l.HolderID == userID && !l.Expired(now)
}
