// Package workflow implements the instruction workflow service: intake,
// role-checked status transitions guarded by the edit lock, and the
// append-only version and audit records each transition leaves behind.
package workflow

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/opc-efiling/drafting-backend/internal/domain"
	"github.com/opc-efiling/drafting-backend/internal/notify"
)

type instructionStore interface {
	Create(ctx context.Context, in *domain.Instruction) (*domain.Instruction, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Instruction, error)
	UpdateStatusFrom(ctx context.Context, id uuid.UUID, from, to domain.InstructionStatus) (bool, error)
	SetCounsel(ctx context.Context, id, counselID uuid.UUID) error
	SetDrafter(ctx context.Context, id, drafterID uuid.UUID) error
	ListByStatus(ctx context.Context, status domain.InstructionStatus, limit, offset int) ([]*domain.Instruction, error)
	ListByAssignee(ctx context.Context, userID uuid.UUID) ([]*domain.Instruction, error)
}

type draftStore interface {
	Append(ctx context.Context, v *domain.DraftVersion) (*domain.DraftVersion, error)
	Current(ctx context.Context, instructionID uuid.UUID) (*domain.DraftVersion, error)
	ListByInstruction(ctx context.Context, instructionID uuid.UUID) ([]*domain.DraftVersion, error)
}

type signatureStore interface {
	Append(ctx context.Context, s *domain.Signature) (*domain.Signature, error)
	ListByInstruction(ctx context.Context, instructionID uuid.UUID) ([]*domain.Signature, error)
}

type circulationReader interface {
	ListLogsByInstruction(ctx context.Context, instructionID uuid.UUID) ([]*domain.CirculationLog, error)
	ListResponsesByInstruction(ctx context.Context, instructionID uuid.UUID) ([]*domain.CirculationResponse, error)
}

type userStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// lockManager is the slice of the lock service the workflow needs: taking
// the edit lock before an edit-class transition and dropping it after a
// successful submit.
type lockManager interface {
	Acquire(ctx context.Context, instructionID, userID uuid.UUID) (bool, error)
	Release(ctx context.Context, instructionID, userID uuid.UUID) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type dispatcher interface {
	Dispatch(ctx context.Context, msg notify.Message) error
}

// Service coordinates instruction workflow operations. The status column is
// authoritative: every transition goes through the transition table and a
// compare-and-set update, never a blind write.
type Service struct {
	instructions instructionStore
	drafts       draftStore
	signatures   signatureStore
	circulation  circulationReader
	users        userStore
	locks        lockManager
	tx           txManager
	notifier     dispatcher
	log          *slog.Logger
}

// Deps bundles the service's collaborators.
type Deps struct {
	Instructions instructionStore
	Drafts       draftStore
	Signatures   signatureStore
	Circulation  circulationReader
	Users        userStore
	Locks        lockManager
	Tx           txManager
	Notifier     dispatcher
}

// NewService creates a new workflow service.
func NewService(log *slog.Logger, d Deps) *Service {
	return &Service{
		instructions: d.Instructions,
		drafts:       d.Drafts,
		signatures:   d.Signatures,
		circulation:  d.Circulation,
		users:        d.Users,
		locks:        d.Locks,
		tx:           d.Tx,
		notifier:     d.Notifier,
		log:          log.With("service", "workflow"),
	}
}
