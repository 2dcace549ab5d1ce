package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/opc-efiling/drafting-backend/internal/domain"
	"github.com/opc-efiling/drafting-backend/internal/workflow"
)

// CreateInstructionInput is the registry intake payload.
type CreateInstructionInput struct {
	Title        string
	Description  *string
	DepartmentID *uuid.UUID
	Priority     domain.Priority
	ReceivedDate time.Time
}

const maxListLimit = 100

// CreateInstruction registers a newly received instruction. It always
// enters the pipeline at SUBMITTED; logging it is a separate workflow
// action so the intake timestamp and the registry decision stay distinct.
func (s *Service) CreateInstruction(ctx context.Context, in CreateInstructionInput) (*domain.Instruction, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	if in.Priority == "" {
		in.Priority = domain.PriorityNormal
	}
	received := in.ReceivedDate
	if received.IsZero() {
		received = time.Now().UTC()
	}

	created, err := s.instructions.Create(ctx, &domain.Instruction{
		Title:        strings.TrimSpace(in.Title),
		Description:  in.Description,
		DepartmentID: in.DepartmentID,
		Status:       domain.StatusSubmitted,
		Priority:     in.Priority,
		ReceivedDate: received,
	})
	if err != nil {
		return nil, fmt.Errorf("create instruction: %w", err)
	}
	return created, nil
}

// GetInstruction loads one instruction by ID.
func (s *Service) GetInstruction(ctx context.Context, id uuid.UUID) (*domain.Instruction, error) {
	if id == uuid.Nil {
		return nil, domain.NewValidationError("instruction_id", "must not be empty")
	}
	return s.instructions.GetByID(ctx, id)
}

// QueueByStatus returns instructions waiting in the given status, newest
// first. This backs the registry and review work queues.
func (s *Service) QueueByStatus(ctx context.Context, status domain.InstructionStatus, limit, offset int) ([]*domain.Instruction, error) {
	if !status.IsValid() {
		return nil, domain.NewValidationError("status", "unknown status")
	}
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.instructions.ListByStatus(ctx, status, limit, offset)
}

// QueueByAssignee returns the open instructions assigned to a user as
// counsel or drafter.
func (s *Service) QueueByAssignee(ctx context.Context, userID uuid.UUID) ([]*domain.Instruction, error) {
	if userID == uuid.Nil {
		return nil, domain.NewValidationError("user_id", "must not be empty")
	}
	return s.instructions.ListByAssignee(ctx, userID)
}

// AllowedActions returns the workflow actions a role may take on an
// instruction in its current status. The UI uses this to render action
// buttons; the transition table remains the enforcement point.
func (s *Service) AllowedActions(ctx context.Context, instructionID uuid.UUID, role domain.Role) ([]domain.Action, error) {
	instr, err := s.GetInstruction(ctx, instructionID)
	if err != nil {
		return nil, err
	}
	return workflow.Allowed(role, instr.Status), nil
}

func (in CreateInstructionInput) validate() error {
	var errs []domain.FieldError
	if strings.TrimSpace(in.Title) == "" {
		errs = append(errs, domain.FieldError{Field: "title", Message: "must not be empty"})
	}
	if in.Priority != "" && !in.Priority.IsValid() {
		errs = append(errs, domain.FieldError{Field: "priority", Message: "unknown priority"})
	}
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
