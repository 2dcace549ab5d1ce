package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/opc-efiling/drafting-backend/internal/domain"
	"github.com/opc-efiling/drafting-backend/internal/notify"
	"github.com/opc-efiling/drafting-backend/internal/workflow"
)

// TransitionInput carries one workflow action against one instruction.
// ActingRole must be one of the actor's roles; the service verifies this
// against the identity store rather than trusting the caller.
type TransitionInput struct {
	InstructionID uuid.UUID
	Action        domain.Action
	ActorID       uuid.UUID
	ActingRole    domain.Role

	// AssigneeID is the target user for assign and reassign actions.
	AssigneeID uuid.UUID

	// ContentHTML and Note are the draft payload for save and submit.
	ContentHTML string
	Note        *string

	// SignerName and SignatureImage (base64 PNG) are required for sign-off.
	SignerName     string
	SignatureImage string
}

// TransitionResult is the outcome of a transition attempt. LockDenied is an
// ordinary result, not an error: when true nothing was mutated and Status
// holds the unchanged current status.
type TransitionResult struct {
	Status       domain.InstructionStatus
	LockDenied   bool
	DraftVersion *domain.DraftVersion
}

// Transition applies one workflow action. Order of checks: input shape,
// actor identity and role, transition table, then — for edit-class actions
// only — the edit lock. The status update and the action's append records
// commit in one transaction; notifications go out only after commit.
func (s *Service) Transition(ctx context.Context, in TransitionInput) (*TransitionResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	actor, err := s.users.GetByID(ctx, in.ActorID)
	if err != nil {
		return nil, fmt.Errorf("resolve actor: %w", err)
	}
	if !actor.HasRole(in.ActingRole) {
		return nil, fmt.Errorf("user %s does not hold role %s: %w", in.ActorID, in.ActingRole, domain.ErrForbidden)
	}

	instr, err := s.instructions.GetByID(ctx, in.InstructionID)
	if err != nil {
		return nil, fmt.Errorf("load instruction: %w", err)
	}

	next, err := workflow.Next(in.Action, in.ActingRole, instr.Status)
	if err != nil {
		return nil, err
	}

	if in.Action.IsEditClass() {
		if err := s.checkDrafterOwnership(instr, in.ActorID); err != nil {
			return nil, err
		}
		granted, err := s.locks.Acquire(ctx, in.InstructionID, in.ActorID)
		if err != nil {
			return nil, fmt.Errorf("acquire edit lock: %w", err)
		}
		if !granted {
			return &TransitionResult{Status: instr.Status, LockDenied: true}, nil
		}
	}

	result := &TransitionResult{Status: next}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		applied, err := s.instructions.UpdateStatusFrom(ctx, in.InstructionID, instr.Status, next)
		if err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		if !applied {
			// Someone else transitioned the instruction between our read
			// and this write; the action is no longer valid from the
			// status we evaluated.
			return &domain.TransitionError{Action: in.Action, Role: in.ActingRole, From: instr.Status}
		}
		return s.applySideEffects(ctx, in, result)
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, in, instr)

	s.log.InfoContext(ctx, "transition applied",
		slog.String("instruction_id", in.InstructionID.String()),
		slog.String("action", in.Action.String()),
		slog.String("from", instr.Status.String()),
		slog.String("to", next.String()),
		slog.String("actor_id", in.ActorID.String()),
	)
	return result, nil
}

// checkDrafterOwnership ensures edit-class actions come from the assigned
// drafter, not merely anyone holding the DRAFTER role.
func (s *Service) checkDrafterOwnership(instr *domain.Instruction, actorID uuid.UUID) error {
	if instr.AssignedDrafterID == nil || *instr.AssignedDrafterID != actorID {
		return fmt.Errorf("user %s is not the assigned drafter: %w", actorID, domain.ErrForbidden)
	}
	return nil
}

// applySideEffects writes the action's append-only records inside the
// transition transaction.
func (s *Service) applySideEffects(ctx context.Context, in TransitionInput, result *TransitionResult) error {
	switch in.Action {
	case domain.ActionAssignCounsel, domain.ActionReassignCounsel:
		if err := s.instructions.SetCounsel(ctx, in.InstructionID, in.AssigneeID); err != nil {
			return fmt.Errorf("set counsel: %w", err)
		}

	case domain.ActionAssignDrafter:
		if err := s.instructions.SetDrafter(ctx, in.InstructionID, in.AssigneeID); err != nil {
			return fmt.Errorf("set drafter: %w", err)
		}

	case domain.ActionSaveDraft, domain.ActionSubmitDraft:
		v, err := s.drafts.Append(ctx, &domain.DraftVersion{
			InstructionID: in.InstructionID,
			ContentHTML:   in.ContentHTML,
			Note:          in.Note,
			AuthorID:      in.ActorID,
		})
		if err != nil {
			return fmt.Errorf("append draft version: %w", err)
		}
		result.DraftVersion = v

	case domain.ActionSignOff:
		if _, err := s.signatures.Append(ctx, &domain.Signature{
			InstructionID: in.InstructionID,
			SignerID:      in.ActorID,
			SignerName:    in.SignerName,
			ImageData:     in.SignatureImage,
		}); err != nil {
			return fmt.Errorf("append signature: %w", err)
		}
	}
	return nil
}

// afterCommit runs the post-transaction steps: dropping the edit lock after
// a submit, and best-effort handoff notifications. Neither can fail the
// already-committed transition.
func (s *Service) afterCommit(ctx context.Context, in TransitionInput, prev *domain.Instruction) {
	if in.Action == domain.ActionSubmitDraft {
		if err := s.locks.Release(ctx, in.InstructionID, in.ActorID); err != nil {
			s.log.WarnContext(ctx, "release lock after submit failed",
				slog.String("instruction_id", in.InstructionID.String()),
				slog.Any("error", err),
			)
		}
	}

	recipient := handoffRecipient(in, prev)
	if recipient == uuid.Nil {
		return
	}
	msg := notify.Message{
		RecipientID:   recipient,
		InstructionID: in.InstructionID,
		Action:        in.Action,
		Subject:       fmt.Sprintf("Instruction %q: %s", prev.Title, in.Action),
	}
	if err := s.notifier.Dispatch(ctx, msg); err != nil {
		s.log.WarnContext(ctx, "handoff notification failed",
			slog.String("instruction_id", in.InstructionID.String()),
			slog.String("recipient_id", recipient.String()),
			slog.Any("error", err),
		)
	}
}

// handoffRecipient returns who should be told about the transition, or
// uuid.Nil when the action is not a handoff.
func handoffRecipient(in TransitionInput, prev *domain.Instruction) uuid.UUID {
	switch in.Action {
	case domain.ActionAssignCounsel, domain.ActionReassignCounsel, domain.ActionAssignDrafter:
		return in.AssigneeID
	case domain.ActionRequestRevision:
		if prev.AssignedDrafterID != nil {
			return *prev.AssignedDrafterID
		}
	case domain.ActionSubmitDraft:
		if prev.AssignedCounselID != nil {
			return *prev.AssignedCounselID
		}
	}
	return uuid.Nil
}

func (in TransitionInput) validate() error {
	var errs []domain.FieldError
	if in.InstructionID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "instruction_id", Message: "must not be empty"})
	}
	if in.ActorID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "actor_id", Message: "must not be empty"})
	}
	if !in.Action.IsValid() {
		errs = append(errs, domain.FieldError{Field: "action", Message: "unknown action"})
	}
	if !in.ActingRole.IsValid() {
		errs = append(errs, domain.FieldError{Field: "acting_role", Message: "unknown role"})
	}

	switch in.Action {
	case domain.ActionAssignCounsel, domain.ActionReassignCounsel, domain.ActionAssignDrafter:
		if in.AssigneeID == uuid.Nil {
			errs = append(errs, domain.FieldError{Field: "assignee_id", Message: "required for assignment actions"})
		}
	case domain.ActionSaveDraft, domain.ActionSubmitDraft:
		if in.ContentHTML == "" {
			errs = append(errs, domain.FieldError{Field: "content_html", Message: "must not be empty"})
		}
	case domain.ActionSignOff:
		if in.SignerName == "" {
			errs = append(errs, domain.FieldError{Field: "signer_name", Message: "must not be empty"})
		}
		if in.SignatureImage == "" {
			errs = append(errs, domain.FieldError{Field: "signature_image", Message: "must not be empty"})
		}
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
