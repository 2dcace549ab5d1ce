// Package circulation records the external review trail: drafts sent to
// ministries and the responses that come back. Both record types are
// append-only; the trail is never edited after the fact.
package circulation

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/opc-efiling/drafting-backend/internal/domain"
)

type circulationStore interface {
	AppendLog(ctx context.Context, log *domain.CirculationLog) (*domain.CirculationLog, error)
	AppendResponse(ctx context.Context, resp *domain.CirculationResponse) (*domain.CirculationResponse, error)
	GetLog(ctx context.Context, id uuid.UUID) (*domain.CirculationLog, error)
	ListLogsByInstruction(ctx context.Context, instructionID uuid.UUID) ([]*domain.CirculationLog, error)
	ListResponsesByLog(ctx context.Context, logID uuid.UUID) ([]*domain.CirculationResponse, error)
}

type draftReader interface {
	Current(ctx context.Context, instructionID uuid.UUID) (*domain.DraftVersion, error)
}

// Service appends to and reads the circulation trail.
type Service struct {
	store  circulationStore
	drafts draftReader
	log    *slog.Logger
}

// NewService creates a new circulation service.
func NewService(log *slog.Logger, store circulationStore, drafts draftReader) *Service {
	return &Service{
		store:  store,
		drafts: drafts,
		log:    log.With("service", "circulation"),
	}
}

// SendInput describes one send of the current draft to an external ministry.
type SendInput struct {
	InstructionID uuid.UUID
	SentToEmail   string
	CcEmail       *string
	Subject       string
	Notes         *string
	SentByUserID  uuid.UUID
}

// Send records that the instruction's current draft went out for comment.
// The log entry pins the draft version that was current at send time, so
// later edits do not change what the ministry actually received.
func (s *Service) Send(ctx context.Context, in SendInput) (*domain.CirculationLog, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	current, err := s.drafts.Current(ctx, in.InstructionID)
	if err != nil {
		return nil, fmt.Errorf("resolve current draft: %w", err)
	}

	entry, err := s.store.AppendLog(ctx, &domain.CirculationLog{
		InstructionID:  in.InstructionID,
		DraftVersionID: current.ID,
		SentToEmail:    strings.TrimSpace(in.SentToEmail),
		CcEmail:        in.CcEmail,
		Subject:        strings.TrimSpace(in.Subject),
		Notes:          in.Notes,
		SentByUserID:   in.SentByUserID,
	})
	if err != nil {
		return nil, fmt.Errorf("append circulation log: %w", err)
	}

	s.log.InfoContext(ctx, "draft circulated",
		slog.String("instruction_id", in.InstructionID.String()),
		slog.Int("draft_version", current.VersionNumber),
		slog.String("sent_to", entry.SentToEmail),
	)
	return entry, nil
}

// RecordResponseInput captures feedback received for an earlier send.
type RecordResponseInput struct {
	CirculationLogID uuid.UUID
	ResponseText     string
	ReceivedByUserID uuid.UUID
}

// RecordResponse appends a ministry response to an existing circulation log
// entry. The entry must exist; responses cannot be recorded against sends
// that never happened.
func (s *Service) RecordResponse(ctx context.Context, in RecordResponseInput) (*domain.CirculationResponse, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	if _, err := s.store.GetLog(ctx, in.CirculationLogID); err != nil {
		return nil, fmt.Errorf("resolve circulation log: %w", err)
	}

	resp, err := s.store.AppendResponse(ctx, &domain.CirculationResponse{
		CirculationLogID: in.CirculationLogID,
		ResponseText:     in.ResponseText,
		ReceivedByUserID: in.ReceivedByUserID,
	})
	if err != nil {
		return nil, fmt.Errorf("append circulation response: %w", err)
	}
	return resp, nil
}

// TrailEntry is one send together with the responses it received.
type TrailEntry struct {
	Log       *domain.CirculationLog
	Responses []*domain.CirculationResponse
}

// Trail returns the full circulation history of an instruction, oldest
// send first, each with its responses.
func (s *Service) Trail(ctx context.Context, instructionID uuid.UUID) ([]TrailEntry, error) {
	if instructionID == uuid.Nil {
		return nil, domain.NewValidationError("instruction_id", "must not be empty")
	}

	logs, err := s.store.ListLogsByInstruction(ctx, instructionID)
	if err != nil {
		return nil, fmt.Errorf("list circulation logs: %w", err)
	}

	trail := make([]TrailEntry, 0, len(logs))
	for _, l := range logs {
		responses, err := s.store.ListResponsesByLog(ctx, l.ID)
		if err != nil {
			return nil, fmt.Errorf("list responses for log %s: %w", l.ID, err)
		}
		trail = append(trail, TrailEntry{Log: l, Responses: responses})
	}
	return trail, nil
}

func (in SendInput) validate() error {
	var errs []domain.FieldError
	if in.InstructionID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "instruction_id", Message: "must not be empty"})
	}
	if in.SentByUserID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "sent_by_user_id", Message: "must not be empty"})
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(in.SentToEmail)); err != nil {
		errs = append(errs, domain.FieldError{Field: "sent_to_email", Message: "must be a valid email address"})
	}
	if in.CcEmail != nil {
		if _, err := mail.ParseAddress(strings.TrimSpace(*in.CcEmail)); err != nil {
			errs = append(errs, domain.FieldError{Field: "cc_email", Message: "must be a valid email address"})
		}
	}
	if strings.TrimSpace(in.Subject) == "" {
		errs = append(errs, domain.FieldError{Field: "subject", Message: "must not be empty"})
	}
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

func (in RecordResponseInput) validate() error {
	var errs []domain.FieldError
	if in.CirculationLogID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "circulation_log_id", Message: "must not be empty"})
	}
	if in.ReceivedByUserID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "received_by_user_id", Message: "must not be empty"})
	}
	if strings.TrimSpace(in.ResponseText) == "" {
		errs = append(errs, domain.FieldError{Field: "response_text", Message: "must not be empty"})
	}
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
