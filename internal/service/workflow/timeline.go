package workflow

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/opc-efiling/drafting-backend/internal/domain"
)

// Timeline reconstructs an instruction's history by merging its creation,
// draft versions, circulation traffic, and signatures into one
// timestamp-ordered list. The records themselves are append-only, so the
// timeline is a pure read.
func (s *Service) Timeline(ctx context.Context, instructionID uuid.UUID) ([]domain.TimelineEvent, error) {
	instr, err := s.GetInstruction(ctx, instructionID)
	if err != nil {
		return nil, err
	}

	drafts, err := s.drafts.ListByInstruction(ctx, instructionID)
	if err != nil {
		return nil, fmt.Errorf("list draft versions: %w", err)
	}
	logs, err := s.circulation.ListLogsByInstruction(ctx, instructionID)
	if err != nil {
		return nil, fmt.Errorf("list circulation logs: %w", err)
	}
	responses, err := s.circulation.ListResponsesByInstruction(ctx, instructionID)
	if err != nil {
		return nil, fmt.Errorf("list circulation responses: %w", err)
	}
	signatures, err := s.signatures.ListByInstruction(ctx, instructionID)
	if err != nil {
		return nil, fmt.Errorf("list signatures: %w", err)
	}

	events := make([]domain.TimelineEvent, 0, 1+len(drafts)+len(logs)+len(responses)+len(signatures))

	events = append(events, domain.TimelineEvent{
		Type:       domain.TimelineEventCreated,
		OccurredAt: instr.CreatedAt,
		Detail:     fmt.Sprintf("Instruction %q received", instr.Title),
	})
	for _, d := range drafts {
		actorID := d.AuthorID
		events = append(events, domain.TimelineEvent{
			Type:       domain.TimelineEventDraftSaved,
			OccurredAt: d.CreatedAt,
			ActorID:    &actorID,
			Detail:     fmt.Sprintf("Draft version %d saved", d.VersionNumber),
		})
	}
	for _, l := range logs {
		actorID := l.SentByUserID
		events = append(events, domain.TimelineEvent{
			Type:       domain.TimelineEventCirculated,
			OccurredAt: l.SentAt,
			ActorID:    &actorID,
			Detail:     fmt.Sprintf("Sent to %s: %s", l.SentToEmail, l.Subject),
		})
	}
	for _, r := range responses {
		actorID := r.ReceivedByUserID
		events = append(events, domain.TimelineEvent{
			Type:       domain.TimelineEventResponse,
			OccurredAt: r.ReceivedAt,
			ActorID:    &actorID,
			Detail:     "Ministry response recorded",
		})
	}
	for _, sig := range signatures {
		actorID := sig.SignerID
		events = append(events, domain.TimelineEvent{
			Type:       domain.TimelineEventSignedOff,
			OccurredAt: sig.SignedAt,
			ActorID:    &actorID,
			Detail:     fmt.Sprintf("Signed off by %s", sig.SignerName),
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].OccurredAt.Before(events[j].OccurredAt)
	})
	return events, nil
}
