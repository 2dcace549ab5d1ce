package domain

import (
	"time"

	"github.com/google/uuid"
)

// CirculationLog records one send of a draft to an external ministry.
// Append-only; each entry references the draft version current at send time.
type CirculationLog struct {
	ID             uuid.UUID
	InstructionID  uuid.UUID
	DraftVersionID uuid.UUID
	SentToEmail    string
	CcEmail        *string
	Subject        string
	Notes          *string
	SentByUserID   uuid.UUID
	SentAt         time.Time
}

// CirculationResponse records feedback received for a circulation send.
// Append-only, linked to exactly one CirculationLog.
type CirculationResponse struct {
	ID               uuid.UUID
	CirculationLogID uuid.UUID
	ResponseText     string
	ReceivedByUserID uuid.UUID
	ReceivedAt       time.Time
}

// TimelineEvent is one entry in an instruction's reconstructed history,
// merged from creation, draft versions, circulation traffic, and sign-off.
type TimelineEvent struct {
	Type       TimelineEventType
	OccurredAt time.Time
	ActorID    *uuid.UUID
	Detail     string
}
