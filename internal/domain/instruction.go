package domain

import (
	"time"

	"github.com/google/uuid"
)

// Instruction is a unit of drafting work moving through the review pipeline.
type Instruction struct {
	ID           uuid.UUID
	Title        string
	Description  *string
	DepartmentID *uuid.UUID
	Status       InstructionStatus
	Priority     Priority

	// AssignedCounselID is the parliamentary counsel currently responsible.
	AssignedCounselID *uuid.UUID
	// AssignedDrafterID is the drafter currently responsible, set once the
	// instruction reaches ASSIGNED.
	AssignedDrafterID *uuid.UUID

	ReceivedDate time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AssigneeForStatus returns the user the instruction currently waits on,
// or nil when nobody is assigned yet.
func (i *Instruction) AssigneeForStatus() *uuid.UUID {
	switch i.Status {
	case StatusPCAssigned:
		return i.AssignedCounselID
	case StatusAssigned, StatusDraftSubmitted:
		return i.AssignedDrafterID
	}
	return nil
}
