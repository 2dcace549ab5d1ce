package domain

// InstructionStatus represents where an instruction sits in the drafting
// pipeline. Transitions between statuses go through the workflow state
// machine only; the column in the store is authoritative.
type InstructionStatus string

const (
	StatusSubmitted      InstructionStatus = "SUBMITTED"
	StatusLogged         InstructionStatus = "LOGGED"
	StatusPCAssigned     InstructionStatus = "PC_ASSIGNED"
	StatusAssigned       InstructionStatus = "ASSIGNED"
	StatusDraftSubmitted InstructionStatus = "DRAFT_SUBMITTED"
	StatusSignedOff      InstructionStatus = "SIGNED_OFF"
)

func (s InstructionStatus) String() string { return string(s) }

func (s InstructionStatus) IsValid() bool {
	switch s {
	case StatusSubmitted, StatusLogged, StatusPCAssigned, StatusAssigned,
		StatusDraftSubmitted, StatusSignedOff:
		return true
	}
	return false
}

// IsTerminal reports whether no further workflow action can move the
// instruction out of this status.
func (s InstructionStatus) IsTerminal() bool { return s == StatusSignedOff }

// Role represents a review-pipeline role held by a user. A user may hold
// several roles at once.
type Role string

const (
	RoleRegistryOfficer Role = "REGISTRY_OFFICER"
	RoleCounsel         Role = "COUNSEL"
	RoleSeniorCounsel   Role = "SENIOR_COUNSEL"
	RoleDrafter         Role = "DRAFTER"
	RoleAdmin           Role = "ADMIN"
)

func (r Role) String() string { return string(r) }

func (r Role) IsValid() bool {
	switch r {
	case RoleRegistryOfficer, RoleCounsel, RoleSeniorCounsel, RoleDrafter, RoleAdmin:
		return true
	}
	return false
}

// Action identifies a workflow operation applied to an instruction.
type Action string

const (
	ActionLog             Action = "LOG"
	ActionAssignCounsel   Action = "ASSIGN_COUNSEL"
	ActionReassignCounsel Action = "REASSIGN_COUNSEL"
	ActionAssignDrafter   Action = "ASSIGN_DRAFTER"
	ActionSaveDraft       Action = "SAVE_DRAFT"
	ActionSubmitDraft     Action = "SUBMIT_DRAFT"
	ActionRequestRevision Action = "REQUEST_REVISION"
	ActionSignOff         Action = "SIGN_OFF"
)

func (a Action) String() string { return string(a) }

func (a Action) IsValid() bool {
	switch a {
	case ActionLog, ActionAssignCounsel, ActionReassignCounsel, ActionAssignDrafter,
		ActionSaveDraft, ActionSubmitDraft, ActionRequestRevision, ActionSignOff:
		return true
	}
	return false
}

// IsEditClass reports whether the action mutates draft content and therefore
// requires the acting user to hold the instruction's edit lock.
func (a Action) IsEditClass() bool {
	return a == ActionSaveDraft || a == ActionSubmitDraft
}

// Priority represents the urgency assigned to an instruction at intake.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityNormal Priority = "NORMAL"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

func (p Priority) String() string { return string(p) }

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// TimelineEventType identifies the kind of event in an instruction timeline.
type TimelineEventType string

const (
	TimelineEventCreated    TimelineEventType = "CREATED"
	TimelineEventDraftSaved TimelineEventType = "DRAFT_SAVED"
	TimelineEventCirculated TimelineEventType = "CIRCULATED"
	TimelineEventResponse   TimelineEventType = "RESPONSE_RECEIVED"
	TimelineEventSignedOff  TimelineEventType = "SIGNED_OFF"
)
