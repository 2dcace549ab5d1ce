// Package workflow defines the instruction status state machine: which
// actions are legal, for which role, from which status. It is pure — no
// I/O, no clock — so callers can evaluate transitions before committing
// anything to the store.
package workflow

import (
	"slices"

	"github.com/opc-efiling/drafting-backend/internal/domain"
)

// anyStatus in a rule's From list means the action is legal from every
// non-terminal status.
var anyStatus = []domain.InstructionStatus{
	domain.StatusSubmitted,
	domain.StatusLogged,
	domain.StatusPCAssigned,
	domain.StatusAssigned,
	domain.StatusDraftSubmitted,
}

type rule struct {
	Roles []domain.Role
	From  []domain.InstructionStatus
	To    domain.InstructionStatus
}

// transitions is the authoritative action table. An action absent from the
// map, or attempted by a role or from a status not listed here, is rejected.
var transitions = map[domain.Action]rule{
	domain.ActionLog: {
		Roles: []domain.Role{domain.RoleRegistryOfficer},
		From:  []domain.InstructionStatus{domain.StatusSubmitted},
		To:    domain.StatusLogged,
	},
	domain.ActionAssignCounsel: {
		Roles: []domain.Role{domain.RoleRegistryOfficer},
		From:  []domain.InstructionStatus{domain.StatusLogged},
		To:    domain.StatusPCAssigned,
	},
	domain.ActionReassignCounsel: {
		Roles: []domain.Role{domain.RoleRegistryOfficer},
		From:  anyStatus,
		To:    domain.StatusPCAssigned,
	},
	domain.ActionAssignDrafter: {
		Roles: []domain.Role{domain.RoleCounsel},
		From:  []domain.InstructionStatus{domain.StatusPCAssigned, domain.StatusAssigned},
		To:    domain.StatusAssigned,
	},
	domain.ActionSaveDraft: {
		Roles: []domain.Role{domain.RoleDrafter},
		From:  []domain.InstructionStatus{domain.StatusAssigned},
		To:    domain.StatusAssigned,
	},
	domain.ActionSubmitDraft: {
		Roles: []domain.Role{domain.RoleDrafter},
		From:  []domain.InstructionStatus{domain.StatusAssigned},
		To:    domain.StatusDraftSubmitted,
	},
	domain.ActionRequestRevision: {
		Roles: []domain.Role{domain.RoleSeniorCounsel, domain.RoleAdmin},
		From:  []domain.InstructionStatus{domain.StatusDraftSubmitted},
		To:    domain.StatusAssigned,
	},
	domain.ActionSignOff: {
		Roles: []domain.Role{domain.RoleSeniorCounsel, domain.RoleAdmin},
		From:  []domain.InstructionStatus{domain.StatusDraftSubmitted},
		To:    domain.StatusSignedOff,
	},
}

// Next returns the status produced by applying action from the given status
// in the given role. It returns a *domain.TransitionError (wrapping
// domain.ErrInvalidTransition) when the (action, role, status) triple is not
// in the table; the caller must leave the instruction untouched in that case.
func Next(action domain.Action, role domain.Role, from domain.InstructionStatus) (domain.InstructionStatus, error) {
	r, ok := transitions[action]
	if !ok || !slices.Contains(r.Roles, role) || !slices.Contains(r.From, from) {
		return from, &domain.TransitionError{Action: action, Role: role, From: from}
	}
	return r.To, nil
}

// Allowed returns the actions a user in the given role may apply to an
// instruction in the given status. Used by task-queue views to offer only
// legal operations.
func Allowed(role domain.Role, from domain.InstructionStatus) []domain.Action {
	var actions []domain.Action
	for action, r := range transitions {
		if slices.Contains(r.Roles, role) && slices.Contains(r.From, from) {
			actions = append(actions, action)
		}
	}
	slices.Sort(actions)
	return actions
}
