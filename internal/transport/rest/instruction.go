package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/opc-efiling/drafting-backend/internal/domain"
	"github.com/opc-efiling/drafting-backend/internal/service/workflow"
	"github.com/opc-efiling/drafting-backend/internal/transport/middleware"
	"github.com/opc-efiling/drafting-backend/pkg/ctxutil"
)

// workflowService defines the minimal interface needed by InstructionHandler.
type workflowService interface {
	CreateInstruction(ctx context.Context, in workflow.CreateInstructionInput) (*domain.Instruction, error)
	GetInstruction(ctx context.Context, id uuid.UUID) (*domain.Instruction, error)
	QueueByStatus(ctx context.Context, status domain.InstructionStatus, limit, offset int) ([]*domain.Instruction, error)
	QueueByAssignee(ctx context.Context, userID uuid.UUID) ([]*domain.Instruction, error)
	AllowedActions(ctx context.Context, instructionID uuid.UUID, role domain.Role) ([]domain.Action, error)
	Transition(ctx context.Context, in workflow.TransitionInput) (*workflow.TransitionResult, error)
	Timeline(ctx context.Context, instructionID uuid.UUID) ([]domain.TimelineEvent, error)
}

// InstructionHandler serves instruction intake, queues, workflow actions,
// and the timeline.
type InstructionHandler struct {
	svc workflowService
	log *slog.Logger
}

// NewInstructionHandler creates an InstructionHandler.
func NewInstructionHandler(svc workflowService, logger *slog.Logger) *InstructionHandler {
	return &InstructionHandler{svc: svc, log: logger.With("handler", "instruction")}
}

type createInstructionRequest struct {
	Title        string  `json:"title"`
	Description  *string `json:"description,omitempty"`
	DepartmentID *string `json:"departmentId,omitempty"`
	Priority     string  `json:"priority,omitempty"`
	ReceivedDate *string `json:"receivedDate,omitempty"` // RFC 3339
}

type instructionResponse struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Description       *string   `json:"description,omitempty"`
	DepartmentID      *string   `json:"departmentId,omitempty"`
	Status            string    `json:"status"`
	Priority          string    `json:"priority"`
	AssignedCounselID *string   `json:"assignedCounselId,omitempty"`
	AssignedDrafterID *string   `json:"assignedDrafterId,omitempty"`
	ReceivedDate      time.Time `json:"receivedDate"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// Create handles POST /api/instructions.
func (h *InstructionHandler) Create(w http.ResponseWriter, r *http.Request) {
	if _, ok := ctxutil.UserIDFromCtx(r.Context()); !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := middleware.RequireRole(r.Context(), domain.RoleRegistryOfficer, domain.RoleAdmin); err != nil {
		writeDomainError(r.Context(), h.log, w, err)
		return
	}

	var req createInstructionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in := workflow.CreateInstructionInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    domain.Priority(req.Priority),
	}
	if req.DepartmentID != nil {
		id, err := uuid.Parse(*req.DepartmentID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid department id")
			return
		}
		in.DepartmentID = &id
	}
	if req.ReceivedDate != nil {
		ts, err := time.Parse(time.RFC3339, *req.ReceivedDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid receivedDate, want RFC 3339")
			return
		}
		in.ReceivedDate = ts
	}

	created, err := h.svc.CreateInstruction(r.Context(), in)
	if err != nil {
		writeDomainError(r.Context(), h.log, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toInstructionResponse(created))
}

// Get handles GET /api/instructions/{id}.
func (h *InstructionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	instr, err := h.svc.GetInstruction(r.Context(), id)
	if err != nil {
		writeDomainError(r.Context(), h.log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, toInstructionResponse(instr))
}

// List handles GET /api/instructions?status=...&limit=...&offset=... and
// GET /api/instructions?assignee=me. The two filters are the role task
// queues: registry works the status queues, counsel and drafters their own.
func (h *InstructionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := ctxutil.UserIDFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	q := r.URL.Query()
	if q.Get("assignee") == "me" {
		items, err := h.svc.QueueByAssignee(r.Context(), userID)
		if err != nil {
			writeDomainError(r.Context(), h.log, w, err)
			return
		}
		writeJSON(w, http.StatusOK, toInstructionListResponse(items))
		return
	}

	status := domain.InstructionStatus(q.Get("status"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	items, err := h.svc.QueueByStatus(r.Context(), status, limit, offset)
	if err != nil {
		writeDomainError(r.Context(), h.log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, toInstructionListResponse(items))
}

type actionRequest struct {
	Action         string  `json:"action"`
	ActingRole     string  `json:"actingRole"`
	AssigneeID     *string `json:"assigneeId,omitempty"`
	ContentHTML    string  `json:"contentHtml,omitempty"`
	Note           *string `json:"note,omitempty"`
	SignerName     string  `json:"signerName,omitempty"`
	SignatureImage string  `json:"signatureImage,omitempty"`
}

type actionResponse struct {
	Status       string `json:"status"`
	LockDenied   bool   `json:"lockDenied,omitempty"`
	DraftVersion *int   `json:"draftVersion,omitempty"`
}

// Action handles POST /api/instructions/{id}/actions: one workflow
// transition. A denied edit lock is reported as 423 Locked with the
// unchanged status in the body.
func (h *InstructionHandler) Action(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	userID, authed := ctxutil.UserIDFromCtx(r.Context())
	if !authed {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in := workflow.TransitionInput{
		InstructionID:  id,
		Action:         domain.Action(req.Action),
		ActorID:        userID,
		ActingRole:     domain.Role(req.ActingRole),
		ContentHTML:    req.ContentHTML,
		Note:           req.Note,
		SignerName:     req.SignerName,
		SignatureImage: req.SignatureImage,
	}
	if req.AssigneeID != nil {
		assignee, err := uuid.Parse(*req.AssigneeID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid assignee id")
			return
		}
		in.AssigneeID = assignee
	}

	result, err := h.svc.Transition(r.Context(), in)
	if err != nil {
		writeDomainError(r.Context(), h.log, w, err)
		return
	}

	resp := actionResponse{Status: result.Status.String(), LockDenied: result.LockDenied}
	if result.DraftVersion != nil {
		v := result.DraftVersion.VersionNumber
		resp.DraftVersion = &v
	}
	if result.LockDenied {
		writeJSON(w, http.StatusLocked, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// AllowedActions handles GET /api/instructions/{id}/actions?role=...
func (h *InstructionHandler) AllowedActions(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	role := domain.Role(r.URL.Query().Get("role"))
	if !role.IsValid() {
		writeError(w, http.StatusBadRequest, "unknown role")
		return
	}

	actions, err := h.svc.AllowedActions(r.Context(), id, role)
	if err != nil {
		writeDomainError(r.Context(), h.log, w, err)
		return
	}
	names := make([]string, 0, len(actions))
	for _, a := range actions {
		names = append(names, a.String())
	}
	writeJSON(w, http.StatusOK, map[string][]string{"actions": names})
}

type timelineEventResponse struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	ActorID    *string   `json:"actorId,omitempty"`
	Detail     string    `json:"detail"`
}

// Timeline handles GET /api/instructions/{id}/timeline.
func (h *InstructionHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	events, err := h.svc.Timeline(r.Context(), id)
	if err != nil {
		writeDomainError(r.Context(), h.log, w, err)
		return
	}

	out := make([]timelineEventResponse, 0, len(events))
	for _, e := range events {
		item := timelineEventResponse{
			Type:       string(e.Type),
			OccurredAt: e.OccurredAt,
			Detail:     e.Detail,
		}
		if e.ActorID != nil {
			s := e.ActorID.String()
			item.ActorID = &s
		}
		out = append(out, item)
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": out})
}

func (h *InstructionHandler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid instruction id")
		return uuid.Nil, false
	}
	return id, true
}

func toInstructionResponse(i *domain.Instruction) instructionResponse {
	resp := instructionResponse{
		ID:           i.ID.String(),
		Title:        i.Title,
		Description:  i.Description,
		Status:       i.Status.String(),
		Priority:     i.Priority.String(),
		ReceivedDate: i.ReceivedDate,
		CreatedAt:    i.CreatedAt,
		UpdatedAt:    i.UpdatedAt,
	}
	if i.DepartmentID != nil {
		s := i.DepartmentID.String()
		resp.DepartmentID = &s
	}
	if i.AssignedCounselID != nil {
		s := i.AssignedCounselID.String()
		resp.AssignedCounselID = &s
	}
	if i.AssignedDrafterID != nil {
		s := i.AssignedDrafterID.String()
		resp.AssignedDrafterID = &s
	}
	return resp
}

func toInstructionListResponse(items []*domain.Instruction) map[string]any {
	out := make([]instructionResponse, 0, len(items))
	for _, i := range items {
		out = append(out, toInstructionResponse(i))
	}
	return map[string]any{"instructions": out}
}
