package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/opc-efiling/drafting-backend/internal/domain"
	"github.com/opc-efiling/drafting-backend/internal/service/circulation"
	"github.com/opc-efiling/drafting-backend/pkg/ctxutil"
)

// circulationService defines the minimal interface needed by CirculationHandler.
type circulationService interface {
	Send(ctx context.Context, in circulation.SendInput) (*domain.CirculationLog, error)
	RecordResponse(ctx context.Context, in circulation.RecordResponseInput) (*domain.CirculationResponse, error)
	Trail(ctx context.Context, instructionID uuid.UUID) ([]circulation.TrailEntry, error)
}

// CirculationHandler serves the external-review trail endpoints.
type CirculationHandler struct {
	svc circulationService
	log *slog.Logger
}

// NewCirculationHandler creates a CirculationHandler.
func NewCirculationHandler(svc circulationService, logger *slog.Logger) *CirculationHandler {
	return &CirculationHandler{svc: svc, log: logger.With("handler", "circulation")}
}

type sendRequest struct {
	SentToEmail string  `json:"sentToEmail"`
	CcEmail     *string `json:"ccEmail,omitempty"`
	Subject     string  `json:"subject"`
	Notes       *string `json:"notes,omitempty"`
}

type circulationLogResponse struct {
	ID             string    `json:"id"`
	InstructionID  string    `json:"instructionId"`
	DraftVersionID string    `json:"draftVersionId"`
	SentToEmail    string    `json:"sentToEmail"`
	CcEmail        *string   `json:"ccEmail,omitempty"`
	Subject        string    `json:"subject"`
	Notes          *string   `json:"notes,omitempty"`
	SentAt         time.Time `json:"sentAt"`
}

// Send handles POST /api/instructions/{id}/circulations.
func (h *CirculationHandler) Send(w http.ResponseWriter, r *http.Request) {
	instructionID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid instruction id")
		return
	}
	userID, ok := ctxutil.UserIDFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := h.svc.Send(r.Context(), circulation.SendInput{
		InstructionID: instructionID,
		SentToEmail:   req.SentToEmail,
		CcEmail:       req.CcEmail,
		Subject:       req.Subject,
		Notes:         req.Notes,
		SentByUserID:  userID,
	})
	if err != nil {
		writeDomainError(r.Context(), h.log, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCirculationLogResponse(entry))
}

type recordResponseRequest struct {
	ResponseText string `json:"responseText"`
}

type circulationResponseBody struct {
	ID               string    `json:"id"`
	CirculationLogID string    `json:"circulationLogId"`
	ResponseText     string    `json:"responseText"`
	ReceivedAt       time.Time `json:"receivedAt"`
}

// RecordResponse handles POST /api/circulations/{id}/responses.
func (h *CirculationHandler) RecordResponse(w http.ResponseWriter, r *http.Request) {
	logID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid circulation log id")
		return
	}
	userID, ok := ctxutil.UserIDFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req recordResponseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.svc.RecordResponse(r.Context(), circulation.RecordResponseInput{
		CirculationLogID: logID,
		ResponseText:     req.ResponseText,
		ReceivedByUserID: userID,
	})
	if err != nil {
		writeDomainError(r.Context(), h.log, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, circulationResponseBody{
		ID:               resp.ID.String(),
		CirculationLogID: resp.CirculationLogID.String(),
		ResponseText:     resp.ResponseText,
		ReceivedAt:       resp.ReceivedAt,
	})
}

type trailEntryResponse struct {
	Log       circulationLogResponse    `json:"log"`
	Responses []circulationResponseBody `json:"responses"`
}

// Trail handles GET /api/instructions/{id}/circulations.
func (h *CirculationHandler) Trail(w http.ResponseWriter, r *http.Request) {
	instructionID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid instruction id")
		return
	}

	trail, err := h.svc.Trail(r.Context(), instructionID)
	if err != nil {
		writeDomainError(r.Context(), h.log, w, err)
		return
	}

	out := make([]trailEntryResponse, 0, len(trail))
	for _, e := range trail {
		entry := trailEntryResponse{
			Log:       toCirculationLogResponse(e.Log),
			Responses: make([]circulationResponseBody, 0, len(e.Responses)),
		}
		for _, resp := range e.Responses {
			entry.Responses = append(entry.Responses, circulationResponseBody{
				ID:               resp.ID.String(),
				CirculationLogID: resp.CirculationLogID.String(),
				ResponseText:     resp.ResponseText,
				ReceivedAt:       resp.ReceivedAt,
			})
		}
		out = append(out, entry)
	}
	writeJSON(w, http.StatusOK, map[string]any{"trail": out})
}

func toCirculationLogResponse(l *domain.CirculationLog) circulationLogResponse {
	return circulationLogResponse{
		ID:             l.ID.String(),
		InstructionID:  l.InstructionID.String(),
		DraftVersionID: l.DraftVersionID.String(),
		SentToEmail:    l.SentToEmail,
		CcEmail:        l.CcEmail,
		Subject:        l.Subject,
		Notes:          l.Notes,
		SentAt:         l.SentAt,
	}
}
