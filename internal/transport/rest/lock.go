package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/opc-efiling/drafting-backend/internal/domain"
	"github.com/opc-efiling/drafting-backend/pkg/ctxutil"
)

// lockService defines the minimal interface needed by LockHandler.
type lockService interface {
	Acquire(ctx context.Context, instructionID, userID uuid.UUID) (bool, error)
	Renew(ctx context.Context, instructionID, userID uuid.UUID) (bool, error)
	Release(ctx context.Context, instructionID, userID uuid.UUID) error
	IsLockedByOther(ctx context.Context, instructionID, userID uuid.UUID) (bool, error)
	Status(ctx context.Context, instructionID uuid.UUID) (*domain.Lock, error)
	TTL() time.Duration
}

// LockHandler serves the edit-lock endpoints. Contention comes back as a
// 200 with granted=false, never an error status: losing a lock race is a
// normal outcome the client UI handles.
type LockHandler struct {
	svc lockService
	log *slog.Logger
}

// NewLockHandler creates a LockHandler.
func NewLockHandler(svc lockService, logger *slog.Logger) *LockHandler {
	return &LockHandler{svc: svc, log: logger.With("handler", "lock")}
}

type lockResultResponse struct {
	Granted    bool   `json:"granted"`
	TTLSeconds int    `json:"ttlSeconds"`
	Status     string `json:"status"`
}

// Acquire handles POST /api/instructions/{id}/lock.
func (h *LockHandler) Acquire(w http.ResponseWriter, r *http.Request) {
	instructionID, userID, ok := h.identify(w, r)
	if !ok {
		return
	}

	granted, err := h.svc.Acquire(r.Context(), instructionID, userID)
	if err != nil {
		writeDomainError(r.Context(), h.log, w, err)
		return
	}

	resp := lockResultResponse{Granted: granted, TTLSeconds: int(h.svc.TTL().Seconds()), Status: "granted"}
	if !granted {
		resp.Status = "denied"
	}
	writeJSON(w, http.StatusOK, resp)
}

// Heartbeat handles POST /api/instructions/{id}/lock/heartbeat. A false
// granted means the lock was lost and the client must re-acquire before
// further edits.
func (h *LockHandler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	instructionID, userID, ok := h.identify(w, r)
	if !ok {
		return
	}

	renewed, err := h.svc.Renew(r.Context(), instructionID, userID)
	if err != nil {
		writeDomainError(r.Context(), h.log, w, err)
		return
	}

	resp := lockResultResponse{Granted: renewed, TTLSeconds: int(h.svc.TTL().Seconds()), Status: "renewed"}
	if !renewed {
		resp.Status = "lost"
	}
	writeJSON(w, http.StatusOK, resp)
}

// Release handles DELETE /api/instructions/{id}/lock. Always acknowledges.
func (h *LockHandler) Release(w http.ResponseWriter, r *http.Request) {
	instructionID, userID, ok := h.identify(w, r)
	if !ok {
		return
	}

	if err := h.svc.Release(r.Context(), instructionID, userID); err != nil {
		writeDomainError(r.Context(), h.log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "released"})
}

type lockStatusResponse struct {
	Locked        bool       `json:"locked"`
	LockedByOther bool       `json:"lockedByOther"`
	HolderID      *string    `json:"holderId,omitempty"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
}

// Status handles GET /api/instructions/{id}/lock.
func (h *LockHandler) Status(w http.ResponseWriter, r *http.Request) {
	instructionID, userID, ok := h.identify(w, r)
	if !ok {
		return
	}

	lockedByOther, err := h.svc.IsLockedByOther(r.Context(), instructionID, userID)
	if err != nil {
		writeDomainError(r.Context(), h.log, w, err)
		return
	}

	resp := lockStatusResponse{LockedByOther: lockedByOther}
	lock, err := h.svc.Status(r.Context(), instructionID)
	switch {
	case err == nil:
		holder := lock.HolderID.String()
		expires := lock.ExpiresAt
		resp.Locked = !lock.Expired(time.Now())
		resp.HolderID = &holder
		resp.ExpiresAt = &expires
	case errors.Is(err, domain.ErrNotFound):
		// No lock row at all; report unlocked.
	default:
		writeDomainError(r.Context(), h.log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// identify resolves the instruction path parameter and the authenticated
// user, writing the error response itself when either is missing.
func (h *LockHandler) identify(w http.ResponseWriter, r *http.Request) (instructionID, userID uuid.UUID, ok bool) {
	userID, authed := ctxutil.UserIDFromCtx(r.Context())
	if !authed {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return uuid.Nil, uuid.Nil, false
	}
	instructionID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid instruction id")
		return uuid.Nil, uuid.Nil, false
	}
	return instructionID, userID, true
}
