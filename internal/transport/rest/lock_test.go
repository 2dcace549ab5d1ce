package rest

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/opc-efiling/drafting-backend/internal/domain"
	"github.com/opc-efiling/drafting-backend/pkg/ctxutil"
)

type stubLockService struct {
	granted  bool
	renewed  bool
	byOther  bool
	lock     *domain.Lock
	released int
}

func (s *stubLockService) Acquire(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
	return s.granted, nil
}

func (s *stubLockService) Renew(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
	return s.renewed, nil
}

func (s *stubLockService) Release(context.Context, uuid.UUID, uuid.UUID) error {
	s.released++
	return nil
}

func (s *stubLockService) IsLockedByOther(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
	return s.byOther, nil
}

func (s *stubLockService) Status(context.Context, uuid.UUID) (*domain.Lock, error) {
	if s.lock == nil {
		return nil, domain.ErrNotFound
	}
	return s.lock, nil
}

func (s *stubLockService) TTL() time.Duration { return time.Minute }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func lockRequest(t *testing.T, method, path string, userID uuid.UUID) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if userID != uuid.Nil {
		req = req.WithContext(ctxutil.WithUserID(req.Context(), userID))
	}
	return req
}

func serveLock(h *LockHandler, req *http.Request) *httptest.ResponseRecorder {
	mux := NewRouter(Handlers{
		Lock:        h,
		Auth:        NewAuthHandler(nil, discardLogger()),
		Instruction: NewInstructionHandler(nil, discardLogger()),
		Circulation: NewCirculationHandler(nil, discardLogger()),
		Health:      NewHealthHandler(nil, "test"),
	})
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestLockAcquire_Granted(t *testing.T) {
	svc := &stubLockService{granted: true}
	h := NewLockHandler(svc, discardLogger())
	instructionID := uuid.New()

	rec := serveLock(h, lockRequest(t, http.MethodPost, "/api/instructions/"+instructionID.String()+"/lock", uuid.New()))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var body lockResultResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !body.Granted || body.Status != "granted" {
		t.Errorf("expected granted result, got %+v", body)
	}
	if body.TTLSeconds != 60 {
		t.Errorf("expected ttl 60s, got %d", body.TTLSeconds)
	}
}

func TestLockAcquire_DeniedIsStill200(t *testing.T) {
	svc := &stubLockService{granted: false}
	h := NewLockHandler(svc, discardLogger())
	instructionID := uuid.New()

	rec := serveLock(h, lockRequest(t, http.MethodPost, "/api/instructions/"+instructionID.String()+"/lock", uuid.New()))

	if rec.Code != http.StatusOK {
		t.Fatalf("contention must not be an error status, got %d", rec.Code)
	}
	var body lockResultResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Granted || body.Status != "denied" {
		t.Errorf("expected denied result, got %+v", body)
	}
}

func TestLockHeartbeat_Lost(t *testing.T) {
	svc := &stubLockService{renewed: false}
	h := NewLockHandler(svc, discardLogger())
	instructionID := uuid.New()

	rec := serveLock(h, lockRequest(t, http.MethodPost, "/api/instructions/"+instructionID.String()+"/lock/heartbeat", uuid.New()))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var body lockResultResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Status != "lost" {
		t.Errorf("expected lost status, got %q", body.Status)
	}
}

func TestLockRelease_AlwaysAcks(t *testing.T) {
	svc := &stubLockService{}
	h := NewLockHandler(svc, discardLogger())
	instructionID := uuid.New()

	rec := serveLock(h, lockRequest(t, http.MethodDelete, "/api/instructions/"+instructionID.String()+"/lock", uuid.New()))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if svc.released != 1 {
		t.Errorf("expected 1 release call, got %d", svc.released)
	}
}

func TestLockStatus_NoLock(t *testing.T) {
	svc := &stubLockService{}
	h := NewLockHandler(svc, discardLogger())
	instructionID := uuid.New()

	rec := serveLock(h, lockRequest(t, http.MethodGet, "/api/instructions/"+instructionID.String()+"/lock", uuid.New()))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var body lockStatusResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Locked || body.LockedByOther || body.HolderID != nil {
		t.Errorf("expected unlocked response, got %+v", body)
	}
}

func TestLock_RequiresAuth(t *testing.T) {
	h := NewLockHandler(&stubLockService{}, discardLogger())
	instructionID := uuid.New()

	rec := serveLock(h, lockRequest(t, http.MethodPost, "/api/instructions/"+instructionID.String()+"/lock", uuid.Nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestLock_RejectsBadID(t *testing.T) {
	h := NewLockHandler(&stubLockService{}, discardLogger())

	rec := serveLock(h, lockRequest(t, http.MethodPost, "/api/instructions/not-a-uuid/lock", uuid.New()))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}
