package rest

import "net/http"

// Handlers bundles the REST handlers the router mounts.
type Handlers struct {
	Auth        *AuthHandler
	Lock        *LockHandler
	Instruction *InstructionHandler
	Circulation *CirculationHandler
	Health      *HealthHandler
}

// NewRouter mounts all REST routes on a ServeMux. Authentication is applied
// outside, by the middleware chain; handlers reject anonymous requests
// where identity is required.
func NewRouter(h Handlers) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.Health.Health)
	mux.HandleFunc("GET /health/live", h.Health.Live)
	mux.HandleFunc("GET /health/ready", h.Health.Ready)

	mux.HandleFunc("POST /api/auth/login", h.Auth.Login)
	mux.HandleFunc("GET /api/auth/me", h.Auth.Me)

	mux.HandleFunc("POST /api/instructions", h.Instruction.Create)
	mux.HandleFunc("GET /api/instructions", h.Instruction.List)
	mux.HandleFunc("GET /api/instructions/{id}", h.Instruction.Get)
	mux.HandleFunc("POST /api/instructions/{id}/actions", h.Instruction.Action)
	mux.HandleFunc("GET /api/instructions/{id}/actions", h.Instruction.AllowedActions)
	mux.HandleFunc("GET /api/instructions/{id}/timeline", h.Instruction.Timeline)

	mux.HandleFunc("POST /api/instructions/{id}/lock", h.Lock.Acquire)
	mux.HandleFunc("GET /api/instructions/{id}/lock", h.Lock.Status)
	mux.HandleFunc("POST /api/instructions/{id}/lock/heartbeat", h.Lock.Heartbeat)
	mux.HandleFunc("DELETE /api/instructions/{id}/lock", h.Lock.Release)

	mux.HandleFunc("POST /api/instructions/{id}/circulations", h.Circulation.Send)
	mux.HandleFunc("GET /api/instructions/{id}/circulations", h.Circulation.Trail)
	mux.HandleFunc("POST /api/circulations/{id}/responses", h.Circulation.RecordResponse)

	return mux
}
