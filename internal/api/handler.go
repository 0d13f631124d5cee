// Package api exposes the operational HTTP surface: liveness and a
// status snapshot for dashboards.
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/skybridge-va/flightwatch/internal/poller"
)

// StatusSource provides the poller's current view for /status.
type StatusSource interface {
	Status() poller.Status
}

type Handler struct {
	source StatusSource
	clock  func() time.Time
}

func NewHandler(source StatusSource) *Handler {
	return &Handler{source: source, clock: time.Now}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	switch {
	case path == "/healthz" && r.Method == http.MethodGet:
		h.health(w, r)

	case path == "/status" && r.Method == http.MethodGet:
		h.status(w, r)

	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

// HealthResponse represents the /healthz endpoint response.
type HealthResponse struct {
	Status string `json:"status"`
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// StatusResponse represents the /status endpoint response.
type StatusResponse struct {
	Uptime        string `json:"uptime"`
	CyclesRun     int    `json:"cycles_run"`
	LastCycleAt   string `json:"last_cycle_at,omitempty"`
	LastCycleErr  string `json:"last_cycle_error,omitempty"`
	ActiveFlights int    `json:"active_flights"`
	LedgerSize    int    `json:"ledger_size"`
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	s := h.source.Status()

	resp := StatusResponse{
		CyclesRun:     s.CyclesRun,
		LastCycleErr:  s.LastCycleErr,
		ActiveFlights: s.ActiveFlights,
		LedgerSize:    s.LedgerSize,
	}
	if !s.StartedAt.IsZero() {
		resp.Uptime = h.clock().UTC().Sub(s.StartedAt).Round(time.Second).String()
	}
	if !s.LastCycleAt.IsZero() {
		resp.LastCycleAt = s.LastCycleAt.Format(time.RFC3339)
	}

	writeJSON(w, http.StatusOK, resp)
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("api: json encode error: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
