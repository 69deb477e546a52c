package main

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"governor-xrpl-lab/internal/observability"
	"governor-xrpl-lab/internal/pipeline"
	"governor-xrpl-lab/internal/telemetry"
)

// Server exposes health, metrics and status for the running governor.
type Server struct {
	runner  *pipeline.Runner
	source  *telemetry.SnapshotSource
	logger  *log.Logger
	started time.Time
}

// StatusResponse is the JSON response for /status endpoint.
type StatusResponse struct {
	Status    string                     `json:"status"`
	Uptime    string                     `json:"uptime"`
	Started   time.Time                  `json:"started"`
	Cycles    int                        `json:"cycles"`
	Endpoints []telemetry.EndpointStatus `json:"endpoints"`
	FeeEMA    float64                    `json:"fee_ema,omitempty"`
	LastCycle *pipeline.CycleReport      `json:"last_cycle,omitempty"`
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Prometheus metrics
	mux.Handle("/metrics", observability.Handler())

	// Status endpoint
	mux.HandleFunc("/status", s.handleStatus)

	return mux
}

// handleStatus returns the node trust view and the latest cycle as JSON.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Status:    "running",
		Uptime:    time.Since(s.started).Truncate(time.Second).String(),
		Started:   s.started,
		Cycles:    s.runner.Cycles(),
		Endpoints: []telemetry.EndpointStatus{},
	}
	if s.source != nil {
		resp.Endpoints = s.source.EndpointStatus()
		if ema, ok := s.source.EMA(); ok {
			resp.FeeEMA = ema
		}
	}
	if last, ok := s.runner.Last(); ok {
		resp.LastCycle = &last
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Printf("encode status: %v", err)
	}
}
