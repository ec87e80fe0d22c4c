package http

import (
	"context"
	"net/http"
	"time"
)

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Uptime    string `json:"uptime"`
}

type readyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
	HTTP   httpMetrics       `json:"http"`
}

type httpMetrics struct {
	TotalRequests      int64 `json:"total_requests"`
	ServerErrors       int64 `json:"server_errors"`
	AverageDurationMs  int64 `json:"average_duration_ms"`
	RateLimitRejected  int64 `json:"rate_limit_rejected"`
	RateLimitClients   int64 `json:"rate_limit_clients"`
	SuspiciousRequests int64 `json:"suspicious_requests"`
}

// handleHealth is the liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Payload(healthResponse{
		Status:    "ok",
		Timestamp: time.Now().Format(time.RFC3339),
		Uptime:    time.Since(s.started).Round(time.Second).String(),
	}).Write(w)
}

// handleReady checks the store and reports the middleware counters.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	resp := readyResponse{Status: "ready", Checks: map[string]string{}}
	status := http.StatusOK

	switch {
	case s.finance == nil || s.reports == nil || s.periods == nil:
		resp.Checks["services"] = "not_configured"
		resp.Status, status = "not_ready", http.StatusServiceUnavailable
	default:
		resp.Checks["services"] = "ok"
	}
	if s.ready != nil {
		if err := s.ready(ctx); err != nil {
			resp.Checks["store"] = "failed: " + err.Error()
			resp.Status, status = "not_ready", http.StatusServiceUnavailable
		} else {
			resp.Checks["store"] = "ok"
		}
	}

	tm := s.tracer.GetMetrics()
	rl := s.limiter.GetMetrics()
	resp.HTTP = httpMetrics{
		TotalRequests:      tm.TotalRequests,
		ServerErrors:       tm.ServerErrors,
		AverageDurationMs:  tm.AverageDurationMs,
		RateLimitRejected:  rl.Rejected,
		RateLimitClients:   rl.ClientCount,
		SuspiciousRequests: s.detector.SuspiciousCount(),
	}
	NewJSONResponse().Status(status).Payload(resp).Write(w)
}
