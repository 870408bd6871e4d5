package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gastwerk/ragcache/observe"
	"github.com/gastwerk/ragcache/rag"
	"github.com/gastwerk/ragcache/resilience"
)

// maxBodyBytes caps request bodies well above any valid query plus
// context, so oversized payloads fail before JSON decoding buffers them.
const maxBodyBytes = 64 << 10

// decodeBody decodes a size-capped JSON request body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// askRequest is the body of POST /api/ask.
type askRequest struct {
	Query   string      `json:"query"`
	Context rag.Context `json:"context"`

	// TTLSeconds overrides the cache TTL for this entry. 0 uses the
	// policy default; the policy maximum still applies.
	TTLSeconds int `json:"ttl_seconds"`
}

// statusResponse is the body of GET /api/status.
type statusResponse struct {
	Status string      `json:"status"`
	Cache  cacheStatus `json:"cache"`
}

type cacheStatus struct {
	Available    bool     `json:"available"`
	TotalEntries int      `json:"total_entries"`
	SampleKeys   []string `json:"sample_keys"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var resp *rag.Response
	err := s.timeout.Execute(r.Context(), func(ctx context.Context) error {
		var opErr error
		resp, opErr = s.answerer.AnswerWithTTL(ctx, req.Query, req.Context, time.Duration(req.TTLSeconds)*time.Second)
		return opErr
	})

	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, resp)
	case errors.Is(err, rag.ErrEmptyQuery), errors.Is(err, rag.ErrQueryTooLong):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, resilience.ErrTimeout):
		writeError(w, http.StatusGatewayTimeout, "request timed out")
	default:
		s.log.Error(r.Context(), "answer failed",
			observe.Field{Key: "error", Value: err.Error()},
		)
		writeError(w, http.StatusServiceUnavailable, "answer pipeline unavailable")
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats := s.maintenance.Stats(r.Context())
	available := s.maintenance.HealthProbe(r.Context())

	writeJSON(w, http.StatusOK, statusResponse{
		Status: "ok",
		Cache: cacheStatus{
			Available:    available,
			TotalEntries: stats.TotalEntries,
			SampleKeys:   stats.SampleKeys,
		},
	})
}

func (s *Server) handleDebug(w http.ResponseWriter, r *http.Request) {
	if s.prober == nil {
		writeError(w, http.StatusNotFound, "debug probes not configured")
		return
	}

	results, err := s.prober.Probe(r.Context())
	if err != nil {
		s.log.Error(r.Context(), "debug probe failed",
			observe.Field{Key: "error", Value: err.Error()},
		)
		writeError(w, http.StatusServiceUnavailable, "debug probe failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"queries": results})
}

// invalidateRequest is the body of POST /api/cache/invalidate.
type invalidateRequest struct {
	Query   string      `json:"query"`
	Context rag.Context `json:"context"`
}

func (s *Server) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	var req invalidateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := s.maintenance.Invalidate(r.Context(), req.Query, req.Context); err != nil {
		// Only query validation can fail here.
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"invalidated": true})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	cleared := s.maintenance.ClearAll(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"cleared": cleared})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
