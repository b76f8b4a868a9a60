// Package server exposes the onboarding and pathway workflow as a JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/jonathan/skill-pathway/internal/logging"
	"github.com/jonathan/skill-pathway/internal/onboarding"
	"github.com/jonathan/skill-pathway/internal/server/ratelimit"
)

// Server is the HTTP front of one onboarding service.
type Server struct {
	httpServer  *http.Server
	svc         *onboarding.Service
	logger      *logging.Logger
	rateLimiter *ratelimit.Limiter
}

// Config holds server configuration.
type Config struct {
	Port      int
	RateLimit *ratelimit.Config
}

// New creates a server for svc.
func New(cfg Config, svc *onboarding.Service, logger *logging.Logger) *Server {
	s := &Server{
		svc:         svc,
		logger:      logging.OrNop(logger).With("component", "server"),
		rateLimiter: ratelimit.NewLimiter(cfg.RateLimit),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("GET /profile", s.handleGetProfile)
	mux.HandleFunc("PUT /profile", s.handlePutProfile)
	mux.HandleFunc("GET /subjects", s.handleSubjects)

	mux.HandleFunc("GET /onboarding/step", s.handleGetStep)
	mux.HandleFunc("PUT /onboarding/step", s.handlePutStep)
	mux.HandleFunc("POST /onboarding/complete", s.handleComplete)

	mux.HandleFunc("GET /skills", s.handleListSkills)
	mux.HandleFunc("POST /skills", s.handleAddSkill)
	mux.HandleFunc("PATCH /skills", s.handleSetSkillLevel)
	mux.HandleFunc("DELETE /skills", s.handleRemoveSkill)
	mux.HandleFunc("GET /skills/search", s.handleSearchSkills)
	mux.HandleFunc("POST /skills/refresh", s.handleRefreshSkills)
	mux.HandleFunc("POST /skills/extract", s.handleExtractSkills)
	mux.HandleFunc("POST /skills/resolve", s.handleResolveLabels)
	mux.HandleFunc("GET /skills/status", s.handleSkillStatus)

	mux.HandleFunc("POST /recommendations/jobs", s.handleRecommendJobs)
	mux.HandleFunc("GET /pathway", s.handleGetPathway)
	mux.HandleFunc("PUT /pathway/job", s.handleSelectJob)
	mux.HandleFunc("PUT /pathway/major", s.handleSelectMajor)
	mux.HandleFunc("GET /pathway/majors", s.handleListMajors)
	mux.HandleFunc("GET /pathway/gaps", s.handleListGaps)
	mux.HandleFunc("DELETE /pathway", s.handleStartJobSearch)

	mux.HandleFunc("DELETE /state", s.handleReset)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(mux))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the root handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.rateLimiter.Stop()
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	defer s.rateLimiter.Stop()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withRateLimit rejects clients over their per-route budget.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(clientID(r), r.URL.Path, r.Method)
		setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			"method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// clientID is the remote IP, or the raw remote address when it has no port.
func clientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":   "rate_limit_exceeded",
		"message": "Rate limit exceeded. Please try again later.",
		"limit":   info.Limit,
	}
	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds() + 0.999)
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}
	s.logger.Warn("rate limit exceeded", "limit", info.Limit)
	s.jsonResponse(w, http.StatusTooManyRequests, response)
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// writeError maps err to a status and a message safe to show users.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	s.errorResponse(w, status, PublicMessage(err))
}
