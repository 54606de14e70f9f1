package handlers

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/bartoszbak/mcqs-helper/internal/config"
	"github.com/bartoszbak/mcqs-helper/internal/gemini"
	"github.com/bartoszbak/mcqs-helper/internal/limiter"
	"github.com/bartoszbak/mcqs-helper/internal/logging"
	"github.com/bartoszbak/mcqs-helper/internal/perplexity"
	"github.com/bartoszbak/mcqs-helper/internal/resend"
)

// SubjectGenerator produces an email subject line, absorbing all failures.
type SubjectGenerator interface {
	GenerateSubject(ctx context.Context, feedbackHTML string) string
}

// EmailSender delivers an HTML email and reports the provider's raw result.
type EmailSender interface {
	Send(ctx context.Context, to []string, subject, html string) (*resend.SendResult, error)
}

// Explainer returns the explanation provider's raw response.
type Explainer interface {
	Explain(ctx context.Context, question, correctAnswer string) (*perplexity.Response, error)
}

// Server holds the HTTP façade and its dependencies
type Server struct {
	config    *config.Config
	limiter   *limiter.Limiter
	subjects  SubjectGenerator
	emails    EmailSender
	explainer Explainer
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config) *Server {
	return &Server{
		config:    cfg,
		limiter:   limiter.New(),
		subjects:  gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.DefaultSubjectLine),
		emails:    resend.NewClient(cfg.ResendAPIKey, cfg.DefaultFromEmail),
		explainer: perplexity.NewClient(cfg.PerplexityAPIKey),
	}
}

// SetupRoutes configures HTTP routes
func (s *Server) SetupRoutes() *mux.Router {
	r := mux.NewRouter()

	r.Use(s.corsMiddleware)
	r.Use(s.loggingMiddleware)

	// Health check, never rate limited
	r.HandleFunc("/health", s.healthHandler).Methods("GET")

	// Relay endpoints, rate limited per client address
	r.HandleFunc("/feedback", s.rateLimit("feedback", s.config.FeedbackQuota, s.feedbackHandler)).Methods("POST")
	r.HandleFunc("/explain", s.rateLimit("explain", s.config.ExplainQuota, s.explainHandler)).Methods("POST")

	return r
}

// healthHandler provides the health check endpoint
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// rateLimit gates a handler behind the per-client quota for one
// endpoint. Rejected requests never reach the handler, so no outbound
// calls are made for them.
func (s *Server) rateLimit(endpoint string, quota limiter.Quota, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		decision := s.limiter.Allow(endpoint+"|"+clientIP(r), quota)
		if !decision.Allowed {
			w.Header().Set("Retry-After", strconv.Itoa(int(decision.RetryAfter/time.Second)+1))
			writeJSON(w, http.StatusTooManyRequests, map[string]string{
				"error": "Rate limit exceeded: " + quota.String(),
			})
			return
		}

		next(w, r)
	}
}

// clientIP derives the rate-limit identity from the caller's network address.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// Middleware functions

// corsMiddleware adds CORS headers
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap the ResponseWriter to capture status code
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		logging.GetLogger().Infof("%s %s %s %d %v", clientIP(r), r.Method, r.URL.Path, wrapped.statusCode, duration)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// writeJSON writes v as a JSON response with the given status code
func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}
