// Package server serves the text analysis endpoint backed by a language model.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/ppiankov/biaslens/internal/cache"
	"github.com/ppiankov/biaslens/internal/llm"
	"github.com/ppiankov/biaslens/internal/model"
	"github.com/ppiankov/biaslens/internal/worker"
	"go.uber.org/zap"
)

// Error texts returned in {"error": ...} bodies
const (
	MessageInvalidBody  = "Invalid request body"
	MessageTextRequired = "Text is required"
	MessageRateLimited  = "Too many requests, please slow down"
	MessageModelFailed  = "Failed to analyze text"
)

// AnalysisIDHeader carries the ID the server assigned to an analysis
const AnalysisIDHeader = "X-Analysis-ID"

// maxBodyOverhead is the request body allowance on top of the text itself
const maxBodyOverhead = 4096

// Server exposes POST /api/analyze-text and GET /api/health
type Server struct {
	cfg      model.ServerConfig
	router   *chi.Mux
	provider llm.Provider
	cache    cache.Cache
	cacheTTL time.Duration
	limiter  *worker.Limiter
	logger   *zap.Logger
}

// New creates a server answering with provider. The response cache and
// per-client rate limit follow cfg.Cache and cfg.RateLimiting.
func New(cfg model.Config, provider llm.Provider, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		cfg:      cfg.Server,
		router:   chi.NewRouter(),
		provider: provider,
		limiter:  worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize),
		logger:   logger,
	}

	if cfg.Cache.Enabled {
		s.cache = cache.NewMemoryCache(cfg.Cache.TTL, 2*cfg.Cache.TTL)
		s.cacheTTL = cfg.Cache.TTL
	}

	s.setupRoutes()
	return s
}

// Handler returns the HTTP handler of the server
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	if s.cfg.TrustProxyHeaders {
		s.router.Use(middleware.RealIP)
	}
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Recoverer)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/analyze-text", s.handleAnalyze)
		r.Get("/health", s.handleHealth)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Info("HTTP request completed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("remote_addr", r.RemoteAddr),
		)
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.Allow(clientKey(r)) {
		writeError(w, http.StatusTooManyRequests, MessageRateLimited)
		return
	}

	if s.cfg.MaxTextLength > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, int64(s.cfg.MaxTextLength)*utf8.UTFMax+maxBodyOverhead)
	}

	var req model.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Debug("invalid analysis request", zap.Error(err))
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Text too long (maximum %d characters)", s.cfg.MaxTextLength))
			return
		}
		writeError(w, http.StatusBadRequest, MessageInvalidBody)
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, MessageTextRequired)
		return
	}
	if n := utf8.RuneCountInString(req.Text); s.cfg.MaxTextLength > 0 && n > s.cfg.MaxTextLength {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Text too long: %d characters (maximum %d)", n, s.cfg.MaxTextLength))
		return
	}

	id := uuid.NewString()
	w.Header().Set(AnalysisIDHeader, id)

	key := cache.AnalysisKey(s.provider.Name(), s.provider.Model(), req.Text)
	if s.cache != nil {
		if body, ok := s.cache.Get(key); ok {
			s.logger.Debug("analysis cache hit", zap.String("analysis_id", id))
			writeBody(w, http.StatusOK, body)
			return
		}
	}

	resp, err := s.provider.Analyze(r.Context(), llm.AnalyzeRequest{Text: req.Text})
	if err != nil {
		s.logger.Error("analysis failed",
			zap.String("analysis_id", id),
			zap.String("provider", s.provider.Name()),
			zap.Error(err),
		)
		status := http.StatusBadGateway
		if errors.Is(err, context.Canceled) {
			status = http.StatusServiceUnavailable
		}
		writeError(w, status, MessageModelFailed)
		return
	}

	body, err := json.Marshal(resp.Result)
	if err != nil {
		writeError(w, http.StatusInternalServerError, MessageModelFailed)
		return
	}

	s.logger.Debug("analysis completed",
		zap.String("analysis_id", id),
		zap.String("model", resp.Model),
		zap.String("severity", string(resp.Result.Severity)),
		zap.Int("issues", len(resp.Result.Issues)),
		zap.Int("tokens", resp.TokensUsed),
	)

	if s.cache != nil {
		if err := s.cache.Set(key, body, s.cacheTTL); err != nil {
			s.logger.Warn("cache write failed", zap.Error(err))
		}
	}

	writeBody(w, http.StatusOK, body)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{
		"status":   "ok",
		"provider": s.provider.Name(),
		"model":    s.provider.Model(),
	}); err != nil {
		s.logger.Error("health check response failed", zap.Error(err))
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         net.JoinHostPort(s.cfg.Host, s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("starting server", zap.String("address", srv.Addr), zap.String("provider", s.provider.Name()))
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		s.logger.Info("starting shutdown")

		// Give outstanding requests a deadline for completion
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
	}

	return nil
}

// clientKey identifies the caller for rate limiting. Forwarding headers
// are only honored when TrustProxyHeaders installs the RealIP middleware.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeError(w http.ResponseWriter, status int, message string) {
	body, _ := json.Marshal(model.ErrorBody{Error: message})
	writeBody(w, status, body)
}

func writeBody(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
	_, _ = w.Write([]byte("\n"))
}
