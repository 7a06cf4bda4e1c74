package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"time"

	"budgetrip/internal/cache"
	"budgetrip/internal/core"
	applog "budgetrip/internal/log"
	"budgetrip/internal/services"
)

const (
	summaryCacheSize = 100
	summaryCacheTTL  = 5 * time.Minute

	requestsPerMinute = 60
)

// Server is the budgetrip JSON API. It wraps http.Server with per-IP
// rate limiting, a short-lived month summary cache and request logging.
type Server struct {
	http.Server

	lineItems *services.LineItemService
	events    *services.EventService
	refresher *services.RefreshProcessor

	rateLimiter *rateLimiter
	metrics     *securityMetrics
	httpLogger  *applog.HTTPLogger

	summaryCache *cache.LRUCache[core.MonthSummary]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server. refresher may be nil when no provider is configured; the
// refresh endpoint then answers 404 for every provider.
func NewServer(
	addr string,
	lineItems *services.LineItemService,
	events *services.EventService,
	refresher *services.RefreshProcessor,
	logger *applog.Logger,
) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		lineItems:    lineItems,
		events:       events,
		refresher:    refresher,
		rateLimiter:  newRateLimiter(requestsPerMinute),
		metrics:      &securityMetrics{},
		httpLogger:   applog.NewHTTPLogger(logger),
		summaryCache: cache.NewLRUCache[core.MonthSummary](summaryCacheSize, summaryCacheTTL),
		cacheManager: cache.NewManager(),
	}

	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /api/line_items", s.withMiddleware(s.handleListLineItems))
	mux.HandleFunc("POST /api/line_items", s.withMiddleware(s.handleCreateLineItem))
	mux.HandleFunc("GET /api/line_items/{id}", s.withMiddleware(s.handleGetLineItem))
	mux.HandleFunc("DELETE /api/line_items/{id}", s.withMiddleware(s.handleDeleteLineItem))

	mux.HandleFunc("GET /api/events", s.withMiddleware(s.handleListEvents))
	mux.HandleFunc("POST /api/events", s.withMiddleware(s.handleCreateEvent))
	mux.HandleFunc("GET /api/events/{id}", s.withMiddleware(s.handleGetEvent))
	mux.HandleFunc("DELETE /api/events/{id}", s.withMiddleware(s.handleDeleteEvent))

	mux.HandleFunc("GET /api/categories", s.withMiddleware(s.handleListCategories))
	mux.HandleFunc("POST /api/categories", s.withMiddleware(s.handleCreateCategory))

	mux.HandleFunc("GET /api/accounts", s.withMiddleware(s.handleListAccounts))
	mux.HandleFunc("POST /api/accounts/{provider}/refresh", s.withMiddleware(s.handleRefreshAccount))

	mux.HandleFunc("GET /api/summary", s.withMiddleware(s.handleSummary))

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	return s
}

// withMiddleware adds client IP extraction, request IDs, rate limiting
// on mutating methods, security headers and request logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		s.httpLogger.RequestStarted(ctx, r, clientIP)

		if detectSuspiciousRequest(r, s.metrics) {
			notFound(w, "not found")
			return
		}

		if isMutating(r.Method) && !s.rateLimiter.allow(clientIP, s.metrics) {
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'none'")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		s.httpLogger.RequestCompleted(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	}
}

func isMutating(method string) bool {
	return method == http.MethodPost || method == http.MethodPut ||
		method == http.MethodPatch || method == http.MethodDelete
}

// invalidateSummaries drops all cached month summaries. Called whenever
// an event is created or deleted, since either changes the aggregates.
func (s *Server) invalidateSummaries() {
	s.summaryCache.Clear()
}

// Shutdown stops the cleanup goroutines and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

type contextKey string

const requestIDKey contextKey = "request_id"

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
