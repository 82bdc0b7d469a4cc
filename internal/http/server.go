package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"refl/internal/core"
	"refl/internal/log"
	"refl/internal/metrics"
	"refl/internal/middleware/ratelimit"
	"refl/internal/middleware/security"
	"refl/internal/middleware/trace"
)

// EntryLogger stores classified messages and lists recent ones.
type EntryLogger interface {
	LogMessage(ctx context.Context, text string) (core.Entry, error)
	Recent(ctx context.Context, limit int) ([]core.Entry, error)
}

// Summarizer computes a summary over a standing window.
type Summarizer interface {
	Summary(ctx context.Context, w core.Window) (core.Summary, error)
}

// Options wires the server to its collaborators. Entries and Summaries are required.
type Options struct {
	Entries            EntryLogger
	Summaries          Summarizer
	Metrics            *metrics.Metrics
	Logger             *log.Logger
	Ready              func(ctx context.Context) error
	RateLimitPerMinute int
}

type Server struct {
	http.Server
	entries   EntryLogger
	summaries Summarizer
	metrics   *metrics.Metrics
	ready     func(ctx context.Context) error

	rateLimiter  *ratelimit.Limiter
	detector     *security.Detector
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(addr string, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.Config{Handler: slog.Default().Handler()})
	}

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       60 * time.Second,
			MaxHeaderBytes:    1 << 16,
		},
		entries:     opts.Entries,
		summaries:   opts.Summaries,
		metrics:     opts.Metrics,
		ready:       opts.Ready,
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		detector:    security.NewDetector(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("GET /logs", s.handleLogs)
	mux.HandleFunc("GET /summary/{window}", s.handleSummary)
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", s.metrics.Handler())

	// Outermost first; trace must sit directly on the mux to see the route pattern
	var h http.Handler = mux
	h = trace.NewMiddleware(s.detector.ExtractClientIP, s.metrics).Middleware(h)
	h = log.Middleware(logger)(h)
	h = s.rateLimiter.Middleware(s.detector.ExtractClientIP, rateLimited, http.MethodPost)(h)
	h = s.detector.Middleware(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	s.Handler = h

	return s
}

// Shutdown stops the rate limiter and gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func rateLimited(w http.ResponseWriter, r *http.Request) {
	ErrorResponse(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.").Write(w)
}
