package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"acconti/internal/cache"
	"acconti/internal/chart"
	applog "acconti/internal/log"
	"acconti/internal/middleware/ratelimit"
	"acconti/internal/middleware/security"
	"acconti/internal/middleware/trace"
	"acconti/internal/services"
)

// Options configures a Server. Zero values fall back to sane defaults.
type Options struct {
	Addr     string
	Service  *services.DepositService
	Notifier *services.ChangeNotifier

	Dimensions chart.Dimensions
	Formatters chart.Formatters

	ChartCacheSize    int
	ChartCacheTTL     time.Duration
	FrameInterval     time.Duration
	AnimationDuration time.Duration

	RequestsPerMinute int
}

// Server is the JSON API in front of the deposit service: deposit writes,
// chart reads, and a server-sent-events stream of animated chart frames.
type Server struct {
	http.Server

	service  *services.DepositService
	notifier *services.ChangeNotifier

	dims       chart.Dimensions
	formatters chart.Formatters

	frameInterval time.Duration
	animDuration  time.Duration

	chartCache   *cache.LRUCache[chart.Description]
	cacheManager *cache.Manager
	limiter      *ratelimit.Limiter
	detector     *security.Detector
	logs         *applog.StructuredLogger

	shutdownOnce sync.Once
}

// DefaultDimensions is the canvas geometry used when none is configured.
func DefaultDimensions() chart.Dimensions {
	return chart.Dimensions{
		Width:  600,
		Height: 300,
		Margin: chart.Margin{Top: 10, Right: 10, Bottom: 30, Left: 10},
	}
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(opts Options) *Server {
	if opts.Dimensions.Width == 0 || opts.Dimensions.Height == 0 {
		opts.Dimensions = DefaultDimensions()
	}
	if opts.Formatters.Date.Layout == "" {
		opts.Formatters = chart.DefaultFormatters()
	}
	if opts.ChartCacheSize <= 0 {
		opts.ChartCacheSize = 100
	}
	if opts.ChartCacheTTL <= 0 {
		opts.ChartCacheTTL = 5 * time.Minute
	}
	if opts.AnimationDuration <= 0 {
		opts.AnimationDuration = chart.DefaultDuration
	}

	mux := http.NewServeMux()

	s := &Server{
		service:       opts.Service,
		notifier:      opts.Notifier,
		dims:          opts.Dimensions,
		formatters:    opts.Formatters,
		frameInterval: opts.FrameInterval,
		animDuration:  opts.AnimationDuration,
		chartCache:    cache.NewLRUCache[chart.Description](opts.ChartCacheSize, opts.ChartCacheTTL),
		cacheManager:  cache.NewManager(),
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RequestsPerMinute,
		}),
		detector: security.NewDetector(),
	}

	s.cacheManager.Register(s.chartCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)
	mux.HandleFunc("POST /api/invoices/{id}/deposits", s.handleCreateDeposit)
	mux.HandleFunc("GET /api/invoices/{id}/deposits", s.handleListDeposits)
	mux.HandleFunc("GET /api/invoices/{id}/chart", s.handleChart)
	mux.HandleFunc("GET /api/invoices/{id}/chart/stream", s.handleChartStream)

	headersMw := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	traceMw := trace.NewMiddleware(s.detector.ExtractClientIP)

	logger := applog.New(applog.Config{
		Component: applog.ComponentHTTP,
		Handler:   slog.Default().Handler(),
	})
	s.logs = applog.NewStructuredLogger(logger)

	withLogger := applog.Middleware(logger)
	withRequestID := applog.RequestIDMiddleware(func(r *http.Request) string {
		return trace.GetRequestID(r.Context())
	})

	handler := headersMw.Middleware(traceMw.Middleware(withLogger(withRequestID(s.guard(mux)))))

	s.Server = http.Server{
		Addr:    opts.Addr,
		Handler: handler,
	}

	return s
}

// guard rejects suspicious requests and rate limits writes.
func (s *Server) guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			slog.WarnContext(r.Context(), "Suspicious request rejected",
				"method", r.Method, "url", r.URL.Path)
			respondError(w, http.StatusBadRequest, "invalid request")
			return
		}

		if r.Method == http.MethodPost {
			clientIP := s.detector.ExtractClientIP(r)
			if !s.limiter.Allow(clientIP) {
				slog.WarnContext(r.Context(), "Rate limit exceeded",
					"client_ip", clientIP, "url", r.URL.Path)
				w.Header().Set("Retry-After", "60")
				respondError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// chartFor returns the invoice's chart description, using the cache when
// it can. ok is false when the invoice has too few dated deposits to draw.
func (s *Server) chartFor(ctx context.Context, invoiceID string) (chart.Description, bool, error) {
	if desc, found := s.chartCache.Get(invoiceID); found {
		return desc, true, nil
	}

	deposits, err := s.service.ListDeposits(ctx, invoiceID)
	if err != nil {
		return chart.Description{}, false, err
	}

	desc, ok := chart.Build(deposits, s.dims, s.formatters)
	if ok {
		s.chartCache.Set(invoiceID, desc)
	}
	return desc, ok, nil
}

// Shutdown gracefully shuts down the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
