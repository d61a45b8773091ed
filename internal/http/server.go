package http

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"prestes/internal/core"
	"prestes/internal/log"
	"prestes/internal/metrics"
	"prestes/internal/middleware/ratelimit"
	"prestes/internal/middleware/security"
	"prestes/internal/middleware/trace"
	"prestes/internal/records"
	"prestes/internal/services"
)

// Options configures NewServer. The zero value is usable.
type Options struct {
	ProductName        string
	RateLimitPerMinute int
	// ReadyCheck, when set, is consulted by /readyz in addition to the
	// binder having loaded.
	ReadyCheck func(context.Context) error
	Now        func() time.Time
	Logger     *log.Logger
}

type Server struct {
	http.Server
	store    *records.Store
	binder   *services.Binder
	metrics  *metrics.Metrics
	limiter  *ratelimit.Limiter
	detector *security.Detector
	logger   *log.Logger

	product    string
	now        func() time.Time
	started    time.Time
	readyCheck func(context.Context) error

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(addr string, store *records.Store, binder *services.Binder, opts Options) *Server {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = log.ForComponent(log.ComponentHTTP)
	}

	s := &Server{
		store:      store,
		binder:     binder,
		metrics:    store.Metrics(),
		limiter:    ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		detector:   security.NewDetector(store.Metrics()),
		logger:     opts.Logger,
		product:    opts.ProductName,
		now:        opts.Now,
		started:    opts.Now(),
		readyCheck: opts.ReadyCheck,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", s.metrics.Handler())

	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)

	mux.HandleFunc("GET /api/events", s.handleListEvents)
	mux.HandleFunc("POST /api/events", s.handleCreateEvent)
	mux.HandleFunc("PUT /api/events/{id}", s.handleUpdateEvent)
	mux.HandleFunc("DELETE /api/events/{id}", s.handleDeleteEvent)
	mux.HandleFunc("POST /api/events/{id}/status", s.handleEventStatus)

	mux.HandleFunc("GET /api/debts", s.handleListDebts)
	mux.HandleFunc("POST /api/debts", s.handleCreateDebt)
	mux.HandleFunc("PUT /api/debts/{id}", s.handleUpdateDebt)
	mux.HandleFunc("DELETE /api/debts/{id}", s.handleDeleteDebt)
	mux.HandleFunc("POST /api/debts/{id}/toggle", s.handleToggleDebt)

	mux.HandleFunc("GET /api/config", s.handleGetConfig)
	mux.HandleFunc("PUT /api/config", s.handlePutConfig)

	mux.HandleFunc("GET /api/calendar", s.handleCalendar)
	mux.HandleFunc("GET /api/calendar/{year}/{month}", s.handleCalendar)

	mux.HandleFunc("GET /api/reports/years", s.handleReportYears)
	mux.HandleFunc("GET /api/reports/{year}", s.handleYearReport)

	mux.HandleFunc("GET /api/backup", s.handleExport)
	mux.HandleFunc("POST /api/backup", s.handleImport)
	mux.HandleFunc("DELETE /api/data", s.handleClear)

	var handler http.Handler = mux
	handler = s.limiter.Middleware(s.detector.ExtractClientIP, s.onRateLimited)(handler)
	handler = s.detector.Middleware(handler)
	handler = security.Headers(security.DefaultHeadersConfig())(handler)
	handler = log.Middleware(s.logger, trace.RequestID, s.detector.ExtractClientIP)(handler)
	handler = trace.NewMiddleware(s.metrics).Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}
	return s
}

// Shutdown stops background goroutines and the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	s.metrics.RateLimited.Inc()
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r), log.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, please try again later").Write(w)
}

// badInput answers a request whose body could not be turned into a record.
func (s *Server) badInput(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		ErrorResponse(http.StatusRequestEntityTooLarge, "request body too large").Write(w)
	case core.IsValidationError(err):
		UnprocessableEntityError(err.Error()).Write(w)
	default:
		BadRequestError("invalid JSON body").Write(w)
	}
}

// respondMutation reports the outcome of a write. A write that reached the
// session but not storage answers 202 with durable=false.
func (s *Server) respondMutation(w http.ResponseWriter, r *http.Request, status int, data any, err error) {
	ctx := r.Context()
	switch {
	case err == nil:
		NewJSONResponse().Status(status).Body(mutationResult{Durable: true, Data: data}).Write(w)
	case errors.Is(err, records.ErrNotDurable):
		log.FromContext(ctx).WarnContext(ctx, "Change kept in session only", log.FieldError, err)
		NewJSONResponse().Status(http.StatusAccepted).Body(mutationResult{
			Durable: false,
			Data:    data,
			Error:   "the change could not be saved to storage",
		}).Write(w)
	default:
		log.FromContext(ctx).Failure(ctx, "Write failed", log.OpSave, err)
		InternalServerError("internal error").Write(w)
	}
}
