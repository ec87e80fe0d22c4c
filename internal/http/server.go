// Package http serves the FMS JSON API.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	applog "github.com/Afatsiawu/FMS/internal/log"
	"github.com/Afatsiawu/FMS/internal/middleware/ratelimit"
	"github.com/Afatsiawu/FMS/internal/middleware/security"
	"github.com/Afatsiawu/FMS/internal/middleware/trace"
	"github.com/Afatsiawu/FMS/internal/services"
)

// Services are the use cases behind the handlers.
type Services struct {
	Finance *services.FinanceService
	Reports *services.ReportService
	Periods *services.PeriodService
	// Ready is the optional readiness probe of the store.
	Ready func(ctx context.Context) error
}

type Options struct {
	RateLimitPerMinute int
	Logger             *applog.Logger
}

type Server struct {
	http.Server
	finance *services.FinanceService
	reports *services.ReportService
	periods *services.PeriodService
	ready   func(ctx context.Context) error

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware
	started  time.Time

	shutdownOnce sync.Once
}

// NewServer registers every route and returns a ready-to-run server.
func NewServer(addr string, svc Services, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.Config{Level: slog.LevelInfo, Component: applog.ComponentHTTP})
	}

	detector := security.NewDetector()
	s := &Server{
		finance:  svc.Finance,
		reports:  svc.Reports,
		periods:  svc.Periods,
		ready:    svc.Ready,
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		detector: detector,
		tracer:   trace.NewMiddleware(detector.ExtractClientIP),
		started:  time.Now(),
	}

	mux := http.NewServeMux()
	s.routes(mux)

	var handler http.Handler = mux
	handler = s.limiter.Middleware(detector.ExtractClientIP, writeRateLimited)(handler)
	handler = detector.Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.tracer.Middleware(handler)
	handler = applog.Middleware(logger)(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/income", s.handleListIncome)
	mux.HandleFunc("POST /api/income", s.handleCreateIncome)
	mux.HandleFunc("DELETE /api/income/{id}", s.handleDeleteIncome)

	mux.HandleFunc("GET /api/tithes", s.handleListTithes)
	mux.HandleFunc("POST /api/tithes", s.handleRecordTithe)
	mux.HandleFunc("DELETE /api/tithes/{id}", s.handleDeleteTithe)
	mux.HandleFunc("GET /api/tithes/month/{month}", s.handleMonthView)

	mux.HandleFunc("GET /api/offerings", s.handleListOfferings)
	mux.HandleFunc("POST /api/offerings", s.handleRecordOffering)
	mux.HandleFunc("DELETE /api/offerings/{id}", s.handleDeleteOffering)

	mux.HandleFunc("GET /api/expenses", s.handleListExpenses)
	mux.HandleFunc("POST /api/expenses", s.handleCreateExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)
	mux.HandleFunc("GET /api/national-expenses", s.handleNationalExpenses)

	mux.HandleFunc("GET /api/district-expenses", s.handleListDistrictExpenses)
	mux.HandleFunc("POST /api/district-expenses", s.handleCreateDistrictExpense)
	mux.HandleFunc("DELETE /api/district-expenses/{id}", s.handleDeleteDistrictExpense)
	mux.HandleFunc("GET /api/district-ledger", s.handleDistrictLedger)

	mux.HandleFunc("GET /api/inventory", s.handleListInventory)
	mux.HandleFunc("POST /api/inventory", s.handleCreateInventory)
	mux.HandleFunc("DELETE /api/inventory/{id}", s.handleDeleteInventory)

	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/reports/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/reports/{period}", s.handleReport)
	mux.HandleFunc("GET /api/profit-loss", s.handleProfitLoss)
	mux.HandleFunc("GET /api/transactions", s.handleTransactions)
	mux.HandleFunc("GET /api/export", s.handleExport)
	mux.HandleFunc("GET /api/export-pdf", s.handleExportPDF)

	mux.HandleFunc("POST /api/year-reset", s.handleYearReset)
	mux.HandleFunc("GET /api/historical-years", s.handleHistoricalYears)
	mux.HandleFunc("GET /api/historical-data/{year}", s.handleHistoricalData)

	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("Unknown endpoint").Write(w)
	})
}

// Shutdown stops the limiter and drains the server. It runs once.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
