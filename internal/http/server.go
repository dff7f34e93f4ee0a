// Package http serves the relocation planner web interface: full pages,
// HTMX fragment endpoints, and the workbook download.
package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"relocationos/assets"
	"relocationos/internal/cache"
	"relocationos/internal/core"
	"relocationos/internal/currency"
	"relocationos/internal/middleware/ratelimit"
	"relocationos/internal/middleware/security"
	"relocationos/internal/middleware/trace"
	"relocationos/internal/services"
	"relocationos/internal/storage"
	appweb "relocationos/web"
)

// Options wires the server's collaborators together.
type Options struct {
	Addr           string
	Storage        *storage.SQLiteRepository
	Profiles       *services.ProfileService
	Tasks          *services.TaskService
	Expenses       *services.ExpenseService
	Rates          *currency.Service
	DashboardLimit int
	CacheTTL       time.Duration
	RequestsPerMin int
}

type Server struct {
	http.Server

	templates *template.Template

	storage  *storage.SQLiteRepository
	profiles *services.ProfileService
	tasks    *services.TaskService
	expenses *services.ExpenseService
	rates    *currency.Service

	// Budget summaries are cached per profile and invalidated on every
	// expense mutation through the service's mutation hook.
	summaryCache *cache.LRUCache[core.BudgetSummary]
	cacheManager *cache.Manager

	traceMW *trace.Middleware
	limiter *ratelimit.Limiter

	dashboardLimit int
	shutdownOnce   sync.Once
}

func NewServer(opts Options) (*Server, error) {
	if opts.DashboardLimit <= 0 {
		opts.DashboardLimit = 5
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}

	s := &Server{
		storage:        opts.Storage,
		profiles:       opts.Profiles,
		tasks:          opts.Tasks,
		expenses:       opts.Expenses,
		rates:          opts.Rates,
		summaryCache:   cache.NewLRUCache[core.BudgetSummary](100, opts.CacheTTL),
		cacheManager:   cache.NewManager(),
		dashboardLimit: opts.DashboardLimit,
	}

	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	// Expense mutations drop the profile's cached summary.
	if s.expenses != nil {
		s.expenses.OnMutation(s.invalidateSummary)
	}

	t, err := template.New("").Funcs(templateFuncs()).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	s.templates = t

	extractor := security.NewClientIPExtractor()
	s.traceMW = trace.NewMiddleware(extractor.ExtractClientIP)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	s.limiter = ratelimit.NewLimiter(ratelimit.Config{
		RequestsPerMinute: opts.RequestsPerMin,
		CleanupInterval:   5 * time.Minute,
	})

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	// trace -> security headers -> rate limit -> routes
	var handler http.Handler = mux
	handler = s.limiter.Middleware(extractor.ExtractClientIP, nil)(handler)
	handler = headers.Middleware(handler)
	handler = s.traceMW.Middleware(handler)

	s.Server = http.Server{
		Addr:         opts.Addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	if sub, err := fs.Sub(assets.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		slog.Warn("Failed to mount embedded static assets", "component", "http", "error", err)
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /{$}", s.handleDashboard)

	mux.HandleFunc("GET /profiles", s.handleProfileList)
	mux.HandleFunc("POST /profiles", s.handleProfileCreate)
	mux.HandleFunc("GET /profiles/{id}", s.handleProfileDetail)
	mux.HandleFunc("POST /profiles/{id}/delete", s.handleProfileDelete)

	mux.HandleFunc("POST /profiles/{id}/phases", s.handlePhaseCreate)
	mux.HandleFunc("POST /phases/{id}/delete", s.handlePhaseDelete)

	mux.HandleFunc("GET /profiles/{id}/tasks", s.handleTaskList)
	mux.HandleFunc("POST /profiles/{id}/tasks", s.handleTaskCreate)
	mux.HandleFunc("POST /tasks/{id}/complete", s.handleTaskComplete)
	mux.HandleFunc("POST /tasks/{id}/delete", s.handleTaskDelete)

	mux.HandleFunc("GET /profiles/{id}/expenses", s.handleExpenseList)
	mux.HandleFunc("POST /profiles/{id}/expenses", s.handleExpenseCreate)
	mux.HandleFunc("POST /expenses/{id}/pay", s.handleExpensePay)
	mux.HandleFunc("POST /expenses/{id}/delete", s.handleExpenseDelete)

	mux.HandleFunc("GET /profiles/{id}/budget", s.handleBudgetSummary)

	mux.HandleFunc("POST /profiles/{id}/categories", s.handleCategoryCreate)
	mux.HandleFunc("POST /categories/{id}/delete", s.handleCategoryDelete)

	mux.HandleFunc("GET /profiles/{id}/export.xlsx", s.handleExportWorkbook)
}

// Shutdown stops the background goroutines and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func summaryCacheKey(profileID int64) string {
	return fmt.Sprintf("summary-%d", profileID)
}

func (s *Server) invalidateSummary(profileID int64) {
	s.summaryCache.Delete(summaryCacheKey(profileID))
}

// budgetSummary returns the profile's summary, cached per profile.
func (s *Server) budgetSummary(ctx context.Context, profileID int64) (core.BudgetSummary, error) {
	key := summaryCacheKey(profileID)
	if summary, ok := s.summaryCache.Get(key); ok {
		slog.DebugContext(ctx, "Budget summary cache hit",
			"component", "http",
			"profile_id", profileID)
		return summary, nil
	}

	summary, err := s.expenses.BudgetSummary(ctx, profileID)
	if err != nil {
		return core.BudgetSummary{}, err
	}
	s.summaryCache.Set(key, summary)
	return summary, nil
}

func (s *Server) renderTemplate(w http.ResponseWriter, r *http.Request, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution failed",
			"component", "http",
			"template", name,
			"error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady pings storage: a server that cannot reach its database
// should not receive traffic.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.storage.Ping(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "Readiness check failed",
			"component", "http",
			"error", err)
		http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"money": func(cents int64, code string) string {
			return currency.FormatAmount(cents, code)
		},
		"date": func(d *core.Date) string {
			if d == nil || d.IsEmpty() {
				return "-"
			}
			return d.Format("Jan 02, 2006")
		},
		"progress": func(pct float64) int {
			switch {
			case pct < 0:
				return 0
			case pct > 100:
				return 100
			}
			return int(pct)
		},
		"urgencyClass": func(level services.UrgencyLevel) string {
			return "urgency-" + strings.ReplaceAll(string(level), "_", "-")
		},
	}
}
