package api

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/middleware"
)

// Options configures the router's outer surface.
type Options struct {
	// Metrics receives HTTP observations and is served on /metrics. Optional.
	Metrics *metrics.Metrics

	// RateLimit applies to /api routes. A zero RequestsPerSecond disables it.
	RateLimit middleware.RateLimitConfig

	// CORSOrigins lists allowed browser origins; empty allows any.
	CORSOrigins []string

	// StaticDir, when set, is served at / with index.html as fallback.
	StaticDir string

	// RequestTimeout bounds each API request. Zero means no timeout.
	RequestTimeout time.Duration
}

// NewRouter wires middleware and routes. ctx bounds background work started
// by middleware, such as the rate limiter's sweeper.
func NewRouter(ctx context.Context, h *Handler, opts Options) http.Handler {
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	if opts.Metrics != nil {
		r.Use(middleware.Metrics(opts.Metrics))
	}
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))

	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		if opts.RateLimit.RequestsPerSecond > 0 {
			r.Use(middleware.RateLimiter(ctx, opts.RateLimit))
		}
		if opts.RequestTimeout > 0 {
			r.Use(chimw.Timeout(opts.RequestTimeout))
		}
		r.NotFound(h.notFound)
		r.MethodNotAllowed(h.methodNotAllowed)

		r.Get("/health", h.Health)

		r.Route("/groups", func(r chi.Router) {
			r.Get("/", h.ListGroups)
			r.Post("/", h.CreateGroup)

			r.Route("/{ref}", func(r chi.Router) {
				r.Get("/", h.GetGroup)
				r.Delete("/", h.DeleteGroup)

				r.Get("/participants", h.ListParticipants)
				r.Post("/participants", h.AddParticipant)
				r.Put("/participants/{participant}", h.RenameParticipant)
				r.Patch("/participants/{participant}", h.RenameParticipant)
				r.Delete("/participants/{participant}", h.RemoveParticipant)

				r.Get("/expenses", h.ListExpenses)
				r.Post("/expenses", h.AddExpense)
				r.Get("/expenses/{expenseID}", h.GetExpense)
				r.Put("/expenses/{expenseID}", h.UpdateExpense)
				r.Delete("/expenses/{expenseID}", h.DeleteExpense)

				r.Get("/payments", h.ListPayments)
				r.Post("/payments", h.RecordPayment)
				r.Delete("/payments/{paymentID}", h.DeletePayment)

				r.Get("/balances", h.GetBalances)
				r.Get("/balance", h.GetBalances)
			})
		})
	})

	if opts.StaticDir != "" {
		r.Get("/*", staticHandler(opts.StaticDir))
	} else {
		r.NotFound(h.notFound)
	}

	return r
}

// staticHandler serves files from dir. Unknown paths get index.html so
// client-side routes keep working on reload.
func staticHandler(dir string) http.HandlerFunc {
	root, err := filepath.Abs(dir)
	if err != nil {
		root = dir
	}
	slog.Info("Serving static files", "path", root)

	return func(w http.ResponseWriter, r *http.Request) {
		urlPath := r.URL.Path
		if urlPath == "/" {
			urlPath = "/index.html"
		}

		filePath := filepath.Join(root, filepath.Clean("/"+strings.TrimPrefix(urlPath, "/")))
		if info, err := os.Stat(filePath); err != nil || info.IsDir() {
			http.ServeFile(w, r, filepath.Join(root, "index.html"))
			return
		}

		http.ServeFile(w, r, filePath)
	}
}
