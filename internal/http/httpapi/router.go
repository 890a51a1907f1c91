package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"contentgen/internal/http/handlers"
	"contentgen/internal/infra"
	"contentgen/internal/middleware"
)

// Options carries the router's collaborators beyond the handler container.
type Options struct {
	Logger         infra.Logger
	Config         *infra.Config
	CountryLookup  middleware.CountryLookup
	MetricsHandler http.Handler
}

// NewRouter assembles the chi router with the service middleware chain.
func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, chimw.RealIP, chimw.Recoverer)
	r.Use(middleware.Logger(opts.Logger))
	if opts.Config != nil {
		r.Use(middleware.CORS(opts.Config.CORSAllowedOrigins))
		if opts.Config.RateLimitPerMin > 0 {
			r.Use(middleware.RateLimit(opts.Config.RateLimitPerMin, time.Minute))
		}
		r.Use(middleware.Locale(opts.Config.DefaultLocale, opts.CountryLookup))
	}

	r.Get("/", app.Root)
	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/campaigns", func(r chi.Router) {
		r.Post("/", app.CampaignSubmit)
		r.Get("/{job_id}", app.CampaignStatus)
	})

	if opts.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", opts.MetricsHandler)
	}

	return r
}
