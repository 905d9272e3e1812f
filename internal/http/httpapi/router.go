package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/firstlist/presentd/internal/http/handlers"
	"github.com/firstlist/presentd/internal/middleware"
)

// NewRouter assembles the API surface with its middleware chain.
func NewRouter(app *handlers.App, logger zerolog.Logger, allowedOrigins []string, lookup middleware.CountryLookup) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.CORS(allowedOrigins),
		middleware.Locale("en", lookup),
		middleware.Logger(logger),
	)

	r.Get("/healthz", app.Health)

	r.Route("/api/v1/presentations", func(r chi.Router) {
		r.Post("/", app.PresentationCreate)
		r.Get("/{job_id}/status", app.PresentationStatus)
		r.Get("/{job_id}", app.PresentationGet)
	})

	return r
}
