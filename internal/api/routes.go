package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hyperengineering/nextbest/internal/metrics"
)

// NewRouter creates a new router with all routes configured
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (all routes)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware)
	r.Use(RecoveryMiddleware)

	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Read-only routes are public
		r.Get("/health", h.Health)
		r.Get("/catalog", h.ListCatalog)
		r.Get("/catalog/{id}", h.GetItem)
		r.Get("/rank", h.Rank)
		r.Get("/prefs", h.GetPrefs)
		r.Get("/xp", h.GetXP)
		r.Get("/games/claw/prizes", h.ListPrizes)
		r.Get("/games/swipe/decks/{id}", h.GetDeck)

		// Mutating routes
		r.Group(func(r chi.Router) {
			if !h.devMode {
				r.Use(AuthMiddleware(h.apiKey))
			}

			r.Post("/pick", h.Pick)
			r.Put("/prefs", h.PutPrefs)
			r.Put("/prefs/max-distance", h.PutMaxDistance)
			r.Put("/prefs/prices", h.PutPricePrefs)
			r.Post("/prefs/categories/{category}/toggle", h.ToggleCategory)
			r.Post("/xp/award", h.AwardXP)
			r.Post("/xp/reset", h.ResetXP)

			r.Group(func(r chi.Router) {
				if h.limiter != nil {
					r.Use(h.limiter.Middleware)
				}
				r.Post("/games/randomizer/spin", h.Spin)
				r.Post("/games/swipe/decks", h.CreateDeck)
				r.Post("/games/swipe/decks/{id}/swipe", h.SwipeDeck)
				r.Post("/games/claw/grab", h.Grab)
			})
		})
	})

	return r
}
