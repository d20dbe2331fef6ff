package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/macacolandia/dashboard-api/internal/auth"
	"github.com/macacolandia/dashboard-api/internal/config"
	"github.com/macacolandia/dashboard-api/internal/handlers"
	"github.com/macacolandia/dashboard-api/internal/middleware"
)

// Handlers groups the HTTP handlers wired by RegisterRoutes.
type Handlers struct {
	Auth          *handlers.AuthHandler
	AdminUsers    *handlers.AdminUserHandler
	Registrations *handlers.RegistrationHandler
	Logs          *handlers.LogHandler
	Economy       *handlers.EconomyHandler
}

// RegisterRoutes mounts the API surface. Public endpoints carry a coarse
// per-IP edge limit in front of the per-action counters inside the
// handlers; everything else requires a session, and the admin group
// re-checks the role against the database on every request.
func RegisterRoutes(
	router chi.Router,
	h Handlers,
	sessions *auth.SessionManager,
	accounts auth.AccountFetcher,
	cookieConfig auth.CookieConfig,
	limits config.RateLimitConfig,
) {
	router.Route("/api", func(r chi.Router) {
		// Public
		r.With(middleware.LimitByIP(middleware.EdgeLimit{
			Requests: limits.EdgeLoginPerWindow,
			Window:   limits.LoginWindow,
		})).Post("/auth/login", h.Auth.Login)

		r.With(middleware.LimitByIP(middleware.EdgeLimit{
			Requests: limits.EdgeRegisterPerHour,
			Window:   limits.RegisterWindow,
		})).Post("/auth/register", h.Auth.Register)

		// Session required
		r.Group(func(r chi.Router) {
			r.Use(auth.SessionMiddleware(sessions, cookieConfig))

			r.Post("/auth/logout", h.Auth.Logout)
			r.Get("/auth/me", h.Auth.Me)

			r.Get("/players", h.Economy.ListPlayers)
			r.Get("/players/{id}", h.Economy.GetPlayer)
			r.Get("/players/{id}/transactions", h.Economy.Transactions)
			r.Get("/players/{id}/games", h.Economy.Games)
			r.Get("/stats", h.Economy.Stats)

			// Admin only
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireAdmin(accounts))

				r.Post("/players/{id}/coins", h.Economy.AdjustCoins)

				r.Route("/admin", func(r chi.Router) {
					r.Get("/users", h.AdminUsers.List)
					r.Post("/users", h.AdminUsers.Action)
					r.Get("/registrations", h.Registrations.List)
					r.Post("/registrations", h.Registrations.Decide)
					r.Get("/logs", h.Logs.ActivityLogs)
					r.Get("/security-logs", h.Logs.SecurityLogs)
				})
			})
		})
	})
}
