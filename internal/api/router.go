package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/ndewijer/finpilot-backend/internal/api/handlers"
	custommiddleware "github.com/ndewijer/finpilot-backend/internal/api/middleware"
	"github.com/ndewijer/finpilot-backend/internal/config"
	"github.com/ndewijer/finpilot-backend/internal/service"
	"github.com/ndewijer/finpilot-backend/internal/session"
)

// Services holds the services the router exposes.
type Services struct {
	System   *service.SystemService
	Users    *service.UserService
	Stocks   *service.StockService
	Holdings *service.HoldingService
	Goals    *service.GoalService
	News     *service.NewsService
	Advisor  *service.AdvisorService
}

// NewRouter creates and configures the HTTP router
func NewRouter(svcs Services, sessions *session.Manager, cfg *config.Config, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger(log))
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	systemHandler := handlers.NewSystemHandler(svcs.System)
	authHandler := handlers.NewAuthHandler(svcs.Users)
	stockHandler := handlers.NewStockHandler(svcs.Stocks, svcs.Holdings)
	holdingHandler := handlers.NewHoldingHandler(svcs.Holdings)
	goalHandler := handlers.NewGoalHandler(svcs.Goals)
	newsHandler := handlers.NewNewsHandler(svcs.News)
	advisorHandler := handlers.NewAdvisorHandler(svcs.Advisor)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			r.Get("/health", systemHandler.Health)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", authHandler.Signup)
			r.Post("/login", authHandler.Login)
			r.With(custommiddleware.RequireSession(sessions)).Get("/me", authHandler.Me)
		})

		// Everything below acts for the signed-in user
		r.Group(func(r chi.Router) {
			r.Use(custommiddleware.RequireSession(sessions))

			r.Get("/stocks", stockHandler.Stocks)
			r.Get("/quote/{symbol}", stockHandler.Quote)

			r.Route("/holdings", func(r chi.Router) {
				r.Get("/", holdingHandler.Holdings)
				r.Post("/", holdingHandler.CreateHolding)
				r.Get("/summary", holdingHandler.Summary)

				r.Route("/{uuid}", func(r chi.Router) {
					r.Use(custommiddleware.ValidateUUIDMiddleware)
					r.Put("/", holdingHandler.UpdateHolding)
					r.Delete("/", holdingHandler.DeleteHolding)
				})
			})

			r.Route("/goals", func(r chi.Router) {
				r.Get("/", goalHandler.Goals)
				r.Post("/", goalHandler.CreateGoal)

				r.Route("/{uuid}", func(r chi.Router) {
					r.Use(custommiddleware.ValidateUUIDMiddleware)
					r.Put("/", goalHandler.UpdateGoal)
					r.Delete("/", goalHandler.DeleteGoal)
					r.Post("/analyze", goalHandler.AnalyzeGoal)
				})
			})

			r.Route("/news", func(r chi.Router) {
				r.Get("/", newsHandler.News)
				r.Post("/refresh", newsHandler.Refresh)
				r.Get("/next-refresh", newsHandler.NextRefresh)
			})

			r.Post("/advisor/chat", advisorHandler.Chat)
		})
	})

	return r
}
