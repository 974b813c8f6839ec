package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fundvault/dataroom-service/internal/api/http/handlers"
	"github.com/fundvault/dataroom-service/internal/auth"
	"github.com/fundvault/dataroom-service/internal/domain"
	"github.com/fundvault/dataroom-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Datarooms      *handlers.DataroomsHandler
	Investors      *handlers.InvestorsHandler
	Views          *handlers.ViewsHandler
	Flags          *handlers.FlagsHandler
	Unsubscribe    *handlers.UnsubscribeHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Metrics.Registry(), promhttp.HandlerOpts{})))

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/magic-link/request", cfg.Auth.RequestMagicLink)
	app.Get("/api/auth/callback/email", cfg.Auth.EmailCallback)

	tokens := authGroup.Group("/tokens", cfg.AuthMiddleware.Handle)
	tokens.Post("", cfg.Auth.CreateToken)
	tokens.Get("", cfg.Auth.ListTokens)

	// Public link surface; gated by each link's own policy.
	app.Get("/view/:slug", cfg.Views.ViewLink)
	app.Post("/view/:slug/questions", cfg.Views.AskQuestion)
	app.Get("/unsubscribe/:context/:token", cfg.Unsubscribe.Unsubscribe)

	api := app.Group("/api", cfg.AuthMiddleware.Handle)
	api.Get("/flags", cfg.Flags.GetFlags)

	datarooms := api.Group("/datarooms")
	datarooms.Post("", auth.RequireScope(domain.ScopeDataroomsWrite), cfg.Datarooms.CreateDataroom)
	datarooms.Get("", auth.RequireScope(domain.ScopeDataroomsRead), cfg.Datarooms.ListDatarooms)
	datarooms.Get("/:id", auth.RequireScope(domain.ScopeDataroomsRead), cfg.Datarooms.GetDataroom)
	datarooms.Post("/:id/documents", auth.RequireScope(domain.ScopeDataroomsWrite), cfg.Datarooms.AddDocument)
	datarooms.Get("/:id/documents", auth.RequireScope(domain.ScopeDataroomsRead), cfg.Datarooms.ListDocuments)
	datarooms.Post("/:id/links", auth.RequireScope(domain.ScopeDataroomsWrite), cfg.Datarooms.CreateLink)
	datarooms.Get("/:id/questions", auth.RequireScope(domain.ScopeDataroomsRead), cfg.Datarooms.ListQuestions)
	api.Post("/questions/:id/answer", auth.RequireScope(domain.ScopeDataroomsWrite), cfg.Datarooms.AnswerQuestion)

	investors := api.Group("/investors")
	investors.Post("", auth.RequireScope(domain.ScopeInvestorsWrite), cfg.Investors.CreateInvestor)
	investors.Get("", auth.RequireScope(domain.ScopeInvestorsRead), cfg.Investors.ListInvestors)
	investors.Get("/:id", auth.RequireScope(domain.ScopeInvestorsRead), cfg.Investors.GetInvestor)
	investors.Put("/:id/kyc", auth.RequireScope(domain.ScopeInvestorsWrite), cfg.Investors.UpdateKycStatus)
	investors.Get("/:id/kyc", auth.RequireScope(domain.ScopeInvestorsRead), cfg.Investors.CheckKyc)
	investors.Post("/:id/bank-link", auth.RequireScope(domain.ScopeBilling), cfg.Investors.LinkBankAccount)
	investors.Get("/:id/bank-link", auth.RequireScope(domain.ScopeBilling), cfg.Investors.GetBankLinkStatus)
	investors.Post("/:id/transactions", auth.RequireScope(domain.ScopeBilling), cfg.Investors.InitiateTransaction)
}
