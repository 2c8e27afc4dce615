package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/api/handlers"
	custommiddleware "github.com/scenariodesk/Portfolio-Scenario-Backend/internal/api/middleware"
	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/config"
	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/metrics"
	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/service"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	systemService *service.SystemService,
	scenarioService *service.ScenarioService,
	priceService *service.PriceService,
	settingsService *service.SettingsService,
	cfg *config.Config,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// Prometheus scrape endpoint
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(systemService)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/scenario", func(r chi.Router) {
			scenarioHandler := handlers.NewScenarioHandler(scenarioService)
			r.Get("/", scenarioHandler.Scenarios)
			r.Post("/", scenarioHandler.CreateScenario)

			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", scenarioHandler.GetScenario)
				r.Delete("/", scenarioHandler.DeleteScenario)
				r.Post("/portfolio", scenarioHandler.AddPortfolio)
				r.Post("/node", scenarioHandler.AddActionNode)
				r.Get("/projection", scenarioHandler.Projection)
			})
		})

		r.Route("/node/{uuid}", func(r chi.Router) {
			nodeHandler := handlers.NewNodeHandler(scenarioService)
			r.Use(custommiddleware.ValidateUUIDMiddleware)
			r.Delete("/", nodeHandler.DeleteNode)
			r.Put("/params", nodeHandler.UpdateParams)
			r.Get("/ledger", nodeHandler.Ledger)
			r.Post("/holding", nodeHandler.AddHolding)
		})

		r.Route("/holding/{uuid}", func(r chi.Router) {
			holdingHandler := handlers.NewHoldingHandler(scenarioService)
			r.Use(custommiddleware.ValidateUUIDMiddleware)
			r.Put("/", holdingHandler.UpdateHolding)
			r.Delete("/", holdingHandler.DeleteHolding)
		})

		r.Route("/prices", func(r chi.Router) {
			priceHandler := handlers.NewPriceHandler(priceService)
			r.Get("/lookup", priceHandler.Lookup)
			r.Post("/refresh", priceHandler.Refresh)
		})

		r.Route("/settings", func(r chi.Router) {
			settingsHandler := handlers.NewSettingsHandler(settingsService)
			r.Get("/pricing", settingsHandler.PricingSettings)
			r.Put("/pricing", settingsHandler.UpdatePricingSettings)
		})
	})

	return r
}
