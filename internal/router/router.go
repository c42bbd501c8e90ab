package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/assinadoc/assinadoc-api/internal/api/auth"
	"github.com/assinadoc/assinadoc-api/internal/api/contract"
	"github.com/assinadoc/assinadoc-api/internal/api/plan"
	"github.com/assinadoc/assinadoc-api/internal/api/user"
)

// Config contains the dependencies needed for the router setup.
type Config struct {
	AuthHandler     *auth.AuthHandler
	PlanHandler     plan.Handler
	ContractHandler contract.Handler
	UserHandler     user.Handler

	AuthenticateMiddleware func(http.Handler) http.Handler
	EntitlementMiddleware  func(http.Handler) http.Handler
	AdminMiddleware        func(http.Handler) http.Handler
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (logger, requestID, recoverer) are applied before
// mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000", "https://app.assinadoc.com.br"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	r.Get("/swagger/*", httpSwagger.Handler())

	r.Route("/api/v1", func(r chi.Router) {

		// Public routes: no JWT required.
		r.Group(func(r chi.Router) {
			r.Post("/auth/register", cfg.AuthHandler.Register)
			r.Post("/auth/login", cfg.AuthHandler.Login)
			r.Post("/auth/refresh", cfg.AuthHandler.RefreshSession)
			r.Get("/auth/{provider}", cfg.AuthHandler.BeginProviderAuth)
			r.Get("/auth/{provider}/callback", cfg.AuthHandler.ProviderCallback)

			// The pricing page is reachable before login.
			r.Get("/plans", cfg.PlanHandler.ListActivePlans)
			r.Get("/plans/{planID}", cfg.PlanHandler.GetPlan)
		})

		// Authenticated routes: valid JWT, but no subscription requirement.
		// Users whose trial ended must still be able to log out, read their
		// profile, and reach the checkout flow.
		r.Group(func(r chi.Router) {
			r.Use(cfg.AuthenticateMiddleware)

			r.Post("/auth/logout", cfg.AuthHandler.Logout)
			r.Get("/users/profile", cfg.UserHandler.GetProfile)
			r.Put("/users/profile", cfg.UserHandler.UpdateProfile)
		})

		// Entitled routes: valid JWT plus an open trial or active subscription.
		r.Group(func(r chi.Router) {
			r.Use(cfg.AuthenticateMiddleware)
			r.Use(cfg.EntitlementMiddleware)

			r.Get("/contracts", cfg.ContractHandler.ListContracts)
			r.Post("/contracts/upload", cfg.ContractHandler.CompleteUpload)
			r.Get("/contracts/workflow", cfg.ContractHandler.GetWorkflowState)
			r.Get("/contracts/{contractID}", cfg.ContractHandler.GetContract)
			r.Put("/contracts/{contractID}/status", cfg.ContractHandler.AdvanceStatus)
		})

		// Admin routes.
		r.Group(func(r chi.Router) {
			r.Use(cfg.AuthenticateMiddleware)
			r.Use(cfg.AdminMiddleware)

			r.Get("/admin/plans", cfg.PlanHandler.ListAllPlans)
			r.Post("/admin/plans", cfg.PlanHandler.CreatePlan)
			r.Put("/admin/plans/{planID}", cfg.PlanHandler.UpdatePlan)
			r.Delete("/admin/plans/{planID}", cfg.PlanHandler.DeletePlan)
		})
	})

	return r
}
