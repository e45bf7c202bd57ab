package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jkstudio99/DropStockAPI/pkg/health"
	"github.com/jkstudio99/DropStockAPI/pkg/middleware"

	"github.com/jkstudio99/DropStockAPI/internal/auth"
	"github.com/jkstudio99/DropStockAPI/internal/domain"
)

// NewRouter creates a chi router with all API routes registered.
func NewRouter(
	authHandler *AuthHandler,
	categoryHandler *CategoryHandler,
	productHandler *ProductHandler,
	tokenManager *auth.Manager,
	healthHandler *health.Handler,
	logger *slog.Logger,
	corsConfig middleware.CORSConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(corsConfig))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing("dropstock-api"))
	r.Use(middleware.PrometheusMetrics("dropstock"))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Token validator that bridges bearer tokens to the middleware identity.
	// Lifetime is enforced here; only the refresh endpoint accepts expired tokens.
	tokenValidator := func(token string) (*middleware.Identity, error) {
		claims, err := tokenManager.Validate(token, true)
		if err != nil {
			return nil, err
		}
		return &middleware.Identity{
			Username: claims.Subject,
			Roles:    claims.Roles,
		}, nil
	}

	// Authentication endpoints. The manager and admin registration endpoints
	// carry no privilege gate; deployments are expected to restrict them at
	// the edge.
	r.Route("/api/authentication", func(r chi.Router) {
		r.Get("/testconnect", authHandler.TestConnect)

		r.Group(func(r chi.Router) {
			r.Use(ContentTypeJSON)

			r.Post("/register-user", authHandler.RegisterUser)
			r.Post("/register-manager", authHandler.RegisterManager)
			r.Post("/register-admin", authHandler.RegisterAdmin)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh-token", authHandler.RefreshToken)
			r.Post("/validate-token", authHandler.ValidateToken)
			r.Post("/forgot-password", authHandler.ForgotPassword)
			r.Post("/reset-password", authHandler.ResetPassword)
			r.Post("/confirm-email", authHandler.ConfirmEmail)
		})

		// Logout distinguishes an anonymous caller from one whose account
		// no longer exists, so the token is optional here.
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(tokenValidator))
			r.Post("/logout", authHandler.Logout)
		})
	})

	// Category endpoints: reads are public, writes need Manager or Admin.
	r.Route("/api/category", func(r chi.Router) {
		r.Get("/", categoryHandler.ListCategories)
		r.Get("/{id}", categoryHandler.GetCategory)

		r.Group(func(r chi.Router) {
			r.Use(ContentTypeJSON)
			r.Use(middleware.Auth(tokenValidator))
			r.Use(middleware.RequireRole(domain.RoleManager, domain.RoleAdmin))

			r.Post("/", categoryHandler.CreateCategory)
			r.Put("/{id}", categoryHandler.UpdateCategory)
			r.Delete("/{id}", categoryHandler.DeleteCategory)
		})
	})

	// Product endpoints: same access model as categories.
	r.Route("/api/product", func(r chi.Router) {
		r.Get("/", productHandler.ListProducts)
		r.Get("/{id}", productHandler.GetProduct)

		r.Group(func(r chi.Router) {
			r.Use(ContentTypeJSON)
			r.Use(middleware.Auth(tokenValidator))
			r.Use(middleware.RequireRole(domain.RoleManager, domain.RoleAdmin))

			r.Post("/", productHandler.CreateProduct)
			r.Put("/{id}", productHandler.UpdateProduct)
			r.Delete("/{id}", productHandler.DeleteProduct)
		})
	})

	return r
}
