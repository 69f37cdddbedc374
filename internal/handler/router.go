package handler

import (
	"net/http"

	"github.com/vportela/empresas-backoffice-go/internal/infra/observability"
	"github.com/vportela/empresas-backoffice-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// NewRouter creates the HTTP router with all routes and middleware.
// Routes follow the API contract of the empresas dashboard.
func NewRouter(
	directory *service.Directory,
	invites *service.Invites,
	companies *service.Companies,
	accounts *service.Accounts,
	metrics *observability.Metrics,
	jwtSecret string,
	allowedOrigins []string,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// --- Operational endpoints ---
	r.Get("/health", healthHandler())
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API ---
	r.Route("/api", func(r chi.Router) {

		// =============================================
		// 1. 👥 Listagem de usuários
		// GET /api/users
		// =============================================
		r.Get("/users", listUsersHandler(directory, logger))

		// =============================================
		// 2. ✉️ Convite de usuários
		// POST /api/invite-user
		// =============================================
		r.Post("/invite-user", inviteUserHandler(invites, logger))

		// =============================================
		// 3. 🔐 Sessão e conta (autenticado)
		// =============================================
		r.Group(func(r chi.Router) {
			r.Use(SupabaseAuthMiddleware(jwtSecret, logger))

			r.Get("/me", getMeHandler(directory, logger))
			r.Put("/me", updateMeHandler(accounts, logger))
			r.Put("/me/password", changePasswordHandler(accounts, logger))

			// =============================================
			// 4. 🏢 Empresa
			// =============================================
			r.Get("/companies/{companyId}", getCompanyHandler(companies, logger))
			r.Put("/companies/{companyId}", updateCompanyHandler(companies, logger))
			r.Post("/companies/{companyId}/logo", uploadLogoHandler(companies, logger))
		})
	})

	return r
}

// healthHandler answers the liveness probe. Plain text, no provider
// calls: a healthy process answers even when the platform is down.
func healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
