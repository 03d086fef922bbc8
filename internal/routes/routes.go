package routes

import (
	"net/http"

	"wallmag/internal/handlers"
	"wallmag/internal/middleware"
	"wallmag/internal/models"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Handlers struct {
	Password   *handlers.PasswordHandler
	Auth       *handlers.AuthHandler
	TwoFactor  *handlers.TwoFactorHandler
	Posts      *handlers.PostHandler
	Moderation *handlers.ModerationHandler
	Logs       *handlers.AdminLogsHandler
	Health     *handlers.HealthHandler
}

type Options struct {
	Sessions middleware.SessionAuthenticator
	Metrics  *middleware.HTTPMetrics
	// MetricsHandler по умолчанию promhttp.Handler()
	MetricsHandler http.Handler
}

func InitRoutes(router *mux.Router, h Handlers, opts Options) {
	router.Use(middleware.RequestID, middleware.Recoverer, middleware.Logging)
	if opts.Metrics != nil {
		router.Use(opts.Metrics.Handler)
	}

	metricsHandler := opts.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	router.Handle("/metrics", metricsHandler).Methods(http.MethodGet)
	router.HandleFunc("/healthz", h.Health.Healthz).Methods(http.MethodGet)
	router.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	api := router.PathPrefix("/api").Subrouter()

	// --- Публичные маршруты ---
	api.HandleFunc("/auth/forgot-password", h.Password.Forgot).Methods(http.MethodPost)
	api.HandleFunc("/auth/verify-otp", h.Password.VerifyOTP).Methods(http.MethodPost)
	api.HandleFunc("/auth/reset-password", h.Password.Reset).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", h.Auth.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/2fa/verify", h.Auth.Verify2FA).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", h.Auth.Logout).Methods(http.MethodPost)

	api.HandleFunc("/posts", h.Posts.List).Methods(http.MethodGet)
	api.HandleFunc("/posts/featured", h.Posts.Featured).Methods(http.MethodGet)
	api.HandleFunc("/posts/latest", h.Posts.Latest).Methods(http.MethodGet)
	api.HandleFunc("/posts/{id}", h.Posts.Get).Methods(http.MethodGet)
	api.HandleFunc("/posts/{id}/like", h.Posts.Like).Methods(http.MethodPost)
	api.HandleFunc("/submissions", h.Posts.Submit).Methods(http.MethodPost)

	// --- Защищённые сессией ---
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.SessionAuth(opts.Sessions))

	protected.HandleFunc("/user/profile", h.Auth.Profile).Methods(http.MethodGet)
	protected.HandleFunc("/auth/refresh-session", h.Auth.RefreshSession).Methods(http.MethodPost)
	protected.HandleFunc("/auth/2fa/setup", h.TwoFactor.Enable).Methods(http.MethodPost)
	protected.HandleFunc("/auth/2fa/setup", h.TwoFactor.Disable).Methods(http.MethodDelete)

	admin := protected.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.OnlyRole(models.RoleEditor))
	admin.HandleFunc("/submissions", h.Moderation.Pending).Methods(http.MethodGet)
	admin.HandleFunc("/posts/{id}/approve", h.Moderation.Approve).Methods(http.MethodPatch)
	admin.HandleFunc("/logs/days", h.Logs.ListDays).Methods(http.MethodGet)
	admin.HandleFunc("/logs", h.Logs.GetLogs).Methods(http.MethodGet)
}
