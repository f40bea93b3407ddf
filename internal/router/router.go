package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rescue-console/internal/config"
	"rescue-console/internal/handler"
	"rescue-console/internal/middleware"
)

const BackendPrefix = "/api/v1/backend"

type Handlers struct {
	Session *handler.SessionHandler
	Avatar  *handler.AvatarHandler
	Proxy   *handler.ProxyHandler
	Events  http.HandlerFunc
}

func New(cfg *config.Config, guard *middleware.SessionGuard, h Handlers, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(api chi.Router) {
		// long lived; must not sit behind the buffering timeout
		api.Get("/events", h.Events)
		api.With(middleware.StreamingTimeout(cfg.RequestTimeout)).Handle("/backend/*", h.Proxy)
		// the backend checks the role too; refusing here keeps the stored
		// token away from calls the session cannot make
		api.With(guard.RequireAdmin, middleware.StreamingTimeout(cfg.RequestTimeout)).Handle("/backend/admin/*", h.Proxy)

		api.Group(func(api chi.Router) {
			api.Use(middleware.Timeout(cfg.RequestTimeout))

			api.Route("/session", func(s chi.Router) {
				s.Get("/", h.Session.Get)
				s.Post("/login", h.Session.Login)
				s.Post("/logout", h.Session.Logout)
				s.Put("/view", h.Session.SetView)
			})

			api.With(guard.RequireSession).Get("/employees/{id}/avatar", h.Avatar.Get)
		})
	})

	return r
}
