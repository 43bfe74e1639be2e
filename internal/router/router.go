package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"smart-blog-api/internal/config"
	"smart-blog-api/internal/handler"
	"smart-blog-api/internal/metrics"
	"smart-blog-api/internal/middleware"
)

type Handlers struct {
	System *handler.SystemHandler
	Docs   *handler.DocsHandler
	Auth   *handler.AuthHandler
	Post   *handler.PostHandler
	AI     *handler.AIHandler
}

func New(cfg *config.Config, authMiddleware *middleware.AuthMiddleware, h Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(metrics.InstrumentHandler)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)

	r.Get("/", h.System.Root)
	r.Get("/health", h.System.Health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	r.Get("/openapi.yaml", h.Docs.OpenAPI)
	r.Get("/swagger", h.Docs.SwaggerUI)

	r.Route("/api", func(api chi.Router) {
		api.Group(func(jsonAPI chi.Router) {
			jsonAPI.Use(middleware.Timeout(cfg.RequestTimeout))

			jsonAPI.Route("/auth", func(auth chi.Router) {
				auth.Post("/signup", h.Auth.Signup)
				auth.Post("/login", h.Auth.Login)
				auth.With(authMiddleware.RequireAuth).Get("/me", h.Auth.Me)
			})

			jsonAPI.Route("/posts", func(posts chi.Router) {
				posts.Get("/public", h.Post.ListPublished)
				posts.Get("/public/{id}", h.Post.GetPublished)

				posts.Group(func(owned chi.Router) {
					owned.Use(authMiddleware.RequireAuth)

					owned.Post("/", h.Post.Create)
					owned.Get("/", h.Post.List)
					owned.Get("/{id}", h.Post.Get)
					owned.Patch("/{id}", h.Post.Update)
					owned.Post("/{id}/publish", h.Post.Publish)
					owned.Delete("/{id}", h.Post.Delete)
				})
			})
		})

		api.With(middleware.StreamingTimeout(cfg.AIStreamMaxDuration, cfg.AIStreamIdleTimeout)).
			Post("/ai/generate", h.AI.Generate)
	})

	return r
}
