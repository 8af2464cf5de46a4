package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// setupRoutes mounts the public site routes and the token-gated admin routes
func setupRoutes(r chi.Router, handlers *routeHandlers, admin adminMiddleware, formLimit func(http.Handler) http.Handler) {
	r.Get("/health", handlers.healthHandler.health())
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Public routes; an admin token here only unlocks draft previews
	r.Group(func(r chi.Router) {
		r.Use(admin.detectAdmin)

		r.Get("/projects", handlers.projectHandler.listPublished())
		r.Get("/projects/{slug}", handlers.projectHandler.getProject())

		r.Get("/insights", handlers.contentHandler.listArticles())
		r.Get("/insights/{slug}", handlers.contentHandler.getArticle())
		r.Get("/pages/{name}", handlers.contentHandler.getPage())

		r.With(formLimit).Post("/leads", handlers.leadHandler.submitLead())
		r.With(formLimit).Post("/waitlist", handlers.leadHandler.joinWaitlist())
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(admin.requireAdmin)

		r.Get("/projects", handlers.projectHandler.listAll())
		r.Post("/projects", handlers.projectHandler.upsertProject())
		r.Delete("/projects/{slug}", handlers.projectHandler.deleteProject())

		r.Get("/leads", handlers.leadHandler.listLeads())
		r.Patch("/leads", handlers.leadHandler.updateLeadStatus())

		r.Post("/media", handlers.mediaHandler.uploadMedia())
	})
}
