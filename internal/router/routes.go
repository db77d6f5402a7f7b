package router

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts the interactions webhook endpoint on the given router.
func RegisterRoutes(r chi.Router, rt *Router) {
	r.Post("/api/interactions", rt.HandleInteraction)
}
