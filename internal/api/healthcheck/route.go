package healthcheck

import (
	"github.com/gofiber/fiber/v3"
)

func RegisterRoutes(r fiber.Router, h *Handler) {
	r.Get("/", h.Root)
	r.Get("/healthz", h.Ready)

	grp := r.Group("/health")
	grp.Get("/vector", h.VectorStore)
}
