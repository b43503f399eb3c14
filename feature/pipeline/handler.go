package pipeline

import (
	"context"

	"weread-sync/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for sync runs.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the sync routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/sync")
	group.Get("/status", h.HandleStatus)
	group.Post("/:scope", h.HandleTrigger)
}

// HandleTrigger runs a sync scope.
func (h *Handler) HandleTrigger(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	scope, err := ParseScope(c.Params("scope"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if c.QueryBool("async") {
		l.Info("Triggering background sync", zap.String("scope", string(scope)))
		go func() {
			_, _, _ = h.service.Trigger(context.Background(), scope)
		}()
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "started", "scope": scope})
	}

	l.Info("Triggering sync", zap.String("scope", string(scope)))
	report, shared, err := h.service.Trigger(c.UserContext(), scope)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":  err.Error(),
			"report": report,
		})
	}
	return c.JSON(fiber.Map{
		"status": "finished",
		"shared": shared,
		"report": report,
	})
}

// HandleStatus returns the last finished run.
func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	last := h.service.Last()
	status := "idle"
	if h.service.Running() > 0 {
		status = "running"
	}
	if last == nil {
		return c.JSON(fiber.Map{"status": status})
	}
	return c.JSON(fiber.Map{"status": status, "last": last})
}
