package integrity

import (
	"errors"

	"weread-sync/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for integrity checks.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the integrity routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/integrity")
	group.Get("/", h.HandleIntegrityCheck)
	group.Get("/covers", h.HandleCoverCheck)
	group.Get("/store", h.HandleStoreCheck)
}

func disabled(err error) bool {
	return errors.Is(err, ErrCoversDisabled) || errors.Is(err, ErrStoreDisabled)
}

// HandleIntegrityCheck runs every check and combines the reports.
func (h *Handler) HandleIntegrityCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Triggering all integrity checks")

	report := fiber.Map{}

	if res, err := h.service.CheckCovers(c.Context()); disabled(err) {
		report["covers"] = fiber.Map{"status": "disabled"}
	} else if err != nil {
		report["covers"] = fiber.Map{"status": "error", "error": err.Error()}
	} else {
		report["covers"] = res
	}

	if res, err := h.service.CheckStore(); disabled(err) {
		report["store"] = fiber.Map{"status": "disabled"}
	} else if err != nil {
		report["store"] = fiber.Map{"status": "error", "error": err.Error()}
	} else {
		report["store"] = res
	}

	return c.JSON(report)
}

// HandleCoverCheck checks and optionally removes orphaned covers.
func (h *Handler) HandleCoverCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	fix := c.Query("fix") == "true"

	report, err := h.service.CheckCovers(c.Context())
	if disabled(err) {
		return c.JSON(fiber.Map{"status": "disabled"})
	}
	if err != nil {
		l.Error("Cover check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if len(report.Missing) > 0 {
		l.Warn("Linked covers missing from bucket", zap.Strings("missing", report.Missing))
	}

	if len(report.Orphans) > 0 {
		l.Warn("Orphaned covers detected", zap.Int("count", len(report.Orphans)))

		if fix {
			l.Info("Attempting to remove orphaned covers")
			if err := h.service.FixCovers(c.Context(), report.Orphans); err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error":   "Failed to remove orphaned covers",
					"details": err.Error(),
					"orphans": report.Orphans,
				})
			}
			return c.JSON(fiber.Map{
				"status": "fixed",
				"fixed":  report.Orphans,
			})
		}
	}

	return c.JSON(fiber.Map{
		"status": "checked",
		"report": report,
	})
}

// HandleStoreCheck checks and optionally migrates the local store schema.
func (h *Handler) HandleStoreCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	fix := c.Query("fix") == "true"

	report, err := h.service.CheckStore()
	if disabled(err) {
		return c.JSON(fiber.Map{"status": "disabled"})
	}
	if err != nil {
		l.Error("Store schema check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if !report.Matched && fix {
		l.Info("Attempting to migrate store schema")
		if err := h.service.FixStore(); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":   "Failed to migrate store",
				"details": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"status": "fixed", "report": report})
	}

	return c.JSON(fiber.Map{
		"status": "checked",
		"report": report,
	})
}
