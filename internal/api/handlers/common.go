package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/qmodel/backend/internal/storage/models"
	mongostore "github.com/qmodel/backend/internal/storage/mongo"
	"github.com/qmodel/backend/pkg/logger"
)

// dateRange reads optional from/to query parameters. Both must be present
// or both absent; ranged is false when they are absent.
func dateRange(c *fiber.Ctx) (from, to time.Time, ranged bool, err error) {
	fromRaw, toRaw := c.Query("from"), c.Query("to")
	if fromRaw == "" && toRaw == "" {
		return time.Time{}, time.Time{}, false, nil
	}
	if fromRaw == "" || toRaw == "" {
		return time.Time{}, time.Time{}, false, errors.New("from and to must be given together")
	}

	from, err = time.Parse(models.DateFormat, fromRaw)
	if err != nil {
		return time.Time{}, time.Time{}, false, errors.New("from must be a YYYY-MM-DD date")
	}
	to, err = time.Parse(models.DateFormat, toRaw)
	if err != nil {
		return time.Time{}, time.Time{}, false, errors.New("to must be a YYYY-MM-DD date")
	}
	return from, to, true, nil
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": msg,
	})
}

func notFound(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error": msg,
	})
}

// storeError maps engine failures to responses. A missing collection means
// the project or level was never provisioned, which is the caller's error.
func storeError(c *fiber.Ctx, err error) error {
	if errors.Is(err, mongostore.ErrCollectionNotFound) {
		return notFound(c, "Project or level is not provisioned")
	}
	logger.Error("Store operation failed", zap.Error(err), zap.String("path", c.Path()))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Internal server error",
	})
}
