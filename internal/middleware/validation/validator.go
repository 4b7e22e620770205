package validation

import (
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Project ids become collection-name suffixes, so they are restricted before
// reaching the store layer. Dates are validated here only for shape; range
// semantics stay with the handlers.
var (
	projectPattern = regexp.MustCompile(`^[A-Za-z0-9_-]*$`)
	datePattern    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

type Config struct {
	MaxProjectLength int
	Logger           *zap.Logger
}

func Middleware(cfg Config) fiber.Handler {
	if cfg.MaxProjectLength <= 0 {
		cfg.MaxProjectLength = 64
	}

	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodPost || c.Method() == fiber.MethodPut {
			contentType := c.Get("Content-Type")
			if contentType != "" && !strings.Contains(contentType, "application/json") {
				return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
					"error": "Unsupported content type",
				})
			}
		}

		project := c.Query("project")
		if len(project) > cfg.MaxProjectLength || !projectPattern.MatchString(project) {
			cfg.Logger.Warn("Rejected malformed project id",
				zap.String("ip", c.IP()),
				zap.String("path", c.Path()),
			)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid project id",
			})
		}

		for _, param := range []string{"date", "from", "to"} {
			if v := c.Query(param); v != "" && !datePattern.MatchString(v) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": param + " must be a YYYY-MM-DD date",
				})
			}
		}

		return c.Next()
	}
}
