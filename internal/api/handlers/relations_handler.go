package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/qmodel/backend/internal/evaluation"
	"github.com/qmodel/backend/internal/storage/models"
	"github.com/qmodel/backend/pkg/logger"
)

// RelationHandler exposes the influence graph: reading the deduplicated edge
// set and bulk-writing new edges.
type RelationHandler struct {
	engine *evaluation.Engine
}

func NewRelationHandler(engine *evaluation.Engine) *RelationHandler {
	return &RelationHandler{engine: engine}
}

// ListRelations returns the deduplicated graph as of the date query
// parameter, or of the most recent edge on record when absent.
func (h *RelationHandler) ListRelations(c *fiber.Ctx) error {
	project := c.Query("project")

	var (
		relations []models.Relation
		err       error
	)
	if raw := c.Query("date"); raw != "" {
		date, parseErr := time.Parse(models.DateFormat, raw)
		if parseErr != nil {
			return badRequest(c, "date must be a YYYY-MM-DD date")
		}
		relations, err = h.engine.RelationsForDate(c.Context(), project, date)
	} else {
		relations, err = h.engine.Relations(c.Context(), project)
	}
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(fiber.Map{"relations": toRelationsJSON(relations)})
}

type relationWriteRequest struct {
	Project          string    `json:"project"`
	SourceIDs        []string  `json:"source_ids"`
	Weights          []float64 `json:"weights"`
	SourceValues     []float64 `json:"source_values"`
	SourceCategories []string  `json:"source_categories"`
	TargetID         string    `json:"target_id"`
	TargetValue      string    `json:"target_value"`
	Date             string    `json:"date"`
}

// CreateMetricFactorRelations bulk-upserts metric -> factor edges.
func (h *RelationHandler) CreateMetricFactorRelations(c *fiber.Ctx) error {
	return h.createRelations(c, h.engine.WriteMetricFactorRelations)
}

// CreateFactorIndicatorRelations bulk-upserts factor -> strategic indicator
// edges.
func (h *RelationHandler) CreateFactorIndicatorRelations(c *fiber.Ctx) error {
	return h.createRelations(c, h.engine.WriteFactorIndicatorRelations)
}

type relationWriter func(ctx context.Context, projectID string, sourceIDs []string,
	weights, sourceValues []float64, sourceCategories []string,
	targetID string, date time.Time, targetValue string) (bool, error)

func (h *RelationHandler) createRelations(c *fiber.Ctx, write relationWriter) error {
	var req relationWriteRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return badRequest(c, "Invalid request body")
	}
	if len(req.SourceIDs) == 0 {
		return badRequest(c, "source_ids is required")
	}
	if req.TargetID == "" {
		return badRequest(c, "target_id is required")
	}

	date, err := time.Parse(models.DateFormat, req.Date)
	if err != nil {
		return badRequest(c, "date must be a YYYY-MM-DD date")
	}

	ok, err := write(c.Context(), req.Project, req.SourceIDs,
		req.Weights, req.SourceValues, req.SourceCategories,
		req.TargetID, date, req.TargetValue)
	if err != nil {
		return storeError(c, err)
	}
	if !ok {
		// Unordered bulk write: some edges may have landed, some not.
		return c.Status(fiber.StatusMultiStatus).JSON(fiber.Map{"ok": false})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ok": true})
}
