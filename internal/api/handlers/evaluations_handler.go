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

// EvaluationHandler exposes the query and write operations of the quality
// model. Latest queries are the default; passing from/to switches every GET
// to its ranged variant.
type EvaluationHandler struct {
	engine *evaluation.Engine
}

func NewEvaluationHandler(engine *evaluation.Engine) *EvaluationHandler {
	return &EvaluationHandler{engine: engine}
}

func (h *EvaluationHandler) ListProjects(c *fiber.Ctx) error {
	projects, err := h.engine.Projects(c.Context())
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(fiber.Map{"projects": projects})
}

func (h *EvaluationHandler) ListMetrics(c *fiber.Ctx) error {
	project := c.Query("project")
	from, to, ranged, err := dateRange(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	var bundles []models.MetricBundle
	if ranged {
		bundles, err = h.engine.MetricEvaluationsRanged(c.Context(), project, from, to)
	} else {
		bundles, err = h.engine.MetricEvaluations(c.Context(), project)
	}
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(fiber.Map{"metrics": toMetricsJSON(bundles)})
}

func (h *EvaluationHandler) GetMetric(c *fiber.Ctx) error {
	project, metricID := c.Query("project"), c.Params("id")
	from, to, ranged, err := dateRange(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	var bundle *models.MetricBundle
	if ranged {
		bundle, err = h.engine.MetricEvaluationRanged(c.Context(), project, metricID, from, to)
	} else {
		bundle, err = h.engine.MetricEvaluation(c.Context(), project, metricID)
	}
	if err != nil {
		return storeError(c, err)
	}
	if bundle == nil {
		return notFound(c, "Metric has no evaluations")
	}
	return c.JSON(toMetricJSON(*bundle))
}

func (h *EvaluationHandler) ListFactors(c *fiber.Ctx) error {
	project := c.Query("project")
	from, to, ranged, err := dateRange(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	var bundles []models.FactorBundle
	if ranged {
		bundles, err = h.engine.FactorEvaluationsRanged(c.Context(), project, from, to)
	} else {
		bundles, err = h.engine.FactorEvaluations(c.Context(), project)
	}
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(fiber.Map{"factors": toFactorsJSON(bundles)})
}

func (h *EvaluationHandler) GetFactor(c *fiber.Ctx) error {
	project, factorID := c.Query("project"), c.Params("id")
	from, to, ranged, err := dateRange(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	var bundle *models.FactorBundle
	if ranged {
		bundle, err = h.engine.FactorEvaluationRanged(c.Context(), project, factorID, from, to)
	} else {
		bundle, err = h.engine.FactorEvaluation(c.Context(), project, factorID)
	}
	if err != nil {
		return storeError(c, err)
	}
	if bundle == nil {
		return notFound(c, "Factor has no evaluations")
	}
	return c.JSON(toFactorJSON(*bundle))
}

// GetFactorMetrics returns one factor together with the metrics feeding it.
func (h *EvaluationHandler) GetFactorMetrics(c *fiber.Ctx) error {
	project, factorID := c.Query("project"), c.Params("id")
	from, to, ranged, err := dateRange(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	var fm *models.FactorMetrics
	if ranged {
		fm, err = h.engine.FactorMetricsEvaluationRanged(c.Context(), project, factorID, from, to)
	} else {
		fm, err = h.engine.FactorMetricsEvaluation(c.Context(), project, factorID)
	}
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(toFactorMetricsJSON(*fm))
}

// ListFactorMetrics returns every factor of the project with the metrics
// feeding it.
func (h *EvaluationHandler) ListFactorMetrics(c *fiber.Ctx) error {
	project := c.Query("project")
	from, to, ranged, err := dateRange(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	var items []models.FactorMetrics
	if ranged {
		items, err = h.engine.FactorMetricsEvaluationsRanged(c.Context(), project, from, to)
	} else {
		items, err = h.engine.FactorMetricsEvaluations(c.Context(), project)
	}
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(fiber.Map{"factors": toFactorMetricsListJSON(items)})
}

func (h *EvaluationHandler) ListStrategicIndicators(c *fiber.Ctx) error {
	project := c.Query("project")
	from, to, ranged, err := dateRange(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	var bundles []models.StrategicIndicatorBundle
	if ranged {
		bundles, err = h.engine.StrategicIndicatorEvaluationsRanged(c.Context(), project, from, to)
	} else {
		bundles, err = h.engine.StrategicIndicatorEvaluations(c.Context(), project)
	}
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(fiber.Map{"strategic_indicators": toIndicatorsJSON(bundles)})
}

func (h *EvaluationHandler) GetStrategicIndicator(c *fiber.Ctx) error {
	project, indicatorID := c.Query("project"), c.Params("id")
	from, to, ranged, err := dateRange(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	var bundle *models.StrategicIndicatorBundle
	if ranged {
		bundle, err = h.engine.StrategicIndicatorEvaluationRanged(c.Context(), project, indicatorID, from, to)
	} else {
		bundle, err = h.engine.StrategicIndicatorEvaluation(c.Context(), project, indicatorID)
	}
	if err != nil {
		return storeError(c, err)
	}
	if bundle == nil {
		return notFound(c, "Strategic indicator has no evaluations")
	}
	return c.JSON(toIndicatorJSON(*bundle))
}

// GetStrategicIndicatorFactors returns one strategic indicator together with
// the factors feeding it.
func (h *EvaluationHandler) GetStrategicIndicatorFactors(c *fiber.Ctx) error {
	project, indicatorID := c.Query("project"), c.Params("id")
	from, to, ranged, err := dateRange(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	var sif *models.StrategicIndicatorFactors
	if ranged {
		sif, err = h.engine.StrategicIndicatorFactorsEvaluationRanged(c.Context(), project, indicatorID, from, to)
	} else {
		sif, err = h.engine.StrategicIndicatorFactorsEvaluation(c.Context(), project, indicatorID)
	}
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(toIndicatorFactorsJSON(*sif))
}

// ListStrategicIndicatorFactors returns every strategic indicator of the
// project with the factors feeding it.
func (h *EvaluationHandler) ListStrategicIndicatorFactors(c *fiber.Ctx) error {
	project := c.Query("project")
	from, to, ranged, err := dateRange(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	var items []models.StrategicIndicatorFactors
	if ranged {
		items, err = h.engine.StrategicIndicatorFactorsEvaluationsRanged(c.Context(), project, from, to)
	} else {
		items, err = h.engine.StrategicIndicatorFactorsEvaluations(c.Context(), project)
	}
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(fiber.Map{"strategic_indicators": toIndicatorFactorsListJSON(items)})
}

// GetStrategicIndicatorMetrics returns, per factor feeding the strategic
// indicator, the metrics feeding that factor.
func (h *EvaluationHandler) GetStrategicIndicatorMetrics(c *fiber.Ctx) error {
	project, indicatorID := c.Query("project"), c.Params("id")
	from, to, ranged, err := dateRange(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	var items []models.FactorMetrics
	if ranged {
		items, err = h.engine.StrategicIndicatorMetricsEvaluationsRanged(c.Context(), project, indicatorID, from, to)
	} else {
		items, err = h.engine.StrategicIndicatorMetricsEvaluations(c.Context(), project, indicatorID)
	}
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(fiber.Map{"factors": toFactorMetricsListJSON(items)})
}

type evaluationRequest struct {
	Project      string               `json:"project"`
	Name         string               `json:"name"`
	Description  string               `json:"description"`
	Date         string               `json:"date"`
	Value        float64              `json:"value"`
	Rationale    string               `json:"info"`
	Datasource   string               `json:"datasource"`
	MismatchDays int                  `json:"dates_mismatch_days"`
	Missing      []string             `json:"missing_elements"`
	Links        []string             `json:"links"`
	Estimation   []estimationItemJSON `json:"estimation"`
}

func (h *EvaluationHandler) CreateMetricEvaluation(c *fiber.Ctx) error {
	return h.createEvaluation(c, models.Metrics)
}

func (h *EvaluationHandler) CreateFactorEvaluation(c *fiber.Ctx) error {
	return h.createEvaluation(c, models.Factors)
}

func (h *EvaluationHandler) CreateStrategicIndicatorEvaluation(c *fiber.Ctx) error {
	return h.createEvaluation(c, models.StrategicIndicators)
}

func (h *EvaluationHandler) createEvaluation(c *fiber.Ctx, level models.Level) error {
	var req evaluationRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return badRequest(c, "Invalid request body")
	}

	date, err := time.Parse(models.DateFormat, req.Date)
	if err != nil {
		return badRequest(c, "date must be a YYYY-MM-DD date")
	}

	var estimation models.Estimation
	if req.Estimation != nil {
		estimation = make(models.Estimation, 0, len(req.Estimation))
		for _, item := range req.Estimation {
			estimation = append(estimation, models.EstimationItem{
				ID:             item.ID,
				Label:          item.Label,
				Value:          item.Value,
				UpperThreshold: item.UpperThreshold,
			})
		}
	}

	err = h.engine.SetEvaluation(c.Context(), level, evaluation.EvaluationWrite{
		Project:      req.Project,
		EntityID:     c.Params("id"),
		Name:         req.Name,
		Description:  req.Description,
		Date:         date,
		Value:        req.Value,
		Rationale:    req.Rationale,
		Datasource:   req.Datasource,
		Estimation:   estimation,
		Missing:      req.Missing,
		MismatchDays: req.MismatchDays,
		ForwardLinks: req.Links,
	})
	if err != nil {
		return storeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id": evaluation.HardID(req.Project, c.Params("id"), date),
	})
}

type linksRequest struct {
	Project string   `json:"project"`
	Links   []string `json:"links"`
}

// UpdateMetricLinks rewrites the denormalized factor-link array on every
// stored evaluation of the metric, within the optional from/to interval or
// on the latest evaluation otherwise.
func (h *EvaluationHandler) UpdateMetricLinks(c *fiber.Ctx) error {
	var req linksRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	from, to, ranged, err := dateRange(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	var bundle *models.MetricBundle
	if ranged {
		bundle, err = h.engine.MetricEvaluationRanged(c.Context(), req.Project, c.Params("id"), from, to)
	} else {
		bundle, err = h.engine.MetricEvaluation(c.Context(), req.Project, c.Params("id"))
	}
	if err != nil {
		return storeError(c, err)
	}
	if bundle == nil {
		return notFound(c, "Metric has no evaluations")
	}

	bundle.Factors = req.Links
	if err := h.engine.RewriteMetricFactorLinks(c.Context(), *bundle); err != nil {
		return storeError(c, err)
	}
	return c.JSON(fiber.Map{"updated": len(bundle.Evaluations)})
}

// UpdateFactorLinks rewrites the denormalized indicator-link array on every
// stored evaluation of the factor, with the same interval semantics as
// UpdateMetricLinks.
func (h *EvaluationHandler) UpdateFactorLinks(c *fiber.Ctx) error {
	var req linksRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	from, to, ranged, err := dateRange(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	var bundle *models.FactorBundle
	if ranged {
		bundle, err = h.engine.FactorEvaluationRanged(c.Context(), req.Project, c.Params("id"), from, to)
	} else {
		bundle, err = h.engine.FactorEvaluation(c.Context(), req.Project, c.Params("id"))
	}
	if err != nil {
		return storeError(c, err)
	}
	if bundle == nil {
		return notFound(c, "Factor has no evaluations")
	}

	bundle.Indicators = req.Links
	if err := h.engine.RewriteFactorIndicatorLinks(c.Context(), *bundle); err != nil {
		return storeError(c, err)
	}
	return c.JSON(fiber.Map{"updated": len(bundle.Evaluations)})
}

type provisionRequest struct {
	Project string `json:"project"`
}

func (h *EvaluationHandler) ProvisionFactors(c *fiber.Ctx) error {
	return h.provision(c, h.engine.ProvisionFactors)
}

func (h *EvaluationHandler) ProvisionStrategicIndicators(c *fiber.Ctx) error {
	return h.provision(c, h.engine.ProvisionStrategicIndicators)
}

func (h *EvaluationHandler) provision(c *fiber.Ctx, create func(ctx context.Context, projectID string) (bool, error)) error {
	var req provisionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	created, err := create(c.Context(), req.Project)
	if err != nil {
		return storeError(c, err)
	}
	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(fiber.Map{"created": created})
}
