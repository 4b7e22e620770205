package handlers

import (
	"errors"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appmetrics "github.com/qmodel/backend/internal/metrics"
	"github.com/qmodel/backend/internal/simulation"
	"github.com/qmodel/backend/internal/storage/models"
	"github.com/qmodel/backend/pkg/logger"
)

// SimulationHandler manages what-if sessions. Each session owns one Model
// exclusively; the registry mutex only guards the session map, never the
// models themselves, so per-session serialization happens on the session
// mutex.
type SimulationHandler struct {
	simulator *simulation.Simulator

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	mu    sync.Mutex
	model *simulation.Model
}

func NewSimulationHandler(simulator *simulation.Simulator) *SimulationHandler {
	return &SimulationHandler{
		simulator: simulator,
		sessions:  make(map[string]*session),
	}
}

type createSessionRequest struct {
	Project string `json:"project"`
	Date    string `json:"date"`
}

// CreateSession snapshots one evaluation date into a new simulation session
// and returns its id together with the unmodified factor state.
func (h *SimulationHandler) CreateSession(c *fiber.Ctx) error {
	var req createSessionRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return badRequest(c, "Invalid request body")
	}

	date, err := time.Parse(models.DateFormat, req.Date)
	if err != nil {
		return badRequest(c, "date must be a YYYY-MM-DD date")
	}

	model, err := h.simulator.CreateModel(c.Context(), req.Project, date)
	if err != nil {
		if errors.Is(err, simulation.ErrNoModelData) {
			return badRequest(c, err.Error())
		}
		return storeError(c, err)
	}

	id := uuid.New().String()
	h.mu.Lock()
	h.sessions[id] = &session{model: model}
	h.mu.Unlock()
	appmetrics.ActiveSimulationSessions.Inc()

	logger.Info("Simulation session created",
		zap.String("session", id),
		zap.String("project", req.Project),
		zap.String("date", req.Date),
	)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"session_id": id,
		"factors":    toFactorsJSON(model.Factors()),
	})
}

type overridesRequest struct {
	Overrides map[string]float64 `json:"overrides"`
}

// ApplyOverrides applies hypothetical metric values to the session's model
// and returns the recomputed factor state. The store is never written.
func (h *SimulationHandler) ApplyOverrides(c *fiber.Ctx) error {
	sess, ok := h.session(c.Params("id"))
	if !ok {
		return notFound(c, "Unknown simulation session")
	}

	var req overridesRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if len(req.Overrides) == 0 {
		return badRequest(c, "overrides is required")
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := sess.model.SetMetrics(req.Overrides); err != nil {
		if errors.Is(err, simulation.ErrUnknownMetric) {
			return badRequest(c, err.Error())
		}
		return storeError(c, err)
	}
	return c.JSON(fiber.Map{"factors": toFactorsJSON(sess.model.Simulate())})
}

// GetFactors returns the session's current factor state without recomputing.
func (h *SimulationHandler) GetFactors(c *fiber.Ctx) error {
	sess, ok := h.session(c.Params("id"))
	if !ok {
		return notFound(c, "Unknown simulation session")
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return c.JSON(fiber.Map{"factors": toFactorsJSON(sess.model.Factors())})
}

// DeleteSession discards a session and its model.
func (h *SimulationHandler) DeleteSession(c *fiber.Ctx) error {
	id := c.Params("id")

	h.mu.Lock()
	_, ok := h.sessions[id]
	if ok {
		delete(h.sessions, id)
	}
	h.mu.Unlock()

	if !ok {
		return notFound(c, "Unknown simulation session")
	}
	appmetrics.ActiveSimulationSessions.Dec()
	logger.Info("Simulation session deleted", zap.String("session", id))
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *SimulationHandler) session(id string) (*session, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	sess, ok := h.sessions[id]
	return sess, ok
}
