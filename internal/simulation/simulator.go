package simulation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/qmodel/backend/internal/evaluation"
	appmetrics "github.com/qmodel/backend/internal/metrics"
	"github.com/qmodel/backend/internal/storage/models"
)

// ErrNoModelData reports that a project has no metrics, factors or edges for
// the requested date, so no simulation model can be built.
var ErrNoModelData = errors.New("no model data for project and date")

// Simulator builds simulation models from stored evaluations. The resulting
// models are self-contained; the Simulator itself is stateless and safe for
// concurrent use.
type Simulator struct {
	engine *evaluation.Engine
}

func NewSimulator(engine *evaluation.Engine) *Simulator {
	return &Simulator{engine: engine}
}

// CreateModel snapshots the project's metrics, factors and metric -> factor
// edges of one evaluation date into a fresh Model. Each of the three inputs
// must be non-empty; missing collections read as empty here and surface as
// ErrNoModelData rather than a configuration error.
func (s *Simulator) CreateModel(ctx context.Context, projectID string, date time.Time) (*Model, error) {
	metrics, err := s.engine.MetricSnapshot(ctx, projectID, date)
	if err != nil {
		appmetrics.SimulationsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	factors, err := s.engine.FactorSnapshot(ctx, projectID, date)
	if err != nil {
		appmetrics.SimulationsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	edges, err := s.engine.MetricFactorEdgesAt(ctx, projectID, date)
	if err != nil {
		appmetrics.SimulationsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	day := date.Format(models.DateFormat)
	switch {
	case len(metrics) == 0:
		appmetrics.SimulationsTotal.WithLabelValues("empty").Inc()
		return nil, fmt.Errorf("no metrics for project %q on %s: %w", projectID, day, ErrNoModelData)
	case len(factors) == 0:
		appmetrics.SimulationsTotal.WithLabelValues("empty").Inc()
		return nil, fmt.Errorf("no factors for project %q on %s: %w", projectID, day, ErrNoModelData)
	case len(edges) == 0:
		appmetrics.SimulationsTotal.WithLabelValues("empty").Inc()
		return nil, fmt.Errorf("no relations for project %q on %s: %w", projectID, day, ErrNoModelData)
	}

	appmetrics.SimulationsTotal.WithLabelValues("ok").Inc()
	return NewModel(metrics, factors, edges), nil
}
