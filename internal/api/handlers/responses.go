package handlers

import (
	"github.com/qmodel/backend/internal/storage/models"
)

// JSON views of the storage bundles. Field names follow the stored record
// shape so API consumers and raw store readers see the same vocabulary.

type evaluationJSON struct {
	ID              string   `json:"id"`
	Datasource      string   `json:"datasource"`
	EvaluationDate  string   `json:"evaluationDate"`
	Value           float64  `json:"value"`
	Rationale       string   `json:"info"`
	MismatchDays    int      `json:"dates_mismatch_days"`
	MissingElements []string `json:"missing_elements,omitempty"`
}

type estimationItemJSON struct {
	ID             int      `json:"id"`
	Label          string   `json:"label"`
	Value          float64  `json:"value"`
	UpperThreshold *float64 `json:"upperThreshold,omitempty"`
}

type metricJSON struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Project     string           `json:"project"`
	Factors     []string         `json:"factors"`
	Evaluations []evaluationJSON `json:"evaluations"`
}

type factorJSON struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Project     string           `json:"project"`
	Indicators  []string         `json:"indicators"`
	Evaluations []evaluationJSON `json:"evaluations"`
}

type indicatorJSON struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Project     string                 `json:"project"`
	Evaluations []evaluationJSON       `json:"evaluations"`
	Estimations [][]estimationItemJSON `json:"estimations"`
}

type factorMetricsJSON struct {
	Factor  factorJSON   `json:"factor"`
	Metrics []metricJSON `json:"metrics"`
}

type indicatorFactorsJSON struct {
	Indicator indicatorJSON `json:"strategic_indicator"`
	Factors   []factorJSON  `json:"factors"`
}

type relationEndpointJSON struct {
	ID       string `json:"id"`
	Value    string `json:"value"`
	Category string `json:"category,omitempty"`
	Type     string `json:"type"`
}

type relationJSON struct {
	Weight string               `json:"weight"`
	Source relationEndpointJSON `json:"source"`
	Target relationEndpointJSON `json:"target"`
}

func toEvaluationJSON(ev models.Evaluation) evaluationJSON {
	return evaluationJSON{
		ID:              ev.ID,
		Datasource:      ev.Datasource,
		EvaluationDate:  ev.Date,
		Value:           ev.Value,
		Rationale:       ev.Rationale,
		MismatchDays:    ev.MismatchDays,
		MissingElements: ev.MissingElements,
	}
}

func toEvaluationsJSON(evals []models.Evaluation) []evaluationJSON {
	ret := make([]evaluationJSON, 0, len(evals))
	for _, ev := range evals {
		ret = append(ret, toEvaluationJSON(ev))
	}
	return ret
}

func toEstimationJSON(est models.Estimation) []estimationItemJSON {
	if est == nil {
		return nil
	}
	ret := make([]estimationItemJSON, 0, len(est))
	for _, item := range est {
		ret = append(ret, estimationItemJSON{
			ID:             item.ID,
			Label:          item.Label,
			Value:          item.Value,
			UpperThreshold: item.UpperThreshold,
		})
	}
	return ret
}

func toMetricJSON(m models.MetricBundle) metricJSON {
	return metricJSON{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Project:     m.Project,
		Factors:     m.Factors,
		Evaluations: toEvaluationsJSON(m.Evaluations),
	}
}

func toMetricsJSON(bundles []models.MetricBundle) []metricJSON {
	ret := make([]metricJSON, 0, len(bundles))
	for _, b := range bundles {
		ret = append(ret, toMetricJSON(b))
	}
	return ret
}

func toFactorJSON(f models.FactorBundle) factorJSON {
	return factorJSON{
		ID:          f.ID,
		Name:        f.Name,
		Description: f.Description,
		Project:     f.Project,
		Indicators:  f.Indicators,
		Evaluations: toEvaluationsJSON(f.Evaluations),
	}
}

func toFactorsJSON(bundles []models.FactorBundle) []factorJSON {
	ret := make([]factorJSON, 0, len(bundles))
	for _, b := range bundles {
		ret = append(ret, toFactorJSON(b))
	}
	return ret
}

func toIndicatorJSON(si models.StrategicIndicatorBundle) indicatorJSON {
	estimations := make([][]estimationItemJSON, 0, len(si.Estimations))
	for _, est := range si.Estimations {
		estimations = append(estimations, toEstimationJSON(est))
	}
	return indicatorJSON{
		ID:          si.ID,
		Name:        si.Name,
		Description: si.Description,
		Project:     si.Project,
		Evaluations: toEvaluationsJSON(si.Evaluations),
		Estimations: estimations,
	}
}

func toIndicatorsJSON(bundles []models.StrategicIndicatorBundle) []indicatorJSON {
	ret := make([]indicatorJSON, 0, len(bundles))
	for _, b := range bundles {
		ret = append(ret, toIndicatorJSON(b))
	}
	return ret
}

func toFactorMetricsJSON(fm models.FactorMetrics) factorMetricsJSON {
	return factorMetricsJSON{
		Factor:  toFactorJSON(fm.Factor),
		Metrics: toMetricsJSON(fm.Metrics),
	}
}

func toFactorMetricsListJSON(items []models.FactorMetrics) []factorMetricsJSON {
	ret := make([]factorMetricsJSON, 0, len(items))
	for _, fm := range items {
		ret = append(ret, toFactorMetricsJSON(fm))
	}
	return ret
}

func toIndicatorFactorsJSON(sif models.StrategicIndicatorFactors) indicatorFactorsJSON {
	return indicatorFactorsJSON{
		Indicator: toIndicatorJSON(sif.Indicator),
		Factors:   toFactorsJSON(sif.Factors),
	}
}

func toIndicatorFactorsListJSON(items []models.StrategicIndicatorFactors) []indicatorFactorsJSON {
	ret := make([]indicatorFactorsJSON, 0, len(items))
	for _, sif := range items {
		ret = append(ret, toIndicatorFactorsJSON(sif))
	}
	return ret
}

func toRelationsJSON(relations []models.Relation) []relationJSON {
	ret := make([]relationJSON, 0, len(relations))
	for _, rel := range relations {
		ret = append(ret, relationJSON{
			Weight: rel.Weight,
			Source: relationEndpointJSON{
				ID:       rel.Source.ID,
				Value:    rel.Source.Value,
				Category: rel.Source.Category,
				Type:     rel.Source.Type,
			},
			Target: relationEndpointJSON{
				ID:    rel.Target.ID,
				Value: rel.Target.Value,
				Type:  rel.Target.Type,
			},
		})
	}
	return ret
}
