package models

import "strings"

// Level is a tier of the quality model. Each level is stored in its own
// project-qualified collection.
type Level string

const (
	Metrics             Level = "metrics"
	Factors             Level = "factors"
	StrategicIndicators Level = "strategic_indicators"
	Relations           Level = "relations"
)

// Document field names shared by all levels.
const (
	FieldID             = "_id"
	FieldProject        = "project"
	FieldEvaluationDate = "evaluationDate"
	FieldDatasource     = "datasource"
	FieldName           = "name"
	FieldDescription    = "description"
	FieldValue          = "value"
	FieldRationale      = "info"
	FieldDatesMismatch  = "dates_mismatch_days"

	FieldMissingMetrics = "missing_metrics"
	FieldMissingFactors = "missing_factors"

	// Denormalized forward-link arrays.
	FieldFactorLinks    = "factors"
	FieldIndicatorLinks = "indicators"

	FieldEstimation = "estimation"
)

// Relation document field names.
const (
	FieldRelation    = "relation"
	FieldSourceID    = "sourceId"
	FieldSourceType  = "sourceType"
	FieldTargetID    = "targetId"
	FieldTargetType  = "targetType"
	FieldWeight      = "weight"
	FieldTargetValue = "targetValue"
	FieldSourceLabel = "sourceLabel"
)

// Estimation entry field names.
const (
	FieldEstimationID             = "id"
	FieldEstimationLabel          = "label"
	FieldEstimationValue          = "value"
	FieldEstimationUpperThreshold = "upperThreshold"
)

// DateFormat is the calendar-date layout used everywhere in the store.
// It is zero padded and fixed width, so string comparison orders by date.
const DateFormat = "2006-01-02"

// Collection returns the backing collection name for a project. An empty,
// "EMPTY" or literal `""` project id maps to the bare level collection.
func (l Level) Collection(projectID string) string {
	if projectID == "" || strings.EqualFold(projectID, "EMPTY") || projectID == `""` {
		return string(l)
	}
	return string(l) + "." + projectID
}

// EntityField returns the document field holding the entity identifier,
// which is also the field evaluations are grouped by.
func (l Level) EntityField() string {
	switch l {
	case Metrics:
		return "metric"
	case Factors:
		return "factor"
	case StrategicIndicators:
		return "strategic_indicator"
	}
	return ""
}

// ParentField returns the forward-link array field used when filtering a
// level's evaluations by a parent entity.
func (l Level) ParentField() string {
	if l == Metrics {
		return FieldFactorLinks
	}
	return FieldIndicatorLinks
}

// MissingField returns the missing-dependency array field for the level, or
// an empty string when the level has none.
func (l Level) MissingField() string {
	switch l {
	case Factors:
		return FieldMissingMetrics
	case StrategicIndicators:
		return FieldMissingFactors
	}
	return ""
}
