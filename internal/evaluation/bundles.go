package evaluation

import (
	"github.com/qmodel/backend/internal/storage/models"
)

// Bucket-to-bundle transforms. Each bucket holds the already filtered and
// ordered records of one entity; identity fields are read from the records
// themselves (the last record wins, they are identical per entity).
//
// The three builders are near-duplicates on purpose: the levels carry
// different link arrays and are expected to diverge further.

func buildMetricBundles(buckets []bucket) []models.MetricBundle {
	ret := make([]models.MetricBundle, 0, len(buckets))
	for _, b := range buckets {
		var bundle models.MetricBundle
		evals := make([]models.Evaluation, 0, len(b.Documents))

		for _, doc := range b.Documents {
			evals = append(evals, models.DecodeEvaluation(doc, ""))
			bundle.ID = models.AsString(doc[models.Metrics.EntityField()])
			bundle.Name = models.AsStringOrDefault(doc[models.FieldName], bundle.ID)
			bundle.Description = models.AsStringOrDefault(doc[models.FieldDescription], "")
			bundle.Project = models.AsStringOrDefault(doc[models.FieldProject], "")
			bundle.Factors = models.AsStringSlice(doc[models.FieldFactorLinks])
		}

		bundle.Evaluations = evals
		ret = append(ret, bundle)
	}
	return ret
}

func buildFactorBundles(buckets []bucket) []models.FactorBundle {
	ret := make([]models.FactorBundle, 0, len(buckets))
	for _, b := range buckets {
		var bundle models.FactorBundle
		evals := make([]models.Evaluation, 0, len(b.Documents))

		for _, doc := range b.Documents {
			evals = append(evals, models.DecodeEvaluation(doc, models.FieldMissingMetrics))
			bundle.ID = models.AsString(doc[models.Factors.EntityField()])
			bundle.Name = models.AsStringOrDefault(doc[models.FieldName], bundle.ID)
			bundle.Description = models.AsStringOrDefault(doc[models.FieldDescription], "")
			bundle.Project = models.AsStringOrDefault(doc[models.FieldProject], "")
			bundle.Indicators = models.AsStringSlice(doc[models.FieldIndicatorLinks])
		}

		bundle.Evaluations = evals
		ret = append(ret, bundle)
	}
	return ret
}

func buildStrategicIndicatorBundles(buckets []bucket) []models.StrategicIndicatorBundle {
	ret := make([]models.StrategicIndicatorBundle, 0, len(buckets))
	for _, b := range buckets {
		var bundle models.StrategicIndicatorBundle
		evals := make([]models.Evaluation, 0, len(b.Documents))
		estimations := make([]models.Estimation, 0, len(b.Documents))

		for _, doc := range b.Documents {
			evals = append(evals, models.DecodeEvaluation(doc, models.FieldMissingFactors))
			estimations = append(estimations, models.DecodeEstimation(doc[models.FieldEstimation]))
			bundle.ID = models.AsString(doc[models.StrategicIndicators.EntityField()])
			bundle.Name = models.AsStringOrDefault(doc[models.FieldName], bundle.ID)
			bundle.Description = models.AsStringOrDefault(doc[models.FieldDescription], "")
			bundle.Project = models.AsStringOrDefault(doc[models.FieldProject], "")
		}

		bundle.Evaluations = evals
		bundle.Estimations = estimations
		ret = append(ret, bundle)
	}
	return ret
}

// idNames maps entity id -> display name for all entities of a level. The
// map is request scoped: callers build it, use it for one outer iteration
// and drop it. It must never be shared across requests.
func idNamesFromBuckets(buckets []bucket) map[string]string {
	names := make(map[string]string, len(buckets))
	for _, b := range buckets {
		for _, doc := range b.Documents {
			if _, seen := names[b.ID]; !seen {
				names[b.ID] = models.AsString(doc[models.FieldName])
			}
		}
	}
	return names
}
