package models

import (
	"fmt"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The store documents are loosely typed; everything read from an aggregation
// result goes through these coercions so that missing/null fields default in
// exactly one place.

// AsString renders a field value as a string, defaulting to "" for nil.
func AsString(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// AsStringOrDefault is AsString with a fallback for nil or empty values.
func AsStringOrDefault(v interface{}, def string) string {
	s := AsString(v)
	if s == "" {
		return def
	}
	return s
}

// AsFloat coerces numeric field values that may arrive as double, int32,
// int64 or a numeric string. Anything else defaults to 0.
func AsFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case int:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// AsFloatPtr is AsFloat distinguishing absent/null from zero.
func AsFloatPtr(v interface{}) *float64 {
	if v == nil {
		return nil
	}
	f := AsFloat(v)
	return &f
}

// AsInt coerces integer field values, defaulting to 0.
func AsInt(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

// AsStringSlice coerces an array field into a string slice, returning nil
// when the field is absent or not an array.
func AsStringSlice(v interface{}) []string {
	switch arr := v.(type) {
	case nil:
		return nil
	case []string:
		return arr
	case primitive.A:
		out := make([]string, 0, len(arr))
		for _, e := range arr {
			out = append(out, AsString(e))
		}
		return out
	case []interface{}:
		out := make([]string, 0, len(arr))
		for _, e := range arr {
			out = append(out, AsString(e))
		}
		return out
	default:
		return nil
	}
}

// DecodeEvaluation builds an Evaluation from a stored record. missingField
// names the level's missing-dependency array; pass "" for levels without one.
func DecodeEvaluation(doc bson.M, missingField string) Evaluation {
	ev := Evaluation{
		ID:           AsString(doc[FieldID]),
		Datasource:   AsString(doc[FieldDatasource]),
		Date:         AsString(doc[FieldEvaluationDate]),
		Value:        AsFloat(doc[FieldValue]),
		Rationale:    AsString(doc[FieldRationale]),
		MismatchDays: AsInt(doc[FieldDatesMismatch]),
	}
	if missingField != "" {
		ev.MissingElements = AsStringSlice(doc[missingField])
	}
	return ev
}

// DecodeEstimation parses the estimation array of a strategic indicator
// record. Returns nil when the record carries none.
func DecodeEstimation(v interface{}) Estimation {
	arr, ok := v.(primitive.A)
	if !ok {
		return nil
	}
	est := make(Estimation, 0, len(arr))
	for _, e := range arr {
		entry, ok := e.(bson.M)
		if !ok {
			continue
		}
		est = append(est, EstimationItem{
			ID:             AsInt(entry[FieldEstimationID]),
			Label:          AsString(entry[FieldEstimationLabel]),
			Value:          AsFloat(entry[FieldEstimationValue]),
			UpperThreshold: AsFloatPtr(entry[FieldEstimationUpperThreshold]),
		})
	}
	return est
}

// DecodeRelationEdge builds a RelationEdge from a stored relation record.
// The weight may arrive as an integer instead of a double; AsFloat absorbs
// that.
func DecodeRelationEdge(doc bson.M) RelationEdge {
	return RelationEdge{
		Project:     AsString(doc[FieldProject]),
		Date:        AsString(doc[FieldEvaluationDate]),
		Relation:    AsString(doc[FieldRelation]),
		SourceID:    AsString(doc[FieldSourceID]),
		SourceType:  AsString(doc[FieldSourceType]),
		TargetID:    AsString(doc[FieldTargetID]),
		TargetType:  AsString(doc[FieldTargetType]),
		Value:       AsFloat(doc[FieldValue]),
		Weight:      AsFloat(doc[FieldWeight]),
		TargetValue: AsString(doc[FieldTargetValue]),
		SourceLabel: AsString(doc[FieldSourceLabel]),
	}
}
