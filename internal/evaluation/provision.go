package evaluation

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/qmodel/backend/internal/storage/models"
)

// Collection provisioning. Factor and strategic indicator collections are
// created with a JSON-schema validator so malformed writes are rejected by
// the store itself. Metric collections are populated by external assessment
// tooling and are not provisioned here.

func stringOrNull() bson.M {
	return bson.M{"bsonType": bson.A{"string", "null"}}
}

func stringArray() bson.M {
	return bson.M{"bsonType": "array", "items": bson.M{"bsonType": "string"}}
}

func factorsSchema() bson.M {
	return bson.M{
		"bsonType": "object",
		"required": bson.A{
			models.FieldID, models.FieldProject, models.Factors.EntityField(),
			models.FieldEvaluationDate, models.FieldIndicatorLinks,
			models.FieldName, models.FieldDescription, models.FieldDatasource,
			models.FieldValue, models.FieldRationale,
			models.FieldMissingMetrics, models.FieldDatesMismatch,
		},
		"properties": bson.M{
			models.FieldID:                bson.M{"bsonType": bson.A{"objectId", "string"}},
			models.FieldProject:           stringOrNull(),
			models.Factors.EntityField():  stringOrNull(),
			models.FieldEvaluationDate:    stringOrNull(),
			models.FieldDatasource:        stringOrNull(),
			models.FieldName:              stringOrNull(),
			models.FieldDescription:       stringOrNull(),
			models.FieldValue:             bson.M{"bsonType": bson.A{"double", "int", "null"}},
			models.FieldRationale:         stringOrNull(),
			models.FieldMissingMetrics:    stringArray(),
			models.FieldDatesMismatch:     bson.M{"bsonType": bson.A{"int", "null"}},
			models.FieldIndicatorLinks:    stringArray(),
		},
	}
}

func strategicIndicatorsSchema() bson.M {
	return bson.M{
		"bsonType": "object",
		"required": bson.A{
			models.FieldID, models.FieldDatasource, models.FieldDescription,
			models.FieldEvaluationDate, models.StrategicIndicators.EntityField(),
			models.FieldName, models.FieldProject, models.FieldValue,
			models.FieldRationale, models.FieldMissingFactors, models.FieldDatesMismatch,
		},
		"properties": bson.M{
			models.FieldID:                           bson.M{"bsonType": bson.A{"objectId", "string"}},
			models.FieldProject:                      stringOrNull(),
			models.StrategicIndicators.EntityField(): stringOrNull(),
			models.FieldEvaluationDate:               stringOrNull(),
			models.FieldDatasource:                   stringOrNull(),
			models.FieldName:                         stringOrNull(),
			models.FieldDescription:                  stringOrNull(),
			models.FieldValue:                        bson.M{"bsonType": bson.A{"double", "int", "null"}},
			models.FieldRationale:                    stringOrNull(),
			models.FieldMissingFactors:               stringArray(),
			models.FieldDatesMismatch:                bson.M{"bsonType": bson.A{"int", "null"}},
		},
	}
}

// ProvisionFactors creates the project's factor collection with its schema
// validator. Returns false without error when it already exists.
func (e *Engine) ProvisionFactors(ctx context.Context, projectID string) (bool, error) {
	return e.store.CreateCollectionWithValidator(ctx, models.Factors.Collection(projectID), factorsSchema())
}

// ProvisionStrategicIndicators creates the project's strategic indicator
// collection with its schema validator. Returns false without error when it
// already exists.
func (e *Engine) ProvisionStrategicIndicators(ctx context.Context, projectID string) (bool, error) {
	return e.store.CreateCollectionWithValidator(ctx, models.StrategicIndicators.Collection(projectID), strategicIndicatorsSchema())
}
