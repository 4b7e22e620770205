package evaluation

import (
	"strings"
	"time"

	"github.com/qmodel/backend/internal/storage/models"
)

// HardID derives the durable storage key of an entity evaluation. The same
// (project, entity, date) triple always maps to the same key, which is what
// makes evaluation writes idempotent.
func HardID(projectID, entityID string, date time.Time) string {
	if projectID == "" {
		return entityID + "-" + date.Format(models.DateFormat)
	}
	return projectID + "-" + entityID + "-" + date.Format(models.DateFormat)
}

// RelationKey derives the storage key of a relation edge:
// project-sourceID->targetID-date.
func RelationKey(projectID, sourceID, targetID string, date time.Time) string {
	return strings.Join([]string{projectID, sourceID}, "-") + "->" +
		strings.Join([]string{targetID, date.Format(models.DateFormat)}, "-")
}

// RelationLabel extracts the bare entity identifier from a composite
// project-entityID-date string. ok is false when the input does not have at
// least two hyphen-delimited segments; callers must skip such edges.
func RelationLabel(compositeID string) (string, bool) {
	parts := strings.Split(compositeID, "-")
	if len(parts) < 2 {
		return "", false
	}
	return parts[1], true
}
