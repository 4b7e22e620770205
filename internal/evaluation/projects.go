package evaluation

import (
	"context"
	"sort"
	"strings"

	"github.com/qmodel/backend/internal/storage/models"
)

// Projects lists the project ids known to the store, derived from the
// project-qualified metric collections.
func (e *Engine) Projects(ctx context.Context) ([]string, error) {
	names, err := e.store.ListCollectionNames(ctx)
	if err != nil {
		return nil, err
	}

	prefix := string(models.Metrics) + "."
	projects := make([]string, 0, len(names))
	for _, name := range names {
		if strings.HasPrefix(name, prefix) {
			projects = append(projects, strings.TrimPrefix(name, prefix))
		}
	}
	sort.Strings(projects)
	return projects, nil
}
