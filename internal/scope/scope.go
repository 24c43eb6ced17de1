// Package scope evaluates API token scopes: single-project access checks and
// narrowing of project list queries. Evaluation never fails; a nil
// dimension is unrestricted and an empty non-nil one matches nothing.
package scope

import (
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/portfolio-hub/gateway/pkg/models"
)

// Project columns the list narrowing filters on.
const (
	ColumnProjectID   = "id"
	ColumnPoleID      = "pole_id"
	ColumnDirectionID = "direction_id"
	ColumnServiceID   = "service_id"
)

// IsAuthorizedForProject reports whether s grants direct access to projectID.
// Only the project allowlist is consulted here: organizational-unit sets
// narrow list results but do not gate direct access.
func IsAuthorizedForProject(s models.Scope, projectID string) bool {
	if s.ProjectIDs == nil {
		return true
	}
	return containsFold(s.ProjectIDs, projectID)
}

// AllowsDataType reports whether s permits reading the given category.
func AllowsDataType(s models.Scope, dataType string) bool {
	if s.DataTypes == nil {
		return true
	}
	return containsFold(s.DataTypes, dataType)
}

// NarrowListQuery restricts a projects query to the rows s can see. Every
// restricted dimension adds its own condition, so they combine with AND. An
// empty set renders as a false condition.
func NarrowListQuery(s models.Scope, q squirrel.SelectBuilder) squirrel.SelectBuilder {
	if s.PoleIDs != nil {
		q = q.Where(squirrel.Eq{ColumnPoleID: s.PoleIDs})
	}
	if s.DirectionIDs != nil {
		q = q.Where(squirrel.Eq{ColumnDirectionID: s.DirectionIDs})
	}
	if s.ServiceIDs != nil {
		q = q.Where(squirrel.Eq{ColumnServiceID: s.ServiceIDs})
	}
	if s.ProjectIDs != nil {
		q = q.Where(squirrel.Eq{ColumnProjectID: s.ProjectIDs})
	}
	return q
}

func containsFold(set []string, v string) bool {
	for _, item := range set {
		if strings.EqualFold(item, v) {
			return true
		}
	}
	return false
}
