package scope_test

import (
	"encoding/json"
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/portfolio-hub/gateway/internal/scope"
	"github.com/portfolio-hub/gateway/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseQuery() squirrel.SelectBuilder {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Select("id").From("projects")
}

func TestIsAuthorizedForProject_Unrestricted(t *testing.T) {
	assert.True(t, scope.IsAuthorizedForProject(models.Scope{}, "any-project"))
}

func TestIsAuthorizedForProject_Allowlist(t *testing.T) {
	s := models.Scope{ProjectIDs: []string{"proj-42"}}

	assert.True(t, scope.IsAuthorizedForProject(s, "proj-42"))
	assert.False(t, scope.IsAuthorizedForProject(s, "proj-99"))
}

func TestIsAuthorizedForProject_CaseInsensitiveUUID(t *testing.T) {
	s := models.Scope{ProjectIDs: []string{"0b6f1c1e-8f3a-4d0e-9a57-6f5c2d9b1a10"}}

	assert.True(t, scope.IsAuthorizedForProject(s, "0B6F1C1E-8F3A-4D0E-9A57-6F5C2D9B1A10"))
}

func TestIsAuthorizedForProject_ProjectIDsOverrideOrgUnits(t *testing.T) {
	s := models.Scope{
		PoleIDs:    []string{"p1"},
		ProjectIDs: []string{"A"},
	}

	assert.False(t, scope.IsAuthorizedForProject(s, "B"))
}

// Organizational-unit sets never gate direct access; only project_ids does.
func TestIsAuthorizedForProject_IgnoresOrgUnits(t *testing.T) {
	s := models.Scope{
		PoleIDs:      []string{"p1"},
		DirectionIDs: []string{"d1"},
		ServiceIDs:   []string{"s1"},
	}

	assert.True(t, scope.IsAuthorizedForProject(s, "project-in-another-pole"))
}

func TestAllowsDataType(t *testing.T) {
	assert.True(t, scope.AllowsDataType(models.Scope{}, models.DataTypeRisks))

	s := models.Scope{DataTypes: []string{"projects", "Team"}}
	assert.True(t, scope.AllowsDataType(s, models.DataTypeProjects))
	assert.True(t, scope.AllowsDataType(s, models.DataTypeTeam))
	assert.False(t, scope.AllowsDataType(s, models.DataTypeTasks))
}

func TestNarrowListQuery_Unrestricted(t *testing.T) {
	sql, args, err := scope.NarrowListQuery(models.Scope{}, baseQuery()).ToSql()
	require.NoError(t, err)

	assert.Equal(t, "SELECT id FROM projects", sql)
	assert.Empty(t, args)
}

func TestNarrowListQuery_SingleDimension(t *testing.T) {
	s := models.Scope{PoleIDs: []string{"p1"}}

	sql, args, err := scope.NarrowListQuery(s, baseQuery()).ToSql()
	require.NoError(t, err)

	assert.Equal(t, "SELECT id FROM projects WHERE pole_id IN ($1)", sql)
	assert.Equal(t, []any{"p1"}, args)
}

func TestNarrowListQuery_DimensionsCombineWithAnd(t *testing.T) {
	s := models.Scope{
		PoleIDs:      []string{"p1", "p2"},
		DirectionIDs: []string{"d1"},
		ServiceIDs:   []string{"s1"},
		ProjectIDs:   []string{"x"},
	}

	sql, args, err := scope.NarrowListQuery(s, baseQuery()).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT id FROM projects WHERE pole_id IN ($1,$2) AND direction_id IN ($3) AND service_id IN ($4) AND id IN ($5)",
		sql)
	assert.Equal(t, []any{"p1", "p2", "d1", "s1", "x"}, args)
}

func TestScope_UnmarshalJSON_Lenient(t *testing.T) {
	var s models.Scope
	raw := `{"access_level":"read","pole_ids":"p1","direction_ids":null,"service_ids":[],` +
		`"project_ids":["0B6F1C1E-8F3A-4D0E-9A57-6F5C2D9B1A10",7,"","proj-42"],"data_types":["projects",""]}`
	require.NoError(t, json.Unmarshal([]byte(raw), &s))

	assert.Equal(t, "read", s.AccessLevel)
	assert.Nil(t, s.PoleIDs)
	assert.Nil(t, s.DirectionIDs)
	assert.Nil(t, s.ServiceIDs)
	assert.Equal(t, []string{"0b6f1c1e-8f3a-4d0e-9a57-6f5c2d9b1a10"}, s.ProjectIDs)
	assert.Equal(t, []string{"projects"}, s.DataTypes)
}

func TestScope_UnmarshalJSON_NoUsableEntriesDeniesAll(t *testing.T) {
	for _, raw := range []string{
		`{"project_ids":[""]}`,
		`{"project_ids":[123]}`,
		`{"project_ids":["proj-42"]}`,
	} {
		t.Run(raw, func(t *testing.T) {
			var s models.Scope
			require.NoError(t, json.Unmarshal([]byte(raw), &s))

			require.NotNil(t, s.ProjectIDs)
			assert.Empty(t, s.ProjectIDs)
			assert.False(t, scope.IsAuthorizedForProject(s, "0b6f1c1e-8f3a-4d0e-9a57-6f5c2d9b1a10"))

			sql, _, err := scope.NarrowListQuery(s, baseQuery()).ToSql()
			require.NoError(t, err)
			assert.Contains(t, sql, "(1=0)")
		})
	}
}

func TestScope_UnmarshalJSON_NonUUIDPoleDeniesList(t *testing.T) {
	var s models.Scope
	require.NoError(t, json.Unmarshal([]byte(`{"pole_ids":["p1"]}`), &s))

	sql, args, err := scope.NarrowListQuery(s, baseQuery()).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM projects WHERE (1=0)", sql)
	assert.Empty(t, args)
}

func TestAllowsDataType_EmptySetDeniesAll(t *testing.T) {
	var s models.Scope
	require.NoError(t, json.Unmarshal([]byte(`{"data_types":[""]}`), &s))

	assert.False(t, scope.AllowsDataType(s, models.DataTypeProjects))
}

func TestScope_UnmarshalJSON_NotAnObject(t *testing.T) {
	var s models.Scope
	require.NoError(t, json.Unmarshal([]byte(`["p1"]`), &s))

	assert.Equal(t, models.Scope{}, s)
	assert.True(t, scope.IsAuthorizedForProject(s, "anything"))
}
