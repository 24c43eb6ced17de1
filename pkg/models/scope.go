package models

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Data type categories a token may be restricted to.
const (
	DataTypeProjects = "projects"
	DataTypeTeam     = "team"
	DataTypeTasks    = "tasks"
	DataTypeRisks    = "risks"
)

// Scope restricts what an API token may read. A nil set leaves its dimension
// unrestricted; a non-nil set, even an empty one, restricts it to its members.
// Organizational-unit and project ids are UUIDs.
type Scope struct {
	AccessLevel  string   `json:"access_level,omitempty"`
	PoleIDs      []string `json:"pole_ids,omitempty"`
	DirectionIDs []string `json:"direction_ids,omitempty"`
	ServiceIDs   []string `json:"service_ids,omitempty"`
	ProjectIDs   []string `json:"project_ids,omitempty"`
	DataTypes    []string `json:"data_types,omitempty"`
}

// UnmarshalJSON decodes a scope leniently: a field that is missing, null or
// not an array is left unrestricted instead of failing the whole token, and
// unusable entries inside an array are dropped.
func (s *Scope) UnmarshalJSON(data []byte) error {
	*s = Scope{}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	if v, ok := raw["access_level"]; ok {
		_ = json.Unmarshal(v, &s.AccessLevel)
	}
	s.PoleIDs = idList(raw["pole_ids"])
	s.DirectionIDs = idList(raw["direction_ids"])
	s.ServiceIDs = idList(raw["service_ids"])
	s.ProjectIDs = idList(raw["project_ids"])
	s.DataTypes = stringList(raw["data_types"])
	return nil
}

// decodeList reads a JSON array, keeping the entries accept returns true for.
// A missing, null, non-array or empty value yields nil (unrestricted). An array
// whose entries are all rejected yields an empty non-nil set, which denies
// every value rather than opening the dimension.
func decodeList(raw json.RawMessage, accept func(any) (string, bool)) []string {
	if len(raw) == 0 {
		return nil
	}
	var items []any
	if err := json.Unmarshal(raw, &items); err != nil || len(items) == 0 {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if v, ok := accept(item); ok {
			out = append(out, v)
		}
	}
	return out
}

func stringList(raw json.RawMessage) []string {
	return decodeList(raw, func(item any) (string, bool) {
		s, ok := item.(string)
		return s, ok && s != ""
	})
}

// idList keeps entries that parse as UUIDs, in canonical form.
func idList(raw json.RawMessage) []string {
	return decodeList(raw, func(item any) (string, bool) {
		s, ok := item.(string)
		if !ok {
			return "", false
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return "", false
		}
		return id.String(), true
	})
}
