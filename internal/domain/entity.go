package domain

import (
	"encoding/json"
	"strconv"
)

// Entity types used on the tracking backend.
const (
	EntityTicket    = "Ticket"
	EntityReply     = "Reply"
	EntityRevision  = "Revision"
	EntityRelease   = "Release"
	EntityHumanUser = "HumanUser"
	EntityProject   = "Project"
)

// Fields is the payload of a create or update call.
type Fields map[string]any

// Entity is a record returned by the tracking backend. Besides its own
// attributes it always carries "type" and "id". Link fields hold either an
// EntityRef or the decoded JSON object of one.
type Entity map[string]any

// EntityRef points at another record. It is the value used for link fields
// in payloads and filters.
type EntityRef struct {
	Type string `json:"type"`
	ID   int    `json:"id"`
	Name string `json:"name,omitempty"`
}

func (e Entity) Type() string {
	return e.String("type")
}

func (e Entity) ID() int {
	id, _ := toInt(e["id"])
	return id
}

// String returns a string attribute, or "" if it is missing or not a string.
func (e Entity) String(field string) string {
	s, _ := e[field].(string)
	return s
}

// Ref returns a reference to the entity, named after its "name" or "code"
// attribute when present.
func (e Entity) Ref() EntityRef {
	name := e.String("name")
	if name == "" {
		name = e.String("code")
	}
	return EntityRef{Type: e.Type(), ID: e.ID(), Name: name}
}

// Link returns the single entity stored in a link field.
func (e Entity) Link(field string) (EntityRef, bool) {
	switch v := e[field].(type) {
	case EntityRef:
		return v, true
	case *EntityRef:
		if v == nil {
			return EntityRef{}, false
		}
		return *v, true
	case Entity:
		return v.Ref(), v.ID() != 0
	case map[string]any:
		return Entity(v).Ref(), Entity(v).ID() != 0
	default:
		return EntityRef{}, false
	}
}

// URLField is the value of a backend URL attribute.
type URLField struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

// URL returns the url stored in a URL attribute.
func (e Entity) URL(field string) string {
	switch v := e[field].(type) {
	case URLField:
		return v.URL
	case map[string]any:
		s, _ := v["url"].(string)
		return s
	default:
		return ""
	}
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case json.Number:
		i, err := strconv.Atoi(n.String())
		return i, err == nil
	default:
		return 0, false
	}
}

// Filter is a single backend search condition, e.g. ["code", "is", "v1.0"].
type Filter struct {
	Field    string
	Operator string
	Value    any
}

// Is builds an equality filter.
func Is(field string, value any) Filter {
	return Filter{Field: field, Operator: "is", Value: value}
}

// IsNot builds an inequality filter.
func IsNot(field string, value any) Filter {
	return Filter{Field: field, Operator: "is_not", Value: value}
}

// MarshalJSON encodes the filter in the backend's array form.
func (f Filter) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{f.Field, f.Operator, f.Value})
}

type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// Order sorts search results by one field.
type Order struct {
	Field     string
	Direction Direction
}

// Query describes a single-record search.
type Query struct {
	Filters []Filter
	Fields  []string
	Order   []Order
}
