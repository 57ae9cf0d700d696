// Package models defines the wire types for search queries, historical records and responses.
package models

import (
	"bytes"
	"encoding/json"
)

// DefaultThreshold is the minimum raw similarity applied when a query carries no threshold.
const DefaultThreshold = 0.1

// SearchQuery is the body of POST /api/search.
type SearchQuery struct {
	Title       string   `json:"judul_pa"`
	Description string   `json:"desc_pa"`
	Platform    string   `json:"platform_aplikasi"`
	Techs       TechList `json:"teknologi_yg_digunakan"`
	Threshold   *float64 `json:"threshold,omitempty"`
}

// ThresholdOrDefault returns the requested threshold, or DefaultThreshold when unset.
func (q *SearchQuery) ThresholdOrDefault() float64 {
	if q.Threshold == nil {
		return DefaultThreshold
	}
	return *q.Threshold
}

// Text returns title and description joined by a single space, even when one is empty.
func (q *SearchQuery) Text() string {
	return q.Title + " " + q.Description
}

// TechList holds teknologi_yg_digunakan as sent by the client: a JSON array with elements
// of any type, a string-encoded list literal, or any other JSON value. Interpretation is
// left to the technology list normalizer.
type TechList struct {
	raw any
}

// NewTechList wraps v, typically a []string or a literal string such as "['Kotlin']".
func NewTechList(v any) TechList {
	return TechList{raw: v}
}

// Value returns the decoded value: nil, string, []any, float64, bool or map[string]any.
func (t TechList) Value() any {
	return t.raw
}

// Empty reports whether the list is absent or a falsy JSON value: null, "", [], {}, false or 0.
func (t TechList) Empty() bool {
	switch v := t.raw.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []any:
		return len(v) == 0
	case []string:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	case bool:
		return !v
	case float64:
		return v == 0
	}
	return false
}

// UnmarshalJSON keeps the decoded JSON value as is.
func (t *TechList) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		t.raw = nil
		return nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	t.raw = v
	return nil
}

// MarshalJSON encodes the wrapped value.
func (t TechList) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.raw)
}
