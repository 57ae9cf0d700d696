package models

import (
	"encoding/json"
	"testing"
)

func TestSearchQuery_Unmarshal(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantTechs any
		wantEmpty bool
		threshold float64
	}{
		{"array", `{"judul_pa":"a","teknologi_yg_digunakan":["Kotlin","Firebase"],"threshold":0.3}`,
			[]any{"Kotlin", "Firebase"}, false, 0.3},
		{"string literal", `{"judul_pa":"a","teknologi_yg_digunakan":"['Kotlin']"}`,
			"['Kotlin']", false, DefaultThreshold},
		{"absent", `{"judul_pa":"a"}`, nil, true, DefaultThreshold},
		{"null", `{"teknologi_yg_digunakan":null}`, nil, true, DefaultThreshold},
		{"empty array", `{"teknologi_yg_digunakan":[]}`, []any{}, true, DefaultThreshold},
		{"empty string", `{"teknologi_yg_digunakan":""}`, "", true, DefaultThreshold},
		{"zero threshold", `{"teknologi_yg_digunakan":["x"],"threshold":0}`, []any{"x"}, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var q SearchQuery
			if err := json.Unmarshal([]byte(tt.body), &q); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if got := q.Techs.Empty(); got != tt.wantEmpty {
				t.Errorf("Empty() = %v, want %v", got, tt.wantEmpty)
			}
			if got := q.ThresholdOrDefault(); got != tt.threshold {
				t.Errorf("ThresholdOrDefault() = %v, want %v", got, tt.threshold)
			}
			gotJSON, _ := json.Marshal(q.Techs.Value())
			wantJSON, _ := json.Marshal(tt.wantTechs)
			if string(gotJSON) != string(wantJSON) {
				t.Errorf("Techs = %s, want %s", gotJSON, wantJSON)
			}
		})
	}
}

func TestSearchQuery_Text(t *testing.T) {
	q := &SearchQuery{Title: "Aplikasi Mobile", Description: ""}
	if got := q.Text(); got != "Aplikasi Mobile " {
		t.Errorf("Text() = %q", got)
	}
}

func TestTechList_Empty(t *testing.T) {
	tests := []struct {
		v    any
		want bool
	}{
		{nil, true},
		{false, true},
		{0.0, true},
		{map[string]any{}, true},
		{[]string{}, true},
		{[]string{"go"}, false},
		{"[]", false},
		{true, false},
		{3.0, false},
	}
	for _, tt := range tests {
		if got := NewTechList(tt.v).Empty(); got != tt.want {
			t.Errorf("NewTechList(%#v).Empty() = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestSearchResponse_JSONFieldNames(t *testing.T) {
	rec := &Record{DataPAID: 7, Title: "t", Platform: "mobile", Techs: "kotlin"}
	resp := SearchResponse{
		Results:           []*SearchResult{NewSearchResult(rec, 87.5)},
		DetectedPlatforms: []string{"mobile"},
		DetectedTechs:     []string{"kotlin"},
	}
	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"results", "detected_platforms", "detected_techs"} {
		if _, ok := m[k]; !ok {
			t.Errorf("missing key %q in %s", k, data)
		}
	}
	first := m["results"].([]any)[0].(map[string]any)
	for _, k := range []string{"data_pa_id", "judul_pa", "similarity_score", "platform", "kategori",
		"teknologi", "tahun_ajaran", "dosen_pembimbing", "mahasiswa"} {
		if _, ok := first[k]; !ok {
			t.Errorf("missing result key %q", k)
		}
	}
	if first["platform"] != "mobile" || first["similarity_score"] != 87.5 {
		t.Errorf("unexpected result %v", first)
	}
}
