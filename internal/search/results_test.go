package search

import (
	"testing"

	"github.com/hyperjump/serupa/internal/models"
	"github.com/hyperjump/serupa/internal/vector"
)

func TestRankResults(t *testing.T) {
	records := map[int64]*models.Record{
		0: {DataPAID: 10},
		1: {DataPAID: 11},
		2: {DataPAID: 12},
	}
	candidates := []*vector.Result{
		{Label: 0, Score: 0.876543},
		{Label: 1, Score: 0.876549},
		{Label: -1, Score: 0.99},
		{Label: 2, Score: 0.2},
	}
	got, err := rankResults(candidates, records, 0.2, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	// Both round to 87.65; the index order is kept.
	if got[0].DataPAID != 10 || got[1].DataPAID != 11 {
		t.Errorf("order = %d, %d", got[0].DataPAID, got[1].DataPAID)
	}
	if got[0].SimilarityScore != 87.65 {
		t.Errorf("score = %v, want 87.65", got[0].SimilarityScore)
	}
}

func TestRankResults_ThresholdAtIndexPrecision(t *testing.T) {
	records := map[int64]*models.Record{0: {DataPAID: 10}, 1: {DataPAID: 11}}
	candidates := []*vector.Result{
		{Label: 0, Score: float64(float32(0.1))},
		{Label: 1, Score: float64(float32(0.7))},
	}
	got, err := rankResults(candidates, records, 0.1, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].DataPAID != 11 {
		t.Fatalf("got %d results, want only data_pa_id 11", len(got))
	}
}

func TestCandidateRows(t *testing.T) {
	rows := candidateRows([]*vector.Result{{Label: 4}, {Label: -1}, {Label: 0}})
	if len(rows) != 2 || rows[0] != 4 || rows[1] != 0 {
		t.Errorf("rows = %v", rows)
	}
}
