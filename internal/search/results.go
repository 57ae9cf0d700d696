package search

import (
	"fmt"
	"sort"

	"github.com/hyperjump/serupa/internal/models"
	"github.com/hyperjump/serupa/internal/storage"
	"github.com/hyperjump/serupa/internal/vector"
	"github.com/hyperjump/serupa/pkg/utils"
)

// candidateRows returns the labels of candidates, skipping the -1 padding FAISS uses when
// the index holds fewer than k vectors.
func candidateRows(candidates []*vector.Result) []int64 {
	rows := make([]int64, 0, len(candidates))
	for _, c := range candidates {
		if c.Label >= 0 {
			rows = append(rows, c.Label)
		}
	}
	return rows
}

// rankResults keeps candidates whose raw score is strictly above threshold, compared at
// the index's float32 precision so a score equal to the threshold is dropped. It scales the
// score to a percentage with two decimals, sorts by that score descending and keeps the
// first limit entries. Equal scores keep index order.
func rankResults(candidates []*vector.Result, records map[int64]*models.Record, threshold float64, limit int) ([]*models.SearchResult, error) {
	results := make([]*models.SearchResult, 0, limit)
	for _, c := range candidates {
		if c.Label < 0 || !(float32(c.Score) > float32(threshold)) {
			continue
		}
		rec, ok := records[c.Label]
		if !ok {
			return nil, fmt.Errorf("row %d: %w", c.Label, storage.ErrRecordNotFound)
		}
		results = append(results, models.NewSearchResult(rec, utils.Round(c.Score*100, 2)))
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].SimilarityScore > results[j].SimilarityScore
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}
