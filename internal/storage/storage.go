// Package storage holds the historical project records that index labels resolve to.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/serupa/internal/models"
)

// ErrRecordNotFound is returned when an index label has no matching record.
var ErrRecordNotFound = errors.New("record not found")

// RecordStore resolves index labels (row positions) to records. It is read-only.
type RecordStore interface {
	// GetByRows returns the records at the given row positions, keyed by row. Rows
	// without a record are absent from the map.
	GetByRows(ctx context.Context, rows []int64) (map[int64]*models.Record, error)
	Count(ctx context.Context) (int, error)
	Close() error
}

// MemoryStore is a RecordStore over a slice; record i has row i.
type MemoryStore struct {
	records []*models.Record
}

// NewMemoryStore copies records and assigns each its position as RowIdx.
func NewMemoryStore(records []*models.Record) *MemoryStore {
	s := &MemoryStore{records: make([]*models.Record, len(records))}
	for i, r := range records {
		cp := *r
		cp.RowIdx = int64(i)
		s.records[i] = &cp
	}
	return s
}

// GetByRows returns the records at rows.
func (s *MemoryStore) GetByRows(ctx context.Context, rows []int64) (map[int64]*models.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make(map[int64]*models.Record, len(rows))
	for _, row := range rows {
		if row >= 0 && row < int64(len(s.records)) {
			out[row] = s.records[row]
		}
	}
	return out, nil
}

// Count returns the number of records.
func (s *MemoryStore) Count(context.Context) (int, error) {
	return len(s.records), nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}
