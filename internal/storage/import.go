package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/serupa/internal/models"
)

// ErrMissingColumn is returned when a spreadsheet lacks a required header.
var ErrMissingColumn = errors.New("missing required column")

var requiredColumns = []string{"data_pa_id", "judul_pa"}

// ReadRecordsFile reads records from a .xlsx or .csv export. The first row is a header
// naming the record columns; unknown columns are ignored. For spreadsheets, sheet selects
// the sheet (the first one when empty).
func ReadRecordsFile(path, sheet string) ([]*models.Record, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return readXLSX(path, sheet)
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open CSV: %w", err)
		}
		defer f.Close()
		return ReadCSV(f)
	default:
		return nil, fmt.Errorf("unsupported records file: %s (supported: .xlsx, .csv)", path)
	}
}

func readXLSX(path, sheet string) ([]*models.Record, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open Excel: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", path)
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("get rows for sheet %q: %w", sheet, err)
	}
	return recordsFromRows(rows)
}

// ReadCSV reads records from CSV with a header row.
func ReadCSV(r io.Reader) ([]*models.Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read CSV: %w", err)
	}
	return recordsFromRows(rows)
}

// recordsFromRows maps a header row plus data rows to records. Blank rows are skipped.
func recordsFromRows(rows [][]string) ([]*models.Record, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty sheet", ErrMissingColumn)
	}
	cols := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, c)
		}
	}

	cell := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	records := make([]*models.Record, 0, len(rows)-1)
	for n, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		id, err := parseID(cell(row, "data_pa_id"))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid data_pa_id: %w", n+2, err)
		}
		records = append(records, &models.Record{
			RowIdx:       int64(len(records)),
			DataPAID:     id,
			Title:        cell(row, "judul_pa"),
			Platform:     cell(row, "platform_aplikasi"),
			Category:     cell(row, "kategori"),
			Techs:        cell(row, "teknologi_yg_digunakan"),
			AcademicYear: cell(row, "tahun_ajaran"),
			Supervisor:   cell(row, "dosen_pembimbing"),
			Student:      cell(row, "mahasiswa"),
		})
	}
	return records, nil
}

// parseID accepts integers and integral floats such as "12.0", which spreadsheet exports produce.
func parseID(s string) (int64, error) {
	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		return id, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != float64(int64(f)) {
		return 0, fmt.Errorf("%q is not an integer", s)
	}
	return int64(f), nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
