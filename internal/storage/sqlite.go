package storage

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/serupa/internal/models"
)

const recordColumns = `row_idx, data_pa_id, judul_pa, platform_aplikasi, kategori,
	teknologi_yg_digunakan, tahun_ajaran, dosen_pembimbing, mahasiswa`

// SQLiteStorage keeps records in a SQLite table keyed by row_idx.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a writable database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", sqliteDSN(dbPath, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// OpenSQLiteReadOnly opens an existing database for serving. It never creates the file.
func OpenSQLiteReadOnly(dbPath string) (*SQLiteStorage, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("record table: %w", err)
	}
	db, err := sql.Open("sqlite3", sqliteDSN(dbPath, "mode=ro"))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	var name string
	err = db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'records'`).Scan(&name)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("record table missing in %s: %w", dbPath, err)
	}
	return &SQLiteStorage{db: db}, nil
}

// sqliteDSN builds a file: URI for dbPath so that '?' and '#' in directory names are
// escaped instead of starting the query string. Relative paths are made absolute first;
// a relative URI path would be read as the authority.
func sqliteDSN(dbPath, query string) string {
	if abs, err := filepath.Abs(dbPath); err == nil {
		dbPath = abs
	}
	return (&url.URL{Scheme: "file", Path: dbPath, RawQuery: query}).String()
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS records (
		row_idx INTEGER PRIMARY KEY,
		data_pa_id INTEGER NOT NULL,
		judul_pa TEXT NOT NULL DEFAULT '',
		platform_aplikasi TEXT NOT NULL DEFAULT '',
		kategori TEXT NOT NULL DEFAULT '',
		teknologi_yg_digunakan TEXT NOT NULL DEFAULT '',
		tahun_ajaran TEXT NOT NULL DEFAULT '',
		dosen_pembimbing TEXT NOT NULL DEFAULT '',
		mahasiswa TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_records_data_pa_id ON records(data_pa_id);
	`
	_, err := db.Exec(schema)
	return err
}

// GetByRows returns the records at rows in a single query.
func (s *SQLiteStorage) GetByRows(ctx context.Context, rows []int64) (map[int64]*models.Record, error) {
	out := make(map[int64]*models.Record, len(rows))
	if len(rows) == 0 {
		return out, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(rows)), ",")
	args := make([]any, len(rows))
	for i, r := range rows {
		args[i] = r
	}

	result, err := s.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM records WHERE row_idx IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer result.Close()

	for result.Next() {
		var r models.Record
		if err := result.Scan(&r.RowIdx, &r.DataPAID, &r.Title, &r.Platform, &r.Category,
			&r.Techs, &r.AcademicYear, &r.Supervisor, &r.Student); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out[r.RowIdx] = &r
	}
	return out, result.Err()
}

// Get returns the record at row.
func (s *SQLiteStorage) Get(ctx context.Context, row int64) (*models.Record, error) {
	records, err := s.GetByRows(ctx, []int64{row})
	if err != nil {
		return nil, err
	}
	r, ok := records[row]
	if !ok {
		return nil, fmt.Errorf("%w: row %d", ErrRecordNotFound, row)
	}
	return r, nil
}

// ReplaceAll deletes every record and inserts records in one transaction, assigning
// row_idx by position so rows line up with the index built from the same ordering.
func (s *SQLiteStorage) ReplaceAll(ctx context.Context, records []*models.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM records`); err != nil {
		return fmt.Errorf("clear records: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO records (`+recordColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, r := range records {
		if _, err := stmt.ExecContext(ctx, i, r.DataPAID, r.Title, r.Platform, r.Category,
			r.Techs, r.AcademicYear, r.Supervisor, r.Student); err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// Count returns the total number of records.
func (s *SQLiteStorage) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
