// Package database persists session datasets and ML split artifacts in
// per-session SQLite files under the data cache directory.
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"dida/dataset"
	"dida/mlprep"
)

// Reserved table names inside a session database.
const (
	TableCurrent = "dataset"
	TableXTrain  = "X_train"
	TableXTest   = "X_test"
	TableYTrain  = "y_train"
	TableYTest   = "y_test"
)

var columnNameRe = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// Store manages per-session SQLite files. Each session owns one database
// file at <dataCacheDir>/sessions/<id>/data.db.
type Store struct {
	dataCacheDir string
	logFunc      func(string)
}

// NewStore builds a store rooted at dataCacheDir.
func NewStore(dataCacheDir string, logFunc func(string)) *Store {
	return &Store{dataCacheDir: dataCacheDir, logFunc: logFunc}
}

func (s *Store) log(msg string) {
	if s.logFunc != nil {
		s.logFunc("[STORE] " + msg)
	}
}

func (s *Store) sessionDir(sessionID string) string {
	return filepath.Join(s.dataCacheDir, "sessions", sessionID)
}

// open opens (creating if needed) the session's database file.
func (s *Store) open(sessionID string) (*sql.DB, error) {
	dir := s.sessionDir(sessionID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %v", err)
	}
	db, err := sql.Open("sqlite", filepath.Join(dir, "data.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %v", err)
	}
	return db, nil
}

// HasSession reports whether a session database exists on disk.
func (s *Store) HasSession(sessionID string) bool {
	_, err := os.Stat(filepath.Join(s.sessionDir(sessionID), "data.db"))
	return err == nil
}

// ListSessions returns the IDs of all sessions with a database on disk.
func (s *Store) ListSessions() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.dataCacheDir, "sessions"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %v", err)
	}
	var ids []string
	for _, entry := range entries {
		if entry.IsDir() && s.HasSession(entry.Name()) {
			ids = append(ids, entry.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// DeleteSession removes a session's directory and everything in it.
func (s *Store) DeleteSession(sessionID string) error {
	s.log(fmt.Sprintf("Deleting session %s", sessionID))
	return os.RemoveAll(s.sessionDir(sessionID))
}

// SaveCurrent persists the session's working dataset.
func (s *Store) SaveCurrent(sessionID string, table *dataset.Table) error {
	return s.SaveTable(sessionID, TableCurrent, table)
}

// LoadCurrent loads the session's working dataset.
func (s *Store) LoadCurrent(sessionID string) (*dataset.Table, error) {
	return s.LoadTable(sessionID, TableCurrent)
}

// SaveSplit persists a preparation outcome as four artifact tables.
func (s *Store) SaveSplit(sessionID string, outcome *mlprep.Outcome) error {
	if err := s.SaveTable(sessionID, TableXTrain, outcome.XTrain); err != nil {
		return err
	}
	if err := s.SaveTable(sessionID, TableXTest, outcome.XTest); err != nil {
		return err
	}
	if err := s.SaveSeries(sessionID, TableYTrain, outcome.YTrain); err != nil {
		return err
	}
	return s.SaveSeries(sessionID, TableYTest, outcome.YTest)
}

// LoadSplit loads the four split artifacts saved by SaveSplit.
func (s *Store) LoadSplit(sessionID string) (xTrain, xTest *dataset.Table, yTrain, yTest *dataset.Series, err error) {
	if xTrain, err = s.LoadTable(sessionID, TableXTrain); err != nil {
		return
	}
	if xTest, err = s.LoadTable(sessionID, TableXTest); err != nil {
		return
	}
	if yTrain, err = s.LoadSeries(sessionID, TableYTrain); err != nil {
		return
	}
	yTest, err = s.LoadSeries(sessionID, TableYTest)
	return
}

// SaveTable writes a dataset table into the session database, replacing
// any previous table of the same name.
func (s *Store) SaveTable(sessionID, name string, table *dataset.Table) error {
	db, err := s.open(sessionID)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS `%s`", name)); err != nil {
		return fmt.Errorf("failed to drop old table: %v", err)
	}

	columnNames := table.ColumnNames()
	defs := make([]string, len(columnNames))
	for i, col := range columnNames {
		defs[i] = fmt.Sprintf("`%s` %s", sanitizeColumnName(col), sqliteType(table, col))
	}
	createSQL := fmt.Sprintf("CREATE TABLE `%s` (%s)", name, strings.Join(defs, ", "))
	if _, err := db.Exec(createSQL); err != nil {
		return fmt.Errorf("failed to create table: %v", err)
	}

	placeholders := make([]string, len(columnNames))
	quoted := make([]string, len(columnNames))
	for i, col := range columnNames {
		placeholders[i] = "?"
		quoted[i] = fmt.Sprintf("`%s`", sanitizeColumnName(col))
	}
	insertSQL := fmt.Sprintf("INSERT INTO `%s` (%s) VALUES (%s)",
		name, strings.Join(quoted, ", "), strings.Join(placeholders, ", "))

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	stmt, err := tx.Prepare(insertSQL)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare insert: %v", err)
	}
	defer stmt.Close()

	for i := 0; i < table.NumRows(); i++ {
		values := make([]interface{}, len(columnNames))
		for j, col := range columnNames {
			series, _ := table.Column(col)
			values[j] = storageValue(series.Value(i))
		}
		if _, err := stmt.Exec(values...); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert row %d: %v", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %v", err)
	}
	s.log(fmt.Sprintf("Saved table %s (%d rows) for session %s", name, table.NumRows(), sessionID))
	return nil
}

// LoadTable reads a table back out of the session database.
func (s *Store) LoadTable(sessionID, name string) (*dataset.Table, error) {
	db, err := s.open(sessionID)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.Query(fmt.Sprintf("SELECT * FROM `%s`", name))
	if err != nil {
		return nil, fmt.Errorf("failed to read table %s: %v", name, err)
	}
	defer rows.Close()
	return scanTable(rows)
}

// SaveSeries persists a series as a single-column table.
func (s *Store) SaveSeries(sessionID, name string, series *dataset.Series) error {
	table, err := dataset.FromColumns([]*dataset.Series{series})
	if err != nil {
		return err
	}
	return s.SaveTable(sessionID, name, table)
}

// LoadSeries reads back a series saved with SaveSeries.
func (s *Store) LoadSeries(sessionID, name string) (*dataset.Series, error) {
	table, err := s.LoadTable(sessionID, name)
	if err != nil {
		return nil, err
	}
	names := table.ColumnNames()
	if len(names) != 1 {
		return nil, fmt.Errorf("table %s holds %d columns, expected 1", name, len(names))
	}
	col, _ := table.Column(names[0])
	return col, nil
}

// sanitizeColumnName keeps SQLite identifiers to word characters.
func sanitizeColumnName(name string) string {
	clean := columnNameRe.ReplaceAllString(name, "_")
	if clean == "" {
		clean = "column"
	}
	return clean
}

// sqliteType picks the declared column type from the inferred dataset type.
func sqliteType(table *dataset.Table, name string) string {
	col, _ := table.Column(name)
	if col.InferType() == dataset.TypeNumeric {
		return "REAL"
	}
	return "TEXT"
}

// storageValue maps a dataset cell to its SQLite representation. Non-float
// cells round-trip through their canonical text form.
func storageValue(v interface{}) interface{} {
	switch cell := v.(type) {
	case nil:
		return nil
	case float64:
		return cell
	case time.Time:
		return cell.Format(time.RFC3339)
	default:
		return dataset.CellString(cell)
	}
}

// scanTable rebuilds a dataset table from a SQL result set, re-parsing
// text cells so booleans and timestamps recover their types.
func scanTable(rows *sql.Rows) (*dataset.Table, error) {
	columnNames, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %v", err)
	}

	columns := make([]*dataset.Series, len(columnNames))
	for i, name := range columnNames {
		columns[i] = dataset.NewSeries(name, nil)
	}

	for rows.Next() {
		values := make([]interface{}, len(columnNames))
		pointers := make([]interface{}, len(columnNames))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %v", err)
		}
		for i, v := range values {
			columns[i].Values = append(columns[i].Values, restoreValue(v))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %v", err)
	}
	return dataset.FromColumns(columns)
}

// restoreValue maps a scanned SQLite value back to a dataset cell.
func restoreValue(v interface{}) interface{} {
	switch cell := v.(type) {
	case nil:
		return nil
	case float64:
		return cell
	case int64:
		return float64(cell)
	case []byte:
		return dataset.ParseCell(string(cell))
	case string:
		return dataset.ParseCell(cell)
	default:
		return cell
	}
}
