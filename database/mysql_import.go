package database

import (
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"

	"dida/dataset"
)

// MySQLConfig holds the connection parameters for a MySQL import.
type MySQLConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
}

// DSN renders the go-sql-driver connection string. Port defaults to 3306.
func (c MySQLConfig) DSN() string {
	port := c.Port
	if port == "" {
		port = "3306"
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true", c.User, c.Password, c.Host, port, c.Database)
}

// MySQLImporter pulls tables out of a MySQL server into dataset tables.
type MySQLImporter struct {
	logFunc func(string)
}

// NewMySQLImporter builds an importer.
func NewMySQLImporter(logFunc func(string)) *MySQLImporter {
	return &MySQLImporter{logFunc: logFunc}
}

func (m *MySQLImporter) log(msg string) {
	if m.logFunc != nil {
		m.logFunc("[MYSQL] " + msg)
	}
}

// connect opens and pings the server.
func (m *MySQLImporter) connect(cfg MySQLConfig) (*sql.DB, error) {
	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mysql: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping mysql: %v", err)
	}
	return db, nil
}

// ListTables returns the table names visible in the configured database.
func (m *MySQLImporter) ListTables(cfg MySQLConfig) ([]string, error) {
	db, err := m.connect(cfg)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.Query("SHOW TABLES")
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %v", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %v", err)
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// ImportTable reads one table into a dataset table.
func (m *MySQLImporter) ImportTable(cfg MySQLConfig, tableName string) (*dataset.Table, error) {
	db, err := m.connect(cfg)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.Query(fmt.Sprintf("SELECT * FROM `%s`", tableName))
	if err != nil {
		return nil, fmt.Errorf("failed to read table %s: %v", tableName, err)
	}
	defer rows.Close()

	table, err := scanTable(rows)
	if err != nil {
		return nil, err
	}
	m.log(fmt.Sprintf("Imported table %s: %d rows, %d columns", tableName, table.NumRows(), table.NumCols()))
	return table, nil
}
