package datasource

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/datadeck-io/datadeck/internal/dataset"
	"github.com/datadeck-io/datadeck/internal/logger"
)

// MySQLDataSource implements DataSource for MySQL.
type MySQLDataSource struct {
	db *sql.DB
}

func (m *MySQLDataSource) Connect(cfg Config) error {
	// parseTime makes DATE/DATETIME columns arrive as time.Time.
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return err
	}

	m.db = db
	logger.Info("connected to mysql database %q on %s:%d", cfg.DBName, cfg.Host, cfg.Port)
	return nil
}

func (m *MySQLDataSource) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

func (m *MySQLDataSource) ListTables() ([]string, error) {
	if m.db == nil {
		return nil, ErrNotConnected
	}
	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = DATABASE()
		ORDER BY table_name;
	`
	rows, err := m.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, err
		}
		tables = append(tables, tableName)
	}
	return tables, rows.Err()
}

func (m *MySQLDataSource) FetchTable(table string, limit int) (*dataset.Dataset, error) {
	if m.db == nil {
		return nil, ErrNotConnected
	}
	if err := validateTable(m, table); err != nil {
		return nil, err
	}

	columns, rows, err := fetchRows(m.db, table, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	logger.Debug("fetched %d rows from mysql table %q", len(rows), table)
	return datasetFromRows(columns, rows)
}
