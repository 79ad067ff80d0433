package datasource

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/datadeck-io/datadeck/internal/dataset"
	"github.com/datadeck-io/datadeck/internal/logger"
)

// PostgresDataSource implements DataSource for PostgreSQL.
type PostgresDataSource struct {
	db *sql.DB
}

func (p *PostgresDataSource) Connect(cfg Config) error {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, sslMode)

	db, err := sql.Open("postgres", connStr)
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

	p.db = db
	logger.Info("connected to postgres database %q on %s:%d", cfg.DBName, cfg.Host, cfg.Port)
	return nil
}

func (p *PostgresDataSource) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

func (p *PostgresDataSource) ListTables() ([]string, error) {
	if p.db == nil {
		return nil, ErrNotConnected
	}
	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public'
		ORDER BY table_name;
	`
	rows, err := p.db.Query(query)
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

func (p *PostgresDataSource) FetchTable(table string, limit int) (*dataset.Dataset, error) {
	if p.db == nil {
		return nil, ErrNotConnected
	}
	if err := validateTable(p, table); err != nil {
		return nil, err
	}

	columns, rows, err := fetchRows(p.db, table, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	logger.Debug("fetched %d rows from postgres table %q", len(rows), table)
	return datasetFromRows(columns, rows)
}
