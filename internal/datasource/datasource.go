// Package datasource pulls tables out of external SQL databases and
// turns them into datasets. The HTTP layer only sees the DataSource
// interface; concrete drivers exist for PostgreSQL and MySQL.
package datasource

import (
	"errors"
	"fmt"

	"github.com/datadeck-io/datadeck/internal/dataset"
)

const (
	// DefaultRowLimit caps a table load when the request does not name
	// a limit of its own.
	DefaultRowLimit = 1000

	// MaxRowLimit is the hard ceiling on a single table load.
	MaxRowLimit = 100000
)

var (
	// ErrUnsupportedType is returned for a source type we have no driver for.
	ErrUnsupportedType = errors.New("unsupported data source type")

	// ErrNotConnected is returned when a source is used before Connect.
	ErrNotConnected = errors.New("data source is not connected")

	// ErrUnknownTable is returned when a requested table is not in the
	// source's table list.
	ErrUnknownTable = errors.New("unknown table")
)

// Config holds connection details for an external database.
type Config struct {
	Type     string `json:"type"` // "postgres", "mysql"
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	SSLMode  string `json:"sslmode,omitempty"` // postgres only: "disable", "require"
}

// DataSource defines the interface for data sources.
type DataSource interface {
	Connect(cfg Config) error
	Close() error
	ListTables() ([]string, error)
	FetchTable(table string, limit int) (*dataset.Dataset, error)
}

// New returns an unconnected DataSource for the configured type.
func New(cfg Config) (DataSource, error) {
	switch cfg.Type {
	case "postgres":
		return &PostgresDataSource{}, nil
	case "mysql":
		return &MySQLDataSource{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, cfg.Type)
	}
}

// validateTable checks the requested table against the source's own
// table list. Table names are interpolated into the fetch statement
// (placeholders cannot carry identifiers), so every fetch must pass
// through this whitelist first.
func validateTable(src DataSource, table string) error {
	tables, err := src.ListTables()
	if err != nil {
		return err
	}
	for _, t := range tables {
		if t == table {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownTable, table)
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultRowLimit
	}
	if limit > MaxRowLimit {
		return MaxRowLimit
	}
	return limit
}
