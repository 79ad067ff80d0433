package models

import "time"

// UploadResponse is returned after a successful dataset upload
type UploadResponse struct {
	SessionID   string   `json:"session_id"`
	Message     string   `json:"message"`
	Rows        int      `json:"rows"`
	Columns     int      `json:"columns"`
	ColumnNames []string `json:"column_names"`
}

// SessionInfo describes one live session
type SessionInfo struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Rows       int       `json:"rows"`
	Columns    int       `json:"columns"`
	CreatedAt  time.Time `json:"created_at"`
	LastAccess time.Time `json:"last_access"`
}

// SessionListResponse is returned by /api/sessions
type SessionListResponse struct {
	Count    int           `json:"count"`
	Sessions []SessionInfo `json:"sessions"`
}

// AdvisoryResponse reports an empty-result condition the frontend
// should render as a notice, not an error
type AdvisoryResponse struct {
	Advisory string `json:"advisory"`
}

// PreviewResponse returns the first rows of a dataset
type PreviewResponse struct {
	Columns []string                 `json:"columns"`
	Rows    []map[string]interface{} `json:"rows"`
	Total   int                      `json:"total_rows"`
}

// FilterCondition for the /filter endpoint
type FilterCondition struct {
	Column   string `json:"column"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

// FilterRequest for the /filter endpoint
type FilterRequest struct {
	Conditions []FilterCondition `json:"conditions"`
	Limit      int               `json:"limit,omitempty"`
}

// FilterResponse for the /filter endpoint
type FilterResponse struct {
	Rows int                      `json:"rows"`
	Data []map[string]interface{} `json:"data"`
}

// TablesResponse lists tables of the connected database
type TablesResponse struct {
	Tables []string `json:"tables"`
}

// LoadTableRequest asks to load a database table into a new session
type LoadTableRequest struct {
	Table string `json:"table"`
	Limit int    `json:"limit,omitempty"`
}
