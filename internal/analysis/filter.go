package analysis

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/datadeck-io/datadeck/internal/dataset"
	"github.com/datadeck-io/datadeck/internal/models"
)

const (
	defaultFilterLimit = 100
	maxFilterLimit     = 1000
)

// Filter returns the rows matching every condition, rendered as
// header-keyed records and capped at the requested limit. Rows reports
// the full match count before the cap. Conditions referencing unknown
// columns or operators fail the whole request up front.
func (s *Service) Filter(d *dataset.Dataset, req models.FilterRequest) (models.FilterResponse, error) {
	for _, cond := range req.Conditions {
		if d.Column(cond.Column) == nil {
			return models.FilterResponse{}, fmt.Errorf("%w: %q", ErrColumnNotFound, cond.Column)
		}
		switch cond.Operator {
		case "equals", "not_equals", "contains", "greater_than", "less_than":
		default:
			return models.FilterResponse{}, fmt.Errorf("%w: %q", ErrBadOperator, cond.Operator)
		}
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultFilterLimit
	}
	if limit > maxFilterLimit {
		limit = maxFilterLimit
	}

	matched := []int{}
	for row := 0; row < d.RowCount(); row++ {
		if matchesAll(d, row, req.Conditions) {
			matched = append(matched, row)
		}
	}

	n := len(matched)
	if n > limit {
		n = limit
	}
	data := make([]map[string]interface{}, n)
	for i := 0; i < n; i++ {
		rowMap := make(map[string]interface{}, d.ColumnCount())
		for _, c := range d.Columns {
			rowMap[c.Name] = cellValue(c, matched[i])
		}
		data[i] = rowMap
	}

	return models.FilterResponse{Rows: len(matched), Data: data}, nil
}

// matchesAll reports whether a row satisfies every condition. A
// missing cell matches nothing, not even not_equals; the numeric
// operators match only when both sides parse as numbers.
func matchesAll(d *dataset.Dataset, row int, conds []models.FilterCondition) bool {
	for _, cond := range conds {
		c := d.Column(cond.Column)
		if c.IsMissing(row) {
			return false
		}
		val := c.Cells[row]

		switch cond.Operator {
		case "equals":
			if val != cond.Value {
				return false
			}
		case "not_equals":
			if val == cond.Value {
				return false
			}
		case "contains":
			if !strings.Contains(strings.ToLower(val), strings.ToLower(cond.Value)) {
				return false
			}
		case "greater_than":
			fVal, err1 := strconv.ParseFloat(val, 64)
			fCond, err2 := strconv.ParseFloat(cond.Value, 64)
			if err1 != nil || err2 != nil || fVal <= fCond {
				return false
			}
		case "less_than":
			fVal, err1 := strconv.ParseFloat(val, 64)
			fCond, err2 := strconv.ParseFloat(cond.Value, 64)
			if err1 != nil || err2 != nil || fVal >= fCond {
				return false
			}
		}
	}
	return true
}
