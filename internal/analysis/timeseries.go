package analysis

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/datadeck-io/datadeck/internal/dataset"
	"github.com/datadeck-io/datadeck/internal/models"
)

// Frequency is the fixed bucket width for resampling.
type Frequency string

const (
	FreqDay   Frequency = "day"
	FreqWeek  Frequency = "week"
	FreqMonth Frequency = "month"
	FreqYear  Frequency = "year"
)

// ParseFrequency reads a frequency from its request form. The
// single-letter aliases D/W/M/Y are accepted alongside the full names.
func ParseFrequency(s string) (Frequency, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "day", "d":
		return FreqDay, nil
	case "week", "w":
		return FreqWeek, nil
	case "month", "m":
		return FreqMonth, nil
	case "year", "y":
		return FreqYear, nil
	}
	return "", fmt.Errorf("%w: %q", ErrBadFrequency, s)
}

// truncate returns the start of the bucket containing t: midnight for
// days, the ISO Monday for weeks, the first of the month, January 1st
// for years.
func (f Frequency) truncate(t time.Time) time.Time {
	switch f {
	case FreqWeek:
		shift := (int(t.Weekday()) + 6) % 7
		t = t.AddDate(0, 0, -shift)
	case FreqMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	case FreqYear:
		return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// label formats a bucket start for display.
func (f Frequency) label(t time.Time) string {
	switch f {
	case FreqMonth:
		return t.Format("2006-01")
	case FreqYear:
		return t.Format("2006")
	}
	return t.Format("2006-01-02")
}

// Resample groups rows by the temporal column truncated to the bucket
// start and averages the numeric column per bucket. Buckets come back
// ascending; a bucket with no contributing rows is simply absent, a
// gap rather than a zero. Rows where either cell is missing are
// skipped.
//
// This is the one path that may mutate the dataset: when no temporal
// column exists yet, the text-to-temporal fallback runs first, and
// every converted column is reported so the frontend can refresh its
// option lists. If the fallback converts nothing the view fails with
// the no-temporal-column advisory.
//
// Empty temporalCol or numericCol default to the first column of the
// matching class, mirroring the dashboard's default selections; the
// temporal default in particular matters right after a conversion,
// when the frontend cannot yet know the new column names.
func (s *Service) Resample(d *dataset.Dataset, temporalCol, numericCol string, freq Frequency) (models.ResampleResponse, error) {
	var converted []string
	cls := d.Classify()
	if len(cls.Temporal) == 0 {
		converted = d.ConvertTextColumnsToTemporal()
		if len(converted) == 0 {
			return models.ResampleResponse{}, ErrNoTemporalColumn
		}
		cls = d.Classify()
	}

	if temporalCol == "" {
		temporalCol = cls.Temporal[0]
	}
	tc := d.Column(temporalCol)
	if tc == nil {
		return models.ResampleResponse{}, fmt.Errorf("%w: %q", ErrColumnNotFound, temporalCol)
	}
	if tc.Kind != dataset.KindTemporal {
		return models.ResampleResponse{}, fmt.Errorf("%w: %q is %s", ErrColumnNotTemporal, temporalCol, tc.Kind)
	}

	if numericCol == "" {
		if len(cls.Numeric) == 0 {
			return models.ResampleResponse{}, fmt.Errorf("%w: dataset has no numeric columns", ErrColumnNotFound)
		}
		numericCol = cls.Numeric[0]
	}
	nc, err := numericColumn(d, numericCol)
	if err != nil {
		return models.ResampleResponse{}, err
	}

	type bucket struct {
		start time.Time
		sum   float64
		count int
	}
	buckets := map[int64]*bucket{}
	for row := 0; row < d.RowCount(); row++ {
		t, okT := tc.TimeAt(row)
		v, okV := nc.FloatAt(row)
		if !okT || !okV {
			continue
		}
		start := freq.truncate(t)
		b := buckets[start.Unix()]
		if b == nil {
			b = &bucket{start: start}
			buckets[start.Unix()] = b
		}
		b.sum += v
		b.count++
	}

	points := make([]models.ResamplePoint, 0, len(buckets))
	for _, b := range buckets {
		points = append(points, models.ResamplePoint{
			Period: freq.label(b.start),
			Start:  b.start,
			Mean:   b.sum / float64(b.count),
			Count:  b.count,
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Start.Before(points[j].Start) })

	return models.ResampleResponse{
		TemporalColumn:   tc.Name,
		NumericColumn:    nc.Name,
		Frequency:        string(freq),
		Points:           points,
		ConvertedColumns: converted,
	}, nil
}
