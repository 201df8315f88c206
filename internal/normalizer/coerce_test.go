package normalizer

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseFlexibleDate_DayFirst(t *testing.T) {
	d := ParseFlexibleDate("15/03/2024")

	assert.Equal(t, 2024, d.Year())
	assert.Equal(t, time.March, d.Month())
	assert.Equal(t, 15, d.Day())
}

func TestCoerceDate(t *testing.T) {
	tests := []struct {
		name   string
		in     any
		want   time.Time
		wantOK bool
	}{
		{"slash day first", "03/04/2024", time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC), true},
		{"single digits", "3/4/2024", time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC), true},
		{"with time", "15/03/2024 10:30", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"iso date", "2024-03-15", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"rfc3339 keeps local day", "2024-03-15T23:30:00-05:00", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"time value", time.Date(2023, 12, 31, 18, 0, 0, 0, time.UTC), time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), true},
		{"empty", "  ", time.Time{}, false},
		{"garbage", "next tuesday", time.Time{}, false},
		{"impossible day", "31/02/2024", time.Time{}, false},
		{"nil", nil, time.Time{}, false},
		{"number", 20240315.0, time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CoerceDate(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.True(t, tt.want.Equal(got), "got %v, want %v", got, tt.want)
		})
	}
}

func TestParseFlexibleDateAt_FallsBackToRunDate(t *testing.T) {
	run := time.Date(2025, 6, 1, 14, 5, 0, 0, time.UTC)

	got := ParseFlexibleDateAt("not a date", run)

	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), got)
}

func TestParseFlexibleNumber(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
	}{
		{"thousands separator", "1,234.56", 1234.56},
		{"plain", "500", 500},
		{"float", 12.5, 12.5},
		{"int", 7, 7},
		{"json number", json.Number("3.25"), 3.25},
		{"currency prefix", "S/ 1,500.00", 1500},
		{"currency with dot", "S/. 99.90", 99.9},
		{"nbsp", "1\u00a0000", 1000},
		{"negative", "-20", -20},
		{"nil", nil, 0},
		{"empty", "", 0},
		{"text", "abc", 0},
		{"nan", math.NaN(), 0},
		{"inf", math.Inf(1), 0},
		{"bool", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ParseFlexibleNumber(tt.in), 1e-9)
		})
	}
}

func TestCoerceNumber_ReportsDefault(t *testing.T) {
	_, ok := CoerceNumber("n/a")
	assert.False(t, ok)

	n, ok := CoerceNumber("2,000")
	assert.True(t, ok)
	assert.InDelta(t, 2000, n, 0)
}
