package normalizer

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Day-first layouts come before ISO ones: the source locale writes 03/04/2024 for 3 April.
var dateLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"02-01-2006",
	"02-01-2006 15:04:05",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.000",
	"2006-01-02",
	"2006/01/02",
	"2 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

var currencyPrefixes = []string{"S/.", "S/", "PEN", "USD", "US$", "$"}

// ParseFlexibleDate returns the date encoded in value, or today's date when no
// interpretation succeeds. It never fails.
func ParseFlexibleDate(value any) time.Time {
	return ParseFlexibleDateAt(value, time.Now())
}

// ParseFlexibleDateAt is ParseFlexibleDate with an explicit fallback instant.
func ParseFlexibleDateAt(value any, fallback time.Time) time.Time {
	if d, ok := CoerceDate(value); ok {
		return d
	}

	return DateOf(fallback)
}

// CoerceDate interprets value as a calendar date. The bool is false when value is
// empty or unparseable; callers then apply their own default.
func CoerceDate(value any) (time.Time, bool) {
	switch v := value.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		if v.IsZero() {
			return time.Time{}, false
		}

		return DateOf(v), true
	case *time.Time:
		if v == nil || v.IsZero() {
			return time.Time{}, false
		}

		return DateOf(*v), true
	case string:
		return parseDateString(v)
	default:
		return time.Time{}, false
	}
}

func parseDateString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), true
		}
	}

	return time.Time{}, false
}

// DateOf drops the clock part of t, keeping t's own calendar day, as UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()

	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseFlexibleNumber returns value as a float64, accepting numbers and strings with
// comma thousands separators. Anything else yields 0. It never fails.
func ParseFlexibleNumber(value any) float64 {
	n, _ := CoerceNumber(value)

	return n
}

// CoerceNumber interprets value as a finite number. The bool is false when the value
// was missing or unparseable and 0 was returned instead.
func CoerceNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case nil:
		return 0, false
	case float64:
		return finite(v)
	case float32:
		return finite(float64(v))
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		return parseNumberString(string(v))
	case string:
		return parseNumberString(v)
	default:
		return 0, false
	}
}

func parseNumberString(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	for _, prefix := range currencyPrefixes {
		if strings.HasPrefix(strings.ToUpper(s), prefix) {
			s = strings.TrimSpace(s[len(prefix):])

			break
		}
	}

	s = strings.Map(func(r rune) rune {
		switch r {
		case ',', ' ', '\u00a0':
			return -1
		}

		return r
	}, s)
	if s == "" {
		return 0, false
	}

	dec, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}

	f, _ := dec.Float64()

	return finite(f)
}

func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}

	return f, true
}
