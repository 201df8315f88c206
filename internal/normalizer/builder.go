package normalizer

import (
	"math"
	"strconv"
	"strings"
	"time"

	"procfeed/internal/models"
	"procfeed/pkg/utils"
)

// builder coerces loosely typed source values into entry fields and counts the
// coercions that fell back to a default.
type builder struct {
	runDate   time.Time
	defaulted int
}

func newBuilder(runDate time.Time) *builder {
	return &builder{runDate: DateOf(runDate)}
}

func (b *builder) code(v any) string {
	return utils.Truncate(textOf(v), models.MaxCodeLen)
}

func (b *builder) name(v any) string {
	return utils.Truncate(textOf(v), models.MaxNameLen)
}

func (b *builder) text(v any) string {
	return textOf(v)
}

// link returns the text value or models.NotAvailable when it is empty.
func (b *builder) link(v any) string {
	if s := textOf(v); s != "" {
		return s
	}

	return models.NotAvailable
}

// money is non-negative and finite; anything else becomes 0.
func (b *builder) money(v any) float64 {
	n, ok := CoerceNumber(v)
	if !ok || n < 0 {
		b.defaulted++

		return 0
	}

	return n
}

func (b *builder) number(v any) float64 {
	n, ok := CoerceNumber(v)
	if !ok {
		b.defaulted++
	}

	return n
}

func (b *builder) integer(v any) int {
	n, ok := CoerceNumber(v)
	if !ok || n > math.MaxInt32 || n < math.MinInt32 {
		b.defaulted++

		return 0
	}

	return int(n)
}

func (b *builder) date(v any) time.Time {
	d, ok := CoerceDate(v)
	if !ok {
		b.defaulted++

		return b.runDate
	}

	return d
}

// textOf renders scalar values as trimmed text. Numbers are written without
// exponent or trailing zeros so numeric ids survive ("20100070970", not "2.0100070970e+10").
func textOf(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return ""
		}

		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}
