package normalizer

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"procfeed/internal/models"
)

// Format identifies the shape of a source payload.
type Format string

// Supported formats. Elements of one payload are never mixed across formats.
const (
	FormatUnknown Format = "unknown"
	FormatTabular Format = "tabular"
	FormatNested  Format = "nested"
)

// Decoding errors.
var (
	ErrNotAnObject = errors.New("element is not a JSON object")
	ErrBadRelease  = errors.New("element cannot be decoded as a release")
)

// RowFromJSON decodes a JSON object into a row, keeping the object's key order.
// Nested objects and arrays are kept as their raw JSON text.
func RowFromJSON(raw string) (models.Row, error) {
	obj := gjson.Parse(raw)
	if !obj.IsObject() {
		return models.Row{}, fmt.Errorf("%w: %s", ErrNotAnObject, obj.Type)
	}

	var row models.Row

	obj.ForEach(func(key, value gjson.Result) bool {
		row.Add(key.String(), scalarOf(value))

		return true
	})

	return row, nil
}

// ReleaseFromJSON decodes a JSON object into a release.
func ReleaseFromJSON(raw string) (*models.Release, error) {
	obj := gjson.Parse(raw)
	if !obj.IsObject() {
		return nil, fmt.Errorf("%w: %s", ErrNotAnObject, obj.Type)
	}

	var rel models.Release
	if err := json.Unmarshal([]byte(obj.Raw), &rel); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadRelease, err)
	}

	return &rel, nil
}

func scalarOf(v gjson.Result) any {
	switch v.Type {
	case gjson.Null:
		return nil
	case gjson.False:
		return false
	case gjson.True:
		return true
	case gjson.Number:
		return v.Float()
	case gjson.String:
		return v.Str
	default:
		return v.Raw
	}
}
