package models

// Field is one key/value pair of a tabular row.
type Field struct {
	Value any
	Key   string
}

// Row is a tabular record with an open-ended key set. Fields keep the order in which
// the keys appeared in the source document.
type Row struct {
	Fields []Field
}

// NewRow builds a row from alternating key/value arguments. Odd trailing keys are dropped.
func NewRow(kv ...any) Row {
	row := Row{Fields: make([]Field, 0, len(kv)/2)}

	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}

		row.Fields = append(row.Fields, Field{Key: key, Value: kv[i+1]})
	}

	return row
}

// Add appends a field.
func (r *Row) Add(key string, value any) {
	r.Fields = append(r.Fields, Field{Key: key, Value: value})
}

// Len returns the number of fields.
func (r Row) Len() int {
	return len(r.Fields)
}

// Keys returns the keys in row order.
func (r Row) Keys() []string {
	keys := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		keys[i] = f.Key
	}

	return keys
}

// Find returns the value of the first field whose key satisfies match.
func (r Row) Find(match func(key string) bool) (any, bool) {
	for _, f := range r.Fields {
		if match(f.Key) {
			return f.Value, true
		}
	}

	return nil, false
}
