package connector

import (
	"encoding/json"
	"strconv"

	"query-engine/internal/dbexec"
	"query-engine/internal/models"
	"query-engine/internal/planner"
)

func scanRows(rows dbexec.Rows, fields []planner.SelectedField) ([][]any, error) {
	var results [][]any

	for rows.Next() {
		values := make([]any, len(fields))
		valuePtrs := make([]any, len(fields))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		for i, f := range fields {
			values[i] = convertValue(f.Field, values[i])
		}
		results = append(results, values)
	}

	return results, rows.Err()
}

// convertValue maps driver values onto the field type. Text protocol
// results arrive as []byte regardless of the column type.
func convertValue(field *models.ScalarField, val any) any {
	switch v := val.(type) {
	case nil:
		return nil
	case []byte:
		return convertBytes(field.Type, v)
	case int64:
		if field.Type == models.TypeBoolean {
			return v != 0
		}
		return v
	default:
		return val
	}
}

func convertBytes(typ models.TypeIdentifier, b []byte) any {
	s := string(b)
	switch typ {
	case models.TypeInt:
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
	case models.TypeFloat:
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	case models.TypeBoolean:
		if parsed, err := strconv.ParseBool(s); err == nil {
			return parsed
		}
	case models.TypeJSON:
		if json.Valid(b) {
			return json.RawMessage(append([]byte(nil), b...))
		}
	case models.TypeBytes:
		return append([]byte(nil), b...)
	}
	return s
}
