// internal/sheetsync/coerce.go
package sheetsync

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/clubfutbol/clubsite/internal/models"
)

// RowError rejects one incoming row before anything is written.
type RowError struct {
	Index  int
	Column string
	Reason string
}

func (e *RowError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("row %d: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("row %d: %s %s", e.Index, e.Column, e.Reason)
}

// coerce converts a decoded JSON value into the column's store value.
// A nil result means NULL. Empty strings count as NULL for every kind but text.
func coerce(kind ColumnKind, raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}
	if s, ok := raw.(string); ok && kind != KindText && strings.TrimSpace(s) == "" {
		return nil, nil
	}

	switch kind {
	case KindText:
		return coerceText(raw)
	case KindInt, KindCount:
		n, err := coerceInt(raw)
		if err != nil {
			return nil, err
		}
		if kind == KindCount && n < 0 {
			return nil, fmt.Errorf("must be 0 or greater")
		}
		return n, nil
	case KindDate:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("must be a YYYY-MM-DD string")
		}
		d, err := models.ParseDate(s)
		if err != nil {
			return nil, fmt.Errorf("must be a YYYY-MM-DD date")
		}
		return d.String(), nil
	case KindUUID:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("must be a UUID string")
		}
		id, err := uuid.Parse(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("must be a valid UUID")
		}
		return id.String(), nil
	case KindMatchStatus:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("must be a string")
		}
		status := models.MatchStatus(strings.ToLower(strings.TrimSpace(s)))
		if !status.Valid() {
			return nil, fmt.Errorf("must be one of pending, in_progress, completed, cancelled")
		}
		return string(status), nil
	default:
		return nil, fmt.Errorf("unsupported column kind %d", kind)
	}
}

func coerceText(raw any) (any, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
			return strconv.FormatInt(int64(v), 10), nil
		}
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case json.Number:
		return v.String(), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		return nil, fmt.Errorf("must be a string")
	}
}

func coerceInt(raw any) (int, error) {
	switch v := raw.(type) {
	case float64:
		if v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
			return 0, fmt.Errorf("must be a whole number")
		}
		return int(v), nil
	case json.Number:
		n, err := strconv.Atoi(v.String())
		if err != nil {
			return 0, fmt.Errorf("must be a whole number")
		}
		return n, nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("must be a whole number")
		}
		return n, nil
	default:
		return 0, fmt.Errorf("must be a whole number")
	}
}
