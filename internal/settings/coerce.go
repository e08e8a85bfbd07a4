package settings

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// FormatValue converts a decoded JSON value to its stored string form.
// Strings pass through, booleans become "true"/"false", numbers use their
// shortest decimal form and anything else is stored as compact JSON.
func FormatValue(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case bool:
		return strconv.FormatBool(val), nil
	case json.Number:
		d, err := decimal.NewFromString(val.String())
		if err != nil {
			return "", fmt.Errorf("invalid number %q: %w", val.String(), err)
		}
		return d.String(), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32), nil
	case int:
		return strconv.Itoa(val), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case nil:
		return "", fmt.Errorf("nil value has no stored form")
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return "", fmt.Errorf("failed to encode setting value: %w", err)
		}
		return string(b), nil
	}
}

// notificationValue is the read coercion of the notifications group: exactly
// "true" and "false" become booleans, other strings pass through unchanged.
func notificationValue(raw string) any {
	switch raw {
	case "true":
		return true
	case "false":
		return false
	}
	return raw
}
