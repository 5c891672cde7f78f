package tools

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

var ErrInvalidArgument = errors.New("invalid argument")

// stringArgument coerces args[name] to text. Missing, null and empty values
// are rejected.
func stringArgument(args map[string]any, name string) (string, error) {
	value, ok := args[name]
	if !ok || value == nil {
		return "", fmt.Errorf("%w: %s is required", ErrInvalidArgument, name)
	}

	var text string
	switch v := value.(type) {
	case string:
		text = v
	case float64:
		text = strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		text = strconv.Itoa(v)
	case bool:
		text = strconv.FormatBool(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrInvalidArgument, name, err)
		}
		text = string(b)
	}

	if text == "" {
		return "", fmt.Errorf("%w: %s is required", ErrInvalidArgument, name)
	}
	return text, nil
}
