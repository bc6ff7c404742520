package common

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cast"
)

// RequiredString returns a non-empty string argument.
func RequiredString(args map[string]any, name string) (string, error) {
	v, ok := args[name].(string)
	if !ok || v == "" {
		return "", fmt.Errorf("%s is required", name)
	}
	return v, nil
}

// OptionalString returns a string argument or "" when it is absent.
func OptionalString(args map[string]any, name string) string {
	v, _ := args[name].(string)
	return v
}

// OptionalInt returns an integer argument. JSON numbers arrive as float64
// and numeric strings are accepted too. Fractional numbers are rejected.
func OptionalInt(args map[string]any, name string) (int64, error) {
	raw, ok := args[name]
	if !ok || raw == nil {
		return 0, nil
	}
	if f, ok := raw.(float64); ok && f != math.Trunc(f) {
		return 0, fmt.Errorf("%s must be an integer, got %v", name, f)
	}
	v, err := cast.ToInt64E(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", name, err)
	}
	return v, nil
}

// OptionalBool returns a boolean argument or def when it is absent.
func OptionalBool(args map[string]any, name string, def bool) (bool, error) {
	raw, ok := args[name]
	if !ok || raw == nil {
		return def, nil
	}
	v, err := cast.ToBoolE(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", name, err)
	}
	return v, nil
}

// StringList accepts a comma-separated string or an array of strings.
func StringList(args map[string]any, name string) ([]string, error) {
	switch v := args[name].(type) {
	case nil:
		return nil, nil
	case string:
		return ParseCommaList(v), nil
	default:
		items, err := cast.ToStringSliceE(v)
		if err != nil {
			return nil, fmt.Errorf("%s must be a string or an array of strings", name)
		}
		var out []string
		for _, item := range items {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
		return out, nil
	}
}

// ParseCommaList splits a comma-separated string and drops empty entries.
func ParseCommaList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Row returns a single row of cell values. The argument may be an array or
// a JSON array encoded as a string.
func Row(args map[string]any, name string) ([]any, error) {
	raw, err := decodeJSONString(args[name], name)
	if err != nil {
		return nil, err
	}
	row, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%s must be an array of cell values", name)
	}
	return row, nil
}

// Rows returns a two-dimensional array of cell values. A flat array is
// treated as a single row.
func Rows(args map[string]any, name string) ([][]any, error) {
	raw, err := decodeJSONString(args[name], name)
	if err != nil {
		return nil, err
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%s must be an array of rows", name)
	}

	nested := len(list) > 0
	for _, item := range list {
		if _, ok := item.([]any); !ok {
			nested = false
			break
		}
	}
	if !nested {
		for _, item := range list {
			if _, ok := item.([]any); ok {
				return nil, fmt.Errorf("%s mixes rows and cell values", name)
			}
		}
		return [][]any{list}, nil
	}

	rows := make([][]any, len(list))
	for i, item := range list {
		rows[i] = item.([]any)
	}
	return rows, nil
}

func decodeJSONString(raw any, name string) (any, error) {
	s, ok := raw.(string)
	if !ok {
		if raw == nil {
			return nil, fmt.Errorf("%s is required", name)
		}
		return raw, nil
	}
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, fmt.Errorf("%s must be a JSON array: %w", name, err)
	}
	return v, nil
}

// JSONResult returns v as indented JSON text prefixed by message.
func JSONResult(message string, v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err))
	}
	if message == "" {
		return mcp.NewToolResultText(string(data))
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s\n%s", message, data))
}
