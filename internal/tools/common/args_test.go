package common

import (
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequiredString(t *testing.T) {
	args := map[string]any{"fileId": "abc", "empty": "", "number": 3}

	v, err := RequiredString(args, "fileId")
	require.NoError(t, err)
	assert.Equal(t, "abc", v)

	for _, name := range []string{"empty", "number", "missing"} {
		_, err := RequiredString(args, name)
		assert.EqualError(t, err, name+" is required")
	}
}

func TestOptionalInt(t *testing.T) {
	args := map[string]any{"float": float64(3), "string": "7", "bad": "x"}

	v, err := OptionalInt(args, "float")
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)

	v, err = OptionalInt(args, "string")
	require.NoError(t, err)
	assert.Equal(t, int64(7), v)

	v, err = OptionalInt(args, "missing")
	require.NoError(t, err)
	assert.Zero(t, v)

	_, err = OptionalInt(args, "bad")
	assert.Error(t, err)
}

func TestOptionalIntRejectsFraction(t *testing.T) {
	_, err := OptionalInt(map[string]any{"max_results": 1.5}, "max_results")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_results must be an integer")

	v, err := OptionalInt(map[string]any{"max_results": 2.0}, "max_results")
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)
}

func TestOptionalBool(t *testing.T) {
	v, err := OptionalBool(map[string]any{"flag": false}, "flag", true)
	require.NoError(t, err)
	assert.False(t, v)

	v, err = OptionalBool(map[string]any{}, "flag", true)
	require.NoError(t, err)
	assert.True(t, v)
}

func TestStringList(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want []string
	}{
		{"comma separated", "a, b,,c", []string{"a", "b", "c"}},
		{"array", []any{"a", " b ", ""}, []string{"a", "b"}},
		{"missing", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := StringList(map[string]any{"ids": tt.raw}, "ids")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRows(t *testing.T) {
	tests := []struct {
		name    string
		raw     any
		want    [][]any
		wantErr bool
	}{
		{
			name: "nested array",
			raw:  []any{[]any{"a", float64(1)}, []any{"b"}},
			want: [][]any{{"a", float64(1)}, {"b"}},
		},
		{
			name: "flat array is one row",
			raw:  []any{"a", "b"},
			want: [][]any{{"a", "b"}},
		},
		{
			name: "json string",
			raw:  `[["x", true]]`,
			want: [][]any{{"x", true}},
		},
		{name: "mixed", raw: []any{[]any{"a"}, "b"}, wantErr: true},
		{name: "invalid json", raw: `[[`, wantErr: true},
		{name: "not an array", raw: float64(1), wantErr: true},
		{name: "missing", raw: nil, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Rows(map[string]any{"values": tt.raw}, "values")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRow(t *testing.T) {
	got, err := Row(map[string]any{"values": `["a", 2]`}, "values")
	require.NoError(t, err)
	assert.Equal(t, []any{"a", float64(2)}, got)

	_, err = Row(map[string]any{"values": "{}"}, "values")
	assert.Error(t, err)
}

func TestJSONResult(t *testing.T) {
	result := JSONResult("Done:", map[string]string{"id": "1"})
	require.Len(t, result.Content, 1)
	text := result.Content[0].(mcp.TextContent).Text
	assert.True(t, strings.HasPrefix(text, "Done:\n{"))
	assert.Contains(t, text, `"id": "1"`)
	assert.False(t, result.IsError)
}
