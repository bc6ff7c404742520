package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStringOrArray(t *testing.T) {
	tests := []struct {
		name    string
		input   any
		want    []string
		wantErr bool
	}{
		{name: "single string", input: "file-1", want: []string{"file-1"}},
		{name: "array of strings", input: []any{"id1", "id2", "id3"}, want: []string{"id1", "id2", "id3"}},
		{name: "string slice", input: []string{"id1"}, want: []string{"id1"}},
		{name: "duplicates dropped", input: []any{"id1", "id2", "id1"}, want: []string{"id1", "id2"}},
		{name: "JSON string array", input: `["id1", "id2"]`, want: []string{"id1", "id2"}},
		{name: "invalid JSON string is a single ID", input: `[invalid json`, want: []string{`[invalid json`}},
		{name: "bracketed name is a single ID", input: `[draft] report.pdf`, want: []string{`[draft] report.pdf`}},
		{name: "nil input", input: nil, wantErr: true},
		{name: "empty string", input: "", wantErr: true},
		{name: "empty array", input: []any{}, wantErr: true},
		{name: "JSON string empty array", input: `[]`, wantErr: true},
		{name: "array with non-string", input: []any{"id1", 123}, wantErr: true},
		{name: "array with empty string", input: []any{"id1", ""}, wantErr: true},
		{name: "invalid type", input: 123, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStringOrArray(tt.input, "fileIds")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatResults(t *testing.T) {
	results := []Result{
		NewSuccessResult("id1", "deleted"),
		NewSuccessResult("id2", "deleted"),
		NewErrorResult("id3", errors.New("not found")),
	}

	var br BatchResult
	require.NoError(t, json.Unmarshal([]byte(FormatResults(results)), &br))

	assert.Equal(t, 3, br.Total)
	assert.Equal(t, 2, br.Successful)
	assert.Equal(t, 1, br.Failed)
	assert.Equal(t, results, br.Results)
}

func TestProcessBatch(t *testing.T) {
	ids := []string{"id1", "id2", "id3", "id4", "id5"}

	var inFlight, maxInFlight atomic.Int32
	fn := func(_ context.Context, id string) (string, error) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			old := maxInFlight.Load()
			if n <= old || maxInFlight.CompareAndSwap(old, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)

		if id == "id2" {
			return "", fmt.Errorf("failed to process %s", id)
		}
		return "processed " + id, nil
	}

	results := ProcessBatch(context.Background(), ids, 2, fn)
	require.Len(t, results, len(ids))

	for i, id := range ids {
		assert.Equal(t, id, results[i].ID, "results keep the input order")
	}
	assert.Equal(t, StatusError, results[1].Status)
	assert.Equal(t, "failed to process id2", results[1].Error)
	assert.Equal(t, StatusSuccess, results[4].Status)
	assert.Equal(t, "processed id5", results[4].Result)

	assert.LessOrEqual(t, maxInFlight.Load(), int32(2))
}

func TestProcessBatch_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	results := ProcessBatch(ctx, []string{"id1", "id2"}, 0, func(context.Context, string) (string, error) {
		called = true
		return "", nil
	})

	assert.False(t, called)
	for _, r := range results {
		assert.Equal(t, StatusError, r.Status)
		assert.Equal(t, context.Canceled.Error(), r.Error)
	}
}
