package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Status values of a Result.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// DefaultConcurrency is the number of items processed at once by ProcessBatch.
const DefaultConcurrency = 4

// Result represents the result of a single operation in a batch
type Result struct {
	ID     string `json:"id"`
	Status string `json:"status"` // "success" or "error"
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// BatchResult represents the aggregated results of a batch operation
type BatchResult struct {
	Total      int      `json:"total"`
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Results    []Result `json:"results"`
}

// ParseStringOrArray parses a parameter that can be either a single string,
// a JSON array encoded as a string, or an array of strings. Duplicate IDs
// are dropped, keeping the first.
func ParseStringOrArray(param any, paramName string) ([]string, error) {
	if param == nil {
		return nil, fmt.Errorf("%s is required", paramName)
	}

	var items []string
	switch v := param.(type) {
	case string:
		if v == "" {
			return nil, fmt.Errorf("%s cannot be empty", paramName)
		}
		var list []string
		if strings.HasPrefix(v, "[") && json.Unmarshal([]byte(v), &list) == nil {
			items = list
		} else {
			items = []string{v}
		}
	case []string:
		items = v
	case []any:
		for i, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s[%d] must be a string", paramName, i)
			}
			items = append(items, str)
		}
	default:
		return nil, fmt.Errorf("%s must be a string or array of strings", paramName)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%s cannot be empty", paramName)
	}

	seen := make(map[string]bool, len(items))
	result := make([]string, 0, len(items))
	for i, item := range items {
		if item == "" {
			return nil, fmt.Errorf("%s[%d] cannot be empty", paramName, i)
		}
		if seen[item] {
			continue
		}
		seen[item] = true
		result = append(result, item)
	}
	return result, nil
}

// Summarize aggregates results into a BatchResult.
func Summarize(results []Result) BatchResult {
	br := BatchResult{
		Total:   len(results),
		Results: results,
	}
	for _, r := range results {
		if r.Status == StatusSuccess {
			br.Successful++
		} else {
			br.Failed++
		}
	}
	return br
}

// FormatResults creates a formatted JSON string from batch results
func FormatResults(results []Result) string {
	jsonBytes, _ := json.MarshalIndent(Summarize(results), "", "  ")
	return string(jsonBytes)
}

// ProcessBatch runs fn on every ID with at most concurrency calls in
// flight and returns the results in the order of ids. A failing item does
// not stop the others; items not started before ctx is cancelled fail with
// the context error.
func ProcessBatch(ctx context.Context, ids []string, concurrency int, fn func(ctx context.Context, id string) (string, error)) []Result {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	results := make([]Result, len(ids))
	g := new(errgroup.Group)
	g.SetLimit(concurrency)

	for i, id := range ids {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = NewErrorResult(id, err)
				return nil
			}
			res, err := fn(ctx, id)
			if err != nil {
				results[i] = NewErrorResult(id, err)
			} else {
				results[i] = NewSuccessResult(id, res)
			}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// NewSuccessResult creates a success result
func NewSuccessResult(id, message string) Result {
	return Result{
		ID:     id,
		Status: StatusSuccess,
		Result: message,
	}
}

// NewErrorResult creates an error result
func NewErrorResult(id string, err error) Result {
	return Result{
		ID:     id,
		Status: StatusError,
		Error:  err.Error(),
	}
}
