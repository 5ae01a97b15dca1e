package api

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// getFixturePath returns the testdata/envelope directory at the repository root.
// Front-end tests parse the same fixtures.
func getFixturePath(t *testing.T) string {
	_, filename, _, ok := runtime.Caller(0)
	require.True(t, ok, "Failed to get caller info")

	root := filepath.Dir(filepath.Dir(filepath.Dir(filename)))
	return filepath.Join(root, "testdata", "envelope")
}

func loadFixture(t *testing.T, name string) map[string]any {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join(getFixturePath(t), name))
	require.NoError(t, err, "contract tests require the shared fixtures")

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func transform(t *testing.T, status string, v any) map[string]any {
	t.Helper()
	result, err := EnvelopeTransformer(nil, status, v)
	require.NoError(t, err)

	raw, err := json.Marshal(result)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestEnvelopeContract_SuccessMatchesFixture(t *testing.T) {
	expected := loadFixture(t, "success.json")

	got := transform(t, "200", map[string]string{"id": "test-123", "name": "Test Item"})

	assert.Equal(t, expected, got)
}

func TestEnvelopeContract_SuccessNullDataMatchesFixture(t *testing.T) {
	expected := loadFixture(t, "success_null_data.json")

	got := transform(t, "204", nil)

	assert.Equal(t, expected, got)
	assert.NotContains(t, got, "data")
}

func TestEnvelopeContract_SimpleErrorMatchesFixture(t *testing.T) {
	expected := loadFixture(t, "error_simple.json")

	got := transform(t, "404", &APIError{Code: "NOT_FOUND", Message: "Resource not found"})

	assert.Equal(t, expected, got)
	assert.Equal(t, got["error"], got["message"], "error and message carry the same text")
}

func TestEnvelopeContract_DetailedErrorMatchesFixture(t *testing.T) {
	expected := loadFixture(t, "error_detailed.json")

	got := transform(t, "400", &APIError{
		Code:    "VALIDATION_ERROR",
		Message: "validation failed",
		Details: map[string]string{"Genres": "must be a comma-separated list of numeric ids"},
	})

	assert.Equal(t, expected, got)
}

func TestEnvelopeContract_VersionFieldName(t *testing.T) {
	got := transform(t, "200", nil)

	assert.Contains(t, got, "v", "Must use 'v' as version field name")
	assert.NotContains(t, got, "version")
	assert.NotContains(t, got, "Version")
}

func TestEnvelopeContract_EnvelopePassesThrough(t *testing.T) {
	inner := transform(t, "200", map[string]int{"n": 1})

	result, err := EnvelopeTransformer(nil, "200", map[string]any{"n": 1})
	require.NoError(t, err)
	again, err := EnvelopeTransformer(nil, "200", result)
	require.NoError(t, err)

	raw, err := json.Marshal(again)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, inner, out, "an envelope is never wrapped twice")
}
