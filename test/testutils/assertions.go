package testutils

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/alchemorsel/pantry/internal/ports/inbound"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ReconcileAssertions checks batch results
type ReconcileAssertions struct {
	t *testing.T
}

// NewReconcileAssertions creates a new reconciliation assertions helper
func NewReconcileAssertions(t *testing.T) *ReconcileAssertions {
	return &ReconcileAssertions{t: t}
}

// EveryItemAccounted asserts that each input index appears in the result
func (ra *ReconcileAssertions) EveryItemAccounted(result *inbound.CommitResult, inputs int) {
	require.NotNil(ra.t, result, "Commit result should not be nil")

	seen := make(map[int]bool, inputs)
	for _, item := range result.Committed {
		seen[item.Index] = true
	}
	for _, item := range result.Skipped {
		seen[item.Index] = true
	}
	for _, item := range result.Failed {
		seen[item.Index] = true
	}
	for i := 0; i < inputs; i++ {
		assert.True(ra.t, seen[i], "item %d is missing from the commit result", i)
	}
}

// EveryMoveAccounted asserts that each migrated item moved or failed
func (ra *ReconcileAssertions) EveryMoveAccounted(result *inbound.MigrationResult, inputs int) {
	require.NotNil(ra.t, result, "Migration result should not be nil")
	assert.Equal(ra.t, inputs, len(result.Moved)+len(result.Failed), "moved plus failed should equal input")
	assert.Equal(ra.t, len(result.Failed) == 0, result.Success)
}

// HTTPAssertions provides HTTP-specific assertion methods
type HTTPAssertions struct {
	t *testing.T
}

// NewHTTPAssertions creates a new HTTP assertions helper
func NewHTTPAssertions(t *testing.T) *HTTPAssertions {
	return &HTTPAssertions{t: t}
}

// StatusCode asserts the HTTP status code
func (ha *HTTPAssertions) StatusCode(resp *http.Response, expectedCode int, msgAndArgs ...interface{}) {
	require.NotNil(ha.t, resp, "Response should not be nil")
	assert.Equal(ha.t, expectedCode, resp.StatusCode, msgAndArgs...)
}

// JSONResponse asserts that the response is valid JSON and unmarshals it
func (ha *HTTPAssertions) JSONResponse(resp *http.Response, target interface{}) {
	require.NotNil(ha.t, resp, "Response should not be nil")

	contentType := resp.Header.Get("Content-Type")
	assert.True(ha.t, strings.Contains(contentType, "application/json"),
		"Response should have JSON content type, got: %s", contentType)

	require.NoError(ha.t, json.NewDecoder(resp.Body).Decode(target), "Response should be valid JSON")
}

// ErrorCode asserts that the response body carries the given error code
func (ha *HTTPAssertions) ErrorCode(resp *http.Response, expectedCode string) {
	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	ha.JSONResponse(resp, &body)

	assert.False(ha.t, body.Success, "Error response should not report success")
	assert.Equal(ha.t, expectedCode, body.Error.Code)
}
