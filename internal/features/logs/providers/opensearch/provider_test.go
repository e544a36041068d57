package opensearch_provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	logs_core "loglens/internal/features/logs/core"
	"loglens/internal/util/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startSearchServer(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewProvider(server.URL, "logs", logger.GetLogger())
}

func cannedSearchResponse() map[string]any {
	return map[string]any{
		"took": 3,
		"hits": map[string]any{
			"total": map[string]any{"value": 42, "relation": "eq"},
			"hits": []any{
				map[string]any{
					"_index": "logs",
					"_id":    "1",
					"_source": map[string]any{
						"timestamp": "2024-03-01T10:00:00.123456789Z",
						"level":     "Error",
						"message":   "failed to write checkpoint",
						"user_name": "alice",
						"exception": "io timeout after 30s",
						"properties": map[string]any{
							"b": 2,
							"a": 1,
						},
					},
				},
				map[string]any{
					"_index": "logs",
					"_id":    "2",
					"_source": map[string]any{
						"timestamp":     "2024-03-01T09:00:00Z",
						"level":         "Information",
						"message":       "service started",
						"properties":    "<payload><version>1.4.2</version></payload>",
						"property_type": "xml",
					},
				},
			},
		},
	}
}

func Test_FetchLogs_PostsToSearchEndpoint_AndParsesHits(t *testing.T) {
	var capturedPath string
	var capturedBody map[string]any

	provider := startSearchServer(t, func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&capturedBody))
		require.NoError(t, json.NewEncoder(w).Encode(cannedSearchResponse()))
	})

	query := &logs_core.LogQuery{Page: 2, PageSize: 2}
	query.Normalize()

	records, total, err := provider.FetchLogs(context.Background(), query)
	require.NoError(t, err)

	assert.Equal(t, "/logs/_search", capturedPath)
	assert.Equal(t, float64(2), capturedBody["size"])
	assert.Equal(t, float64(2), capturedBody["from"])
	assert.Equal(t, int64(42), total)
	require.Len(t, records, 2)
}

func Test_FetchLogs_NormalizesHitsIntoRecords(t *testing.T) {
	provider := startSearchServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(cannedSearchResponse()))
	})

	query := &logs_core.LogQuery{}
	query.Normalize()

	records, _, err := provider.FetchLogs(context.Background(), query)
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "Error", first.Level)
	assert.Equal(t, "failed to write checkpoint", first.Message)
	assert.Equal(t, "alice", first.UserName)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 123456789, time.UTC), first.Timestamp)
	assert.Equal(t, "io timeout after 30s", first.Exception)
	assert.Equal(t, `{"a":1,"b":2}`, first.Properties, "object payloads collapse to canonical JSON")
	assert.Equal(t, logs_core.PropertyTypeJSON, first.PropertyType)

	second := records[1]
	assert.Empty(t, second.UserName)
	assert.Equal(t, logs_core.PropertyTypeXML, second.PropertyType)
}

func Test_FetchLogs_AssignsRowNumbersFromPagingWindow(t *testing.T) {
	provider := startSearchServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(cannedSearchResponse()))
	})

	query := &logs_core.LogQuery{Page: 3, PageSize: 2}
	query.Normalize()

	records, _, err := provider.FetchLogs(context.Background(), query)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, 5, records[0].RowNumber)
	assert.Equal(t, 6, records[1].RowNumber)
}

func Test_FetchLogs_WhenSearchFails_ReturnsProviderError(t *testing.T) {
	provider := startSearchServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"index is red"}`))
	})

	query := &logs_core.LogQuery{}
	query.Normalize()

	_, _, err := provider.FetchLogs(context.Background(), query)

	require.Error(t, err)
	var providerErr *logs_core.ProviderError
	require.ErrorAs(t, err, &providerErr)
	assert.Equal(t, "opensearch", providerErr.Backend)
	assert.Contains(t, err.Error(), "503")
}

func Test_Ping_ChecksClusterRoot(t *testing.T) {
	var pinged bool
	provider := startSearchServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && r.URL.Path == "/" {
			pinged = true
		}
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, provider.Ping(context.Background()))
	assert.True(t, pinged)
}
