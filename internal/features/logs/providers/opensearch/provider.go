package opensearch_provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	logs_core "loglens/internal/features/logs/core"
)

type Provider struct {
	client  *http.Client
	baseURL string
	index   string
	logger  *slog.Logger
}

func NewProvider(baseURL, index string, logger *slog.Logger) *Provider {
	return &Provider{
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				MaxConnsPerHost:     50,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		index:   index,
		logger:  logger,
	}
}

func (p *Provider) Name() string {
	return "opensearch"
}

func (p *Provider) Ping(ctx context.Context) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create ping request: %w", err)
	}

	response, err := p.client.Do(request)
	if err != nil {
		return fmt.Errorf("failed to reach OpenSearch: %w", err)
	}
	defer p.closeBody(response.Body)

	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("OpenSearch ping returned status %d", response.StatusCode)
	}

	return nil
}

func (p *Provider) FetchLogs(
	ctx context.Context,
	query *logs_core.LogQuery,
) ([]logs_core.LogRecord, int64, error) {
	searchPayload, err := json.Marshal(BuildSearchBody(query))
	if err != nil {
		return nil, 0, logs_core.NewProviderError(p.Name(), fmt.Errorf("failed to marshal search body: %w", err))
	}

	searchEndpoint := p.baseURL + "/" + p.index + "/_search"
	searchRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, searchEndpoint, bytes.NewReader(searchPayload))
	if err != nil {
		return nil, 0, logs_core.NewProviderError(p.Name(), fmt.Errorf("failed to create search request: %w", err))
	}
	searchRequest.Header.Set("Content-Type", "application/json")

	httpResponse, err := p.client.Do(searchRequest)
	if err != nil {
		return nil, 0, logs_core.NewProviderError(p.Name(), fmt.Errorf("failed to execute search: %w", err))
	}
	defer p.closeBody(httpResponse.Body)

	responseBody, err := io.ReadAll(httpResponse.Body)
	if err != nil {
		return nil, 0, logs_core.NewProviderError(p.Name(), fmt.Errorf("failed to read search response: %w", err))
	}

	if httpResponse.StatusCode != http.StatusOK {
		return nil, 0, logs_core.NewProviderError(p.Name(), fmt.Errorf(
			"search returned status %d: %s", httpResponse.StatusCode, string(responseBody)))
	}

	var parsed searchResponse
	if err := json.Unmarshal(responseBody, &parsed); err != nil {
		return nil, 0, logs_core.NewProviderError(p.Name(), fmt.Errorf("failed to parse search response: %w", err))
	}

	records := make([]logs_core.LogRecord, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		records = append(records, hitToRecord(hit.Source))
	}

	logs_core.AssignRowNumbers(records, query)

	return records, parsed.Hits.Total.Value, nil
}

func (p *Provider) closeBody(body io.ReadCloser) {
	if err := body.Close(); err != nil {
		p.logger.Error("failed to close response body", "error", err)
	}
}

func hitToRecord(source map[string]any) logs_core.LogRecord {
	record := logs_core.LogRecord{
		Level:    asString(source["level"]),
		Message:  asString(source["message"]),
		UserName: asString(source["user_name"]),
	}

	if timestamp, ok := source["timestamp"].(string); ok {
		if parsed, err := time.Parse(time.RFC3339Nano, timestamp); err == nil {
			record.Timestamp = parsed.UTC()
		}
	}

	record.Exception = normalizePayload(source["exception"])
	record.Properties = normalizePayload(source["properties"])

	if tag, ok := source["property_type"].(string); ok && tag != "" {
		record.PropertyType = logs_core.PropertyType(tag)
	} else if record.Properties != "" {
		record.PropertyType = logs_core.DetectPropertyType(record.Properties)
	} else if record.Exception != "" {
		record.PropertyType = logs_core.DetectPropertyType(record.Exception)
	}

	return record
}

// normalizePayload flattens a structured metadata field into the canonical
// string form so documents indexed as objects and documents indexed as raw
// text yield identical records.
func normalizePayload(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	default:
		return logs_core.CanonicalJSON(typed)
	}
}

func asString(value any) string {
	if text, ok := value.(string); ok {
		return text
	}
	return ""
}

type searchResponse struct {
	Took int64 `json:"took"`
	Hits struct {
		Total struct {
			Value int64  `json:"value"`
			Rel   string `json:"relation"`
		} `json:"total"`
		Hits []struct {
			Index  string         `json:"_index"`
			ID     string         `json:"_id"`
			Source map[string]any `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}
