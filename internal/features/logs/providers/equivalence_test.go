package logs_providers

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	logs_core "loglens/internal/features/logs/core"
	badger_provider "loglens/internal/features/logs/providers/badger"
	cloudwatch_provider "loglens/internal/features/logs/providers/cloudwatch"
	"loglens/internal/util/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timshannon/badgerhold/v4"
)

// entry is one logical log line seeded into every backend under test.
type entry struct {
	Timestamp  time.Time
	Level      string
	Message    string
	UserName   string
	Exception  string
	Properties string
}

func equivalenceDataset() []entry {
	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	return []entry{
		{
			Timestamp:  base,
			Level:      "Information",
			Message:    "service started",
			UserName:   "system",
			Properties: `{"version":"1.4.2"}`,
		},
		{
			Timestamp: base.Add(30 * time.Minute),
			Level:     "Warning",
			Message:   "disk usage above threshold",
			UserName:  "alice",
		},
		{
			Timestamp: base.Add(1 * time.Hour),
			Level:     "Error",
			Message:   "failed to write checkpoint",
			UserName:  "alice",
			Exception: "io timeout after 30s",
		},
		{
			Timestamp:  base.Add(25 * time.Hour),
			Level:      "Error",
			Message:    "failed to write checkpoint",
			UserName:   "bob",
			Properties: `{"attempt":2,"target":"s3"}`,
		},
		{
			Timestamp: base.Add(26 * time.Hour),
			Level:     "Information",
			Message:   "checkpoint recovered",
			UserName:  "bob",
		},
	}
}

func seedBadgerProvider(t *testing.T, dataset []entry) logs_core.LogProvider {
	t.Helper()

	path := t.TempDir()
	options := badgerhold.DefaultOptions
	options.Dir = path
	options.ValueDir = path
	options.Logger = nil

	store, err := badgerhold.Open(options)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	for _, item := range dataset {
		document := badger_provider.LogDocument{
			Timestamp:  item.Timestamp,
			Level:      item.Level,
			Message:    item.Message,
			UserName:   item.UserName,
			Exception:  item.Exception,
			Properties: item.Properties,
		}
		require.NoError(t, store.Insert(badgerhold.NextSequence(), &document))
	}

	return badger_provider.NewProviderWithStore(store, logger.GetLogger())
}

type staticLogsClient struct {
	events []types.FilteredLogEvent
}

func (c *staticLogsClient) FilterLogEvents(
	_ context.Context,
	_ *cloudwatchlogs.FilterLogEventsInput,
	_ ...func(*cloudwatchlogs.Options),
) (*cloudwatchlogs.FilterLogEventsOutput, error) {
	return &cloudwatchlogs.FilterLogEventsOutput{Events: c.events}, nil
}

func seedCloudWatchProvider(t *testing.T, dataset []entry) logs_core.LogProvider {
	t.Helper()

	events := make([]types.FilteredLogEvent, 0, len(dataset))
	for _, item := range dataset {
		payload := map[string]any{
			"level":   item.Level,
			"message": item.Message,
			"user":    item.UserName,
		}
		if item.Exception != "" {
			payload["exception"] = item.Exception
		}
		if item.Properties != "" {
			payload["properties"] = item.Properties
		}

		encoded, err := json.Marshal(payload)
		require.NoError(t, err)

		events = append(events, types.FilteredLogEvent{
			Timestamp: aws.Int64(item.Timestamp.UnixMilli()),
			Message:   aws.String(string(encoded)),
		})
	}

	return cloudwatch_provider.NewProviderWithClient(
		&staticLogsClient{events: events},
		[]string{"/app/api"},
		"level",
		"user",
		logger.GetLogger(),
	)
}

// Two providers over identical data must answer every query with
// byte-identical pages: same records, same order, same row numbers, same
// totals. The gateway depends on this to keep backend choice invisible.
func Test_Providers_OverIdenticalData_AnswerQueriesIdentically(t *testing.T) {
	dataset := equivalenceDataset()
	embedded := seedBadgerProvider(t, dataset)
	managed := seedCloudWatchProvider(t, dataset)

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 1, 23, 59, 59, 0, time.UTC)

	queries := []*logs_core.LogQuery{
		{},
		{Level: "ERROR"},
		{UserName: "Alice"},
		{SearchText: "checkpoint"},
		{SearchText: "io timeout"},
		{StartDate: &start, EndDate: &end},
		{Page: 2, PageSize: 2},
		{Level: "error", SearchText: "checkpoint", Page: 1, PageSize: 1},
	}

	for _, query := range queries {
		query.Normalize()

		embeddedRecords, embeddedTotal, err := embedded.FetchLogs(context.Background(), query)
		require.NoError(t, err)

		managedRecords, managedTotal, err := managed.FetchLogs(context.Background(), query)
		require.NoError(t, err)

		assert.Equal(t, embeddedTotal, managedTotal, "totals diverge for %+v", query)
		assert.Equal(t, embeddedRecords, managedRecords, "pages diverge for %+v", query)
	}
}
