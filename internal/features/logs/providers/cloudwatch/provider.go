package cloudwatch_provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	logs_core "loglens/internal/features/logs/core"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
	"github.com/jmespath/go-jmespath"
	"golang.org/x/sync/errgroup"
)

// LogsClient is the subset of the CloudWatch Logs API the provider uses.
type LogsClient interface {
	FilterLogEvents(
		ctx context.Context,
		params *cloudwatchlogs.FilterLogEventsInput,
		optFns ...func(*cloudwatchlogs.Options),
	) (*cloudwatchlogs.FilterLogEventsOutput, error)
}

type Provider struct {
	client    LogsClient
	groups    []string
	levelExpr string
	userExpr  string
	logger    *slog.Logger
}

func NewProvider(
	ctx context.Context,
	region, profile string,
	groups []string,
	levelExpr, userExpr string,
	logger *slog.Logger,
) (*Provider, error) {
	if len(groups) == 0 {
		return nil, fmt.Errorf("no log groups configured")
	}

	var cfgOpts []func(*awsconfig.LoadOptions) error
	if region != "" {
		cfgOpts = append(cfgOpts, awsconfig.WithRegion(region))
	}
	if profile != "" {
		cfgOpts = append(cfgOpts, awsconfig.WithSharedConfigProfile(profile))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, cfgOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return NewProviderWithClient(cloudwatchlogs.NewFromConfig(cfg), groups, levelExpr, userExpr, logger), nil
}

// NewProviderWithClient wires the provider onto an existing client.
func NewProviderWithClient(
	client LogsClient,
	groups []string,
	levelExpr, userExpr string,
	logger *slog.Logger,
) *Provider {
	return &Provider{
		client:    client,
		groups:    groups,
		levelExpr: levelExpr,
		userExpr:  userExpr,
		logger:    logger,
	}
}

func (p *Provider) Name() string {
	return "cloudwatch"
}

// FetchLogs pulls every event in the requested window from all configured
// log groups concurrently, normalizes them, and evaluates the filter set
// in-process; CloudWatch has no server-side offset so paging is applied to
// the merged, descending-ordered match set.
func (p *Provider) FetchLogs(
	ctx context.Context,
	query *logs_core.LogQuery,
) ([]logs_core.LogRecord, int64, error) {
	group, groupCtx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	var matched []logs_core.LogRecord

	for _, logGroup := range p.groups {
		logGroup := logGroup
		group.Go(func() error {
			events, err := p.fetchGroupEvents(groupCtx, logGroup, query)
			if err != nil {
				return fmt.Errorf("log group %s: %w", logGroup, err)
			}

			records := make([]logs_core.LogRecord, 0, len(events))
			for _, event := range events {
				record := p.eventToRecord(event)
				if query.Matches(&record) {
					records = append(records, record)
				}
			}

			mu.Lock()
			matched = append(matched, records...)
			mu.Unlock()

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, 0, logs_core.NewProviderError(p.Name(), err)
	}

	logs_core.SortByTimestampDesc(matched)

	total := int64(len(matched))
	page := logs_core.Paginate(matched, query)
	logs_core.AssignRowNumbers(page, query)

	return page, total, nil
}

func (p *Provider) fetchGroupEvents(
	ctx context.Context,
	logGroup string,
	query *logs_core.LogQuery,
) ([]types.FilteredLogEvent, error) {
	input := &cloudwatchlogs.FilterLogEventsInput{
		LogGroupName: aws.String(logGroup),
	}
	if query.StartDate != nil {
		input.StartTime = aws.Int64(query.StartDate.UnixMilli())
	}
	if query.EndDate != nil {
		input.EndTime = aws.Int64(query.EndDate.UnixMilli())
	}

	var events []types.FilteredLogEvent
	for {
		output, err := p.client.FilterLogEvents(ctx, input)
		if err != nil {
			return nil, err
		}

		events = append(events, output.Events...)

		if output.NextToken == nil {
			return events, nil
		}
		input.NextToken = output.NextToken
	}
}

// eventToRecord normalizes one raw CloudWatch event. Applications emitting
// structured JSON get level/user extracted via the configured JMESPath
// expressions; plain-text events become bare message records.
func (p *Provider) eventToRecord(event types.FilteredLogEvent) logs_core.LogRecord {
	record := logs_core.LogRecord{
		Timestamp: time.UnixMilli(aws.ToInt64(event.Timestamp)).UTC(),
		Message:   aws.ToString(event.Message),
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(record.Message), &decoded); err != nil {
		return record
	}

	if message, ok := decoded["message"].(string); ok && message != "" {
		record.Message = message
	}
	record.Level = p.extractString(decoded, p.levelExpr)
	record.UserName = p.extractString(decoded, p.userExpr)

	if exception, ok := decoded["exception"].(string); ok {
		record.Exception = exception
	}

	switch properties := decoded["properties"].(type) {
	case nil:
	case string:
		record.Properties = properties
	default:
		record.Properties = logs_core.CanonicalJSON(properties)
	}

	if record.Properties != "" {
		record.PropertyType = logs_core.DetectPropertyType(record.Properties)
	} else if record.Exception != "" {
		record.PropertyType = logs_core.DetectPropertyType(record.Exception)
	}

	return record
}

func (p *Provider) extractString(decoded map[string]any, expression string) string {
	if expression == "" {
		return ""
	}

	result, err := jmespath.Search(expression, decoded)
	if err != nil {
		p.logger.Warn("jmespath extraction failed",
			slog.String("expression", expression),
			slog.String("error", err.Error()))
		return ""
	}

	if text, ok := result.(string); ok {
		return text
	}
	return ""
}
