package badger_provider

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	logs_core "loglens/internal/features/logs/core"

	"github.com/timshannon/badgerhold/v4"
)

// LogDocument is the shape of one log entry in the embedded document
// collection. Badgerhold indexes keep time-bounded scans cheap; the rest
// of the filter set is evaluated in-process because badgerhold comparisons
// are case-sensitive and the contract requires case-insensitive matching.
type LogDocument struct {
	ID           uint64    `badgerhold:"key"`
	Timestamp    time.Time `badgerhold:"index"`
	Level        string    `badgerhold:"index"`
	Message      string
	UserName     string `badgerhold:"index"`
	Exception    string
	Properties   string
	PropertyType string
}

type Provider struct {
	store  *badgerhold.Store
	logger *slog.Logger
}

func NewProvider(path string, logger *slog.Logger) (*Provider, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create badger directory: %w", err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = path
	options.ValueDir = path
	options.Logger = nil

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store: %w", err)
	}

	return NewProviderWithStore(store, logger), nil
}

// NewProviderWithStore wires the provider onto an already opened store.
func NewProviderWithStore(store *badgerhold.Store, logger *slog.Logger) *Provider {
	return &Provider{store: store, logger: logger}
}

func (p *Provider) Name() string {
	return "badger"
}

func (p *Provider) Close() error {
	return p.store.Close()
}

func (p *Provider) FetchLogs(
	ctx context.Context,
	query *logs_core.LogQuery,
) ([]logs_core.LogRecord, int64, error) {
	var documents []LogDocument
	if err := p.store.Find(&documents, timeBoundedQuery(query)); err != nil {
		return nil, 0, logs_core.NewProviderError(p.Name(), fmt.Errorf("failed to find logs: %w", err))
	}

	if err := ctx.Err(); err != nil {
		return nil, 0, logs_core.NewProviderError(p.Name(), err)
	}

	matched := make([]logs_core.LogRecord, 0, len(documents))
	for _, document := range documents {
		record := documentToRecord(document)
		if query.Matches(&record) {
			matched = append(matched, record)
		}
	}

	logs_core.SortByTimestampDesc(matched)

	total := int64(len(matched))
	page := logs_core.Paginate(matched, query)
	logs_core.AssignRowNumbers(page, query)

	return page, total, nil
}

// timeBoundedQuery narrows the indexed scan to the requested date range;
// the remaining filters run in-process over the candidates.
func timeBoundedQuery(query *logs_core.LogQuery) *badgerhold.Query {
	switch {
	case query.StartDate != nil && query.EndDate != nil:
		return badgerhold.Where("Timestamp").Ge(*query.StartDate).And("Timestamp").Le(*query.EndDate)
	case query.StartDate != nil:
		return badgerhold.Where("Timestamp").Ge(*query.StartDate)
	case query.EndDate != nil:
		return badgerhold.Where("Timestamp").Le(*query.EndDate)
	default:
		return &badgerhold.Query{}
	}
}

func documentToRecord(document LogDocument) logs_core.LogRecord {
	record := logs_core.LogRecord{
		Level:        document.Level,
		Message:      document.Message,
		UserName:     document.UserName,
		Timestamp:    document.Timestamp,
		Exception:    document.Exception,
		Properties:   document.Properties,
		PropertyType: logs_core.PropertyType(document.PropertyType),
	}

	if record.PropertyType == "" {
		if record.Properties != "" {
			record.PropertyType = logs_core.DetectPropertyType(record.Properties)
		} else if record.Exception != "" {
			record.PropertyType = logs_core.DetectPropertyType(record.Exception)
		}
	}

	return record
}
