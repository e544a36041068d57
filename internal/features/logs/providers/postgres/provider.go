package postgres_provider

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	logs_core "loglens/internal/features/logs/core"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gorm_logger "gorm.io/gorm/logger"
)

// logRow mirrors one row of the externally-owned logs table. The table is
// written by the application's logging sink; this provider only reads it.
type logRow struct {
	Level        string    `gorm:"column:level"`
	Message      string    `gorm:"column:message"`
	UserName     string    `gorm:"column:user_name"`
	Timestamp    time.Time `gorm:"column:timestamp"`
	Exception    string    `gorm:"column:exception"`
	Properties   string    `gorm:"column:properties"`
	PropertyType string    `gorm:"column:property_type"`
}

type Provider struct {
	db     *gorm.DB
	table  string
	logger *slog.Logger
}

func NewProvider(dsn, table string, logger *slog.Logger) (*Provider, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gorm_logger.Default.LogMode(gorm_logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	return NewProviderWithDB(db, table, logger), nil
}

// NewProviderWithDB wires the provider onto an existing gorm handle.
func NewProviderWithDB(db *gorm.DB, table string, logger *slog.Logger) *Provider {
	return &Provider{db: db, table: table, logger: logger}
}

func (p *Provider) Name() string {
	return "postgres"
}

func (p *Provider) Ping(ctx context.Context) error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql connection: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func (p *Provider) FetchLogs(
	ctx context.Context,
	query *logs_core.LogQuery,
) ([]logs_core.LogRecord, int64, error) {
	var total int64
	if err := p.filtered(ctx, query).Count(&total).Error; err != nil {
		return nil, 0, logs_core.NewProviderError(p.Name(), fmt.Errorf("failed to count logs: %w", err))
	}

	var rows []logRow
	err := p.filtered(ctx, query).
		Order("timestamp DESC").
		Limit(query.PageSize).
		Offset(query.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, logs_core.NewProviderError(p.Name(), fmt.Errorf("failed to fetch logs: %w", err))
	}

	records := make([]logs_core.LogRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, rowToRecord(row))
	}

	logs_core.AssignRowNumbers(records, query)

	return records, total, nil
}

// filtered builds a fresh filter chain per call; count and fetch must not
// share a chain because gorm accumulates conditions on reuse.
func (p *Provider) filtered(ctx context.Context, query *logs_core.LogQuery) *gorm.DB {
	db := p.db.WithContext(ctx).Table(p.table)

	if query.Level != "" {
		db = db.Where("LOWER(level) = LOWER(?)", query.Level)
	}

	if query.UserName != "" {
		db = db.Where("LOWER(user_name) = LOWER(?)", query.UserName)
	}

	if query.SearchText != "" {
		pattern := "%" + query.SearchText + "%"
		db = db.Where(
			"(message ILIKE ? OR exception ILIKE ? OR properties ILIKE ?)",
			pattern, pattern, pattern,
		)
	}

	if query.StartDate != nil {
		db = db.Where("timestamp >= ?", *query.StartDate)
	}

	if query.EndDate != nil {
		db = db.Where("timestamp <= ?", *query.EndDate)
	}

	return db
}

func rowToRecord(row logRow) logs_core.LogRecord {
	record := logs_core.LogRecord{
		Level:        row.Level,
		Message:      row.Message,
		UserName:     row.UserName,
		Timestamp:    row.Timestamp,
		Exception:    row.Exception,
		Properties:   row.Properties,
		PropertyType: logs_core.PropertyType(row.PropertyType),
	}

	// Older sink schemas have no property_type column; infer from payload.
	if record.PropertyType == "" {
		if record.Properties != "" {
			record.PropertyType = logs_core.DetectPropertyType(record.Properties)
		} else if record.Exception != "" {
			record.PropertyType = logs_core.DetectPropertyType(record.Exception)
		}
	}

	return record
}
