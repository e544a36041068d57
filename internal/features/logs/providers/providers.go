package logs_providers

import (
	"context"
	"fmt"
	"log/slog"

	"loglens/internal/config"
	logs_core "loglens/internal/features/logs/core"
	badger_provider "loglens/internal/features/logs/providers/badger"
	cloudwatch_provider "loglens/internal/features/logs/providers/cloudwatch"
	opensearch_provider "loglens/internal/features/logs/providers/opensearch"
	postgres_provider "loglens/internal/features/logs/providers/postgres"
)

// NewFromConfig constructs the single provider this deployment targets.
// Backend selection happens once at process start, never at request time.
func NewFromConfig(
	ctx context.Context,
	env config.EnvVariables,
	logger *slog.Logger,
) (logs_core.LogProvider, error) {
	switch env.LogBackend {
	case config.BackendPostgres:
		return postgres_provider.NewProvider(env.DatabaseDsn, env.LogsTable, logger)
	case config.BackendBadger:
		return badger_provider.NewProvider(env.BadgerPath, logger)
	case config.BackendOpenSearch:
		return opensearch_provider.NewProvider(env.OpenSearchURL, env.OpenSearchIndex, logger), nil
	case config.BackendCloudWatch:
		return cloudwatch_provider.NewProvider(
			ctx,
			env.AwsRegion,
			env.AwsProfile,
			env.CloudWatchLogGroups,
			env.CloudWatchLevelExpr,
			env.CloudWatchUserExpr,
			logger,
		)
	default:
		return nil, fmt.Errorf("unknown log backend %q", env.LogBackend)
	}
}
