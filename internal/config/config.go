package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"loglens/internal/util/logger"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

var log = logger.GetLogger()

type EnvMode string

const (
	EnvModeDevelopment EnvMode = "development"
	EnvModeProduction  EnvMode = "production"
)

type Backend string

const (
	BackendPostgres   Backend = "postgres"
	BackendBadger     Backend = "badger"
	BackendOpenSearch Backend = "opensearch"
	BackendCloudWatch Backend = "cloudwatch"
)

type EnvVariables struct {
	IsTesting   bool
	EnvMode     EnvMode `env:"ENV_MODE"     env-default:"production"`
	ListenAddr  string  `env:"LISTEN_ADDR"  env-default:":8080"`
	RoutePrefix string  `env:"ROUTE_PREFIX" env-default:"logs"`
	LogBackend  Backend `env:"LOG_BACKEND"  required:"true"`

	// access control
	AuthEnabled   bool     `env:"AUTH_ENABLED"    env-default:"false"`
	AuthUsernames []string `env:"AUTH_USERNAMES"  env-separator:","`
	AuthRoles     []string `env:"AUTH_ROLES"      env-separator:","`
	AuthJwtSecret string   `env:"AUTH_JWT_SECRET"`

	// postgres
	DatabaseDsn string `env:"DATABASE_DSN"`
	LogsTable   string `env:"LOGS_TABLE" env-default:"logs"`

	// badger
	BadgerPath string `env:"BADGER_PATH"`

	// opensearch
	OpenSearchURL   string `env:"OPENSEARCH_URL"`
	OpenSearchIndex string `env:"OPENSEARCH_INDEX" env-default:"logs"`

	// cloudwatch
	AwsRegion           string   `env:"AWS_REGION"`
	AwsProfile          string   `env:"AWS_PROFILE"`
	CloudWatchLogGroups []string `env:"CLOUDWATCH_LOG_GROUPS" env-separator:","`
	CloudWatchLevelExpr string   `env:"CLOUDWATCH_LEVEL_EXPR" env-default:"level"`
	CloudWatchUserExpr  string   `env:"CLOUDWATCH_USER_EXPR"  env-default:"user"`
}

var (
	env  EnvVariables
	once sync.Once
)

func GetEnv() EnvVariables {
	once.Do(loadEnvVariables)
	return env
}

func loadEnvVariables() {
	cwd, err := os.Getwd()
	if err != nil {
		log.Warn("could not get current working directory", "error", err)
		cwd = "."
	}

	projectRoot := cwd
	for {
		if _, err := os.Stat(filepath.Join(projectRoot, "go.mod")); err == nil {
			break
		}

		parent := filepath.Dir(projectRoot)
		if parent == projectRoot {
			break
		}

		projectRoot = parent
	}

	envPaths := []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(projectRoot, ".env"),
	}

	for _, path := range envPaths {
		if err := godotenv.Load(path); err == nil {
			log.Info("Loaded .env", "path", path)
			break
		}
	}

	if err := cleanenv.ReadEnv(&env); err != nil {
		log.Error("Configuration could not be loaded", "error", err)
		os.Exit(1)
	}

	for _, arg := range os.Args {
		if strings.Contains(arg, "test") {
			env.IsTesting = true
			break
		}
	}

	if env.EnvMode != EnvModeDevelopment && env.EnvMode != EnvModeProduction {
		log.Error("ENV_MODE is invalid", "mode", env.EnvMode)
		os.Exit(1)
	}

	// The route prefix is matched as one path segment; strip slashes so
	// "logs/", "/logs" and "logs" configure the same mount point.
	env.RoutePrefix = strings.Trim(env.RoutePrefix, "/")
	if env.RoutePrefix == "" {
		log.Error("ROUTE_PREFIX must not be empty")
		os.Exit(1)
	}

	switch env.LogBackend {
	case BackendPostgres:
		if env.DatabaseDsn == "" {
			log.Error("DATABASE_DSN is required for the postgres backend")
			os.Exit(1)
		}
	case BackendBadger:
		if env.BadgerPath == "" {
			log.Error("BADGER_PATH is required for the badger backend")
			os.Exit(1)
		}
	case BackendOpenSearch:
		if env.OpenSearchURL == "" {
			log.Error("OPENSEARCH_URL is required for the opensearch backend")
			os.Exit(1)
		}
	case BackendCloudWatch:
		if len(env.CloudWatchLogGroups) == 0 {
			log.Error("CLOUDWATCH_LOG_GROUPS is required for the cloudwatch backend")
			os.Exit(1)
		}
	default:
		log.Error("LOG_BACKEND is invalid", "backend", env.LogBackend)
		os.Exit(1)
	}

	if env.AuthEnabled && env.AuthJwtSecret == "" {
		log.Error("AUTH_JWT_SECRET is required when AUTH_ENABLED is true")
		os.Exit(1)
	}

	log.Info("Environment variables loaded successfully!")
}
