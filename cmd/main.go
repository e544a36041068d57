package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"loglens/internal/config"
	"loglens/internal/features/access"
	logs_core "loglens/internal/features/logs/core"
	logs_providers "loglens/internal/features/logs/providers"
	logs_querying "loglens/internal/features/logs/querying"
	system_healthcheck "loglens/internal/features/system/healthcheck"
	"loglens/internal/features/ui"
	"loglens/internal/util/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

func main() {
	log := logger.GetLogger()
	env := config.GetEnv()

	provider, err := logs_providers.NewFromConfig(context.Background(), env, log)
	if err != nil {
		log.Error("Failed to initialize storage provider", "error", err)
		os.Exit(1)
	}

	testBackendConnection(log, provider)

	gin.SetMode(gin.ReleaseMode)
	ginApp := gin.Default()

	// The UI and API paths are matched case-insensitively.
	ginApp.RedirectFixedPath = true

	ginApp.Use(gzip.Gzip(
		gzip.DefaultCompression,
		gzip.WithExcludedExtensions([]string{".png", ".gif", ".jpeg", ".jpg", ".ico", ".svg"}),
	))

	enableCors(ginApp)
	setUpRoutes(ginApp, env, provider, log)

	startServerWithGracefulShutdown(log, ginApp)
}

func setUpRoutes(
	ginApp *gin.Engine,
	env config.EnvVariables,
	provider logs_core.LogProvider,
	log *slog.Logger,
) {
	system_healthcheck.NewHealthcheckController(provider.Name()).RegisterRoutes(ginApp)

	accessOptions := access.Options{
		Enabled:   env.AuthEnabled,
		Usernames: env.AuthUsernames,
		Roles:     env.AuthRoles,
	}

	prefixed := ginApp.Group("/" + env.RoutePrefix)
	prefixed.Use(access.IdentityMiddleware(env.AuthJwtSecret))
	logs_querying.NewLogQueryController(provider, accessOptions, log).RegisterRoutes(prefixed)

	ui.NewUIController(env.RoutePrefix, env.AuthEnabled).RegisterRoutes(ginApp)
}

func testBackendConnection(log *slog.Logger, provider logs_core.LogProvider) {
	pinger, ok := provider.(interface{ Ping(ctx context.Context) error })
	if !ok {
		return
	}

	log.Info("Testing backend connection...", "backend", provider.Name())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := pinger.Ping(ctx); err != nil {
		log.Error("Failed to connect to log backend", "backend", provider.Name(), "error", err)
		os.Exit(1)
	}

	log.Info("Backend connection test successful", "backend", provider.Name())
}

func enableCors(ginApp *gin.Engine) {
	if config.GetEnv().EnvMode == config.EnvModeDevelopment {
		ginApp.Use(cors.New(cors.Config{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{"GET", "HEAD", "OPTIONS"},
			AllowHeaders: []string{
				"Origin",
				"Content-Length",
				"Content-Type",
				"Authorization",
				"Accept",
			},
		}))
	}
}

func startServerWithGracefulShutdown(log *slog.Logger, app *gin.Engine) {
	srv := &http.Server{
		Addr:    config.GetEnv().ListenAddr,
		Handler: app,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("listen:", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("Shutdown signal received")

	// In-flight queries get 10 seconds to finish before the process exits.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown:", "error", err)
	}

	log.Info("Server gracefully stopped")
}
