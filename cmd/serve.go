package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/imyashkale/helmwizard/internal/config"
	"github.com/imyashkale/helmwizard/internal/database"
	"github.com/imyashkale/helmwizard/internal/handlers"
	"github.com/imyashkale/helmwizard/internal/logger"
	"github.com/imyashkale/helmwizard/internal/middleware"
	"github.com/imyashkale/helmwizard/internal/repository"
	"github.com/imyashkale/helmwizard/internal/router"
	"github.com/imyashkale/helmwizard/internal/services"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load application configuration
	cfg := config.New()
	logger.Init(cfg.LogLevel)
	gin.SetMode(gin.ReleaseMode)
	logger.Info("Configuration loaded successfully")

	connRepo, wizardRepo, err := newRepositories(ctx, cfg)
	if err != nil {
		return err
	}

	githubService := services.NewGitHubService(cfg.GitHubAPIURL, cfg.RepoCheckTTL)
	vault := services.NewTokenVault(cfg.TokenEncryptionKey)
	connectionService := services.NewConnectionService(connRepo, githubService, vault)
	wizardService := services.NewWizardService(wizardRepo, cfg.DefaultTemplate)
	templateService := services.NewTemplateService(githubService, connectionService, wizardService, cfg.TemplateFiles)
	logger.Info("Services initialized")

	monitor := services.NewTokenMonitor(connRepo, connectionService, cfg.TokenCheckInterval, cfg.WorkerCount)
	monitor.Start(ctx)

	r := router.Setup(router.Handlers{
		Health:      handlers.NewHealthHandler(),
		Connections: handlers.NewConnectionHandler(connectionService),
		GitHub:      handlers.NewGitHubHandler(connectionService, githubService),
		Wizard:      handlers.NewWizardHandler(wizardService),
		Template:    handlers.NewTemplateHandler(templateService),
	}, middleware.NewAuthMiddleware(cfg.AuthMode, middleware.NewAuth0Config(cfg.Auth0Domain, cfg.Auth0Audience)))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.WithFields(map[string]interface{}{
			"port":      cfg.Port,
			"auth_mode": cfg.AuthMode,
			"storage":   cfg.StorageBackend,
		}).Info("Starting server")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		monitor.Stop()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server shutdown failed")
	}

	// Let queued token checks finish
	monitor.Stop()
	logger.Info("Server stopped")
	return nil
}

// newRepositories builds the configured storage backend
func newRepositories(ctx context.Context, cfg *config.Config) (repository.ConnectionRepository, repository.WizardRepository, error) {
	if cfg.StorageBackend == config.StorageMemory {
		logger.Warn("Using in-memory storage, data is lost on restart")
		return repository.NewMemoryConnectionRepository(), repository.NewMemoryWizardRepository(), nil
	}

	dbConfig := database.NewConfig(cfg)
	logger.WithFields(map[string]interface{}{
		"region":            dbConfig.Region,
		"connections_table": dbConfig.ConnectionsTable,
		"wizard_table":      dbConfig.WizardTable,
	}).Info("Initializing DynamoDB client")

	dbClient, err := database.NewClient(ctx, dbConfig)
	if err != nil {
		return nil, nil, err
	}

	connRepo := repository.NewConnectionRepository(database.NewConnectionsDB(dbClient, dbConfig.ConnectionsTable))
	wizardRepo := repository.NewWizardRepository(database.NewWizardDB(dbClient, dbConfig.WizardTable))
	logger.Info("Repositories initialized with DynamoDB backend")
	return connRepo, wizardRepo, nil
}
