package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/taskmaster/taskstore/internal/adapters/repository"
	"github.com/taskmaster/taskstore/internal/application/services"
	"github.com/taskmaster/taskstore/internal/domain/schema"
	"github.com/taskmaster/taskstore/internal/infrastructure/config"
	"github.com/taskmaster/taskstore/internal/infrastructure/logger"
	"github.com/taskmaster/taskstore/internal/infrastructure/metrics"
	"github.com/taskmaster/taskstore/internal/infrastructure/server"
)

// Version is overridden at build time with -ldflags.
var Version = "1.0.0"

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the TaskStore API server",
		Long:  "Start the TaskStore API server with all configured routes and middleware",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd)
		},
	}
}

// NewMigrateCommand creates the migrate command
func NewMigrateCommand() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Rewrite a legacy task file in the current format",
		Long:  "Load the task file and, if it still uses the legacy day-bucketed layout, persist the converted store",
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			return runMigration(cmd, dryRun)
		},
	}

	migrateCmd.Flags().Bool("dry-run", false, "Print the converted store without writing it")

	return migrateCmd
}

// NewShowCommand creates the show command
func NewShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current task store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showStore(cmd)
		},
	}
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print TaskStore version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "TaskStore v%s\n", Version)
		},
	}
}

// loadConfig reads configuration and applies the --data-file override.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if dataFile, _ := cmd.Flags().GetString("data-file"); dataFile != "" {
		cfg.Store.DataFile = dataFile
	}

	return cfg, nil
}

func runServer(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()

	var appMetrics *metrics.Metrics
	if cfg.Metrics.Enabled {
		appMetrics = metrics.New()
	}

	storeRepo := repository.NewFileStoreRepository(
		cfg.Store.DataFile,
		appLogger,
		repository.WithMetrics(appMetrics),
		repository.WithQueueSize(cfg.Store.QueueSize),
	)
	defer storeRepo.Close()

	taskService := services.NewTaskService(storeRepo, appLogger)
	srv := server.New(cfg, taskService, appLogger, appMetrics)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appLogger.Infow("Starting TaskStore API server",
		"port", cfg.Server.Port,
		"data_file", cfg.Store.DataFile,
		"environment", cfg.App.Environment,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(cfg.Server.GetAddr())
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	appLogger.Info("Server stopped")
	return nil
}

func runMigration(cmd *cobra.Command, dryRun bool) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()

	storeRepo := repository.NewFileStoreRepository(cfg.Store.DataFile, appLogger)
	defer storeRepo.Close()

	out := cmd.OutOrStdout()
	store, source := storeRepo.LoadWithSource(cmd.Context())
	if source != metrics.LoadLegacy {
		fmt.Fprintf(out, "Nothing to migrate: %s is %s\n", storeRepo.Path(), source)
		return nil
	}

	if dryRun {
		content, err := schema.Pretty(store)
		if err != nil {
			return err
		}
		_, err = out.Write(content)
		return err
	}

	if _, err := storeRepo.WriteStore(cmd.Context(), store); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Fprintf(out, "Migrated %d tasks in %s to the current format\n", len(store.AllTasks), storeRepo.Path())
	return nil
}

func showStore(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	storeRepo := repository.NewFileStoreRepository(cfg.Store.DataFile, logger.NewNop())
	defer storeRepo.Close()

	content, err := schema.Pretty(storeRepo.Load(cmd.Context()))
	if err != nil {
		return err
	}

	_, err = cmd.OutOrStdout().Write(content)
	return err
}
