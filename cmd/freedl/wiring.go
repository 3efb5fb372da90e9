package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/yourusername/freedl-go/internal/app"
	"github.com/yourusername/freedl-go/internal/domain"
	"github.com/yourusername/freedl-go/internal/infrastructure"
	"github.com/yourusername/freedl-go/pkg/logger"
)

// application holds everything a command needs, wired from config
type application struct {
	config   *domain.Config
	log      *zap.Logger
	multiLog *logger.MultiLogger
	repo     *infrastructure.SQLiteOperationRepository
	runner   *app.TaskRunner
	session  *app.Session
}

// history returns the operation repository, or nil when history is disabled
func (a *application) history() domain.OperationRepository {
	if a.repo == nil {
		return nil
	}
	return a.repo
}

// newApplication loads config and wires the session over the yt-dlp
// backend. dispatcher decides where completion callbacks run.
func newApplication(dispatcherFor func(log *zap.Logger) app.Dispatcher) (*application, error) {
	config, err := app.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:      config.Logging.Level,
		Format:     config.Logging.Format,
		OutputPath: config.Logging.OutputPath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logsDir := config.Download.LogsDir()
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	// Categorized event logs: operation lifecycle and errors
	multiLog, err := logger.NewMultiLogger(logger.MultiLoggerConfig{
		Level:   config.Logging.Level,
		LogsDir: logsDir,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize event logger: %w", err)
	}

	a := &application{
		config:   config,
		log:      log,
		multiLog: multiLog,
	}

	if config.History.Enabled {
		repo, err := infrastructure.NewSQLiteOperationRepository(config.History.DatabasePath)
		if err != nil {
			multiLog.Close()
			return nil, fmt.Errorf("failed to initialize history: %w", err)
		}
		a.repo = repo
	}

	backend := infrastructure.NewYTDLPBackend(&config.Backend, logsDir, log)
	notifier := infrastructure.NewNotificationService(&config.Notification, log)

	a.runner = app.NewTaskRunner(dispatcherFor(log), config.Backend.Timeout, log)
	a.session = app.NewSession(
		a.runner,
		app.NewFormatResolver(backend, log),
		app.NewDownloadOrchestrator(backend, config.Download.OutputTemplate(), log),
		app.SessionOptions{
			StrictFormats: config.Download.StrictFormats,
			History:       a.history(),
			Notifier:      notifier,
			EventLogger:   multiLog,
			Logger:        log,
		},
	)

	return a, nil
}

func inlineDispatcher(log *zap.Logger) app.Dispatcher {
	return app.InlineDispatcher{Logger: log}
}

func serialDispatcher(log *zap.Logger) app.Dispatcher {
	return app.NewSerialDispatcher(64, log)
}

// Close stops the runner and releases logs and the database
func (a *application) Close() {
	if a.runner.IsRunning() {
		if err := a.runner.Stop(); err != nil {
			a.log.Warn("Error stopping task runner", zap.Error(err))
		}
	}
	if a.repo != nil {
		if err := a.repo.Close(); err != nil {
			a.log.Warn("Error closing history database", zap.Error(err))
		}
	}
	a.multiLog.Close()
	a.log.Sync()
}
