package app

import (
	"context"
	"fmt"

	"github.com/semmidev/stowaway/internal/adapter/compressor"
	"github.com/semmidev/stowaway/internal/adapter/notifier"
	"github.com/semmidev/stowaway/internal/adapter/storage"
	"github.com/semmidev/stowaway/internal/config"
	"github.com/semmidev/stowaway/internal/domain"
	"github.com/semmidev/stowaway/internal/infrastructure/logger"
	"github.com/semmidev/stowaway/internal/infrastructure/scheduler"
	"github.com/semmidev/stowaway/internal/usecase"
)

type App struct {
	config   *config.Config
	logger   *logger.Logger
	backupUC domain.BackupExecutor
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log, err := logger.New(cfg.App.LogLevel, cfg.App.LogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	log.Infof("Starting %s", cfg.App.Name)

	store, err := initializeStore(ctx, cfg, log)
	if err != nil {
		log.Close()
		return nil, err
	}

	mail, chat := initializeSenders(cfg, log)

	backupUC := usecase.NewBackup(
		store,
		compressor.NewZip(log.Named("compressor")),
		usecase.NewNotifier(mail, chat, log.Named("notifier")),
		log,
	)

	return &App{
		config:   cfg,
		logger:   log,
		backupUC: backupUC,
	}, nil
}

func initializeStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (domain.BucketStore, error) {
	switch cfg.Storage.Backend {
	case "local":
		store, err := storage.NewLocalStore(cfg.Storage.LocalRoot)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize local storage: %w", err)
		}
		log.Infof("✓ Local bucket storage enabled (root: %s)", cfg.Storage.LocalRoot)
		return store, nil

	case "s3":
		store, err := storage.NewS3Store(ctx, &cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3: %w", err)
		}
		if cfg.Storage.Endpoint != "" {
			log.Infof("✓ S3 storage enabled (endpoint: %s)", cfg.Storage.Endpoint)
		} else {
			log.Infof("✓ AWS S3 storage enabled")
		}
		return store, nil

	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Storage.Backend)
	}
}

// initializeSenders returns nil for every channel that is not configured or
// fails to start, so notification problems never block a backup.
func initializeSenders(cfg *config.Config, log *logger.Logger) (mail, chat domain.Sender) {
	if cfg.MailEnabled() {
		email, err := notifier.NewEmail(&cfg.Mail)
		if err != nil {
			log.Warnf("Email notification disabled: %v", err)
		} else {
			mail = email
			log.Infof("✓ Email notification enabled (server: %s:%d)", cfg.Mail.Server, cfg.Mail.Port)
		}
	}

	if cfg.TelegramEnabled() {
		tg, err := notifier.NewTelegram(&cfg.Telegram)
		if err != nil {
			log.Errorf("Failed to initialize Telegram: %v", err)
		} else {
			chat = tg
			log.Infof("✓ Telegram notification enabled")
		}
	}

	return mail, chat
}

// RunOnce executes the job a single time.
func (a *App) RunOnce(ctx context.Context, job domain.BackupJob) (*domain.Report, error) {
	return a.backupUC.Execute(ctx, job)
}

// RunScheduled executes the job on every tick of spec until ctx is cancelled.
// Each execution computes its own timestamp tag.
func (a *App) RunScheduled(ctx context.Context, spec string, job domain.BackupJob) error {
	sched := scheduler.New(ctx, a.logger.Named("scheduler"))

	if err := sched.AddJob(spec, "backup of "+job.BucketName, func(ctx context.Context) error {
		_, err := a.backupUC.Execute(ctx, job)
		return err
	}); err != nil {
		return fmt.Errorf("failed to schedule backup: %w", err)
	}

	sched.Start()
	a.logger.Infof("Scheduler started: %s", spec)

	<-ctx.Done()

	a.logger.Infof("Waiting for running backup to finish...")
	sched.Stop()
	return nil
}

func (a *App) Shutdown() {
	a.logger.Infof("Shutting down...")
	a.logger.Close()
}
