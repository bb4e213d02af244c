package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/teamdesk/teamdesk-backend-go/internal/config"
	domainLeave "github.com/teamdesk/teamdesk-backend-go/internal/domain/leave"
	domainNotification "github.com/teamdesk/teamdesk-backend-go/internal/domain/notification"
	appHTTP "github.com/teamdesk/teamdesk-backend-go/internal/handler/http"
	"github.com/teamdesk/teamdesk-backend-go/internal/pkg/cron"
	"github.com/teamdesk/teamdesk-backend-go/internal/pkg/database"
	"github.com/teamdesk/teamdesk-backend-go/internal/pkg/jwt"
	"github.com/teamdesk/teamdesk-backend-go/internal/pkg/sse"
	"github.com/teamdesk/teamdesk-backend-go/internal/pkg/storage"
	"github.com/teamdesk/teamdesk-backend-go/internal/repository/postgresql"
	"github.com/teamdesk/teamdesk-backend-go/internal/service/file"
	"github.com/teamdesk/teamdesk-backend-go/internal/service/leave"
	"github.com/teamdesk/teamdesk-backend-go/internal/service/notification"
)

const version = "v1.0.0"

func main() {
	if err := run(); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})).With(slog.String("app", "teamdesk"), slog.String("env", cfg.App.Env)))

	policy, err := balancePolicy(cfg.Leave.BalanceEnforcedTypes)
	if err != nil {
		return err
	}

	dsn := cfg.DatabaseURL()
	if err := database.Migrate(dsn); err != nil {
		return err
	}

	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	userRepo := postgresql.NewUserRepository(db)
	leaveRequestRepo := postgresql.NewLeaveRequestRepository(db)
	attachmentRepo := postgresql.NewAttachmentRepository(db)
	notificationRepo := postgresql.NewNotificationRepository(db)
	transactor := postgresql.NewTransactor(db)

	fileStorage, err := storage.NewLocalStorage(cfg.Storage.BasePath, cfg.Storage.BaseURL)
	if err != nil {
		return fmt.Errorf("init local storage: %w", err)
	}
	fileService := file.NewFileService(fileStorage)

	var publisher domainNotification.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = notification.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		slog.Info("Publishing notifications to Kafka", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	}

	hub := sse.NewHub()
	notificationService := notification.NewNotificationService(notificationRepo, userRepo, hub, publisher, notification.Config{
		BatchSize:     cfg.Notification.BatchSize,
		FlushInterval: cfg.Notification.FlushInterval,
		WorkerCount:   cfg.Notification.WorkerCount,
		QueueSize:     cfg.Notification.QueueSize,
	})

	leaveService := leave.NewLeaveService(
		transactor,
		leaveRequestRepo,
		attachmentRepo,
		userRepo,
		fileService,
		notificationService,
		leave.WithBalancePolicy(policy),
	)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			Env:         cfg.App.Env,
			Version:     version,
			FrontendURL: cfg.App.FrontendURL,
			UploadsPath: cfg.Storage.BasePath,
		},
		JWTService,
		appHTTP.NewLeaveHandler(leaveService),
		appHTTP.NewNotificationHandler(notificationService, JWTService),
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := cron.NewScheduler(ctx)
	cron.NewNotificationJobs(notificationRepo, cfg.Notification.Retention).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		notificationService.Stop()
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// SSE streams end when their request contexts are cancelled
	err = srv.Shutdown(shutdownCtx)
	notificationService.Stop()
	return err
}

func balancePolicy(types []string) (domainLeave.BalancePolicy, error) {
	policy := domainLeave.BalancePolicy{}
	for _, t := range types {
		lt := domainLeave.LeaveType(t)
		if !lt.IsValid() {
			return policy, fmt.Errorf("LEAVE_BALANCE_ENFORCED_TYPES: unknown leave type %q", t)
		}
		policy.EnforcedTypes = append(policy.EnforcedTypes, lt)
	}
	return policy, nil
}
