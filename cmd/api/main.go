// @title                       Task Manager API
// @version                     1.0
// @description                 Authentication, authorization and task management for a multi-tenant task manager.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the JWT.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Chamindu18/task-management-system/internal/api"
	"github.com/Chamindu18/task-management-system/internal/api/handler"
	"github.com/Chamindu18/task-management-system/internal/core/ports"
	"github.com/Chamindu18/task-management-system/internal/core/security"
	"github.com/Chamindu18/task-management-system/internal/core/service"
	"github.com/Chamindu18/task-management-system/internal/infrastructure/audit"
	mongodb "github.com/Chamindu18/task-management-system/internal/infrastructure/db/mongo"
	redisdb "github.com/Chamindu18/task-management-system/internal/infrastructure/db/redis"
	"github.com/Chamindu18/task-management-system/internal/infrastructure/notify"
	"github.com/Chamindu18/task-management-system/internal/infrastructure/queue"
	"github.com/Chamindu18/task-management-system/internal/infrastructure/scheduler"
	"github.com/Chamindu18/task-management-system/internal/pkg/config"
	"github.com/Chamindu18/task-management-system/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "task-manager: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "task-manager",
	})

	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "task-manager",
	})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(dctx)
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()

	userRepo := mongodb.NewUserRepository(db)
	taskRepo := mongodb.NewTaskRepository(db)
	if err := mongodb.EnsureIndexes(ctx, userRepo, taskRepo); err != nil {
		return err
	}

	// --- Security ---
	codec, err := security.NewJWTCodec([]byte(cfg.JWT.Secret), cfg.JWT.TTL, security.WithIssuer(cfg.JWT.Issuer))
	if err != nil {
		return err
	}
	hasher := security.NewBcryptHasher(cfg.Security.BcryptCost, cfg.Security.HashConcurrency)
	revoker := redisdb.NewRevocationStore(rdb, cfg.JWT.TTL)

	// --- Audit ---
	publisher := audit.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Error().Err(err).Msg("kafka close error")
		}
	}()
	if !publisher.Enabled() {
		log.Info().Msg("KAFKA_BROKERS not set, audit events are not published")
	}

	// --- Reminders ---
	mailer, err := newMailer(cfg.SMTP, log)
	if err != nil {
		return err
	}
	dispatcher := queue.NewDispatcher(cfg.Reminder.Workers, cfg.Reminder.QueueSize, service.NewReminderSender(mailer), log)
	reminders := service.NewReminderService(taskRepo, userRepo, dispatcher, log)

	// --- Services ---
	authService := service.NewAuthService(userRepo, hasher, codec, revoker, publisher, log)
	userService := service.NewUserService(userRepo, taskRepo, hasher, revoker, publisher, log)
	taskService := service.NewTaskService(taskRepo, userRepo, log)

	if err := bootstrapAdmin(ctx, userService, cfg.Admin, log); err != nil {
		return err
	}

	e := api.NewRouter(api.Deps{
		Auth:                 authService,
		Users:                userService,
		Tasks:                taskService,
		Reminders:            reminders,
		Codec:                codec,
		Revoker:              revoker,
		RevocationFailClosed: cfg.Security.RevocationFailClosed,
		ReadyChecks: map[string]handler.Check{
			"mongodb": handler.MongoCheck(db),
			"redis":   handler.RedisCheck(rdb),
		},
		Log: log,
	})

	g, gctx := errgroup.WithContext(ctx)

	dispatcher.Start(gctx)
	g.Go(func() error {
		dispatcher.Wait()
		return nil
	})

	g.Go(func() error {
		return scheduler.NewDailyRunner(reminders, cfg.Reminder.Hour, time.UTC, log).Run(gctx)
	})

	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(sctx)
	})

	return g.Wait()
}

func newMailer(cfg config.SMTPConfig, log zerolog.Logger) (ports.Mailer, error) {
	if cfg.Addr == "" {
		log.Info().Msg("SMTP_ADDR not set, reminder emails are logged only")
		return notify.NewLogMailer(log), nil
	}
	return notify.NewSMTPMailer(notify.SMTPConfig{
		Addr:     cfg.Addr,
		From:     cfg.From,
		Username: cfg.Username,
		Password: cfg.Password,
	})
}

func bootstrapAdmin(ctx context.Context, users ports.UserService, cfg config.AdminConfig, log zerolog.Logger) error {
	if cfg.Username == "" || cfg.Password == "" {
		return nil
	}
	email := cfg.Email
	if email == "" {
		email = cfg.Username + "@task-manager.local"
	}

	user, created, err := users.EnsureAdmin(ctx, cfg.Username, email, cfg.Password)
	if err != nil {
		return err
	}
	if created {
		log.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("bootstrap admin created")
	}
	return nil
}
