package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ulule/limiter/v3"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/todoapi/modules/account"
	"github.com/dmitrymomot/todoapi/modules/system"
	"github.com/dmitrymomot/todoapi/modules/tasks"
	"github.com/dmitrymomot/todoapi/pkg/auth"
	"github.com/dmitrymomot/todoapi/pkg/config"
	"github.com/dmitrymomot/todoapi/pkg/email"
	"github.com/dmitrymomot/todoapi/pkg/file"
	"github.com/dmitrymomot/todoapi/pkg/httpserver"
	"github.com/dmitrymomot/todoapi/pkg/jwt"
	"github.com/dmitrymomot/todoapi/pkg/logger"
	"github.com/dmitrymomot/todoapi/pkg/metrics"
	"github.com/dmitrymomot/todoapi/pkg/mongo"
	"github.com/dmitrymomot/todoapi/pkg/ratelimit"
	"github.com/dmitrymomot/todoapi/pkg/redis"
	"github.com/dmitrymomot/todoapi/pkg/requestid"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("unexpected panic", slog.Any("panic", r))
			os.Exit(1)
		}
	}()

	if err := run(); err != nil {
		slog.Error("server stopped with error", logger.Error(err))
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(
		logger.WithEnvironment(cfg.AppEnv, serviceName),
		logger.WithLevelName(cfg.LogLevel),
		logger.WithContextExtractors(requestid.LogExtractor),
	)
	slog.SetDefault(log)

	db, err := mongo.ConnectDatabase(ctx, cfg.Mongo)
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Client().Disconnect(dctx); err != nil {
			log.Warn("mongo disconnect failed", logger.Error(err))
		}
	}()
	log.Info("mongo connected", slog.String("database", cfg.Mongo.Database))

	users := account.NewStorage(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		return err
	}
	taskStore := tasks.NewMongoStorage(db)
	if err := taskStore.EnsureIndexes(ctx); err != nil {
		return err
	}

	tokens, err := jwt.NewFromConfig(cfg.JWT)
	if err != nil {
		return fmt.Errorf("jwt: %w", err)
	}

	if cfg.Google.ClientID == "" {
		log.Warn("GOOGLE_CLIENT_ID is not set, Google sign-in is disabled")
	}
	accounts := auth.NewService(users, tokens,
		auth.WithIdentityVerifier(auth.NewGoogleVerifier(cfg.Google)),
		auth.WithLogger(log),
	)

	avatars, err := file.New(ctx, cfg.Avatars)
	if err != nil {
		return fmt.Errorf("avatar storage: %w", err)
	}

	checks := map[string]system.Check{"mongo": mongo.Healthcheck(db.Client())}

	var store limiter.Store = ratelimit.NewMemoryStore()
	if cfg.Redis.Enabled() {
		rdb, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer rdb.Close()

		if store, err = ratelimit.NewRedisStore(rdb); err != nil {
			return err
		}
		checks["redis"] = redis.Healthcheck(rdb)
		log.Info("rate limiter uses redis")
	}
	rl, err := ratelimit.New(store, cfg.RateLimit, ratelimit.WithLogger(log))
	if err != nil {
		return err
	}

	m := metrics.New()

	sender, err := email.New(cfg.Email, log)
	if err != nil {
		return fmt.Errorf("email: %w", err)
	}

	router := newRouter(routerDeps{
		log:         log,
		accounts:    accounts,
		tasks:       tasks.NewService(taskStore, log),
		tokens:      tokens,
		avatars:     avatars,
		limiter:     rl,
		metrics:     m,
		cors:        cfg.CORS,
		checks:      checks,
		version:     cfg.Version,
		trustProxy:  cfg.TrustProxy,
		development: cfg.isDevelopment(),
	})

	g, gctx := errgroup.WithContext(ctx)

	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
	g.Go(guard("http server", func() error { return srv.Run(gctx, router) }))

	if cfg.Reminder.Enabled {
		reminder, err := tasks.NewReminder(taskStore, accounts, sender, cfg.Reminder,
			tasks.WithReminderLogger(log),
			tasks.WithReminderRecorder(m),
		)
		if err != nil {
			return err
		}
		g.Go(guard("reminder", func() error { return reminder.Run(gctx) }))
	}

	return g.Wait()
}

// guard converts a panic in fn into an error returned to the errgroup.
func guard(name string, fn func() error) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%s panicked: %v", name, r)
			}
		}()
		return fn()
	}
}
