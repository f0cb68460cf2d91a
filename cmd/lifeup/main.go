package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/lifeup-app/lifeup-api/internal/app"
	"github.com/lifeup-app/lifeup-api/internal/audit"
	"github.com/lifeup-app/lifeup-api/internal/auth"
	"github.com/lifeup-app/lifeup-api/internal/platform/cache"
	"github.com/lifeup-app/lifeup-api/internal/platform/db"
	"github.com/lifeup-app/lifeup-api/internal/ratelimit"
	"github.com/lifeup-app/lifeup-api/internal/roles"
	"github.com/lifeup-app/lifeup-api/internal/users"
	"github.com/lifeup-app/lifeup-api/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		// The memory backend can still serve; the redis store and the
		// queue recorder degrade with warnings until the broker is back.
		logger.Warn("connect redis", slog.Any("error", err))
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	tokens, err := auth.NewTokenIssuer(auth.TokenConfig{
		AccessSecret:  []byte(cfg.AccessSigningSecret),
		RefreshSecret: []byte(cfg.RefreshSigningSecret),
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
	})
	if err != nil {
		logger.Error("init token issuer", slog.Any("error", err))
		os.Exit(1)
	}

	roleRepo := roles.NewRepository(pool)
	resolver := roles.NewResolver(roleRepo)

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, roleRepo, tokens)
	authHandler := auth.NewHandler(logger, authService)

	usersService := users.NewService(users.NewRepository(pool), roleRepo)
	usersHandler := users.NewHandler(logger, usersService)

	rolesHandler := roles.NewHandler(logger, roles.NewServiceWithRepository(roleRepo))

	auditRepo := audit.NewRepository(pool)
	auditHandler := audit.NewHandler(logger, auditRepo)

	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()
	recorder := jobs.NewQueueRecorder(jobsClient)

	var store ratelimit.CounterStore
	if cfg.RateLimitBackend == "memory" {
		store = ratelimit.NewMemoryStore()
	} else {
		store = ratelimit.NewRedisStore(redisClient)
	}

	policies, err := app.NewPolicyTable()
	if err != nil {
		logger.Error("build policy table", slog.Any("error", err))
		os.Exit(1)
	}

	router, err := app.NewRouter(app.RouterParams{
		Config:   cfg,
		Logger:   logger,
		Policies: policies,
		Authenticator: auth.Authenticator{
			Tokens:   tokens,
			Resolver: resolver,
			Logger:   logger,
		},
		RateLimit: ratelimit.Middleware{
			Limiter: ratelimit.NewLimiter(store),
			Logger:  logger,
		},
		Recorder:     recorder,
		AuthHandler:  authHandler,
		UsersHandler: usersHandler,
		RolesHandler: rolesHandler,
		AuditHandler: auditHandler,
	})
	if err != nil {
		logger.Error("build router", slog.Any("error", err))
		os.Exit(1)
	}

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && err != context.Canceled {
		logger.Error("server exit", slog.Any("error", err))
		os.Exit(1)
	}
}
