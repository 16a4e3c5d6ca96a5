package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	httptransport "github.com/vrcface/server/internal/api/http"
	"github.com/vrcface/server/internal/api/http/handlers"
	"github.com/vrcface/server/internal/auth"
	"github.com/vrcface/server/internal/config"
	"github.com/vrcface/server/internal/content"
	"github.com/vrcface/server/internal/events"
	"github.com/vrcface/server/internal/observability"
	"github.com/vrcface/server/internal/persistence"
	"github.com/vrcface/server/internal/ratelimit"
	"github.com/vrcface/server/internal/repository"
	"github.com/vrcface/server/internal/saga"
	"github.com/vrcface/server/internal/service"
	"github.com/vrcface/server/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	identityRepo := repository.NewIdentityRepository(pool)
	accountRepo := repository.NewAccountRepository(pool)
	modelRepo := repository.NewModelRepository(pool)
	tagRepo := repository.NewTagRepository(pool)
	socialRepo := repository.NewSocialRepository(pool)
	statsRepo := repository.NewStatsRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	auditService := service.NewAuditService(dispatcher, logger.Named("audit"))
	worker.StartAuditWorker(auditService)

	sagas := saga.NewRunner(cfg.Saga.CompensationAttempts, cfg.Saga.CompensationBackoff(), logger, metrics)
	sagas.OnCompensationFailure(auditService.CompensationFailureHook())

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	revocations := auth.NewRedisRevocationStore(redis.Client)
	verifier := auth.NewTokenVerifier(tokens, revocations, identityRepo, cfg.Auth.VerifyTimeout(), logger)
	resolver := auth.NewAccountRoleResolver(accountRepo, logger)
	guard := auth.NewGuard(auth.NewGate(verifier, resolver, metrics))
	edge := auth.NewEdgeFilter(auth.NewRemoteVerifier(cfg.Auth.VerifyURL, cfg.Auth.VerifyTimeout()), cfg.Auth, logger)

	sanitizer := content.NewSanitizer()
	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		Identities:  identityRepo,
		Accounts:    accountRepo,
		Tokens:      tokens,
		Revocations: revocations,
		Verifier:    verifier,
		Resolver:    resolver,
		Sagas:       sagas,
	}, logger)
	accountService := service.NewAccountService(accountRepo, sanitizer, dispatcher, logger)
	modelService := service.NewModelService(modelRepo, sanitizer, dispatcher, logger)
	tagService := service.NewTagService(tagRepo, dispatcher, logger)
	socialService := service.NewSocialService(socialRepo, modelRepo, accountRepo)
	statsService := service.NewStatsService(statsRepo)

	limiter := ratelimit.NewRedisLimiter(redis.Client, cfg.RateLimit.Window(), logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.ErrorHandler(logger, metrics),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	health := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
		"postgres": pg,
		"redis":    redis,
	})
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         health,
		Auth:           handlers.NewAuthHandler(authService, logger),
		Users:          handlers.NewUsersHandler(accountService, socialService),
		Models:         handlers.NewModelsHandler(modelService, socialService),
		Tags:           handlers.NewTagsHandler(tagService),
		Admin:          handlers.NewAdminHandler(accountService, statsService),
		Guard:          guard,
		Edge:           edge,
		Metrics:        observability.Handler(registry),
		RegisterLimit:  ratelimit.Middleware(limiter, "register", cfg.RateLimit.RegisterPerWindow, logger),
		LoginLimit:     ratelimit.Middleware(limiter, "login", cfg.RateLimit.LoginPerWindow, logger),
		AdminAssetsDir: cfg.App.AdminAssetsDir,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.Shutdown(); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
