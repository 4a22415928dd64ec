package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/intake-engine/internal/api/http"
	"github.com/spec-kit/intake-engine/internal/api/http/handlers"
	"github.com/spec-kit/intake-engine/internal/auth"
	"github.com/spec-kit/intake-engine/internal/cache"
	"github.com/spec-kit/intake-engine/internal/classifier"
	"github.com/spec-kit/intake-engine/internal/config"
	"github.com/spec-kit/intake-engine/internal/events"
	"github.com/spec-kit/intake-engine/internal/intake"
	"github.com/spec-kit/intake-engine/internal/learning"
	"github.com/spec-kit/intake-engine/internal/llm"
	"github.com/spec-kit/intake-engine/internal/observability"
	"github.com/spec-kit/intake-engine/internal/persistence"
	"github.com/spec-kit/intake-engine/internal/ranking"
	"github.com/spec-kit/intake-engine/internal/repository"
	"github.com/spec-kit/intake-engine/internal/resolution"
	"github.com/spec-kit/intake-engine/internal/service"
	"github.com/spec-kit/intake-engine/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	mongo, err := persistence.NewMongo(ctx, cfg.Mongo, logger)
	if err != nil {
		logger.Fatal("failed to connect mongodb", zap.Error(err))
	}
	defer mongo.Close()

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	staffRepo := repository.NewStaffRepository(pool)
	resolutionRepo := repository.NewResolutionRepository(pool)
	patternRepo := repository.NewPatternRepository(pool)

	knowledgeRepo := repository.NewKnowledgeRepository(pool)
	if cfg.Learning.KnowledgeBackend == "mongo" {
		if mongo.Database == nil {
			logger.Fatal("KNOWLEDGE_BACKEND=mongo requires MONGO_URI")
		}
		knowledgeRepo = repository.NewMongoKnowledgeRepository(mongo.Database)
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)

	learningPool, err := worker.NewLearningPool(cfg.Learning, logger)
	if err != nil {
		logger.Fatal("failed to start learning pool", zap.Error(err))
	}

	recorder := learning.NewRecorder(learning.Dependencies{
		Records:  resolutionRepo,
		Articles: knowledgeRepo,
		Patterns: patternRepo,
		Pool:     learningPool,
		Timeout:  cfg.Learning.Timeout(),
		Logger:   logger,
	})

	consumer, ranker := buildIntelligence(cfg, redis, knowledgeRepo, resolutionRepo, logger)

	intakeService := service.NewIntakeService(service.IntakeDependencies{
		Normalizer: intake.NewRegistry(logger),
		Classifier: consumer,
		Ranker:     ranker,
		Executor:   resolution.NewExecutor(logger),
		Recorder:   recorder,
		Tickets:    ticketRepo,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Policy:     resolution.NewPolicy(cfg.Resolution.AutoResolveCategories, cfg.Resolution.MinClassification, cfg.Resolution.MinSolution),
		Logger:     logger,
	})
	knowledgeService := service.NewKnowledgeService(service.KnowledgeDependencies{
		Articles: knowledgeRepo,
		Trends:   resolutionRepo,
		Patterns: patternRepo,
		Logger:   logger,
	})
	resolutionService := service.NewResolutionService(service.ResolutionDependencies{
		Recorder:   recorder,
		Tickets:    ticketRepo,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	authService := service.NewAuthService(*cfg, staffRepo, logger)
	if err := authService.EnsureBootstrapAdmin(ctx); err != nil {
		logger.Fatal("failed to bootstrap admin", zap.Error(err))
	}
	if cfg.Seed.KnowledgeFile != "" {
		if _, err := knowledgeService.SeedFromFile(ctx, cfg.Seed.KnowledgeFile); err != nil {
			logger.Error("knowledge seed failed", zap.Error(err))
		}
	}

	background, err := worker.StartBackground(worker.BackgroundConfig{
		Notifications: notificationService,
		Sweep:         worker.NewPatternSweep(resolutionRepo, recorder, logger),
		SweepSchedule: cfg.Learning.PatternSweepCron,
		Pool:          learningPool,
		Logger:        logger,
	})
	if err != nil {
		logger.Fatal("failed to start background workers", zap.Error(err))
	}

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), staffRepo)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	dependencies := map[string]handlers.Pinger{"postgres": pg, "redis": redis}
	if mongo.Client != nil {
		dependencies["mongodb"] = mongo
	}

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, dependencies),
		Intake:         handlers.NewIntakeHandler(intakeService),
		Knowledge:      handlers.NewKnowledgeHandler(knowledgeService),
		Insights:       handlers.NewInsightsHandler(knowledgeService, cfg.Learning.TrendingDays),
		Resolutions:    handlers.NewResolutionsHandler(resolutionService),
		Staff:          handlers.NewStaffHandler(authService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.ShutdownWithTimeout(10 * time.Second)
	background.Stop(10 * time.Second)
}

// buildIntelligence wires the classifier and ranker around the configured
// model provider. Without a provider both run on their keyword fallbacks.
// A model call and its single retry share the classifier timeout.
const (
	modelRetries = 1
	modelBackoff = 200 * time.Millisecond
)

func buildIntelligence(cfg *config.Config, redis *persistence.Redis, knowledge repository.KnowledgeRepository, history repository.ResolutionRepository, logger *zap.Logger) (*classifier.Consumer, *ranking.Ranker) {
	completer, err := llm.NewCompleter(cfg.LLM, logger)
	if err != nil {
		logger.Fatal("failed to init llm provider", zap.Error(err))
	}

	classifierDeps := classifier.Dependencies{
		Cache:   cache.NewClassificationCache(redis.Client, cfg.Classifier.CacheTTL(), logger),
		Similar: history,
		Timeout: cfg.Classifier.Timeout(),
		Logger:  logger,
	}
	rankingDeps := ranking.Dependencies{
		Knowledge: knowledge,
		History:   history,
		Timeout:   cfg.Classifier.Timeout(),
		Logger:    logger,
	}

	if completer.Name() != "none" {
		guarded := llm.NewGuarded(completer, llm.GuardOptions{
			Timeout: llm.AttemptTimeout(cfg.Classifier.Timeout(), modelRetries, modelBackoff),
			Retries: modelRetries,
			Backoff: modelBackoff,
			Breaker: llm.NewCircuitBreaker(cfg.Classifier.BreakerThreshold, cfg.Classifier.BreakerReset()),
		}, logger)
		classifierDeps.Provider = classifier.NewModelClassifier(guarded)
		rankingDeps.Generator = ranking.NewModelCandidateGenerator(guarded)
		logger.Info("model provider enabled", zap.String("provider", completer.Name()))
	}

	if embedder, ok := completer.(llm.Embedder); ok && cfg.LLM.EmbeddingModel != "" {
		rankingDeps.Embedder = cache.NewCachedEmbedder(embedder, redis.Client, cfg.Classifier.EmbeddingCacheTTL(), logger)
	}

	return classifier.NewConsumer(classifierDeps), ranking.NewRanker(rankingDeps)
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
