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

	httptransport "github.com/fundvault/dataroom-service/internal/api/http"
	"github.com/fundvault/dataroom-service/internal/api/http/handlers"
	"github.com/fundvault/dataroom-service/internal/auth"
	"github.com/fundvault/dataroom-service/internal/config"
	"github.com/fundvault/dataroom-service/internal/email"
	"github.com/fundvault/dataroom-service/internal/events"
	"github.com/fundvault/dataroom-service/internal/flags"
	"github.com/fundvault/dataroom-service/internal/gate"
	"github.com/fundvault/dataroom-service/internal/observability"
	"github.com/fundvault/dataroom-service/internal/persistence"
	"github.com/fundvault/dataroom-service/internal/ratelimit"
	"github.com/fundvault/dataroom-service/internal/repository"
	"github.com/fundvault/dataroom-service/internal/service"
	"github.com/fundvault/dataroom-service/internal/worker"
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
	teamRepo := repository.NewTeamRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	tokenRepo := repository.NewAPITokenRepository(pool)
	magicLinkRepo := repository.NewMagicLinkRepository(pool)
	dataroomRepo := repository.NewDataroomRepository(pool)
	documentRepo := repository.NewDocumentRepository(pool)
	linkRepo := repository.NewLinkRepository(pool)
	viewerRepo := repository.NewViewerRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	investorRepo := repository.NewInvestorRepository(pool)
	bankAccountRepo := repository.NewBankAccountRepository(pool)

	authLimiter := ratelimit.New(redis.Client, "auth", cfg.RateLimit.AuthLimit, time.Duration(cfg.RateLimit.AuthWindowSec)*time.Second, logger)
	billingLimiter := ratelimit.New(redis.Client, "billing", cfg.RateLimit.BillingLimit, time.Duration(cfg.RateLimit.BillingWindowSec)*time.Second, logger)
	viewLimiter := ratelimit.New(redis.Client, "view", cfg.RateLimit.ViewLimit, time.Duration(cfg.RateLimit.ViewWindowSeconds)*time.Second, logger)

	magicLink := auth.NewMagicLink(cfg.Auth.MagicLinkSecret, cfg.App.BaseURL, cfg.Auth.MagicLinkTTLMinutes, magicLinkRepo, logger)
	unsubscribeTokens := auth.NewUnsubscribeTokens(cfg.Auth.UnsubscribeSecret, cfg.Auth.UnsubscribeTTLDays)
	mailer := email.New(cfg.SMTP, logger)

	flagSource := flags.NewHTTPSource(cfg.Flags.SourceURL, cfg.Flags.SourceKey)
	flagResolver := flags.NewResolver(flagSource, time.Duration(cfg.Flags.CacheTTLSeconds)*time.Second, logger)

	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		TeamRepo:    teamRepo,
		UserRepo:    userRepo,
		TokenRepo:   tokenRepo,
		MagicLink:   magicLink,
		AuthLimiter: authLimiter,
		Mailer:      mailer,
		Logger:      logger,
	})
	dataroomService := service.NewDataroomService(service.DataroomDependencies{
		DataroomRepo: dataroomRepo,
		DocumentRepo: documentRepo,
		LinkRepo:     linkRepo,
		ViewerRepo:   viewerRepo,
		Dispatcher:   dispatcher,
		ViewLimiter:  viewLimiter,
		MagicLink:    magicLink,
		Mailer:       mailer,
		Logger:       logger,
	})
	investorService := service.NewInvestorService(*cfg, service.InvestorDependencies{
		InvestorRepo:    investorRepo,
		BankAccountRepo: bankAccountRepo,
		KYC:             gate.NewKYC(investorRepo),
		BillingLimiter:  billingLimiter,
		Dispatcher:      dispatcher,
		Logger:          logger,
	})
	qaService := service.NewQAService(service.QADependencies{
		QuestionRepo: questionRepo,
		DataroomRepo: dataroomRepo,
		ViewerRepo:   viewerRepo,
		LinkRepo:     linkRepo,
		Flags:        flagResolver,
		Dispatcher:   dispatcher,
		Limiter:      viewLimiter,
		Logger:       logger,
	})
	notificationService := service.NewNotificationService(*cfg, service.NotificationDependencies{
		Dispatcher:  dispatcher,
		Mailer:      mailer,
		UserRepo:    userRepo,
		ViewerRepo:  viewerRepo,
		Unsubscribe: unsubscribeTokens,
		Logger:      logger,
	})
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.Validator(), userRepo)
	metrics := observability.NewMetrics(cfg.App.Name)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService, dataroomService),
		Datarooms:      handlers.NewDataroomsHandler(dataroomService, qaService),
		Investors:      handlers.NewInvestorsHandler(investorService),
		Views:          handlers.NewViewsHandler(dataroomService, qaService),
		Flags:          handlers.NewFlagsHandler(flagResolver),
		Unsubscribe:    handlers.NewUnsubscribeHandler(unsubscribeTokens, viewerRepo, userRepo),
		AuthMiddleware: authMiddleware,
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
