package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/pennypilot/pennypilot-backend/internal/adapter/cache"
	"github.com/pennypilot/pennypilot-backend/internal/adapter/event"
	httpadapter "github.com/pennypilot/pennypilot-backend/internal/adapter/http"
	"github.com/pennypilot/pennypilot-backend/internal/adapter/repository/postgres"
	"github.com/pennypilot/pennypilot-backend/internal/config"
	"github.com/pennypilot/pennypilot-backend/internal/usecase/budget"
	"github.com/pennypilot/pennypilot-backend/internal/usecase/category"
	"github.com/pennypilot/pennypilot-backend/internal/usecase/dashboard"
	"github.com/pennypilot/pennypilot-backend/internal/usecase/goal"
	"github.com/pennypilot/pennypilot-backend/internal/usecase/notification"
	"github.com/pennypilot/pennypilot-backend/internal/usecase/seeder"
	"github.com/pennypilot/pennypilot-backend/internal/usecase/tracker"
	"github.com/pennypilot/pennypilot-backend/internal/usecase/transaction"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// .env is for local development only; missing file is fine
	_ = godotenv.Load()

	cfg := config.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("configuration validation failed")
	}

	// 1. Setup database
	db, err := postgres.NewDB(cfg.DBConnString())
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()

	if err := postgres.RunMigrations(db); err != nil {
		log.WithError(err).Fatal("failed to run migrations")
	}
	log.Info("database migrations applied")

	// 2. Initialize repositories (Postgres)
	budgetRepo := postgres.NewBudgetRepository(db)
	categoryRepo := postgres.NewCategoryRepository(db)
	transactionRepo := postgres.NewTransactionRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	goalRepo := postgres.NewGoalRepository(db)

	// 3. Optional adapters: alert publisher and summary cache
	var alerts tracker.AlertPublisher = tracker.NopAlertPublisher{}
	if cfg.AMQPURL != "" {
		publisher, err := event.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to AMQP broker")
		}
		defer publisher.Close()
		alerts = publisher
		log.WithField("exchange", cfg.AMQPExchange).Info("budget alert publishing enabled")
	} else {
		log.Info("budget alert publishing disabled, no AMQP_URL provided")
	}

	var summaryCache *cache.SummaryCache
	if cfg.RedisAddr != "" {
		summaryCache, err = cache.NewSummaryCache(cfg.RedisAddr, cfg.SummaryCacheTTL, log)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to redis")
		}
		defer summaryCache.Close()
		log.WithField("ttl", cfg.SummaryCacheTTL).Info("dashboard summary caching enabled")
	} else {
		log.Info("dashboard summary caching disabled, no REDIS_ADDR provided")
	}

	// 4. Initialize services (use cases).
	// The nil-interface dance keeps the services' cache fields truly nil
	// when Redis is off.
	var dashboardCache dashboard.SummaryCache
	var invalidator transaction.SummaryInvalidator
	if summaryCache != nil {
		dashboardCache = summaryCache
		invalidator = summaryCache
	}

	trackerService := tracker.NewService(budgetRepo, notificationRepo, alerts, log)
	budgetService := budget.NewService(budgetRepo, categoryRepo, notificationRepo, log)
	categoryService := category.NewService(categoryRepo)
	transactionService := transaction.NewService(transactionRepo, categoryRepo, trackerService, invalidator)
	goalService := goal.NewService(goalRepo, notificationRepo, log)
	notificationService := notification.NewService(notificationRepo)
	dashboardService := dashboard.NewService(transactionRepo, budgetRepo, dashboardCache)
	categorySeeder := seeder.NewCategorySeeder(categoryRepo)

	// 5. Start REST server with graceful shutdown
	server := httpadapter.NewServer(
		budgetService,
		categoryService,
		transactionService,
		goalService,
		notificationService,
		dashboardService,
		categorySeeder,
		log,
	)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: server.Router(cfg.APIToken, cfg.CORSOrigins),
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(sigCtx)
	g.Go(func() error {
		log.WithField("port", cfg.Port).Info("REST server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down gracefully")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.WithError(err).Fatal("server stopped unexpectedly")
	}
	log.Info("server stopped")
}
