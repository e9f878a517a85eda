package cmd

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

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/dealscout/deal-engine/internal/api/handlers"
	"github.com/dealscout/deal-engine/internal/api/middleware"
	"github.com/dealscout/deal-engine/internal/catalog"
	"github.com/dealscout/deal-engine/internal/config"
	"github.com/dealscout/deal-engine/internal/deals"
	"github.com/dealscout/deal-engine/internal/engine"
	"github.com/dealscout/deal-engine/internal/enhance"
	"github.com/dealscout/deal-engine/internal/market"
	"github.com/dealscout/deal-engine/internal/notify"
	"github.com/dealscout/deal-engine/internal/store"
	"github.com/dealscout/deal-engine/internal/tracing"
	"github.com/dealscout/deal-engine/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server and scheduler",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	ctx := context.Background()

	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing)
	if err != nil {
		return fmt.Errorf("setting up tracing: %w", err)
	}

	st, err := store.NewPostgresStore(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer st.Close()

	cat := catalog.NewStore()

	estimator := market.NewEstimator(st,
		market.WithTimeout(cfg.Scoring.MarketQueryTimeout),
		market.WithLogger(logger.Component(log, "market")),
	)

	enhancer, err := buildEnhancer(cfg)
	if err != nil {
		return err
	}

	eng := engine.NewEngine(cat, estimator,
		engine.WithStore(st),
		engine.WithEnhancer(enhancer),
		engine.WithRescoreWorkers(cfg.Scoring.RescoreWorkers),
		engine.WithLogger(logger.Component(log, "engine")),
	)

	selector := deals.NewSelector(st, eng,
		deals.WithLogger(logger.Component(log, "deals")),
	)

	notifier := buildNotifier(cfg, log)

	sched, err := engine.NewScheduler(
		eng,
		selector,
		notifier,
		cfg.Schedule.RescoreInterval,
		cfg.Scoring.RescoreBatchLimit,
		cfg.Schedule.DealOfTheDay,
		cat.Categories(),
		logger.Component(log, "scheduler"),
	)
	if err != nil {
		return fmt.Errorf("building scheduler: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	e.Use(middleware.Metrics())
	e.Use(middleware.RequestLog(logger.Component(log, "http")))
	e.Use(middleware.Recovery(log))

	health := handlers.NewHealthHandler(st)
	e.GET("/healthz", health.Healthz)
	e.GET("/readyz", health.Readyz)

	// Prometheus metrics.
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := humaecho.New(e, huma.DefaultConfig("Deal Engine API", Version))
	handlers.RegisterScoreRoutes(api, handlers.NewScoreHandler(eng))
	handlers.RegisterCategoryRoutes(api, handlers.NewCategoriesHandler(cat))
	handlers.RegisterDealRoutes(api, handlers.NewDealsHandler(selector))
	handlers.RegisterListingRoutes(api, handlers.NewListingsHandler(st))
	handlers.RegisterRescoreRoutes(api, handlers.NewRescoreHandler(eng))
	handlers.RegisterJobRoutes(api, handlers.NewJobsHandler(st))

	sched.Start()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info("starting server", "addr", addr)

	// Start server in a goroutine.
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "err", err)
		}
	}()

	// Wait for interrupt signal.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(stopCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	// Let in-flight cron jobs drain.
	select {
	case <-sched.Stop().Done():
	case <-stopCtx.Done():
		log.Warn("scheduler jobs still running at shutdown deadline")
	}

	if shutdownTracing != nil {
		if err := shutdownTracing(stopCtx); err != nil {
			log.Warn("tracing shutdown failed", "err", err)
		}
	}

	log.Info("server stopped")
	return nil
}

func buildEnhancer(cfg *config.Config) (enhance.Enhancer, error) {
	switch cfg.Enhancer.Backend {
	case "", "none":
		return enhance.NewNoop(), nil
	case "openai_compat":
		return enhance.NewOpenAICompat(
			cfg.Enhancer.Endpoint,
			cfg.Enhancer.Model,
			enhance.WithRateLimit(cfg.Enhancer.CallsPerMinute),
			enhance.WithHTTPClient(&http.Client{Timeout: cfg.Enhancer.Timeout}),
		), nil
	default:
		return nil, fmt.Errorf("unknown enhancer backend: %q", cfg.Enhancer.Backend)
	}
}

func buildNotifier(cfg *config.Config, log *slog.Logger) notify.Notifier {
	if cfg.Notifications.Discord.Enabled {
		return notify.NewDiscordNotifier(cfg.Notifications.Discord.WebhookURL)
	}
	return notify.NewNoOpNotifier(logger.Component(log, "notify"))
}
