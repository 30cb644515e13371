package internal

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	cache_adapter "real-estate-system/internal/adapters/cache"
	"real-estate-system/internal/adapters/geoapify"
	logger_adapter "real-estate-system/internal/adapters/logger"
	memory_adapter "real-estate-system/internal/adapters/memory"
	"real-estate-system/internal/adapters/notifier"
	postgres_adapter "real-estate-system/internal/adapters/postgres"
	rabbitmq_adapter "real-estate-system/internal/adapters/rabbitmq"
	redis_adapter "real-estate-system/internal/adapters/redis"
	"real-estate-system/internal/adapters/rest"
	"real-estate-system/internal/adapters/stream"
	"real-estate-system/internal/configs"
	"real-estate-system/internal/constants"
	"real-estate-system/internal/contracts"
	"real-estate-system/internal/core/port"
	"real-estate-system/internal/core/usecase"
	fluentlogger "real-estate-system/pkg/fluent_logger"
	"real-estate-system/pkg/postgres"
	"real-estate-system/pkg/rabbitmq/rabbitmq_common"
	"real-estate-system/pkg/rabbitmq/rabbitmq_consumer"
	"real-estate-system/pkg/rabbitmq/rabbitmq_producer"
	pkgredis "real-estate-system/pkg/redis"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	config    *configs.AppConfig
	apiServer *rest.Server

	sessions    *cache_adapter.SessionRegistry
	sseNotifier *notifier.SSENotifier

	// заполнены только при включенном RabbitMQ
	connManager         *rabbitmq_common.ConnectionManager
	deltaProducer       *rabbitmq_producer.Publisher
	streamRouter        *stream.Router
	toolResultsListener port.EventListenerPort

	dbPool      *pgxpool.Pool
	redisClient *goredis.Client

	logger       port.LoggerPort
	fluentClient *fluent.Fluent
}

func NewApp() (*App, error) {
	appConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}

	app := &App{config: appConfig}

	// --- ЛОГГЕРЫ ---
	var activeLoggers []port.LoggerPort

	stdoutLogger := logger_adapter.NewSlogAdapter(logger_adapter.SlogConfig{
		Level:    parseLogLevel(appConfig.StdoutLogger.Level),
		UseColor: appConfig.StdoutLogger.UseColor,
	})
	activeLoggers = append(activeLoggers, stdoutLogger)

	if appConfig.FluentBit.Enabled {
		fluentClient, err := fluentlogger.NewClient(fluentlogger.Config{
			Host:      appConfig.FluentBit.Host,
			Port:      appConfig.FluentBit.Port,
			TagPrefix: appConfig.AppName,
			Async:     true,
		})
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit client", err, nil)
			return nil, fmt.Errorf("failed to create fluentbit client: %w", err)
		}
		app.fluentClient = fluentClient

		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(fluentClient, appConfig.AppName, parseLogLevel(appConfig.FluentBit.Level))
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit adapter", err, nil)
			app.closeResources()
			return nil, err
		}
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	multiLogger, err := logger_adapter.NewMultiloggerAdapter(activeLoggers...)
	if err != nil {
		app.closeResources()
		return nil, fmt.Errorf("failed to create multi-logger: %w", err)
	}

	baseLogger := multiLogger.WithFields(port.Fields{"service_name": appConfig.AppName})
	appLogger := baseLogger.WithFields(port.Fields{"component": "app"})
	app.logger = appLogger
	appLogger.Info("Logger system initialized", port.Fields{
		"active_loggers": len(activeLoggers), "fluent_enabled": appConfig.FluentBit.Enabled,
	})

	// --- ХРАНИЛИЩЕ ВЕРСИЙ ---
	repo, err := app.newDocumentRepository(appConfig)
	if err != nil {
		appLogger.Error("Failed to initialize document storage", err, port.Fields{"backend": appConfig.Storage})
		app.closeResources()
		return nil, err
	}
	appLogger.Info("Document storage initialized", port.Fields{"backend": appConfig.Storage})

	// --- ДОСТАВКА СОБЫТИЙ ---
	app.sseNotifier = notifier.NewSSENotifier(baseLogger)
	var deltaNotifier port.DeltaNotifierPort = app.sseNotifier

	if appConfig.RabbitMQ.Enabled {
		connManager, err := rabbitmq_common.NewConnectionManager(
			rabbitmq_common.Config{URL: appConfig.RabbitMQ.URL},
			rabbitmq_adapter.NewPkgLoggerBridge(baseLogger.WithFields(port.Fields{"component": "rabbitmq_conn_manager"})),
		)
		if err != nil {
			appLogger.Error("Failed to create connection manager", err, nil)
			app.closeResources()
			return nil, fmt.Errorf("failed to create connection manager: %w", err)
		}
		app.connManager = connManager

		producer, err := rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
			Config:          rabbitmq_common.Config{URL: appConfig.RabbitMQ.URL},
			ExchangeName:    constants.MainExchange,
			ExchangeType:    "topic",
			DeclareExchange: true,
			Logger:          rabbitmq_adapter.NewPkgLoggerBridge(baseLogger.WithFields(port.Fields{"component": "rabbitmq_publisher"})),
		}, connManager)
		if err != nil {
			appLogger.Error("Failed to create delta publisher", err, nil)
			app.closeResources()
			return nil, fmt.Errorf("failed to create delta publisher: %w", err)
		}
		app.deltaProducer = producer

		deltaNotifier = notifier.NewMultiNotifier(
			app.sseNotifier,
			rabbitmq_adapter.NewDeltaPublisherAdapter(producer, constants.RoutingKeyRealEstateDelta),
		)
		appLogger.Info("RabbitMQ delta publisher initialized", nil)
	}

	// --- USE CASES ---
	ingestUC := usecase.NewIngestListingsUseCase(repo, deltaNotifier, contracts.NewListingsContentValidator())
	getDocumentUC := usecase.NewGetDocumentUseCase(repo)
	navigateUC := usecase.NewNavigateDocumentUseCase(getDocumentUC)

	geo, err := geoapify.NewGeoapifyAdapter(geoapify.Config{
		BaseURL:        appConfig.Geoapify.BaseURL,
		APIKey:         appConfig.Geoapify.APIKey,
		Parallelism:    appConfig.Geoapify.Parallelism,
		RandomDelay:    appConfig.Geoapify.RandomDelay,
		RequestTimeout: appConfig.Geoapify.RequestTimeout,
	})
	if err != nil {
		appLogger.Error("Failed to create geoapify adapter", err, nil)
		app.closeResources()
		return nil, err
	}
	resolver := usecase.NewBoundaryResolver(geo, usecase.DefaultBoundaryTiers(geo, appConfig.Geoapify.BoundaryLevels))

	app.sessions = cache_adapter.NewSessionRegistry(appConfig.Boundary.SessionTTL, baseLogger)
	resolveUC := usecase.NewResolveBoundaryUseCase(resolver, app.sessions)
	resolveBatchUC := usecase.NewResolveBoundariesUseCase(resolveUC, appConfig.Boundary.BatchConcurrency)
	appLogger.Info("All use cases initialized", nil)

	// --- ВХОДЯЩИЕ СОБЫТИЯ ИЗ БРОКЕРА ---
	if app.connManager != nil {
		app.streamRouter = stream.NewRouter(ingestUC, stream.RouterConfig{
			IdleTimeout: appConfig.Ingestion.StreamIdleTimeout,
		}, baseLogger)

		consumerCfg := rabbitmq_consumer.ConsumerConfig{
			Config:        rabbitmq_common.Config{URL: appConfig.RabbitMQ.URL},
			QueueName:     constants.QueueToolResults,
			Durable:       true,
			Exchange:      constants.MainExchange,
			ExchangeType:  "topic",
			RoutingKey:    constants.RoutingKeyToolResult,
			PrefetchCount: 1,
			ConsumerTag:   "artifact-tool-results-consumer",

			EnableRetryMechanism: true,
			RetryExchange:        constants.RetryExchange,
			RetryQueue:           constants.WaitQueue,
			RetryTTL:             constants.RetryTTL,
			FinalDLXExchange:     constants.FinalDLXExchange,
			FinalDLQ:             constants.FinalDLQ,
			FinalDLQRoutingKey:   constants.FinalDLQRoutingKey,
			MaxRetries:           constants.MaxRetries,
		}

		listener, err := rabbitmq_adapter.NewToolResultsConsumerAdapter(consumerCfg, app.streamRouter, baseLogger, app.connManager)
		if err != nil {
			appLogger.Error("Failed to create tool results consumer", err, nil)
			app.closeResources()
			return nil, fmt.Errorf("failed to create tool results consumer: %w", err)
		}
		app.toolResultsListener = listener
		appLogger.Info("Tool results listener initialized", nil)
	}

	// --- REST ---
	router := rest.NewRouter(
		rest.NewDocumentHandler(ingestUC, getDocumentUC, navigateUC, app.sseNotifier),
		rest.NewBoundaryHandler(resolveUC, resolveBatchUC),
		appConfig.Rest.CorsAllowedOrigins,
		baseLogger,
	)
	app.apiServer = rest.NewServer(appConfig.Rest.Port, router, baseLogger)
	appLogger.Info("REST API server configured", nil)

	return app, nil
}

func (a *App) newDocumentRepository(cfg *configs.AppConfig) (port.DocumentRepositoryPort, error) {
	switch cfg.Storage {
	case configs.StoragePostgres:
		pool, err := postgres.NewClient(context.Background(), postgres.Config{DatabaseURL: cfg.Database.URL})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		a.dbPool = pool
		return postgres_adapter.NewPostgresDocumentRepository(pool)

	case configs.StorageRedis:
		client, err := pkgredis.NewClient(context.Background(), pkgredis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		a.redisClient = client
		return redis_adapter.NewRedisDocumentRepository(client, cfg.AppName, 0)

	default:
		return memory_adapter.NewMemoryDocumentRepository(), nil
	}
}

func (a *App) Run() error {
	appCtx, cancelApp := context.WithCancel(context.Background())
	defer cancelApp()

	var wg sync.WaitGroup
	errorsCh := make(chan error, 3)

	a.logger.Info("Application is starting", nil)

	wg.Add(1)
	go func() {
		defer wg.Done()
		a.sessions.Run(appCtx)
	}()

	go func() {
		if err := a.apiServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errorsCh <- fmt.Errorf("HTTP server start error: %w", err)
		}
	}()

	if a.toolResultsListener != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			listenerLogger := a.logger.WithFields(port.Fields{"listener": "Tool Results Listener"})
			listenerLogger.Info("Starting listener", nil)
			if err := a.toolResultsListener.Start(appCtx); err != nil {
				listenerLogger.Error("Listener stopped with an unexpected error", err, nil)
				errorsCh <- fmt.Errorf("tool results listener error: %w", err)
				return
			}
			listenerLogger.Info("Listener stopped gracefully", nil)
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	a.logger.Info("Application running. Waiting for signals or component error", nil)
	var runErr error
	select {
	case receivedSignal := <-quit:
		a.logger.Warn("Received OS signal, shutting down", port.Fields{"signal": receivedSignal.String()})
	case err := <-errorsCh:
		a.logger.Error("A critical component failed, shutting down", err, nil)
		runErr = err
	}

	a.logger.Info("Shutdown sequence initiated", nil)
	cancelApp()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := a.apiServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("Error during API server shutdown", err, nil)
	}

	wg.Wait()
	a.logger.Info("All background processes finished", nil)

	a.closeResources()
	return runErr
}

// closeResources закрывает все, что успели создать; порядок обратный созданию
func (a *App) closeResources() {
	logErr := func(msg string, err error) {
		if err == nil {
			return
		}
		if a.logger != nil {
			a.logger.Error(msg, err, nil)
			return
		}
		log.Printf("ERROR: %s: %v", msg, err)
	}

	if a.toolResultsListener != nil {
		logErr("Error closing tool results listener", a.toolResultsListener.Close())
	}
	if a.streamRouter != nil {
		logErr("Error closing stream router", a.streamRouter.Close())
	}
	if a.deltaProducer != nil {
		logErr("Error closing delta publisher", a.deltaProducer.Close())
	}
	if a.connManager != nil {
		logErr("Error closing RabbitMQ connection", a.connManager.Close())
	}
	if a.sseNotifier != nil {
		logErr("Error closing SSE notifier", a.sseNotifier.Close())
	}
	if a.dbPool != nil {
		a.dbPool.Close()
	}
	if a.redisClient != nil {
		logErr("Error closing Redis client", a.redisClient.Close())
	}

	if a.logger != nil {
		a.logger.Info("Application shut down gracefully", nil)
	}
	if a.fluentClient != nil {
		if err := a.fluentClient.Close(); err != nil {
			log.Printf("ERROR: Error closing fluent client: %v\n", err)
		}
	}
}

func parseLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		log.Printf("Warning: Unknown log level '%s'. Defaulting to 'info'.", levelStr)
		return slog.LevelInfo
	}
}
