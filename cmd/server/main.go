package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	// Application
	"github.com/dreschagin/activity-globe/internal/application/port"
	"github.com/dreschagin/activity-globe/internal/application/usecase"

	// Domain
	"github.com/dreschagin/activity-globe/internal/domain/service"

	// Infrastructure
	redisCache "github.com/dreschagin/activity-globe/internal/infrastructure/cache/redis"
	natsPublisher "github.com/dreschagin/activity-globe/internal/infrastructure/messaging/nats"
	"github.com/dreschagin/activity-globe/internal/infrastructure/metrics"
	wsInfra "github.com/dreschagin/activity-globe/internal/infrastructure/notification/websocket"
	s3storage "github.com/dreschagin/activity-globe/internal/infrastructure/storage/s3"
	"github.com/dreschagin/activity-globe/internal/infrastructure/strava"

	// Interfaces
	httpInterface "github.com/dreschagin/activity-globe/internal/interfaces/http"
	"github.com/dreschagin/activity-globe/internal/interfaces/http/handler"

	// Shared
	"github.com/dreschagin/activity-globe/pkg/config"
	"github.com/dreschagin/activity-globe/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

func main() {
	// 1. Загружаем конфигурацию
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Инициализируем logger
	log := logger.New(os.Getenv("LOG_LEVEL"))
	log.Info("Starting Activity Globe")

	// Контекст отменяется по SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Метрики
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	appMetrics := metrics.New(registry)

	// 4. Dependency Injection - Infrastructure Layer

	readiness := make(map[string]handler.ReadinessCheck)

	// Интерфейсные переменные остаются nil, если интеграция выключена
	var cache port.Cache
	if cfg.Redis.Enabled {
		redisClient, err := redisCache.NewRedisCache(ctx, redisCache.Options{
			Addr:         cfg.Redis.Addr(),
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			TTL:          cfg.Redis.TTL,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			log.Error("Failed to connect to redis", err, "addr", cfg.Redis.Addr())
			os.Exit(1)
		}
		defer redisClient.Close()

		cache = redisClient
		readiness["redis"] = redisClient.Ping
		log.Info("Redis cache connected", "addr", cfg.Redis.Addr(), "ttl", cfg.Redis.TTL.String())
	} else {
		log.Warn("Redis is disabled, every page goes to Strava")
	}

	var publisher port.EventPublisher
	if cfg.NATS.Enabled {
		natsClient, err := natsPublisher.NewNATSPublisher(cfg.NATS.URL, log)
		if err != nil {
			log.Error("Failed to connect to NATS", err, "url", cfg.NATS.URL)
			os.Exit(1)
		}
		defer natsClient.Close()

		publisher = natsClient
	}

	var storage port.TrackStorage
	if cfg.S3.Enabled {
		trackStorage, err := s3storage.NewTrackStorage(ctx, s3storage.Config{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			UsePathStyle:    cfg.S3.UsePathStyle,
			URLMode:         s3storage.URLMode(cfg.S3.URLMode),
			PresignedTTL:    cfg.S3.PresignedTTL,
		})
		if err != nil {
			log.Error("Failed to initialize track storage", err)
			os.Exit(1)
		}
		storage = trackStorage
	} else {
		log.Warn("S3 storage is disabled, track export will return 503")
	}

	stravaClient := strava.NewClient(strava.ClientConfig{
		BaseURL: cfg.Strava.APIBaseURL,
		Timeout: cfg.Strava.RequestTimeout,
		OnRateLimits: func(limits strava.RateLimits) {
			appMetrics.ObserveRateLimits(limits.ShortLimit, limits.DailyLimit, limits.ShortUsage, limits.DailyUsage)
			if limits.Exceeded() {
				log.Warn("Strava rate limit reached",
					"short_usage", limits.ShortUsage,
					"daily_usage", limits.DailyUsage)
			}
		},
	}, log)

	stravaOAuth := strava.NewOAuth(strava.OAuthConfig{
		ClientID:     cfg.Strava.ClientID,
		ClientSecret: cfg.Strava.ClientSecret,
		RedirectURL:  cfg.Strava.RedirectURL,
		AuthURL:      cfg.Strava.AuthURL,
		TokenURL:     cfg.Strava.TokenURL,
		Scopes:       cfg.Strava.Scopes,
	})

	// WebSocket Hub
	hub := wsInfra.NewHub(log)
	appMetrics.RegisterStreamGauge(registry, hub.ClientCount)

	// 5. Dependency Injection - Domain Layer

	decoder := service.NewPolylineDecoder()
	trackBuilder := service.NewTrackBuilder(decoder, cfg.Globe.PathWidth, cfg.Globe.Saturation, cfg.Globe.Value)

	// 6. Dependency Injection - Application Layer (Use Cases)

	listPageUC := usecase.NewListActivityPageUseCase(
		stravaClient,
		trackBuilder,
		cache,
		publisher,
		appMetrics,
		usecase.ListActivityPageConfig{
			PerPage:       cfg.Strava.PerPage,
			SubjectPrefix: cfg.NATS.SubjectPrefix,
		},
		log,
	)

	streamUC := usecase.NewStreamActivitiesUseCase(listPageUC, cfg.Strava.StreamMaxPages, log)

	getTrackUC := usecase.NewGetActivityTrackUseCase(stravaClient, trackBuilder, log)

	exportUC := usecase.NewExportActivityTrackUseCase(
		stravaClient,
		decoder,
		storage,
		publisher,
		usecase.ExportActivityTrackConfig{
			KeyPrefix:     cfg.S3.KeyPrefix,
			SubjectPrefix: cfg.NATS.SubjectPrefix,
		},
		log,
	)

	invalidateUC := usecase.NewInvalidateActivityCacheUseCase(cache, log)

	exchangeUC := usecase.NewExchangeAuthCodeUseCase(stravaOAuth, publisher, cfg.NATS.SubjectPrefix, log)

	// 7. Dependency Injection - Interfaces Layer (HTTP Handlers)

	handlers := httpInterface.Handlers{
		Globe: handler.NewGlobeHandler(handler.GlobeSettings{
			CesiumBaseURL:  cfg.Globe.CesiumBaseURL,
			CesiumIonToken: cfg.Globe.CesiumIonToken,
			PathWidth:      cfg.Globe.PathWidth,
		}, log),
		OAuth:      handler.NewOAuthHandler(exchangeUC, cfg.Security.SecureCookies, log),
		Activities: handler.NewActivitiesAPIHandler(listPageUC, getTrackUC, exportUC, invalidateUC, log),
		WebSocket:  handler.NewWebSocketHandler(streamUC, hub, cfg.Security.AllowedOrigins, log),
		Health:     handler.NewHealthHandler(readiness, log),
	}

	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		metricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
	}

	router := httpInterface.NewRouter(handlers, appMetrics, metricsHandler, cfg.Security, log)

	// 8. Настраиваем HTTP сервер

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 9. Запускаем hub и сервер, ждем сигнал для graceful shutdown

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		// Hijacked websocket соединения Shutdown не ждет, их закрывает hub
		hub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		log.Info("HTTP server starting", "port", cfg.Server.Port)
		log.Info("Globe available at http://localhost:" + cfg.Server.Port)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutdown signal received, starting graceful shutdown...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("Server stopped with error", err)
		return
	}

	log.Info("Server stopped gracefully")
}
