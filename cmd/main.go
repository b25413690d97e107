package main

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

	"github.com/Dosada05/pickem-league/cache"
	"github.com/Dosada05/pickem-league/config"
	"github.com/Dosada05/pickem-league/db"
	"github.com/Dosada05/pickem-league/handlers"
	"github.com/Dosada05/pickem-league/live"
	"github.com/Dosada05/pickem-league/repositories"
	"github.com/Dosada05/pickem-league/routes"
	"github.com/Dosada05/pickem-league/services"
	"github.com/Dosada05/pickem-league/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	appCtx, stopApp := context.WithCancel(context.Background())
	defer stopApp()

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	migrateCtx, cancelMigrate := context.WithTimeout(appCtx, 30*time.Second)
	err = db.Migrate(migrateCtx, dbConn)
	cancelMigrate()
	if err != nil {
		logger.Error("failed to apply database schema", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("database schema is up to date")

	// Redis: кэш таблиц и блокировка расчётов между инстансами
	var (
		leaderboardCache = cache.NewNopCache()
		calcLease        = cache.NewNopLocker()
	)
	if cfg.RedisURL != "" {
		redisClient, err := connectRedis(appCtx, cfg.RedisURL)
		if err != nil {
			logger.Error("failed to connect to redis", slog.Any("error", err))
			os.Exit(1)
		}
		defer redisClient.Close()
		leaderboardCache = cache.NewRedisCache(redisClient)
		calcLease = cache.NewRedisLocker(redisClient)
		logger.Info("redis cache enabled")
	} else {
		logger.Info("REDIS_URL not set, running without cache and cross-instance calculation lease")
	}

	// Инициализация WebSocket Hub
	hub := live.NewHub(logger)
	go hub.Run(appCtx)
	logger.Info("live hub started")

	// Инициализация репозиториев
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	leagueRepo := repositories.NewPostgresLeagueRepository(dbConn)
	competitionRepo := repositories.NewPostgresCompetitionRepository(dbConn)
	gameRepo := repositories.NewPostgresGameRepository(dbConn)
	pickRepo := repositories.NewPostgresPickRepository(dbConn)
	scoreRepo := repositories.NewPostgresScoreRepository(dbConn)
	standingRepo := repositories.NewPostgresSeasonStandingRepository(dbConn)
	logger.Info("repositories initialized")

	tx := services.NewSQLTransactor(dbConn, logger)
	advisory := repositories.NewPostgresAdvisoryLocker()

	scoringDeps := services.ScoringServiceDeps{
		Tx:              tx,
		Advisory:        advisory,
		CompetitionRepo: competitionRepo,
		LeagueRepo:      leagueRepo,
		GameRepo:        gameRepo,
		PickRepo:        pickRepo,
		ScoreRepo:       scoreRepo,
		StandingRepo:    standingRepo,
		Cache:           leaderboardCache,
		Lease:           calcLease,
		LeaseTTL:        cfg.CalculationLockTTL,
		Hub:             hub,
		Logger:          logger,
	}
	// Архив снимков в Cloudflare R2 (необязательно)
	if cfg.R2Enabled() {
		uploader, err := storage.NewCloudflareR2Uploader(appCtx, storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		scoringDeps.Archiver = storage.NewSnapshotArchiver(uploader)
		logger.Info("Cloudflare R2 snapshot archive enabled")
	}

	// Инициализация сервисов
	authService := services.NewAuthService(userRepo)
	leagueService := services.NewLeagueService(tx, leagueRepo, logger)
	competitionService := services.NewCompetitionService(competitionRepo, leagueRepo, gameRepo, leaderboardCache, hub, logger)
	gameService := services.NewGameService(gameRepo, competitionRepo, leagueRepo, logger)
	pickService := services.NewPickService(tx, pickRepo, gameRepo, competitionRepo, leagueRepo, scoreRepo, advisory, leaderboardCache, logger)
	scoringService := services.NewScoringService(scoringDeps)
	logger.Info("services initialized")

	// Планировщик: блокирует соревнования, у которых прошёл дедлайн
	go runAutoLock(appCtx, competitionService, cfg.AutoLockInterval, logger)

	// Инициализация обработчиков HTTP
	router := chi.NewRouter()
	routes.SetupRoutes(router, routes.Handlers{
		Auth:        handlers.NewAuthHandler(authService, cfg.JWTSecretKey),
		League:      handlers.NewLeagueHandler(leagueService),
		Competition: handlers.NewCompetitionHandler(competitionService, gameService),
		Pick:        handlers.NewPickHandler(pickService),
		Scoring:     handlers.NewScoringHandler(scoringService),
		WebSocket:   handlers.NewWebSocketHandler(hub, competitionService, leagueService, cfg.AllowedOrigins, logger),
	}, routes.Options{
		JWTSecret:      cfg.JWTSecretKey,
		AllowedOrigins: cfg.AllowedOrigins,
	})
	logger.Info("routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second, // расчёт может ждать блокировку
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	exitCode := 0
	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			exitCode = 1
		} else {
			logger.Info("server stopped gracefully")
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			exitCode = 1
		} else {
			logger.Info("server shutdown complete")
		}
	}

	// останавливаем hub и планировщик до закрытия БД и Redis
	stopApp()
	logger.Info("application exited")
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

func connectRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

func runAutoLock(ctx context.Context, competitionService services.CompetitionService, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	logger.Info("competition auto-lock scheduler started", slog.Duration("interval", interval))

	lockDue := func() {
		locked, err := competitionService.LockDueCompetitions(ctx)
		if err != nil {
			if ctx.Err() == nil {
				logger.Error("scheduler: auto-lock run failed", slog.Any("error", err))
			}
			return
		}
		if locked > 0 {
			logger.Info("scheduler: competitions locked", slog.Int("count", locked))
		}
	}

	// Run once immediately at startup, then on ticker
	lockDue()
	for {
		select {
		case <-ctx.Done():
			logger.Info("competition auto-lock scheduler stopped")
			return
		case <-ticker.C:
			lockDue()
		}
	}
}
