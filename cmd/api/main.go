package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/chatty-edu-api/internal/config"
	"github.com/noah-isme/chatty-edu-api/internal/database"
	"github.com/noah-isme/chatty-edu-api/internal/handler"
	"github.com/noah-isme/chatty-edu-api/internal/middleware"
	"github.com/noah-isme/chatty-edu-api/internal/models"
	"github.com/noah-isme/chatty-edu-api/internal/observability"
	"github.com/noah-isme/chatty-edu-api/internal/repository"
	"github.com/noah-isme/chatty-edu-api/internal/router"
	"github.com/noah-isme/chatty-edu-api/internal/service"
	"github.com/noah-isme/chatty-edu-api/pkg/ai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()

	layout := repository.NewLayout(cfg.DataBasePath)
	if err := layout.EnsureFolders(); err != nil {
		log.Fatalf("failed to prepare data folders: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.SubmissionIndex{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var dashboardCache *service.DashboardCache
	if cfg.RedisURL != "" {
		redisClient, err := database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
		dashboardCache = service.NewDashboardCache(redisClient, cfg.DashboardCacheTTL, logger)
	} else {
		dashboardCache = service.NewDashboardCache(nil, cfg.DashboardCacheTTL, logger)
	}

	var publisher service.Publisher
	natsConn, err := database.ConnectNATS(cfg.NATSURL, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("submission notifications disabled")
	} else if natsConn != nil {
		defer natsConn.Drain()
		publisher = natsConn
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	submissionStore, err := repository.NewSubmissionStore(layout.CompletedDir(), repository.SubmissionStoreOptions{
		RejectOverwrite: cfg.RejectOverwrite,
		OnSkip: func(skipped repository.SkippedFile) {
			reason := "invalid"
			if strings.HasPrefix(skipped.Reason, "read error") {
				reason = "read_error"
			}
			observability.FilesSkipped().WithLabelValues(reason).Inc()
		},
	}, logger)
	if err != nil {
		log.Fatalf("failed to open submission store: %v", err)
	}

	indexRepo := repository.NewSubmissionIndexRepository(db)
	packStore := repository.NewPackStore(layout.AssignedDir(), logger)
	settingsStore := repository.NewSettingsStore(layout, logger)
	moduleRepo := repository.NewModuleRepository(layout.ModulesDir(), logger)

	if _, err := settingsStore.LoadOrInit(context.Background()); err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}

	modelCache := ai.NewModelCache(ai.NewLocalServerLoader(ai.LocalServerConfig{
		ServerURL: cfg.ModelServerURL,
		Logger:    logger,
	}))

	submissionService := service.NewSubmissionService(service.SubmissionServiceDeps{
		Store:     submissionStore,
		Index:     indexRepo,
		Packs:     packStore,
		Settings:  settingsStore,
		Cache:     dashboardCache,
		Notifier:  service.NewNotifier(publisher, cfg.NATSSubject, logger),
		Validator: validate,
		Logger:    logger,
	})
	dashboardService := service.NewDashboardService(submissionStore, indexRepo, dashboardCache, logger)
	packService := service.NewPackService(packStore, settingsStore, validate, logger)
	moduleService := service.NewModuleService(moduleRepo, validate, logger)
	chatService := service.NewChatService(modelCache, settingsStore, validate, logger)
	authService := service.NewAuthService(settingsStore, cfg.JWTSecret, cfg.JWTTTL, validate, logger)
	consoleService := service.NewConsoleService(settingsStore, validate, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AllowOrigins: cfg.CORSOrigins})
	router.Register(app, cfg, router.Dependencies{
		SubmissionHandler: handler.NewSubmissionHandler(submissionService, dashboardService, logger),
		PackHandler:       handler.NewPackHandler(packService, logger),
		ModuleHandler:     handler.NewModuleHandler(moduleService, logger),
		ChatHandler:       handler.NewChatHandler(chatService, middleware.RateLimit("chat", 20, time.Minute), logger),
		AuthHandler:       handler.NewAuthHandler(authService, logger),
		ConsoleHandler:    handler.NewConsoleHandler(consoleService, logger),
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	logger.Info().Str("data_path", layout.Base).Str("address", cfg.HTTPAddress()).Msg("starting chatty-edu api")

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, modelCache)
}

func waitForShutdown(app *fiber.App, modelCache *ai.ModelCache) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
	modelCache.Invalidate()

	log.Println("server stopped")
}
