// Package app wires configuration, storage, clients and services into a
// runnable application. Both cmd/server and the CLI build from here.
package app

import (
	"context"
	"fmt"

	"macromate/internal/cache"
	"macromate/internal/config"
	"macromate/internal/handlers"
	"macromate/internal/middleware"
	"macromate/internal/models"
	"macromate/internal/services"
	"macromate/pkg/sheets"
	"macromate/pkg/zendesk"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// App 已装配完成的应用
//
// Optional collaborators (sync, QA, spreadsheet export) are nil when their
// credentials are missing; only the dependent feature is disabled.
type App struct {
	Config *config.Config
	Logger *logrus.Logger
	DB     *gorm.DB
	Cache  cache.Store

	Macros    *services.MacroService
	Feedback  *services.FeedbackService
	Export    *services.ExportService
	Templates *services.TemplateService
	QA        *services.QAService
	Sync      *services.SyncService

	redis *cache.RedisStore
}

// New builds the application from configuration.
func New(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*App, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%d sslmode=disable TimeZone=UTC",
		cfg.Database.Host, cfg.Database.User, cfg.Database.Password, cfg.Database.Name, cfg.Database.Port,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := db.AutoMigrate(&models.Macro{}, &models.Feedback{}, &models.Template{}); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	app := &App{Config: cfg, Logger: logger, DB: db}
	app.Cache = app.buildCache(ctx)

	app.Macros = services.NewMacroService(db, app.Cache, logger)
	app.Feedback = services.NewFeedbackService(db, logger)
	app.Templates = services.NewTemplateService(db, app.Cache, cfg.Scoring.Dimensions, cfg.Scoring.MaxScore, logger)

	var exporter sheets.Exporter
	if cfg.Sheets.CredentialsBase64 != "" {
		client, err := sheets.NewClient(ctx, cfg.Sheets.CredentialsBase64, logger)
		if err != nil {
			return nil, fmt.Errorf("spreadsheet exporter: %w", err)
		}
		exporter = client
	} else {
		logger.Warn("No spreadsheet credentials configured, sheets export disabled")
	}
	app.Export = services.NewExportService(app.Feedback, exporter, logger)

	if cfg.AI.OpenAI.APIKey != "" {
		clientConfig := openai.DefaultConfig(cfg.AI.OpenAI.APIKey)
		if cfg.AI.OpenAI.BaseURL != "" {
			clientConfig.BaseURL = cfg.AI.OpenAI.BaseURL
		}
		client := openai.NewClientWithConfig(clientConfig)
		app.QA = services.NewQAService(client, app.Templates, cfg.AI.OpenAI.Model, logger)
	} else {
		logger.Warn("No OpenAI API key configured, text analysis disabled")
	}

	if cfg.Zendesk.Subdomain != "" && cfg.Zendesk.APIToken != "" {
		lister := zendesk.NewClient(&zendesk.Config{
			Subdomain: cfg.Zendesk.Subdomain,
			Email:     cfg.Zendesk.Email,
			APIToken:  cfg.Zendesk.APIToken,
			PageSize:  cfg.Zendesk.PageSize,
			Timeout:   cfg.Zendesk.Timeout,
		}, logger)
		app.Sync = services.NewSyncService(lister, app.Macros, logger)
	} else {
		logger.Warn("No Zendesk credentials configured, macro sync disabled")
	}

	return app, nil
}

// buildCache prefers Redis and falls back to the in-process cache so a cache
// outage never blocks startup; the database stays authoritative either way.
func (a *App) buildCache(ctx context.Context) cache.Store {
	if a.Config.Redis.Host == "" {
		a.Logger.Warn("No Redis host configured, using in-process cache")
		return cache.NewMemoryStore()
	}

	store, err := cache.NewRedisStore(ctx, a.Config.Redis.Host, a.Config.Redis.Port,
		a.Config.Redis.Password, a.Config.Redis.DB, a.Logger)
	if err != nil {
		a.Logger.Errorf("Redis unavailable, using in-process cache: %v", err)
		return cache.NewMemoryStore()
	}
	a.redis = store
	return store
}

// Router assembles the gin engine with middleware and every route.
func (a *App) Router() *gin.Engine {
	if a.Config.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	if a.Config.Security.CORS.Enabled {
		r.Use(middleware.CORS())
	}
	r.Use(middleware.RateLimit(a.Config))

	r.GET("/health", handlers.Health)

	macroHandler := handlers.NewMacroHandler(a.Macros, a.Logger)
	feedbackHandler := handlers.NewFeedbackHandler(a.Feedback, a.Export, a.Logger)
	qaHandler := handlers.NewQAHandler(a.QA, a.Templates, a.Logger)

	handlers.RegisterRoutes(r.Group("/v1"), macroHandler, feedbackHandler, qaHandler)
	return r
}

// StartScheduler schedules the macro sync job and optionally kicks off one
// run immediately. Returns nil when sync is disabled.
func (a *App) StartScheduler() (*cron.Cron, error) {
	if a.Sync == nil {
		return nil, nil
	}

	c := cron.New()
	if _, err := c.AddFunc(a.Config.Sync.Schedule, a.Sync.RunScheduled); err != nil {
		return nil, fmt.Errorf("schedule macro sync: %w", err)
	}
	c.Start()
	a.Logger.Infof("Macro sync scheduled: %s", a.Config.Sync.Schedule)

	if a.Config.Sync.RunOnStart {
		go a.Sync.RunScheduled()
	}
	return c, nil
}

// Close releases held connections.
func (a *App) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.Logger.Errorf("Failed to close redis: %v", err)
		}
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
