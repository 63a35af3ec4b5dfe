// Package bootstrap assembles the application from configuration.
package bootstrap

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	redisv9 "github.com/redis/go-redis/v9"

	"legal-backend/internal/analysis"
	"legal-backend/internal/chat"
	"legal-backend/internal/documents"
	"legal-backend/internal/llm"
	"legal-backend/internal/llm/gemini"
	"legal-backend/internal/report"
	"legal-backend/internal/shared/config"
	"legal-backend/internal/shared/server/middleware"
	"legal-backend/internal/shared/server/respond"
	"legal-backend/internal/shared/storage/db"
	"legal-backend/internal/shared/storage/object"
	localstore "legal-backend/internal/shared/storage/object/local"
	s3store "legal-backend/internal/shared/storage/object/s3"
)

const chatHistoryTTL = 10 * time.Minute

// App holds shared dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	Redis  *redisv9.Client

	DocumentsRepo documents.Repo
	ChatRepo      chat.Repo

	DocumentsService *documents.Service
	AnalysisService  *analysis.Service
	ChatService      *chat.Service

	DocumentsHandler *documents.Handler
	AnalysisHandler  *analysis.Handler
	ChatHandler      *chat.Handler
	ReportHandler    *report.Handler
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		Redis:  buildRedis(cfg),
	}
	buildServices(app)
	app.Router = buildRouter(app)
	return app, nil
}

// Close releases held connections.
func (a *App) Close() {
	if a.DB != nil {
		_ = a.DB.Close()
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, errRequiredDatabase
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildRedis(cfg config.Config) *redisv9.Client {
	if strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	return redisv9.NewClient(&redisv9.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

func buildLLM(cfg config.Config) llm.Client {
	if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
		log.Printf("bootstrap: GEMINI_API_KEY empty; analysis and questions will fail until configured")
		return llm.PlaceholderClient{}
	}
	timeout := time.Duration(cfg.GeminiTimeoutSeconds) * time.Second
	return gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel, timeout)
}

func buildServices(app *App) {
	if app.DB != nil {
		app.DocumentsRepo = &documents.PGRepo{DB: app.DB}
		app.ChatRepo = &chat.PGRepo{DB: app.DB}
	} else {
		app.DocumentsRepo = documents.NewMemoryRepo()
		app.ChatRepo = chat.NewMemoryRepo()
	}

	llmClient := buildLLM(app.Config)

	var historyCache *chat.HistoryCache
	if app.Redis != nil {
		historyCache = chat.NewHistoryCache(app.Redis, chatHistoryTTL)
	}

	app.ChatService = chat.NewService(app.ChatRepo, app.DocumentsRepo, app.Store, llmClient, historyCache)
	app.DocumentsService = &documents.Service{
		Repo:  app.DocumentsRepo,
		Store: app.Store,
		Chat:  app.ChatService,
	}
	app.AnalysisService = analysis.NewService(app.DocumentsRepo, app.Store, llmClient)

	app.DocumentsHandler = documents.NewHandler(app.DocumentsService)
	app.AnalysisHandler = analysis.NewHandler(app.AnalysisService)
	app.ChatHandler = chat.NewHandler(app.ChatService)
	app.ReportHandler = report.NewHandler(app.DocumentsRepo, app.ChatRepo)
}

func buildRouter(app *App) *gin.Engine {
	if !isDevLike(app.Config.Env) {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(app.Config.CORSAllowOrigin),
	)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	app.DocumentsHandler.RegisterRoutes(api)
	app.AnalysisHandler.RegisterRoutes(api)
	app.ChatHandler.RegisterRoutes(api)
	app.ReportHandler.RegisterRoutes(api)

	return r
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
