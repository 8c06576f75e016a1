// Package server assembles the HTTP application from configuration.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go-do-list/backend/internal/cache"
	"go-do-list/backend/internal/config"
	"go-do-list/backend/internal/database"
	"go-do-list/backend/internal/handlers"
	"go-do-list/backend/internal/indexing"
	"go-do-list/backend/internal/logging"
	"go-do-list/backend/internal/middleware"
	"go-do-list/backend/internal/monitoring"
	"go-do-list/backend/internal/repositories"
	"go-do-list/backend/internal/services"
	"go-do-list/backend/internal/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Server owns every long-lived dependency of the API.
type Server struct {
	cfg     *config.Config
	log     logging.Logger
	pool    *database.DatabasePool
	cache   *cache.MultiLevelCache
	store   storage.FileStore
	indexer *indexing.Guarded
	limiter *middleware.RateLimiter
	monitor *monitoring.Monitor
	engine  *gin.Engine
}

// Option overrides a dependency New would otherwise build from config.
type Option func(*Server)

func WithIndexer(next indexing.Indexer) Option {
	return func(s *Server) {
		s.indexer = indexing.NewGuarded(next, s.newBreaker(), s.cfg.Indexer.Timeout, s.log)
	}
}

// New connects to the database, runs migrations and builds the router.
func New(ctx context.Context, cfg *config.Config, log logging.Logger, opts ...Option) (*Server, error) {
	s := &Server{cfg: cfg, log: log, monitor: monitoring.NewMonitor()}
	for _, opt := range opts {
		opt(s)
	}

	pool, err := OpenDatabase(cfg)
	if err != nil {
		return nil, err
	}
	s.pool = pool
	if err := pool.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to open file store: %w", err)
	}
	s.store = store

	if s.indexer == nil {
		client, err := indexing.NewClient(indexing.ClientOptions{
			BaseURL:    cfg.Indexer.URL,
			APIKey:     cfg.Indexer.APIKey,
			Collection: cfg.Indexer.Collection,
		})
		if err != nil {
			pool.Close()
			return nil, err
		}
		s.indexer = indexing.NewGuarded(client, s.newBreaker(), cfg.Indexer.Timeout, log)
	}

	if cfg.Cache.Enabled {
		s.cache = newCache(cfg)
	}

	if cfg.RateLimit.Enabled {
		s.limiter = middleware.NewRateLimiter(cfg.RateLimit.RequestsPerMin, cfg.RateLimit.BurstSize, cfg.RateLimit.CleanupInterval)
	}

	s.registerHealth()
	s.engine = s.routes()
	return s, nil
}

// OpenDatabase builds the connection pool described by cfg.
func OpenDatabase(cfg *config.Config) (*database.DatabasePool, error) {
	poolConfig := database.DefaultPoolConfig()
	poolConfig.Driver = cfg.Database.Driver
	poolConfig.DSN = cfg.GetDatabaseDSN()
	poolConfig.MaxOpenConns = cfg.Database.MaxOpenConns
	poolConfig.MaxIdleConns = cfg.Database.MaxIdleConns
	poolConfig.ConnMaxLifetime = cfg.Database.ConnMaxLifetime
	poolConfig.ConnMaxIdleTime = cfg.Database.ConnMaxIdleTime
	poolConfig.LogLevel = database.ParseLogLevel(cfg.Database.LogLevel)
	return database.NewDatabasePool(poolConfig)
}

func newCache(cfg *config.Config) *cache.MultiLevelCache {
	var l2 *cache.RedisCache
	if cfg.Redis.Enabled {
		redisConfig := cache.DefaultCacheConfig()
		redisConfig.Addr = cfg.GetRedisAddr()
		redisConfig.Password = cfg.Redis.Password
		redisConfig.DB = cfg.Redis.DB
		redisConfig.PoolSize = cfg.Redis.PoolSize
		redisConfig.MinIdleConns = cfg.Redis.MinIdleConns
		redisConfig.MaxRetries = cfg.Redis.MaxRetries
		redisConfig.DialTimeout = cfg.Redis.DialTimeout
		redisConfig.ReadTimeout = cfg.Redis.ReadTimeout
		redisConfig.WriteTimeout = cfg.Redis.WriteTimeout
		l2 = cache.NewRedisCache(redisConfig)
	}
	return cache.NewMultiLevelCache(l2, 0)
}

func (s *Server) newBreaker() *indexing.Breaker {
	breakerConfig := indexing.DefaultBreakerConfig()
	if s.cfg.Indexer.BreakerMaxFailures > 0 {
		breakerConfig.MaxFailures = s.cfg.Indexer.BreakerMaxFailures
	}
	if s.cfg.Indexer.BreakerTimeout > 0 {
		breakerConfig.Timeout = s.cfg.Indexer.BreakerTimeout
	}
	return indexing.NewBreaker(breakerConfig)
}

func (s *Server) registerHealth() {
	s.monitor.RegisterHealthCheck("database", true, s.pool.HealthContext)
	s.monitor.RegisterHealthCheck("storage", true, s.store.Ping)
	s.monitor.RegisterStats("database", s.pool.Stats)
	s.monitor.RegisterStats("indexer", s.indexer.Breaker().Stats)
	if s.cache != nil {
		s.monitor.RegisterHealthCheck("cache", false, s.cache.Health)
		s.monitor.RegisterStats("cache", s.cache.Stats)
	}
}

func (s *Server) routes() *gin.Engine {
	if s.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.RecoveryWithLog(s.log),
		middleware.RequestLogger(s.log),
		s.monitor.MetricsMiddleware(),
		cors.New(cors.Config{
			AllowOrigins:     s.cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
			ExposeHeaders:    []string{"Content-Disposition", middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
	)

	router.GET("/health", s.monitor.HealthHandler())
	router.GET("/ready", s.monitor.ReadinessHandler())
	router.GET("/live", s.monitor.LivenessHandler())
	router.GET("/metrics", s.monitor.MetricsHandler())

	folderRepo := repositories.NewFolderRepository(s.pool.DB)
	taskRepo := repositories.NewTaskRepository(s.pool.DB)
	fileRepo := repositories.NewTaskFileRepository(s.pool.DB)

	var folderService services.FolderService = services.NewFolderService(folderRepo)
	var taskService services.TaskService = services.NewTaskService(taskRepo, folderRepo, s.store, s.log)
	if s.cache != nil {
		cached := services.NewCachedTaskService(folderService, taskService, s.cache, s.cfg.Cache.TaskTTL, s.cfg.Cache.FolderTTL, s.log)
		folderService, taskService = cached, cached
	}
	fileService := services.NewFileService(fileRepo, taskRepo, s.store, s.indexer, s.cfg.Storage.MaxUploadBytes, s.log)
	processingService := services.NewProcessingService(taskRepo, fileRepo, fileService, s.indexer, s.log)

	folderHandler := handlers.NewFolderHandler(folderService)
	taskHandler := handlers.NewTaskHandler(taskService)
	fileHandler := handlers.NewFileHandler(fileService, s.cfg.Storage.MaxUploadBytes)
	processHandler := handlers.NewProcessHandler(processingService)

	api := router.Group("/")
	if s.limiter != nil {
		api.Use(middleware.RateLimit(s.limiter))
	}
	if s.cfg.Auth.Enabled {
		api.Use(middleware.AuthzMiddleware(middleware.AuthzConfig{
			Secret: s.cfg.Auth.JWTSecret,
			Issuer: s.cfg.Auth.Issuer,
		}))
	}

	api.GET("/folders", folderHandler.GetFolders)
	api.POST("/folders", folderHandler.CreateFolder)
	api.DELETE("/folders/:id", folderHandler.DeleteFolder)

	api.GET("/tasks", taskHandler.GetTasks)
	api.POST("/tasks", taskHandler.CreateTask)
	api.PATCH("/tasks", taskHandler.UpdateTask)
	api.DELETE("/tasks", taskHandler.DeleteTask)

	api.POST("/tasks/:id/files", fileHandler.UploadFile)
	api.GET("/tasks/:id/files", fileHandler.GetFiles)
	api.GET("/files/:id", fileHandler.DownloadFile)
	api.DELETE("/files/:id", fileHandler.DeleteFile)

	api.POST("/process-task", processHandler.ProcessTask)

	return router
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then drains in-flight requests for up
// to the configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.GetServerAddr(),
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	if s.limiter != nil {
		go s.limiter.Run(ctx, s.cfg.RateLimit.CleanupInterval)
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info(ctx, "server listening", "addr", srv.Addr, "environment", s.cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info(ctx, "shutting down", "timeout", s.cfg.Server.ShutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func (s *Server) Close() error {
	var errs []error
	if s.cache != nil {
		errs = append(errs, s.cache.Close())
	}
	errs = append(errs, s.pool.Close())
	return errors.Join(errs...)
}
