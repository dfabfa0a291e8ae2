package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/godilite/eduinsight-server/internal/auth"
	"github.com/godilite/eduinsight-server/internal/config"
	handler "github.com/godilite/eduinsight-server/internal/grpc"
	"github.com/godilite/eduinsight-server/internal/httpapi"
	"github.com/godilite/eduinsight-server/internal/repository"
	"github.com/godilite/eduinsight-server/internal/service"
	"github.com/godilite/eduinsight-server/pkg/cache"
	dbbuilder "github.com/godilite/eduinsight-server/pkg/database"
	grpcsrv "github.com/godilite/eduinsight-server/pkg/grpc/server"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	logger     *zap.Logger
	dbPool     *sql.DB
	cache      *cache.Cache
	httpServer *httpapi.Server
	grpcServer *grpcsrv.Server
}

// Services is the wired service layer shared by the servers and the CLI.
type Services struct {
	Analytics service.AnalyticsReader
	Feedback  *service.FeedbackService
	Courses   *service.CourseService
	Store     *repository.FeedbackRepository
	Catalogue *repository.CourseRepository
}

// OpenDatabase opens the configured pool and applies migrations when
// MigrateOnStart is set.
func OpenDatabase(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*sql.DB, error) {
	opts := []dbbuilder.Option{
		dbbuilder.WithDriver(cfg.DBDriver),
		dbbuilder.WithDataSource(cfg.DBDSN),
		dbbuilder.WithLogger(logger),
	}
	if cfg.DBDriver == "sqlite3" {
		opts = append(opts, dbbuilder.WithMaxOpenConns(1))
	}

	dbPool, err := dbbuilder.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}
	logger.Info("Database pool initialized", zap.String("driver", cfg.DBDriver))

	if cfg.MigrateOnStart {
		if err := dbbuilder.Migrate(ctx, dbPool, cfg.DBDriver, logger); err != nil {
			dbPool.Close()
			return nil, err
		}
	}
	return dbPool, nil
}

// NewServices wires repositories and services over db. cacheClient may be
// nil, in which case analytics reads go straight to the database.
func NewServices(db *sql.DB, cfg *config.Config, cacheClient service.Cacher, logger *zap.Logger) *Services {
	feedbackRepo := repository.NewFeedbackRepository(db, cfg.DBDriver)
	analyticsRepo := repository.NewAnalyticsRepository(db, cfg.DBDriver)
	courseRepo := repository.NewCourseRepository(db, cfg.DBDriver)

	base := service.NewAnalyticsService(analyticsRepo, logger)
	svc := &Services{Analytics: base, Store: feedbackRepo, Catalogue: courseRepo}

	var invalidator service.Invalidator
	if cacheClient != nil {
		cached := service.NewCachedAnalytics(base, cacheClient, cfg.CacheTTL, logger)
		svc.Analytics, invalidator = cached, cached
	}
	svc.Feedback = service.NewFeedbackService(feedbackRepo, invalidator, logger)
	svc.Courses = service.NewCourseService(courseRepo, invalidator, logger)
	return svc
}

func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	dbPool, err := OpenDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	a := &App{logger: logger, dbPool: dbPool}

	var cacher service.Cacher
	if cfg.CacheEnabled {
		cacheClient, err := cache.New(ctx, cache.WithAddress(cfg.RedisAddr))
		if err != nil {
			a.close()
			return nil, fmt.Errorf("cache init failed: %w", err)
		}
		logger.Info("Cache client initialized", zap.String("addr", cfg.RedisAddr))
		a.cache, cacher = cacheClient, cacheClient
	}

	svc := NewServices(dbPool, cfg, cacher, logger)

	tokens, err := auth.NewTokens(cfg.JWTSecret, cfg.JWTIssuer)
	if err != nil {
		a.close()
		return nil, err
	}

	handlers := httpapi.NewHandlers(svc.Analytics, svc.Feedback, svc.Courses, svc.Store, logger,
		httpapi.WithRequestTimeout(cfg.RequestTimeout))
	limiter := httpapi.NewClientLimiter(cfg.SubmitRateLimit, cfg.SubmitRateBurst)
	router := httpapi.NewRouter(handlers, tokens, limiter, logger)

	a.httpServer, err = httpapi.NewServer(cfg.HTTPPort, router, logger)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to create HTTP server: %w", err)
	}

	a.grpcServer, err = grpcsrv.New(
		grpcsrv.WithPort(cfg.GRPCPort),
		grpcsrv.WithLogger(logger),
		grpcsrv.WithLogging(true),
		grpcsrv.WithReflection(cfg.GRPCReflectionEnabled),
	)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to create gRPC server: %w", err)
	}

	grpcHandlers := handler.NewGRPCHandlers(svc.Analytics, logger)
	a.grpcServer.Register(&handler.ServiceDesc, grpcHandlers)

	return a, nil
}

// Run starts both servers and blocks until a shutdown signal is received.
func (a *App) Run() error {
	a.logger.Info("application starting")

	a.httpServer.Start()
	a.grpcServer.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	a.logger.Info("application shutting down")
	a.grpcServer.Drain()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var g errgroup.Group
	g.Go(func() error { return a.httpServer.Shutdown(ctx) })
	g.Go(func() error { return a.grpcServer.Shutdown(ctx) })
	err := g.Wait()

	a.close()

	if errors.Is(err, context.DeadlineExceeded) {
		a.logger.Warn("shutdown completed but deadline exceeded")
	} else if err == nil {
		a.logger.Info("graceful shutdown completed successfully")
	}

	_ = a.logger.Sync()
	return err
}

func (a *App) close() {
	if a.httpServer != nil {
		_ = a.httpServer.Close()
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("cache shutdown error", zap.Error(err))
		}
	}
	if err := a.dbPool.Close(); err != nil {
		a.logger.Error("database shutdown error", zap.Error(err))
	}
}
