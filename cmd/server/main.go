package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"zayana-be/internal/auth"
	"zayana-be/internal/cart"
	"zayana-be/internal/category"
	"zayana-be/internal/config"
	"zayana-be/internal/db"
	"zayana-be/internal/handler"
	"zayana-be/internal/idempotency"
	"zayana-be/internal/logger"
	"zayana-be/internal/metrics"
	"zayana-be/internal/middleware"
	"zayana-be/internal/order"
	"zayana-be/internal/product"
	"zayana-be/internal/user"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

var (
	initDBFunc = db.InitDB

	migrateFunc = func(cfg *config.Config) error {
		// The migrator closes its handle, so it gets its own.
		conn, err := db.NewDatabase(cfg)
		if err != nil {
			return err
		}
		m, err := db.NewMigrator(conn, logger.L())
		if err != nil {
			conn.Close()
			return err
		}
		defer m.Close()
		return m.Up()
	}

	startServerFunc = func(srv *http.Server) error {
		return srv.ListenAndServe()
	}
)

func main() {
	if err := run(); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger.Init(cfg.AppEnv, cfg.LogLevel)
	defer logger.Sync()
	log := logger.L()

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.MigrationsAuto {
		if err := migrateFunc(cfg); err != nil {
			return err
		}
	}

	database := initDBFunc(cfg)
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newServer(ctx, cfg, database)
	if err != nil {
		return err
	}
	defer app.close()

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.AppEnv))
		errCh <- startServerFunc(srv)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("server stopped gracefully")
	return nil
}

type server struct {
	handler http.Handler
	closers []func() error
}

func (s *server) close() {
	for _, c := range s.closers {
		if err := c(); err != nil {
			logger.L().Warn("failed to release resource", zap.Error(err))
		}
	}
}

// newServer wires repositories, services and the router. Background
// workers stop when ctx is done.
func newServer(ctx context.Context, cfg *config.Config, database *sql.DB) (*server, error) {
	tokens, err := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		return nil, err
	}

	reg := metrics.NewRegistry()
	s := &server{}

	productRepo := product.NewRepository(database)
	productSvc := product.NewService(productRepo)

	categorySvc := category.NewService(category.NewRepository(database))
	userSvc := user.NewService(user.NewRepository(database), auth.NewBcryptHasher(), tokens)

	cartSvc := cart.NewService(cart.NewRepository(database), productRepo)
	orderSvc := order.NewService(order.NewRepository(database), cartSvc, productRepo, reg)

	limiter := middleware.NewLimiter(cfg.InternalKey, reg)
	go limiter.Run(ctx)

	var store idempotency.Store = idempotency.NoopStore{}
	if cfg.RedisAddr != "" {
		rs, err := idempotency.NewRedisStore(ctx, idempotency.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			logger.L().Warn("idempotency disabled", zap.Error(err))
		} else {
			store = rs
			s.closers = append(s.closers, rs.Close)
		}
	}

	s.handler = handler.NewRouter(handler.Deps{
		Users:          userSvc,
		Categories:     categorySvc,
		Products:       productSvc,
		Carts:          cartSvc,
		Orders:         orderSvc,
		Tokens:         tokens,
		Limiter:        limiter,
		Idempotency:    store,
		Metrics:        reg,
		DB:             database,
		CORSOrigins:    cfg.CORSOrigins,
		TokenTTL:       cfg.JWTTTL,
		IdempotencyTTL: cfg.IdempotencyTTL,
		SecureCookies:  cfg.AppEnv == "production",
	})
	return s, nil
}
