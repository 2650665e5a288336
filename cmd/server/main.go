package main

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rl1809/bookstore/internal/adapter/auth"
	"github.com/rl1809/bookstore/internal/adapter/handler"
	"github.com/rl1809/bookstore/internal/adapter/messaging"
	"github.com/rl1809/bookstore/internal/adapter/storage"
	"github.com/rl1809/bookstore/internal/config"
	"github.com/rl1809/bookstore/internal/core/service"
	"github.com/rl1809/bookstore/internal/port"
)

const (
	eventWorkers   = 4
	eventQueueSize = 1000
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogger(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize storage
	var db port.DatabaseRepository
	switch cfg.Storage {
	case config.StorageMemory:
		db = storage.NewMemoryStore()
		log.Info().Msg("using in-memory storage")
	default:
		db = openMySQL(ctx, cfg)
	}

	// Initialize idempotency cache
	var cache port.CacheRepository
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			PoolSize: 100,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Msg("failed to connect redis")
		}
		log.Info().Str("addr", cfg.RedisAddr).Msg("connected to redis")
		cache = storage.NewRedisAdapter(rdb)
	} else {
		cache = storage.NewMemoryCache()
	}

	// Initialize event publishing
	var sink port.EventPublisher = messaging.NopPublisher{}
	var rabbit *messaging.RabbitPublisher
	if cfg.RabbitMQURL != "" {
		rabbit, err = messaging.NewRabbitPublisher(cfg.RabbitMQURL, cfg.EventsExchange)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect rabbitmq")
		}
		log.Info().Str("exchange", cfg.EventsExchange).Msg("connected to rabbitmq")
		sink = rabbit
	}
	events := messaging.NewAsyncPublisher(sink, eventWorkers, eventQueueSize)

	// Initialize services
	catalogService := service.NewCatalogService(db, events)
	cartService := service.NewCartService(db)
	orderService := service.NewOrderService(db, cache, events)
	userService := service.NewUserService(db,
		auth.NewBcryptHasher(cfg.BcryptCost),
		auth.NewJWTIssuer(cfg.JWTSecret, cfg.JWTTTL),
	)

	// Initialize gRPC server
	grpcServer, healthServer := handler.NewGRPCServer()

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to listen")
	}

	go func() {
		log.Info().Str("port", cfg.GRPCPort).Msg("gRPC server listening")
		if err := grpcServer.Serve(lis); err != nil {
			log.Error().Err(err).Msg("gRPC server error")
		}
	}()

	// Initialize HTTP server
	gin.SetMode(cfg.GinMode)
	httpHandler := handler.NewHTTPHandler(catalogService, cartService, orderService, userService)
	router := handler.NewRouter(httpHandler)

	httpServer := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handler.WithCORS(router, cfg.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("HTTP server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down...")
	healthServer.Shutdown()

	// Stop HTTP server
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP shutdown failed")
	}
	log.Info().Msg("HTTP server stopped")

	// Stop gRPC server
	grpcServer.GracefulStop()
	log.Info().Msg("gRPC server stopped")

	// Drain queued events and wait for workers
	events.Close()
	log.Info().Msg("event workers stopped")

	// Close connections
	if rabbit != nil {
		rabbit.Close()
	}
	if rdb != nil {
		rdb.Close()
	}
	db.Close()
	log.Info().Msg("connections closed")
}

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

func openMySQL(ctx context.Context, cfg *config.Config) *storage.MySQLStore {
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect mysql")
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping mysql")
	}
	log.Info().Msg("connected to mysql")

	store := storage.NewMySQLStore(db, cfg.BookCacheSize, cfg.BookCacheTTL)
	if err := store.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate schema")
	}
	return store
}
