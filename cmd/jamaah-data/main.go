package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jamaah-data/internal/config"
	"jamaah-data/internal/extractor"
	httpapi "jamaah-data/internal/http"
	"jamaah-data/internal/matcher"
	"jamaah-data/internal/reconcile"
	"jamaah-data/internal/repository"
	"jamaah-data/internal/rooming"
	"jamaah-data/internal/service"
	"jamaah-data/internal/store"

	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger := buildLogger(cfg)
	defer logger.Sync()

	db, err := sql.Open("postgres", cfg.Database.GetDSN())
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	if err := db.Ping(); err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	kv := store.NewRedisKV(redisClient)

	pilgrimsRepo := repository.NewPostgresPilgrimsRepository(db)
	roomsRepo := repository.NewPostgresRoomsRepository(db)

	vision := extractor.NewClient(cfg.Vision.BaseURL, cfg.Vision.APIKey, cfg.Vision.Timeout, logger)
	engine := reconcile.NewEngine(matcher.New(cfg.Pipeline.MatchThreshold), logger)

	documentService := service.NewDocumentService(vision, kv, engine, pilgrimsRepo, cfg.Vision, logger)
	roomingService := service.NewRoomingService(roomsRepo, pilgrimsRepo, cfg.Pipeline.RoomCapacity, logger)

	router := httpapi.NewRouter(logger)
	router.RegisterGroupRoutes(
		httpapi.NewDocumentHandler(documentService, logger),
		httpapi.NewRoomingHandler(roomingService, logger),
	)

	logger.Info("jamaah-data configured",
		zap.Float64("match_threshold", cfg.Pipeline.MatchThreshold),
		zap.Int("room_capacity", defaultCapacity(cfg)),
		zap.Int("vision_concurrency", cfg.Vision.Concurrency),
	)

	srv := service.NewServer(cfg.HTTP.Addr, router, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
	case <-errCh:
	}

	// 停机排水窗口独立于运行期 context
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	_ = redisClient.Close()
	_ = db.Close()
}

func buildLogger(cfg *config.Config) *zap.Logger {
	if cfg.Log.Format == "console" {
		logger, _ := zap.NewDevelopment()
		return logger
	}
	logger, _ := zap.NewProduction()
	return logger
}

func defaultCapacity(cfg *config.Config) int {
	if cfg.Pipeline.RoomCapacity > 0 {
		return cfg.Pipeline.RoomCapacity
	}
	return rooming.DefaultCapacity
}
