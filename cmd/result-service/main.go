package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	rcache "github.com/Anilsharma012/meraMatka-sub000/internal/result-service/cache"
	rhttp "github.com/Anilsharma012/meraMatka-sub000/internal/result-service/http"
	rpub "github.com/Anilsharma012/meraMatka-sub000/internal/result-service/producer"
	"github.com/Anilsharma012/meraMatka-sub000/internal/result-service/repo"
	"github.com/Anilsharma012/meraMatka-sub000/internal/result-service/ws"
	sharedcache "github.com/Anilsharma012/meraMatka-sub000/internal/shared/cache"
	"github.com/Anilsharma012/meraMatka-sub000/internal/shared/config"
	"github.com/Anilsharma012/meraMatka-sub000/internal/shared/db"
	skafka "github.com/Anilsharma012/meraMatka-sub000/internal/shared/kafka"
	"github.com/Anilsharma012/meraMatka-sub000/internal/shared/logger"
	"github.com/Anilsharma012/meraMatka-sub000/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Postgres
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg connect", zap.Error(err))
	}
	defer pg.Close()

	// Redis: cache de resultados + Pub/Sub do hub WS
	rdb, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer rdb.Close()

	// Kafka producer: publica result_declared para o settlement-worker
	writer := skafka.NewWriter(cfg.KafkaBrokers, cfg.TopicResultDeclared)
	defer writer.Close()

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Hub WebSocket alimentado pelo canal Redis Pub/Sub
	hub := ws.NewHub(func(r *http.Request) bool { return true })
	ws.StartRedisSubscriber(ctx, rdb, hub)

	api := &rhttp.API{
		Log:   log,
		Repo:  repo.NewPostgres(pg),
		Cache: rcache.New(rdb),
		Rdb:   rdb,
		Publ:  rpub.NewKafkaPublisher(writer),
		Hub:   hub,
	}
	apiSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: api.Router(),
	}

	// metrics/health
	msrv := metrics.StartMetricsServer(cfg.MetricsPort, func(hctx context.Context) error {
		if err := pg.PingContext(hctx); err != nil {
			return fmt.Errorf("pg: %w", err)
		}
		if err := rdb.Ping(hctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		return nil
	})
	defer msrv.Shutdown(context.Background())
	log.Info("metrics/health", zap.String("addr", msrv.Addr))

	go func() {
		<-ctx.Done()
		_ = apiSrv.Close()
	}()

	log.Info("result-service listening", zap.String("addr", fmt.Sprintf(":%s", cfg.HTTPPort)))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
}
