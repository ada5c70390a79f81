package main

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	bhttp "github.com/Anilsharma012/meraMatka-sub000/internal/bet-service/http"
	kpub "github.com/Anilsharma012/meraMatka-sub000/internal/bet-service/producer"
	"github.com/Anilsharma012/meraMatka-sub000/internal/bet-service/repo"
	"github.com/Anilsharma012/meraMatka-sub000/internal/bet-service/wallet"
	"github.com/Anilsharma012/meraMatka-sub000/internal/shared/config"
	"github.com/Anilsharma012/meraMatka-sub000/internal/shared/db"
	skafka "github.com/Anilsharma012/meraMatka-sub000/internal/shared/kafka"
	"github.com/Anilsharma012/meraMatka-sub000/internal/shared/logger"
	"github.com/Anilsharma012/meraMatka-sub000/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, _ := logger.New(cfg.ServiceName, cfg.Env)
	defer log.Sync()

	// Postgres
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg", zap.Error(err))
	}
	defer pg.Close()

	// Kafka writer (topic bet_placed)
	writer := skafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetPlaced)
	defer writer.Close()

	// deps
	repository := repo.NewPostgres(pg)
	wcli := wallet.New(cfg.WalletURL) // wallet-service
	publ := kpub.NewKafkaPublisher(writer, cfg.TopicBetPlaced)

	// HTTP público
	api := bhttp.NewServer(log, repository, wcli, publ)
	apiSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: api.Router(),
	}

	// metrics/health
	msrv := metrics.StartMetricsServer(cfg.MetricsPort, pg.PingContext)
	defer msrv.Shutdown(context.Background())
	log.Info("metrics/health", zap.String("addr", msrv.Addr))

	log.Info("bet-service listening", zap.String("addr", fmt.Sprintf(":%s", cfg.HTTPPort)))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
}
