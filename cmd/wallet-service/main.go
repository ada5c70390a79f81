package main

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/Anilsharma012/meraMatka-sub000/internal/shared/config"
	"github.com/Anilsharma012/meraMatka-sub000/internal/shared/db"
	"github.com/Anilsharma012/meraMatka-sub000/internal/shared/logger"
	"github.com/Anilsharma012/meraMatka-sub000/internal/shared/metrics"
	whttp "github.com/Anilsharma012/meraMatka-sub000/internal/wallet-service/http"
	"github.com/Anilsharma012/meraMatka-sub000/internal/wallet-service/repo"
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

	repository := repo.NewPostgres(pg)
	api := whttp.NewServer(log, repository)
	apiSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: api.Router(),
	}

	// metrics/health
	msrv := metrics.StartMetricsServer(cfg.MetricsPort, pg.PingContext)
	defer msrv.Shutdown(context.Background())
	log.Info("metrics/health", zap.String("addr", msrv.Addr))

	log.Info("wallet-service listening", zap.String("addr", fmt.Sprintf(":%s", cfg.HTTPPort)))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
}
