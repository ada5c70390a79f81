package main

import (
	"context"
	"math/rand"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	autoresult "github.com/Anilsharma012/meraMatka-sub000/internal/auto-result"
	rpub "github.com/Anilsharma012/meraMatka-sub000/internal/result-service/producer"
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

	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg connect", zap.Error(err))
	}
	defer pg.Close()

	writer := skafka.NewWriter(cfg.KafkaBrokers, cfg.TopicResultDeclared)
	defer writer.Close()

	// Métricas Prometheus
	declaredTotal := prometheus.NewCounter(prometheus.CounterOpts{Name: "autoresult_declared_total", Help: "resultados automáticos declarados"})
	errorsTotal := prometheus.NewCounter(prometheus.CounterOpts{Name: "autoresult_errors_total", Help: "erros do job"})
	prometheus.MustRegister(declaredTotal, errorsTotal)

	gen := &autoresult.Generator{
		Log:      log,
		Repo:     autoresult.NewRepo(pg),
		Publ:     rpub.NewKafkaPublisher(writer),
		Interval: 30 * time.Second,
		Rand:     rand.New(rand.NewSource(time.Now().UnixNano())),

		OnDeclared: func() { declaredTotal.Inc() },
		OnError:    func() { errorsTotal.Inc() },
	}

	// Servidor HTTP para métricas e health check
	msrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return pg.PingContext(ctx)
	})
	defer msrv.Shutdown(context.Background())
	log.Info("metrics/health listening", zap.String("addr", msrv.Addr))

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("auto-result-worker started")
	if err := gen.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("generator stopped with error", zap.Error(err))
	}
	log.Info("auto-result-worker stopped")
}
