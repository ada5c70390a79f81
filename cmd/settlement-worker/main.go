package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/Anilsharma012/meraMatka-sub000/internal/settlement"
	"github.com/Anilsharma012/meraMatka-sub000/internal/settlement-worker/consumer"
	"github.com/Anilsharma012/meraMatka-sub000/internal/settlement-worker/ledger"
	"github.com/Anilsharma012/meraMatka-sub000/internal/settlement-worker/lock"
	"github.com/Anilsharma012/meraMatka-sub000/internal/settlement-worker/payoutcfg"
	"github.com/Anilsharma012/meraMatka-sub000/internal/settlement-worker/sink"
	"github.com/Anilsharma012/meraMatka-sub000/internal/settlement-worker/store"
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

	// Postgres: apostas, marcadores de liquidação e payout configs
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg connect", zap.Error(err))
	}
	defer pg.Close()

	// Redis: lock por draw e cache de payout config
	rdb, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer rdb.Close()

	// Kafka consumer: eventos result_declared (consumer group settlement-worker)
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  strings.Split(cfg.KafkaBrokers, ","),
		GroupID:  "settlement-worker",
		Topic:    cfg.TopicResultDeclared,
		MinBytes: 1e3,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	// Kafka producers: draw_settled, anomalias e DLQ
	settledWriter := skafka.NewWriter(cfg.KafkaBrokers, cfg.TopicDrawSettled)
	defer settledWriter.Close()

	anomalyWriter := skafka.NewWriter(cfg.KafkaBrokers, cfg.TopicSettlementAnomalies)
	defer anomalyWriter.Close()

	var dlqWriter *kafkago.Writer
	if cfg.TopicResultDeclaredDLQ != "" {
		dlqWriter = skafka.NewWriter(cfg.KafkaBrokers, cfg.TopicResultDeclaredDLQ)
		defer dlqWriter.Close()
	}

	// Métricas Prometheus para monitoramento do processamento
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "settlement_messages_consumed_total", Help: "mensagens consumidas"})
	settled := prometheus.NewCounter(prometheus.CounterOpts{Name: "settlement_draws_settled_total", Help: "draws liquidados"})
	skipped := prometheus.NewCounter(prometheus.CounterOpts{Name: "settlement_duplicates_skipped_total", Help: "no-ops idempotentes"})
	evaluated := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "settlement_bets_evaluated_total", Help: "apostas avaliadas por desfecho"}, []string{"outcome"})
	credited := prometheus.NewCounter(prometheus.CounterOpts{Name: "settlement_credits_applied_total", Help: "créditos aplicados"})
	anomalies := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "settlement_anomalies_total", Help: "anomalias por tipo"}, []string{"kind"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "settlement_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, settled, skipped, evaluated, credited, anomalies, errorsBy)

	processor := &settlement.Processor{
		Log:           log,
		Store:         store.NewPostgres(pg),
		Ledger:        ledger.New(cfg.WalletURL),
		Config:        payoutcfg.New(pg, rdb, 60*time.Second),
		Lock:          lock.New(rdb, 2*time.Minute),
		Sink:          sink.New(log, anomalyWriter),
		CreditRetries: 3,
		CreditBackoff: 300 * time.Millisecond,

		OnEvaluated: func(outcome string) { evaluated.WithLabelValues(outcome).Inc() },
		OnCredited:  func() { credited.Inc() },
		OnAnomaly:   func(kind string) { anomalies.WithLabelValues(kind).Inc() },
	}

	worker := &consumer.Worker{
		Log:           log,
		Reader:        reader,
		Processor:     processor,
		SettledWriter: settledWriter,
		DLQWriter:     dlqWriter,

		OnConsumed: func() { consumed.Inc() },
		OnSettled:  func() { settled.Inc() },
		OnSkipped:  func() { skipped.Inc() },
		OnError:    func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	// Servidor HTTP para métricas e health check
	msrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return fmt.Errorf("pg: %w", err)
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		return nil
	})
	defer msrv.Shutdown(context.Background())
	log.Info("metrics/health listening", zap.String("addr", msrv.Addr))

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("settlement-worker started",
		zap.String("consume", cfg.TopicResultDeclared),
		zap.String("publish", cfg.TopicDrawSettled),
	)
	if err := worker.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("worker stopped with error", zap.Error(err))
	}
	log.Info("settlement-worker stopped")
}
