// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal services packages.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"hearth/internal/agent"
	agenthandler "hearth/internal/agent/handler"
	"hearth/internal/audit"
	"hearth/internal/loan"
	loanhandler "hearth/internal/loan/handler"
	"hearth/internal/platform/config"
	"hearth/internal/platform/httpserver"
	"hearth/internal/platform/jwtauth"
	"hearth/internal/platform/kafka"
	"hearth/internal/platform/logger"
	"hearth/internal/platform/metrics"
	platformredis "hearth/internal/platform/redis"
	"hearth/internal/report"
	reporthandler "hearth/internal/report/handler"
	httptransport "hearth/internal/transport/http"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Stores: Postgres when configured, in-memory otherwise (local dev).
	var (
		agentStore agent.Store
		loanStore  loan.Store
	)
	agentMem, loanMem := agent.NewInMemoryStore(), loan.NewInMemoryStore()
	agentStore, loanStore = agentMem, loanMem
	if cfg.PostgresURL != "" {
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			log.Error("postgres connect failed", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		agentStore = agent.NewPostgresStore(pool)
		loanStore = loan.NewPostgresStore(pool)
	}

	// Audit trail: events are queued in-process and drained to Kafka when a
	// broker is configured, otherwise kept in memory.
	queue := audit.NewChannelSink(1024, log)
	publisher := audit.NewPublisher(queue)

	var terminal audit.Sink = audit.NewInMemorySink()
	producer, err := kafka.NewProducer(cfg.KafkaBrokers)
	if err != nil {
		log.Error("kafka connect failed", "error", err)
		os.Exit(1)
	}
	if producer != nil {
		defer producer.Close()
		terminal = audit.NewKafkaSink(producer, cfg.KafkaAuditTopic)
	}
	worker := audit.NewWorker(queue, terminal, log)
	go func() {
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("audit worker stopped", "error", err)
		}
	}()

	var summaryCache report.Cache
	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis connect failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		summaryCache = report.NewRedisCache(redisClient)
	}

	m := metrics.New()
	jwtService := jwtauth.NewService(cfg.JWTSigningKey, "hearth")

	agentService := agent.NewService(agentStore, publisher, m, log, cfg.MinAgentAge)
	loanService := loan.NewService(loanStore, publisher, m, log, loan.Config{
		DefaultAnnualRatePercent: cfg.DefaultAnnualRatePercent,
		DefaultBankAgentID:       cfg.DefaultBankAgentID,
	})
	reportService := report.NewService(agentStore, loanStore, summaryCache, cfg.SummaryCacheTTL, m, log)

	router := httptransport.NewRouter(log,
		agenthandler.New(agentService, log, jwtService),
		loanhandler.New(loanService, log, jwtService),
		reporthandler.New(reportService, log, jwtService),
	)

	srv := httpserver.New(cfg.Addr, router)
	log.Info("starting hearth", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}
