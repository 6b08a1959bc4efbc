package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/whalechillz/image-assets/config"
	kafkactrl "github.com/whalechillz/image-assets/internal/controller/kafka"
	"github.com/whalechillz/image-assets/internal/controller/restapi"
	"github.com/whalechillz/image-assets/internal/controller/worker/outbox"
	"github.com/whalechillz/image-assets/internal/infrastructure/exifmeta"
	"github.com/whalechillz/image-assets/internal/infrastructure/fingerprint"
	infrakafka "github.com/whalechillz/image-assets/internal/infrastructure/kafka"
	"github.com/whalechillz/image-assets/internal/repo/persistent"
	"github.com/whalechillz/image-assets/internal/usecase/asset"
	"github.com/whalechillz/image-assets/internal/usecase/compare"
	"github.com/whalechillz/image-assets/internal/usecase/ingest"
	"github.com/whalechillz/image-assets/pkg/httpserver"
	"github.com/whalechillz/image-assets/pkg/kafka/consumer"
	"github.com/whalechillz/image-assets/pkg/kafka/producer"
	"github.com/whalechillz/image-assets/pkg/logger"
	"github.com/whalechillz/image-assets/pkg/postgres"
	"github.com/whalechillz/image-assets/pkg/s3client"
)

func Run(cfg *config.Config) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Logger
	l := logger.New(cfg.Log.Level)

	// Repository

	// s3
	s3Ctx, s3Cancel := context.WithTimeout(ctx, cfg.S3.CfgLoadTimeout)
	defer s3Cancel()
	s3c, err := s3client.New(s3Ctx, cfg.S3.Endpoint, cfg.S3.AccessKey, cfg.S3.SecretKey)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - s3client.New: %w", err))
	}

	// postgres
	pg, err := postgres.New(cfg.PG.URL, postgres.MaxPoolSize(cfg.PG.PoolMax))
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - postgres.New: %w", err))
	}
	defer pg.Close()

	assetRepo := persistent.NewAssetRepo(s3c, cfg.S3.Bucket)
	metadataRepo := persistent.NewAssetMetadataRepo(pg)
	usageRepo := persistent.NewUsageRepo(pg)

	// Infrastructure
	fp := fingerprint.New()
	meta := exifmeta.New()

	// Use-Case

	// asset use-case
	assetUseCase := asset.New(
		assetRepo,
		metadataRepo,
		persistent.NewOutboxAssetMetadataRepo(pg),
		usageRepo,
		pg,
		l,
	)

	// compare use-case
	compareUseCase := compare.New(
		assetRepo,
		metadataRepo,
		usageRepo,
		fp,
		cfg.Compare.FetchTimeout,
		l,
	)

	// ingest use-case
	ingestUseCase := ingest.New(fp, meta)

	// Kafka Producer
	kafkaProducer, err := producer.New(ctx, cfg.Kafka.Brokers)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - producer.New: %w", err))
	}

	// Outbox Relay Worker
	outboxRelayWorker := outbox.New(
		assetUseCase,
		infrakafka.NewEventProducer(kafkaProducer, cfg.OutboxRelay.MaxRetries, cfg.Kafka.Topic),
		l,
		cfg.OutboxRelay.PollInterval,
		cfg.OutboxRelay.CleanupInterval,
		cfg.OutboxRelay.MarkFailedInterval,
		cfg.OutboxRelay.ProcessBatchTimeout,
		cfg.OutboxRelay.BatchSize,
		cfg.OutboxRelay.MaxRetries,
	)

	// Kafka Consumer
	kafkaConsumer, err := consumer.New(ctx, cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.Topic)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - consumer.New: %w", err))
	}

	// Kafka as Controller
	kafkaController := kafkactrl.New(
		ingestUseCase,
		assetUseCase,
		infrakafka.NewEventConsumer(kafkaConsumer),
		l,
		cfg.KafkaController.CommitTimeout,
		cfg.KafkaController.ProcessTimeout,
		cfg.KafkaController.CPUTimeout,
		runtime.NumCPU(),
	)

	// HTTP Server
	httpServer := httpserver.New(l, httpserver.Port(cfg.HTTP.Port), httpserver.Prefork(cfg.HTTP.UsePreforkMode))
	restapi.NewRouter(httpServer.App, cfg, assetUseCase, compareUseCase, l)

	// Start Components
	err = outboxRelayWorker.Start(ctx)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - outboxRelayWorker.Start: %w", err))
	}
	err = kafkaController.Start(ctx)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - kafkaController.Start: %w", err))
	}
	httpServer.Start()

	// Waiting Signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		l.Info("app - Run - signal: %s", s.String())
	case err = <-httpServer.Notify():
		l.Error(fmt.Errorf("app - Run - httpServer.Notify: %w", err))
	}

	// Shutdown
	err = httpServer.Shutdown()
	if err != nil {
		l.Error(fmt.Errorf("app - Run - httpServer.Shutdown: %w", err))
	}

	orlShutdownCtx, orlShutdownCancel := context.WithTimeout(ctx, cfg.OutboxRelay.ShutdownTimeout)
	defer orlShutdownCancel()
	err = outboxRelayWorker.Shutdown(orlShutdownCtx)
	if err != nil {
		l.Error(fmt.Errorf("app - Run - outboxRelayWorker.Shutdown: %w", err))
	}

	kcShutdownCtx, kcShutdownCancel := context.WithTimeout(ctx, cfg.KafkaController.ShutdownTimeout)
	defer kcShutdownCancel()
	err = kafkaController.Shutdown(kcShutdownCtx)
	if err != nil {
		l.Error(fmt.Errorf("app - Run - kafkaController.Shutdown: %w", err))
	}
}
