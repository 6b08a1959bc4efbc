package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	kafkapc "github.com/whalechillz/image-assets/internal/infrastructure/kafka"
	"github.com/whalechillz/image-assets/internal/usecase"
	"github.com/whalechillz/image-assets/pkg/logger"
)

type KafkaController struct {
	ingest usecase.IngestUseCase
	assets usecase.AssetUseCase
	ec     *kafkapc.EventConsumer
	logger logger.Interface

	commitTimeout  time.Duration
	processTimeout time.Duration
	cpuTimeout     time.Duration

	workers int
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	started atomic.Bool
}

func New(
	ingest usecase.IngestUseCase,
	assets usecase.AssetUseCase,
	ec *kafkapc.EventConsumer,
	l logger.Interface,
	commitTimeout time.Duration,
	processTimeout time.Duration,
	cpuTimeout time.Duration,
	workers int,
) *KafkaController {
	return &KafkaController{
		ingest:         ingest,
		assets:         assets,
		ec:             ec,
		logger:         l,
		commitTimeout:  commitTimeout,
		processTimeout: processTimeout,
		cpuTimeout:     cpuTimeout,
		workers:        workers,
	}
}

func (c *KafkaController) Start(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return fmt.Errorf("KafkaController - Start - controller already started")
	}

	c.ctx, c.cancel = context.WithCancel(ctx)

	// task channel
	tasks := make(chan kafka.Message, c.workers*2)

	// spin up workers
	for i := 0; i < c.workers; i++ {
		c.wg.Add(1)
		go c.worker(tasks)
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer close(tasks)

		for {
			select {
			case <-c.ctx.Done():
				return
			default:
				// 1. read from kafka
				event, err := c.ec.ReadEvent(c.ctx)
				if err != nil {
					if !errors.Is(err, context.Canceled) {
						c.logger.Error(err, "KafkaController - Start - c.ec.ReadEvent")
					}
					continue
				}

				// 2. hand off to workers
				select {
				case tasks <- event:
				case <-c.ctx.Done():
					return
				}
			}
		}
	}()

	return nil
}

func (c *KafkaController) ingestAsset(ctx context.Context, event kafka.Message) error {
	var payload AssetEventPayload
	err := json.Unmarshal(event.Value, &payload)
	if err != nil {
		return fmt.Errorf("KafkaController - ingestAsset - json.Unmarshal: %w", err)
	}

	// 1. download from S3
	data, err := c.assets.DownloadAssetBytes(ctx, payload.StorageKey)
	if err != nil {
		return fmt.Errorf("KafkaController - ingestAsset - c.assets.DownloadAssetBytes: %w", err)
	}

	// 2. digests, dimensions, perceptual hash, exif
	cpuCtx, cpuCancel := context.WithTimeout(ctx, c.cpuTimeout)
	defer cpuCancel()
	result, err := c.ingest.Ingest(cpuCtx, data)
	if err != nil {
		return fmt.Errorf("KafkaController - ingestAsset - c.ingest.Ingest: %w", err)
	}

	// 3. persist derived metadata, flip status
	err = c.assets.CompleteIngest(ctx, payload.ID, *result)
	if err != nil {
		return fmt.Errorf("KafkaController - ingestAsset - c.assets.CompleteIngest: %w", err)
	}

	return nil
}

func (c *KafkaController) worker(tasks <-chan kafka.Message) {
	defer c.wg.Done()

	// drain the channel until it closes
	for event := range tasks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					c.logger.Error(fmt.Errorf("panic %v", r), "KafkaController - worker - panic")
				}
			}()

			processCtx, processCancel := context.WithTimeout(c.ctx, c.processTimeout)
			err := c.ingestAsset(processCtx, event)
			processCancel()
			if err != nil {
				c.logger.Error(err, "KafkaController - worker - c.ingestAsset: %w", err)

				return
			}

			// commit only after a successful ingest
			commitCtx, commitCancel := context.WithTimeout(c.ctx, c.commitTimeout)
			err = c.ec.CommitEvent(commitCtx, event)
			commitCancel()
			if err != nil {
				c.logger.Error(err, "KafkaController - worker - c.ec.CommitEvent: %w", err)
			}
		}()
	}
}

func (c *KafkaController) Shutdown(ctx context.Context) error {
	if !c.started.Load() {
		return nil
	}

	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})

	go func() {
		c.wg.Wait()
		c.ec.Close()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return nil
	}
}
