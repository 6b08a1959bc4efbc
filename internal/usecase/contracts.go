package usecase

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/whalechillz/image-assets/internal/dto"
	"github.com/whalechillz/image-assets/internal/entity"
)

type (
	AssetUseCase interface {
		UploadNewAsset(
			ctx context.Context,
			data io.Reader,
			filename string,
			contentType string,
			size int64,
		) (*entity.Asset, error)
		GetAsset(ctx context.Context, id uuid.UUID) (*entity.Asset, error)
		DownloadAsset(ctx context.Context, key string) (io.ReadCloser, error)
		DownloadAssetBytes(ctx context.Context, key string) ([]byte, error)
		DeleteAsset(ctx context.Context, id uuid.UUID) error
		GetUsage(ctx context.Context, id uuid.UUID) (*entity.Usage, error)
		CompleteIngest(ctx context.Context, id uuid.UUID, result dto.IngestResult) error
		GetPendingEvents(ctx context.Context, maxRetries, limit int) ([]*entity.OutboxEvent, error)
		MarkAsProcessingBatch(ctx context.Context, events []*entity.OutboxEvent) error
		MarkAsProcessedBatch(ctx context.Context, events []*entity.OutboxEvent) error
		IncrementRetryCountBatch(ctx context.Context, events []*entity.OutboxEvent) error
		MarkMaxRetriesAsFailed(ctx context.Context, maxRetries int) error
		CleanupOutbox(ctx context.Context) error
	}

	CompareUseCase interface {
		Compare(ctx context.Context, ids uuid.UUIDs) (*entity.Comparison, error)
	}

	IngestUseCase interface {
		Ingest(ctx context.Context, data []byte) (*dto.IngestResult, error)
	}
)
