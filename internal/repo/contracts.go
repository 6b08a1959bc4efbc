package repo

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/whalechillz/image-assets/internal/entity"
)

type (
	// AssetRepo stores raw asset bytes (S3).
	AssetRepo interface {
		Upload(ctx context.Context, key string, data io.Reader, contentType string, size int64) error
		Download(ctx context.Context, key string) (io.ReadCloser, error)
		DownloadBytes(ctx context.Context, key string) ([]byte, error)
		Delete(ctx context.Context, key string) error
	}

	// AssetMetadataRepo stores asset metadata (postgres).
	AssetMetadataRepo interface {
		Create(ctx context.Context, asset *entity.Asset) error
		GetByID(ctx context.Context, id uuid.UUID) (*entity.Asset, error)
		GetByIDs(ctx context.Context, ids uuid.UUIDs) ([]*entity.Asset, error)
		UpdateIngestResult(ctx context.Context, asset *entity.Asset) error
		Delete(ctx context.Context, id uuid.UUID) error
	}

	// UsageRepo reads asset reference locations maintained by external
	// writers (CMS, campaign tooling).
	UsageRepo interface {
		ListByAssetID(ctx context.Context, id uuid.UUID) ([]entity.UsageRef, error)
	}

	// OutboxAssetMetadataRepo stores ingest events (postgres, outbox table).
	OutboxAssetMetadataRepo interface {
		Create(ctx context.Context, event *entity.OutboxEvent) error
		GetPendingEvents(ctx context.Context, maxRetries, limit int) ([]*entity.OutboxEvent, error)
		MarkAsProcessingBatch(ctx context.Context, ids uuid.UUIDs) error
		MarkAsProcessedBatch(ctx context.Context, ids uuid.UUIDs) error
		MarkAsFailedBatch(ctx context.Context, ids uuid.UUIDs) error
		MarkMaxRetriesAsFailed(ctx context.Context, maxRetries int) error
		IncrementRetryCountBatch(ctx context.Context, ids uuid.UUIDs) error
		DeleteOldProcessedAndFailed(ctx context.Context) (int64, error)
	}

	// Transactor runs a function within one database transaction.
	Transactor interface {
		WithinTransaction(ctx context.Context, f func(ctx context.Context) error) error
	}
)
