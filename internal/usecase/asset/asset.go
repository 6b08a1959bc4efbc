package asset

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/whalechillz/image-assets/internal/dto"
	"github.com/whalechillz/image-assets/internal/entity"
	"github.com/whalechillz/image-assets/internal/repo"
	"github.com/whalechillz/image-assets/pkg/logger"
)

type AssetUseCase struct {
	assetRepo    repo.AssetRepo
	metadataRepo repo.AssetMetadataRepo
	outboxRepo   repo.OutboxAssetMetadataRepo
	usageRepo    repo.UsageRepo
	transactor   repo.Transactor

	logger logger.Interface
}

func New(
	assetRepo repo.AssetRepo,
	metadataRepo repo.AssetMetadataRepo,
	outboxRepo repo.OutboxAssetMetadataRepo,
	usageRepo repo.UsageRepo,
	transactor repo.Transactor,
	l logger.Interface,
) *AssetUseCase {
	return &AssetUseCase{
		assetRepo:    assetRepo,
		metadataRepo: metadataRepo,
		outboxRepo:   outboxRepo,
		usageRepo:    usageRepo,
		transactor:   transactor,
		logger:       l,
	}
}

func (uc *AssetUseCase) UploadNewAsset(
	ctx context.Context,
	data io.Reader,
	filename string,
	contentType string,
	size int64,
) (*entity.Asset, error) {
	assetID := uuid.New()
	storageKey := fmt.Sprintf("originals/%s", assetID)

	// 1. upload to S3
	err := uc.assetRepo.Upload(ctx, storageKey, data, contentType, size)
	if err != nil {
		return nil, fmt.Errorf("AssetUseCase - UploadNewAsset - uc.assetRepo.Upload: %w", err)
	}

	asset := &entity.Asset{
		ID:          assetID,
		StorageKey:  storageKey,
		Filename:    filename,
		ContentType: contentType,
		Format:      formatFromFilename(filename),
		Size:        size,
		Status:      entity.Pending,
		CreatedAt:   time.Now(),
	}

	// 2. metadata row and ingest outbox event in a single transaction
	err = uc.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := uc.metadataRepo.Create(ctx, asset); err != nil {
			return fmt.Errorf("AssetUseCase - UploadNewAsset - uc.metadataRepo.Create: %w", err)
		}

		event, err := uc.createOutboxEvent(assetID, storageKey, contentType)
		if err != nil {
			return fmt.Errorf("AssetUseCase - UploadNewAsset - uc.createOutboxEvent: %w", err)
		}
		if err := uc.outboxRepo.Create(ctx, event); err != nil {
			return fmt.Errorf("AssetUseCase - UploadNewAsset - uc.outboxRepo.Create: %w", err)
		}

		return nil
	})

	// on a failed transaction the S3 object must not leak
	if err != nil {
		deleteErr := uc.assetRepo.Delete(ctx, storageKey)
		if deleteErr != nil {
			uc.logger.Error(deleteErr, "AssetUseCase - UploadNewAsset - uc.assetRepo.Delete")
		}
		return nil, fmt.Errorf("AssetUseCase - UploadNewAsset - uc.transactor.WithinTransaction: %w", err)
	}

	return asset, nil
}

func (uc *AssetUseCase) GetAsset(ctx context.Context, id uuid.UUID) (*entity.Asset, error) {
	asset, err := uc.metadataRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("AssetUseCase - GetAsset - uc.metadataRepo.GetByID: %w", err)
	}

	return asset, nil
}

func (uc *AssetUseCase) DownloadAsset(ctx context.Context, key string) (io.ReadCloser, error) {
	body, err := uc.assetRepo.Download(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("AssetUseCase - DownloadAsset - uc.assetRepo.Download: %w", err)
	}

	return body, nil
}

func (uc *AssetUseCase) DownloadAssetBytes(ctx context.Context, key string) ([]byte, error) {
	b, err := uc.assetRepo.DownloadBytes(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("AssetUseCase - DownloadAssetBytes - uc.assetRepo.DownloadBytes: %w", err)
	}

	return b, nil
}

func (uc *AssetUseCase) DeleteAsset(ctx context.Context, id uuid.UUID) error {
	// 1. resolve the S3 key
	asset, err := uc.metadataRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("AssetUseCase - DeleteAsset - uc.metadataRepo.GetByID: %w", err)
	}

	// 2. delete metadata first (outbox rows go with it via cascade)
	err = uc.metadataRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("AssetUseCase - DeleteAsset - uc.metadataRepo.Delete: %w", err)
	}

	// 3. delete the object; an orphaned object is only worth a warning
	err = uc.assetRepo.Delete(ctx, asset.StorageKey)
	if err != nil {
		uc.logger.Warn("failed to delete key=%s, error=%v", asset.StorageKey, err)
	}

	return nil
}

// GetUsage reads reference locations for one asset. Callers that must not
// fail on lookup problems (the comparison path) degrade the error themselves.
func (uc *AssetUseCase) GetUsage(ctx context.Context, id uuid.UUID) (*entity.Usage, error) {
	refs, err := uc.usageRepo.ListByAssetID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("AssetUseCase - GetUsage - uc.usageRepo.ListByAssetID: %w", err)
	}

	return &entity.Usage{
		Used:   len(refs) > 0,
		Count:  len(refs),
		UsedIn: refs,
	}, nil
}

func (uc *AssetUseCase) CompleteIngest(ctx context.Context, id uuid.UUID, result dto.IngestResult) error {
	// 1. current metadata, so untouched fields survive
	asset, err := uc.metadataRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("AssetUseCase - CompleteIngest - uc.metadataRepo.GetByID: %w", err)
	}

	// 2. apply derived fields
	asset.HashMD5 = &result.HashMD5
	asset.HashSHA256 = &result.HashSHA256
	asset.Width = &result.Width
	asset.Height = &result.Height
	if result.Format != "" {
		// decoded format wins over the extension-derived guess
		asset.Format = result.Format
	}
	if result.PHashDCT != "" {
		asset.PHashDCT = &result.PHashDCT
	}
	if result.ExifCreator != "" {
		asset.ExifCreator = &result.ExifCreator
	}
	if result.ExifCopyright != "" {
		asset.ExifCopyright = &result.ExifCopyright
	}

	asset.Status = entity.Processed
	now := time.Now()
	asset.IngestedAt = &now

	// 3. persist
	err = uc.metadataRepo.UpdateIngestResult(ctx, asset)
	if err != nil {
		return fmt.Errorf("AssetUseCase - CompleteIngest - uc.metadataRepo.UpdateIngestResult: %w", err)
	}

	return nil
}

func (uc *AssetUseCase) GetPendingEvents(ctx context.Context, maxRetries, limit int) ([]*entity.OutboxEvent, error) {
	events, err := uc.outboxRepo.GetPendingEvents(ctx, maxRetries, limit)
	if err != nil {
		return nil, fmt.Errorf("AssetUseCase - GetPendingEvents - uc.outboxRepo.GetPendingEvents: %w", err)
	}

	return events, nil
}

func (uc *AssetUseCase) MarkAsProcessingBatch(ctx context.Context, events []*entity.OutboxEvent) error {
	err := uc.outboxRepo.MarkAsProcessingBatch(ctx, eventIDs(events))
	if err != nil {
		return fmt.Errorf("AssetUseCase - MarkAsProcessingBatch - uc.outboxRepo.MarkAsProcessingBatch: %w", err)
	}

	return nil
}

func (uc *AssetUseCase) MarkAsProcessedBatch(ctx context.Context, events []*entity.OutboxEvent) error {
	err := uc.outboxRepo.MarkAsProcessedBatch(ctx, eventIDs(events))
	if err != nil {
		return fmt.Errorf("AssetUseCase - MarkAsProcessedBatch - uc.outboxRepo.MarkAsProcessedBatch: %w", err)
	}

	return nil
}

func (uc *AssetUseCase) IncrementRetryCountBatch(ctx context.Context, events []*entity.OutboxEvent) error {
	err := uc.outboxRepo.IncrementRetryCountBatch(ctx, eventIDs(events))
	if err != nil {
		return fmt.Errorf("AssetUseCase - IncrementRetryCountBatch - uc.outboxRepo.IncrementRetryCountBatch: %w", err)
	}

	return nil
}

func (uc *AssetUseCase) MarkMaxRetriesAsFailed(ctx context.Context, maxRetries int) error {
	err := uc.outboxRepo.MarkMaxRetriesAsFailed(ctx, maxRetries)
	if err != nil {
		return fmt.Errorf("AssetUseCase - MarkMaxRetriesAsFailed - uc.outboxRepo.MarkMaxRetriesAsFailed: %w", err)
	}

	return nil
}

func (uc *AssetUseCase) CleanupOutbox(ctx context.Context) error {
	count, err := uc.outboxRepo.DeleteOldProcessedAndFailed(ctx)
	if err != nil {
		return fmt.Errorf("AssetUseCase - CleanupOutbox - uc.outboxRepo.DeleteOldProcessedAndFailed: %w", err)
	}

	if count > 0 {
		uc.logger.Info("deleted old events, count = %d", count)
	}

	return nil
}
