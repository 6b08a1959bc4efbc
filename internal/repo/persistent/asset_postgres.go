package persistent

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/whalechillz/image-assets/internal/entity"
	"github.com/whalechillz/image-assets/pkg/postgres"
	"github.com/whalechillz/image-assets/pkg/types/errs"
)

const (
	// Table
	assetsTable = "image_assets"

	// Columns
	idColumn            = "id"
	storageKeyColumn    = "storage_key"
	filenameColumn      = "filename"
	contentTypeColumn   = "content_type"
	formatColumn        = "format"
	sizeColumn          = "size"
	widthColumn         = "width"
	heightColumn        = "height"
	hashMD5Column       = "hash_md5"
	hashSHA256Column    = "hash_sha256"
	phashDCTColumn      = "phash_dct"
	exifCreatorColumn   = "exif_creator"
	exifCopyrightColumn = "exif_copyright"
	statusColumn        = "status"
	createdAtColumn     = "created_at"
	ingestedAtColumn    = "ingested_at"
)

var assetColumns = []string{
	idColumn,
	storageKeyColumn,
	filenameColumn,
	contentTypeColumn,
	formatColumn,
	sizeColumn,
	widthColumn,
	heightColumn,
	hashMD5Column,
	hashSHA256Column,
	phashDCTColumn,
	exifCreatorColumn,
	exifCopyrightColumn,
	statusColumn,
	createdAtColumn,
	ingestedAtColumn,
}

type AssetMetadataRepo struct {
	*postgres.Postgres
}

func NewAssetMetadataRepo(pg *postgres.Postgres) *AssetMetadataRepo {
	return &AssetMetadataRepo{pg}
}

func (r *AssetMetadataRepo) Create(ctx context.Context, asset *entity.Asset) error {
	sql, args, err := r.Builder.
		Insert(assetsTable).
		Columns(
			idColumn,
			storageKeyColumn,
			filenameColumn,
			contentTypeColumn,
			formatColumn,
			sizeColumn,
			statusColumn,
			createdAtColumn,
		).
		Values(
			asset.ID,
			asset.StorageKey,
			asset.Filename,
			asset.ContentType,
			asset.Format,
			asset.Size,
			asset.Status,
			asset.CreatedAt,
		).ToSql()
	if err != nil {
		return fmt.Errorf("AssetMetadataRepo - Create - r.Builder.ToSql: %w", err)
	}

	// Pool / Tx
	executor := r.GetExecutor(ctx)

	_, err = executor.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("AssetMetadataRepo - Create - executor.Exec: %w", err)
	}

	return nil
}

func scanAsset(row pgx.Row) (*entity.Asset, error) {
	var asset entity.Asset

	err := row.Scan(
		&asset.ID,
		&asset.StorageKey,
		&asset.Filename,
		&asset.ContentType,
		&asset.Format,
		&asset.Size,
		&asset.Width,
		&asset.Height,
		&asset.HashMD5,
		&asset.HashSHA256,
		&asset.PHashDCT,
		&asset.ExifCreator,
		&asset.ExifCopyright,
		&asset.Status,
		&asset.CreatedAt,
		&asset.IngestedAt,
	)
	if err != nil {
		return nil, err
	}

	return &asset, nil
}

func (r *AssetMetadataRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Asset, error) {
	sql, args, err := r.Builder.
		Select(assetColumns...).
		From(assetsTable).
		Where(squirrel.Eq{idColumn: id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("AssetMetadataRepo - GetByID - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	asset, err := scanAsset(executor.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("AssetMetadataRepo - GetByID: %w", errs.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("AssetMetadataRepo - GetByID - executor.QueryRow: %w", err)
	}

	return asset, nil
}

func (r *AssetMetadataRepo) GetByIDs(ctx context.Context, ids uuid.UUIDs) ([]*entity.Asset, error) {
	sql, args, err := r.Builder.
		Select(assetColumns...).
		From(assetsTable).
		Where(squirrel.Eq{idColumn: ids}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("AssetMetadataRepo - GetByIDs - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	rows, err := executor.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("AssetMetadataRepo - GetByIDs - executor.Query: %w", err)
	}
	defer rows.Close()

	assets := make([]*entity.Asset, 0, len(ids))
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("AssetMetadataRepo - GetByIDs - rows.Scan: %w", err)
		}
		assets = append(assets, asset)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("AssetMetadataRepo - GetByIDs - rows.Err: %w", err)
	}

	return assets, nil
}

func (r *AssetMetadataRepo) UpdateIngestResult(ctx context.Context, asset *entity.Asset) error {
	sql, args, err := r.Builder.
		Update(assetsTable).
		Set(formatColumn, asset.Format).
		Set(widthColumn, asset.Width).
		Set(heightColumn, asset.Height).
		Set(hashMD5Column, asset.HashMD5).
		Set(hashSHA256Column, asset.HashSHA256).
		Set(phashDCTColumn, asset.PHashDCT).
		Set(exifCreatorColumn, asset.ExifCreator).
		Set(exifCopyrightColumn, asset.ExifCopyright).
		Set(statusColumn, asset.Status).
		Set(ingestedAtColumn, asset.IngestedAt).
		Where(squirrel.Eq{idColumn: asset.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("AssetMetadataRepo - UpdateIngestResult - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	tag, err := executor.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("AssetMetadataRepo - UpdateIngestResult - executor.Exec: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("AssetMetadataRepo - UpdateIngestResult: %w", errs.ErrRecordNotFound)
	}

	return nil
}

func (r *AssetMetadataRepo) Delete(ctx context.Context, id uuid.UUID) error {
	sql, args, err := r.Builder.
		Delete(assetsTable).
		Where(squirrel.Eq{idColumn: id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("AssetMetadataRepo - Delete - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	tag, err := executor.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("AssetMetadataRepo - Delete - executor.Exec: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("AssetMetadataRepo - Delete: %w", errs.ErrRecordNotFound)
	}

	return nil
}
