package persistent

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/whalechillz/image-assets/internal/entity"
	"github.com/whalechillz/image-assets/pkg/postgres"
)

const (
	// Table
	usageTable = "image_asset_usage"

	// Columns
	usageAssetIDColumn = "asset_id"
	usageRefTypeColumn = "ref_type"
	usageTitleColumn   = "title"
	usageURLColumn     = "url"
)

// UsageRepo reads reference locations written by the CMS side. This service
// never writes the table.
type UsageRepo struct {
	*postgres.Postgres
}

func NewUsageRepo(pg *postgres.Postgres) *UsageRepo {
	return &UsageRepo{pg}
}

func (r *UsageRepo) ListByAssetID(ctx context.Context, id uuid.UUID) ([]entity.UsageRef, error) {
	sql, args, err := r.Builder.
		Select(
			usageRefTypeColumn,
			usageTitleColumn,
			usageURLColumn,
		).
		From(usageTable).
		Where(squirrel.Eq{usageAssetIDColumn: id}).
		OrderBy(usageRefTypeColumn + " ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("UsageRepo - ListByAssetID - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	rows, err := executor.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("UsageRepo - ListByAssetID - executor.Query: %w", err)
	}
	defer rows.Close()

	var refs []entity.UsageRef
	for rows.Next() {
		var ref entity.UsageRef
		err = rows.Scan(&ref.Type, &ref.Title, &ref.URL)
		if err != nil {
			return nil, fmt.Errorf("UsageRepo - ListByAssetID - rows.Scan: %w", err)
		}
		refs = append(refs, ref)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("UsageRepo - ListByAssetID - rows.Err: %w", err)
	}

	return refs, nil
}
