package compare

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/whalechillz/image-assets/internal/entity"
	"github.com/whalechillz/image-assets/internal/infrastructure"
	"github.com/whalechillz/image-assets/internal/repo"
	"github.com/whalechillz/image-assets/pkg/logger"
	"github.com/whalechillz/image-assets/pkg/types/errs"
)

const (
	MinImages = 1
	MaxImages = 4
)

type CompareUseCase struct {
	assetRepo    repo.AssetRepo
	metadataRepo repo.AssetMetadataRepo
	usageRepo    repo.UsageRepo
	fp           infrastructure.Fingerprinter

	fetchTimeout time.Duration

	logger logger.Interface
}

func New(
	assetRepo repo.AssetRepo,
	metadataRepo repo.AssetMetadataRepo,
	usageRepo repo.UsageRepo,
	fp infrastructure.Fingerprinter,
	fetchTimeout time.Duration,
	l logger.Interface,
) *CompareUseCase {
	return &CompareUseCase{
		assetRepo:    assetRepo,
		metadataRepo: metadataRepo,
		usageRepo:    usageRepo,
		fp:           fp,
		fetchTimeout: fetchTimeout,
		logger:       l,
	}
}

// Compare resolves 1-4 asset IDs, enriches each with a fresh fingerprint and
// usage information, and aggregates the duplicate verdict. Only structural
// problems fail the request: wrong cardinality or unresolvable IDs. Content
// fetch, decode and usage lookups degrade per image.
func (uc *CompareUseCase) Compare(ctx context.Context, ids uuid.UUIDs) (*entity.Comparison, error) {
	if len(ids) < MinImages || len(ids) > MaxImages {
		return nil, fmt.Errorf("CompareUseCase - Compare: %w", errs.ErrInvalidImageCount)
	}

	assets, err := uc.metadataRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("CompareUseCase - Compare - uc.metadataRepo.GetByIDs: %w", err)
	}

	if len(assets) != len(ids) {
		return nil, fmt.Errorf("CompareUseCase - Compare: %w",
			&errs.AssetsNotFoundError{Requested: len(ids), Found: len(assets)})
	}

	// per-image enrichment is independent, run it concurrently
	images := make([]entity.ComparedImage, len(assets))

	g, gctx := errgroup.WithContext(ctx)
	for i, a := range assets {
		g.Go(func() error {
			images[i] = uc.enrich(gctx, a)
			return nil
		})
	}
	// enrich degrades instead of failing
	_ = g.Wait()

	comparison := &entity.Comparison{Images: images}

	// a single image has nothing to compare against
	if len(images) == 1 {
		comparison.Analysis.Recommendation = "Image details are available for review."
		return comparison, nil
	}

	comparison.Analysis = analyze(images)

	return comparison, nil
}

func (uc *CompareUseCase) enrich(ctx context.Context, asset *entity.Asset) entity.ComparedImage {
	img := entity.ComparedImage{Asset: *asset}

	fetchCtx, cancel := context.WithTimeout(ctx, uc.fetchTimeout)
	defer cancel()

	data, err := uc.assetRepo.DownloadBytes(fetchCtx, asset.StorageKey)
	if err != nil {
		// comparison proceeds on metadata signals alone
		uc.logger.Warn("failed to fetch content for asset=%s, error=%v", asset.ID, err)
	} else {
		fp, err := uc.fp.Fingerprint(data)
		if err != nil {
			uc.logger.Warn("failed to fingerprint asset=%s, error=%v", asset.ID, err)
		} else {
			img.Fingerprint = fp
		}

		// assets not yet ingested get dimensions from the fresh decode
		if img.Width == nil || img.Height == nil {
			width, height, format, err := uc.fp.Identify(data)
			if err == nil {
				img.Width = &width
				img.Height = &height
				if img.Format == "" {
					img.Format = format
				}
			}
		}
	}

	refs, err := uc.usageRepo.ListByAssetID(ctx, asset.ID)
	if err != nil {
		// usage lookup must never block a comparison
		uc.logger.Warn("usage lookup failed for asset=%s, error=%v", asset.ID, err)
	} else {
		img.Usage = entity.Usage{
			Used:   len(refs) > 0,
			Count:  len(refs),
			UsedIn: refs,
		}
	}

	return img
}
