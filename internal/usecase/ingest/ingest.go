package ingest

import (
	"context"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/whalechillz/image-assets/internal/dto"
	"github.com/whalechillz/image-assets/internal/infrastructure"
	"github.com/whalechillz/image-assets/pkg/types/errs"
)

// IngestUseCase derives everything the asset domain knows about raw bytes:
// content hashes, pixel dimensions, actual format, a stored DCT perceptual
// hash, and embedded attribution.
type IngestUseCase struct {
	fp   infrastructure.Fingerprinter
	meta infrastructure.MetadataExtractor
}

func New(fp infrastructure.Fingerprinter, meta infrastructure.MetadataExtractor) *IngestUseCase {
	return &IngestUseCase{fp: fp, meta: meta}
}

func (uc *IngestUseCase) Ingest(ctx context.Context, data []byte) (*dto.IngestResult, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("IngestUseCase - Ingest: %w", errs.ErrEmptyContent)
	}

	md5Sum := md5.Sum(data)
	sha256Sum := sha256.Sum256(data)

	result := &dto.IngestResult{
		HashMD5:    hex.EncodeToString(md5Sum[:]),
		HashSHA256: hex.EncodeToString(sha256Sum[:]),
	}

	width, height, format, err := uc.fp.Identify(data)
	if err != nil {
		return nil, fmt.Errorf("IngestUseCase - Ingest - uc.fp.Identify: %w", err)
	}

	result.Width = width
	result.Height = height
	result.Format = format

	dctHash, err := uc.fp.DCTHash(data)
	if err != nil {
		return nil, fmt.Errorf("IngestUseCase - Ingest - uc.fp.DCTHash: %w", err)
	}

	result.PHashDCT = dctHash

	// attribution is best-effort
	result.ExifCreator, result.ExifCopyright = uc.meta.Extract(data)

	return result, nil
}
