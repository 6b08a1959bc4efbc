package entity

import (
	"time"

	"github.com/google/uuid"
)

type Asset struct {
	ID uuid.UUID `json:"id"`

	StorageKey string `json:"storage_key"`

	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Format      string `json:"format"` // jpg, jpeg, png, webp, gif
	Size        int64  `json:"size"`

	Width  *int `json:"width,omitempty"`
	Height *int `json:"height,omitempty"`

	// Content hashes, filled in by the ingest pipeline.
	HashMD5    *string `json:"hash_md5,omitempty"`
	HashSHA256 *string `json:"hash_sha256,omitempty"`

	// DCT perceptual hash, stored at ingest. The comparison path computes
	// its own stride fingerprint fresh per request and does not read this.
	PHashDCT *string `json:"phash_dct,omitempty"`

	ExifCreator   *string `json:"exif_creator,omitempty"`
	ExifCopyright *string `json:"exif_copyright,omitempty"`

	Status     Status     `json:"status"` // pending, processed
	CreatedAt  time.Time  `json:"created_at"`
	IngestedAt *time.Time `json:"ingested_at,omitempty"`
}
