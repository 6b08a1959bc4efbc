package infrastructure

import (
	"context"

	"github.com/whalechillz/image-assets/internal/entity"
)

type (
	EventsSender interface {
		SendEvents(ctx context.Context, events []*entity.OutboxEvent) error
		Close() error
	}

	// Fingerprinter derives content signatures from raw image bytes.
	Fingerprinter interface {
		Fingerprint(data []byte) (string, error)
		DCTHash(data []byte) (string, error)
		Identify(data []byte) (int, int, string, error)
	}

	// MetadataExtractor pulls embedded attribution out of raw image bytes.
	MetadataExtractor interface {
		Extract(data []byte) (creator, copyright string)
	}
)
