package asset

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/whalechillz/image-assets/internal/entity"
)

func (uc *AssetUseCase) createOutboxEvent(
	assetID uuid.UUID,
	storageKey string,
	contentType string,
) (*entity.OutboxEvent, error) {
	payload := map[string]interface{}{
		"id":           assetID,
		"storage_key":  storageKey,
		"content_type": contentType,
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("AssetUseCase - createOutboxEvent - json.Marshal: %w", err)
	}

	return &entity.OutboxEvent{
		ID:          uuid.New(),
		AggregateID: assetID,
		Payload:     b,
		Status:      entity.Pending,
		CreatedAt:   time.Now(),
		RetryCount:  0,
	}, nil
}

// formatFromFilename derives the declared format from the file extension.
// The ingest pipeline replaces it with the decoded format later.
func formatFromFilename(filename string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
}

func eventIDs(events []*entity.OutboxEvent) uuid.UUIDs {
	ids := make(uuid.UUIDs, 0, len(events))
	for _, event := range events {
		ids = append(ids, event.ID)
	}

	return ids
}
