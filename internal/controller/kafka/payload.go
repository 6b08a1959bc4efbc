package kafka

import "github.com/google/uuid"

type AssetEventPayload struct {
	ID          uuid.UUID `json:"id"`
	StorageKey  string    `json:"storage_key"`
	ContentType string    `json:"content_type"`
}
