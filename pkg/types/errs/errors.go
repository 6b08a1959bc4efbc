package errs

import (
	"errors"
	"fmt"
)

var (
	ErrRecordNotFound    = errors.New("record not found")
	ErrEmptyContent      = errors.New("empty content")
	ErrInvalidImageCount = errors.New("invalid image count")
)

// AssetsNotFoundError is returned when a comparison request references
// asset IDs that do not all resolve to stored records.
type AssetsNotFoundError struct {
	Requested int
	Found     int
}

func (e *AssetsNotFoundError) Error() string {
	return fmt.Sprintf("assets not found: requested %d, found %d", e.Requested, e.Found)
}
