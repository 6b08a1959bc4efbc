package v1

import (
	"github.com/whalechillz/image-assets/internal/usecase"
	"github.com/whalechillz/image-assets/pkg/logger"
)

type V1 struct {
	assets  usecase.AssetUseCase
	compare usecase.CompareUseCase
	logger  logger.Interface
}
