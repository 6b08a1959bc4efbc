package v1

import (
	"github.com/gofiber/fiber/v2"

	"github.com/whalechillz/image-assets/internal/usecase"
	"github.com/whalechillz/image-assets/pkg/logger"
)

func NewAssetRoutes(apiV1Group fiber.Router, assets usecase.AssetUseCase, compare usecase.CompareUseCase, l logger.Interface) {
	r := &V1{assets: assets, compare: compare, logger: l}

	{
		apiV1Group.Post("/assets", r.uploadAsset)
		apiV1Group.Get("/assets/:id", r.getAsset)
		apiV1Group.Get("/assets/:id/content", r.getAssetContent)
		apiV1Group.Get("/assets/:id/usage", r.getAssetUsage)
		apiV1Group.Delete("/assets/:id", r.deleteAsset)

		apiV1Group.Post("/compare", r.compareAssets)
	}
}
