package restapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"

	"github.com/whalechillz/image-assets/config"
	v1 "github.com/whalechillz/image-assets/internal/controller/restapi/v1"
	"github.com/whalechillz/image-assets/internal/usecase"
	"github.com/whalechillz/image-assets/pkg/logger"
)

// @title Image assets
// @version 1.0.0
// @host localhost:8080
// @BasePath /v1
func NewRouter(
	app *fiber.App,
	cfg *config.Config,
	assets usecase.AssetUseCase,
	compare usecase.CompareUseCase,
	l logger.Interface,
) {
	// Swagger
	if cfg.Swagger.Enabled {
		app.Get("/swagger/*", swagger.HandlerDefault)
	}

	// Routers
	apiV1Group := app.Group("/v1")
	{
		v1.NewAssetRoutes(apiV1Group, assets, compare, l)
	}
}
