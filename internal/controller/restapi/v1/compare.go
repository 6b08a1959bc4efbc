package v1

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/whalechillz/image-assets/internal/controller/restapi/v1/response"
	"github.com/whalechillz/image-assets/internal/usecase/compare"
	"github.com/whalechillz/image-assets/pkg/types/errs"
)

type compareRequest struct {
	AssetIDs []string `json:"asset_ids"`
}

// @Summary 	Compare image assets
// @Description Computes perceptual fingerprints for 1-4 assets and runs multi-signal duplicate analysis
// @Tags 		compare
// @Accept 		json
// @Produce 	json
// @Param 		request body compareRequest true "Asset IDs(uuid), 1 to 4 items"
// @Success 	200 {object} entity.Comparison
// @Failure 	400 {object} response.Error "Wrong image count or malformed ID"
// @Failure 	404 {object} response.AssetsNotFound "Some assets missing"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/v1/compare [post]
func (r *V1) compareAssets(ctx *fiber.Ctx) error {
	var req compareRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "invalid request body")
	}

	if len(req.AssetIDs) < compare.MinImages || len(req.AssetIDs) > compare.MaxImages {
		return errorResponse(ctx, http.StatusBadRequest,
			fmt.Sprintf("between %d and %d image IDs are required", compare.MinImages, compare.MaxImages))
	}

	ids := make(uuid.UUIDs, 0, len(req.AssetIDs))

	for _, raw := range req.AssetIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return errorResponse(ctx, http.StatusBadRequest, fmt.Sprintf("invalid asset id: %s", raw))
		}

		ids = append(ids, id)
	}

	comparison, err := r.compare.Compare(ctx.UserContext(), ids)
	if err != nil {
		var notFound *errs.AssetsNotFoundError
		if errors.As(err, &notFound) {
			return ctx.Status(http.StatusNotFound).JSON(response.AssetsNotFound{
				Error:     "some assets were not found",
				Requested: notFound.Requested,
				Found:     notFound.Found,
			})
		}

		if errors.Is(err, errs.ErrInvalidImageCount) {
			return errorResponse(ctx, http.StatusBadRequest,
				fmt.Sprintf("between %d and %d image IDs are required", compare.MinImages, compare.MaxImages))
		}

		r.logger.Error(err, "restapi - v1 - compareAssets")

		return errorResponse(ctx, http.StatusInternalServerError,
			fmt.Sprintf("comparison failed: %s", err))
	}

	return ctx.Status(http.StatusOK).JSON(comparison)
}
