package v1

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/whalechillz/image-assets/internal/controller/restapi/v1/response"
	"github.com/whalechillz/image-assets/internal/controller/restapi/v1/validate"
	"github.com/whalechillz/image-assets/internal/entity"
	"github.com/whalechillz/image-assets/pkg/types/errs"
)

// @Summary  	Upload image asset
// @Description Uploads image to S3, saves metadata to postgres and schedules background ingest via the outbox
// @Tags 		assets
// @Accept 		mpfd
// @Produce 	json
// @Param 		file formData file true "Image file (jpg, png, webp, gif)"
// @Success 	201 {object} response.UploadAsset
// @Failure 	400 {object} response.Error "Empty file or wrong parameters"
// @Failure 	413 {object} response.Error "File too large"
// @Failure 	415 {object} response.Error "Unsupported format"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/v1/assets [post]
func (r *V1) uploadAsset(ctx *fiber.Ctx) error {
	file, err := ctx.FormFile("file")
	if err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "file is required")
	}

	// 1. size
	if file.Size == 0 {
		return errorResponse(ctx, http.StatusBadRequest, "file is empty")
	}

	if file.Size > validate.MaxFileSize {
		return errorResponse(ctx, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("file size cant be more than %d bytes", validate.MaxFileSize))
	}

	// 2. content type
	contentType := file.Header.Get("Content-Type")
	if !validate.AllowedContentTypes[contentType] {
		return errorResponse(ctx, http.StatusUnsupportedMediaType, "unsupported file type. Allowed: jpeg, png, webp, gif")
	}

	// 3. extension
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !validate.AllowedExtensions[ext] {
		return errorResponse(ctx, http.StatusUnsupportedMediaType, "unsupported file extension. Allowed: .jpg, .jpeg, .png, .webp, .gif")
	}

	// 4. open
	fileReader, err := file.Open()
	if err != nil {
		r.logger.Error(err, "restapi - v1 - uploadAsset")

		return errorResponse(ctx, http.StatusInternalServerError, "problems with opening the file")
	}
	defer fileReader.Close()

	// 5. upload
	asset, err := r.assets.UploadNewAsset(ctx.UserContext(), fileReader, file.Filename, contentType, file.Size)
	if err != nil {
		r.logger.Error(err, "restapi - v1 - uploadAsset")

		return errorResponse(ctx, http.StatusInternalServerError, "storage problems")
	}

	resp := response.UploadAsset{
		AssetID:     asset.ID.String(),
		Filename:    asset.Filename,
		Size:        int(asset.Size),
		ContentType: asset.ContentType,
		Format:      asset.Format,
		Status:      string(asset.Status),
		CreatedAt:   asset.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}

	return ctx.Status(http.StatusCreated).JSON(resp)
}

// @Summary 	Get asset metadata
// @Description Returns asset metadata including ingest-derived hashes and dimensions
// @Tags 		assets
// @Produce 	json
// @Param 		id path string true "Asset ID(uuid)"
// @Success 	200 {object} entity.Asset
// @Failure 	400 {object} response.Error "Invalid ID"
// @Failure 	404 {object} response.Error "Asset not found"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/v1/assets/{id} [get]
func (r *V1) getAsset(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "invalid id")
	}

	asset, err := r.assets.GetAsset(ctx.UserContext(), id)
	if err != nil {
		if errors.Is(err, errs.ErrRecordNotFound) {
			return errorResponse(ctx, http.StatusNotFound, "asset not found")
		}
		r.logger.Error(err, "restapi - v1 - getAsset")

		return errorResponse(ctx, http.StatusInternalServerError, "storage problems")
	}

	return ctx.Status(http.StatusOK).JSON(asset)
}

// @Summary 	Download asset content
// @Description Streams the original image bytes from S3
// @Tags 		assets
// @Produce 	image/jpeg,image/png,image/webp,image/gif
// @Param 		id path string true "Asset ID(uuid)"
// @Success 	200 {file} 	binary
// @Failure 	400 {object} response.Error "Invalid ID"
// @Failure 	404 {object} response.Error "Asset not found"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/v1/assets/{id}/content [get]
func (r *V1) getAssetContent(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "invalid id")
	}

	asset, err := r.assets.GetAsset(ctx.UserContext(), id)
	if err != nil {
		if errors.Is(err, errs.ErrRecordNotFound) {
			return errorResponse(ctx, http.StatusNotFound, "asset not found")
		}
		r.logger.Error(err, "restapi - v1 - getAssetContent")

		return errorResponse(ctx, http.StatusInternalServerError, "storage problems")
	}

	body, err := r.assets.DownloadAsset(ctx.UserContext(), asset.StorageKey)
	if err != nil {
		return errorResponse(ctx, http.StatusInternalServerError, "storage problems")
	}

	ctx.Set(fiber.HeaderContentType, asset.ContentType)

	return ctx.SendStream(body)
}

// @Summary 	Get asset usage
// @Description Lists the places an asset is referenced from; a failed lookup degrades to an empty report
// @Tags 		assets
// @Produce 	json
// @Param 		id path string true "Asset ID(uuid)"
// @Success 	200 {object} entity.Usage
// @Failure 	400 {object} response.Error "Invalid ID"
// @Failure 	404 {object} response.Error "Asset not found"
// @Router 		/v1/assets/{id}/usage [get]
func (r *V1) getAssetUsage(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "invalid id")
	}

	if _, err := r.assets.GetAsset(ctx.UserContext(), id); err != nil {
		if errors.Is(err, errs.ErrRecordNotFound) {
			return errorResponse(ctx, http.StatusNotFound, "asset not found")
		}
		r.logger.Error(err, "restapi - v1 - getAssetUsage")

		return errorResponse(ctx, http.StatusInternalServerError, "storage problems")
	}

	usage, err := r.assets.GetUsage(ctx.UserContext(), id)
	if err != nil {
		// best effort: an unavailable usage index reads as "not used"
		r.logger.Warn("usage lookup failed for asset=%s, error=%v", id, err)
		usage = &entity.Usage{}
	}

	return ctx.Status(http.StatusOK).JSON(usage)
}

// @Summary 	Delete asset
// @Description Deletes the asset from S3 and postgres (outbox rows cascade)
// @Tags 		assets
// @Param		id 	path	 string true "Asset ID(uuid)"
// @Success		204 "Deleted"
// @Failure 	400 {object} response.Error "Invalid ID"
// @Failure 	404 {object} response.Error "Asset not found"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/v1/assets/{id} [delete]
func (r *V1) deleteAsset(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "invalid id")
	}

	err = r.assets.DeleteAsset(ctx.UserContext(), id)
	if err != nil {
		if errors.Is(err, errs.ErrRecordNotFound) {
			return errorResponse(ctx, http.StatusNotFound, "asset not found")
		}
		r.logger.Error(err, "restapi - v1 - deleteAsset")

		return errorResponse(ctx, http.StatusInternalServerError, "storage problems")
	}

	return ctx.SendStatus(http.StatusNoContent)
}
