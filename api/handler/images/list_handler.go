package images

import (
	"net/http"
	"strconv"

	"github.com/calyx/image-service/api/common"
	"github.com/gin-gonic/gin"
)

// ListImages 列出账户下全部图片
// @Summary      List images
// @Description  List all images owned by the account
// @Tags         images
// @Produce      json
// @Param        accountId  path      int  true  "Account ID"
// @Success      200        {object}  common.Response  "Images"
// @Failure      404        {object}  common.Response  "Account not found"
// @Security     ApiKeyAuth
// @Router       /accounts/{accountId}/images [get]
func (h *Handler) ListImages(c *gin.Context) {
	accountID, err := strconv.ParseUint(c.Param("accountId"), 10, 64)
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid account ID")
		return
	}

	images, err := h.svc.List(c.Request.Context(), uint(accountID))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondSuccess(c, toImageResponses(images))
}

// GetImage 按账户和图片 ID 获取图片
// @Summary      Get image
// @Description  Get a single image by account and image ID
// @Tags         images
// @Produce      json
// @Param        accountId  path      int  true  "Account ID"
// @Param        imageId    path      int  true  "Image ID"
// @Success      200        {object}  common.Response  "Image"
// @Failure      404        {object}  common.Response  "Account or image not found"
// @Security     ApiKeyAuth
// @Router       /accounts/{accountId}/images/{imageId} [get]
func (h *Handler) GetImage(c *gin.Context) {
	accountID, err := strconv.ParseUint(c.Param("accountId"), 10, 64)
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid account ID")
		return
	}
	imageID, err := strconv.ParseUint(c.Param("imageId"), 10, 64)
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid image ID")
		return
	}

	image, err := h.svc.Get(c.Request.Context(), uint(accountID), uint(imageID))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondSuccess(c, toImageResponse(image))
}
