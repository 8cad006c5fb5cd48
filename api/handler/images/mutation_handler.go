package images

import (
	"net/http"
	"strconv"

	"github.com/calyx/image-service/api/common"
	svcImages "github.com/calyx/image-service/internal/images"
	"github.com/gin-gonic/gin"
)

type imageRequest struct {
	OriginalName string `json:"original_name" binding:"required,max=255"`
	ContentType  string `json:"content_type" binding:"required,max=100"`
	Size         int64  `json:"size" binding:"min=0"`
	TagIDs       []uint `json:"tag_ids"`
}

func (r *imageRequest) toInput() svcImages.ImageInput {
	return svcImages.ImageInput{
		OriginalName: r.OriginalName,
		ContentType:  r.ContentType,
		Size:         r.Size,
		TagIDs:       r.TagIDs,
	}
}

// CreateImage 在账户下创建图片
// @Summary      Create image
// @Description  Create an image record under the account, with optional tag references
// @Tags         images
// @Accept       json
// @Produce      json
// @Param        accountId  path      int           true  "Account ID"
// @Param        request    body      imageRequest  true  "Image fields"
// @Success      201        {object}  common.Response  "Created image"
// @Failure      400        {object}  common.Response  "Invalid body or unknown tag IDs"
// @Failure      404        {object}  common.Response  "Account not found"
// @Security     ApiKeyAuth
// @Router       /accounts/{accountId}/images [post]
func (h *Handler) CreateImage(c *gin.Context) {
	accountID, err := strconv.ParseUint(c.Param("accountId"), 10, 64)
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid account ID")
		return
	}

	var req imageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	image, err := h.svc.Create(c.Request.Context(), uint(accountID), req.toInput())
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondCreated(c, toImageResponse(image))
}

// UpdateImage 整体替换图片的可变字段
// @Summary      Update image
// @Description  Replace the image's mutable fields; the tag set is replaced wholesale
// @Tags         images
// @Accept       json
// @Produce      json
// @Param        accountId  path      int           true  "Account ID"
// @Param        imageId    path      int           true  "Image ID"
// @Param        request    body      imageRequest  true  "Image fields"
// @Success      200        {object}  common.Response  "Updated image"
// @Failure      400        {object}  common.Response  "Invalid body or unknown tag IDs"
// @Failure      404        {object}  common.Response  "Account or image not found"
// @Security     ApiKeyAuth
// @Router       /accounts/{accountId}/images/{imageId} [put]
func (h *Handler) UpdateImage(c *gin.Context) {
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

	var req imageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	image, err := h.svc.Update(c.Request.Context(), uint(accountID), uint(imageID), req.toInput())
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondSuccess(c, toImageResponse(image))
}

// DeleteImage 删除账户下的图片，记录不存在时同样返回 204
// @Summary      Delete image
// @Description  Delete an image within the account scope; deleting a missing image is a no-op
// @Tags         images
// @Param        accountId  path  int  true  "Account ID"
// @Param        imageId    path  int  true  "Image ID"
// @Success      204  "Deleted"
// @Security     ApiKeyAuth
// @Router       /accounts/{accountId}/images/{imageId} [delete]
func (h *Handler) DeleteImage(c *gin.Context) {
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

	if err := h.svc.Delete(c.Request.Context(), uint(accountID), uint(imageID)); err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondNoContent(c)
}
