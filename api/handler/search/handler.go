package search

import (
	"net/http"

	"github.com/calyx/image-service/api/common"
	"github.com/calyx/image-service/database/models"
	svcImages "github.com/calyx/image-service/internal/images"
	"github.com/gin-gonic/gin"
)

// Handler 图片搜索处理器
type Handler struct {
	svc *svcImages.Service
}

// NewHandler 创建新的搜索处理器
func NewHandler(svc *svcImages.Service) *Handler {
	return &Handler{svc: svc}
}

// searchRequest 搜索请求体
// 过滤字段均为可选，缺省字段不参与过滤，给出的字段全部以 AND 组合
type searchRequest struct {
	OwnerID      *uint   `json:"owner_id"`
	OriginalName *string `json:"original_name"`
	ContentType  *string `json:"content_type"`
	Size         *int64  `json:"size"`
	TagIDs       []uint  `json:"tag_ids"`

	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Sort  string `json:"sort"`
	Order string `json:"order"`
}

type searchResponse struct {
	Images     interface{} `json:"images"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalPages int         `json:"total_pages"`
}

type imageResult struct {
	ID           uint   `json:"id"`
	OriginalName string `json:"original_name"`
	ContentType  string `json:"content_type"`
	Size         int64  `json:"size"`
	AccountID    uint   `json:"account_id"`
	TagIDs       []uint `json:"tag_ids"`
	CreatedAt    int64  `json:"created_at"`
	UpdatedAt    int64  `json:"updated_at"`
}

func toImageResults(images []*models.Image) []imageResult {
	out := make([]imageResult, 0, len(images))
	for _, image := range images {
		out = append(out, imageResult{
			ID:           image.ID,
			OriginalName: image.OriginalName,
			ContentType:  image.ContentType,
			Size:         image.Size,
			AccountID:    image.AccountID,
			TagIDs:       image.TagIDs(),
			CreatedAt:    image.CreatedAt.Unix(),
			UpdatedAt:    image.UpdatedAt.Unix(),
		})
	}
	return out
}

// SearchImages 按组合谓词搜索图片
// @Summary      Search images
// @Description  Search images by any combination of owner, name, content type, size and tag membership
// @Tags         search
// @Accept       json
// @Produce      json
// @Param        request  body      searchRequest  true  "Search filters and pagination"
// @Success      200      {object}  common.Response  "Matching images"
// @Failure      400      {object}  common.Response  "Invalid request body or sort field"
// @Security     ApiKeyAuth
// @Router       /search/images [post]
func (h *Handler) SearchImages(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	filter := svcImages.Filter{
		OwnerID:      req.OwnerID,
		OriginalName: req.OriginalName,
		ContentType:  req.ContentType,
		Size:         req.Size,
		TagIDs:       req.TagIDs,
	}
	pagination := svcImages.Pagination{
		Page:  req.Page,
		Limit: req.Limit,
		Sort:  req.Sort,
		Order: req.Order,
	}

	result, err := h.svc.Search(c.Request.Context(), filter, pagination)
	if err != nil {
		if svcImages.IsInvalidSort(err) {
			common.RespondError(c, http.StatusBadRequest, err.Error())
			return
		}
		common.RespondAppError(c, err)
		return
	}

	common.RespondSuccess(c, searchResponse{
		Images:     toImageResults(result.Images),
		Total:      result.Total,
		Page:       result.Page,
		Limit:      result.Limit,
		TotalPages: result.TotalPages,
	})
}
