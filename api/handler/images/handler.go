package images

import (
	"github.com/calyx/image-service/database/models"
	svcImages "github.com/calyx/image-service/internal/images"
)

// Handler 图片处理器
type Handler struct {
	svc *svcImages.Service
}

// NewHandler 创建新的图片处理器
func NewHandler(svc *svcImages.Service) *Handler {
	return &Handler{svc: svc}
}

type tagResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type imageResponse struct {
	ID           uint          `json:"id"`
	OriginalName string        `json:"original_name"`
	ContentType  string        `json:"content_type"`
	Size         int64         `json:"size"`
	AccountID    uint          `json:"account_id"`
	Tags         []tagResponse `json:"tags"`
	CreatedAt    int64         `json:"created_at"`
	UpdatedAt    int64         `json:"updated_at"`
}

func toImageResponse(image *models.Image) imageResponse {
	tags := make([]tagResponse, 0, len(image.Tags))
	for _, tag := range image.Tags {
		tags = append(tags, tagResponse{ID: tag.ID, Name: tag.Name})
	}
	return imageResponse{
		ID:           image.ID,
		OriginalName: image.OriginalName,
		ContentType:  image.ContentType,
		Size:         image.Size,
		AccountID:    image.AccountID,
		Tags:         tags,
		CreatedAt:    image.CreatedAt.Unix(),
		UpdatedAt:    image.UpdatedAt.Unix(),
	}
}

func toImageResponses(images []*models.Image) []imageResponse {
	out := make([]imageResponse, 0, len(images))
	for _, image := range images {
		out = append(out, toImageResponse(image))
	}
	return out
}
