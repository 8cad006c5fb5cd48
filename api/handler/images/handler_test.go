package images

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/calyx/image-service/api/common"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func setupTestRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// --- 测试请求 DTO 绑定 ---

// TestImageRequest_Binding 测试图片请求体绑定
func TestImageRequest_Binding(t *testing.T) {
	router := setupTestRouter(t)
	router.POST("/test", func(c *gin.Context) {
		var req imageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			common.RespondError(c, http.StatusBadRequest, err.Error())
			return
		}
		common.RespondSuccess(c, req)
	})

	tests := []struct {
		name       string
		body       map[string]interface{}
		wantStatus int
	}{
		{
			name: "valid request",
			body: map[string]interface{}{
				"original_name": "cat.png",
				"content_type":  "image/png",
				"size":          1024,
				"tag_ids":       []uint{1, 2},
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "tags optional",
			body: map[string]interface{}{
				"original_name": "cat.png",
				"content_type":  "image/png",
				"size":          0,
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "missing original name",
			body: map[string]interface{}{
				"content_type": "image/png",
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "missing content type",
			body: map[string]interface{}{
				"original_name": "cat.png",
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "negative size",
			body: map[string]interface{}{
				"original_name": "cat.png",
				"content_type":  "image/png",
				"size":          -1,
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "name too long",
			body: map[string]interface{}{
				"original_name": string(make([]byte, 256)),
				"content_type":  "image/png",
			},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jsonBody, _ := json.Marshal(tt.body)
			req := httptest.NewRequest(http.MethodPost, "/test", bytes.NewBuffer(jsonBody))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
