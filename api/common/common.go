package common

import (
	"net/http"

	"github.com/calyx/image-service/internal/apperrors"
	"github.com/gin-gonic/gin"
)

type Response struct {
	Status string      `json:"status"`
	Msg    string      `json:"msg"`
	Data   interface{} `json:"data,omitempty"`
}

func Respond(c *gin.Context, httpStatus int, status string, message string, data interface{}) {
	c.JSON(httpStatus, Response{
		Status: status,
		Msg:    message,
		Data:   data,
	})
}

// RespondSuccess sends a success response with data.
func RespondSuccess(c *gin.Context, data interface{}) {
	Respond(c, http.StatusOK, "success", "", data)
}

// RespondSuccessMessage sends a success response with message and data.
func RespondSuccessMessage(c *gin.Context, message string, data interface{}) {
	Respond(c, http.StatusOK, "success", message, data)
}

// RespondCreated sends a 201 response with the created resource.
func RespondCreated(c *gin.Context, data interface{}) {
	Respond(c, http.StatusCreated, "success", "", data)
}

// RespondNoContent sends an empty 204 response.
func RespondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// RespondError sends an error response with message.
func RespondError(c *gin.Context, httpStatus int, message string) {
	Respond(c, httpStatus, "error", message, nil)
}

// RespondAppError 按错误类型映射 HTTP 状态码
// 缺失路径资源（账户/图片）为 404，请求体引用的标签缺失为 400，
// 用户名冲突为 409，其余为 500
func RespondAppError(c *gin.Context, err error) {
	switch {
	case apperrors.IsTagNotFound(err):
		RespondError(c, http.StatusBadRequest, err.Error())
	case apperrors.IsNotFound(err):
		RespondError(c, http.StatusNotFound, err.Error())
	case apperrors.IsConflict(err):
		RespondError(c, http.StatusConflict, err.Error())
	default:
		RespondError(c, http.StatusInternalServerError, "Internal server error")
	}
}
