package api

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/calyx/image-service/api/common"
	"github.com/calyx/image-service/config"
	"github.com/calyx/image-service/internal/auth"
	"github.com/calyx/image-service/utils"
	"github.com/gin-gonic/gin"
)

// LoginHandler 登录处理器
type LoginHandler struct {
	loginService *auth.LoginService
}

// NewLoginHandler 创建登录处理器
func NewLoginHandler(loginService *auth.LoginService) *LoginHandler {
	return &LoginHandler{loginService: loginService}
}

type userAuthRequestBody struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	AccessToken       string `json:"access_token"`
	AccessTokenExpiry int64  `json:"access_token_expiry"`
	AccountID         uint   `json:"account_id"`
}

// LoginHandlerFunc 账户登录
// @Summary      Login
// @Description  Authenticate with username and password, receive an access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      userAuthRequestBody  true  "Credentials"
// @Success      200      {object}  common.Response  "Access token"
// @Failure      401      {object}  common.Response  "Invalid credentials"
// @Router       /auth/login [post]
func (h *LoginHandler) LoginHandlerFunc(c *gin.Context) {
	var req userAuthRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.loginService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			log.Printf("Login failed for user %s: invalid credentials", utils.SanitizeLogUsername(req.Username))
			common.RespondError(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		log.Printf("Login failed for user %s: %s", utils.SanitizeLogUsername(req.Username), utils.SanitizeLogMessage(err.Error()))
		common.RespondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	refreshTokenMaxAge := int(time.Until(result.RefreshTokenExpiry).Seconds())
	setAuthCookies(c, result.RefreshToken, result.DeviceID, refreshTokenMaxAge)

	common.RespondSuccessMessage(c, "Login successful", loginResponse{
		AccessToken:       "Bearer " + result.AccessToken,
		AccessTokenExpiry: result.AccessTokenExpiry.Unix(),
		AccountID:         result.Account.ID,
	})
}

// RefreshTokenHandlerFunc 刷新访问令牌
// @Summary      Refresh token
// @Description  Exchange the refresh token cookie for a new access token
// @Tags         auth
// @Produce      json
// @Success      200  {object}  common.Response  "New access token"
// @Failure      401  {object}  common.Response  "Invalid refresh token"
// @Router       /auth/refresh [post]
func (h *LoginHandler) RefreshTokenHandlerFunc(c *gin.Context) {
	refreshToken, err := c.Cookie("refresh_token")
	if err != nil {
		common.RespondError(c, http.StatusUnauthorized, "Refresh token not found")
		return
	}

	deviceID, err := c.Cookie("device_id")
	if err != nil {
		common.RespondError(c, http.StatusUnauthorized, "Device ID not found")
		return
	}

	result, err := h.loginService.RefreshToken(refreshToken, deviceID)
	if err != nil {
		common.RespondError(c, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	newRefreshTokenMaxAge := int(time.Until(result.RefreshTokenExpiry).Seconds())
	setAuthCookies(c, result.RefreshToken, deviceID, newRefreshTokenMaxAge)

	common.RespondSuccessMessage(c, "Refresh token successful", loginResponse{
		AccessToken:       "Bearer " + result.AccessToken,
		AccessTokenExpiry: result.AccessTokenExpiry.Unix(),
	})
}

// LogoutHandlerFunc 账户登出
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  common.Response  "Logged out"
// @Router       /auth/logout [post]
func (h *LoginHandler) LogoutHandlerFunc(c *gin.Context) {
	deviceID, err := c.Cookie("device_id")
	if err != nil {
		common.RespondSuccessMessage(c, "Already logged out or session invalid", nil)
		return
	}

	_ = h.loginService.Logout(deviceID)

	clearAuthCookies(c)

	common.RespondSuccessMessage(c, "Logout successful", nil)
}

// setAuthCookies 设置 refresh_token 和 device_id 的 cookie
func setAuthCookies(c *gin.Context, refreshToken, deviceID string, maxAge int) {
	path := "/api/auth/"
	secure := config.IsProduction()

	refreshTokenCookie := http.Cookie{
		Name:     "refresh_token",
		Value:    refreshToken,
		MaxAge:   maxAge,
		Path:     path,
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	deviceIDCookie := http.Cookie{
		Name:     "device_id",
		Value:    deviceID,
		MaxAge:   maxAge,
		Path:     path,
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	http.SetCookie(c.Writer, &refreshTokenCookie)
	http.SetCookie(c.Writer, &deviceIDCookie)
}

// clearAuthCookies 清除认证相关的 cookie
func clearAuthCookies(c *gin.Context) {
	cfg := config.Get()

	path := "/api/auth/"
	domain := cfg.ServerDomain

	c.SetCookie("refresh_token", "", -1, path, domain, false, true)
	c.SetCookie("device_id", "", -1, path, domain, false, true)
}
