package accounts

import (
	"net/http"
	"strconv"

	"github.com/calyx/image-service/api/common"
	"github.com/calyx/image-service/database/models"
	svcAccounts "github.com/calyx/image-service/internal/accounts"
	"github.com/gin-gonic/gin"
)

// Handler 账户处理器
type Handler struct {
	svc *svcAccounts.Service
}

// NewHandler 创建新的账户处理器
func NewHandler(svc *svcAccounts.Service) *Handler {
	return &Handler{svc: svc}
}

type registerRequest struct {
	DisplayName string `json:"display_name" binding:"max=100"`
	Username    string `json:"username" binding:"required,min=3,max=64"`
	Email       string `json:"email" binding:"omitempty,email"`
	Password    string `json:"password" binding:"required,min=8,max=72"`
}

type updateAccountRequest struct {
	DisplayName string `json:"display_name" binding:"max=100"`
	Email       string `json:"email" binding:"omitempty,email"`
}

type accountResponse struct {
	ID          uint     `json:"id"`
	DisplayName string   `json:"display_name"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	Roles       []string `json:"roles"`
	CreatedAt   int64    `json:"created_at"`
}

func toAccountResponse(account *models.Account) accountResponse {
	roles := make([]string, 0, len(account.Roles))
	for _, role := range account.Roles {
		roles = append(roles, role.Name)
	}
	return accountResponse{
		ID:          account.ID,
		DisplayName: account.DisplayName,
		Username:    account.Username,
		Email:       account.Email,
		Roles:       roles,
		CreatedAt:   account.CreatedAt.Unix(),
	}
}

// Register 注册账户
// @Summary      Register account
// @Description  Create a new account with the default user role
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        request  body      registerRequest  true  "Account fields"
// @Success      201      {object}  common.Response  "Created account"
// @Failure      400      {object}  common.Response  "Invalid request body"
// @Failure      409      {object}  common.Response  "Username already taken"
// @Router       /auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	account, err := h.svc.Register(c.Request.Context(), svcAccounts.RegisterInput{
		DisplayName: req.DisplayName,
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondCreated(c, toAccountResponse(account))
}

// GetAccount 按 ID 获取账户
// @Summary      Get account
// @Tags         accounts
// @Produce      json
// @Param        accountId  path      int  true  "Account ID"
// @Success      200        {object}  common.Response  "Account"
// @Failure      404        {object}  common.Response  "Account not found"
// @Security     ApiKeyAuth
// @Router       /accounts/{accountId} [get]
func (h *Handler) GetAccount(c *gin.Context) {
	accountID, err := strconv.ParseUint(c.Param("accountId"), 10, 64)
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid account ID")
		return
	}

	account, err := h.svc.FindByID(c.Request.Context(), uint(accountID))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondSuccess(c, toAccountResponse(account))
}

// ListAccounts 列出全部账户（管理员）
// @Summary      List accounts
// @Tags         accounts
// @Produce      json
// @Success      200  {object}  common.Response  "Accounts"
// @Security     ApiKeyAuth
// @Router       /accounts [get]
func (h *Handler) ListAccounts(c *gin.Context) {
	accounts, err := h.svc.FindAll(c.Request.Context())
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	out := make([]accountResponse, 0, len(accounts))
	for _, account := range accounts {
		out = append(out, toAccountResponse(account))
	}
	common.RespondSuccess(c, out)
}

// UpdateAccount 更新账户展示字段
// @Summary      Update account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        accountId  path      int                   true  "Account ID"
// @Param        request    body      updateAccountRequest  true  "Account fields"
// @Success      200        {object}  common.Response  "Updated account"
// @Failure      404        {object}  common.Response  "Account not found"
// @Security     ApiKeyAuth
// @Router       /accounts/{accountId} [put]
func (h *Handler) UpdateAccount(c *gin.Context) {
	accountID, err := strconv.ParseUint(c.Param("accountId"), 10, 64)
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid account ID")
		return
	}

	var req updateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	account, err := h.svc.Update(c.Request.Context(), uint(accountID), svcAccounts.UpdateInput{
		DisplayName: req.DisplayName,
		Email:       req.Email,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondSuccess(c, toAccountResponse(account))
}

// DeleteAccount 删除账户（管理员）
// @Summary      Delete account
// @Tags         accounts
// @Param        accountId  path  int  true  "Account ID"
// @Success      204  "Deleted"
// @Failure      404  {object}  common.Response  "Account not found"
// @Security     ApiKeyAuth
// @Router       /accounts/{accountId} [delete]
func (h *Handler) DeleteAccount(c *gin.Context) {
	accountID, err := strconv.ParseUint(c.Param("accountId"), 10, 64)
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid account ID")
		return
	}

	if err := h.svc.Delete(c.Request.Context(), uint(accountID)); err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondNoContent(c)
}
