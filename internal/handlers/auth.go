package handlers

import (
	"net/http"
	"time"

	"github.com/3Eeeecho/go-docmanager/internal/pkg/mapper"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/utils"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/xerr"
	"github.com/3Eeeecho/go-docmanager/internal/services/admin"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService admin.AuthService
	userService admin.UserService
}

func NewAuthHandler(authService admin.AuthService, userService admin.UserService) *AuthHandler {
	return &AuthHandler{authService: authService, userService: userService}
}

type RegisterRequest struct {
	Username        string `json:"username" binding:"required,min=3,max=100"`
	Password        string `json:"password" binding:"required,min=6,max=255"`
	ConfirmPassword string `json:"confirmPassword" binding:"required,eqfield=Password"`
	Email           string `json:"email" binding:"required,email"`
	FirstName       string `json:"firstName" binding:"max=100"`
	LastName        string `json:"lastName" binding:"max=100"`
}

// LoginRequest 登录请求结构体
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"` // 可以是用户名或邮箱
	Password   string `json:"password" binding:"required"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=6,max=255"`
}

type LoginResponse struct {
	Token     string              `json:"token"`
	ExpiresAt time.Time           `json:"expiresAt"`
	User      mapper.UserResponse `json:"user"`
}

// Register 用户注册
// @Summary 用户注册
// @Description 创建普通用户账号
// @Tags 用户认证
// @Accept json
// @Produce json
// @Param data body RegisterRequest true "注册信息"
// @Success 201 {object} xerr.Response{data=mapper.UserResponse} "注册成功"
// @Failure 400 {object} xerr.Response "参数错误"
// @Failure 409 {object} xerr.Response "用户名或邮箱已存在"
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.authService.Register(c.Request.Context(), admin.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		respondError(c, "Register", err)
		return
	}
	xerr.Success(c, http.StatusCreated, "注册成功", mapper.ToUserResponse(user))
}

// Login 用户登录
// @Summary 用户登录
// @Description 使用用户名或邮箱登录，返回 JWT
// @Tags 用户认证
// @Accept json
// @Produce json
// @Param data body LoginRequest true "登录信息"
// @Success 200 {object} xerr.Response{data=LoginResponse} "登录成功"
// @Failure 401 {object} xerr.Response "用户名或密码错误"
// @Failure 429 {object} xerr.Response "请求过于频繁"
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		respondError(c, "Login", err)
		return
	}
	xerr.Success(c, http.StatusOK, "登录成功", LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      mapper.ToUserResponse(result.User),
	})
}

// Me 获取当前用户资料
// @Summary 获取当前用户资料
// @Tags 用户认证
// @Produce json
// @Security BearerAuth
// @Success 200 {object} xerr.Response{data=mapper.UserResponse} "成功获取用户资料"
// @Failure 401 {object} xerr.Response "未授权"
// @Failure 404 {object} xerr.Response "用户未找到"
// @Router /api/v1/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		return
	}
	user, err := h.userService.GetUserProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "Me", err)
		return
	}
	xerr.Success(c, http.StatusOK, "成功获取用户资料", mapper.ToUserResponse(user))
}

// CheckUsername 检查用户名是否可用
// @Summary 检查用户名是否可用
// @Tags 用户认证
// @Produce json
// @Param username path string true "用户名"
// @Success 200 {object} xerr.Response "available 字段表示是否可用"
// @Router /api/v1/auth/check-username/{username} [get]
func (h *AuthHandler) CheckUsername(c *gin.Context) {
	available, err := h.authService.UsernameAvailable(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, "CheckUsername", err)
		return
	}
	xerr.Success(c, http.StatusOK, "查询成功", gin.H{"exists": !available, "available": available})
}

// CheckEmail 检查邮箱是否可用
// @Summary 检查邮箱是否可用
// @Tags 用户认证
// @Produce json
// @Param email path string true "邮箱"
// @Success 200 {object} xerr.Response "available 字段表示是否可用"
// @Router /api/v1/auth/check-email/{email} [get]
func (h *AuthHandler) CheckEmail(c *gin.Context) {
	available, err := h.authService.EmailAvailable(c.Request.Context(), c.Param("email"))
	if err != nil {
		respondError(c, "CheckEmail", err)
		return
	}
	xerr.Success(c, http.StatusOK, "查询成功", gin.H{"exists": !available, "available": available})
}

// Logout 注销当前 Token
// @Summary 退出登录
// @Tags 用户认证
// @Produce json
// @Security BearerAuth
// @Success 200 {object} xerr.Response "已退出登录"
// @Failure 401 {object} xerr.Response "未授权"
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	tokenID, expiresAt := utils.GetTokenFromContext(c)
	if err := h.authService.Logout(c.Request.Context(), tokenID, expiresAt); err != nil {
		respondError(c, "Logout", err)
		return
	}
	xerr.Success(c, http.StatusOK, "已退出登录", nil)
}

// ChangePassword 修改当前用户密码
// @Summary 修改密码
// @Tags 用户认证
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param data body ChangePasswordRequest true "旧密码与新密码"
// @Success 200 {object} xerr.Response "密码已修改"
// @Failure 401 {object} xerr.Response "旧密码错误"
// @Router /api/v1/auth/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		return
	}
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if err := h.authService.ChangePassword(c.Request.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		respondError(c, "ChangePassword", err)
		return
	}
	xerr.Success(c, http.StatusOK, "密码已修改", nil)
}
