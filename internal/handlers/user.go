package handlers

import (
	"net/http"

	"github.com/3Eeeecho/go-docmanager/internal/pkg/mapper"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/xerr"
	"github.com/3Eeeecho/go-docmanager/internal/services/admin"
	"github.com/gin-gonic/gin"
)

// UserHandler 管理员使用的用户管理接口
type UserHandler struct {
	userService admin.UserService
}

func NewUserHandler(userService admin.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

type AssignRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

type SetActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// ListUsers 列出全部用户
// @Summary 列出用户
// @Tags 管理
// @Produce json
// @Security BearerAuth
// @Success 200 {object} xerr.Response{data=[]mapper.UserResponse} "用户列表"
// @Failure 403 {object} xerr.Response "需要管理员角色"
// @Router /api/v1/admin/users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, "ListUsers", err)
		return
	}
	xerr.Success(c, http.StatusOK, "获取用户列表成功", mapper.ToUserResponses(users))
}

// AssignRole 为用户添加角色
// @Summary 添加角色
// @Tags 管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户 ID"
// @Param request body AssignRoleRequest true "角色名"
// @Success 200 {object} xerr.Response{data=mapper.UserResponse} "添加成功"
// @Failure 404 {object} xerr.Response "用户或角色不存在"
// @Router /api/v1/admin/users/{id}/roles [post]
func (h *UserHandler) AssignRole(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	user, err := h.userService.AssignRole(c.Request.Context(), userID, req.Role)
	if err != nil {
		respondError(c, "AssignRole", err)
		return
	}
	xerr.Success(c, http.StatusOK, "角色添加成功", mapper.ToUserResponse(user))
}

// RemoveRole 移除用户角色
// @Summary 移除角色
// @Tags 管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户 ID"
// @Param role path string true "角色名"
// @Success 200 {object} xerr.Response{data=mapper.UserResponse} "移除成功"
// @Router /api/v1/admin/users/{id}/roles/{role} [delete]
func (h *UserHandler) RemoveRole(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}
	user, err := h.userService.RemoveRole(c.Request.Context(), userID, c.Param("role"))
	if err != nil {
		respondError(c, "RemoveRole", err)
		return
	}
	xerr.Success(c, http.StatusOK, "角色移除成功", mapper.ToUserResponse(user))
}

// SetActive 启用或停用用户
// @Summary 启用或停用用户
// @Tags 管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户 ID"
// @Param request body SetActiveRequest true "是否启用"
// @Success 200 {object} xerr.Response{data=mapper.UserResponse} "修改成功"
// @Router /api/v1/admin/users/{id}/active [put]
func (h *UserHandler) SetActive(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	user, err := h.userService.SetActive(c.Request.Context(), userID, *req.Active)
	if err != nil {
		respondError(c, "SetActive", err)
		return
	}
	xerr.Success(c, http.StatusOK, "用户状态已更新", mapper.ToUserResponse(user))
}
