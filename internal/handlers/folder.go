package handlers

import (
	"mime"
	"net/http"
	"strconv"

	"github.com/3Eeeecho/go-docmanager/internal/pkg/mapper"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/utils"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/xerr"
	"github.com/3Eeeecho/go-docmanager/internal/services/explorer"
	"github.com/gin-gonic/gin"
)

type FolderHandler struct {
	folderService explorer.FolderService
}

func NewFolderHandler(folderService explorer.FolderService) *FolderHandler {
	return &FolderHandler{folderService: folderService}
}

type CreateFolderRequest struct {
	Name     string  `json:"name"`
	ParentID *uint64 `json:"parentId"`
}

type RenameFolderRequest struct {
	Name string `json:"name"`
}

type MoveFolderRequest struct {
	ParentID *uint64 `json:"parentId"` // 为空表示移到根目录
}

// CreateFolder 创建目录
// @Summary 创建目录
// @Description 在指定父目录下创建目录，parentId 为空时创建在根目录
// @Tags 目录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateFolderRequest true "目录信息"
// @Success 201 {object} xerr.Response{data=mapper.FolderResponse} "创建成功"
// @Failure 400 {object} xerr.Response "名称为空"
// @Failure 403 {object} xerr.Response "无权访问父目录"
// @Failure 404 {object} xerr.Response "父目录不存在"
// @Router /api/v1/folders [post]
func (h *FolderHandler) CreateFolder(c *gin.Context) {
	id, ok := utils.GetIdentityFromContext(c)
	if !ok {
		return
	}
	var req CreateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	folder, err := h.folderService.CreateFolder(c.Request.Context(), id, req.Name, req.ParentID)
	if err != nil {
		respondError(c, "CreateFolder", err)
		return
	}
	xerr.Success(c, http.StatusCreated, "目录创建成功", mapper.ToFolderResponse(folder))
}

// ListFolders 列出目录
// @Summary 列出目录
// @Description 列出 parentId 下当前用户可见的目录，省略 parentId 时列出根目录
// @Tags 目录
// @Produce json
// @Security BearerAuth
// @Param parentId query string false "父目录 ID，空或 null 表示根目录"
// @Success 200 {object} xerr.Response{data=[]mapper.FolderResponse} "目录列表"
// @Failure 400 {object} xerr.Response "parentId 无效"
// @Router /api/v1/folders [get]
func (h *FolderHandler) ListFolders(c *gin.Context) {
	id, ok := utils.GetIdentityFromContext(c)
	if !ok {
		return
	}
	parentID, err := optionalID(c.Query("parentId"))
	if err != nil {
		xerr.AbortWithError(c, http.StatusBadRequest, xerr.InvalidParamsCode, "无效的 parentId")
		return
	}

	folders, err := h.folderService.ListFolders(c.Request.Context(), id, parentID)
	if err != nil {
		respondError(c, "ListFolders", err)
		return
	}
	xerr.Success(c, http.StatusOK, "获取目录列表成功", mapper.ToFolderResponses(folders))
}

// GetFolder 获取目录详情
// @Summary 获取目录详情
// @Tags 目录
// @Produce json
// @Security BearerAuth
// @Param id path int true "目录 ID"
// @Success 200 {object} xerr.Response{data=mapper.FolderResponse} "目录详情"
// @Failure 403 {object} xerr.Response "无权访问"
// @Failure 404 {object} xerr.Response "目录不存在"
// @Router /api/v1/folders/{id} [get]
func (h *FolderHandler) GetFolder(c *gin.Context) {
	id, ok := utils.GetIdentityFromContext(c)
	if !ok {
		return
	}
	folderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	folder, err := h.folderService.GetFolder(c.Request.Context(), id, folderID)
	if err != nil {
		respondError(c, "GetFolder", err)
		return
	}
	xerr.Success(c, http.StatusOK, "获取目录成功", mapper.ToFolderResponse(folder))
}

// RenameFolder 重命名目录
// @Summary 重命名目录
// @Tags 目录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "目录 ID"
// @Param request body RenameFolderRequest true "新名称"
// @Success 200 {object} xerr.Response{data=mapper.FolderResponse} "重命名成功"
// @Router /api/v1/folders/{id} [put]
func (h *FolderHandler) RenameFolder(c *gin.Context) {
	id, ok := utils.GetIdentityFromContext(c)
	if !ok {
		return
	}
	folderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req RenameFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	folder, err := h.folderService.RenameFolder(c.Request.Context(), id, folderID, req.Name)
	if err != nil {
		respondError(c, "RenameFolder", err)
		return
	}
	xerr.Success(c, http.StatusOK, "目录重命名成功", mapper.ToFolderResponse(folder))
}

// MoveFolder 移动目录
// @Summary 移动目录
// @Description 把目录移动到新的父目录下，不能移入自身子树
// @Tags 目录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "目录 ID"
// @Param request body MoveFolderRequest true "目标父目录"
// @Success 200 {object} xerr.Response{data=mapper.FolderResponse} "移动成功"
// @Failure 400 {object} xerr.Response "目标非法"
// @Router /api/v1/folders/{id}/move [put]
func (h *FolderHandler) MoveFolder(c *gin.Context) {
	id, ok := utils.GetIdentityFromContext(c)
	if !ok {
		return
	}
	folderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req MoveFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	folder, err := h.folderService.MoveFolder(c.Request.Context(), id, folderID, req.ParentID)
	if err != nil {
		respondError(c, "MoveFolder", err)
		return
	}
	xerr.Success(c, http.StatusOK, "目录移动成功", mapper.ToFolderResponse(folder))
}

// DeleteFolder 删除目录
// @Summary 删除目录
// @Description 默认只删除空目录；recursive=true 时软删除整棵子树
// @Tags 目录
// @Produce json
// @Security BearerAuth
// @Param id path int true "目录 ID"
// @Param recursive query bool false "是否递归删除"
// @Success 200 {object} xerr.Response "删除成功"
// @Failure 400 {object} xerr.Response "目录不为空"
// @Router /api/v1/folders/{id} [delete]
func (h *FolderHandler) DeleteFolder(c *gin.Context) {
	id, ok := utils.GetIdentityFromContext(c)
	if !ok {
		return
	}
	folderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	recursive, _ := strconv.ParseBool(c.DefaultQuery("recursive", "false"))

	var err error
	if recursive {
		err = h.folderService.DeleteFolderRecursive(c.Request.Context(), id, folderID)
	} else {
		err = h.folderService.DeleteFolder(c.Request.Context(), id, folderID)
	}
	if err != nil {
		respondError(c, "DeleteFolder", err)
		return
	}
	xerr.Success(c, http.StatusOK, "目录删除成功", nil)
}

// ForceDeleteFolder 管理员强制删除目录
// @Summary 强制删除目录
// @Description 管理员软删除任意目录及其全部内容
// @Tags 目录
// @Produce json
// @Security BearerAuth
// @Param id path int true "目录 ID"
// @Success 200 {object} xerr.Response "删除成功"
// @Failure 403 {object} xerr.Response "需要管理员角色"
// @Router /api/v1/folders/{id}/force [delete]
func (h *FolderHandler) ForceDeleteFolder(c *gin.Context) {
	id, ok := utils.GetIdentityFromContext(c)
	if !ok {
		return
	}
	folderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.folderService.ForceDeleteFolder(c.Request.Context(), id, folderID); err != nil {
		respondError(c, "ForceDeleteFolder", err)
		return
	}
	xerr.Success(c, http.StatusOK, "目录已强制删除", nil)
}

// Breadcrumb 获取目录路径
// @Summary 获取面包屑
// @Description 返回从根目录到当前目录的路径
// @Tags 目录
// @Produce json
// @Security BearerAuth
// @Param id path int true "目录 ID"
// @Success 200 {object} xerr.Response{data=[]mapper.BreadcrumbItem} "路径"
// @Router /api/v1/folders/{id}/breadcrumb [get]
func (h *FolderHandler) Breadcrumb(c *gin.Context) {
	id, ok := utils.GetIdentityFromContext(c)
	if !ok {
		return
	}
	folderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	path, err := h.folderService.Breadcrumb(c.Request.Context(), id, folderID)
	if err != nil {
		respondError(c, "Breadcrumb", err)
		return
	}
	xerr.Success(c, http.StatusOK, "获取路径成功", mapper.ToBreadcrumb(path))
}

// ArchiveFolder 打包下载目录
// @Summary 打包下载目录
// @Tags 目录
// @Produce application/zip
// @Security BearerAuth
// @Param id path int true "目录 ID"
// @Success 200 {file} file "ZIP 文件流"
// @Router /api/v1/folders/{id}/archive [get]
func (h *FolderHandler) ArchiveFolder(c *gin.Context) {
	id, ok := utils.GetIdentityFromContext(c)
	if !ok {
		return
	}
	folderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	folder, reader, err := h.folderService.ArchiveFolder(c.Request.Context(), id, folderID)
	if err != nil {
		respondError(c, "ArchiveFolder", err)
		return
	}
	defer reader.Close()

	headers := map[string]string{
		"Content-Disposition": mime.FormatMediaType("attachment", map[string]string{"filename": folder.Name + ".zip"}),
	}
	// 长度未知，按分块传输
	c.DataFromReader(http.StatusOK, -1, "application/zip", reader, headers)
}
