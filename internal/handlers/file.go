package handlers

import (
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/3Eeeecho/go-docmanager/internal/pkg/logger"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/mapper"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/utils"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/xerr"
	"github.com/3Eeeecho/go-docmanager/internal/services/explorer"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 超过该大小的 multipart 内容写入临时文件
const multipartMemory = 32 << 20

type FileHandler struct {
	fileService explorer.FileService
}

func NewFileHandler(fileService explorer.FileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

// UploadFiles 上传文件
// @Summary 上传文件
// @Description 通过 multipart 字段 files 上传一个或多个文件，folderId 为空时上传到根目录
// @Tags 文件
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param files formData file true "文件，可重复"
// @Param folderId formData string false "目标目录 ID"
// @Success 201 {object} xerr.Response{data=[]mapper.FileResponse} "上传成功"
// @Failure 400 {object} xerr.Response "未提供文件或参数无效"
// @Failure 413 {object} xerr.Response "文件过大"
// @Router /api/v1/files/upload [post]
func (h *FileHandler) UploadFiles(c *gin.Context) {
	id, ok := utils.GetIdentityFromContext(c)
	if !ok {
		return
	}

	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
		bindError(c, err)
		return
	}
	form := c.Request.MultipartForm
	defer func() {
		if err := form.RemoveAll(); err != nil {
			logger.Warn("UploadFiles: Failed to remove multipart temp files", zap.Error(err))
		}
	}()

	folderID, err := optionalID(c.Request.FormValue("folderId"))
	if err != nil {
		xerr.AbortWithError(c, http.StatusBadRequest, xerr.InvalidParamsCode, "无效的 folderId")
		return
	}

	headers := form.File["files"]
	inputs := make([]explorer.UploadInput, 0, len(headers))
	for _, fh := range headers {
		inputs = append(inputs, uploadInput(fh))
	}

	files, err := h.fileService.Upload(c.Request.Context(), id, folderID, inputs)
	if err != nil {
		status, code, msg := xerr.Status(err)
		if status >= http.StatusInternalServerError {
			logger.Error("UploadFiles: upload failed", zap.Uint64("userID", id.UserID), zap.Int("uploaded", len(files)), zap.Error(err))
		}
		// 部分成功时一并返回已保存的文件
		xerr.JSONResponse(c, status, code, msg, mapper.ToFileResponses(files))
		c.Abort()
		return
	}
	xerr.Success(c, http.StatusCreated, "文件上传成功", mapper.ToFileResponses(files))
}

func uploadInput(fh *multipart.FileHeader) explorer.UploadInput {
	return explorer.UploadInput{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open:        func() (io.ReadCloser, error) { return fh.Open() },
	}
}

// ListFiles 列出文件
// @Summary 列出文件
// @Description 列出 folderId 下当前用户可见的文件，省略时列出根目录文件
// @Tags 文件
// @Produce json
// @Security BearerAuth
// @Param folderId query string false "目录 ID，空或 null 表示根目录"
// @Success 200 {object} xerr.Response{data=[]mapper.FileResponse} "文件列表"
// @Router /api/v1/files [get]
func (h *FileHandler) ListFiles(c *gin.Context) {
	id, ok := utils.GetIdentityFromContext(c)
	if !ok {
		return
	}
	folderID, err := optionalID(c.Query("folderId"))
	if err != nil {
		xerr.AbortWithError(c, http.StatusBadRequest, xerr.InvalidParamsCode, "无效的 folderId")
		return
	}

	files, err := h.fileService.ListFiles(c.Request.Context(), id, folderID)
	if err != nil {
		respondError(c, "ListFiles", err)
		return
	}
	xerr.Success(c, http.StatusOK, "获取文件列表成功", mapper.ToFileResponses(files))
}

// RecentFiles 最近打开的文件
// @Summary 最近打开的文件
// @Tags 文件
// @Produce json
// @Security BearerAuth
// @Param limit query int false "返回条数，默认 8，最大 100"
// @Success 200 {object} xerr.Response{data=[]mapper.FileResponse} "文件列表"
// @Router /api/v1/files/recent [get]
func (h *FileHandler) RecentFiles(c *gin.Context) {
	id, ok := utils.GetIdentityFromContext(c)
	if !ok {
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil || limit < 0 {
		xerr.AbortWithError(c, http.StatusBadRequest, xerr.InvalidParamsCode, "无效的 limit")
		return
	}
	limit = min(limit, 100)

	files, err := h.fileService.RecentFiles(c.Request.Context(), id, limit)
	if err != nil {
		respondError(c, "RecentFiles", err)
		return
	}
	xerr.Success(c, http.StatusOK, "获取最近文件成功", mapper.ToFileResponses(files))
}

// GetFile 获取文件详情
// @Summary 获取文件详情
// @Tags 文件
// @Produce json
// @Security BearerAuth
// @Param id path int true "文件 ID"
// @Success 200 {object} xerr.Response{data=mapper.FileResponse} "文件详情"
// @Failure 403 {object} xerr.Response "无权访问"
// @Failure 404 {object} xerr.Response "文件不存在"
// @Router /api/v1/files/{id} [get]
func (h *FileHandler) GetFile(c *gin.Context) {
	id, ok := utils.GetIdentityFromContext(c)
	if !ok {
		return
	}
	fileID, ok := pathID(c, "id")
	if !ok {
		return
	}
	file, err := h.fileService.GetFile(c.Request.Context(), id, fileID)
	if err != nil {
		respondError(c, "GetFile", err)
		return
	}
	xerr.Success(c, http.StatusOK, "获取文件成功", mapper.ToFileResponse(file))
}

// OpenFile 记录文件被打开
// @Summary 打开文件
// @Description 更新文件的最近打开时间并返回文件信息
// @Tags 文件
// @Produce json
// @Security BearerAuth
// @Param id path int true "文件 ID"
// @Success 200 {object} xerr.Response{data=mapper.FileResponse} "文件信息"
// @Router /api/v1/files/{id}/open [post]
// @Router /api/v1/files/open/{id} [patch]
func (h *FileHandler) OpenFile(c *gin.Context) {
	id, ok := utils.GetIdentityFromContext(c)
	if !ok {
		return
	}
	fileID, ok := pathID(c, "id")
	if !ok {
		return
	}
	file, err := h.fileService.MarkOpened(c.Request.Context(), id, fileID)
	if err != nil {
		respondError(c, "OpenFile", err)
		return
	}
	xerr.Success(c, http.StatusOK, "文件已打开", mapper.ToFileResponse(file))
}

// DownloadFile 下载文件
// @Summary 下载文件
// @Tags 文件
// @Produce application/octet-stream
// @Security BearerAuth
// @Param id path int true "文件 ID"
// @Success 200 {file} file "文件内容"
// @Failure 404 {object} xerr.Response "文件不存在"
// @Router /api/v1/files/download/{id} [get]
func (h *FileHandler) DownloadFile(c *gin.Context) {
	id, ok := utils.GetIdentityFromContext(c)
	if !ok {
		return
	}
	fileID, ok := pathID(c, "id")
	if !ok {
		return
	}

	file, reader, err := h.fileService.Download(c.Request.Context(), id, fileID)
	if err != nil {
		respondError(c, "DownloadFile", err)
		return
	}
	defer reader.Close()

	headers := map[string]string{
		"Content-Disposition": mime.FormatMediaType("attachment", map[string]string{"filename": file.FileName}),
	}
	c.DataFromReader(http.StatusOK, file.Size, file.ContentType, reader, headers)
}

// DeleteFile 删除文件
// @Summary 删除文件
// @Description 软删除文件，存储内容保留
// @Tags 文件
// @Produce json
// @Security BearerAuth
// @Param id path int true "文件 ID"
// @Success 200 {object} xerr.Response "删除成功"
// @Router /api/v1/files/{id} [delete]
func (h *FileHandler) DeleteFile(c *gin.Context) {
	id, ok := utils.GetIdentityFromContext(c)
	if !ok {
		return
	}
	fileID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.fileService.DeleteFile(c.Request.Context(), id, fileID); err != nil {
		respondError(c, "DeleteFile", err)
		return
	}
	xerr.Success(c, http.StatusOK, "文件删除成功", nil)
}
