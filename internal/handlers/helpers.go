package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/3Eeeecho/go-docmanager/internal/pkg/logger"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/xerr"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError 按统一映射返回错误，5xx 记录完整错误链
func respondError(c *gin.Context, op string, err error) {
	status, code, msg := xerr.Status(err)
	if status >= http.StatusInternalServerError {
		logger.Error(op+": request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	xerr.AbortWithError(c, status, code, msg)
}

// bindError 把请求体解析失败翻译成 400，请求体超限时为 413
func bindError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		xerr.AbortWithErr(c, xerr.ErrFileTooLarge)
		return
	}
	xerr.AbortWithError(c, http.StatusBadRequest, xerr.InvalidParamsCode, "请求参数解析失败: "+err.Error())
}

// pathID 解析路径参数中的 ID，失败时直接写 400
func pathID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		xerr.AbortWithError(c, http.StatusBadRequest, xerr.InvalidParamsCode, "无效的 "+name)
		return 0, false
	}
	return id, true
}

// optionalID 解析可选的目录 ID，空串与 "null" 表示根目录
func optionalID(raw string) (*uint64, error) {
	if raw == "" || raw == "null" {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return nil, xerr.ErrInvalidParams
	}
	return &id, nil
}
