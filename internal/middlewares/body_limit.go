package middlewares

import (
	"net/http"

	"github.com/3Eeeecho/go-docmanager/internal/pkg/xerr"
	"github.com/gin-gonic/gin"
)

// UploadBodyLimit 限制上传接口的请求体大小，超出声明长度时直接拒绝
func UploadBodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			xerr.AbortWithErr(c, xerr.ErrFileTooLarge)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
