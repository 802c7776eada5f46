package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/3Eeeecho/go-docmanager/internal/config"
	"github.com/google/uuid"
)

// StorageService 保存上传文件的原始字节，对象名由存储层生成且全局唯一
type StorageService interface {
	// Save 写入内容并返回生成的对象名与检索路径
	Save(ctx context.Context, originalName string, reader io.Reader, size int64, contentType string) (SavedObject, error)
	// Open 按对象名读取内容，调用方负责关闭
	Open(ctx context.Context, storedName string) (io.ReadCloser, error)
	// Delete 删除对象，I/O 失败时返回 false 而不是错误
	Delete(ctx context.Context, storedName string) bool
}

// ErrObjectNotFound 对象在存储中不存在
var ErrObjectNotFound = errors.New("storage: object not found")

type SavedObject struct {
	StoredName   string
	RelativePath string
	Size         int64
}

// NewStoredName 生成 uuid + 原扩展名形式的对象名，与展示名解耦以避免冲突和路径穿越
func NewStoredName(originalName string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	if len(ext) > 16 || strings.ContainsAny(ext, `/\ `) {
		ext = ""
	}
	return uuid.New().String() + ext
}

func NewStorageService(cfg *config.Config) (StorageService, error) {
	switch cfg.Storage.Type {
	case "local":
		return NewLocalStorageService(cfg.Storage.LocalBasePath)
	case "minio":
		return NewMinIOStorageService(&cfg.MinIO)
	case "aliyun_oss":
		return NewAliyunOSSStorageService(&cfg.AliyunOSS)
	default:
		return nil, fmt.Errorf("invalid storage type %q", cfg.Storage.Type)
	}
}
