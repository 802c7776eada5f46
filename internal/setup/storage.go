package setup

import (
	"context"
	"fmt"
	"time"

	"github.com/3Eeeecho/go-docmanager/internal/config"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/logger"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/storage"
	"go.uber.org/zap"
)

// bucketStorage 需要预先创建存储桶的对象存储后端
type bucketStorage interface {
	storage.StorageService
	IsBucketExist(ctx context.Context) (bool, error)
	MakeBucket(ctx context.Context) error
	BucketName() string
}

// ensureBucket 检查存储桶，不存在时创建
func ensureBucket(ctx context.Context, s bucketStorage, backend string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := s.IsBucketExist(ctx)
	if err != nil {
		return err
	}
	if exists {
		logger.Info(backend+" 存储桶已存在", zap.String("bucketName", s.BucketName()))
		return nil
	}
	logger.Info(backend+" 存储桶不存在，尝试创建...", zap.String("bucketName", s.BucketName()))
	return s.MakeBucket(ctx)
}

// InitStorage 按 storage.type 初始化文件存储服务，对象存储后端会确保存储桶存在
func InitStorage(ctx context.Context, cfg *config.Config) (storage.StorageService, error) {
	svc, err := storage.NewStorageService(cfg)
	if err != nil {
		return nil, fmt.Errorf("初始化 %s 存储服务失败: %w", cfg.Storage.Type, err)
	}
	if b, ok := svc.(bucketStorage); ok {
		if err := ensureBucket(ctx, b, cfg.Storage.Type); err != nil {
			return nil, err
		}
	}
	logger.Info("存储服务已选择并初始化", zap.String("type", cfg.Storage.Type))
	return svc, nil
}
