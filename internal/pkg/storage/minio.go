package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/3Eeeecho/go-docmanager/internal/config"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/logger"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

type MinIOStorageService struct {
	client *minio.Client
	bucket string
}

var _ StorageService = (*MinIOStorageService)(nil)

// NewMinIOStorageService 创建并返回一个 MinIOStorageService 实例
func NewMinIOStorageService(cfg *config.MinIOConfig) (*MinIOStorageService, error) {
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		logger.Error("初始化 MinIO 客户端失败", zap.Error(err))
		return nil, fmt.Errorf("无法初始化 MinIO 客户端: %w", err)
	}

	logger.Info("MinIO 客户端初始化成功", zap.String("endpoint", cfg.Endpoint))
	return &MinIOStorageService{client: minioClient, bucket: cfg.BucketName}, nil
}

func (s *MinIOStorageService) Save(ctx context.Context, originalName string, reader io.Reader, size int64, contentType string) (SavedObject, error) {
	storedName := NewStoredName(originalName)
	info, err := s.client.PutObject(ctx, s.bucket, storedName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return SavedObject{}, fmt.Errorf("MinIO 上传文件失败: %w", err)
	}
	return SavedObject{
		StoredName:   storedName,
		RelativePath: s.bucket + "/" + storedName,
		Size:         info.Size,
	}, nil
}

func (s *MinIOStorageService) Open(ctx context.Context, storedName string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, storedName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("MinIO 获取文件失败: %w", err)
	}
	// GetObject 是惰性的，Stat 用来尽早发现对象不存在
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("MinIO %s: %w", storedName, ErrObjectNotFound)
		}
		return nil, fmt.Errorf("MinIO 获取文件失败: %w", err)
	}
	return obj, nil
}

func (s *MinIOStorageService) Delete(ctx context.Context, storedName string) bool {
	err := s.client.RemoveObject(ctx, s.bucket, storedName, minio.RemoveObjectOptions{})
	if err != nil {
		logger.Warn("MinIO 删除文件失败", zap.String("storedName", storedName), zap.Error(err))
		return false
	}
	return true
}

func (s *MinIOStorageService) IsBucketExist(ctx context.Context) (bool, error) {
	found, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return false, fmt.Errorf("检查 MinIO 存储桶存在性失败: %w", err)
	}
	return found, nil
}

func (s *MinIOStorageService) MakeBucket(ctx context.Context) error {
	err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
	if err != nil {
		// 如果桶已存在，通常不是错误
		exists, errBucketExists := s.client.BucketExists(ctx, s.bucket)
		if errBucketExists == nil && exists {
			logger.Info("MinIO 存储桶已存在，无需创建", zap.String("bucket", s.bucket))
			return nil
		}
		return fmt.Errorf("创建 MinIO 存储桶失败: %w", err)
	}
	logger.Info("MinIO 存储桶创建成功", zap.String("bucket", s.bucket))
	return nil
}

func (s *MinIOStorageService) BucketName() string {
	return s.bucket
}
