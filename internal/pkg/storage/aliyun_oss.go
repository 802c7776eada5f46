package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/3Eeeecho/go-docmanager/internal/config"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/logger"
	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"go.uber.org/zap"
)

type AliyunOSSStorageService struct {
	client *oss.Client
	bucket string
}

var _ StorageService = (*AliyunOSSStorageService)(nil)

func NewAliyunOSSStorageService(cfg *config.AliyunOSSConfig) (*AliyunOSSStorageService, error) {
	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.SecretAccessKey)
	if err != nil {
		logger.Error("初始化阿里云OSS客户端失败", zap.Error(err))
		return nil, fmt.Errorf("无法初始化阿里云OSS客户端: %w", err)
	}
	logger.Info("阿里云OSS客户端初始化成功", zap.String("endpoint", cfg.Endpoint))
	return &AliyunOSSStorageService{client: client, bucket: cfg.BucketName}, nil
}

func (s *AliyunOSSStorageService) Save(ctx context.Context, originalName string, reader io.Reader, size int64, contentType string) (SavedObject, error) {
	bucket, err := s.client.Bucket(s.bucket)
	if err != nil {
		return SavedObject{}, fmt.Errorf("获取OSS存储桶失败: %w", err)
	}

	storedName := NewStoredName(originalName)
	if err := bucket.PutObject(storedName, reader, oss.ContentType(contentType), oss.WithContext(ctx)); err != nil {
		return SavedObject{}, fmt.Errorf("阿里云OSS上传文件失败: %w", err)
	}
	// PutObject 不返回对象大小，这里沿用调用方给出的大小
	return SavedObject{
		StoredName:   storedName,
		RelativePath: s.bucket + "/" + storedName,
		Size:         size,
	}, nil
}

func (s *AliyunOSSStorageService) Open(ctx context.Context, storedName string) (io.ReadCloser, error) {
	bucket, err := s.client.Bucket(s.bucket)
	if err != nil {
		return nil, fmt.Errorf("获取OSS存储桶失败: %w", err)
	}
	reader, err := bucket.GetObject(storedName, oss.WithContext(ctx))
	if err != nil {
		var serviceErr oss.ServiceError
		if errors.As(err, &serviceErr) && serviceErr.Code == "NoSuchKey" {
			return nil, fmt.Errorf("阿里云OSS %s: %w", storedName, ErrObjectNotFound)
		}
		return nil, fmt.Errorf("阿里云OSS获取文件失败: %w", err)
	}
	return reader, nil
}

func (s *AliyunOSSStorageService) Delete(ctx context.Context, storedName string) bool {
	bucket, err := s.client.Bucket(s.bucket)
	if err != nil {
		logger.Warn("获取OSS存储桶失败", zap.String("bucket", s.bucket), zap.Error(err))
		return false
	}
	if err := bucket.DeleteObject(storedName, oss.WithContext(ctx)); err != nil {
		logger.Warn("阿里云OSS删除文件失败", zap.String("storedName", storedName), zap.Error(err))
		return false
	}
	return true
}

func (s *AliyunOSSStorageService) IsBucketExist(ctx context.Context) (bool, error) {
	found, err := s.client.IsBucketExist(s.bucket)
	if err != nil {
		return false, fmt.Errorf("检查阿里云OSS存储桶存在性失败: %w", err)
	}
	return found, nil
}

func (s *AliyunOSSStorageService) MakeBucket(ctx context.Context) error {
	if err := s.client.CreateBucket(s.bucket); err != nil {
		return fmt.Errorf("创建阿里云OSS存储桶失败: %w", err)
	}
	logger.Info("阿里云OSS存储桶创建成功", zap.String("bucket", s.bucket))
	return nil
}

func (s *AliyunOSSStorageService) BucketName() string {
	return s.bucket
}
