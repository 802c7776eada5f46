package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/3Eeeecho/go-docmanager/internal/pkg/logger"
	"go.uber.org/zap"
)

// LocalStorageService 把对象保存在本地目录下
type LocalStorageService struct {
	basePath string
}

var _ StorageService = (*LocalStorageService)(nil)

func NewLocalStorageService(basePath string) (*LocalStorageService, error) {
	if basePath == "" {
		return nil, errors.New("local storage: base path is empty")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("local storage: create base dir: %w", err)
	}
	logger.Info("本地存储服务初始化成功", zap.String("basePath", basePath))
	return &LocalStorageService{basePath: basePath}, nil
}

// path 只接受不含路径分隔符的对象名
func (s *LocalStorageService) path(storedName string) (string, error) {
	if storedName == "" || storedName != filepath.Base(storedName) || storedName == "." || storedName == ".." {
		return "", fmt.Errorf("local storage: invalid object name %q", storedName)
	}
	return filepath.Join(s.basePath, storedName), nil
}

func (s *LocalStorageService) Save(ctx context.Context, originalName string, reader io.Reader, size int64, contentType string) (SavedObject, error) {
	storedName := NewStoredName(originalName)
	target, err := s.path(storedName)
	if err != nil {
		return SavedObject{}, err
	}

	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return SavedObject{}, fmt.Errorf("local storage: create object: %w", err)
	}
	written, copyErr := io.Copy(f, reader)
	closeErr := f.Close()
	if copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		_ = os.Remove(target)
		return SavedObject{}, fmt.Errorf("local storage: write object: %w", copyErr)
	}

	return SavedObject{
		StoredName:   storedName,
		RelativePath: filepath.ToSlash(filepath.Join(filepath.Base(s.basePath), storedName)),
		Size:         written,
	}, nil
}

func (s *LocalStorageService) Open(ctx context.Context, storedName string) (io.ReadCloser, error) {
	target, err := s.path(storedName)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("local storage: %s: %w", storedName, ErrObjectNotFound)
		}
		return nil, fmt.Errorf("local storage: open object: %w", err)
	}
	return f, nil
}

func (s *LocalStorageService) Delete(ctx context.Context, storedName string) bool {
	target, err := s.path(storedName)
	if err != nil {
		logger.Warn("本地存储删除对象失败", zap.String("storedName", storedName), zap.Error(err))
		return false
	}
	if err := os.Remove(target); err != nil {
		logger.Warn("本地存储删除对象失败", zap.String("storedName", storedName), zap.Error(err))
		return false
	}
	return true
}
