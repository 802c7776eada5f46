package explorer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/3Eeeecho/go-docmanager/internal/config"
	"github.com/3Eeeecho/go-docmanager/internal/models"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/authz"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/logger"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/storage"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/xerr"
	"github.com/3Eeeecho/go-docmanager/internal/repositories"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxFileNameLength = 255

// UploadInput 描述一个待上传的文件，Open 每个文件只会被调用一次
type UploadInput struct {
	FileName    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

type FileService interface {
	// 文件查询
	ListFiles(ctx context.Context, id authz.Identity, folderID *uint64) ([]models.File, error)
	RecentFiles(ctx context.Context, id authz.Identity, limit int) ([]models.File, error)
	GetFile(ctx context.Context, id authz.Identity, fileID uint64) (*models.File, error)

	// Upload 逐个保存文件，每个文件的元数据单独提交。
	// 中途失败时返回已成功的文件和第一个错误。
	Upload(ctx context.Context, id authz.Identity, folderID *uint64, inputs []UploadInput) ([]models.File, error)

	// 文件访问
	MarkOpened(ctx context.Context, id authz.Identity, fileID uint64) (*models.File, error)
	Download(ctx context.Context, id authz.Identity, fileID uint64) (*models.File, io.ReadCloser, error)

	// 文件删除
	DeleteFile(ctx context.Context, id authz.Identity, fileID uint64) error
}

type fileService struct {
	fileRepo           repositories.FileRepository
	domainService      DomainService
	transactionManager TransactionManager
	storage            storage.StorageService
	cfg                *config.Config
	now                func() time.Time
}

var _ FileService = (*fileService)(nil)

// NewFileService 创建一个新的文件服务实例
func NewFileService(
	fileRepo repositories.FileRepository,
	domainService DomainService,
	transactionManager TransactionManager,
	storageService storage.StorageService,
	cfg *config.Config,
) FileService {
	return &fileService{
		fileRepo:           fileRepo,
		domainService:      domainService,
		transactionManager: transactionManager,
		storage:            storageService,
		cfg:                cfg,
		now:                time.Now,
	}
}

// cleanFileName 只保留路径的最后一段作为展示名
func cleanFileName(name string) (string, error) {
	name = strings.TrimSpace(strings.ReplaceAll(name, `\`, "/"))
	name = path.Base(name)
	if name == "" || name == "." || name == ".." || name == "/" {
		return "", fmt.Errorf("file service: %w", xerr.ErrFileNameInvalid)
	}
	if utf8.RuneCountInString(name) > maxFileNameLength || strings.ContainsRune(name, 0) {
		return "", fmt.Errorf("file service: %w", xerr.ErrFileNameInvalid)
	}
	return name, nil
}

func (s *fileService) ListFiles(ctx context.Context, id authz.Identity, folderID *uint64) ([]models.File, error) {
	files, err := s.fileRepo.List(ctx, authz.BuildFilter(id, folderID))
	if err != nil {
		logger.Error("ListFiles: Failed to list files", zap.Uint64("userID", id.UserID), logger.OptionalUint64("folderID", folderID), zap.Error(err))
		return nil, fmt.Errorf("file service: %w", xerr.ErrDatabaseError)
	}
	logger.Info("ListFiles success", zap.Uint64("userID", id.UserID), logger.OptionalUint64("folderID", folderID), zap.Int("fileCount", len(files)))
	return files, nil
}

// RecentFiles 返回最近打开过的文件，limit 小于 1 时使用默认值
func (s *fileService) RecentFiles(ctx context.Context, id authz.Identity, limit int) ([]models.File, error) {
	if limit < 1 {
		limit = authz.DefaultRecentLimit
	}
	files, err := s.fileRepo.ListRecent(ctx, authz.BuildRecentFilter(id), limit)
	if err != nil {
		logger.Error("RecentFiles: Failed to list recent files", zap.Uint64("userID", id.UserID), zap.Error(err))
		return nil, fmt.Errorf("file service: %w", xerr.ErrDatabaseError)
	}
	return files, nil
}

func (s *fileService) GetFile(ctx context.Context, id authz.Identity, fileID uint64) (*models.File, error) {
	return s.domainService.CheckFile(ctx, id, fileID)
}

func (s *fileService) Upload(ctx context.Context, id authz.Identity, folderID *uint64, inputs []UploadInput) ([]models.File, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("file service: %w", xerr.ErrNoFilesProvided)
	}

	// 先整体校验，任何一个不合法都不写入
	maxBytes := s.cfg.Storage.MaxUploadBytes()
	names := make([]string, len(inputs))
	for i, in := range inputs {
		if in.Size > maxBytes {
			logger.Warn("Upload: File too large", zap.String("fileName", in.FileName), zap.Int64("size", in.Size), zap.Int64("maxBytes", maxBytes))
			return nil, fmt.Errorf("file service: %s: %w", in.FileName, xerr.ErrFileTooLarge)
		}
		name, err := cleanFileName(in.FileName)
		if err != nil {
			return nil, err
		}
		names[i] = name
	}

	owner := &id.UserID
	if folderID != nil {
		folder, err := s.domainService.CheckFolder(ctx, id, *folderID)
		if err != nil {
			return nil, err
		}
		owner = folder.UserID
	}

	uploaded := make([]models.File, 0, len(inputs))
	for i, in := range inputs {
		file, err := s.uploadOne(ctx, names[i], in, folderID, owner)
		if err != nil {
			return uploaded, err
		}
		uploaded = append(uploaded, *file)
	}

	logger.Info("Upload: Files uploaded successfully", zap.Uint64("userID", id.UserID), logger.OptionalUint64("folderID", folderID), zap.Int("count", len(uploaded)))
	return uploaded, nil
}

func (s *fileService) uploadOne(ctx context.Context, name string, in UploadInput, folderID, owner *uint64) (*models.File, error) {
	reader, err := in.Open()
	if err != nil {
		logger.Error("Upload: Failed to open upload stream", zap.String("fileName", name), zap.Error(err))
		return nil, fmt.Errorf("file service: %w", xerr.ErrInvalidParams)
	}
	defer reader.Close()

	contentType := in.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	saved, err := s.storage.Save(ctx, name, reader, in.Size, contentType)
	if err != nil {
		logger.Error("Upload: Failed to store file content", zap.String("fileName", name), zap.Error(err))
		return nil, fmt.Errorf("file service: %w", xerr.ErrStorageError)
	}

	file := &models.File{
		FileName:     name,
		StoredName:   saved.StoredName,
		RelativePath: saved.RelativePath,
		ContentType:  contentType,
		Size:         saved.Size,
		FolderID:     folderID,
		UserID:       owner,
		UploadedAt:   s.now(),
	}
	err = s.transactionManager.WithTransaction(ctx, func(tx *gorm.DB) error {
		return s.fileRepo.WithTx(tx).Create(ctx, file)
	})
	if err != nil {
		logger.Error("Upload: Failed to save file metadata, removing stored content",
			zap.String("fileName", name),
			zap.String("storedName", saved.StoredName),
			zap.Error(err))
		s.storage.Delete(context.WithoutCancel(ctx), saved.StoredName)
		return nil, fmt.Errorf("file service: %w", xerr.ErrDatabaseError)
	}
	return file, nil
}

// MarkOpened 记录一次打开，更新最近打开时间
func (s *fileService) MarkOpened(ctx context.Context, id authz.Identity, fileID uint64) (*models.File, error) {
	file, err := s.domainService.CheckFile(ctx, id, fileID)
	if err != nil {
		return nil, err
	}

	at := s.now()
	if err := s.fileRepo.MarkOpened(ctx, file.ID, at); err != nil {
		logger.Error("MarkOpened: Failed to update last opened time", zap.Uint64("fileID", fileID), zap.Error(err))
		return nil, fmt.Errorf("file service: %w", xerr.ErrDatabaseError)
	}
	file.LastOpenedAt = &at
	return file, nil
}

func (s *fileService) Download(ctx context.Context, id authz.Identity, fileID uint64) (*models.File, io.ReadCloser, error) {
	file, err := s.domainService.CheckFile(ctx, id, fileID)
	if err != nil {
		return nil, nil, err
	}

	content, err := s.storage.Open(ctx, file.StoredName)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			logger.Warn("Download: Stored content missing", zap.Uint64("fileID", fileID), zap.String("storedName", file.StoredName))
			return nil, nil, fmt.Errorf("file service: %w", xerr.ErrFileNotFound)
		}
		logger.Error("Download: Failed to open stored content", zap.Uint64("fileID", fileID), zap.Error(err))
		return nil, nil, fmt.Errorf("file service: %w", xerr.ErrStorageError)
	}

	logger.Info("Download", zap.Uint64("fileID", fileID), zap.Uint64("userID", id.UserID))
	return file, content, nil
}

// DeleteFile 软删除文件，存储中的内容保留
func (s *fileService) DeleteFile(ctx context.Context, id authz.Identity, fileID uint64) error {
	file, err := s.domainService.CheckFile(ctx, id, fileID)
	if err != nil {
		return err
	}
	if err := s.fileRepo.SoftDelete(ctx, []uint64{file.ID}, s.now()); err != nil {
		logger.Error("DeleteFile: Failed to delete file", zap.Uint64("fileID", fileID), zap.Error(err))
		return fmt.Errorf("file service: %w", xerr.ErrDatabaseError)
	}
	logger.Info("DeleteFile: File deleted", zap.Uint64("fileID", fileID), zap.Uint64("userID", id.UserID))
	return nil
}
