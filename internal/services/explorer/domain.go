package explorer

import (
	"context"
	"errors"
	"fmt"

	"github.com/3Eeeecho/go-docmanager/internal/models"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/authz"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/logger"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/xerr"
	"github.com/3Eeeecho/go-docmanager/internal/repositories"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DomainService 负责按 ID 加载目录或文件并做权限检查。
// 资源不存在 (含已软删除) 返回 NotFound，存在但无权访问返回 PermissionDenied。
type DomainService interface {
	WithTx(tx *gorm.DB) DomainService

	CheckFolder(ctx context.Context, id authz.Identity, folderID uint64) (*models.Folder, error)
	// CheckDirectory 与 CheckFolder 相同，folderID 为空表示根目录，直接返回 nil
	CheckDirectory(ctx context.Context, id authz.Identity, folderID *uint64) (*models.Folder, error)
	CheckFile(ctx context.Context, id authz.Identity, fileID uint64) (*models.File, error)
}

type domainService struct {
	folderRepo repositories.FolderRepository
	fileRepo   repositories.FileRepository
}

var _ DomainService = (*domainService)(nil)

func NewDomainService(folderRepo repositories.FolderRepository, fileRepo repositories.FileRepository) DomainService {
	return &domainService{folderRepo: folderRepo, fileRepo: fileRepo}
}

func (s *domainService) WithTx(tx *gorm.DB) DomainService {
	return &domainService{folderRepo: s.folderRepo.WithTx(tx), fileRepo: s.fileRepo.WithTx(tx)}
}

func (s *domainService) CheckFolder(ctx context.Context, id authz.Identity, folderID uint64) (*models.Folder, error) {
	folder, err := s.folderRepo.FindByID(ctx, folderID)
	if err != nil {
		if errors.Is(err, xerr.ErrDirectoryNotFound) {
			return nil, fmt.Errorf("folder %d: %w", folderID, xerr.ErrDirectoryNotFound)
		}
		logger.Error("CheckFolder: Error retrieving folder from DB", zap.Uint64("folderID", folderID), zap.Error(err))
		return nil, fmt.Errorf("folder %d: %w", folderID, xerr.ErrDatabaseError)
	}

	if !authz.CanAccess(id, folder.UserID) {
		logger.Warn("Folder access denied",
			zap.Uint64("folderID", folder.ID),
			zap.Uint64("userID", id.UserID),
			logger.OptionalUint64("ownerID", folder.UserID))
		return nil, fmt.Errorf("folder %d: %w", folderID, xerr.ErrPermissionDenied)
	}
	return folder, nil
}

func (s *domainService) CheckDirectory(ctx context.Context, id authz.Identity, folderID *uint64) (*models.Folder, error) {
	if folderID == nil {
		return nil, nil
	}
	return s.CheckFolder(ctx, id, *folderID)
}

func (s *domainService) CheckFile(ctx context.Context, id authz.Identity, fileID uint64) (*models.File, error) {
	file, err := s.fileRepo.FindByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, xerr.ErrFileNotFound) {
			return nil, fmt.Errorf("file %d: %w", fileID, xerr.ErrFileNotFound)
		}
		logger.Error("CheckFile: Error retrieving file from DB", zap.Uint64("fileID", fileID), zap.Error(err))
		return nil, fmt.Errorf("file %d: %w", fileID, xerr.ErrDatabaseError)
	}

	if !authz.CanAccess(id, file.UserID) {
		logger.Warn("File access denied",
			zap.Uint64("fileID", file.ID),
			zap.Uint64("userID", id.UserID),
			logger.OptionalUint64("ownerID", file.UserID))
		return nil, fmt.Errorf("file %d: %w", fileID, xerr.ErrPermissionDenied)
	}
	return file, nil
}
