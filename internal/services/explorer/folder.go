package explorer

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/3Eeeecho/go-docmanager/internal/models"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/authz"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/logger"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/storage"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/xerr"
	"github.com/3Eeeecho/go-docmanager/internal/repositories"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxFolderNameLength = 255

type FolderService interface {
	// 目录查询
	ListFolders(ctx context.Context, id authz.Identity, parentID *uint64) ([]models.Folder, error)
	GetFolder(ctx context.Context, id authz.Identity, folderID uint64) (*models.Folder, error)
	Breadcrumb(ctx context.Context, id authz.Identity, folderID uint64) ([]models.Folder, error)

	// 目录操作
	CreateFolder(ctx context.Context, id authz.Identity, name string, parentID *uint64) (*models.Folder, error)
	RenameFolder(ctx context.Context, id authz.Identity, folderID uint64, name string) (*models.Folder, error)
	MoveFolder(ctx context.Context, id authz.Identity, folderID uint64, newParentID *uint64) (*models.Folder, error)

	// 目录删除
	DeleteFolder(ctx context.Context, id authz.Identity, folderID uint64) error
	DeleteFolderRecursive(ctx context.Context, id authz.Identity, folderID uint64) error
	ForceDeleteFolder(ctx context.Context, id authz.Identity, folderID uint64) error

	// ArchiveFolder 把目录子树打包成 ZIP 流，调用方负责关闭
	ArchiveFolder(ctx context.Context, id authz.Identity, folderID uint64) (*models.Folder, io.ReadCloser, error)
}

type folderService struct {
	folderRepo         repositories.FolderRepository
	fileRepo           repositories.FileRepository
	domainService      DomainService
	transactionManager TransactionManager
	storage            storage.StorageService
	now                func() time.Time
}

var _ FolderService = (*folderService)(nil)

func NewFolderService(
	folderRepo repositories.FolderRepository,
	fileRepo repositories.FileRepository,
	domainService DomainService,
	transactionManager TransactionManager,
	storageService storage.StorageService,
) FolderService {
	return &folderService{
		folderRepo:         folderRepo,
		fileRepo:           fileRepo,
		domainService:      domainService,
		transactionManager: transactionManager,
		storage:            storageService,
		now:                time.Now,
	}
}

func normalizeFolderName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("folder service: %w", xerr.ErrFolderNameRequired)
	}
	if utf8.RuneCountInString(name) > maxFolderNameLength {
		return "", fmt.Errorf("folder service: name longer than %d: %w", maxFolderNameLength, xerr.ErrInvalidParams)
	}
	return name, nil
}

func sameOwner(a, b *uint64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// ListFolders 列出 parentID 下的目录，parentID 为空时列出根目录。
// 结果只按归属过滤，不校验 parentID 本身是否可访问。
func (s *folderService) ListFolders(ctx context.Context, id authz.Identity, parentID *uint64) ([]models.Folder, error) {
	folders, err := s.folderRepo.List(ctx, authz.BuildFilter(id, parentID))
	if err != nil {
		logger.Error("ListFolders: Failed to list folders", zap.Uint64("userID", id.UserID), logger.OptionalUint64("parentID", parentID), zap.Error(err))
		return nil, fmt.Errorf("folder service: %w", xerr.ErrDatabaseError)
	}
	return folders, nil
}

func (s *folderService) GetFolder(ctx context.Context, id authz.Identity, folderID uint64) (*models.Folder, error) {
	return s.domainService.CheckFolder(ctx, id, folderID)
}

func (s *folderService) Breadcrumb(ctx context.Context, id authz.Identity, folderID uint64) ([]models.Folder, error) {
	return newTreeWalker(s.folderRepo, s.fileRepo).breadcrumb(ctx, id, folderID)
}

func (s *folderService) CreateFolder(ctx context.Context, id authz.Identity, name string, parentID *uint64) (*models.Folder, error) {
	name, err := normalizeFolderName(name)
	if err != nil {
		return nil, err
	}

	owner := &id.UserID
	if parentID != nil {
		parent, err := s.domainService.CheckFolder(ctx, id, *parentID)
		if err != nil {
			return nil, err
		}
		// 子目录归属与父目录保持一致
		owner = parent.UserID

		chain, err := newTreeWalker(s.folderRepo, s.fileRepo).ancestors(ctx, parent.ID, nil)
		if err != nil {
			return nil, err
		}
		if len(chain) >= MaxFolderDepth {
			return nil, fmt.Errorf("folder service: %w", xerr.ErrFolderDepthExceeded)
		}
	}

	folder := &models.Folder{
		Name:     name,
		ParentID: parentID,
		UserID:   owner,
	}
	if err := s.folderRepo.Create(ctx, folder); err != nil {
		logger.Error("CreateFolder: Failed to create folder in DB",
			zap.Uint64("userID", id.UserID),
			logger.OptionalUint64("parentID", parentID),
			zap.String("folderName", name),
			zap.Error(err))
		return nil, fmt.Errorf("folder service: failed to create folder: %w", xerr.ErrDatabaseError)
	}

	logger.Info("CreateFolder: Folder created successfully",
		zap.Uint64("folderID", folder.ID),
		zap.Uint64("userID", id.UserID),
		zap.String("folderName", name))
	return folder, nil
}

func (s *folderService) RenameFolder(ctx context.Context, id authz.Identity, folderID uint64, name string) (*models.Folder, error) {
	name, err := normalizeFolderName(name)
	if err != nil {
		return nil, err
	}

	folder, err := s.domainService.CheckFolder(ctx, id, folderID)
	if err != nil {
		return nil, err
	}
	if folder.Name == name {
		return folder, nil
	}

	folder.Name = name
	if err := s.folderRepo.Update(ctx, folder); err != nil {
		logger.Error("RenameFolder: Failed to update folder", zap.Uint64("folderID", folderID), zap.Error(err))
		return nil, fmt.Errorf("folder service: failed to rename folder: %w", xerr.ErrDatabaseError)
	}

	logger.Info("RenameFolder: Folder renamed successfully", zap.Uint64("folderID", folderID), zap.String("folderName", name))
	return folder, nil
}

// MoveFolder 把目录挂到 newParentID 下，newParentID 为空表示移到根目录。
// 不允许移入自身子树，也不允许跨所有者移动。
func (s *folderService) MoveFolder(ctx context.Context, id authz.Identity, folderID uint64, newParentID *uint64) (*models.Folder, error) {
	var moved *models.Folder
	err := s.transactionManager.WithTransaction(ctx, func(tx *gorm.DB) error {
		domain := s.domainService.WithTx(tx)
		walker := newTreeWalker(s.folderRepo.WithTx(tx), s.fileRepo.WithTx(tx))

		folder, err := domain.CheckFolder(ctx, id, folderID)
		if err != nil {
			return err
		}

		parentDepth := 0
		if newParentID != nil {
			if *newParentID == folderID {
				return fmt.Errorf("folder service: %w", xerr.ErrCannotMoveIntoSubtree)
			}
			parent, err := domain.CheckFolder(ctx, id, *newParentID)
			if err != nil {
				return err
			}
			if !sameOwner(parent.UserID, folder.UserID) {
				logger.Warn("MoveFolder: Target parent belongs to another owner",
					zap.Uint64("folderID", folderID), zap.Uint64("targetParentID", parent.ID))
				return fmt.Errorf("folder service: %w", xerr.ErrFolderOwnerMismatch)
			}

			chain, err := walker.ancestors(ctx, parent.ID, nil)
			if err != nil {
				return err
			}
			for _, ancestor := range chain {
				if ancestor.ID == folderID {
					logger.Warn("MoveFolder: Cannot move folder into its own subdirectory",
						zap.Uint64("folderID", folderID), zap.Uint64("targetParentID", parent.ID), zap.Uint64("userID", id.UserID))
					return fmt.Errorf("folder service: %w", xerr.ErrCannotMoveIntoSubtree)
				}
			}
			parentDepth = len(chain)
		}

		height, err := walker.height(ctx, folder)
		if err != nil {
			return err
		}
		if parentDepth+1+height > MaxFolderDepth {
			return fmt.Errorf("folder service: %w", xerr.ErrFolderDepthExceeded)
		}

		folder.ParentID = newParentID
		if err := s.folderRepo.WithTx(tx).Update(ctx, folder); err != nil {
			logger.Error("MoveFolder: Failed to update folder", zap.Uint64("folderID", folderID), zap.Error(err))
			return fmt.Errorf("folder service: failed to move folder: %w", xerr.ErrDatabaseError)
		}
		moved = folder
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("MoveFolder: Folder moved successfully", zap.Uint64("folderID", folderID), logger.OptionalUint64("parentID", newParentID))
	return moved, nil
}

// DeleteFolder 只删除空目录，存在可见的子目录或文件时返回 ErrDirNotEmpty 且不做任何修改
func (s *folderService) DeleteFolder(ctx context.Context, id authz.Identity, folderID uint64) error {
	return s.transactionManager.WithTransaction(ctx, func(tx *gorm.DB) error {
		folderRepo := s.folderRepo.WithTx(tx)
		fileRepo := s.fileRepo.WithTx(tx)

		folder, err := s.domainService.WithTx(tx).CheckFolder(ctx, id, folderID)
		if err != nil {
			return err
		}

		children, err := folderRepo.CountChildren(ctx, folder.ID)
		if err != nil {
			return fmt.Errorf("folder service: %w", xerr.ErrDatabaseError)
		}
		files, err := fileRepo.CountByFolder(ctx, folder.ID)
		if err != nil {
			return fmt.Errorf("folder service: %w", xerr.ErrDatabaseError)
		}
		if children+files > 0 {
			logger.Warn("DeleteFolder: Folder is not empty",
				zap.Uint64("folderID", folderID), zap.Int64("children", children), zap.Int64("files", files))
			return fmt.Errorf("folder service: %w", xerr.ErrDirNotEmpty)
		}

		if err := folderRepo.SoftDelete(ctx, []uint64{folder.ID}, s.now()); err != nil {
			logger.Error("DeleteFolder: Failed to delete folder", zap.Uint64("folderID", folderID), zap.Error(err))
			return fmt.Errorf("folder service: %w", xerr.ErrDatabaseError)
		}
		logger.Info("DeleteFolder: Folder deleted", zap.Uint64("folderID", folderID), zap.Uint64("userID", id.UserID))
		return nil
	})
}

// DeleteFolderRecursive 软删除整棵子树，只在根目录做权限检查，子项归属与根一致
func (s *folderService) DeleteFolderRecursive(ctx context.Context, id authz.Identity, folderID uint64) error {
	return s.transactionManager.WithTransaction(ctx, func(tx *gorm.DB) error {
		root, err := s.domainService.WithTx(tx).CheckFolder(ctx, id, folderID)
		if err != nil {
			return err
		}
		return s.deleteSubtree(ctx, tx, id, root)
	})
}

// ForceDeleteFolder 管理员删除任意目录子树，同样是软删除
func (s *folderService) ForceDeleteFolder(ctx context.Context, id authz.Identity, folderID uint64) error {
	if !id.IsAdmin() {
		logger.Warn("ForceDeleteFolder: Non-admin attempted force delete", zap.Uint64("userID", id.UserID), zap.Uint64("folderID", folderID))
		return fmt.Errorf("folder service: %w", xerr.ErrAdminRequired)
	}
	return s.transactionManager.WithTransaction(ctx, func(tx *gorm.DB) error {
		root, err := s.domainService.WithTx(tx).CheckFolder(ctx, id, folderID)
		if err != nil {
			return err
		}
		return s.deleteSubtree(ctx, tx, id, root)
	})
}

func (s *folderService) deleteSubtree(ctx context.Context, tx *gorm.DB, id authz.Identity, root *models.Folder) error {
	walker := newTreeWalker(s.folderRepo.WithTx(tx), s.fileRepo.WithTx(tx))
	folders, files, err := walker.softDeleteSubtree(ctx, root, s.now())
	if err != nil {
		return err
	}
	logger.Info("deleteSubtree: Folder tree deleted",
		zap.Uint64("rootID", root.ID),
		zap.Uint64("userID", id.UserID),
		zap.Int("folders", folders),
		zap.Int("files", files))
	return nil
}

func (s *folderService) ArchiveFolder(ctx context.Context, id authz.Identity, folderID uint64) (*models.Folder, io.ReadCloser, error) {
	root, err := s.domainService.CheckFolder(ctx, id, folderID)
	if err != nil {
		return nil, nil, err
	}

	entries, err := s.collectArchive(ctx, root)
	if err != nil {
		logger.Error("ArchiveFolder: Failed to collect folder tree", zap.Uint64("folderID", folderID), zap.Error(err))
		return nil, nil, err
	}
	return root, s.streamArchive(ctx, root, entries), nil
}
