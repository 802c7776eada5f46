package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/3Eeeecho/go-docmanager/internal/models"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/authz"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/logger"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/xerr"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type FolderRepository interface {
	// WithTx 返回绑定到事务 tx 的仓储
	WithTx(tx *gorm.DB) FolderRepository

	Create(ctx context.Context, folder *models.Folder) error
	// FindByID 只返回未被软删除的目录
	FindByID(ctx context.Context, id uint64) (*models.Folder, error)
	// FindByIDUnscoped 绕过软删除过滤
	FindByIDUnscoped(ctx context.Context, id uint64) (*models.Folder, error)
	List(ctx context.Context, filter authz.Filter) ([]models.Folder, error)
	FindChildren(ctx context.Context, parentID uint64) ([]models.Folder, error)
	CountChildren(ctx context.Context, parentID uint64) (int64, error)
	Update(ctx context.Context, folder *models.Folder) error
	SoftDelete(ctx context.Context, ids []uint64, at time.Time) error
}

type folderRepository struct {
	db *gorm.DB
}

var _ FolderRepository = (*folderRepository)(nil)

func NewFolderRepository(db *gorm.DB) FolderRepository {
	return &folderRepository{db: db}
}

func (r *folderRepository) WithTx(tx *gorm.DB) FolderRepository {
	return &folderRepository{db: tx}
}

func (r *folderRepository) Create(ctx context.Context, folder *models.Folder) error {
	if err := r.db.WithContext(ctx).Create(folder).Error; err != nil {
		logger.Error("Create: Failed to create folder in DB", zap.String("name", folder.Name), zap.Error(err))
		return fmt.Errorf("failed to create folder: %w", err)
	}
	return nil
}

func (r *folderRepository) FindByID(ctx context.Context, id uint64) (*models.Folder, error) {
	return r.first(r.db.WithContext(ctx), id)
}

func (r *folderRepository) FindByIDUnscoped(ctx context.Context, id uint64) (*models.Folder, error) {
	return r.first(r.db.WithContext(ctx).Unscoped(), id)
}

func (r *folderRepository) first(db *gorm.DB, id uint64) (*models.Folder, error) {
	var folder models.Folder
	if err := db.First(&folder, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, xerr.ErrDirectoryNotFound
		}
		return nil, fmt.Errorf("failed to find folder %d: %w", id, err)
	}
	return &folder, nil
}

func (r *folderRepository) List(ctx context.Context, filter authz.Filter) ([]models.Folder, error) {
	var folders []models.Folder
	query := applyFilter(r.db.WithContext(ctx).Model(&models.Folder{}), filter, folderColumns)
	if err := query.Order("name ASC").Order("id ASC").Find(&folders).Error; err != nil {
		logger.Error("Error listing folders from DB", zap.Any("filter", filter), zap.Error(err))
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}
	return folders, nil
}

func (r *folderRepository) FindChildren(ctx context.Context, parentID uint64) ([]models.Folder, error) {
	var folders []models.Folder
	err := r.db.WithContext(ctx).Where("parent_id = ?", parentID).Order("id ASC").Find(&folders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find children of folder %d: %w", parentID, err)
	}
	return folders, nil
}

func (r *folderRepository) CountChildren(ctx context.Context, parentID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Folder{}).Where("parent_id = ?", parentID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count children of folder %d: %w", parentID, err)
	}
	return count, nil
}

func (r *folderRepository) Update(ctx context.Context, folder *models.Folder) error {
	err := r.db.WithContext(ctx).Model(folder).Select("name", "parent_id").Updates(folder).Error
	if err != nil {
		logger.Error("Update: Failed to update folder", zap.Uint64("folderID", folder.ID), zap.Error(err))
		return fmt.Errorf("failed to update folder: %w", err)
	}
	return nil
}

func (r *folderRepository) SoftDelete(ctx context.Context, ids []uint64, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Model(&models.Folder{}).
		Where("id IN ?", ids).
		Updates(map[string]any{"is_deleted": true, "deleted_at": at}).Error
	if err != nil {
		return fmt.Errorf("failed to soft delete folders: %w", err)
	}
	return nil
}
