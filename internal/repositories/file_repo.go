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

type FileRepository interface {
	WithTx(tx *gorm.DB) FileRepository

	Create(ctx context.Context, file *models.File) error
	FindByID(ctx context.Context, id uint64) (*models.File, error)
	FindByIDUnscoped(ctx context.Context, id uint64) (*models.File, error)
	// List 按上传时间倒序
	List(ctx context.Context, filter authz.Filter) ([]models.File, error)
	// ListRecent 按最近打开时间倒序，最多 limit 条
	ListRecent(ctx context.Context, filter authz.Filter, limit int) ([]models.File, error)
	FindByFolder(ctx context.Context, folderID uint64) ([]models.File, error)
	CountByFolder(ctx context.Context, folderID uint64) (int64, error)
	MarkOpened(ctx context.Context, id uint64, at time.Time) error
	SoftDelete(ctx context.Context, ids []uint64, at time.Time) error
}

type fileRepository struct {
	db *gorm.DB
}

var _ FileRepository = (*fileRepository)(nil)

func NewFileRepository(db *gorm.DB) FileRepository {
	return &fileRepository{db: db}
}

func (r *fileRepository) WithTx(tx *gorm.DB) FileRepository {
	return &fileRepository{db: tx}
}

func (r *fileRepository) Create(ctx context.Context, file *models.File) error {
	if err := r.db.WithContext(ctx).Create(file).Error; err != nil {
		logger.Error("Create: Failed to create file in DB", zap.String("fileName", file.FileName), zap.Error(err))
		return fmt.Errorf("failed to create file: %w", err)
	}
	return nil
}

func (r *fileRepository) FindByID(ctx context.Context, id uint64) (*models.File, error) {
	return r.first(r.db.WithContext(ctx), id)
}

func (r *fileRepository) FindByIDUnscoped(ctx context.Context, id uint64) (*models.File, error) {
	return r.first(r.db.WithContext(ctx).Unscoped(), id)
}

func (r *fileRepository) first(db *gorm.DB, id uint64) (*models.File, error) {
	var file models.File
	if err := db.First(&file, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, xerr.ErrFileNotFound // 文件未找到
		}
		return nil, fmt.Errorf("failed to find file %d: %w", id, err)
	}
	return &file, nil
}

func (r *fileRepository) List(ctx context.Context, filter authz.Filter) ([]models.File, error) {
	var files []models.File
	query := applyFilter(r.db.WithContext(ctx).Model(&models.File{}), filter, fileColumns)
	if err := query.Order("uploaded_at DESC").Order("id DESC").Find(&files).Error; err != nil {
		logger.Error("Error listing files from DB", zap.Any("filter", filter), zap.Error(err))
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	return files, nil
}

func (r *fileRepository) ListRecent(ctx context.Context, filter authz.Filter, limit int) ([]models.File, error) {
	var files []models.File
	query := applyFilter(r.db.WithContext(ctx).Model(&models.File{}), filter, fileColumns)
	err := query.Order("last_opened_at DESC").Order("id DESC").Limit(limit).Find(&files).Error
	if err != nil {
		logger.Error("Error listing recent files from DB", zap.Any("filter", filter), zap.Error(err))
		return nil, fmt.Errorf("failed to list recent files: %w", err)
	}
	return files, nil
}

func (r *fileRepository) FindByFolder(ctx context.Context, folderID uint64) ([]models.File, error) {
	var files []models.File
	err := r.db.WithContext(ctx).Where("folder_id = ?", folderID).Order("id ASC").Find(&files).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find files of folder %d: %w", folderID, err)
	}
	return files, nil
}

func (r *fileRepository) CountByFolder(ctx context.Context, folderID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.File{}).Where("folder_id = ?", folderID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count files of folder %d: %w", folderID, err)
	}
	return count, nil
}

func (r *fileRepository) MarkOpened(ctx context.Context, id uint64, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&models.File{}).Where("id = ?", id).Update("last_opened_at", at).Error
	if err != nil {
		return fmt.Errorf("failed to mark file %d opened: %w", id, err)
	}
	return nil
}

func (r *fileRepository) SoftDelete(ctx context.Context, ids []uint64, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Model(&models.File{}).
		Where("id IN ?", ids).
		Updates(map[string]any{"is_deleted": true, "deleted_at": at}).Error
	if err != nil {
		return fmt.Errorf("failed to soft delete files: %w", err)
	}
	return nil
}
