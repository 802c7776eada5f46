package models

import (
	"time"

	"gorm.io/gorm"
)

// File 对应 files 表，folder_id 为空时文件位于所有者的根目录
type File struct {
	ID           uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	FileName     string         `gorm:"type:varchar(255);not null" json:"file_name"`
	StoredName   string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"-"` // 存储层中的唯一对象名，不对外暴露
	RelativePath string         `gorm:"type:varchar(1024);not null;default:''" json:"-"`
	ContentType  string         `gorm:"type:varchar(128);not null;default:''" json:"content_type"`
	Size         int64          `gorm:"not null;default:0" json:"size"`
	FolderID     *uint64        `gorm:"index;default:null" json:"folder_id"`
	UserID       *uint64        `gorm:"index;default:null" json:"user_id"`
	UploadedAt   time.Time      `gorm:"not null" json:"uploaded_at"`
	LastOpenedAt *time.Time     `gorm:"index;default:null" json:"last_opened_at"`
	IsDeleted    bool           `gorm:"not null;default:false" json:"is_deleted"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// TableName 指定 GORM 使用的表名
func (File) TableName() string {
	return "files"
}

func (f *File) OwnerRef() *uint64 { return f.UserID }
func (f *File) ParentRef() *uint64 { return f.FolderID }
func (f *File) OpenedAt() *time.Time { return f.LastOpenedAt }
