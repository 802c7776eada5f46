package models

import (
	"time"

	"gorm.io/gorm"
)

// Folder 对应 folders 表，parent_id 为空表示根目录。
// 子目录的 user_id 始终与父目录一致，在创建和移动时保证。
type Folder struct {
	ID        uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	ParentID  *uint64        `gorm:"index;default:null" json:"parent_id"`
	UserID    *uint64        `gorm:"index;default:null" json:"user_id"`
	IsDeleted bool           `gorm:"not null;default:false" json:"is_deleted"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Folder) TableName() string {
	return "folders"
}

func (f *Folder) OwnerRef() *uint64 { return f.UserID }
func (f *Folder) ParentRef() *uint64 { return f.ParentID }
