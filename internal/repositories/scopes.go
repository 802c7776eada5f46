package repositories

import (
	"fmt"

	"github.com/3Eeeecho/go-docmanager/internal/pkg/authz"
	"gorm.io/gorm"
)

// filterColumns 描述某张表上 authz.Filter 各变体对应的列
type filterColumns struct {
	parent string
	owner  string
	opened string // 为空表示该表没有打开时间列
}

var (
	folderColumns = filterColumns{parent: "parent_id", owner: "user_id"}
	fileColumns   = filterColumns{parent: "folder_id", owner: "user_id", opened: "last_opened_at"}
)

// applyFilter 把 authz.Filter 翻译成查询条件。
// GORM 对 DeletedAt 的默认作用域仍然生效，两者以 AND 组合。
func applyFilter(db *gorm.DB, f authz.Filter, cols filterColumns) *gorm.DB {
	switch v := f.(type) {
	case authz.Roots:
		return db.Where(fmt.Sprintf("%s IS NULL", cols.parent))
	case authz.ChildrenOf:
		return db.Where(fmt.Sprintf("%s = ?", cols.parent), v.ParentID)
	case authz.Opened:
		if cols.opened == "" {
			return db.Where("1 = 0")
		}
		return db.Where(fmt.Sprintf("%s IS NOT NULL", cols.opened))
	case authz.OwnedBy:
		return applyFilter(db.Where(fmt.Sprintf("%s = ?", cols.owner), v.OwnerID), v.Inner, cols)
	default:
		// 未知变体不匹配任何行
		return db.Where("1 = 0")
	}
}
