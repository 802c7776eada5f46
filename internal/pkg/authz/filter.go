package authz

import "time"

// Filter 是目录与文件列表查询的谓词，由下列几种变体组合而成。
// 仓储层把它翻译成 SQL 条件，并与软删除可见性条件以 AND 组合。
type Filter interface {
	isFilter()
}

// Roots 匹配位于根目录的资源 (parent/folder 为空)
type Roots struct{}

// ChildrenOf 匹配直接位于 ParentID 下的资源
type ChildrenOf struct {
	ParentID uint64
}

// Opened 匹配打开过的文件 (last_opened_at 非空)
type Opened struct{}

// OwnedBy 在 Inner 的基础上限定所有者
type OwnedBy struct {
	OwnerID uint64
	Inner   Filter
}

func (Roots) isFilter() {}
func (ChildrenOf) isFilter() {}
func (Opened) isFilter() {}
func (OwnedBy) isFilter() {}

// DefaultRecentLimit 最近打开列表的默认条数
const DefaultRecentLimit = 8

// BuildFilter 根据调用方身份和可选的父目录构造列表谓词。
// 管理员不受所有者限制，普通用户额外限定为自己拥有的资源。
func BuildFilter(id Identity, parentID *uint64) Filter {
	var f Filter = Roots{}
	if parentID != nil {
		f = ChildrenOf{ParentID: *parentID}
	}
	return scope(id, f)
}

// BuildRecentFilter 构造最近打开文件的谓词，与 BuildFilter 使用相同的所有者限定
func BuildRecentFilter(id Identity) Filter {
	return scope(id, Opened{})
}

func scope(id Identity, f Filter) Filter {
	if id.IsAdmin() {
		return f
	}
	return OwnedBy{OwnerID: id.UserID, Inner: f}
}

// Resource 是可以被 Filter 匹配的资源
type Resource interface {
	OwnerRef() *uint64
	ParentRef() *uint64
}

// Openable 是带有打开时间的资源
type Openable interface {
	OpenedAt() *time.Time
}

// Matches 在内存中对单个资源求值 Filter，语义与仓储层的 SQL 翻译一致
func Matches(f Filter, r Resource) bool {
	switch v := f.(type) {
	case Roots:
		return r.ParentRef() == nil
	case ChildrenOf:
		p := r.ParentRef()
		return p != nil && *p == v.ParentID
	case Opened:
		o, ok := r.(Openable)
		return ok && o.OpenedAt() != nil
	case OwnedBy:
		owner := r.OwnerRef()
		return owner != nil && *owner == v.OwnerID && Matches(v.Inner, r)
	default:
		return false
	}
}
