package authz

import "slices"

// 内置角色名称
const (
	RoleAdmin = "Admin"
	RoleUser  = "User"
)

// Identity 是经过认证的调用方，所有授权判断都以它为依据
type Identity struct {
	UserID   uint64
	Username string
	Roles    []string
}

// HasRole 判断调用方是否持有指定角色
func (i Identity) HasRole(role string) bool {
	return slices.Contains(i.Roles, role)
}

// IsAdmin 任何一个角色为 Admin 即拥有管理员权限
func (i Identity) IsAdmin() bool {
	return i.HasRole(RoleAdmin)
}

// CanAccess 管理员可访问任何资源，普通用户只能访问自己拥有的资源。
// 所有者为空的历史数据对非管理员不可访问。
func CanAccess(id Identity, ownerID *uint64) bool {
	if id.IsAdmin() {
		return true
	}
	return ownerID != nil && *ownerID == id.UserID
}
