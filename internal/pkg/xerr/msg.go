package xerr

import "errors"

var (
	// 通用错误
	ErrInternalServer = errors.New("服务器内部错误")

	// 客户端请求错误
	ErrInvalidParams         = errors.New("无效的请求参数")
	ErrValidationFailed      = errors.New("参数验证失败")
	ErrFileTooLarge          = errors.New("上传文件过大，超出限制")
	ErrFileNameInvalid       = errors.New("文件名包含非法字符")
	ErrNoFilesProvided       = errors.New("未提供任何上传文件")
	ErrFolderNameRequired    = errors.New("文件夹名称不能为空")
	ErrCannotMoveIntoSubtree = errors.New("不能移动目录到其自身或子目录下")
	ErrFolderOwnerMismatch   = errors.New("目标目录与当前目录不属于同一用户")
	ErrFolderDepthExceeded   = errors.New("目录层级超过上限")

	// 认证与授权错误
	ErrUnauthorized       = errors.New("用户未授权")
	ErrTokenInvalid       = errors.New("认证 Token 无效或已过期")
	ErrInvalidCredentials = errors.New("用户名或密码不正确")
	ErrUserInactive       = errors.New("账号已停用")

	// 权限错误
	ErrForbidden        = errors.New("禁止访问")
	ErrPermissionDenied = errors.New("您没有操作此资源的权限")
	ErrAdminRequired    = errors.New("该操作需要管理员权限")

	// 资源未找到错误
	ErrUserNotFound      = errors.New("用户不存在")
	ErrFileNotFound      = errors.New("文件不存在")
	ErrDirectoryNotFound = errors.New("目录不存在")
	ErrRoleNotFound      = errors.New("角色不存在")

	// 业务逻辑冲突
	ErrUserAlreadyExists  = errors.New("该用户名已被注册")
	ErrEmailAlreadyExists = errors.New("邮箱已被注册")
	ErrDirNotEmpty        = errors.New("目录不为空，无法删除")

	ErrTooManyRequests = errors.New("请求过于频繁，请稍后再试")

	// 数据库与外部服务错误
	ErrDatabaseError = errors.New("数据库操作失败")
	ErrStorageError  = errors.New("存储服务操作失败")
	ErrFolderCycle   = errors.New("目录结构异常")
)
