package xerr

// 定义了统一的业务错误码
const (
	SuccessCode = 20000 // 通用成功码

	// --- 客户端请求错误系列 (400xx) ---
	InvalidParamsCode         = 40000 // 无效的请求参数
	ValidationFailedCode      = 40001 // 参数验证失败
	FileTooLargeCode          = 40003 // 文件过大
	FileNameInvalidCode       = 40004 // 文件名无效
	NoFilesProvidedCode       = 40005 // 未提供上传文件
	FolderNameRequiredCode    = 40006 // 文件夹名称为空
	CannotMoveIntoSubtreeCode = 40008 // 不能移动目录到其子目录下
	FolderOwnerMismatchCode   = 40009 // 目标目录与被移动目录属于不同用户
	FolderDepthExceededCode   = 40010 // 目录层级超过上限

	// --- 认证与授权错误系列 (401xx) ---
	UnauthorizedCode       = 40100 // 通用未授权
	TokenInvalidCode       = 40101 // Token 无效或过期
	InvalidCredentialsCode = 40102 // 用户名或密码错误
	UserInactiveCode       = 40103 // 账号已停用

	// --- 权限错误系列 (403xx) ---
	ForbiddenCode        = 40300 // 通用无权限
	PermissionDeniedCode = 40301 // 权限不足 (细分)
	AdminRequiredCode    = 40302 // 需要管理员角色

	// --- 资源未找到错误系列 (404xx) ---
	NotFoundCode          = 40400 // 通用资源未找到
	UserNotFoundCode      = 40401 // 用户不存在
	FileNotFoundCode      = 40402 // 文件不存在
	DirectoryNotFoundCode = 40403 // 目录不存在
	RoleNotFoundCode      = 40404 // 角色不存在

	// --- 业务逻辑冲突系列 (409xx) ---
	UserAlreadyExistsCode  = 40900 // 用户名已存在
	EmailAlreadyExistsCode = 40901 // 邮箱已存在
	DirNotEmptyCode        = 40902 // 目录不为空，无法删除

	// --- 限流 (429xx) ---
	TooManyRequestsCode = 42900 // 请求过于频繁

	// --- 服务器内部错误系列 (500xx) ---
	InternalServerErrorCode = 50000 // 服务器内部通用错误
	DatabaseErrorCode       = 50001 // 数据库操作失败
	StorageErrorCode        = 50002 // 存储服务操作失败（如MinIO）
	FolderCycleCode         = 50003 // 目录树中检测到环
)
