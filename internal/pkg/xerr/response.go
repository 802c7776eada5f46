package xerr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// CodeError 结构体用于在服务层传递带有业务码的错误
type CodeError struct {
	Code int   // 业务错误码
	Err  error // 被包裹的底层错误
}

func (e *CodeError) Error() string {
	return e.Err.Error()
}

func (e *CodeError) Unwrap() error {
	return e.Err
}

// NewCodeError 创建一个 CodeError 实例
func NewCodeError(code int, err error) *CodeError {
	return &CodeError{Code: code, Err: err}
}

// Is 判断错误是否为指定的错误类型
func Is(err, target error) bool {
	return errors.Is(err, target)
}

type mapping struct {
	err    error
	status int
	code   int
}

// 错误到 HTTP 状态码与业务码的唯一映射表，按顺序匹配
var mappings = []mapping{
	{ErrInvalidParams, http.StatusBadRequest, InvalidParamsCode},
	{ErrValidationFailed, http.StatusBadRequest, ValidationFailedCode},
	{ErrFileNameInvalid, http.StatusBadRequest, FileNameInvalidCode},
	{ErrNoFilesProvided, http.StatusBadRequest, NoFilesProvidedCode},
	{ErrFolderNameRequired, http.StatusBadRequest, FolderNameRequiredCode},
	{ErrCannotMoveIntoSubtree, http.StatusBadRequest, CannotMoveIntoSubtreeCode},
	{ErrFolderOwnerMismatch, http.StatusBadRequest, FolderOwnerMismatchCode},
	{ErrFolderDepthExceeded, http.StatusBadRequest, FolderDepthExceededCode},
	{ErrDirNotEmpty, http.StatusBadRequest, DirNotEmptyCode},
	{ErrFileTooLarge, http.StatusRequestEntityTooLarge, FileTooLargeCode},

	{ErrUnauthorized, http.StatusUnauthorized, UnauthorizedCode},
	{ErrTokenInvalid, http.StatusUnauthorized, TokenInvalidCode},
	{ErrInvalidCredentials, http.StatusUnauthorized, InvalidCredentialsCode},
	{ErrUserInactive, http.StatusUnauthorized, UserInactiveCode},

	{ErrForbidden, http.StatusForbidden, ForbiddenCode},
	{ErrPermissionDenied, http.StatusForbidden, PermissionDeniedCode},
	{ErrAdminRequired, http.StatusForbidden, AdminRequiredCode},

	{ErrUserNotFound, http.StatusNotFound, UserNotFoundCode},
	{ErrFileNotFound, http.StatusNotFound, FileNotFoundCode},
	{ErrDirectoryNotFound, http.StatusNotFound, DirectoryNotFoundCode},
	{ErrRoleNotFound, http.StatusNotFound, RoleNotFoundCode},

	{ErrUserAlreadyExists, http.StatusConflict, UserAlreadyExistsCode},
	{ErrEmailAlreadyExists, http.StatusConflict, EmailAlreadyExistsCode},

	{ErrTooManyRequests, http.StatusTooManyRequests, TooManyRequestsCode},

	{ErrDatabaseError, http.StatusInternalServerError, DatabaseErrorCode},
	{ErrStorageError, http.StatusInternalServerError, StorageErrorCode},
	{ErrFolderCycle, http.StatusInternalServerError, FolderCycleCode},
}

// Status 把服务层错误翻译成 HTTP 状态码、业务码和对外消息。
// 对外消息只使用哨兵错误自身的文本，不会带出被包裹的内部错误信息。
func Status(err error) (int, int, string) {
	for _, m := range mappings {
		if errors.Is(err, m.err) {
			code := m.code
			var ce *CodeError
			if errors.As(err, &ce) {
				code = ce.Code
			}
			return m.status, code, m.err.Error()
		}
	}
	return http.StatusInternalServerError, InternalServerErrorCode, ErrInternalServer.Error()
}

// Response 是通用 JSON 响应结构
type Response struct {
	Code    int    `json:"code"`    // 业务状态码
	Message string `json:"message"` // 消息
	Data    any    `json:"data"`    // 响应数据
}

// JSONResponse 发送标准 JSON 响应
func JSONResponse(c *gin.Context, httpStatus int, code int, message string, data any) {
	c.JSON(httpStatus, Response{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// Success 成功响应
func Success(c *gin.Context, httpStatus int, message string, data any) {
	JSONResponse(c, httpStatus, SuccessCode, message, data)
}

// Error 错误响应
func Error(c *gin.Context, httpStatus int, code int, message string) {
	JSONResponse(c, httpStatus, code, message, nil)
}

// AbortWithError 终止请求并发送错误响应
func AbortWithError(c *gin.Context, httpStatus int, code int, message string) {
	Error(c, httpStatus, code, message)
	c.Abort()
}

// AbortWithErr 按映射表翻译 err 后终止请求
func AbortWithErr(c *gin.Context, err error) {
	status, code, msg := Status(err)
	AbortWithError(c, status, code, msg)
}
