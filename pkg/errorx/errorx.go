package errorx

import (
	"errors"
	"fmt"
	"net/http"
)

// CodeError 带业务错误码的自定义错误
// 实现了 error 接口，支持包装底层错误，能被 errors.Is/errors.As 识别
type CodeError struct {
	Code  int    // 业务错误码
	Msg   string // 错误消息，直接返回给客户端
	cause error  // 被包装的底层错误
}

// Error 当存在底层错误时返回 "消息: 底层错误"，否则仅返回消息
func (e *CodeError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.cause)
	}
	return e.Msg
}

// Unwrap 支持 errors.Is/errors.As 向下追溯
func (e *CodeError) Unwrap() error {
	return e.cause
}

// Cause 返回被包装的底层错误（可能为 nil）
func (e *CodeError) Cause() error {
	return e.cause
}

// New 创建一个新的 CodeError
func New(code int, msg string) *CodeError {
	return &CodeError{
		Code: code,
		Msg:  msg,
	}
}

// Newf 创建一个带格式化消息的 CodeError
func Newf(code int, format string, args ...any) *CodeError {
	return &CodeError{
		Code: code,
		Msg:  fmt.Sprintf(format, args...),
	}
}

// Wrap 包装底层错误，添加业务错误码和消息
// 用法: errorx.Wrap(err, CodeNotFound, "Family not found")
func Wrap(err error, code int, msg string) *CodeError {
	return &CodeError{
		Code:  code,
		Msg:   msg,
		cause: err,
	}
}

// Wrapf 包装底层错误，支持格式化消息
func Wrapf(err error, code int, format string, args ...any) *CodeError {
	return &CodeError{
		Code:  code,
		Msg:   fmt.Sprintf(format, args...),
		cause: err,
	}
}

// GetCode 从错误中提取业务错误码，如果不是 CodeError 则返回 CodeServerBusy
func GetCode(err error) int {
	var codeErr *CodeError
	if errors.As(err, &codeErr) {
		return codeErr.Code
	}
	return CodeServerBusy
}

// 业务状态码常量定义
const (
	CodeSuccess       = 1000 // 成功
	CodeInvalidParam  = 1001 // 请求参数错误 / 业务校验失败
	CodeServerBusy    = 1005 // 服务繁忙
	CodeUnauthorized  = 1006 // 未认证
	CodeForbidden     = 1007 // 无权限
	CodeNotFound      = 1008 // 资源不存在
	CodeDBError       = 1010 // 数据库错误
	CodeCacheError    = 1011 // 缓存错误
	CodeStorageError  = 1012 // 对象存储错误
	CodeExternalError = 1013 // 外部服务错误（邮件、消息队列）
)

// 预定义常用错误实例
var (
	ErrInvalidParam = New(CodeInvalidParam, "Invalid request parameters")
	ErrServerBusy   = New(CodeServerBusy, "Server error")
	ErrUnauthorized = New(CodeUnauthorized, "Not authorized")
)

// HTTPStatus 将业务错误码映射为 HTTP 状态码
func HTTPStatus(code int) int {
	switch code {
	case CodeSuccess:
		return http.StatusOK
	case CodeInvalidParam:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// IsNotFound 检查错误是否为"未找到"类型
func IsNotFound(err error) bool {
	var codeErr *CodeError
	return errors.As(err, &codeErr) && codeErr.Code == CodeNotFound
}

// BadRequest / Forbidden / NotFound 是 service 层最常用的三类错误的快捷构造
func BadRequest(msg string) *CodeError { return New(CodeInvalidParam, msg) }

func Forbidden(msg string) *CodeError { return New(CodeForbidden, msg) }

func NotFound(msg string) *CodeError { return New(CodeNotFound, msg) }
