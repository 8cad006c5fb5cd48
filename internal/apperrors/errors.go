package apperrors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// 领域错误类型 - 可由调用方恢复的客户端输入/状态错误。
// 传输层将路径资源的 not-found 错误映射为 404，请求体引用的
// 标签缺失映射为 400，冲突类错误映射为 409，其余按未恢复故障处理。

// AccountNotFoundError 账户不存在
type AccountNotFoundError struct {
	AccountID uint
}

func (e *AccountNotFoundError) Error() string {
	return fmt.Sprintf("account %d not found", e.AccountID)
}

// ImageNotFoundError 指定账户下图片不存在 - 同时携带两个 ID 便于诊断
type ImageNotFoundError struct {
	ImageID   uint
	AccountID uint
}

func (e *ImageNotFoundError) Error() string {
	return fmt.Sprintf("image %d not found for account %d", e.ImageID, e.AccountID)
}

// TagNotFoundError 标签引用校验失败 - 携带完整的缺失 ID 集合
type TagNotFoundError struct {
	MissingIDs []uint
}

func (e *TagNotFoundError) Error() string {
	parts := make([]string, len(e.MissingIDs))
	for i, id := range e.MissingIDs {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return "tags not found: " + strings.Join(parts, ", ")
}

// NewTagNotFoundError 构造标签缺失错误，ID 排序保证输出稳定
func NewTagNotFoundError(missing []uint) *TagNotFoundError {
	ids := append([]uint{}, missing...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return &TagNotFoundError{MissingIDs: ids}
}

// AccountAlreadyExistsError 登录名已被占用
type AccountAlreadyExistsError struct {
	Username string
}

func (e *AccountAlreadyExistsError) Error() string {
	return fmt.Sprintf("account with username %q already exists", e.Username)
}

// RoleNotFoundError 角色不存在 - 属于部署/初始化故障而非客户端错误
type RoleNotFoundError struct {
	Name string
}

func (e *RoleNotFoundError) Error() string {
	return fmt.Sprintf("role %q not found", e.Name)
}

// IsNotFound 判断是否为 not-found 类领域错误
func IsNotFound(err error) bool {
	var accErr *AccountNotFoundError
	var imgErr *ImageNotFoundError
	var tagErr *TagNotFoundError
	return errors.As(err, &accErr) || errors.As(err, &imgErr) || errors.As(err, &tagErr)
}

// IsTagNotFound 判断是否为标签引用校验错误
// 标签 ID 来自请求体而非路径，传输层对其用 400 而不是 404
func IsTagNotFound(err error) bool {
	var tagErr *TagNotFoundError
	return errors.As(err, &tagErr)
}

// IsConflict 判断是否为冲突类领域错误
func IsConflict(err error) bool {
	var existsErr *AccountAlreadyExistsError
	return errors.As(err, &existsErr)
}
