package models

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrInsufficientDisk 输出目录所在磁盘剩余空间不足
var ErrInsufficientDisk = errors.New("磁盘剩余空间不足")

// ErrPathCollision 不同URL映射到了已被占用的本地路径
var ErrPathCollision = errors.New("本地路径已被其他URL占用")

// FetchError 获取页面或资源时的网络/HTTP错误
// 非致命: 只终止当前这一个URL的处理
type FetchError struct {
	// URL 请求的URL
	URL string

	// StatusCode HTTP状态码 (0表示传输层错误)
	StatusCode int

	// Cause 底层错误
	Cause error
}

// Error 实现error接口
func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("获取失败 [%s]: HTTP %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("获取失败 [%s]: %v", e.URL, e.Cause)
}

// Unwrap 支持errors.Unwrap
func (e *FetchError) Unwrap() error {
	return e.Cause
}

// Retryable 是否值得重试: 传输层错误、429、5xx
func (e *FetchError) Retryable() bool {
	if e.StatusCode == 0 {
		return true
	}
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// OversizeError 声明的内容长度超过配置上限
type OversizeError struct {
	URL   string
	Size  int64
	Limit int64
}

// Error 实现error接口
func (e *OversizeError) Error() string {
	return fmt.Sprintf("文件过大 [%s]: %d 字节 (上限 %d 字节)", e.URL, e.Size, e.Limit)
}

// InvalidURLError 种子URL未通过协议/主机校验,启动阶段致命
type InvalidURLError struct {
	URL    string
	Reason string
}

// Error 实现error接口
func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("无效的URL [%s]: %s", e.URL, e.Reason)
}

// ConfigError 配置错误,启动阶段致命
// 例如配置文件解析失败、Cookie JSON格式错误
type ConfigError struct {
	// FilePath 配置文件路径或配置项名称
	FilePath string

	// Cause 底层错误 (如viper.ConfigParseError)
	Cause error
}

// Error 实现error接口
func (e *ConfigError) Error() string {
	return fmt.Sprintf("配置错误 [%s]: %v", e.FilePath, e.Cause)
}

// Unwrap 支持errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// IsRetryable 判断错误是否值得重试
func IsRetryable(err error) bool {
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.Retryable()
	}
	return false
}

// ClassifyError 返回报告中使用的错误类别
func ClassifyError(err error) string {
	var (
		fetchErr    *FetchError
		oversizeErr *OversizeError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInsufficientDisk):
		return "disk_full"
	case errors.Is(err, ErrPathCollision):
		return "path_collision"
	case errors.As(err, &oversizeErr):
		return "oversize"
	case errors.As(err, &fetchErr):
		if fetchErr.StatusCode != 0 {
			return "http_error"
		}
		return "network_error"
	default:
		return "unknown"
	}
}
