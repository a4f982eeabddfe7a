package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// HeaderConfig 表示headers.yaml配置文件的结构
type HeaderConfig struct {
	// Headers 自定义HTTP头部 (键: 头部名称, 值: 头部值)
	Headers map[string]string `mapstructure:"headers" yaml:"headers"`

	// Cookies "name=value" 列表,按文件顺序合成Cookie头部
	Cookies []string `mapstructure:"cookies" yaml:"cookies"`

	// UserAgents 随机User-Agent候选
	UserAgents []string `mapstructure:"user_agents" yaml:"user_agents"`
}

// CookieHeader 把Cookies合成为 "k1=v1; k2=v2"
func (c *HeaderConfig) CookieHeader() string {
	pairs := make([]string, 0, len(c.Cookies))
	for _, entry := range c.Cookies {
		name, value, _ := strings.Cut(entry, "=")
		pairs = append(pairs, strings.TrimSpace(name)+"="+strings.TrimSpace(value))
	}
	return strings.Join(pairs, "; ")
}

// CliHeaders 表示命令行传递的头部列表
// 每个字符串格式为 "Name: Value"
type CliHeaders []string

// Parse 将字符串列表解析为 http.Header
func (ch CliHeaders) Parse() (http.Header, error) {
	result := make(http.Header)
	for i, s := range ch {
		name, value, err := parseHeaderString(s)
		if err != nil {
			return nil, fmt.Errorf("参数 --header 第%d项格式错误: %w", i+1, err)
		}
		result.Set(name, value)
	}
	return result, nil
}

// parseHeaderString 解析单个头部字符串 "Name: Value"
func parseHeaderString(s string) (name, value string, err error) {
	name, value, ok := strings.Cut(s, ":")
	if !ok {
		return "", "", fmt.Errorf("缺少冒号分隔符,应为 'Name: Value'")
	}

	name = strings.TrimSpace(name)
	value = strings.TrimSpace(value)
	if name == "" {
		return "", "", fmt.Errorf("头部名称不能为空")
	}

	return name, value, nil
}

// CookieJSON 命令行传入的JSON对象形式的Cookie,如 {"session": "abcd1234"}
type CookieJSON string

// Header 编码为Cookie头部值 "k1=v1; k2=v2" (按键排序)
// JSON格式错误时返回ConfigError
func (c CookieJSON) Header() (string, error) {
	raw := strings.TrimSpace(string(c))
	if raw == "" {
		return "", nil
	}

	decoder := json.NewDecoder(bytes.NewReader([]byte(raw)))
	decoder.UseNumber()

	var cookies map[string]interface{}
	if err := decoder.Decode(&cookies); err != nil {
		return "", &ConfigError{FilePath: "--cookies", Cause: fmt.Errorf("Cookie不是合法的JSON对象: %w", err)}
	}

	names := make([]string, 0, len(cookies))
	for name := range cookies {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, 0, len(names))
	for _, name := range names {
		var value string
		switch v := cookies[name].(type) {
		case string:
			value = v
		case nil:
			value = ""
		default:
			value = fmt.Sprint(v)
		}
		pairs = append(pairs, name+"="+value)
	}
	return strings.Join(pairs, "; "), nil
}

// HeaderProvider 定义HTTP头部提供者接口
// 页面获取器和下载worker在每次请求前调用,实现必须并发安全
type HeaderProvider interface {
	// GetHeaders 返回当前有效的HTTP请求头部
	// 返回的http.Header已按优先级合并(默认 < 配置文件 < 命令行)
	GetHeaders() (http.Header, error)
}

// ValidationError 头部验证错误
type ValidationError struct {
	// Field 出错的字段 ("name" 或 "value")
	Field string

	// HeaderName 头部名称
	HeaderName string

	// Reason 错误原因
	Reason string

	// Suggestion 修复建议 (可选)
	Suggestion string
}

// Error 实现error接口
func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("头部验证失败 [%s]: %s", e.HeaderName, e.Reason)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (建议: %s)", e.Suggestion)
	}
	return msg
}
