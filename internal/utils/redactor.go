package utils

import (
	"net/http"
	"sort"
	"strings"
)

// sensitiveKeywords 头部名称包含这些关键字时脱敏
var sensitiveKeywords = []string{
	"authorization",
	"token",
	"key",
	"secret",
	"password",
	"credential",
	"cookie",
	"session",
}

const mask = "***"

// HeaderRedactor 日志与 --validate-config 输出前的头部脱敏
type HeaderRedactor struct {
	keywords []string
}

// NewHeaderRedactor 创建头部脱敏器
func NewHeaderRedactor() *HeaderRedactor {
	return &HeaderRedactor{keywords: sensitiveKeywords}
}

// IsSensitiveHeader 按名称关键字判断 (不区分大小写)
func (hr *HeaderRedactor) IsSensitiveHeader(name string) bool {
	lower := strings.ToLower(name)
	for _, keyword := range hr.keywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// RedactHeaderValue 脱敏单个头部值
//   - Cookie: 保留名称,隐藏每个值 ("session=***; lang=***")
//   - Authorization/Proxy-Authorization: 保留认证方案 ("Bearer ***")
//   - 其他敏感头部: 长值保留首尾各4位,短值完全隐藏
func (hr *HeaderRedactor) RedactHeaderValue(name, value string) string {
	if !hr.IsSensitiveHeader(name) {
		return value
	}

	switch http.CanonicalHeaderKey(name) {
	case "Cookie":
		return redactCookies(value)
	case "Authorization", "Proxy-Authorization":
		if scheme, _, ok := strings.Cut(value, " "); ok {
			return scheme + " " + mask
		}
		return mask
	}

	if len(value) > 8 {
		return value[:4] + mask + value[len(value)-4:]
	}
	return mask
}

func redactCookies(value string) string {
	pairs := strings.Split(value, ";")
	out := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		name, _, _ := strings.Cut(strings.TrimSpace(pair), "=")
		if name == "" {
			continue
		}
		out = append(out, name+"="+mask)
	}
	return strings.Join(out, "; ")
}

// Redact 返回脱敏后的头部 (多值以 ", " 连接)
func (hr *HeaderRedactor) Redact(headers http.Header) map[string]string {
	result := make(map[string]string, len(headers))
	for name, values := range headers {
		if len(values) == 0 {
			continue
		}
		redacted := make([]string, len(values))
		for i, v := range values {
			redacted[i] = hr.RedactHeaderValue(name, v)
		}
		result[name] = strings.Join(redacted, ", ")
	}
	return result
}

// RedactToString 单行形式 "A: 1, B: 2" (按名称排序),用于调试日志
func (hr *HeaderRedactor) RedactToString(headers http.Header) string {
	redacted := hr.Redact(headers)
	names := make([]string, 0, len(redacted))
	for name := range redacted {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+redacted[name])
	}
	return strings.Join(parts, ", ")
}
