package utils

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"unicode"

	"github.com/RecoveryAshes/sitemirror/internal/models"
	"golang.org/x/net/http/httpguts"
)

// MaxHeaderValueLength 单个头部值上限 (8KB)
const MaxHeaderValueLength = 8192

// managedHeaders 不允许用户配置的头部及原因
// 前四个由HTTP客户端管理,其余会让服务器返回部分内容或空响应,镜像文件将不完整
var managedHeaders = map[string]string{
	"Host":              "由请求URL决定",
	"Content-Length":    "由HTTP客户端计算",
	"Transfer-Encoding": "由HTTP客户端管理",
	"Connection":        "由连接池管理",
	"Range":             "分段请求只会保存文件的一部分",
	"If-Range":          "分段请求只会保存文件的一部分",
	"If-Modified-Since": "304响应没有内容,资源无法保存",
	"If-None-Match":     "304响应没有内容,资源无法保存",
}

// HeaderValidator 校验注入到页面与资源请求中的头部
type HeaderValidator struct {
	maxValueLength int
}

// NewHeaderValidator 创建验证器
func NewHeaderValidator() *HeaderValidator {
	return &HeaderValidator{maxValueLength: MaxHeaderValueLength}
}

// IsForbidden 头部是否由客户端或镜像流程自行管理 (不区分大小写)
func (hv *HeaderValidator) IsForbidden(name string) bool {
	_, ok := managedHeaders[http.CanonicalHeaderKey(name)]
	return ok
}

// ValidateName 头部名称必须是RFC 7230 token
// 下划线虽然合法,但nginx等服务器默认丢弃带下划线的头部,这里直接拒绝
func (hv *HeaderValidator) ValidateName(name string) error {
	switch {
	case name == "":
		return &models.ValidationError{Field: "name", HeaderName: name, Reason: "头部名称不能为空"}
	case !httpguts.ValidHeaderFieldName(name):
		return &models.ValidationError{
			Field:      "name",
			HeaderName: name,
			Reason:     "头部名称不是合法的token",
			Suggestion: "只使用字母、数字和连字符,如 'X-Custom-Header'",
		}
	case strings.Contains(name, "_"):
		return &models.ValidationError{
			Field:      "name",
			HeaderName: name,
			Reason:     "头部名称包含下划线,多数服务器会忽略此头部",
			Suggestion: fmt.Sprintf("改用 '%s'", strings.ReplaceAll(name, "_", "-")),
		}
	}
	return nil
}

// ValidateValue 头部值: 长度上限,无控制字符,只允许ASCII
func (hv *HeaderValidator) ValidateValue(name, value string) error {
	if len(value) > hv.maxValueLength {
		return &models.ValidationError{
			Field:      "value",
			HeaderName: name,
			Reason:     fmt.Sprintf("头部值过长: %d 字节 (最大 %d)", len(value), hv.maxValueLength),
		}
	}
	if !httpguts.ValidHeaderFieldValue(value) || strings.IndexFunc(value, isNonASCII) >= 0 {
		return &models.ValidationError{
			Field:      "value",
			HeaderName: name,
			Reason:     "头部值包含控制字符或非ASCII字符",
			Suggestion: "非ASCII内容请先做URL编码",
		}
	}
	return nil
}

func isNonASCII(r rune) bool {
	return r > unicode.MaxASCII
}

// ValidateCookie 校验单个Cookie (RFC 6265)
// 名称为token; 值只能包含cookie-octet,可以整体包在双引号中
func (hv *HeaderValidator) ValidateCookie(name, value string) error {
	if name == "" || !httpguts.ValidHeaderFieldName(name) {
		return &models.ValidationError{
			Field:      "cookie",
			HeaderName: "Cookie",
			Reason:     fmt.Sprintf("Cookie名称非法: %q", name),
		}
	}

	if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
		value = value[1 : len(value)-1]
	}
	for i := 0; i < len(value); i++ {
		if !isCookieOctet(value[i]) {
			return &models.ValidationError{
				Field:      "cookie",
				HeaderName: "Cookie",
				Reason:     fmt.Sprintf("Cookie %s 的值包含非法字符 %q", name, value[i]),
				Suggestion: "空格、逗号、分号、引号和反斜杠需要先做URL编码",
			}
		}
	}
	return nil
}

// isCookieOctet %x21 / %x23-2B / %x2D-3A / %x3C-5B / %x5D-7E
func isCookieOctet(b byte) bool {
	switch {
	case b == 0x21,
		b >= 0x23 && b <= 0x2B,
		b >= 0x2D && b <= 0x3A,
		b >= 0x3C && b <= 0x5B,
		b >= 0x5D && b <= 0x7E:
		return true
	}
	return false
}

// validateCookieHeader 逐个校验 "k1=v1; k2=v2"
func (hv *HeaderValidator) validateCookieHeader(value string) error {
	for _, pair := range strings.Split(value, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, val, _ := strings.Cut(pair, "=")
		if err := hv.ValidateCookie(strings.TrimSpace(name), val); err != nil {
			return err
		}
	}
	return nil
}

// ValidateHeader 校验一个头部: 管理头部 → 名称 → 值 → 按头部的附加规则
func (hv *HeaderValidator) ValidateHeader(name, value string) error {
	if reason, ok := managedHeaders[http.CanonicalHeaderKey(name)]; ok {
		return &models.ValidationError{
			Field:      "name",
			HeaderName: name,
			Reason:     "不允许自定义此头部: " + reason,
			Suggestion: fmt.Sprintf("移除 '%s' 头部配置", name),
		}
	}
	if err := hv.ValidateName(name); err != nil {
		return err
	}
	if err := hv.ValidateValue(name, value); err != nil {
		return err
	}

	switch http.CanonicalHeaderKey(name) {
	case "Cookie":
		return hv.validateCookieHeader(value)
	case "User-Agent":
		if strings.TrimSpace(value) == "" {
			return &models.ValidationError{Field: "value", HeaderName: name, Reason: "User-Agent不能为空"}
		}
	}
	return nil
}

// Validate 按名称顺序校验全部头部,返回第一个错误
func (hv *HeaderValidator) Validate(headers http.Header) error {
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		for _, value := range headers[name] {
			if err := hv.ValidateHeader(name, value); err != nil {
				return err
			}
		}
	}
	return nil
}

// FilterUserAgents 清理User-Agent候选列表
// 去掉首尾空白与重复项,丢弃非法条目; 返回保留的条目与被丢弃的条目数
func (hv *HeaderValidator) FilterUserAgents(candidates []string) ([]string, int) {
	kept := make([]string, 0, len(candidates))
	seen := make(map[string]bool, len(candidates))
	dropped := 0
	for _, ua := range candidates {
		ua = strings.TrimSpace(ua)
		if seen[ua] {
			continue
		}
		if hv.ValidateHeader("User-Agent", ua) != nil {
			dropped++
			continue
		}
		seen[ua] = true
		kept = append(kept, ua)
	}
	return kept, dropped
}
