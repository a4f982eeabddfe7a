package crawlers

import (
	"net/url"
	"path"
	"strings"

	"github.com/RecoveryAshes/sitemirror/internal/models"
)

// Kind 引用分类结果
type Kind int

const (
	KindIgnore   Kind = iota // 不处理
	KindResource             // 可下载资源
	KindLink                 // 可跟随的页面链接
)

// String 返回分类名称(用于日志)
func (k Kind) String() string {
	switch k {
	case KindResource:
		return "resource"
	case KindLink:
		return "link"
	default:
		return "ignore"
	}
}

// Classifier 资源分类器
// 根据扩展名与可选的扩展名白名单,决定一个引用是资源、链接还是忽略
type Classifier struct {
	includeTypes map[string]bool
}

// NewClassifier 创建分类器,includeTypes为空表示不限制
func NewClassifier(includeTypes []string) *Classifier {
	normalized := NormalizeIncludeTypes(includeTypes)
	if len(normalized) == 0 {
		return &Classifier{}
	}

	set := make(map[string]bool, len(normalized))
	for _, ext := range normalized {
		set[ext] = true
	}
	return &Classifier{includeTypes: set}
}

// NormalizeIncludeTypes 规范化扩展名白名单
// 去空白、转小写、保证恰好一个前导点: "jpg", ".jpg", " .JPG " 都变为 ".jpg"
// 支持单个元素内逗号分隔
func NormalizeIncludeTypes(types []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(types))
	for _, item := range types {
		for _, ext := range strings.Split(item, ",") {
			ext = strings.ToLower(strings.TrimSpace(ext))
			ext = strings.TrimLeft(ext, ".")
			if ext == "" {
				continue
			}
			ext = "." + ext
			if seen[ext] {
				continue
			}
			seen[ext] = true
			result = append(result, ext)
		}
	}
	return result
}

// Classify 对一个已解析的引用分类
//   - rel 含 nofollow → 忽略
//   - 非 http/https → 忽略
//   - 配置了白名单且扩展名不在其中 → 忽略
//   - 扩展名属于资源类型 → 资源
//   - 来自 <a> 标签 → 链接
func (c *Classifier) Classify(tag, rel string, resolved *url.URL) Kind {
	if resolved == nil || hasNoFollow(rel) {
		return KindIgnore
	}
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return KindIgnore
	}

	ext := strings.ToLower(path.Ext(resolved.Path))
	if c.includeTypes != nil && !c.includeTypes[ext] {
		return KindIgnore
	}

	if models.IsResourceExtension(ext) {
		return KindResource
	}
	if strings.EqualFold(tag, "a") {
		return KindLink
	}
	return KindIgnore
}

// IncludeTypes 当前白名单(未配置时为nil)
func (c *Classifier) IncludeTypes() map[string]bool {
	return c.includeTypes
}

func hasNoFollow(rel string) bool {
	for _, token := range strings.Fields(strings.ToLower(rel)) {
		if token == "nofollow" {
			return true
		}
	}
	return false
}
