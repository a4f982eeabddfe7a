package crawlers

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// 文件系统保留字符统一替换为下划线
var segmentReplacer = strings.NewReplacer(
	`\`, "_",
	"/", "_",
	"*", "_",
	"?", "_",
	":", "_",
	`"`, "_",
	"<", "_",
	">", "_",
	"|", "_",
)

const indexFileName = "index.html"

// SanitizeSegment 清理单个路径段
// 保留字符替换为下划线; "." 与 ".." 整段替换,防止逃逸出输出根目录
func SanitizeSegment(segment string) string {
	cleaned := segmentReplacer.Replace(segment)
	switch cleaned {
	case ".":
		return "_"
	case "..":
		return "__"
	}
	return cleaned
}

// LocalPath 计算URL路径对应的相对文件路径(以 / 分隔)
// 规则:
//   - 空路径或以 / 结尾 → 追加 index.html
//   - 最后一段没有扩展名 → 视为目录,追加 /index.html
//   - 空段被丢弃,每段经过SanitizeSegment
//
// 查询串与片段不参与映射
func LocalPath(u *url.URL) string {
	p := u.Path
	if p == "" {
		p = "/"
	}

	raw := strings.Split(p, "/")
	segments := make([]string, 0, len(raw)+1)
	for _, seg := range raw {
		if seg == "" {
			continue
		}
		segments = append(segments, SanitizeSegment(seg))
	}

	switch {
	case len(segments) == 0, strings.HasSuffix(p, "/"):
		segments = append(segments, indexFileName)
	case path.Ext(segments[len(segments)-1]) == "":
		segments = append(segments, indexFileName)
	}

	return strings.Join(segments, "/")
}

// MapURLToPath 将绝对URL映射为输出根目录下的本地文件路径
// 结果总是位于root之内,同一URL总是映射到同一路径
func MapURLToPath(rawURL, root string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("解析URL失败 [%s]: %w", rawURL, err)
	}
	return filepath.Join(root, filepath.FromSlash(LocalPath(u))), nil
}

// RelativeLink 计算从页面文件指向目标文件的相对链接(始终使用 / 分隔)
func RelativeLink(fromFile, toFile string) (string, error) {
	rel, err := filepath.Rel(filepath.Dir(fromFile), toFile)
	if err != nil {
		return "", fmt.Errorf("计算相对路径失败: %w", err)
	}
	return filepath.ToSlash(rel), nil
}

// EscapeLink 把相对文件路径转换为可放入HTML属性的URL引用
// 本地文件名来自解码后的URL路径,可能包含 # % ? 空格 等字符,需逐段转义; . 与 .. 保持不变
func EscapeLink(rel string) string {
	segments := strings.Split(rel, "/")
	for i, seg := range segments {
		if seg == "." || seg == ".." {
			continue
		}
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}

// HostDir 种子URL的主机名作为目录名(端口中的冒号被替换)
func HostDir(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("解析URL失败 [%s]: %w", rawURL, err)
	}
	return SanitizeSegment(strings.ToLower(u.Host)), nil
}
