package models

import (
	"strings"
	"time"
)

// ResourceExtensions 视为可下载资源的扩展名
// 样式表、脚本、图片、字体、音视频、文档
var ResourceExtensions = []string{
	".css", ".js", ".png", ".jpg", ".jpeg", ".gif", ".svg", ".woff", ".woff2",
	".ttf", ".eot", ".otf", ".ico", ".mp4", ".webm", ".ogg", ".mp3", ".wav", ".pdf",
}

var resourceExtensionSet = func() map[string]bool {
	set := make(map[string]bool, len(ResourceExtensions))
	for _, ext := range ResourceExtensions {
		set[ext] = true
	}
	return set
}()

// IsResourceExtension 判断扩展名是否属于资源类型(不区分大小写)
func IsResourceExtension(ext string) bool {
	return resourceExtensionSet[strings.ToLower(ext)]
}

// DownloadStatus 下载任务终态
type DownloadStatus string

const (
	DownloadSaved   DownloadStatus = "saved"   // 已保存
	DownloadSkipped DownloadStatus = "skipped" // 已跳过(超限/磁盘不足)
	DownloadFailed  DownloadStatus = "failed"  // 失败(已记录日志)
)

// DownloadTask 一次资源下载任务
// 由遍历引擎创建并放入下载队列,由某个worker恰好消费一次
type DownloadTask struct {
	URL         string `json:"url"`         // 资源绝对URL
	Destination string `json:"destination"` // 本地目标路径
	Referer     string `json:"referer"`     // 引用该资源的页面
}

// DownloadResult 下载结果
type DownloadResult struct {
	Task     DownloadTask   `json:"task"`
	Status   DownloadStatus `json:"status"`
	Bytes    int64          `json:"bytes"`
	Attempts int            `json:"attempts"`
	Err      error          `json:"-"`
	Duration time.Duration  `json:"duration"`
}

// ErrorMessage 返回错误描述(无错误时为空)
func (r DownloadResult) ErrorMessage() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}
