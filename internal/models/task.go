package models

import (
	"fmt"
	"time"
)

// PageState 页面处理状态
// 状态流转: pending → fetching → (aborted | parsing) → extracting → dispatching → rewriting → saved
type PageState string

const (
	PageStatePending     PageState = "pending"     // 待处理
	PageStateFetching    PageState = "fetching"    // 获取中
	PageStateAborted     PageState = "aborted"     // 获取失败(终态)
	PageStateParsing     PageState = "parsing"     // 解析中
	PageStateExtracting  PageState = "extracting"  // 提取引用
	PageStateDispatching PageState = "dispatching" // 分发资源与链接
	PageStateRewriting   PageState = "rewriting"   // 改写并保存
	PageStateSaved       PageState = "saved"       // 已保存(终态)
)

// TaskStats 镜像任务统计
type TaskStats struct {
	PagesVisited     int     `json:"pages_visited"`     // 已访问页面数
	PagesSaved       int     `json:"pages_saved"`       // 已保存页面数
	PagesFailed      int     `json:"pages_failed"`      // 获取失败页面数
	PagesSkipped     int     `json:"pages_skipped"`     // 超过大小上限而跳过的页面数
	ResourcesQueued  int     `json:"resources_queued"`  // 入队资源数
	ResourcesSaved   int     `json:"resources_saved"`   // 保存成功资源数
	ResourcesSkipped int     `json:"resources_skipped"` // 跳过资源数(超限/磁盘不足)
	ResourcesFailed  int     `json:"resources_failed"`  // 下载失败资源数
	PathCollisions   int     `json:"path_collisions"`   // 路径冲突数
	TotalSize        int64   `json:"total_size"`        // 资源总大小(字节)
	Duration         float64 `json:"duration"`          // 总耗时(秒)
}

// MirrorConfig 镜像配置
type MirrorConfig struct {
	OutputDir        string        `mapstructure:"dir" json:"dir"`                               // 输出根目录 (默认:downloaded_site)
	Depth            int           `mapstructure:"depth" json:"depth"`                           // 最大递归深度 (默认:1)
	Delay            float64       `mapstructure:"delay" json:"delay"`                           // 页面间延迟(秒) (默认:1.0)
	Threads          int           `mapstructure:"threads" json:"threads"`                       // 下载线程数 (默认:5)
	MaxSizeMB        int           `mapstructure:"max_size" json:"max_size"`                     // 单文件最大大小(MB) (默认:50)
	IncludeTypes     []string      `mapstructure:"include_types" json:"include_types"`           // 扩展名白名单
	Retry            int           `mapstructure:"retry" json:"retry"`                           // 失败重试次数 (默认:3)
	RetryBackoff     time.Duration `mapstructure:"retry_backoff" json:"retry_backoff"`           // 首次重试退避时间
	FollowRedirects  bool          `mapstructure:"follow_redirects" json:"follow_redirects"`     // 是否递归跟随页面链接
	AllowCrossDomain bool          `mapstructure:"allow_cross_domain" json:"allow_cross_domain"` // 是否跟随跨域链接
	RateLimit        float64       `mapstructure:"rate" json:"rate"`                             // 每秒下载请求数,0为不限
	DiskReserveMB    int           `mapstructure:"disk_reserve" json:"disk_reserve"`             // 磁盘保留空间(MB)
	NoProgress       bool          `mapstructure:"no_progress" json:"no_progress"`               // 关闭进度条
}

// Validate 验证配置
func (c *MirrorConfig) Validate() error {
	if c.OutputDir == "" {
		return fmt.Errorf("输出目录不能为空")
	}
	if c.Depth < 0 || c.Depth > 50 {
		return fmt.Errorf("深度必须在0-50之间")
	}
	if c.Delay < 0 {
		return fmt.Errorf("延迟不能为负数")
	}
	if c.Threads < 1 || c.Threads > 100 {
		return fmt.Errorf("线程数必须在1-100之间")
	}
	if c.MaxSizeMB < 1 {
		return fmt.Errorf("最大文件大小必须大于0")
	}
	if c.Retry < 0 || c.Retry > 10 {
		return fmt.Errorf("重试次数必须在0-10之间")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("下载速率不能为负数")
	}
	return nil
}

// DelayDuration 页面间延迟
func (c *MirrorConfig) DelayDuration() time.Duration {
	return time.Duration(c.Delay * float64(time.Second))
}

// MaxSizeBytes 单文件大小上限(字节)
func (c *MirrorConfig) MaxSizeBytes() int64 {
	return int64(c.MaxSizeMB) * 1024 * 1024
}

// HTTPConfig HTTP传输配置
type HTTPConfig struct {
	Timeout            int    `mapstructure:"timeout" json:"timeout"`                           // 请求超时(秒) (默认:10)
	InsecureSkipVerify bool   `mapstructure:"insecure_skip_verify" json:"insecure_skip_verify"` // 跳过证书验证
	Proxy              string `mapstructure:"proxy" json:"proxy,omitempty"`                     // 代理地址
	UserAgent          string `mapstructure:"user_agent" json:"user_agent,omitempty"`           // 自定义User-Agent
	RandomUserAgent    bool   `mapstructure:"random_user_agent" json:"random_user_agent"`       // 每次请求随机User-Agent
	UserAgentFile      string `mapstructure:"user_agent_file" json:"user_agent_file,omitempty"` // User-Agent列表文件
	Cookies            string `mapstructure:"cookies" json:"-"`                                 // JSON格式Cookie
	HeadersFile        string `mapstructure:"headers_file" json:"headers_file,omitempty"`       // 头部配置文件
}

// TimeoutDuration 请求超时
func (c *HTTPConfig) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// Validate 验证配置
func (c *HTTPConfig) Validate() error {
	if c.Timeout < 1 || c.Timeout > 600 {
		return fmt.Errorf("超时时间必须在1-600秒之间")
	}
	return nil
}
