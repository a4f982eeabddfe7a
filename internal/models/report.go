package models

import (
	"encoding/json"
	"time"
)

// MirrorReport 镜像报告
type MirrorReport struct {
	// 任务信息
	RunID   string `json:"run_id"`
	SeedURL string `json:"seed_url"`
	Domain  string `json:"domain"`

	// 时间信息
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Duration  float64   `json:"duration"` // 秒

	// 统计信息
	Stats TaskStats `json:"stats"`

	// 访问过的URL(页面与资源)
	VisitedURLs []string `json:"visited_urls"`

	// 失败或跳过的下载
	FailedDownloads []FailedDownload `json:"failed_downloads"`

	// 输出路径
	OutputDir string `json:"output_dir"`

	// 配置快照
	Config MirrorConfig `json:"config"`
}

// FailedDownload 未能保存的资源
type FailedDownload struct {
	URL         string         `json:"url"`
	Destination string         `json:"destination"`
	Referer     string         `json:"referer,omitempty"`
	Status      DownloadStatus `json:"status"`
	ErrorType   string         `json:"error_type"` // http_error, network_error, oversize, disk_full, unknown
	ErrorMsg    string         `json:"error_msg"`
	Attempts    int            `json:"attempts"`
}

// NewMirrorReport 创建镜像报告并分配运行ID
func NewMirrorReport(seedURL, domain, outputDir string, config MirrorConfig) *MirrorReport {
	return &MirrorReport{
		RunID:           generateID(),
		SeedURL:         seedURL,
		Domain:          domain,
		StartTime:       time.Now(),
		OutputDir:       outputDir,
		Config:          config,
		VisitedURLs:     []string{},
		FailedDownloads: []FailedDownload{},
	}
}

// Finish 记录结束时间与统计
func (r *MirrorReport) Finish(stats TaskStats) {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime).Seconds()
	stats.Duration = r.Duration
	r.Stats = stats
}

// AddResult 记录一个非成功的下载结果
func (r *MirrorReport) AddResult(result DownloadResult) {
	if result.Status == DownloadSaved {
		return
	}
	r.FailedDownloads = append(r.FailedDownloads, FailedDownload{
		URL:         result.Task.URL,
		Destination: result.Task.Destination,
		Referer:     result.Task.Referer,
		Status:      result.Status,
		ErrorType:   ClassifyError(result.Err),
		ErrorMsg:    result.ErrorMessage(),
		Attempts:    result.Attempts,
	})
}

// ToJSON 序列化为JSON
func (r *MirrorReport) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// FromJSON 从JSON反序列化
func (r *MirrorReport) FromJSON(data []byte) error {
	return json.Unmarshal(data, r)
}
