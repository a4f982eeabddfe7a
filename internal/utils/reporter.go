package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/RecoveryAshes/sitemirror/internal/models"
	"github.com/schollz/progressbar/v3"
)

const (
	reportFileName = "mirror_report.json"
	failedFileName = "failed_downloads.json"
)

// Reporter 报告生成器
// 报告写入 <reportDir>/<domain>/
type Reporter struct {
	reportDir string
	domain    string
}

// NewReporter 创建报告生成器
func NewReporter(reportDir string, domain string) *Reporter {
	return &Reporter{
		reportDir: reportDir,
		domain:    domain,
	}
}

// Dir 报告目录
func (r *Reporter) Dir() string {
	return filepath.Join(r.reportDir, r.domain)
}

// GenerateReport 生成镜像报告
func (r *Reporter) GenerateReport(report *models.MirrorReport) error {
	reportsDir := r.Dir()
	if err := os.MkdirAll(reportsDir, 0755); err != nil {
		return fmt.Errorf("创建报告目录失败: %w", err)
	}

	// 保存主报告
	if err := r.saveJSONReport(reportsDir, reportFileName, report); err != nil {
		return err
	}

	// 保存失败下载列表
	if err := r.saveJSONReport(reportsDir, failedFileName, report.FailedDownloads); err != nil {
		return err
	}

	Infof("✅ 报告已生成: %s", reportsDir)
	return nil
}

// saveJSONReport 保存JSON报告
func (r *Reporter) saveJSONReport(dir string, filename string, data interface{}) error {
	path := filepath.Join(dir, filename)

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化JSON失败: %w", err)
	}

	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return fmt.Errorf("写入报告文件失败: %w", err)
	}

	Debugf("保存报告: %s", path)
	return nil
}

// NewByteProgressBar 创建字节进度条(总量未知)
// 下载worker把写入的数据同时写入进度条
func NewByteProgressBar(out io.Writer, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions64(-1,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowBytes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}
