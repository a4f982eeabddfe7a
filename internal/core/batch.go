package core

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/RecoveryAshes/sitemirror/internal/crawlers"
	"github.com/RecoveryAshes/sitemirror/internal/models"
	"github.com/RecoveryAshes/sitemirror/internal/utils"
)

// BatchMirror 批量镜像
// 多个种子依次镜像,每个种子写入 <dir>/<主机名>/
type BatchMirror struct {
	config         models.MirrorConfig
	http           models.HTTPConfig
	reportDir      string
	continueOnErr  bool
	headerProvider models.HeaderProvider
}

// BatchResult 单个种子的结果
type BatchResult struct {
	URL         string
	Success     bool
	Error       error
	Stats       models.TaskStats
	OutputDir   string
	ProcessedAt time.Time
	Duration    float64
}

// BatchSummary 批量镜像摘要
type BatchSummary struct {
	TotalURLs     int
	SuccessCount  int
	FailCount     int
	TotalPages    int
	TotalSize     int64
	TotalDuration float64
	Results       []BatchResult
}

// NewBatchMirror 创建批量镜像
func NewBatchMirror(config models.MirrorConfig, httpConfig models.HTTPConfig, reportDir string, continueOnErr bool, headerProvider models.HeaderProvider) *BatchMirror {
	return &BatchMirror{
		config:         config,
		http:           httpConfig,
		reportDir:      reportDir,
		continueOnErr:  continueOnErr,
		headerProvider: headerProvider,
	}
}

// Run 依次镜像URL列表
func (bm *BatchMirror) Run(ctx context.Context, urls []string) *BatchSummary {
	utils.Infof("🚀 开始批量镜像: %d个URL", len(urls))

	summary := &BatchSummary{
		TotalURLs: len(urls),
		Results:   make([]BatchResult, 0, len(urls)),
	}
	startTime := time.Now()

	for i, seedURL := range urls {
		if ctx.Err() != nil {
			utils.Warn("批量镜像被中断")
			break
		}

		utils.Infof("==================== [%d/%d] ====================", i+1, len(urls))
		result := bm.mirrorOne(ctx, seedURL)
		summary.Results = append(summary.Results, result)

		if result.Success {
			summary.SuccessCount++
			summary.TotalPages += result.Stats.PagesSaved
			summary.TotalSize += result.Stats.TotalSize
			continue
		}

		summary.FailCount++
		utils.Errorf("❌ 镜像失败 [%s]: %v", seedURL, result.Error)
		if !bm.continueOnErr {
			utils.Warn("批量镜像中止")
			break
		}
	}

	summary.TotalDuration = time.Since(startTime).Seconds()
	bm.printSummary(summary)
	return summary
}

// mirrorOne 镜像单个种子
func (bm *BatchMirror) mirrorOne(ctx context.Context, seedURL string) BatchResult {
	result := BatchResult{URL: seedURL, ProcessedAt: time.Now()}
	start := time.Now()

	config := bm.config
	config.OutputDir = SeedOutputDir(bm.config.OutputDir, seedURL)
	result.OutputDir = config.OutputDir

	mirror, err := NewMirror(seedURL, config, bm.http, bm.reportDir, bm.headerProvider)
	if err != nil {
		result.Error = fmt.Errorf("创建镜像任务失败: %w", err)
		result.Duration = time.Since(start).Seconds()
		return result
	}

	report, err := mirror.Run(ctx)
	result.Duration = time.Since(start).Seconds()
	if err != nil {
		result.Error = err
		return result
	}

	result.Success = true
	result.Stats = report.Stats
	return result
}

// SeedOutputDir 批量模式下种子的输出目录: <root>/<主机名>
// 无法解析主机名时退回根目录
func SeedOutputDir(root, seedURL string) string {
	host, err := crawlers.HostDir(seedURL)
	if err != nil || host == "" {
		return root
	}
	return filepath.Join(root, host)
}

// printSummary 打印批量摘要
func (bm *BatchMirror) printSummary(summary *BatchSummary) {
	utils.Info("==================================================")
	utils.Info("📊 批量镜像摘要")
	utils.Info("==================================================")
	utils.Infof("总URL数: %d", summary.TotalURLs)
	utils.Infof("✅ 成功: %d", summary.SuccessCount)
	utils.Infof("❌ 失败: %d", summary.FailCount)
	utils.Infof("📄 保存页面: %d", summary.TotalPages)
	utils.Infof("📦 总大小: %s", utils.FormatBytes(summary.TotalSize))
	utils.Infof("⏱️  总耗时: %.2f秒", summary.TotalDuration)
	utils.Info("==================================================")

	if summary.FailCount > 0 {
		utils.Warn("失败的URL:")
		for _, result := range summary.Results {
			if !result.Success {
				utils.Warnf("  - %s: %v", result.URL, result.Error)
			}
		}
	}
}
