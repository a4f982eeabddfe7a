package core

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/RecoveryAshes/sitemirror/internal/crawlers"
	"github.com/RecoveryAshes/sitemirror/internal/models"
	"github.com/RecoveryAshes/sitemirror/internal/utils"
)

// 磁盘空间采样间隔
const diskSampleInterval = 2 * time.Second

// Mirror 单个站点的镜像任务协调器
// 负责装配 遍历引擎 → 下载队列 → worker池,运行结束后汇总统计并生成报告
type Mirror struct {
	seedURL   string
	domain    string
	config    models.MirrorConfig
	http      models.HTTPConfig
	reportDir string

	headerProvider models.HeaderProvider

	// 进度条输出,nil时使用stderr
	progressOut io.Writer

	report *models.MirrorReport
}

// NewMirror 创建镜像任务
func NewMirror(seedURL string, config models.MirrorConfig, httpConfig models.HTTPConfig, reportDir string, headerProvider models.HeaderProvider) (*Mirror, error) {
	if err := models.ValidateURL(seedURL); err != nil {
		return nil, err
	}

	parsedURL, err := url.Parse(strings.TrimSpace(seedURL))
	if err != nil {
		return nil, fmt.Errorf("解析URL失败: %w", err)
	}
	// 去掉片段,保证种子与页面中的链接使用同一种规范形式
	parsedURL.Fragment = ""
	parsedURL.RawFragment = ""

	if err := config.Validate(); err != nil {
		return nil, &models.ConfigError{FilePath: "mirror", Cause: err}
	}

	return &Mirror{
		seedURL:        parsedURL.String(),
		domain:         parsedURL.Hostname(),
		config:         config,
		http:           httpConfig,
		reportDir:      reportDir,
		headerProvider: headerProvider,
	}, nil
}

// SetProgressOutput 设置进度条输出
func (m *Mirror) SetProgressOutput(w io.Writer) {
	m.progressOut = w
}

// Run 执行镜像
// 执行流程:
//  1. 创建输出目录、共享Transport与磁盘监控
//  2. 启动下载worker池
//  3. 从种子URL同步遍历,资源交给下载队列
//  4. 等待队列清空并为每个worker放入停止信号
//  5. 汇总统计并生成报告
//
// 页面与资源级别的错误只记录在报告中;返回的错误只表示任务无法开始
func (m *Mirror) Run(ctx context.Context) (*models.MirrorReport, error) {
	utils.Infof("🚀 开始镜像任务")
	utils.Infof("目标URL: %s", m.seedURL)
	utils.Infof("输出目录: %s", m.config.OutputDir)
	utils.Infof("深度: %d, 下载线程: %d, 跟随链接: %v", m.config.Depth, m.config.Threads, m.config.FollowRedirects)

	if err := os.MkdirAll(m.config.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("创建输出目录失败: %w", err)
	}

	transport, err := crawlers.NewTransport(m.http, m.config.Threads)
	if err != nil {
		return nil, err
	}
	defer transport.CloseIdleConnections()
	client := crawlers.NewHTTPClient(transport, m.http.TimeoutDuration())

	disk := crawlers.NewDiskMonitor(m.config.OutputDir, uint64(m.config.DiskReserveMB)*1024*1024)
	if free, ok := disk.Free(); ok {
		utils.Debugf("输出目录剩余空间: %s", utils.FormatBytes(int64(free)))
	}
	disk.StartMonitoring(diskSampleInterval)
	defer disk.StopMonitoring()

	retry := crawlers.RetryPolicy{Retries: m.config.Retry, Backoff: m.config.RetryBackoff}

	var progress io.Writer
	if !m.config.NoProgress {
		out := m.progressOut
		if out == nil {
			out = os.Stderr
		}
		bar := utils.NewByteProgressBar(out, "📥 下载资源")
		defer bar.Finish()
		progress = bar
	}

	downloader := crawlers.NewDownloader(crawlers.DownloaderOptions{
		Client:   client,
		Headers:  m.headerProvider,
		MaxSize:  m.config.MaxSizeBytes(),
		Retry:    retry,
		Rate:     m.config.RateLimit,
		Disk:     disk,
		Progress: progress,
	})

	m.report = models.NewMirrorReport(m.seedURL, m.domain, m.config.OutputDir, m.config)

	queue := crawlers.NewDownloadQueue()
	pool := crawlers.NewWorkerPool(queue, downloader, m.config.Threads)
	pool.Start(ctx)

	fetcher := crawlers.NewPageFetcher(client, m.headerProvider, m.config.MaxSizeBytes(), retry)
	traverser := crawlers.NewTraverser(m.config, fetcher, queue, m.domain)
	traverser.Run(ctx, m.seedURL)

	utils.Infof("⏳ 页面遍历完成,等待 %d 个下载任务...", queue.Unfinished())
	results := pool.Shutdown()

	stats := mergeResults(traverser.Stats(), results)
	for _, result := range results {
		m.report.AddResult(result)
	}
	for _, result := range traverser.Collisions() {
		m.report.AddResult(result)
	}
	m.report.VisitedURLs = traverser.Visited().URLs()
	m.report.Finish(stats)

	reporter := utils.NewReporter(m.reportDir, m.domain)
	if err := reporter.GenerateReport(m.report); err != nil {
		utils.Warnf("生成报告失败: %v", err)
	}

	m.printSummary()
	return m.report, nil
}

// mergeResults 把下载结果合并进遍历统计
// 路径冲突的资源已由遍历引擎计入ResourcesSkipped
func mergeResults(stats models.TaskStats, results []models.DownloadResult) models.TaskStats {
	for _, result := range results {
		switch result.Status {
		case models.DownloadSaved:
			stats.ResourcesSaved++
			stats.TotalSize += result.Bytes
		case models.DownloadSkipped:
			stats.ResourcesSkipped++
		default:
			stats.ResourcesFailed++
		}
	}
	return stats
}

// printSummary 打印镜像摘要
func (m *Mirror) printSummary() {
	s := m.report.Stats
	utils.Info("==================================================")
	utils.Info("📊 镜像摘要")
	utils.Info("==================================================")
	utils.Infof("页面: 访问 %d, 保存 %d, 失败 %d, 超限跳过 %d", s.PagesVisited, s.PagesSaved, s.PagesFailed, s.PagesSkipped)
	utils.Infof("资源: 入队 %d, 保存 %d, 跳过 %d, 失败 %d", s.ResourcesQueued, s.ResourcesSaved, s.ResourcesSkipped, s.ResourcesFailed)
	if s.PathCollisions > 0 {
		utils.Warnf("路径冲突: %d", s.PathCollisions)
	}
	utils.Infof("📦 总大小: %s", utils.FormatBytes(s.TotalSize))
	utils.Infof("⏱️  总耗时: %.2f秒", s.Duration)
	utils.Info("==================================================")
}

// Report 最近一次运行的报告
func (m *Mirror) Report() *models.MirrorReport {
	return m.report
}

// Domain 种子主机名
func (m *Mirror) Domain() string {
	return m.domain
}
