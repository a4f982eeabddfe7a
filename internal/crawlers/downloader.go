package crawlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/RecoveryAshes/sitemirror/internal/models"
	"github.com/RecoveryAshes/sitemirror/internal/utils"
	"golang.org/x/time/rate"
)

// 下载中的临时文件后缀,成功后重命名为目标路径
const partSuffix = ".part"

// DownloaderOptions 下载器配置
type DownloaderOptions struct {
	Client   *http.Client
	Headers  models.HeaderProvider
	MaxSize  int64        // 单文件上限(字节)
	Retry    RetryPolicy  // 重试策略
	Rate     float64      // 每秒请求数,0为不限
	Disk     *DiskMonitor // 可选
	Progress io.Writer    // 可选,写入的字节同时写入此处
}

// Downloader 资源下载器,实现TaskRunner
// 流式下载一个DownloadTask;失败只体现在结果中,从不向worker抛出
type Downloader struct {
	client   *http.Client
	headers  models.HeaderProvider
	maxSize  int64
	retry    RetryPolicy
	limiter  *rate.Limiter
	disk     *DiskMonitor
	progress io.Writer
}

// NewDownloader 创建下载器
func NewDownloader(opts DownloaderOptions) *Downloader {
	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}

	d := &Downloader{
		client:   client,
		headers:  opts.Headers,
		maxSize:  opts.MaxSize,
		retry:    opts.Retry,
		disk:     opts.Disk,
		progress: opts.Progress,
	}
	if opts.Rate > 0 {
		burst := int(opts.Rate)
		if burst < 1 {
			burst = 1
		}
		d.limiter = rate.NewLimiter(rate.Limit(opts.Rate), burst)
	}
	return d
}

// Download 下载单个资源
// 终态:
//   - Saved: 完整写入目标路径
//   - Skipped: 超过大小上限或磁盘空间不足,目标路径不留文件
//   - Failed: 网络/HTTP错误,目标路径不留文件
func (d *Downloader) Download(ctx context.Context, task models.DownloadTask) models.DownloadResult {
	start := time.Now()

	var written int64
	attempts, err := d.retry.Do(ctx, task.URL, func() error {
		n, err := d.fetchOnce(ctx, task)
		written = n
		return err
	})

	result := models.DownloadResult{
		Task:     task,
		Attempts: attempts,
		Err:      err,
		Duration: time.Since(start),
	}

	var oversizeErr *models.OversizeError
	switch {
	case err == nil:
		result.Status = models.DownloadSaved
		result.Bytes = written
		utils.Infof("📥 资源已保存: %s (%s)", task.Destination, utils.FormatBytes(written))
	case errors.As(err, &oversizeErr), errors.Is(err, models.ErrInsufficientDisk):
		result.Status = models.DownloadSkipped
		utils.Warnf("跳过资源 [%s]: %v", task.URL, err)
	default:
		result.Status = models.DownloadFailed
		utils.Logger.Error().
			Err(err).
			Str("url", task.URL).
			Str("path", task.Destination).
			Int("attempts", attempts).
			Msg("资源下载失败")
	}
	return result
}

// fetchOnce 执行一次下载尝试,返回写入的字节数
func (d *Downloader) fetchOnce(ctx context.Context, task models.DownloadTask) (int64, error) {
	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return 0, &models.FetchError{URL: task.URL, Cause: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, task.URL, nil)
	if err != nil {
		return 0, fmt.Errorf("创建请求失败 [%s]: %w", task.URL, err)
	}
	applyHeaders(req.Header, d.headers)
	if task.Referer != "" {
		req.Header.Set("Referer", task.Referer)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, &models.FetchError{URL: task.URL, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// 读掉少量响应体以便连接复用
		_, _ = io.CopyN(io.Discard, resp.Body, 4096)
		return 0, &models.FetchError{URL: task.URL, StatusCode: resp.StatusCode}
	}

	// 声明长度超限: 不创建任何文件
	if resp.ContentLength > d.maxSize {
		return 0, &models.OversizeError{URL: task.URL, Size: resp.ContentLength, Limit: d.maxSize}
	}

	if d.disk != nil && !d.disk.CanStore(resp.ContentLength) {
		return 0, fmt.Errorf("%w: %s", models.ErrInsufficientDisk, task.Destination)
	}

	body, err := decodeStream(resp.Header.Get("Content-Encoding"), resp.Body)
	if err != nil {
		return 0, &models.FetchError{URL: task.URL, Cause: err}
	}
	defer body.Close()

	return d.writeFile(task, body)
}

// writeFile 把响应体流式写入 <dest>.part,完成后重命名为 <dest>
// 任何失败都会删除临时文件
func (d *Downloader) writeFile(task models.DownloadTask, body io.Reader) (int64, error) {
	// 多个worker可能同时创建同一目录,MkdirAll对已存在目录返回nil
	if err := os.MkdirAll(filepath.Dir(task.Destination), 0755); err != nil {
		return 0, fmt.Errorf("创建目录失败: %w", err)
	}

	partPath := task.Destination + partSuffix
	file, err := os.Create(partPath)
	if err != nil {
		return 0, fmt.Errorf("创建文件失败: %w", err)
	}

	var dst io.Writer = file
	if d.progress != nil {
		dst = io.MultiWriter(file, d.progress)
	}

	// 多读1字节用于判断是否超限
	n, copyErr := io.Copy(dst, io.LimitReader(body, d.maxSize+1))
	closeErr := file.Close()

	fail := func(err error) (int64, error) {
		_ = os.Remove(partPath)
		return n, err
	}

	switch {
	case copyErr != nil && errors.Is(copyErr, syscall.ENOSPC):
		return fail(fmt.Errorf("%w: %v", models.ErrInsufficientDisk, copyErr))
	case copyErr != nil:
		return fail(&models.FetchError{URL: task.URL, Cause: copyErr})
	case closeErr != nil:
		return fail(fmt.Errorf("写入文件失败: %w", closeErr))
	case n > d.maxSize:
		return fail(&models.OversizeError{URL: task.URL, Size: n, Limit: d.maxSize})
	}

	if err := os.Rename(partPath, task.Destination); err != nil {
		return fail(fmt.Errorf("重命名文件失败: %w", err))
	}

	if d.disk != nil {
		d.disk.Consume(n)
	}
	return n, nil
}
