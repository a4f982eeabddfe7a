package crawlers

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RecoveryAshes/sitemirror/internal/models"
	"github.com/RecoveryAshes/sitemirror/internal/utils"
	"golang.org/x/sync/errgroup"
)

// TaskRunner 执行单个下载任务
// 实现不得返回错误给worker: 所有失败都体现在DownloadResult中
type TaskRunner interface {
	Download(ctx context.Context, task models.DownloadTask) models.DownloadResult
}

// WorkerPool 固定数量的下载worker,共同消费一个DownloadQueue
type WorkerPool struct {
	queue   *DownloadQueue
	runner  TaskRunner
	workers int

	group   errgroup.Group
	started atomic.Bool

	// 已消费的停止信号数
	stopSignals atomic.Int32

	mu      sync.Mutex
	results []models.DownloadResult

	// 结果回调(可选),在worker goroutine中调用,必须并发安全
	onResult func(models.DownloadResult)
}

// NewWorkerPool 创建worker池
func NewWorkerPool(queue *DownloadQueue, runner TaskRunner, workers int) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	return &WorkerPool{
		queue:   queue,
		runner:  runner,
		workers: workers,
	}
}

// OnResult 注册结果回调,须在Start之前调用
func (p *WorkerPool) OnResult(fn func(models.DownloadResult)) {
	p.onResult = fn
}

// Start 启动全部worker
func (p *WorkerPool) Start(ctx context.Context) {
	if !p.started.CompareAndSwap(false, true) {
		return
	}

	for i := 0; i < p.workers; i++ {
		id := i + 1
		p.group.Go(func() error {
			p.loop(ctx, id)
			return nil
		})
	}
	utils.Debugf("下载worker池已启动: %d 个worker", p.workers)
}

// loop worker主循环,取到停止信号时退出
func (p *WorkerPool) loop(ctx context.Context, id int) {
	for {
		task, ok := p.queue.Get()
		if !ok {
			p.stopSignals.Add(1)
			p.queue.TaskDone()
			utils.Debugf("worker %d 收到停止信号,退出", id)
			return
		}

		result := p.run(ctx, task)
		p.record(result)
		p.queue.TaskDone()
	}
}

// run 执行任务,worker内的panic转为Failed结果,不影响其他任务
func (p *WorkerPool) run(ctx context.Context, task models.DownloadTask) (result models.DownloadResult) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			utils.Errorf("下载worker异常 [%s]: %v", task.URL, r)
			result = models.DownloadResult{
				Task:     task,
				Status:   models.DownloadFailed,
				Err:      fmt.Errorf("worker panic: %v", r),
				Duration: time.Since(start),
			}
		}
	}()
	return p.runner.Download(ctx, task)
}

func (p *WorkerPool) record(result models.DownloadResult) {
	p.mu.Lock()
	p.results = append(p.results, result)
	p.mu.Unlock()

	if p.onResult != nil {
		p.onResult(result)
	}
}

// Shutdown 关闭worker池
//  1. 等待队列中所有任务处理完毕
//  2. 为每个worker放入一个停止信号
//  3. 等待全部worker退出
//
// 返回全部任务结果
func (p *WorkerPool) Shutdown() []models.DownloadResult {
	if !p.started.Load() {
		return p.Results()
	}

	p.queue.Join()
	for i := 0; i < p.workers; i++ {
		p.queue.putStop()
	}
	_ = p.group.Wait()

	utils.Debugf("下载worker池已关闭: 消费停止信号 %d 个", p.StopSignals())
	return p.Results()
}

// Workers worker数量
func (p *WorkerPool) Workers() int {
	return p.workers
}

// StopSignals 已消费的停止信号数
func (p *WorkerPool) StopSignals() int {
	return int(p.stopSignals.Load())
}

// Results 结果快照
func (p *WorkerPool) Results() []models.DownloadResult {
	p.mu.Lock()
	defer p.mu.Unlock()

	snapshot := make([]models.DownloadResult, len(p.results))
	copy(snapshot, p.results)
	return snapshot
}
