package crawlers

import (
	"context"
	"sync"
	"time"

	"github.com/RecoveryAshes/sitemirror/internal/utils"
	"github.com/shirou/gopsutil/v3/disk"
)

// DiskMonitor 磁盘空间监控器
// 职责: 周期性采样输出目录所在分区的剩余空间,在写入前判断是否还能容纳文件
type DiskMonitor struct {
	// 监控路径(输出根目录)
	path string

	// 必须保留的空间(字节)
	reserve uint64

	// 缓存的剩余空间(字节), known为false表示尚未成功采样
	free  uint64
	known bool
	mu    sync.RWMutex

	// 监控控制
	cancelFunc context.CancelFunc
	isRunning  bool
	runMu      sync.Mutex
}

// NewDiskMonitor 创建磁盘监控器并立即采样一次
func NewDiskMonitor(path string, reserveBytes uint64) *DiskMonitor {
	dm := &DiskMonitor{
		path:    path,
		reserve: reserveBytes,
	}
	dm.sample()
	return dm
}

// sample 读取一次分区使用情况
// 采样失败时保留上一次的值,首次失败则视为未知
func (dm *DiskMonitor) sample() {
	usage, err := disk.Usage(dm.path)
	if err != nil {
		utils.Debugf("获取磁盘使用情况失败 [%s]: %v", dm.path, err)
		return
	}

	dm.mu.Lock()
	dm.free = usage.Free
	dm.known = true
	dm.mu.Unlock()
}

// StartMonitoring 启动后台采样
func (dm *DiskMonitor) StartMonitoring(interval time.Duration) {
	dm.runMu.Lock()
	defer dm.runMu.Unlock()

	// 如果已经在运行,直接返回(幂等)
	if dm.isRunning {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	dm.cancelFunc = cancel
	dm.isRunning = true

	go dm.monitoringLoop(ctx, interval)
}

// monitoringLoop 后台监控循环
func (dm *DiskMonitor) monitoringLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			dm.sample()
		}
	}
}

// StopMonitoring 停止后台采样
func (dm *DiskMonitor) StopMonitoring() {
	dm.runMu.Lock()
	defer dm.runMu.Unlock()

	if dm.isRunning && dm.cancelFunc != nil {
		dm.cancelFunc()
		dm.isRunning = false
		dm.cancelFunc = nil
	}
}

// Free 缓存的剩余空间,ok为false表示未知
func (dm *DiskMonitor) Free() (free uint64, ok bool) {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return dm.free, dm.known
}

// CanStore 判断写入size字节后是否仍满足保留空间
// 剩余空间未知或size未知(<0)时总是返回true
func (dm *DiskMonitor) CanStore(size int64) bool {
	free, ok := dm.Free()
	if !ok {
		return true
	}
	if size < 0 {
		size = 0
	}
	return free >= uint64(size)+dm.reserve
}

// Consume 在两次采样之间扣减已写入的字节数,避免并发写入时高估剩余空间
func (dm *DiskMonitor) Consume(written int64) {
	if written <= 0 {
		return
	}

	dm.mu.Lock()
	defer dm.mu.Unlock()

	if !dm.known {
		return
	}
	if uint64(written) >= dm.free {
		dm.free = 0
		return
	}
	dm.free -= uint64(written)
}
