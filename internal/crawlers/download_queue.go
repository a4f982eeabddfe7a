package crawlers

import (
	"sync"

	"github.com/RecoveryAshes/sitemirror/internal/models"
)

// queueItem 队列元素: 一个下载任务,或一个停止信号
type queueItem struct {
	task models.DownloadTask
	stop bool
}

// DownloadQueue 下载任务队列
// 职责: 无界FIFO,支持并发安全的Put/Get,并统计未完成任务数用于Join屏障
// 由调用方显式创建并同时注入遍历引擎与worker池
type DownloadQueue struct {
	mu   sync.Mutex
	cond *sync.Cond // 队列非空时唤醒Get
	done *sync.Cond // 未完成任务归零时唤醒Join

	items []queueItem

	// 已Put但尚未TaskDone的任务数(含停止信号)
	unfinished int
}

// NewDownloadQueue 创建下载队列
func NewDownloadQueue() *DownloadQueue {
	q := &DownloadQueue{}
	q.cond = sync.NewCond(&q.mu)
	q.done = sync.NewCond(&q.mu)
	return q
}

// Put 添加下载任务,从不阻塞
func (q *DownloadQueue) Put(task models.DownloadTask) {
	q.put(queueItem{task: task})
}

// putStop 添加一个停止信号
func (q *DownloadQueue) putStop() {
	q.put(queueItem{stop: true})
}

func (q *DownloadQueue) put(item queueItem) {
	q.mu.Lock()
	q.items = append(q.items, item)
	q.unfinished++
	q.mu.Unlock()
	q.cond.Signal()
}

// Get 阻塞取出下一个元素
// 第二个返回值为false表示取到的是停止信号,调用方应退出循环
// 无论哪种情况调用方都必须调用一次TaskDone
func (q *DownloadQueue) Get() (models.DownloadTask, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 {
		q.cond.Wait()
	}

	item := q.items[0]
	q.items[0] = queueItem{}
	q.items = q.items[1:]

	return item.task, !item.stop
}

// TaskDone 标记一个已取出的元素处理完毕
func (q *DownloadQueue) TaskDone() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.unfinished <= 0 {
		panic("crawlers: TaskDone调用次数多于Put")
	}
	q.unfinished--
	if q.unfinished == 0 {
		q.done.Broadcast()
	}
}

// Join 阻塞直到所有已Put的元素都被TaskDone
func (q *DownloadQueue) Join() {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.unfinished > 0 {
		q.done.Wait()
	}
}

// Len 当前排队中的元素数
func (q *DownloadQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Unfinished 未完成元素数(排队中 + 处理中)
func (q *DownloadQueue) Unfinished() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.unfinished
}
