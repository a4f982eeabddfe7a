package crawlers

import (
	"context"
	"time"

	"github.com/RecoveryAshes/sitemirror/internal/models"
	"github.com/RecoveryAshes/sitemirror/internal/utils"
)

// RetryPolicy 重试策略
// Retries为失败后额外尝试的次数,Backoff为首次等待时间,之后每次翻倍
type RetryPolicy struct {
	Retries int
	Backoff time.Duration
}

// Do 执行fn,可重试错误(传输层错误/429/5xx)按指数退避重试
// 返回实际尝试次数与最后一次的错误
func (p RetryPolicy) Do(ctx context.Context, target string, fn func() error) (int, error) {
	attempts := 0
	for {
		attempts++
		err := fn()
		if err == nil {
			return attempts, nil
		}
		if attempts > p.Retries || !models.IsRetryable(err) || ctx.Err() != nil {
			return attempts, err
		}

		wait := p.backoffFor(attempts)
		utils.Warnf("请求失败,%v 后重试 (%d/%d) [%s]: %v", wait, attempts, p.Retries, target, err)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return attempts, err
		case <-timer.C:
		}
	}
}

// backoffFor 第attempt次失败后的等待时间
func (p RetryPolicy) backoffFor(attempt int) time.Duration {
	if p.Backoff <= 0 {
		return 0
	}
	shift := attempt - 1
	if shift > 10 {
		shift = 10
	}
	return p.Backoff << shift
}
