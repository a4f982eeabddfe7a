package crawlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/RecoveryAshes/sitemirror/internal/models"
	"github.com/RecoveryAshes/sitemirror/internal/utils"
)

// Traverser 遍历引擎
// 深度优先、同步递归;全部状态(已访问集合、路径占用表、统计)只在控制路径上读写
type Traverser struct {
	config     models.MirrorConfig
	fetcher    PageSource
	classifier *Classifier
	queue      *DownloadQueue
	visited    *VisitedSet

	// 本地路径 → 首个占用它的URL
	claims map[string]string

	// 种子主机名(跨域过滤)
	seedHost string

	// 因路径冲突被跳过的资源
	collisions []models.DownloadResult

	stats models.TaskStats
}

// acceptedRef 已接受下载、待改写的引用
type acceptedRef struct {
	ref  *ResourceRef
	dest string
}

// NewTraverser 创建遍历引擎
// queue由调用方创建并同时交给worker池
func NewTraverser(config models.MirrorConfig, fetcher PageSource, queue *DownloadQueue, seedHost string) *Traverser {
	return &Traverser{
		config:     config,
		fetcher:    fetcher,
		classifier: NewClassifier(config.IncludeTypes),
		queue:      queue,
		visited:    NewVisitedSet(),
		claims:     make(map[string]string),
		seedHost:   strings.ToLower(seedHost),
	}
}

// Run 从种子URL开始遍历(深度0)
func (t *Traverser) Run(ctx context.Context, seedURL string) {
	t.Crawl(ctx, models.CrawlItem{URL: seedURL, Depth: 0})
}

// Crawl 处理一个页面任务
// 状态: pending → fetching → (aborted | parsing) → extracting → dispatching → rewriting → saved
// 页面级错误在此处记录后返回,不会向上层递归传播
func (t *Traverser) Crawl(ctx context.Context, item models.CrawlItem) {
	if item.Depth > t.config.Depth || ctx.Err() != nil {
		return
	}
	if !t.visited.Add(item.URL) {
		return
	}
	t.stats.PagesVisited++

	t.trace(item, models.PageStateFetching)
	page, err := t.fetcher.Fetch(ctx, item.URL)
	var oversize *models.OversizeError
	if errors.As(err, &oversize) {
		t.stats.PagesSkipped++
		utils.Logger.Warn().
			Str("url", item.URL).
			Int64("size", oversize.Size).
			Int64("limit", oversize.Limit).
			Msg("页面超过大小上限,跳过")
		t.trace(item, models.PageStateAborted)
		return
	}
	if err != nil {
		t.stats.PagesFailed++
		utils.Logger.Error().
			Err(err).
			Str("url", item.URL).
			Int("depth", item.Depth).
			Str("source", item.SourceURL).
			Msg("页面获取失败")
		t.trace(item, models.PageStateAborted)
		return
	}

	// 重定向后的最终URL也视为已访问
	if final := page.URL.String(); final != item.URL {
		t.visited.Add(final)
	}

	pagePath, err := MapURLToPath(item.URL, t.config.OutputDir)
	if err != nil {
		t.stats.PagesFailed++
		utils.Errorf("页面路径映射失败 [%s]: %v", item.URL, err)
		return
	}
	pageClaimed := t.claim(pagePath, item.URL)

	if !page.IsHTML() {
		// 非HTML页面原样保存,不解析
		if pageClaimed {
			t.savePage(item, pagePath, func() error { return saveRaw(pagePath, page.Body) })
		}
		t.pause()
		return
	}

	t.trace(item, models.PageStateParsing)
	doc, err := ParsePage(page.URL, page.Body)
	if err != nil {
		t.stats.PagesFailed++
		utils.Errorf("页面解析失败 [%s]: %v", item.URL, err)
		t.trace(item, models.PageStateAborted)
		t.pause()
		return
	}

	t.trace(item, models.PageStateExtracting)
	refs := doc.References()

	t.trace(item, models.PageStateDispatching)
	accepted := make([]acceptedRef, 0, len(refs))
	for _, ref := range refs {
		switch t.classifier.Classify(ref.Tag, ref.Rel, ref.Resolved) {
		case KindResource:
			if dest, ok := t.dispatchResource(ref, item.URL); ok {
				accepted = append(accepted, acceptedRef{ref: ref, dest: dest})
			}
		case KindLink:
			t.followLink(ctx, item, ref)
		}
	}

	t.trace(item, models.PageStateRewriting)
	for _, a := range accepted {
		if err := doc.Rewrite(a.ref, pagePath, a.dest); err != nil {
			utils.Warnf("改写引用失败 [%s]: %v", a.ref.Original, err)
		}
	}

	if pageClaimed {
		t.savePage(item, pagePath, func() error { return doc.Save(pagePath) })
	}
	t.pause()
}

// dispatchResource 把资源交给下载队列
// 同一资源URL每次运行只入队一次,但在每个引用它的页面上都会被改写
// 返回资源的本地路径,以及是否应改写该引用
func (t *Traverser) dispatchResource(ref *ResourceRef, referer string) (string, bool) {
	resourceURL := ref.Resolved.String()
	dest, err := MapURLToPath(resourceURL, t.config.OutputDir)
	if err != nil {
		utils.Warnf("资源路径映射失败 [%s]: %v", resourceURL, err)
		return "", false
	}

	if !t.visited.Add(resourceURL) {
		return dest, true
	}

	if !t.claim(dest, resourceURL) {
		t.stats.ResourcesSkipped++
		t.collisions = append(t.collisions, models.DownloadResult{
			Task:   models.DownloadTask{URL: resourceURL, Destination: dest, Referer: referer},
			Status: models.DownloadSkipped,
			Err:    fmt.Errorf("%w: %s (%s)", models.ErrPathCollision, dest, t.claims[dest]),
		})
		return dest, true
	}

	t.queue.Put(models.DownloadTask{
		URL:         resourceURL,
		Destination: dest,
		Referer:     referer,
	})
	t.stats.ResourcesQueued++
	utils.Debugf("资源入队: %s -> %s", resourceURL, dest)
	return dest, true
}

// followLink 递归跟随页面链接
// 需要开启follow_redirects;未允许跨域时只跟随种子主机上的链接
func (t *Traverser) followLink(ctx context.Context, item models.CrawlItem, ref *ResourceRef) {
	if !t.config.FollowRedirects {
		return
	}

	link := ref.Resolved.String()
	if !t.config.AllowCrossDomain && !strings.EqualFold(ref.Resolved.Hostname(), t.seedHost) {
		utils.Debugf("跳过跨域链接: %s (目标域名: %s)", link, t.seedHost)
		return
	}
	if t.visited.Has(link) {
		return
	}

	t.Crawl(ctx, item.Next(link))
}

// claim 占用本地路径,先到先得
// 同一URL重复占用视为成功;被其他URL占用时记录冲突并返回false
func (t *Traverser) claim(dest, owner string) bool {
	existing, ok := t.claims[dest]
	if !ok {
		t.claims[dest] = owner
		return true
	}
	if existing == owner {
		return true
	}

	t.stats.PathCollisions++
	utils.Warnf("路径冲突: %s 已被 %s 占用,跳过 %s", dest, existing, owner)
	return false
}

// savePage 写入页面并更新统计
func (t *Traverser) savePage(item models.CrawlItem, pagePath string, write func() error) {
	if err := write(); err != nil {
		t.stats.PagesFailed++
		utils.Logger.Error().
			Err(err).
			Str("url", item.URL).
			Str("path", pagePath).
			Msg("页面保存失败")
		return
	}
	t.stats.PagesSaved++
	t.trace(item, models.PageStateSaved)
	utils.Infof("💾 页面已保存: %s", pagePath)
}

// pause 页面间的礼貌性延迟,同步阻塞控制路径
func (t *Traverser) pause() {
	if d := t.config.DelayDuration(); d > 0 {
		time.Sleep(d)
	}
}

func (t *Traverser) trace(item models.CrawlItem, state models.PageState) {
	utils.Logger.Debug().
		Str("url", item.URL).
		Int("depth", item.Depth).
		Str("state", string(state)).
		Msg("页面状态")
}

// Stats 统计快照
func (t *Traverser) Stats() models.TaskStats {
	return t.stats
}

// Visited 已访问集合(遍历结束后只读)
func (t *Traverser) Visited() *VisitedSet {
	return t.visited
}

// Collisions 因路径冲突被跳过的资源
func (t *Traverser) Collisions() []models.DownloadResult {
	return t.collisions
}
