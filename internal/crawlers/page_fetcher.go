package crawlers

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/RecoveryAshes/sitemirror/internal/models"
	"github.com/RecoveryAshes/sitemirror/internal/utils"
	"github.com/gocolly/colly/v2"
)

const (
	ctxKeyPage     = "page"
	ctxKeyStatus   = "status"
	ctxKeyOversize = "oversize"
)

// Page 一次页面获取的结果
type Page struct {
	// URL 最终URL(跟随重定向之后),用作相对引用的解析基准
	URL *url.URL

	StatusCode  int
	ContentType string
	Body        []byte
}

// IsHTML 是否按HTML处理
// 未声明Content-Type时按HTML处理
func (p *Page) IsHTML() bool {
	if p.ContentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(p.ContentType)
	if err != nil {
		return strings.Contains(strings.ToLower(p.ContentType), "html")
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}

// PageSource 页面获取能力: fetch(url) -> 页面 | 错误
type PageSource interface {
	Fetch(ctx context.Context, pageURL string) (*Page, error)
}

// PageFetcher 基于Colly的同步页面获取器
// 只在遍历控制路径上使用,不并发调用
type PageFetcher struct {
	collector   *colly.Collector
	headers     models.HeaderProvider
	retry       RetryPolicy
	maxBodySize int64
}

// NewPageFetcher 创建页面获取器
// client与下载器共享Transport; maxBodySize限制单个页面的字节数,<=0 表示不限
func NewPageFetcher(client *http.Client, headers models.HeaderProvider, maxBodySize int64, retry RetryPolicy) *PageFetcher {
	// Colly在上限处静默截断,多读1字节才能区分"恰好等于上限"与"被截断"
	readLimit := 0
	if maxBodySize > 0 {
		readLimit = int(maxBodySize + 1)
	}

	// 不设置AllowedDomains与MaxDepth,去重与深度由遍历引擎管理
	c := colly.NewCollector(
		colly.AllowURLRevisit(),
		colly.MaxBodySize(readLimit),
	)
	if client != nil {
		c.SetClient(client)
	}

	pf := &PageFetcher{
		collector:   c,
		headers:     headers,
		retry:       retry,
		maxBodySize: maxBodySize,
	}
	pf.setupCallbacks()
	return pf
}

// setupCallbacks 设置Colly回调
func (pf *PageFetcher) setupCallbacks() {
	// 访问前: 应用自定义HTTP头部
	pf.collector.OnRequest(func(r *colly.Request) {
		applyHeaders(*r.Headers, pf.headers)
		utils.Debugf("获取页面: %s", r.URL.String())
	})

	// 成功响应声明的长度已超限: 不读取响应体
	pf.collector.OnResponseHeaders(func(r *colly.Response) {
		if r.StatusCode >= http.StatusMultipleChoices {
			return
		}
		if size, over := pf.oversize(r.Headers, 0); over {
			r.Ctx.Put(ctxKeyOversize, size)
			r.Request.Abort()
		}
	})

	// 处理响应
	pf.collector.OnResponse(func(r *colly.Response) {
		if size, over := pf.oversize(r.Headers, len(r.Body)); over {
			r.Ctx.Put(ctxKeyOversize, size)
			return
		}

		body := r.Body
		if encoding := r.Headers.Get("Content-Encoding"); encoding != "" {
			decoded, err := decodePageBody(encoding, r.Body)
			if err != nil {
				utils.Warnf("解压页面失败 [%s] (编码=%s): %v", r.Request.URL, encoding, err)
			} else {
				body = decoded
			}
		}

		finalURL := *r.Request.URL
		r.Ctx.Put(ctxKeyPage, &Page{
			URL:         &finalURL,
			StatusCode:  r.StatusCode,
			ContentType: r.Headers.Get("Content-Type"),
			Body:        body,
		})
	})

	// 错误处理: 记录状态码供Fetch构造FetchError
	pf.collector.OnError(func(r *colly.Response, err error) {
		if r == nil || r.Ctx == nil {
			return
		}
		r.Ctx.Put(ctxKeyStatus, r.StatusCode)
	})
}

// oversize 检查页面是否超过上限
// 声明的Content-Length超限,或读到的字节数超过上限(已被截断),都视为超限
func (pf *PageFetcher) oversize(headers *http.Header, bodyLen int) (int64, bool) {
	if pf.maxBodySize <= 0 {
		return 0, false
	}
	size := int64(bodyLen)
	if declared, err := strconv.ParseInt(headers.Get("Content-Length"), 10, 64); err == nil && declared > size {
		size = declared
	}
	return size, size > pf.maxBodySize
}

// Fetch 获取页面,可重试错误按重试策略重试
func (pf *PageFetcher) Fetch(ctx context.Context, pageURL string) (*Page, error) {
	var page *Page
	_, err := pf.retry.Do(ctx, pageURL, func() error {
		p, err := pf.fetchOnce(pageURL)
		page = p
		return err
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// fetchOnce 执行一次同步请求
func (pf *PageFetcher) fetchOnce(pageURL string) (*Page, error) {
	cctx := colly.NewContext()
	err := pf.collector.Request(http.MethodGet, pageURL, nil, cctx, nil)

	if size, ok := cctx.GetAny(ctxKeyOversize).(int64); ok {
		return nil, &models.OversizeError{URL: pageURL, Size: size, Limit: pf.maxBodySize}
	}
	if err != nil {
		status, _ := cctx.GetAny(ctxKeyStatus).(int)
		return nil, &models.FetchError{URL: pageURL, StatusCode: status, Cause: err}
	}

	page, ok := cctx.GetAny(ctxKeyPage).(*Page)
	if !ok {
		return nil, &models.FetchError{URL: pageURL, Cause: errors.New("未收到响应")}
	}
	return page, nil
}
