package models

// CrawlItem 一次页面爬取任务
// 由遍历引擎在发现并接受链接时创建,同步消费,不持久化
type CrawlItem struct {
	// URL 绝对URL
	URL string

	// Depth 深度层级
	//   - 0: 入口URL
	//   - 1: 从入口页面发现的链接
	//   - 以此类推...
	Depth int

	// SourceURL 发现此URL的源页面(可选,用于日志)
	SourceURL string
}

// Next 基于当前任务派生下一层链接任务
func (c CrawlItem) Next(linkURL string) CrawlItem {
	return CrawlItem{
		URL:       linkURL,
		Depth:     c.Depth + 1,
		SourceURL: c.URL,
	}
}
